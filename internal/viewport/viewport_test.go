package viewport

import (
	"math"
	"math/rand"
	"testing"
)

const epsilon = 1e-9

func TestRoundTripScreenWorld(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		v := New()
		v.X = rng.Float64()*2000 - 1000
		v.Y = rng.Float64()*2000 - 1000
		v.Zoom = v.MinZoom + rng.Float64()*(v.MaxZoom-v.MinZoom)

		sx := rng.Float64() * 1920
		sy := rng.Float64() * 1080
		wx, wy := v.ScreenToWorld(sx, sy)
		gx, gy := v.WorldToScreen(wx, wy)
		if math.Abs(gx-sx) > epsilon || math.Abs(gy-sy) > epsilon {
			t.Fatalf("round trip (%f,%f) -> (%f,%f) with %+v", sx, sy, gx, gy, v)
		}
	}
}

func TestZoomStaysWithinBounds(t *testing.T) {
	t.Parallel()

	v := New()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		delta := -1.0
		if rng.Intn(3) == 0 {
			delta = 1
		}
		v.Wheel(rng.Float64()*800, rng.Float64()*600, delta)
		if v.Zoom < v.MinZoom || v.Zoom > v.MaxZoom {
			t.Fatalf("zoom %f escaped [%f, %f]", v.Zoom, v.MinZoom, v.MaxZoom)
		}
	}
}

func TestZoomAtKeepsPointerAnchored(t *testing.T) {
	t.Parallel()

	v := New()
	sx, sy := 321.0, 123.0
	wx, wy := v.ScreenToWorld(sx, sy)
	v.ZoomAt(sx, sy, 1.5)

	gx, gy := v.WorldToScreen(wx, wy)
	if math.Abs(gx-sx) > epsilon || math.Abs(gy-sy) > epsilon {
		t.Fatalf("anchor moved to (%f,%f), want (%f,%f)", gx, gy, sx, sy)
	}
	if v.Zoom != 1.5 {
		t.Fatalf("zoom = %f, want 1.5", v.Zoom)
	}
}

func TestZoomAtClampKeepsAnchor(t *testing.T) {
	t.Parallel()

	v := New()
	wx, wy := v.ScreenToWorld(10, 10)
	v.ZoomAt(10, 10, 100)
	if v.Zoom != v.MaxZoom {
		t.Fatalf("zoom = %f, want max %f", v.Zoom, v.MaxZoom)
	}
	gx, gy := v.WorldToScreen(wx, wy)
	if math.Abs(gx-10) > epsilon || math.Abs(gy-10) > epsilon {
		t.Fatalf("anchor drifted to (%f,%f)", gx, gy)
	}
}

func TestWheelDirection(t *testing.T) {
	t.Parallel()

	v := New()
	v.Wheel(0, 0, -1)
	if math.Abs(v.Zoom-ZoomInFactor) > epsilon {
		t.Fatalf("scroll up zoom = %f, want %f", v.Zoom, ZoomInFactor)
	}
	v = New()
	v.Wheel(0, 0, 1)
	if math.Abs(v.Zoom-ZoomOutFactor) > epsilon {
		t.Fatalf("scroll down zoom = %f, want %f", v.Zoom, ZoomOutFactor)
	}
	v = New()
	v.Wheel(0, 0, 0)
	if v.Zoom != DefaultZoom {
		t.Fatalf("zero delta changed zoom to %f", v.Zoom)
	}
}

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		viewW, viewH float64
		mapW, mapH   float64
		wantZoom     float64
		wantX, wantY float64
	}{
		{"width bound", 1000, 800, 2000, 1000, 0.5, 0, 150},
		{"height bound", 1000, 500, 1000, 2000, 0.25, 375, 0},
		{"clamped to max", 1000, 1000, 100, 100, 3, 350, 350},
		{"clamped to min", 100, 100, 10000, 10000, 0.2, -950, -950},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := New()
			v.Fit(tt.viewW, tt.viewH, tt.mapW, tt.mapH)
			if math.Abs(v.Zoom-tt.wantZoom) > epsilon {
				t.Fatalf("zoom = %f, want %f", v.Zoom, tt.wantZoom)
			}
			if math.Abs(v.X-tt.wantX) > epsilon || math.Abs(v.Y-tt.wantY) > epsilon {
				t.Fatalf("offset = (%f,%f), want (%f,%f)", v.X, v.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPanIsUnconstrained(t *testing.T) {
	t.Parallel()

	v := New()
	v.Pan(-1e6, 1e6)
	if v.X != DefaultX-1e6 || v.Y != DefaultY+1e6 {
		t.Fatalf("pan = (%f,%f)", v.X, v.Y)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	v := Viewport{Zoom: 10}
	v.Normalize()
	if v.MinZoom != DefaultMinZoom || v.MaxZoom != DefaultMaxZoom || v.Zoom != DefaultMaxZoom {
		t.Fatalf("normalize = %+v", v)
	}
}
