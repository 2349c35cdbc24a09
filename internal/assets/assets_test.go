package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDataURI(t *testing.T) {
	uri, err := DataURI(pngBytes(t, 3, 2))
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix in %q", uri[:30])
	}
	img, err := Decode(uri)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	if err := os.WriteFile(path, pngBytes(t, 8, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no comma", "data:image/png;base64", ErrBadDataURI},
		{"bad base64", "data:image/png;base64,!!!", ErrBadDataURI},
		{"not an image", "data:text/plain,hello", ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.src); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Decode(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestPNGDataURIRejectsOtherFormats(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	if _, err := PNGDataURI(gif); !errors.Is(err, ErrNotPNG) {
		t.Fatalf("err = %v, want ErrNotPNG", err)
	}
	if _, err := PNGDataURI(pngBytes(t, 1, 1)); err != nil {
		t.Fatalf("PNGDataURI: %v", err)
	}
	if _, err := DataURI([]byte("plain text")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c, err := NewCache(1 << 20)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer c.Close()

	if !c.Set("avatar-a", &Entry{Width: 4, Height: 4}) {
		t.Fatal("expected entry to be admitted")
	}
	if e, ok := c.Get("avatar-a"); !ok || e.Width != 4 {
		t.Fatalf("Get = %v, %v", e, ok)
	}
	c.Invalidate("avatar-a")
	if _, ok := c.Get("avatar-a"); ok {
		t.Fatal("expected entry to be gone after Invalidate")
	}
	if _, ok := c.Get(""); ok {
		t.Fatal("expected empty key to miss")
	}
}

func TestCacheRejectsOversizedEntry(t *testing.T) {
	c, err := NewCache(64)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer c.Close()

	if c.Set("big", &Entry{Width: 16, Height: 16}) {
		t.Fatal("expected entry larger than the cache to be rejected")
	}
	if _, ok := c.Get("big"); ok {
		t.Fatal("expected rejected entry to miss")
	}
}

func TestLoaderDeliversResult(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := NewLoader(log)
	uri, _ := DataURI(pngBytes(t, 5, 5))

	req := Request{Kind: KindMap, Src: uri, Gen: 3}
	l.Load(context.Background(), req)
	if !l.Pending(req) {
		t.Fatal("expected request to be pending")
	}
	l.Load(context.Background(), req)
	l.Wait()

	results := l.Drain()
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Err != nil || results[0].Gen != 3 || results[0].Image.Bounds().Dx() != 5 {
		t.Fatalf("unexpected result %+v", results[0])
	}
	if l.Pending(req) {
		t.Fatal("expected pending mark cleared")
	}
}

func TestLoaderDropsCancelled(t *testing.T) {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	l := NewLoader(log)
	uri, _ := DataURI(pngBytes(t, 2, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := Request{Kind: KindMap, Src: uri, Gen: 1}
	l.Load(ctx, req)
	l.Wait()

	if results := l.Drain(); len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}
	if l.Pending(req) {
		t.Fatal("expected cancelled request cleared")
	}
}

func TestLoaderReportsDecodeErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := NewLoader(log)
	l.Load(context.Background(), Request{Kind: KindAvatar, Src: "data:text/plain,nope"})
	l.Wait()

	results := l.Drain()
	if len(results) != 1 || !errors.Is(results[0].Err, ErrUnsupported) {
		t.Fatalf("results = %+v", results)
	}
}
