package render

import "testing"

func TestSchedulerCoalescesBursts(t *testing.T) {
	s := NewScheduler()
	renders := 0
	s.Frame(func() { renders++ })
	if renders != 1 {
		t.Fatalf("first frame renders = %d, want 1", renders)
	}

	for i := 0; i < 100; i++ {
		s.MarkDirty()
	}
	s.Frame(func() { renders++ })
	s.Frame(func() { renders++ })
	if renders != 2 {
		t.Fatalf("renders = %d, want 2", renders)
	}
	if s.Dirty() || s.Pending() {
		t.Fatal("scheduler should be idle after the frame")
	}
}

func TestSchedulerSkipsCleanFrames(t *testing.T) {
	s := NewScheduler()
	s.Frame(func() {})
	if s.Frame(func() { t.Fatal("render on clean frame") }) {
		t.Fatal("Frame reported a render")
	}
}

func TestSchedulerOnNextFrameRunsBeforeRender(t *testing.T) {
	s := NewScheduler()
	s.Frame(func() {})

	var order []string
	s.OnNextFrame(func() {
		order = append(order, "cb")
		s.MarkDirty()
	})
	s.Frame(func() { order = append(order, "render") })

	if len(order) != 2 || order[0] != "cb" || order[1] != "render" {
		t.Fatalf("order = %v", order)
	}
	if s.Renders() != 2 {
		t.Fatalf("renders = %d, want 2", s.Renders())
	}
}

func TestSchedulerMarkDuringRenderDefersToNextFrame(t *testing.T) {
	s := NewScheduler()
	renders := 0
	s.Frame(func() {
		renders++
		s.MarkDirty()
	})
	s.Frame(func() { renders++ })
	if renders != 2 {
		t.Fatalf("renders = %d, want 2", renders)
	}
}
