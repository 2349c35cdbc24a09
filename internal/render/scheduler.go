package render

// Scheduler coalesces render requests into at most one render per frame.
// Any number of MarkDirty calls between two frames produce a single render.
type Scheduler struct {
	dirty   bool
	pending bool
	queued  []func()
	renders int
}

// NewScheduler returns a scheduler that renders on its first frame.
func NewScheduler() *Scheduler {
	return &Scheduler{dirty: true, pending: true}
}

// MarkDirty flags the board as changed and requests a frame if none is
// pending.
func (s *Scheduler) MarkDirty() {
	s.dirty = true
	s.pending = true
}

// OnNextFrame queues cb to run once at the start of the next frame, before
// rendering.
func (s *Scheduler) OnNextFrame(cb func()) {
	s.queued = append(s.queued, cb)
	s.pending = true
}

// Dirty reports whether a render is outstanding.
func (s *Scheduler) Dirty() bool {
	return s.dirty
}

// Pending reports whether a frame callback is outstanding.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Renders returns how many renders have run.
func (s *Scheduler) Renders() int {
	return s.renders
}

// Frame runs the queued callbacks and, if the board is dirty, calls render
// exactly once. It reports whether render ran.
func (s *Scheduler) Frame(render func()) bool {
	if !s.pending {
		return false
	}
	s.pending = false

	queued := s.queued
	s.queued = nil
	for _, cb := range queued {
		cb()
	}

	if !s.dirty {
		return false
	}
	s.dirty = false
	render()
	s.renders++
	return true
}
