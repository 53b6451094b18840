// Package anim schedules time-based transitions.
//
// An [Entry] pairs a start time and duration with an easing function and a
// callback that receives eased progress in [0, 1]. The [Scheduler] never
// owns a clock or a goroutine: the caller passes the current monotonic time
// to [Scheduler.Advance] once per frame.
package anim

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Entry describes one transition.
type Entry struct {
	// Key identifies the entry. Adding an entry with a key that is already
	// scheduled replaces the old one without running its Done callback.
	// Empty keys never collide.
	Key string

	Start    time.Duration
	Duration time.Duration
	Ease     ease.TweenFunc

	// Step receives eased progress. The final call always passes exactly 1.
	Step func(p float64)
	// Done runs once after the final Step.
	Done func()
}

type running struct {
	Entry
	tween *gween.Tween
	last  time.Duration
}

// Scheduler advances entries. It is not safe for concurrent use.
type Scheduler struct {
	entries []*running
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Add schedules e. Entries with a non-positive duration complete at once.
func (s *Scheduler) Add(e Entry) {
	if e.Key != "" {
		s.Cancel(e.Key)
	}
	if e.Duration <= 0 {
		finish(e)
		return
	}
	fn := e.Ease
	if fn == nil {
		fn = ease.Linear
	}
	s.entries = append(s.entries, &running{
		Entry: e,
		tween: gween.New(0, 1, float32(e.Duration.Seconds()), fn),
		last:  e.Start,
	})
}

// Cancel drops the entry with the given key without completing it.
func (s *Scheduler) Cancel(key string) {
	kept := s.entries[:0]
	for _, r := range s.entries {
		if r.Key != key {
			kept = append(kept, r)
		}
	}
	clear(s.entries[len(kept):])
	s.entries = kept
}

// Advance steps every entry whose start time has passed up to now and
// returns the number still running. Times earlier than the last call are
// ignored.
func (s *Scheduler) Advance(now time.Duration) int {
	// Callbacks may add entries; iterate over a snapshot.
	current := s.entries
	s.entries = nil
	var done []*running
	for _, r := range current {
		if now <= r.last {
			s.entries = append(s.entries, r)
			continue
		}
		dt := now - r.last
		r.last = now
		v, finished := r.tween.Update(float32(dt.Seconds()))
		if finished {
			done = append(done, r)
			continue
		}
		if r.Step != nil {
			r.Step(float64(v))
		}
		s.entries = append(s.entries, r)
	}
	for _, r := range done {
		finish(r.Entry)
	}
	return len(s.entries)
}

// Settle completes every entry immediately.
func (s *Scheduler) Settle() {
	for len(s.entries) > 0 {
		current := s.entries
		s.entries = nil
		for _, r := range current {
			finish(r.Entry)
		}
	}
}

// Active returns the number of scheduled entries.
func (s *Scheduler) Active() int { return len(s.entries) }

func finish(e Entry) {
	if e.Step != nil {
		e.Step(1)
	}
	if e.Done != nil {
		e.Done()
	}
}
