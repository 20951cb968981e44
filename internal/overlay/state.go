package overlay

import (
	"sync"
	"time"
)

// CoalesceWindow is how long the state waits after the first effective
// change before publishing, so that bursts of related updates collapse into
// a single frame.
const CoalesceWindow = 120 * time.Millisecond

// Snapshot is a point-in-time copy of the overlay record.
type Snapshot struct {
	Goal      string
	Action    string
	Rationale string
	Result    string
}

// PublishFunc receives the full overlay snapshot when a coalescing window
// closes.
type PublishFunc func(Snapshot)

// State is the overlay record shared between the mapper (writer) and the
// publisher (reader at timer fire). Every publish carries the complete
// record, so a dropped intermediate state converges on the next one.
type State struct {
	publish PublishFunc

	mu        sync.Mutex
	goal      string
	action    string
	rationale string
	result    string
	pending   bool
}

// NewState returns an empty record that publishes through publish.
func NewState(publish PublishFunc) *State {
	return &State{publish: publish}
}

// Set merges update into the record. A field is written only when the new
// value is non-empty and differs from the stored one. The first effective
// change arms the publish timer; further changes inside the window ride
// along with it. A Set that changes nothing never schedules a publish.
func (s *State) Set(update Update) {
	s.mu.Lock()
	changed := false
	if update.Goal != "" && update.Goal != s.goal {
		s.goal = update.Goal
		changed = true
	}
	if update.Action != "" && update.Action != s.action {
		s.action = update.Action
		changed = true
	}
	if update.Rationale != "" && update.Rationale != s.rationale {
		s.rationale = update.Rationale
		changed = true
	}
	if update.Result != "" && update.Result != s.result {
		s.result = update.Result
		changed = true
	}
	if !changed || s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()

	time.AfterFunc(CoalesceWindow, s.fire)
}

// Snapshot returns the current record.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Goal: s.goal, Action: s.action, Rationale: s.rationale, Result: s.result}
}

// fire closes the coalescing window: it captures the record under the lock
// and hands the copy to the publisher outside of it.
func (s *State) fire() {
	s.mu.Lock()
	s.pending = false
	snap := Snapshot{Goal: s.goal, Action: s.action, Rationale: s.rationale, Result: s.result}
	s.mu.Unlock()

	s.publish(snap)
}
