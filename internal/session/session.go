// Package session owns one live timeline: it serializes access, journals
// every slice before applying it and tells listeners what happened.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine"
	"github.com/seurimas/topper-public-sub002/engine/agent"
	"github.com/seurimas/topper-public-sub002/internal/journal"
)

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("session closed")

// EventType tags a session event.
type EventType string

const (
	EventSliceApplied  EventType = "slice_applied"  // the slice was recorded; Err holds observation failures
	EventSliceRejected EventType = "slice_rejected" // malformed, nothing changed
	EventReset         EventType = "reset"
)

// Event is sent to BroadcastFn after every state change.
type Event struct {
	Type     EventType
	Session  uuid.UUID
	SliceID  uuid.UUID
	Time     int64
	Digest   uint64
	Err      error
	Branches map[string]int // branch count per agent
}

// Options configure a Session. Every field is optional.
type Options struct {
	Rules       *engine.Rules
	Store       engine.ClassStore
	Journal     *journal.Writer
	Logger      logrus.FieldLogger
	BroadcastFn func(ev Event)
}

// Session wraps a Timeline for concurrent callers.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	timeline *engine.Timeline
	store    engine.ClassStore
	journal  *journal.Writer
	log      logrus.FieldLogger
	closed   bool

	BroadcastFn func(ev Event)
}

// New starts a session with an empty timeline.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id := uuid.New()
	logger = logger.WithField("session", id)
	return &Session{
		ID:          id,
		timeline:    engine.NewTimeline(opts.Rules, logger),
		store:       opts.Store,
		journal:     opts.Journal,
		log:         logger,
		BroadcastFn: opts.BroadcastFn,
	}
}

// Push journals the slice and applies it. A malformed slice is neither
// journaled nor applied. Observation errors are returned after the slice
// has been applied in full.
func (s *Session) Push(ctx context.Context, slice engine.TimeSlice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if slice.ID == uuid.Nil {
		slice.ID = uuid.New()
	}
	if err := slice.Validate(); err != nil {
		s.log.WithError(err).WithField("slice", slice.ID).Warn("rejected slice")
		s.emit(Event{Type: EventSliceRejected, SliceID: slice.ID, Err: err})
		return err
	}
	if s.journal != nil {
		if err := s.journal.Append(&slice); err != nil {
			return fmt.Errorf("journal slice %s: %w", slice.ID, err)
		}
	}
	err := s.timeline.PushTimeSlice(ctx, slice, s.store)
	if err != nil {
		s.log.WithError(err).WithField("slice", slice.ID).Debug("slice applied with errors")
	}
	s.emit(Event{Type: EventSliceApplied, SliceID: slice.ID, Err: err})
	return err
}

// Hint records a world fact about who.
func (s *Session) Hint(who, kind, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.State.AddPlayerHint(who, kind, value)
}

// Assume sets a flag by name on every branch of who.
func (s *Session) Assume(who, flag string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.State.SetFlagForAgent(who, flag, value)
}

// Reset clears beliefs; see engine.Timeline.Reset.
func (s *Session) Reset(full bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Reset(full)
	s.log.WithField("full", full).Info("timeline reset")
	s.emit(Event{Type: EventReset})
}

// Snapshot copies the branches held for name.
func (s *Session) Snapshot(name string) []agent.AgentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	branches := s.timeline.State.Agent(name)
	if branches == nil {
		return nil
	}
	out := make([]agent.AgentState, len(branches))
	for i := range branches {
		out[i] = branches[i].Clone()
	}
	return out
}

// Agents lists every agent the timeline knows about.
func (s *Session) Agents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.State.Agents()
}

// Simulate returns an independent copy of the timeline for planning. Slices
// pushed to it are not journaled.
func (s *Session) Simulate() *engine.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Branch()
}

// Digest hashes the current beliefs.
func (s *Session) Digest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Digest()
}

// Close stops the session and finishes the journal. The class store is
// owned by the caller.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// emit fills the common fields and calls BroadcastFn. Callers hold mu.
func (s *Session) emit(ev Event) {
	if s.BroadcastFn == nil {
		return
	}
	st := s.timeline.State
	ev.Session = s.ID
	ev.Time = st.Time()
	ev.Digest = s.timeline.Digest()
	ev.Branches = make(map[string]int)
	for _, name := range st.Agents() {
		ev.Branches[name] = st.Branches(name)
	}
	s.BroadcastFn(ev)
}
