package engine

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// Timeline is a TimelineState plus the slices that produced it.
type Timeline struct {
	ID     uuid.UUID
	Slices []TimeSlice
	State  *TimelineState
}

// NewTimeline starts an empty timeline.
func NewTimeline(rules *Rules, logger logrus.FieldLogger) *Timeline {
	return &Timeline{
		ID:    uuid.New(),
		State: NewTimelineState(rules, logger),
	}
}

// PushTimeSlice applies a slice and records it. A malformed slice is
// rejected without being recorded; errors from individual observations are
// returned after the slice has been recorded and applied in full.
func (t *Timeline) PushTimeSlice(ctx context.Context, slice TimeSlice, store ClassStore) error {
	err := t.State.ApplyTimeSlice(ctx, &slice, store)
	if errors.Is(err, ErrMalformedSlice) {
		return err
	}
	t.Slices = append(t.Slices, slice)
	return err
}

// Branch forks a hypothetical copy with an empty slice log.
func (t *Timeline) Branch() *Timeline {
	return &Timeline{
		ID:    uuid.New(),
		State: t.State.Clone(),
	}
}

// Reset recovers from divergence. A full reset forgets every agent and
// world fact. A soft reset keeps each agent's first branch, stripped of
// its afflictions and back to the default defences.
func (t *Timeline) Reset(full bool) {
	s := t.State
	if full {
		s.agents = make(map[string][]agent.AgentState)
		s.hints = make(map[hintKey]string)
		s.lists = make(map[string][]string)
		return
	}
	for name, branches := range s.agents {
		a := branches[0]
		a.ClearAfflictions()
		a.Branch = agent.Single()
		for _, f := range agent.DefaultFlags {
			a.SetFlag(f, true)
		}
		s.agents[name] = []agent.AgentState{a}
	}
}

// UpdateTime advances the clock without a slice.
func (t *Timeline) UpdateTime(time int64) { t.State.UpdateTime(time) }

// WhoAmI returns the perspective agent.
func (t *Timeline) WhoAmI() string { return t.State.me }

// Digest hashes the current beliefs: every agent's branches in order.
// Equal digests mean replays arrived at the same state.
func (t *Timeline) Digest() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, name := range t.State.Agents() {
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
		branches := t.State.agents[name]
		for i := range branches {
			binary.LittleEndian.PutUint64(buf[:], branches[i].Fingerprint())
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}
