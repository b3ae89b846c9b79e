package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

func TestPushTimeSliceRecords(t *testing.T) {
	tl := NewTimeline(nil, quietLogger())
	require.NoError(t, tl.PushTimeSlice(context.Background(), TimeSlice{Time: 10, Me: "Me", Observations: []Observation{Fall("Other")}}, nil))
	assert.Len(t, tl.Slices, 1)
	assert.Equal(t, "Me", tl.WhoAmI())
	assert.True(t, tl.State.BorrowAgent("Other").Is(agent.Fallen))

	err := tl.PushTimeSlice(context.Background(), TimeSlice{Time: 20}, nil)
	require.ErrorIs(t, err, ErrMalformedSlice)
	assert.Len(t, tl.Slices, 1, "malformed slices are not recorded")

	err = tl.PushTimeSlice(context.Background(), TimeSlice{Time: 30, Me: "Me", Observations: []Observation{Pill("Other", "mystery")}}, nil)
	require.Error(t, err)
	assert.Len(t, tl.Slices, 2, "slices with bad observations are still recorded")
}

func TestBranchIsIndependent(t *testing.T) {
	tl := NewTimeline(nil, quietLogger())
	require.NoError(t, tl.PushTimeSlice(context.Background(), TimeSlice{Me: "Me", Observations: []Observation{Fall("Other")}}, nil))

	sim := tl.Branch()
	assert.NotEqual(t, tl.ID, sim.ID)
	assert.Empty(t, sim.Slices)
	require.NoError(t, sim.PushTimeSlice(context.Background(), SimulationSlice([]Observation{Stand("Other")}, 0), nil))

	assert.False(t, sim.State.BorrowAgent("Other").Is(agent.Fallen))
	assert.True(t, tl.State.BorrowAgent("Other").Is(agent.Fallen))
	assert.NotEqual(t, tl.Digest(), sim.Digest())
}

func TestSoftReset(t *testing.T) {
	tl := NewTimeline(nil, quietLogger())
	s := tl.State
	s.ForAgentUncertain("Other", agent.ForkFlags(agent.Paresis, agent.Asthma))
	s.ForAgent("Other", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetFlag(agent.Rebounding, false)
		a.SetLimbDamage(agent.LimbTorso, 2000, false)
	}))
	require.Equal(t, 2, s.Branches("Other"))

	tl.Reset(false)
	branches := s.Agent("Other")
	require.Len(t, branches, 1)
	b := branches[0]
	assert.Equal(t, agent.Single(), b.Branch)
	assert.Equal(t, 0, b.AffCount())
	assert.Equal(t, int32(0), b.Limbs.Limbs[agent.LimbTorso].Damage)
	for _, f := range agent.DefaultFlags {
		assert.True(t, b.Is(f), f.String())
	}
}

func TestFullReset(t *testing.T) {
	tl := NewTimeline(nil, quietLogger())
	tl.State.SetAgentRoom("Other", 3)
	tl.State.AddPlayerHint("Other", "note", "x")
	tl.Reset(true)
	assert.Empty(t, tl.State.Agents())
	_, ok := tl.State.PlayerHint("Other", "note")
	assert.False(t, ok)
}

func TestDigestStable(t *testing.T) {
	run := func() uint64 {
		tl := NewTimeline(nil, quietLogger())
		require.NoError(t, tl.PushTimeSlice(context.Background(), TimeSlice{
			Time: 100,
			Me:   "Me",
			Observations: []Observation{
				CombatAction("Foe", "Subterfuge", "Bedazzle", "", "Other"),
			},
		}, nil))
		return tl.Digest()
	}
	assert.Equal(t, run(), run())
}
