package engine

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newState(t *testing.T) *TimelineState {
	t.Helper()
	return NewTimelineState(nil, quietLogger())
}

// apply runs one slice seen by "Me" and fails the test on any error.
func apply(t *testing.T, s *TimelineState, time int64, obs ...Observation) {
	t.Helper()
	slice := TimeSlice{Time: time, Me: "Me", Observations: obs, Prompt: Prompt{Kind: Promptless}}
	require.NoError(t, s.ApplyTimeSlice(context.Background(), &slice, nil))
}

func TestBorrowUnknownAgent(t *testing.T) {
	s := newState(t)
	a := s.BorrowAgent("Nobody")
	for _, f := range agent.DefaultFlags {
		assert.True(t, a.Is(f), f.String())
	}
	assert.Nil(t, s.Agent("Nobody"), "borrowing does not materialize the agent")
	assert.Equal(t, 0, s.Branches("Nobody"))

	s.ForAgent("Nobody", agent.EffectFunc(func(a *agent.AgentState) {}))
	assert.Equal(t, 1, s.Branches("Nobody"))
	assert.Same(t, &s.Agent("Nobody")[0], s.BorrowAgent("Nobody"), "a known agent lends its first branch")
}

func TestUpdateTime(t *testing.T) {
	s := newState(t)
	for _, name := range []string{"A", "B"} {
		s.ForAgent(name, agent.EffectFunc(func(a *agent.AgentState) {
			a.SetBalanceTicks(agent.BalanceBalance, 200)
		}))
	}
	s.UpdateTime(150)
	assert.Equal(t, int64(150), s.Time())
	for _, name := range []string{"A", "B"} {
		a := s.BorrowAgent(name)
		assert.Equal(t, agent.Ticks(50), a.RawBalance(agent.BalanceBalance))
		assert.False(t, a.Balanced(agent.BalanceBalance))
	}

	s.UpdateTime(100)
	assert.Equal(t, int64(150), s.Time(), "going back is ignored")
	assert.Equal(t, agent.Ticks(50), s.BorrowAgent("A").RawBalance(agent.BalanceBalance))

	s.UpdateTime(250)
	a := s.BorrowAgent("A")
	assert.LessOrEqual(t, a.RawBalance(agent.BalanceBalance), agent.Ticks(0))
	assert.True(t, a.Balanced(agent.BalanceBalance))
}

// A first slice far from time zero must not wrap any balance around.
func TestUpdateTimeLongGap(t *testing.T) {
	s := newState(t)
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetBalanceTicks(agent.BalanceBalance, 200)
	}))
	s.UpdateTime(3_000_000_000)
	s.UpdateTime(3_000_001_000)
	a := s.BorrowAgent("A")
	assert.True(t, a.Balanced(agent.BalanceBalance))
	assert.Less(t, a.RawBalance(agent.BalanceBalance), agent.Ticks(0))
	assert.Equal(t, int64(3_000_001_000), s.Time())
}

// Time passing through a slice reaches the timed sub-states of every branch.
func TestSliceAdvancesSubTimersOnEveryBranch(t *testing.T) {
	for _, tc := range []struct {
		name       string
		elapsed    int64
		hypno      agent.HypnoPhase
		hypnoLeft  agent.Ticks
		zenith     agent.ZenithPhase
		zenithLeft agent.Ticks
	}{
		{name: "inside every phase", elapsed: 100, hypno: agent.HypnoSealed, hypnoLeft: 400, zenith: agent.ZenithRising, zenithLeft: 1400},
		{name: "seal runs out", elapsed: 600, hypno: agent.HypnoFiring, hypnoLeft: agent.FiringWindow - 100, zenith: agent.ZenithRising, zenithLeft: 900},
		{name: "everything rolls over", elapsed: 1600, hypno: agent.HypnoEmpty, hypnoLeft: 0, zenith: agent.ZenithActive, zenithLeft: 900},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newState(t)
			apply(t, s, 100)
			s.ForAgent("Foe", agent.EffectFunc(func(a *agent.AgentState) {
				a.Class.InitializeFor(agent.ClassZealot)
				z, ok := a.Class.Zealot()
				require.True(t, ok)
				z.Zenith.Initiate()
				a.Hypno.PushSuggestion(agent.Hypnosis{Kind: agent.HypnosisAff, Aff: agent.Paresis})
				a.Hypno.Seal(500)
				a.Relapses.Push("kalmia")
			}))
			s.ForAgentUncertain("Foe", agent.ForkFlags(agent.Clumsiness, agent.Asthma))
			require.Equal(t, 2, s.Branches("Foe"))

			apply(t, s, 100+tc.elapsed)

			branches := s.Agent("Foe")
			require.Len(t, branches, 2)
			for i := range branches {
				b := &branches[i]
				assert.True(t, b.Branch.IsBranched())
				assert.Equal(t, tc.hypno, b.Hypno.Phase())
				assert.Equal(t, tc.hypnoLeft, b.Hypno.TimeLeft())
				z, ok := b.Class.Zealot()
				require.True(t, ok)
				assert.Equal(t, tc.zenith, z.Zenith.Phase)
				assert.Equal(t, tc.zenithLeft, z.Zenith.Timer)
				entries := b.Relapses.Entries()
				require.Len(t, entries, 1)
				assert.Equal(t, agent.Ticks(tc.elapsed), entries[0].Age)
			}
		})
	}
}

// Scenario B through a slice: a discovery settles the hidden state.
func TestDiscoveryCollapsesHiddenState(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(s *TimelineState)
		found string
		want  agent.Flag
		gone  agent.Flag
	}{
		{
			name: "confirms one fork",
			setup: func(s *TimelineState) {
				s.ForAgentUncertain("Me", agent.ForkFlags(agent.Paresis, agent.Asthma))
			},
			found: "paresis",
			want:  agent.Paresis,
			gone:  agent.Asthma,
		},
		{
			name: "names an unknown",
			setup: func(s *TimelineState) {
				s.ForAgent("Me", agent.EffectFunc(func(a *agent.AgentState) {
					a.Hidden.AddUnknown()
				}))
			},
			found: "asthma",
			want:  agent.Asthma,
			gone:  agent.Paresis,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newState(t)
			apply(t, s, 100)
			tc.setup(s)

			apply(t, s, 110, Discovered(tc.found))

			branches := s.Agent("Me")
			require.Len(t, branches, 1)
			me := &branches[0]
			assert.True(t, me.Is(tc.want))
			assert.False(t, me.Is(tc.gone))
			assert.Equal(t, uint8(0), me.Hidden.Unknown())
			assert.Equal(t, uint32(0), me.Branch.Strikes())
		})
	}
}

func TestForAgentUncertainUnaffected(t *testing.T) {
	s := newState(t)
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {}))
	s.ForAgentUncertain("A", agent.UncertainFunc(func(a *agent.AgentState) ([]agent.AgentState, bool) {
		return nil, false
	}))
	require.Equal(t, 1, s.Branches("A"))
	assert.False(t, s.Agent("A")[0].Branch.IsBranched())
}

func TestForAgentUncertainCounts(t *testing.T) {
	s := newState(t)
	s.UpdateTime(40)
	s.ForAgentUncertain("A", agent.ForkFlags(agent.Paresis, agent.Asthma))
	require.Equal(t, 2, s.Branches("A"))

	// Branches already holding a candidate fork only into the others.
	s.UpdateTime(90)
	s.ForAgentUncertain("A", agent.ForkFlags(agent.Paresis, agent.Clumsiness))
	branches := s.Agent("A")
	require.Len(t, branches, 3)
	for _, b := range branches {
		assert.True(t, b.Branch.IsBranched())
		assert.Equal(t, int64(90), b.Branch.ForkTime())
	}
}

// Scenario A then B: an ambiguous effect forks, a confirmation strikes the
// other branch and strikeout leaves the confirmed one.
func TestForkThenConfirm(t *testing.T) {
	s := newState(t)
	s.UpdateTime(100)
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {}))
	s.ForAgentUncertain("A", agent.ForkFlags(agent.Paresis, agent.Asthma))

	branches := s.Agent("A")
	require.Len(t, branches, 2)
	for _, b := range branches {
		assert.Equal(t, agent.Branched(100, 0, 0), b.Branch)
	}

	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {
		a.ObserveFlag(agent.Paresis, true)
	}))
	s.Strikeout()
	branches = s.Agent("A")
	require.Len(t, branches, 1)
	assert.True(t, branches[0].Is(agent.Paresis))
	assert.False(t, branches[0].Is(agent.Asthma))
}

func TestStrikesUseTimelineLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s := NewTimelineState(nil, logger)
	s.ForAgentUncertain("A", agent.ForkFlags(agent.Paresis, agent.Asthma))
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {
		a.ObserveFlag(agent.Paresis, true)
	}))

	var strikes []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "strike" {
			strikes = append(strikes, e)
		}
	}
	require.Len(t, strikes, 1)
	assert.Equal(t, "A", strikes[0].Data["agent"])
	assert.Equal(t, agent.Paresis.Name(), strikes[0].Data["flag"])
}

func TestStrikeoutIdempotent(t *testing.T) {
	s := newState(t)
	s.ForAgentUncertain("A", agent.ForkFlags(agent.Paresis, agent.Asthma, agent.Clumsiness))
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {
		a.ObserveFlag(agent.Clumsiness, false)
	}))
	s.Strikeout()
	first := append([]agent.AgentState(nil), s.Agent("A")...)
	s.Strikeout()
	second := s.Agent("A")
	require.Len(t, second, len(first))
	assert.Len(t, first, 2)
	for i := range first {
		assert.True(t, first[i].Equal(&second[i]))
	}
}

func TestStrikeoutDedupsPastCap(t *testing.T) {
	s := NewTimelineState(DefaultRules().WithPruneCap(2), quietLogger())
	s.ForAgentUncertain("A", agent.UncertainFunc(func(a *agent.AgentState) ([]agent.AgentState, bool) {
		out := make([]agent.AgentState, 4)
		for i := range out {
			out[i] = a.Clone()
		}
		return out, true
	}))
	require.Equal(t, 4, s.Branches("A"))
	s.Strikeout()
	assert.Equal(t, 1, s.Branches("A"))
}

func TestStrikeoutPanicsWithoutBranches(t *testing.T) {
	s := newState(t)
	s.agents["Ghost"] = nil
	assert.Panics(t, s.Strikeout)
}

func TestCloneIsDeep(t *testing.T) {
	s := newState(t)
	s.AddPlayerHint("A", "note", "one")
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) { a.SetFlag(agent.Asthma, true) }))

	c := s.Clone()
	c.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) { a.SetFlag(agent.Asthma, false) }))
	c.AddPlayerHint("A", "note", "two")

	assert.True(t, s.BorrowAgent("A").Is(agent.Asthma))
	v, _ := s.PlayerHint("A", "note")
	assert.Equal(t, "one", v)
}

func TestSetFlagForAgent(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("A", "hypersomnia", true))
	require.NoError(t, s.SetFlagForAgent("A", "insomnia", false))
	require.NoError(t, s.SetFlagForAgent("A", "insomnia", true))
	assert.False(t, s.BorrowAgent("A").Is(agent.Insomnia), "insomnia cannot be set over hypersomnia")

	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetFlag(agent.ThinBlood, true)
		a.PushToxin("kalmia")
	}))
	require.NoError(t, s.SetFlagForAgent("A", "thin blood", false))
	assert.False(t, s.BorrowAgent("A").Relapses.Active())

	assert.Error(t, s.SetFlagForAgent("A", "not a flag", true))
	assert.Error(t, s.TickCounterForAgent("A", "asthma"))
}

func TestHintFreshness(t *testing.T) {
	s := newState(t)
	s.UpdateTime(100)
	s.AddPlayerHint("A", "seen", "100")
	assert.True(t, s.IsHintTimeFresh("A", "seen", 5))
	s.UpdateTime(600)
	assert.True(t, s.IsHintTimeFresh("A", "seen", 5))
	s.UpdateTime(601)
	assert.False(t, s.IsHintTimeFresh("A", "seen", 5))
	assert.False(t, s.IsHintTimeFresh("A", "missing", 5))
}

func TestRooms(t *testing.T) {
	s := newState(t)
	s.SetAgentRoom("B", 7)
	s.SetAgentRoom("A", 7)
	s.SetAgentRoom("C", 8)
	assert.Equal(t, []string{"A", "B"}, s.AgentsInRoom(7))
}

func TestPerspective(t *testing.T) {
	s := newState(t)
	s.me = "Me"
	assert.Equal(t, PerspectiveAttacker, s.Perspective(CombatAction("Me", "Zeal", "Pummel", "", "Foe")))
	assert.Equal(t, PerspectiveTarget, s.Perspective(CombatAction("Foe", "Zeal", "Pummel", "", "Me")))
	assert.Equal(t, PerspectiveBystander, s.Perspective(CombatAction("Foe", "Zeal", "Pummel", "", "Other")))
}
