package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

func TestMalformedSliceLeavesState(t *testing.T) {
	s := newState(t)
	s.ForAgent("A", agent.EffectFunc(func(a *agent.AgentState) {}))
	before := s.Clone()

	bad := []TimeSlice{
		{Time: 10, Observations: []Observation{Fall("A")}},
		{Time: -1, Me: "Me"},
		{Time: 10, Me: "Me", Observations: []Observation{Fall("")}},
		{Time: 10, Me: "Me", Observations: []Observation{LimbDamage("elbow", 10)}},
	}
	for i := range bad {
		err := s.ApplyTimeSlice(context.Background(), &bad[i], nil)
		require.ErrorIs(t, err, ErrMalformedSlice)
	}
	assert.Equal(t, before.Time(), s.Time())
	assert.Equal(t, before.Agents(), s.Agents())
	assert.False(t, s.BorrowAgent("A").Is(agent.Fallen))
}

func TestPromptStats(t *testing.T) {
	s := newState(t)
	slice := TimeSlice{
		Me:     "Me",
		Prompt: Prompt{Kind: PromptStats, Stats: Vitals{Health: 3000, Mana: 2500, SP: 10}},
	}
	require.NoError(t, s.ApplyTimeSlice(context.Background(), &slice, nil))
	me := s.BorrowMe()
	assert.Equal(t, int32(3000), me.Stat(agent.StatHealth))
	assert.Equal(t, int32(2500), me.Stat(agent.StatMana))
}

func TestHandlerErrorsDoNotStopSlice(t *testing.T) {
	s := newState(t)
	slice := TimeSlice{Me: "Me", Observations: []Observation{
		Pill("Other", "mystery"),
		Fall("Other"),
	}}
	err := s.ApplyTimeSlice(context.Background(), &slice, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedSlice)
	assert.Contains(t, err.Error(), "unknown pill")
	assert.True(t, s.BorrowAgent("Other").Is(agent.Fallen))
}

func TestOtherAfflictedAfterDiscernedCure(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Other", "asthma", true))
	apply(t, s, 0, DiscernedCure("Other", "asthma"), OtherAfflicted("Other", "asthma"))
	assert.False(t, s.BorrowAgent("Other").Is(agent.Asthma))

	apply(t, s, 0, OtherAfflicted("Other", "asthma"))
	assert.True(t, s.BorrowAgent("Other").Is(agent.Asthma))
}

// ---------------------------------------------------------------------------
// Cures
// ---------------------------------------------------------------------------

func TestThirdPartyPill(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Other", "paresis", true))
	require.NoError(t, s.SetFlagForAgent("Other", "mirroring", true))
	apply(t, s, 0, Pill("Other", "opiate"))

	other := s.BorrowAgent("Other")
	assert.False(t, other.Is(agent.Paresis), "first present entry is cured")
	assert.True(t, other.Is(agent.Mirroring))
	assert.Equal(t, 2.0, other.BalanceSeconds(agent.BalancePill))
}

func TestOwnPillNamesCure(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Me", "stupidity", true))
	require.NoError(t, s.SetFlagForAgent("Me", "dizziness", true))
	apply(t, s, 0, Pill("Me", "euphoriant"), Cured("dizziness"), Balance("pill", 1.5))

	me := s.BorrowMe()
	assert.False(t, me.Is(agent.Dizziness))
	assert.False(t, me.Is(agent.Stupidity), "earlier entries in the order were absent")
	assert.Equal(t, 1.5, me.BalanceSeconds(agent.BalancePill), "our balance line wins")
}

func TestOwnPillCuringNothing(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Me", "paresis", true))
	apply(t, s, 0, Pill("Me", "opiate"))
	assert.False(t, s.BorrowMe().Is(agent.Paresis))
}

func TestDefencePill(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, Pill("Other", "thanatonin"))
	assert.True(t, s.BorrowAgent("Other").Is(agent.Deathsight))
}

func TestCaloricSalve(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Other", "insulation", false))
	apply(t, s, 0, Salve("Other", "caloric", "skin"))
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Insulation))
	assert.Equal(t, 2.0, other.BalanceSeconds(agent.BalanceSalve))
}

// ---------------------------------------------------------------------------
// Venoms and relapses
// ---------------------------------------------------------------------------

func TestCalledVenomsHint(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, Sent("dstab Other kalmia curare"))
	v, ok := s.MyHint(hintCalledVenoms)
	require.True(t, ok)
	assert.Equal(t, "kalmia curare", v)
}

func TestThirdPartyVenoms(t *testing.T) {
	s := newState(t)
	s.AddPlayerHint("Foe", hintCalledVenoms, "kalmia curare")
	apply(t, s, 0, CombatAction("Foe", "Assassination", "Doublestab", "", "Other"))
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Asthma))
	assert.True(t, other.Is(agent.Paresis))
	assert.False(t, s.BorrowAgent("Foe").Balanced(agent.BalanceBalance))
}

func TestThirdPartyVenomsDodged(t *testing.T) {
	s := newState(t)
	s.AddPlayerHint("Foe", hintCalledVenoms, "kalmia curare")
	apply(t, s, 0, CombatAction("Foe", "Assassination", "Doublestab", "", "Other"), Dodges("Other"))
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Asthma))
	assert.False(t, other.Is(agent.Paresis), "the second venom misses on a dodge")
}

func TestOwnVenomsRebound(t *testing.T) {
	s := newState(t)
	apply(t, s, 0,
		CombatAction("Me", "Assassination", "Doublestab", "", "Other"),
		Devenoms("kalmia"),
		Rebounds(),
		Devenoms("curare"),
	)
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Asthma))
	assert.False(t, other.Is(agent.Paresis))
	assert.True(t, s.BorrowMe().Is(agent.Paresis), "a rebounded venom lands on us")
}

func TestSpecialVenoms(t *testing.T) {
	r := DefaultRules()
	a := agent.NewAgentState()
	require.NoError(t, r.applyVenom(&a, "epseth", false))
	require.NoError(t, r.applyVenom(&a, "epseth", false))
	assert.True(t, a.Is(agent.LeftLegBroken))
	assert.True(t, a.Is(agent.RightLegBroken))

	require.NoError(t, r.applyVenom(&a, "prefarar", false))
	assert.False(t, a.Is(agent.Deafness), "prefarar strips deafness first")

	require.NoError(t, r.applyVenom(&a, "asp", false))
	assert.Equal(t, uint8(1), a.Hidden.Unknown())

	assert.Error(t, r.applyVenom(&a, "lemonade", false))
}

func TestRelapseConcrete(t *testing.T) {
	s := newState(t)
	s.ForAgent("Other", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetFlag(agent.ThinBlood, true)
		a.PushToxin("kalmia")
	}))
	apply(t, s, 500, Relapse("Other"))

	require.Equal(t, 1, s.Branches("Other"))
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Asthma))
	assert.True(t, other.Hidden.IsGuessed(agent.Asthma))
}

func TestRelapseUncertainForks(t *testing.T) {
	s := newState(t)
	s.ForAgent("Other", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetFlag(agent.ThinBlood, true)
		a.PushToxin("kalmia")
		a.PushToxin("curare")
	}))
	apply(t, s, 500, Relapse("Other"))
	assert.Equal(t, 2, s.Branches("Other"))
}

func TestCombinations(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {1, 3}, {2, 3}}, combinations([]int{1, 2, 3}, 2))
	assert.Len(t, combinations([]int{1, 2, 3, 4, 5, 6}, 2), 15)
	assert.Nil(t, combinations([]int{1}, 2))
	assert.Nil(t, combinations([]int{1}, 0))
}

// ---------------------------------------------------------------------------
// Combat
// ---------------------------------------------------------------------------

func TestRandomAfflictionForks(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, CombatAction("Foe", "Subterfuge", "Bedazzle", "", "Other"))
	assert.Equal(t, 15, s.Branches("Other"))
	for _, b := range s.Agent("Other") {
		assert.Equal(t, 2, len(b.Hidden.GuessedFlags()))
	}
}

func TestRandomAfflictionDiscerned(t *testing.T) {
	s := newState(t)
	apply(t, s, 0,
		CombatAction("Foe", "Subterfuge", "Bedazzle", "", "Other"),
		DiscernedAfflict("dizziness"),
		DiscernedAfflict("laxity"),
	)
	require.Equal(t, 1, s.Branches("Other"))
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Dizziness))
	assert.True(t, other.Is(agent.Laxity))
}

func TestLimbDamageCapsWithoutBreak(t *testing.T) {
	s := newState(t)
	s.ForAgent("Other", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetLimbDamage(agent.LimbLeftLeg, 3000, false)
	}))
	apply(t, s, 0, CombatAction("Foe", "Zeal", "Pummel", "left leg", "Other"))
	leg := s.BorrowAgent("Other").Limbs.Limbs[agent.LimbLeftLeg]
	assert.Equal(t, agent.DamagedValue, leg.Damage)
	assert.False(t, leg.Broken)
}

func TestLimbDamageBreaks(t *testing.T) {
	s := newState(t)
	s.ForAgent("Other", agent.EffectFunc(func(a *agent.AgentState) {
		a.SetLimbDamage(agent.LimbLeftLeg, 3000, false)
	}))
	apply(t, s, 0,
		CombatAction("Foe", "Zeal", "Pummel", "left leg", "Other"),
		Damaged("Other", "left leg"),
	)
	leg := s.BorrowAgent("Other").Limbs.Limbs[agent.LimbLeftLeg]
	assert.True(t, leg.Broken)
	assert.Equal(t, int32(3950), leg.Damage)
}

func TestMissedAttackDoesNothing(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, CombatAction("Foe", "Zeal", "Sunkick", "", "Other"), Misses("Other"))
	other := s.BorrowAgent("Other")
	assert.False(t, other.Is(agent.Dizziness))
	assert.Equal(t, int32(0), other.Limbs.Limbs[agent.LimbHead].Damage)
}

func TestFlayWithoutTarget(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, CombatAction("Foe", "Subterfuge", "Flay", "fangbarrier", "Other"))
	other := s.BorrowAgent("Other")
	assert.False(t, other.Is(agent.Fangbarrier))
	assert.False(t, other.Is(agent.Rebounding), "flay strips in order")
}

func TestFlayNamedDefence(t *testing.T) {
	s := newState(t)
	apply(t, s, 0,
		Sent("flay Other fangbarrier"),
		CombatAction("Me", "Subterfuge", "Flay", "fangbarrier", "Other"),
	)
	other := s.BorrowAgent("Other")
	assert.False(t, other.Is(agent.Fangbarrier))
	assert.True(t, other.Is(agent.Rebounding))
}

func TestHypnosisSequence(t *testing.T) {
	s := newState(t)
	apply(t, s, 0,
		Sent("suggest Other stupidity"),
		CombatAction("Me", "Hypnosis", "Hypnotise", "", "Other"),
		CombatAction("Me", "Hypnosis", "Suggest", "", "Other"),
	)
	other := s.BorrowAgent("Other")
	require.True(t, other.Hypno.IsHypnotized())
	assert.Equal(t, []agent.Hypnosis{{Kind: agent.HypnosisAff, Aff: agent.Stupidity}}, other.Hypno.Queue())

	apply(t, s, 0, CombatAction("Me", "Hypnosis", "Seal", "", "Other"))
	assert.Equal(t, agent.HypnoSealed, s.BorrowAgent("Other").Hypno.Phase())

	apply(t, s, 0, Sent("snap Other"), CombatAction("Me", "Hypnosis", "Snap", "", ""))
	assert.Equal(t, agent.HypnoFiring, s.BorrowAgent("Other").Hypno.Phase())

	apply(t, s, 0,
		CombatAction("Other", "Hypnosis", "Fire", "", ""),
		OtherAfflicted("Other", "stupidity"),
	)
	other = s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Stupidity))
	assert.Equal(t, agent.HypnoEmpty, other.Hypno.Phase())
}

func TestAblazeStacks(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, CombatAction("Me", "Aff", "ablaze", "Hot flames", ""))
	assert.Equal(t, uint8(5), s.BorrowMe().Count(agent.Ablaze))
}

func TestShieldFromProcUsesNoBalance(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, Proc("Other", "Tattoos", "Shield", "", ""))
	other := s.BorrowAgent("Other")
	assert.True(t, other.Is(agent.Shielded))
	assert.True(t, other.Balanced(agent.BalanceEquil))

	apply(t, s, 0, CombatAction("Foe", "Tattoos", "Shield", "", ""))
	assert.False(t, s.BorrowAgent("Foe").Balanced(agent.BalanceEquil))
}

func TestFocusCuresInOrder(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Other", "stupidity", true))
	require.NoError(t, s.SetFlagForAgent("Other", "egocentric", true))
	apply(t, s, 0, CombatAction("Other", "Survival", "Focus", "", ""))
	other := s.BorrowAgent("Other")
	assert.False(t, other.Is(agent.Egocentric))
	assert.True(t, other.Is(agent.Stupidity))
	assert.Equal(t, 5.0, other.BalanceSeconds(agent.BalanceFocus))
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

func TestDiagnoseNeedsRequest(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetFlagForAgent("Me", "paresis", true))
	apply(t, s, 0, ListStart("Diagnose", "Me"), ListItem("Diagnose", "asthma"))
	me := s.BorrowMe()
	assert.True(t, me.Is(agent.Paresis))
	assert.False(t, me.Is(agent.Asthma))

	apply(t, s, 0, Sent("diagnose"), ListStart("Diagnose", "Me"), ListItem("Diagnose", "asthma"))
	me = s.BorrowMe()
	assert.False(t, me.Is(agent.Paresis))
	assert.True(t, me.Is(agent.Asthma))
}

func TestWounds(t *testing.T) {
	s := newState(t)
	apply(t, s, 0, ListStart("Wounds", "Other"), ListItem("Wounds", "left leg", "20"))
	assert.Equal(t, int32(2000), s.BorrowAgent("Other").Limbs.Limbs[agent.LimbLeftLeg].Damage)
}

func TestAlliesList(t *testing.T) {
	s := newState(t)
	slice := TimeSlice{
		Me:           "Me",
		Observations: []Observation{ListStart("Allies", "Me")},
		Lines: []Line{
			{Text: "You claim these people as allies:"},
			{Text: "------------------"},
			{Text: "Name"},
			{Text: "Alice"},
			{Text: "\x1b[31mBob\x1b[0m"},
			{Text: "------------------"},
			{Text: "Carol"},
		},
	}
	require.NoError(t, s.ApplyTimeSlice(context.Background(), &slice, nil))
	assert.Equal(t, []string{"Alice", "Bob"}, s.PlayerList("Me_allies"))
}

func TestUnknownList(t *testing.T) {
	s := newState(t)
	slice := TimeSlice{Me: "Me", Observations: []Observation{ListStart("Shopping", "Me")}}
	assert.Error(t, s.ApplyTimeSlice(context.Background(), &slice, nil))
}
