package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintMatchesEquality(t *testing.T) {
	a := NewAgentState()
	b := a.Clone()
	require.True(t, a.Equal(&b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.SetFlag(Asthma, true)
	assert.False(t, a.Equal(&b))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

// TestCanonicalCoversHiddenFields spot-checks fields that are easy to miss.
func TestCanonicalCoversHiddenFields(t *testing.T) {
	base := NewAgentState()
	mutations := map[string]func(s *AgentState){
		"balance":  func(s *AgentState) { s.SetBalance(BalanceSalve, 1) },
		"unknown":  func(s *AgentState) { s.Hidden.AddUnknown() },
		"guess":    func(s *AgentState) { s.AddGuess(Asthma) },
		"branch":   func(s *AgentState) { s.BranchAt(10) },
		"relapse":  func(s *AgentState) { s.PushToxin("kalmia") },
		"hypno":    func(s *AgentState) { s.Hypno.PushSuggestion(Hypnosis{Kind: HypnosisAction, Action: "bow"}) },
		"parry":    func(s *AgentState) { s.SetParrying(LimbTorso) },
		"wield":    func(s *AgentState) { s.WieldMulti("dagger", "") },
		"restore":  func(s *AgentState) { s.StartRestore(LimbHead, false, nil) },
		"class":    func(s *AgentState) { s.Class.InitializeFor(ClassMonk) },
		"pipe":     func(s *AgentState) { s.Pipes.PuffAll(HerbReishi) },
		"counter":  func(s *AgentState) { s.SetCount(Ablaze, 3) },
		"room":     func(s *AgentState) { s.RoomID = 42 },
		"dodge":    func(s *AgentState) { s.Dodge.RegisterDodge() },
		"limbdmg":  func(s *AgentState) { s.SetLimbDamage(LimbLeftArm, 10, false) },
		"stat":     func(s *AgentState) { s.SetStat(StatSips, 3) },
		"elevated": func(s *AgentState) { s.Elevation = ElevationTrees },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := base.Clone()
			mutate(&s)
			assert.False(t, base.Equal(&s))
		})
	}
}

func TestForkFlags(t *testing.T) {
	s := NewAgentState()
	s.SetFlag(Asthma, true)

	out, ok := ForkFlags(Asthma, Clumsiness, Weariness).Apply(&s)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.True(t, out[0].Is(Clumsiness))
	assert.True(t, out[0].Hidden.IsGuessed(Clumsiness))
	assert.False(t, out[0].Is(Weariness))
	assert.True(t, out[1].Is(Weariness))
	assert.False(t, s.Is(Clumsiness), "the source branch is untouched")

	_, ok = ForkFlags(Asthma).Apply(&s)
	assert.False(t, ok)
}
