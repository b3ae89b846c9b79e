package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggest(f Flag) Hypnosis { return Hypnosis{Kind: HypnosisAff, Aff: f} }

func TestSealEmptyDoesNothing(t *testing.T) {
	var h HypnoState
	h.Seal(300)
	assert.Equal(t, HypnoEmpty, h.Phase())
}

// TestSealCarriesOvershoot verifies a seal that breaks mid-wait spends the
// remainder of the wait inside the firing window.
func TestSealCarriesOvershoot(t *testing.T) {
	var h HypnoState
	h.PushSuggestion(suggest(Asthma))
	h.PushSuggestion(Hypnosis{Kind: HypnosisTrigger, Action: "rose"})
	h.PushSuggestion(suggest(Clumsiness))
	h.Seal(300)
	require.Equal(t, HypnoSealed, h.Phase())

	h.Wait(350)
	assert.Equal(t, HypnoFiring, h.Phase())
	assert.Equal(t, FiringWindow-50, h.TimeLeft())
	assert.Equal(t, 2, h.SuggestionCount(), "triggers are dropped on activation")

	f, ok := h.NextAff()
	require.True(t, ok)
	assert.Equal(t, Asthma, f)
}

func TestSealOvershootPastWindow(t *testing.T) {
	var h HypnoState
	h.PushSuggestion(suggest(Asthma))
	h.Seal(100)
	h.Wait(100 + FiringWindow)
	assert.Equal(t, HypnoEmpty, h.Phase())
	assert.Zero(t, h.SuggestionCount())
}

func TestFireInOrder(t *testing.T) {
	var h HypnoState
	h.PushSuggestion(suggest(Asthma))
	h.PushSuggestion(suggest(Clumsiness))

	_, ok := h.Fire()
	assert.False(t, ok, "hypnotized targets do not fire")

	h.Activate()
	h.Wait(200)
	first, ok := h.Fire()
	require.True(t, ok)
	assert.Equal(t, Asthma, first.Aff)
	assert.Equal(t, FiringWindow, h.TimeLeft())

	second, ok := h.Fire()
	require.True(t, ok)
	assert.Equal(t, Clumsiness, second.Aff)
	assert.Equal(t, HypnoEmpty, h.Phase())
}

func TestFireOnSealed(t *testing.T) {
	var h HypnoState
	h.PushSuggestion(suggest(Asthma))
	h.PushSuggestion(suggest(Clumsiness))
	h.Seal(500)

	got, ok := h.Fire()
	require.True(t, ok)
	assert.Equal(t, Asthma, got.Aff)
	assert.Equal(t, HypnoFiring, h.Phase())
}

func TestFiringWindowExpires(t *testing.T) {
	var h HypnoState
	h.PushSuggestion(suggest(Asthma))
	h.Activate()
	h.Wait(FiringWindow - 1)
	assert.Equal(t, HypnoFiring, h.Phase())
	h.Wait(1)
	assert.Equal(t, HypnoEmpty, h.Phase())
}

func TestPopSuggestion(t *testing.T) {
	var h HypnoState
	_, ok := h.PopSuggestion()
	assert.False(t, ok)

	h.PushSuggestion(suggest(Asthma))
	h.PushSuggestion(suggest(Clumsiness))
	got, ok := h.PopSuggestion()
	require.True(t, ok)
	assert.Equal(t, Clumsiness, got.Aff)
	assert.Equal(t, []Hypnosis{suggest(Asthma)}, h.Queue())
	assert.True(t, h.IsHypnotized())
}
