package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHerbFromString(t *testing.T) {
	assert.Equal(t, HerbWillow, HerbFromString("a pipe of willow bark"))
	assert.Equal(t, HerbYarrow, HerbFromString("yarrow"))
	assert.Equal(t, HerbEmpty, HerbFromString("nothing"))
}

// TestUnknownPipeCountsPuffs verifies an unlisted pipe is assumed full until
// it runs dry, and is then tracked puff by puff.
func TestUnknownPipeCountsPuffs(t *testing.T) {
	var p PipesState
	assert.Empty(t, p.Empties())

	p.PuffAll(HerbYarrow)
	assert.Equal(t, []Herb{HerbYarrow}, p.Empties())

	assert.True(t, p.Puff(HerbYarrow))
	got := p.Get(HerbYarrow)
	assert.Equal(t, PipeUnknownFilledPuffs, got.Knowledge)
	assert.Equal(t, PipePuffs-1, got.Puffs)

	for i := 0; i < PipePuffs-1; i++ {
		p.Puff(HerbYarrow)
	}
	assert.Equal(t, PipeUnknownUnfilled, p.Get(HerbYarrow).Knowledge)

	p.Refill(HerbYarrow)
	assert.Equal(t, PipeUnknownFilled, p.Get(HerbYarrow).Knowledge)
}

func TestKnownPipe(t *testing.T) {
	var p PipesState
	p.Initialize(HerbWillow, Pipe{ID: 1234, Puffs: 1, Lit: 100})

	assert.True(t, p.Puff(HerbWillow))
	assert.False(t, p.Puff(HerbWillow))
	assert.Equal(t, []PipeRefill{{Herb: HerbWillow, ID: 1234}}, p.NeededRefills())
	assert.Equal(t, []Herb{HerbWillow}, p.Empties())

	p.Wait(40)
	assert.Equal(t, Ticks(60), p.Get(HerbWillow).Pipe.Lit)

	p.Refill(HerbWillow)
	assert.Equal(t, PipePuffs, p.Get(HerbWillow).Pipe.Puffs)
	assert.Empty(t, p.NeededRefills())
	assert.False(t, p.Puff(HerbEmpty))
}
