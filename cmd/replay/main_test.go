package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	_, err := inputs(dir)
	assert.Error(t, err, "an empty directory has nothing to replay")

	for _, name := range []string{"slices-20240301-11.jsonl.zst", "slices-20240301-10.jsonl.zst", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	files, err := inputs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "slices-20240301-10.jsonl.zst"),
		filepath.Join(dir, "slices-20240301-11.jsonl.zst"),
	}, files)

	single := filepath.Join(dir, "notes.txt")
	files, err = inputs(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)
}

func TestDescribe(t *testing.T) {
	a := agent.NewAgentState()
	a.SetFlag(agent.Paresis, true)
	a.SetBalance(agent.BalanceBalance, 2.5)

	r := describe(&a)
	assert.Equal(t, uint32(0), r.Strikes)
	assert.Contains(t, r.Afflictions, agent.Paresis.String())
	assert.InDelta(t, 2.5, r.Balances[agent.BalanceBalance.String()], 0.01)
	assert.NotContains(t, r.Balances, agent.BalancePill.String())
}
