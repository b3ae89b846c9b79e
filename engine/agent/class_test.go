package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassFromName(t *testing.T) {
	for name, want := range map[string]Class{
		"Zealot":     ClassZealot,
		"Syssin":     ClassSyssin,
		"Archivists": ClassArchivist,
		"Titan Lord": ClassLord,
	} {
		got, ok := ClassFromName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := ClassFromName("Adventurer")
	assert.False(t, ok)

	assert.True(t, ClassSyssin.IsMirror())
	assert.Equal(t, ClassInfiltrator, ClassSyssin.Normal())
	assert.Equal(t, ClassZealot, ClassRavager.Normal())
	assert.Equal(t, ClassMonk, ClassMonk.Normal())
}

// TestInitializeForMirror verifies a mirror class picks its base's variant.
func TestInitializeForMirror(t *testing.T) {
	var c ClassState
	_, ok := c.NormalizedClass()
	assert.False(t, ok)

	c.InitializeFor(ClassRavager)
	got, ok := c.NormalizedClass()
	require.True(t, ok)
	assert.Equal(t, ClassZealot, got)
	_, ok = c.Zealot()
	assert.True(t, ok)
	_, ok = c.Monk()
	assert.False(t, ok)

	c.InitializeFor(ClassSyssin)
	got, _ = c.NormalizedClass()
	assert.Equal(t, ClassInfiltrator, got)
}

func TestInitializeForKeepsPayload(t *testing.T) {
	var c ClassState
	c.AssumeMonk(func(m *MonkState) { m.Kai = 5 })
	c.InitializeFor(ClassMonk)
	m, ok := c.Monk()
	require.True(t, ok)
	assert.Equal(t, Ticks(5), m.Kai)
	assert.Equal(t, StanceNone, StanceFromName("pirouette"))
	assert.Equal(t, "scorpion", StanceFromName("scorpion").String())
}

// TestZenithPhases walks zenith from initiation through expiry.
func TestZenithPhases(t *testing.T) {
	var c ClassState
	c.AssumeZealot(func(z *ZealotState) { z.Zenith.Initiate() })

	c.Wait(2000)
	z, _ := c.Zealot()
	assert.True(t, z.Zenith.Active())
	assert.Equal(t, Ticks(500), z.Zenith.Timer)

	c.Wait(500)
	assert.False(t, z.Zenith.Active())
	assert.Equal(t, ZenithInactive, z.Zenith.Phase)

	z.Zenith.Initiate()
	c.Wait(2600)
	assert.Equal(t, ZenithInactive, z.Zenith.Phase)
}

func TestShifterTimeSince(t *testing.T) {
	var c ClassState
	c.InitializeFor(ClassShapeshifter)
	c.Wait(120)
	sh, ok := c.Shifter()
	require.True(t, ok)
	assert.Equal(t, Ticks(120), sh.TimeSince)
}

func TestDodgeCooldown(t *testing.T) {
	var d DodgeState
	assert.True(t, d.CanDodge())

	d.RegisterHit()
	assert.Equal(t, Ticks(200), d.Cooldown())
	d.RegisterHit()
	d.Wait(50)
	assert.Equal(t, Ticks(150), d.Cooldown(), "hits do not stack the cooldown")
	assert.True(t, d.CanDodgeAt(2))
	assert.False(t, d.CanDodgeAt(1))

	d.RegisterDodge()
	d.Wait(1000)
	assert.True(t, d.CanDodge())
}

func TestAggroWindows(t *testing.T) {
	var a AggroState
	a.Wait(1)
	a.RegisterHit()
	a.RegisterHit()
	assert.Equal(t, 2, a.Aggro())

	a.Wait(1000)
	a.RegisterHit()
	assert.Equal(t, 3, a.Aggro())

	a.Wait(1000)
	assert.Equal(t, 1, a.Aggro())
}

func TestChannelEnds(t *testing.T) {
	c := Heelrush(LimbLeftLeg, CountDown(300))
	require.True(t, c.Active())
	c.Wait(299)
	assert.True(t, c.Active())
	c.Wait(1)
	assert.False(t, c.Active())
	assert.Equal(t, ChannelState{}, c)
}
