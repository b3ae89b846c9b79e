package agent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBalanceFromName checks the reported names and the lowercase fallback.
func TestBalanceFromName(t *testing.T) {
	assert.Equal(t, BalanceBalance, BalanceFromName("Balance"))
	assert.Equal(t, BalanceEquil, BalanceFromName("Equilibrium"))
	assert.Equal(t, BalanceSecondary, BalanceFromName("shadow"))
	assert.Equal(t, BalanceSalve, BalanceFromName("Salve"))
	assert.Equal(t, BalanceWritheWeb, BalanceFromName("writhe_web"))
	assert.Equal(t, BalanceUnknown, BalanceFromName("nonsense"))
	assert.Equal(t, "pill", BalancePill.String())
}

func TestSecondsTruncates(t *testing.T) {
	assert.Equal(t, Ticks(150), Seconds(1.5))
	assert.Equal(t, Ticks(200), Seconds(2))
	assert.Equal(t, 0.25, Ticks(25).ToSeconds())
}

func TestTicksSaturate(t *testing.T) {
	assert.Equal(t, Ticks(-50), Ticks(150).Sub(200))
	assert.Equal(t, Ticks(350), Ticks(150).Add(200))
	assert.Equal(t, -TicksLimit, Ticks(200).Sub(math.MaxInt32))
	assert.Equal(t, -TicksLimit, (-TicksLimit).Sub(1000))
	assert.Equal(t, TicksLimit, TicksLimit.Add(math.MaxInt32))
}

func TestLimbNames(t *testing.T) {
	l, ok := LimbFromName("left_arm")
	require.True(t, ok)
	assert.Equal(t, LimbLeftArm, l)

	l, ok = LimbFromName("Right Leg")
	require.True(t, ok)
	assert.Equal(t, LimbRightLeg, l)

	_, ok = LimbFromName("tail")
	assert.False(t, ok)
	assert.Equal(t, "left arm", LimbLeftArm.String())
}

// TestLimbRotation verifies both rotation directions cycle the four limbs.
func TestLimbRotation(t *testing.T) {
	to, ok := LimbLeftArm.Rotated(false)
	require.True(t, ok)
	assert.Equal(t, LimbRightArm, to)

	to, _ = LimbLeftArm.Rotated(true)
	assert.Equal(t, LimbLeftLeg, to)

	_, ok = LimbHead.Rotated(false)
	assert.False(t, ok)

	for _, counter := range []bool{false, true} {
		l := LimbRightLeg
		for i := 0; i < 4; i++ {
			l, _ = l.Rotated(counter)
		}
		assert.Equal(t, LimbRightLeg, l)
	}
}

func TestLimbFlags(t *testing.T) {
	f, ok := LimbRightLeg.CrippledFlag()
	require.True(t, ok)
	assert.Equal(t, RightLegCrippled, f)
	_, ok = LimbTorso.CrippledFlag()
	assert.False(t, ok)
	assert.Equal(t, TorsoBroken, LimbTorso.BrokenFlag())
	assert.Equal(t, LeftArmMangled, LimbLeftArm.MangledFlag())
}

// TestFlagFromName covers every accepted spelling plus aliases.
func TestFlagFromName(t *testing.T) {
	for _, name := range []string{"left_arm_broken", "LeftArmBroken", "left arm broken", "left-arm-broken"} {
		f, ok := FlagFromName(name)
		require.True(t, ok, name)
		assert.Equal(t, LeftArmBroken, f, name)
	}
	f, ok := FlagFromName("mystified")
	require.True(t, ok)
	assert.Equal(t, Voidtrapped, f)

	f, ok = FlagFromName("fungal_invasion")
	require.True(t, ok)
	assert.Equal(t, Impeded, f)

	_, ok = FlagFromName("not_a_flag")
	assert.False(t, ok)
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "left_arm_broken", LeftArmBroken.Name())
	assert.Equal(t, "self_loathing", SelfLoathing.Name())
	assert.Equal(t, "paresis", Paresis.Name())
	for f := Flag(0); f < FlagCount; f++ {
		if f == simpleFlagEnd || f == counterFlagEnd {
			continue
		}
		got, ok := FlagFromName(f.Name())
		require.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}
}

func TestFlagKinds(t *testing.T) {
	assert.False(t, Rebounding.IsAffliction())
	assert.False(t, Manabarbs.IsAffliction())
	assert.True(t, Sadness.IsAffliction())
	assert.True(t, Allergies.IsAffliction())
	assert.True(t, LeftArmBroken.IsAffliction())
	assert.True(t, Ablaze.IsCounter())
	assert.False(t, Paresis.IsCounter())
	assert.True(t, HeadMangled.IsLimbFlag())
	assert.True(t, WritheWeb.IsWrithe())
	assert.Equal(t, Seduction, Remorse.Normalize())
	assert.Equal(t, Temptation, Contrition.Normalize())
	assert.Equal(t, Paresis, Paresis.Normalize())
}

// TestFlagSetCounters verifies counters stack and clear independently of bits.
func TestFlagSetCounters(t *testing.T) {
	var s FlagSet
	s.Set(Allergies, true)
	assert.Equal(t, uint8(1), s.Count(Allergies))
	assert.True(t, s.TickUp(Allergies))
	assert.Equal(t, uint8(2), s.Count(Allergies))
	s.Set(Allergies, true)
	assert.Equal(t, uint8(2), s.Count(Allergies), "setting a counter that is already up keeps its stacks")
	s.Set(Allergies, false)
	assert.False(t, s.Is(Allergies))

	assert.False(t, s.TickUp(Paresis))
	s.SetCount(Paresis, 3)
	assert.Equal(t, uint8(1), s.Count(Paresis))
}

func TestFlagSetAfflictions(t *testing.T) {
	var s FlagSet
	s.Set(Rebounding, true)
	s.Set(Asthma, true)
	s.Set(Sadness, true)
	s.SetCount(Ablaze, 2)
	assert.Equal(t, []Flag{Sadness, Asthma, Ablaze}, s.Afflictions())

	s.ClearAfflictions()
	assert.Empty(t, s.Afflictions())
	assert.True(t, s.Is(Rebounding))
}
