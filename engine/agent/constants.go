package agent

import (
	"math"
	"strings"
)

// Ticks counts game time in hundredths of a second.
type Ticks int32

// BalanceScale is the number of ticks in one second.
const BalanceScale = 100

// Seconds converts a duration in seconds to ticks, truncating.
func Seconds(s float64) Ticks { return Ticks(s * BalanceScale) }

// ToSeconds converts ticks back to seconds.
func (t Ticks) ToSeconds() float64 { return float64(t) / BalanceScale }

// TicksLimit bounds every accumulated count. Sums and differences saturate
// here, so any number of waits keeps the sign right.
const TicksLimit Ticks = math.MaxInt32 / 2

// Add returns t+d saturated to [-TicksLimit, TicksLimit].
func (t Ticks) Add(d Ticks) Ticks { return clampTicks(int64(t) + int64(d)) }

// Sub returns t-d saturated to [-TicksLimit, TicksLimit].
func (t Ticks) Sub(d Ticks) Ticks { return clampTicks(int64(t) - int64(d)) }

func clampTicks(v int64) Ticks {
	switch {
	case v > int64(TicksLimit):
		return TicksLimit
	case v < -int64(TicksLimit):
		return -TicksLimit
	}
	return Ticks(v)
}

// ---------------------------------------------------------------------------
// Balances
// ---------------------------------------------------------------------------

// Balance identifies a named recovery countdown.
type Balance uint8

const (
	// Actions
	BalanceBalance   Balance = iota // physical balance
	BalanceEquil                    // equilibrium
	BalanceSecondary                // shadow / class secondary

	// Curatives
	BalanceElixir
	BalancePill
	BalanceSalve
	BalanceSmoke
	BalanceFocus
	BalanceTree
	BalanceRegenerate

	// Misc
	BalanceFitness
	BalanceClassCure1
	BalanceClassCure2

	// Cooldowns
	BalanceWrath
	BalanceFirefist
	BalancePendulum
	BalanceDisable
	BalanceDisabled

	// Timers
	BalanceHypnosis
	BalanceFangbarrier
	BalanceRebounding
	BalanceVoid
	BalanceParesisParalysis
	BalanceSelfLoathing
	BalanceManabarbs
	BalancePacifism
	BalanceShock
	BalanceBurnout
	BalanceVoyria

	// Writhes
	BalanceWritheDartpinned
	BalanceWritheWeb

	BalanceCount // number of tracked balances
)

// BalanceUnknown is returned for names that do not match any balance.
const BalanceUnknown Balance = 255

var balanceNames = [BalanceCount]string{
	"balance", "equil", "secondary",
	"elixir", "pill", "salve", "smoke", "focus", "tree", "regenerate",
	"fitness", "class_cure1", "class_cure2",
	"wrath", "firefist", "pendulum", "disable", "disabled",
	"hypnosis", "fangbarrier", "rebounding", "void", "paresis_paralysis",
	"self_loathing", "manabarbs", "pacifism", "shock", "burnout", "voyria",
	"writhe_dartpinned", "writhe_web",
}

func (b Balance) String() string {
	if b < BalanceCount {
		return balanceNames[b]
	}
	return "unknown"
}

// BalanceFromName maps a reported balance name to a Balance.
func BalanceFromName(name string) Balance {
	switch name {
	case "Balance":
		return BalanceBalance
	case "Equilibrium", "equilibrium":
		return BalanceEquil
	case "Shadow", "shadow":
		return BalanceSecondary
	}
	lower := strings.ToLower(name)
	for i, n := range balanceNames {
		if n == lower {
			return Balance(i)
		}
	}
	return BalanceUnknown
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stat identifies a numeric vital.
type Stat uint8

const (
	StatHealth Stat = iota
	StatMana
	StatSP
	StatSips
	StatShields

	StatCount
)

// ---------------------------------------------------------------------------
// Limbs
// ---------------------------------------------------------------------------

// Limb identifies a body part that takes damage.
type Limb uint8

const (
	LimbHead Limb = iota
	LimbTorso
	LimbLeftArm
	LimbRightArm
	LimbLeftLeg
	LimbRightLeg

	LimbCount
)

// AllLimbs lists every limb in index order.
var AllLimbs = [LimbCount]Limb{LimbHead, LimbTorso, LimbLeftArm, LimbRightArm, LimbLeftLeg, LimbRightLeg}

var limbNames = [LimbCount]string{"head", "torso", "left arm", "right arm", "left leg", "right leg"}

func (l Limb) String() string {
	if l < LimbCount {
		return limbNames[l]
	}
	return "size"
}

// LimbFromName parses "head", "left arm", "left_arm" and so on.
func LimbFromName(name string) (Limb, bool) {
	n := strings.ToLower(strings.ReplaceAll(name, "_", " "))
	for i, ln := range limbNames {
		if ln == n {
			return Limb(i), true
		}
	}
	return LimbHead, false
}

// CrippledFlag returns the crippled flag for arms and legs.
func (l Limb) CrippledFlag() (Flag, bool) {
	switch l {
	case LimbLeftArm:
		return LeftArmCrippled, true
	case LimbRightArm:
		return RightArmCrippled, true
	case LimbLeftLeg:
		return LeftLegCrippled, true
	case LimbRightLeg:
		return RightLegCrippled, true
	}
	return Dead, false
}

// Rotated returns where a limb's damage moves when the body is twisted.
// Head and torso do not rotate.
func (l Limb) Rotated(counter bool) (Limb, bool) {
	if counter {
		switch l {
		case LimbLeftArm:
			return LimbLeftLeg, true
		case LimbRightArm:
			return LimbLeftArm, true
		case LimbLeftLeg:
			return LimbRightLeg, true
		case LimbRightLeg:
			return LimbRightArm, true
		}
		return l, false
	}
	switch l {
	case LimbLeftArm:
		return LimbRightArm, true
	case LimbRightArm:
		return LimbRightLeg, true
	case LimbLeftLeg:
		return LimbLeftArm, true
	case LimbRightLeg:
		return LimbLeftLeg, true
	}
	return l, false
}

// ---------------------------------------------------------------------------
// Elevation
// ---------------------------------------------------------------------------

// Elevation is the vertical position of an agent within its room.
type Elevation uint8

const (
	ElevationGround Elevation = iota
	ElevationFlying
	ElevationTrees
	ElevationRoof
)
