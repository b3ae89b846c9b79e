package engine

// ---------------------------------------------------------------------------
// Observation kinds
// ---------------------------------------------------------------------------

// Kind identifies what an Observation reports.
type Kind uint8

const (
	KindCombatAction Kind = iota // an ability used by Caster on Target
	KindProc                     // a follow-on effect of an ability
	KindSimpleCure               // Caster used a pill, salve or pipe
	KindDualWield
	KindWield
	KindUnwield
	KindTwoHandedWield
	KindConnects
	KindDevenoms // a venom came off the weapon
	KindParryStart
	KindParry
	KindDamaged // a limb crossed the break threshold
	KindMangled // a limb crossed the mangle threshold
	KindAbsorbed
	KindDiscernedAfflict
	KindHiddenAff
	KindRebounds
	KindDiverts
	KindDodges
	KindMisses
	KindOtherAfflicted
	KindDiscernedCure
	KindLostRebound
	KindLostShield
	KindLostFangBarrier
	KindPurgeVenom
	KindFlameShield
	KindFangbarrier
	KindShield
	KindListStart
	KindListItem
	KindAfflicted // we gained an affliction
	KindDiscovered
	KindCured // we lost an affliction
	KindGained
	KindStripped
	KindRelapse
	KindTickAff
	KindFillPipe
	KindPipeEmpty
	KindBalance
	KindBalanceBack
	KindLimbDamage
	KindLimbHeal
	KindLimbDone
	KindFall
	KindStand
	KindSent // a command we sent
	KindRoom

	kindCount
)

var kindNames = [kindCount]string{
	"CombatAction", "Proc", "SimpleCure", "DualWield", "Wield", "Unwield",
	"TwoHandedWield", "Connects", "Devenoms", "ParryStart", "Parry", "Damaged",
	"Mangled", "Absorbed", "DiscernedAfflict", "HiddenAff", "Rebounds", "Diverts",
	"Dodges", "Misses", "OtherAfflicted", "DiscernedCure", "LostRebound",
	"LostShield", "LostFangBarrier", "PurgeVenom", "FlameShield", "Fangbarrier",
	"Shield", "ListStart", "ListItem", "Afflicted", "Discovered", "Cured",
	"Gained", "Stripped", "Relapse", "TickAff", "FillPipe", "PipeEmpty",
	"Balance", "BalanceBack", "LimbDamage", "LimbHeal", "LimbDone", "Fall",
	"Stand", "Sent", "Room",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Unknown"
}

// KindFromName parses a kind by its exact name.
func KindFromName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return kindCount, false
}

// CureType says how a SimpleCure was taken.
type CureType uint8

const (
	CurePill CureType = iota
	CureSalve
	CureSmoke

	cureTypeCount
)

var cureTypeNames = [cureTypeCount]string{"Pill", "Salve", "Smoke"}

func (c CureType) String() string {
	if c < cureTypeCount {
		return cureTypeNames[c]
	}
	return "Unknown"
}

// CureTypeFromName parses "Pill", "Salve" or "Smoke".
func CureTypeFromName(name string) (CureType, bool) {
	for i, n := range cureTypeNames {
		if n == name {
			return CureType(i), true
		}
	}
	return cureTypeCount, false
}

// ---------------------------------------------------------------------------
// Observation
// ---------------------------------------------------------------------------

// Observation is one parsed event. Which fields are meaningful depends on
// Kind; the constructors below fill them consistently.
type Observation struct {
	Kind Kind

	Who  string // subject agent
	What string // affliction, defence, limb, venom, balance, herb or command

	// CombatAction, Proc and SimpleCure
	Caster     string
	Category   string
	Skill      string
	Annotation string
	Target     string
	Cure       CureType
	Location   string // salve location

	// Wield family
	Hand  string
	Left  string
	Right string

	Value float64  // seconds for Balance, percent for limb damage, room id for Room
	Args  []string // ListItem fields
}

// CombatAction reports caster using a skill on target.
func CombatAction(caster, category, skill, annotation, target string) Observation {
	return Observation{Kind: KindCombatAction, Caster: caster, Category: category, Skill: skill, Annotation: annotation, Target: target}
}

// Proc reports a secondary effect of a skill.
func Proc(caster, category, skill, annotation, target string) Observation {
	return Observation{Kind: KindProc, Caster: caster, Category: category, Skill: skill, Annotation: annotation, Target: target}
}

// Pill reports caster eating a pill.
func Pill(caster, pill string) Observation {
	return Observation{Kind: KindSimpleCure, Caster: caster, Cure: CurePill, What: pill}
}

// Salve reports caster applying a salve to a location.
func Salve(caster, salve, location string) Observation {
	return Observation{Kind: KindSimpleCure, Caster: caster, Cure: CureSalve, What: salve, Location: location}
}

// Smoke reports caster smoking a herb.
func Smoke(caster, herb string) Observation {
	return Observation{Kind: KindSimpleCure, Caster: caster, Cure: CureSmoke, What: herb}
}

func DualWield(who, left, right string) Observation {
	return Observation{Kind: KindDualWield, Who: who, Left: left, Right: right}
}

func Wield(who, what, hand string) Observation {
	return Observation{Kind: KindWield, Who: who, What: what, Hand: hand}
}

func Unwield(who, what, hand string) Observation {
	return Observation{Kind: KindUnwield, Who: who, What: what, Hand: hand}
}

func TwoHandedWield(who, what string) Observation {
	return Observation{Kind: KindTwoHandedWield, Who: who, What: what}
}

func Connects(who string) Observation { return Observation{Kind: KindConnects, Who: who} }

func Devenoms(venom string) Observation { return Observation{Kind: KindDevenoms, What: venom} }

func ParryStart(who, limb string) Observation {
	return Observation{Kind: KindParryStart, Who: who, What: limb}
}

func Parry(who, what string) Observation { return Observation{Kind: KindParry, Who: who, What: what} }

func Damaged(who, limb string) Observation {
	return Observation{Kind: KindDamaged, Who: who, What: limb}
}

func Mangled(who, limb string) Observation {
	return Observation{Kind: KindMangled, Who: who, What: limb}
}

func Absorbed(who, what string) Observation {
	return Observation{Kind: KindAbsorbed, Who: who, What: what}
}

func DiscernedAfflict(aff string) Observation {
	return Observation{Kind: KindDiscernedAfflict, What: aff}
}

func HiddenAff() Observation { return Observation{Kind: KindHiddenAff} }
func Rebounds() Observation  { return Observation{Kind: KindRebounds} }
func Diverts() Observation   { return Observation{Kind: KindDiverts} }

func Dodges(who string) Observation { return Observation{Kind: KindDodges, Who: who} }
func Misses(who string) Observation { return Observation{Kind: KindMisses, Who: who} }

func OtherAfflicted(who, aff string) Observation {
	return Observation{Kind: KindOtherAfflicted, Who: who, What: aff}
}

func DiscernedCure(who, aff string) Observation {
	return Observation{Kind: KindDiscernedCure, Who: who, What: aff}
}

func LostRebound(who string) Observation     { return Observation{Kind: KindLostRebound, Who: who} }
func LostShield(who string) Observation      { return Observation{Kind: KindLostShield, Who: who} }
func LostFangBarrier(who string) Observation { return Observation{Kind: KindLostFangBarrier, Who: who} }

func PurgeVenom(who, venom string) Observation {
	return Observation{Kind: KindPurgeVenom, Who: who, What: venom}
}

func FlameShield(who string) Observation { return Observation{Kind: KindFlameShield, Who: who} }
func Fangbarrier() Observation           { return Observation{Kind: KindFangbarrier} }
func Shield() Observation                { return Observation{Kind: KindShield} }

// ListStart opens a listing (Wounds, Diagnose, Pipes, Allies, Enemies)
// belonging to who.
func ListStart(list, who string) Observation {
	return Observation{Kind: KindListStart, What: list, Who: who}
}

// ListItem is one row of a listing.
func ListItem(list string, fields ...string) Observation {
	return Observation{Kind: KindListItem, What: list, Args: fields}
}

func Afflicted(aff string) Observation  { return Observation{Kind: KindAfflicted, What: aff} }
func Discovered(aff string) Observation { return Observation{Kind: KindDiscovered, What: aff} }
func Cured(aff string) Observation      { return Observation{Kind: KindCured, What: aff} }

func Gained(who, def string) Observation {
	return Observation{Kind: KindGained, Who: who, What: def}
}

func Stripped(def string) Observation { return Observation{Kind: KindStripped, What: def} }
func Relapse(who string) Observation  { return Observation{Kind: KindRelapse, Who: who} }

func TickAff(who, aff string) Observation {
	return Observation{Kind: KindTickAff, Who: who, What: aff}
}

func FillPipe(herb string) Observation { return Observation{Kind: KindFillPipe, What: herb} }
func PipeEmpty() Observation           { return Observation{Kind: KindPipeEmpty} }

// Balance reports one of our balances being used for seconds.
func Balance(name string, seconds float64) Observation {
	return Observation{Kind: KindBalance, What: name, Value: seconds}
}

func BalanceBack(name string) Observation { return Observation{Kind: KindBalanceBack, What: name} }

// LimbDamage reports damage to one of our limbs, in percent.
func LimbDamage(limb string, percent float64) Observation {
	return Observation{Kind: KindLimbDamage, What: limb, Value: percent}
}

func LimbHeal(limb string, percent float64) Observation {
	return Observation{Kind: KindLimbHeal, What: limb, Value: percent}
}

func LimbDone(limb string) Observation { return Observation{Kind: KindLimbDone, What: limb} }

func Fall(who string) Observation  { return Observation{Kind: KindFall, Who: who} }
func Stand(who string) Observation { return Observation{Kind: KindStand, Who: who} }

// Sent reports a command we sent.
func Sent(command string) Observation { return Observation{Kind: KindSent, What: command} }

// Room reports who being seen in a room.
func Room(who string, id int64) Observation {
	return Observation{Kind: KindRoom, Who: who, Value: float64(id)}
}
