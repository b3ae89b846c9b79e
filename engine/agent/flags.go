package agent

import (
	"strings"
	"unicode"
)

// Flag identifies a boolean or counted condition on an agent: defences,
// afflictions, timers and the limb conditions stored on the limb set.
// Every flag from Sadness onward is an affliction.
type Flag uint16

const (
	// Control
	Dead Flag = iota
	Player
	Ally
	Enemy

	// Defences
	Shielded
	Deathsight
	Insomnia
	Instawake
	Deafness
	Blindness
	Thirdeye
	Daydreams
	Fangbarrier
	Waterbreathing
	Waterwalking
	Rebounding
	AssumedRebounding
	Levitation
	VenomResistance
	Speed
	Temperance
	Vigor
	Insulation
	Density
	Flame
	Cloak
	Reflection

	// Infiltrator defences
	Shroud
	Ghosted
	Shadowslip
	Weaving
	Hiding
	Shadowsight

	// Zealot defences
	Mindspark
	Zenith
	Firefist
	Swagger
	Wrath

	// Bard defences
	Destiny
	Sheath
	Aurora
	Equipoise
	Stretching
	Halfbeat
	Discordance
	Euphonia

	// Uncounted
	Manabarbs

	// Antipsychotic
	Sadness
	Confusion
	Dementia
	Hallucinations
	Paranoia
	Hatred
	Addiction
	Hypersomnia
	BloodCurse
	Blighted

	// Euphoriant
	SelfPity
	Stupidity
	Dizziness
	Faintness
	Shyness
	Epilepsy
	Impatience
	Dissonance
	Infested

	// Eucrasia
	Worrywart
	Misery
	Hollow
	Narcolepsy
	Perplexed

	// Decongestant
	Baldness
	Clumsiness
	Hypochondria
	Weariness
	Asthma
	Sensitivity
	RingingEars
	Impairment
	BloodPoison

	// Depressant
	CommitmentFear
	Merciful
	Recklessness
	Egocentric
	Masochism
	Agoraphobia
	Loneliness
	Berserking
	Vertigo
	Claustrophobia
	Nyctophobia

	// Coagulation
	BodyOdor
	Lethargy
	MentalDisruption
	PhysicalDisruption
	Vomiting
	Exhausted
	ThinBlood
	Rend
	Haemophilia

	// Steroid
	Hubris
	Pacifism
	Peace
	Agony
	Accursed
	LimpVeins
	LoversEffect
	Laxity
	Superstition
	Generosity
	Justice
	Magnanimity

	// Opiate
	Paresis
	Paralysis
	Mirroring
	CrippledBody
	Crippled
	Blisters
	Slickness
	Heartflutter
	Sandrot

	// Anabiotic
	Plodding
	Idiocy

	// Panacea
	Stormtouched
	Patterns
	ShaderotBody
	ShaderotWither
	ShaderotHeat
	ShaderotSpirit
	ShaderotBenign

	// Reishi
	Besilence

	// Willow
	Aeon
	Hellsight
	Deadening

	// Yarrow
	Withering
	Disfigurement
	Migraine
	Squelched

	// Epidermal
	Indifference
	Stuttering
	BlurryVision
	BurntEyes
	Gloom
	Anorexia
	Gorged
	EffusedBlood

	// Mending head
	HeadBruisedCritical
	DestroyedThroat
	CrippledThroat
	HeadBruisedModerate
	HeadBruised

	// Mending torso
	TorsoBruisedCritical
	Lightwound
	CrackedRibs
	TorsoBruisedModerate
	TorsoBruised

	// Mending arms
	LeftArmBruisedCritical
	LeftArmBruisedModerate
	LeftArmBruised
	LeftArmDislocated
	RightArmBruisedCritical
	RightArmBruisedModerate
	RightArmBruised
	RightArmDislocated

	// Mending legs
	LeftLegBruisedCritical
	LeftLegBruisedModerate
	LeftLegBruised
	LeftLegDislocated
	RightLegBruisedCritical
	RightLegBruisedModerate
	RightLegBruised
	RightLegDislocated

	// Restoration
	Voidgaze
	Voidtrapped
	MauledFace
	SmashedThroat
	CollapsedLung
	SpinalRip
	BurntSkin
	CrushedChest
	Heatspear
	Deepwound

	// Soothing
	Whiplash
	Backstrain
	MuscleSpasms
	Stiffness
	SoreWrist
	WeakGrip
	SoreAnkle

	// Caloric
	Hypothermia
	IceEncased
	Frozen
	Shivering

	// Timed
	Voyria
	Blackout
	Stun
	Asleep
	Shock
	Burnout

	// Class uncurables
	NumbArms
	Void
	Weakvoid
	Backstabbed
	NumbedSkin
	MentalFatigue
	Thorns
	InfernalSeal
	InfernalShroud
	Imbued
	Impeded
	Shadowbrand
	Shadowsphere
	Seduction
	Temptation

	// Special
	Disrupted
	Fear
	Fallen
	Itchy

	// Writhes
	WritheImpaled
	WritheArmpitlock
	WritheNecklock
	WritheThighlock
	WritheTransfix
	WritheBind
	WritheGunk
	WritheRopes
	WritheVines
	WritheWeb
	WritheDartpinned
	WritheHoist
	WritheGrappled
	WritheLure
	WritheStasis

	simpleFlagEnd // end of simple flags

	// Stacking afflictions
	Allergies
	Ablaze
	SappedStrength
	SelfLoathing

	counterFlagEnd // end of counted flags

	// Stored on the limb set
	HeadMangled
	HeadBroken
	TorsoMangled
	TorsoBroken
	LeftLegCrippled
	RightLegCrippled
	LeftArmCrippled
	RightArmCrippled
	LeftLegAmputated
	RightLegAmputated
	LeftArmAmputated
	RightArmAmputated
	LeftLegMangled
	RightLegMangled
	LeftArmMangled
	RightArmMangled
	LeftLegBroken
	RightLegBroken
	LeftArmBroken
	RightArmBroken

	// Mirrored names of other afflictions
	Remorse
	Contrition

	FlagCount
)

var flagNames = [FlagCount]string{
	"Dead", "Player", "Ally", "Enemy", "Shielded", "Deathsight", "Insomnia", "Instawake",
	"Deafness", "Blindness", "Thirdeye", "Daydreams", "Fangbarrier", "Waterbreathing",
	"Waterwalking", "Rebounding", "AssumedRebounding", "Levitation", "VenomResistance",
	"Speed", "Temperance", "Vigor", "Insulation", "Density", "Flame", "Cloak", "Reflection",
	"Shroud", "Ghosted", "Shadowslip", "Weaving", "Hiding", "Shadowsight", "Mindspark",
	"Zenith", "Firefist", "Swagger", "Wrath", "Destiny", "Sheath", "Aurora", "Equipoise",
	"Stretching", "Halfbeat", "Discordance", "Euphonia", "Manabarbs", "Sadness",
	"Confusion", "Dementia", "Hallucinations", "Paranoia", "Hatred", "Addiction",
	"Hypersomnia", "BloodCurse", "Blighted", "SelfPity", "Stupidity", "Dizziness",
	"Faintness", "Shyness", "Epilepsy", "Impatience", "Dissonance", "Infested", "Worrywart",
	"Misery", "Hollow", "Narcolepsy", "Perplexed", "Baldness", "Clumsiness", "Hypochondria",
	"Weariness", "Asthma", "Sensitivity", "RingingEars", "Impairment", "BloodPoison",
	"CommitmentFear", "Merciful", "Recklessness", "Egocentric", "Masochism", "Agoraphobia",
	"Loneliness", "Berserking", "Vertigo", "Claustrophobia", "Nyctophobia", "BodyOdor",
	"Lethargy", "MentalDisruption", "PhysicalDisruption", "Vomiting", "Exhausted",
	"ThinBlood", "Rend", "Haemophilia", "Hubris", "Pacifism", "Peace", "Agony", "Accursed",
	"LimpVeins", "LoversEffect", "Laxity", "Superstition", "Generosity", "Justice",
	"Magnanimity", "Paresis", "Paralysis", "Mirroring", "CrippledBody", "Crippled",
	"Blisters", "Slickness", "Heartflutter", "Sandrot", "Plodding", "Idiocy",
	"Stormtouched", "Patterns", "ShaderotBody", "ShaderotWither", "ShaderotHeat",
	"ShaderotSpirit", "ShaderotBenign", "Besilence", "Aeon", "Hellsight", "Deadening",
	"Withering", "Disfigurement", "Migraine", "Squelched", "Indifference", "Stuttering",
	"BlurryVision", "BurntEyes", "Gloom", "Anorexia", "Gorged", "EffusedBlood",
	"HeadBruisedCritical", "DestroyedThroat", "CrippledThroat", "HeadBruisedModerate",
	"HeadBruised", "TorsoBruisedCritical", "Lightwound", "CrackedRibs",
	"TorsoBruisedModerate", "TorsoBruised", "LeftArmBruisedCritical",
	"LeftArmBruisedModerate", "LeftArmBruised", "LeftArmDislocated",
	"RightArmBruisedCritical", "RightArmBruisedModerate", "RightArmBruised",
	"RightArmDislocated", "LeftLegBruisedCritical", "LeftLegBruisedModerate",
	"LeftLegBruised", "LeftLegDislocated", "RightLegBruisedCritical",
	"RightLegBruisedModerate", "RightLegBruised", "RightLegDislocated", "Voidgaze",
	"Voidtrapped", "MauledFace", "SmashedThroat", "CollapsedLung", "SpinalRip", "BurntSkin",
	"CrushedChest", "Heatspear", "Deepwound", "Whiplash", "Backstrain", "MuscleSpasms",
	"Stiffness", "SoreWrist", "WeakGrip", "SoreAnkle", "Hypothermia", "IceEncased",
	"Frozen", "Shivering", "Voyria", "Blackout", "Stun", "Asleep", "Shock", "Burnout",
	"NumbArms", "Void", "Weakvoid", "Backstabbed", "NumbedSkin", "MentalFatigue", "Thorns",
	"InfernalSeal", "InfernalShroud", "Imbued", "Impeded", "Shadowbrand", "Shadowsphere",
	"Seduction", "Temptation", "Disrupted", "Fear", "Fallen", "Itchy", "WritheImpaled",
	"WritheArmpitlock", "WritheNecklock", "WritheThighlock", "WritheTransfix", "WritheBind",
	"WritheGunk", "WritheRopes", "WritheVines", "WritheWeb", "WritheDartpinned",
	"WritheHoist", "WritheGrappled", "WritheLure", "WritheStasis", "", "Allergies",
	"Ablaze", "SappedStrength", "SelfLoathing", "", "HeadMangled", "HeadBroken",
	"TorsoMangled", "TorsoBroken", "LeftLegCrippled", "RightLegCrippled", "LeftArmCrippled",
	"RightArmCrippled", "LeftLegAmputated", "RightLegAmputated", "LeftArmAmputated",
	"RightArmAmputated", "LeftLegMangled", "RightLegMangled", "LeftArmMangled",
	"RightArmMangled", "LeftLegBroken", "RightLegBroken", "LeftArmBroken", "RightArmBroken",
	"Remorse", "Contrition",
}

var flagAliases = map[string]Flag{
	"inoculated":      Imbued,
	"fungalinvasion":  Impeded,
	"preymark":        Shadowbrand,
	"woecurse":        Shadowsphere,
	"mystified":       Voidtrapped,
	"prone":           Fallen,
	"sleeping":        Asleep,
	"stunned":         Stun,
	"weakened":        SappedStrength,
	"fleshbaned":      Rend,
	"blind":           Blindness,
	"deaf":            Deafness,
	"bloodfire":       Ablaze,
	"damagedhead":     HeadBruisedCritical,
	"brokenthroat":    CrippledThroat,
	"piercedlefteye":  BurntEyes,
	"piercedrighteye": BurntEyes,
}

var flagByKey map[string]Flag

func init() {
	flagByKey = make(map[string]Flag, FlagCount)
	for i, n := range flagNames {
		if n == "" {
			continue
		}
		flagByKey[flagKey(n)] = Flag(i)
	}
}

// flagKey folds case and drops separators so "left_arm_broken",
// "left arm broken" and "LeftArmBroken" compare equal.
func flagKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '_', '-', ' ':
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FlagFromName parses a flag in snake, space, dash or camel spelling.
func FlagFromName(name string) (Flag, bool) {
	key := flagKey(name)
	if f, ok := flagByKey[key]; ok {
		return f, true
	}
	if f, ok := flagAliases[key]; ok {
		return f, true
	}
	return Dead, false
}

// String returns the camel-case constant name.
func (f Flag) String() string {
	if f < FlagCount && flagNames[f] != "" {
		return flagNames[f]
	}
	return "Flag(?)"
}

// Name returns the snake-case name used on the wire and in hints.
func (f Flag) Name() string {
	s := f.String()
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsAffliction reports whether the flag is a curable or trackable affliction.
func (f Flag) IsAffliction() bool { return f >= Sadness && f < FlagCount && f != simpleFlagEnd && f != counterFlagEnd }

// IsCounter reports whether the flag stores a stack count.
func (f Flag) IsCounter() bool { return f > simpleFlagEnd && f < counterFlagEnd }

// IsLimbFlag reports whether the flag is a view onto the limb set.
func (f Flag) IsLimbFlag() bool { return f > counterFlagEnd && f < Remorse }

// IsWrithe reports whether the flag is a writhe-able binding.
func (f Flag) IsWrithe() bool { return f >= WritheImpaled && f <= WritheStasis }

// Normalize maps mirrored affliction names onto the flag that is tracked.
func (f Flag) Normalize() Flag {
	switch f {
	case Remorse:
		return Seduction
	case Contrition:
		return Temptation
	}
	return f
}

type limbCondition uint8

const (
	condCrippled limbCondition = iota
	condBroken
	condMangled
	condAmputated
)

// limbFlag decodes a limb-stored flag into its limb and condition.
func (f Flag) limbFlag() (Limb, limbCondition, bool) {
	switch f {
	case HeadMangled:
		return LimbHead, condMangled, true
	case HeadBroken:
		return LimbHead, condBroken, true
	case TorsoMangled:
		return LimbTorso, condMangled, true
	case TorsoBroken:
		return LimbTorso, condBroken, true
	case LeftLegCrippled:
		return LimbLeftLeg, condCrippled, true
	case RightLegCrippled:
		return LimbRightLeg, condCrippled, true
	case LeftArmCrippled:
		return LimbLeftArm, condCrippled, true
	case RightArmCrippled:
		return LimbRightArm, condCrippled, true
	case LeftLegAmputated:
		return LimbLeftLeg, condAmputated, true
	case RightLegAmputated:
		return LimbRightLeg, condAmputated, true
	case LeftArmAmputated:
		return LimbLeftArm, condAmputated, true
	case RightArmAmputated:
		return LimbRightArm, condAmputated, true
	case LeftLegMangled:
		return LimbLeftLeg, condMangled, true
	case RightLegMangled:
		return LimbRightLeg, condMangled, true
	case LeftArmMangled:
		return LimbLeftArm, condMangled, true
	case RightArmMangled:
		return LimbRightArm, condMangled, true
	case LeftLegBroken:
		return LimbLeftLeg, condBroken, true
	case RightLegBroken:
		return LimbRightLeg, condBroken, true
	case LeftArmBroken:
		return LimbLeftArm, condBroken, true
	case RightArmBroken:
		return LimbRightArm, condBroken, true
	}
	return LimbHead, condCrippled, false
}

// BrokenFlag returns the broken flag for a limb.
func (l Limb) BrokenFlag() Flag {
	return [LimbCount]Flag{HeadBroken, TorsoBroken, LeftArmBroken, RightArmBroken, LeftLegBroken, RightLegBroken}[l]
}

// MangledFlag returns the mangled flag for a limb.
func (l Limb) MangledFlag() Flag {
	return [LimbCount]Flag{HeadMangled, TorsoMangled, LeftArmMangled, RightArmMangled, LeftLegMangled, RightLegMangled}[l]
}

// AmputatedFlag returns the amputated flag for arms and legs.
func (l Limb) AmputatedFlag() (Flag, bool) {
	switch l {
	case LimbLeftArm:
		return LeftArmAmputated, true
	case LimbRightArm:
		return RightArmAmputated, true
	case LimbLeftLeg:
		return LeftLegAmputated, true
	case LimbRightLeg:
		return RightLegAmputated, true
	}
	return Dead, false
}

// DislocatedFlag returns the dislocation flag for arms and legs.
func (l Limb) DislocatedFlag() (Flag, bool) {
	switch l {
	case LimbLeftArm:
		return LeftArmDislocated, true
	case LimbRightArm:
		return RightArmDislocated, true
	case LimbLeftLeg:
		return LeftLegDislocated, true
	case LimbRightLeg:
		return RightLegDislocated, true
	}
	return Dead, false
}

// ---------------------------------------------------------------------------
// FlagSet
// ---------------------------------------------------------------------------

const flagWords = (int(simpleFlagEnd) + 63) / 64

const counterCount = int(counterFlagEnd - simpleFlagEnd - 1)

// FlagSet stores simple flags as bits and counted flags as bytes.
// Limb-stored flags are not kept here.
type FlagSet struct {
	bits     [flagWords]uint64
	counters [counterCount]uint8
}

func counterIndex(f Flag) int { return int(f - simpleFlagEnd - 1) }

// Is reports whether the flag is set (non-zero for counters).
func (s *FlagSet) Is(f Flag) bool {
	switch {
	case f < simpleFlagEnd:
		return s.bits[f/64]&(1<<(f%64)) != 0
	case f.IsCounter():
		return s.counters[counterIndex(f)] > 0
	}
	return false
}

// Count returns the stack count of a counter, or 0/1 for a simple flag.
func (s *FlagSet) Count(f Flag) uint8 {
	if f.IsCounter() {
		return s.counters[counterIndex(f)]
	}
	if s.Is(f) {
		return 1
	}
	return 0
}

// Set sets or clears a flag. Setting a counter that is zero makes it 1.
func (s *FlagSet) Set(f Flag, value bool) {
	switch {
	case f < simpleFlagEnd:
		if value {
			s.bits[f/64] |= 1 << (f % 64)
		} else {
			s.bits[f/64] &^= 1 << (f % 64)
		}
	case f.IsCounter():
		i := counterIndex(f)
		if !value {
			s.counters[i] = 0
		} else if s.counters[i] == 0 {
			s.counters[i] = 1
		}
	}
}

// SetCount stores a stack count. Simple flags are set when count > 0.
func (s *FlagSet) SetCount(f Flag, count uint8) {
	if f.IsCounter() {
		s.counters[counterIndex(f)] = count
		return
	}
	s.Set(f, count > 0)
}

// TickUp adds one stack to a counter. It returns false for non-counters.
func (s *FlagSet) TickUp(f Flag) bool {
	if !f.IsCounter() {
		return false
	}
	i := counterIndex(f)
	if s.counters[i] < 255 {
		s.counters[i]++
	}
	return true
}

// Afflictions lists the set afflictions in flag order, counters included.
func (s *FlagSet) Afflictions() []Flag {
	var out []Flag
	for f := Sadness; f < counterFlagEnd; f++ {
		if f != simpleFlagEnd && s.Is(f) {
			out = append(out, f)
		}
	}
	return out
}

// ClearAfflictions unsets every affliction, keeping defences.
func (s *FlagSet) ClearAfflictions() {
	for f := Sadness; f < simpleFlagEnd; f++ {
		s.Set(f, false)
	}
	s.counters = [counterCount]uint8{}
}
