package agent

// ---------------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------------

// Class is a combat profession. Mirror classes play like a base class under
// another name.
type Class uint8

const (
	ClassUnknown Class = iota

	// Bloodloch
	ClassCarnifex
	ClassIndorani
	ClassPraenomen
	ClassTeradrim
	// Duiran
	ClassMonk
	ClassSentinel
	ClassShaman
	// Enorian
	ClassAscendril
	ClassLuminary
	ClassTemplar
	ClassZealot
	// Spinesreach
	ClassArchivist
	ClassSciomancer
	ClassInfiltrator
	// Unaffiliated
	ClassShapeshifter
	ClassWayfarer
	ClassBard
	ClassPredator
	ClassLord

	// Mirrors
	ClassRevenant     // Templar
	ClassWarden       // Carnifex
	ClassEarthcaller  // Luminary
	ClassOneiromancer // Indorani
	ClassAlchemist    // Shaman
	ClassTidesage     // Teradrim
	ClassAkkari       // Praenomen
	ClassRavager      // Zealot
	ClassRunecarver   // Sciomancer
	ClassBloodborn    // Ascendril
	ClassVoidseer     // Archivist
	ClassExecutor     // Sentinel
	ClassSyssin       // Infiltrator

	ClassCount
)

var classNames = [ClassCount]string{
	"Unknown",
	"Carnifex", "Indorani", "Praenomen", "Teradrim",
	"Monk", "Sentinel", "Shaman",
	"Ascendril", "Luminary", "Templar", "Zealot",
	"Archivist", "Sciomancer", "Infiltrator",
	"Shapeshifter", "Wayfarer", "Bard", "Predator", "Lord",
	"Revenant", "Warden", "Earthcaller", "Oneiromancer", "Alchemist", "Tidesage",
	"Akkari", "Ravager", "Runecarver", "Bloodborn", "Voidseer", "Executor", "Syssin",
}

var mirrorOf = map[Class]Class{
	ClassRevenant:     ClassTemplar,
	ClassWarden:       ClassCarnifex,
	ClassEarthcaller:  ClassLuminary,
	ClassOneiromancer: ClassIndorani,
	ClassAlchemist:    ClassShaman,
	ClassTidesage:     ClassTeradrim,
	ClassAkkari:       ClassPraenomen,
	ClassRavager:      ClassZealot,
	ClassRunecarver:   ClassSciomancer,
	ClassBloodborn:    ClassAscendril,
	ClassVoidseer:     ClassArchivist,
	ClassExecutor:     ClassSentinel,
	ClassSyssin:       ClassInfiltrator,
}

func (c Class) String() string {
	if c < ClassCount {
		return classNames[c]
	}
	return "Unknown"
}

// ClassFromName parses a class name as the game prints it.
func ClassFromName(name string) (Class, bool) {
	switch name {
	case "Archivists":
		return ClassArchivist, true
	case "Titan Lord", "Chaos Lord":
		return ClassLord, true
	}
	for i := ClassCarnifex; i < ClassCount; i++ {
		if classNames[i] == name {
			return i, true
		}
	}
	return ClassUnknown, false
}

// IsMirror reports whether the class mirrors another.
func (c Class) IsMirror() bool {
	_, ok := mirrorOf[c]
	return ok
}

// Normal maps a mirror onto its base class.
func (c Class) Normal() Class {
	if base, ok := mirrorOf[c]; ok {
		return base
	}
	return c
}

// ---------------------------------------------------------------------------
// Per-class state
// ---------------------------------------------------------------------------

const (
	zenithRising Ticks = 15 * BalanceScale
	zenithActive Ticks = 10 * BalanceScale
)

// ZenithPhase is the stage of a zealot's zenith.
type ZenithPhase uint8

const (
	ZenithInactive ZenithPhase = iota
	ZenithRising               // initiated, building up
	ZenithActive               // empowered
)

// ZenithState builds for a while after it is initiated, stays active for a
// while, and then lapses.
type ZenithState struct {
	Phase ZenithPhase
	Timer Ticks
}

// Initiate starts building towards zenith.
func (z *ZenithState) Initiate() { *z = ZenithState{Phase: ZenithRising, Timer: zenithRising} }

// Activate enters zenith directly.
func (z *ZenithState) Activate() { *z = ZenithState{Phase: ZenithActive, Timer: zenithActive} }

// Deactivate ends zenith.
func (z *ZenithState) Deactivate() { *z = ZenithState{} }

// Active reports whether zenith is empowering the zealot.
func (z *ZenithState) Active() bool { return z.Phase == ZenithActive }

// Wait advances the phases, moving on in the same call a phase runs out.
func (z *ZenithState) Wait(d Ticks) {
	if z.Phase == ZenithInactive {
		return
	}
	z.Timer = z.Timer.Sub(d)
	if z.Timer > 0 {
		return
	}
	if z.Phase == ZenithRising {
		over := -z.Timer
		z.Activate()
		z.Timer = z.Timer.Sub(over)
		if z.Timer > 0 {
			return
		}
	}
	z.Deactivate()
}

// ZealotState is the zealot extension.
type ZealotState struct {
	Zenith    ZenithState
	Pyromania TimedFlagState
}

// MonkStance is a monk's fighting stance.
type MonkStance uint8

const (
	StanceNone MonkStance = iota
	StanceHorse
	StanceEagle
	StanceCat
	StanceBear
	StanceRat
	StanceScorpion
	StanceCobra
	StancePhoenix
	StanceTiger
	StanceWolf
	StanceDragon
)

var stanceNames = [...]string{"none", "horse", "eagle", "cat", "bear", "rat", "scorpion", "cobra", "phoenix", "tiger", "wolf", "dragon"}

func (s MonkStance) String() string { return stanceNames[s] }

// StanceFromName parses a lowercase stance name; unknown names are StanceNone.
func StanceFromName(name string) MonkStance {
	for i, n := range stanceNames {
		if n == name {
			return MonkStance(i)
		}
	}
	return StanceNone
}

// MonkState is the monk extension.
type MonkState struct {
	Stance MonkStance
	Kai    Ticks
}

// ShifterState is the shapeshifter extension.
type ShifterState struct {
	Howls     [3]string
	TimeSince Ticks
}

// SentinelState is the sentinel extension. It has no tracked fields yet.
type SentinelState struct{}

// ClassState is the per-class extension of an agent. Exactly one payload is
// meaningful, chosen by Kind; accessors return false for other variants.
type ClassState struct {
	kind     classKind
	other    Class
	zealot   ZealotState
	monk     MonkState
	shifter  ShifterState
	sentinel SentinelState
}

type classKind uint8

const (
	kindUnknown classKind = iota
	kindZealot
	kindMonk
	kindShifter
	kindSentinel
	kindOther
)

// Zealot returns the zealot payload.
func (c *ClassState) Zealot() (*ZealotState, bool) {
	if c.kind != kindZealot {
		return nil, false
	}
	return &c.zealot, true
}

// Monk returns the monk payload.
func (c *ClassState) Monk() (*MonkState, bool) {
	if c.kind != kindMonk {
		return nil, false
	}
	return &c.monk, true
}

// Shifter returns the shapeshifter payload.
func (c *ClassState) Shifter() (*ShifterState, bool) {
	if c.kind != kindShifter {
		return nil, false
	}
	return &c.shifter, true
}

// Sentinel returns the sentinel payload.
func (c *ClassState) Sentinel() (*SentinelState, bool) {
	if c.kind != kindSentinel {
		return nil, false
	}
	return &c.sentinel, true
}

// NormalizedClass returns the base class this state tracks, if known.
func (c *ClassState) NormalizedClass() (Class, bool) {
	switch c.kind {
	case kindZealot:
		return ClassZealot, true
	case kindMonk:
		return ClassMonk, true
	case kindShifter:
		return ClassShapeshifter, true
	case kindSentinel:
		return ClassSentinel, true
	case kindOther:
		return c.other, true
	}
	return ClassUnknown, false
}

// InitializeFor switches to the variant for a class, keeping the current
// payload when it is already that variant.
func (c *ClassState) InitializeFor(class Class) {
	class = class.Normal()
	if cur, ok := c.NormalizedClass(); ok && cur == class {
		return
	}
	switch class {
	case ClassZealot:
		*c = ClassState{kind: kindZealot}
	case ClassMonk:
		*c = ClassState{kind: kindMonk}
	case ClassShapeshifter:
		*c = ClassState{kind: kindShifter}
	case ClassSentinel:
		*c = ClassState{kind: kindSentinel}
	case ClassUnknown:
		*c = ClassState{}
	default:
		*c = ClassState{kind: kindOther, other: class}
	}
}

// AssumeZealot runs fn on the zealot payload, switching variants first if
// the agent was not yet known to be a zealot.
func (c *ClassState) AssumeZealot(fn func(*ZealotState)) {
	c.InitializeFor(ClassZealot)
	fn(&c.zealot)
}

// AssumeMonk runs fn on the monk payload, switching variants if needed.
func (c *ClassState) AssumeMonk(fn func(*MonkState)) {
	c.InitializeFor(ClassMonk)
	fn(&c.monk)
}

// Wait advances class timers.
func (c *ClassState) Wait(d Ticks) {
	switch c.kind {
	case kindZealot:
		c.zealot.Zenith.Wait(d)
		c.zealot.Pyromania.Wait(d)
	case kindShifter:
		c.shifter.TimeSince = c.shifter.TimeSince.Add(d)
	}
}
