package engine

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// HypnosisAction is what an ability does to a target's suggestion queue.
type HypnosisAction string

const (
	HypnosisNone      HypnosisAction = ""
	HypnosisHypnotise HypnosisAction = "hypnotise"
	HypnosisSuggest   HypnosisAction = "suggest"
	HypnosisSeal      HypnosisAction = "seal"
	HypnosisSnap      HypnosisAction = "snap"
	HypnosisDesway    HypnosisAction = "desway"
	HypnosisFire      HypnosisAction = "fire"
	HypnosisFizzle    HypnosisAction = "fizzle"
)

// SalveSpot keys salve cure orders.
type SalveSpot struct {
	Salve    string
	Location string
}

// RandomPick gives Count afflictions drawn from From that the target lacks.
type RandomPick struct {
	Count int
	From  []agent.Flag
}

// LimbHit is limb damage dealt by an ability, in percent.
type LimbHit struct {
	FromAnnotation bool // limb named by the action annotation
	Limb           agent.Limb
	Damage         float64
	Break          bool
}

// Ability describes what one skill does when it lands.
type Ability struct {
	Balances        map[agent.Balance]float64 // caster balances, seconds
	SlowedBy        map[agent.Flag]float64    // extra seconds while the caster has the flag
	NoBalanceOn     string                    // annotation that uses no balance
	Afflict         []agent.Flag              // target, when the attack hits
	Annotated       map[string][]agent.Flag   // target, by annotation; "*" is the fallback
	Strip           []agent.Flag              // target defences, when the attack hits
	Gain            []agent.Flag              // caster
	Lose            []agent.Flag              // caster, seen going away
	ObserveAbsent   []agent.Flag              // caster, known not to be present
	Cures           []agent.Flag              // caster, in order
	Random          *RandomPick
	RandomCure      int
	Venoms          bool                      // weapon venoms
	AnnotationVenom bool
	Limb            *LimbHit
	Dewelt          []agent.Limb
	Rotate          bool
	Regenerate      bool
	Hypnosis        HypnosisAction
	SealTicks       agent.Ticks
	Channel         agent.ChannelKind
	ChannelTicks    agent.Ticks
	Zenith          bool
	Special         string
}

// StackRange bounds a stacking count.
type StackRange struct {
	Min, Max uint8
}

// CureRule is the balance a cure type uses and the affliction that blocks it.
type CureRule struct {
	Balance agent.Balance
	Gate    agent.Flag
}

// Rules is the immutable rule configuration shared by every timeline.
type Rules struct {
	PillCures         map[string][]agent.Flag
	PillDefences      map[string]agent.Flag
	SalveCures        map[SalveSpot][]agent.Flag
	SmokeCures        map[string][]agent.Flag
	CaloricOrder      []agent.Flag
	MentalAfflictions []agent.Flag
	RandomCures       []agent.Flag
	Restore           agent.RestoreOrders
	Venoms            map[string]agent.Flag
	SkillClasses      map[string]agent.Class
	Abilities         map[string]map[string]Ability
	CureTypes         map[CureType]CureRule
	CureSeconds       float64               // cure balance when nothing says otherwise
	FlayOrder         []agent.Flag          // stripped in turn when no defence is named
	FlayDefences      map[string]agent.Flag // command words for defences
	FlameStacks       map[string]StackRange // ablaze counts by description
	DiagnoseFreshness float64               // seconds
	PruneCap          int
}

var defaultRules = sync.OnceValue(func() *Rules {
	r, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return r
})

// DefaultRules returns the embedded rule set. The result is shared and
// must not be modified.
func DefaultRules() *Rules { return defaultRules() }

// LoadRules reads a rule file in the embedded format.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	r, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

// WithPruneCap returns a copy using a different dedup threshold.
func (r *Rules) WithPruneCap(n int) *Rules {
	c := *r
	c.PruneCap = n
	return &c
}

// ClassForCategory maps a skill category to the class that owns it.
func (r *Rules) ClassForCategory(category string) (agent.Class, bool) {
	c, ok := r.SkillClasses[category]
	return c, ok
}

// Ability finds the table entry for a skill.
func (r *Rules) Ability(category, skill string) (Ability, bool) {
	key := category
	if c, ok := r.SkillClasses[category]; ok {
		key = c.Normal().String()
	}
	a, ok := r.Abilities[key][skill]
	return a, ok
}

// FlayDefence resolves a defence named in a flay command or message.
func (r *Rules) FlayDefence(name string) (agent.Flag, bool) {
	if f, ok := r.FlayDefences[name]; ok {
		return f, true
	}
	return agent.FlagFromName(name)
}

// FlameStack bounds the ablaze count a flame description implies.
func (r *Rules) FlameStack(description string) StackRange {
	if b, ok := r.FlameStacks[description]; ok {
		return b
	}
	return StackRange{1, 120}
}

// SalveOrder returns the cure order of a salve at a location.
func (r *Rules) SalveOrder(salve, location string) ([]agent.Flag, bool) {
	o, ok := r.SalveCures[SalveSpot{salve, location}]
	return o, ok
}

// CureOrder returns the order a simple cure works through.
func (r *Rules) CureOrder(o Observation) []agent.Flag {
	switch o.Cure {
	case CurePill:
		return r.PillCures[o.What]
	case CureSalve:
		return r.SalveCures[SalveSpot{o.What, o.Location}]
	case CureSmoke:
		return r.SmokeCures[o.What]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

type rulesFile struct {
	PruneCap          int      `yaml:"prune_cap"`
	DiagnoseFreshness float64  `yaml:"diagnose_freshness"`
	MentalAfflictions []string `yaml:"mental_afflictions"`
	RandomCures       []string `yaml:"random_cures"`
	Pills             struct {
		Cures    map[string][]string `yaml:"cures"`
		Defences map[string]string   `yaml:"defences"`
	} `yaml:"pills"`
	Caloric   []string                          `yaml:"caloric"`
	Salves    map[string]map[string][]string    `yaml:"salves"`
	Smokes    map[string][]string               `yaml:"smokes"`
	Restore   map[string][]string               `yaml:"restore"`
	Venoms    map[string]string                 `yaml:"venoms"`
	Skills    map[string]string                 `yaml:"skills"`
	Abilities map[string]map[string]abilityFile `yaml:"abilities"`
	Cures     struct {
		Seconds float64                 `yaml:"seconds"`
		Types   map[string]cureTypeFile `yaml:"types"`
	} `yaml:"cures"`
	Flay struct {
		Order    []string          `yaml:"order"`
		Commands map[string]string `yaml:"commands"`
	} `yaml:"flay"`
	Flames map[string][2]uint8 `yaml:"flames"`
}

type cureTypeFile struct {
	Balance string `yaml:"balance"`
	Gate    string `yaml:"gate"`
}

type abilityFile struct {
	Balances        map[string]float64  `yaml:"balances"`
	SlowedBy        map[string]float64  `yaml:"slowed_by"`
	NoBalanceOn     string              `yaml:"no_balance_on"`
	Afflict         []string            `yaml:"afflict"`
	Annotated       map[string][]string `yaml:"annotated"`
	Strip           []string            `yaml:"strip"`
	Gain            []string            `yaml:"gain"`
	Lose            []string            `yaml:"lose"`
	ObserveAbsent   []string            `yaml:"observe_absent"`
	Cures           []string            `yaml:"cures"`
	Random          *struct {
		Count int      `yaml:"count"`
		From  []string `yaml:"from"`
	} `yaml:"random"`
	RandomCure      int  `yaml:"random_cure"`
	Venoms          bool `yaml:"venoms"`
	AnnotationVenom bool `yaml:"annotation_venom"`
	Limb            *struct {
		Annotation bool    `yaml:"annotation"`
		Limb       string  `yaml:"limb"`
		Damage     float64 `yaml:"damage"`
		Break      bool    `yaml:"break"`
	} `yaml:"limb"`
	Dewelt         []string `yaml:"dewelt"`
	Rotate         bool     `yaml:"rotate"`
	Regenerate     bool     `yaml:"regenerate"`
	Hypnosis       string   `yaml:"hypnosis"`
	SealSeconds    float64  `yaml:"seal_seconds"`
	Channel        string   `yaml:"channel"`
	ChannelSeconds float64  `yaml:"channel_seconds"`
	Zenith         bool     `yaml:"zenith"`
	Special        string   `yaml:"special"`
}

// ParseRules decodes and resolves a rule document. Every flag, limb,
// balance and class name must resolve.
func ParseRules(data []byte) (*Rules, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	p := &resolver{}
	r := &Rules{
		PillCures:         make(map[string][]agent.Flag, len(f.Pills.Cures)),
		PillDefences:      make(map[string]agent.Flag, len(f.Pills.Defences)),
		SalveCures:        make(map[SalveSpot][]agent.Flag),
		SmokeCures:        make(map[string][]agent.Flag, len(f.Smokes)),
		Venoms:            make(map[string]agent.Flag, len(f.Venoms)),
		SkillClasses:      make(map[string]agent.Class, len(f.Skills)),
		Abilities:         make(map[string]map[string]Ability, len(f.Abilities)),
		CureTypes:         make(map[CureType]CureRule, len(f.Cures.Types)),
		CureSeconds:       f.Cures.Seconds,
		FlayDefences:      make(map[string]agent.Flag, len(f.Flay.Commands)),
		FlameStacks:       make(map[string]StackRange, len(f.Flames)),
		DiagnoseFreshness: f.DiagnoseFreshness,
		PruneCap:          f.PruneCap,
	}
	if r.PruneCap <= 0 {
		r.PruneCap = 32
	}
	if r.DiagnoseFreshness <= 0 {
		r.DiagnoseFreshness = 5
	}
	if r.CureSeconds <= 0 {
		r.CureSeconds = 2
	}

	r.MentalAfflictions = p.flags(f.MentalAfflictions)
	r.RandomCures = p.flags(f.RandomCures)
	r.CaloricOrder = p.flags(f.Caloric)
	for pill, order := range f.Pills.Cures {
		r.PillCures[pill] = p.flags(order)
	}
	for pill, def := range f.Pills.Defences {
		r.PillDefences[pill] = p.flag(def)
	}
	for salve, spots := range f.Salves {
		for loc, order := range spots {
			r.SalveCures[SalveSpot{salve, loc}] = p.flags(order)
		}
	}
	for herb, order := range f.Smokes {
		r.SmokeCures[herb] = p.flags(order)
	}
	for limb, order := range f.Restore {
		r.Restore[p.limb(limb)] = p.flags(order)
	}
	for venom, aff := range f.Venoms {
		r.Venoms[venom] = p.flag(aff)
	}
	for category, class := range f.Skills {
		r.SkillClasses[category] = p.class(class)
	}
	for name, ct := range f.Cures.Types {
		c, ok := CureTypeFromName(name)
		if !ok {
			p.fail("unknown cure type %q", name)
			continue
		}
		r.CureTypes[c] = CureRule{Balance: p.balance(ct.Balance), Gate: p.flag(ct.Gate)}
	}
	r.FlayOrder = p.flags(f.Flay.Order)
	for word, def := range f.Flay.Commands {
		r.FlayDefences[word] = p.flag(def)
	}
	for desc, b := range f.Flames {
		if b[0] > b[1] {
			p.fail("flames %q: %d above %d", desc, b[0], b[1])
		}
		r.FlameStacks[desc] = StackRange{b[0], b[1]}
	}
	for group, skills := range f.Abilities {
		r.Abilities[group] = make(map[string]Ability, len(skills))
		for skill, af := range skills {
			r.Abilities[group][skill] = p.ability(af)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return r, nil
}

// resolver keeps the first name that failed to resolve.
type resolver struct {
	err error
}

func (p *resolver) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
}

func (p *resolver) flag(name string) agent.Flag {
	f, ok := agent.FlagFromName(name)
	if !ok {
		p.fail("unknown flag %q", name)
	}
	return f
}

func (p *resolver) flags(names []string) []agent.Flag {
	if len(names) == 0 {
		return nil
	}
	out := make([]agent.Flag, len(names))
	for i, n := range names {
		out[i] = p.flag(n)
	}
	return out
}

func (p *resolver) limb(name string) agent.Limb {
	l, ok := agent.LimbFromName(name)
	if !ok {
		p.fail("unknown limb %q", name)
	}
	return l
}

func (p *resolver) class(name string) agent.Class {
	c, ok := agent.ClassFromName(name)
	if !ok {
		p.fail("unknown class %q", name)
	}
	return c
}

func (p *resolver) balance(name string) agent.Balance {
	b := agent.BalanceFromName(name)
	if b == agent.BalanceUnknown {
		p.fail("unknown balance %q", name)
	}
	return b
}

func (p *resolver) ability(af abilityFile) Ability {
	a := Ability{
		NoBalanceOn:     af.NoBalanceOn,
		Afflict:         p.flags(af.Afflict),
		Strip:           p.flags(af.Strip),
		Gain:            p.flags(af.Gain),
		Lose:            p.flags(af.Lose),
		ObserveAbsent:   p.flags(af.ObserveAbsent),
		Cures:           p.flags(af.Cures),
		RandomCure:      af.RandomCure,
		Venoms:          af.Venoms,
		AnnotationVenom: af.AnnotationVenom,
		Rotate:          af.Rotate,
		Regenerate:      af.Regenerate,
		Hypnosis:        HypnosisAction(af.Hypnosis),
		SealTicks:       agent.Seconds(af.SealSeconds),
		ChannelTicks:    agent.Seconds(af.ChannelSeconds),
		Zenith:          af.Zenith,
		Special:         af.Special,
	}
	if len(af.Balances) > 0 {
		a.Balances = make(map[agent.Balance]float64, len(af.Balances))
		for name, secs := range af.Balances {
			a.Balances[p.balance(name)] = secs
		}
	}
	if len(af.SlowedBy) > 0 {
		a.SlowedBy = make(map[agent.Flag]float64, len(af.SlowedBy))
		for name, secs := range af.SlowedBy {
			a.SlowedBy[p.flag(name)] = secs
		}
	}
	if len(af.Annotated) > 0 {
		a.Annotated = make(map[string][]agent.Flag, len(af.Annotated))
		for ann, names := range af.Annotated {
			a.Annotated[ann] = p.flags(names)
		}
	}
	if af.Random != nil {
		a.Random = &RandomPick{Count: af.Random.Count, From: p.flags(af.Random.From)}
	}
	if af.Limb != nil {
		hit := &LimbHit{FromAnnotation: af.Limb.Annotation, Damage: af.Limb.Damage, Break: af.Limb.Break}
		if !hit.FromAnnotation {
			hit.Limb = p.limb(af.Limb.Limb)
		}
		a.Limb = hit
	}
	for _, l := range af.Dewelt {
		a.Dewelt = append(a.Dewelt, p.limb(l))
	}
	switch af.Channel {
	case "":
	case "heelrush":
		a.Channel = agent.ChannelHeelrush
	case "direblow":
		a.Channel = agent.ChannelDireblow
	default:
		p.fail("unknown channel %q", af.Channel)
	}
	switch a.Hypnosis {
	case HypnosisNone, HypnosisHypnotise, HypnosisSuggest, HypnosisSeal, HypnosisSnap,
		HypnosisDesway, HypnosisFire, HypnosisFizzle:
	default:
		p.fail("unknown hypnosis action %q", af.Hypnosis)
	}
	return a
}
