package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// affCategory marks actions that report an affliction taking hold on the
// caster rather than a skill.
const affCategory = "Aff"

// handleCombatAction applies a skill used by o.Caster on o.Target.
func (s *TimelineState) handleCombatAction(o *Observation, after []Observation) error {
	if o.Category == affCategory {
		return s.handleAff(o)
	}
	s.registerHit(o, after)
	ab, ok := s.rules.Ability(o.Category, o.Skill)
	if !ok {
		s.log.WithFields(logrus.Fields{
			"category": o.Category,
			"skill":    o.Skill,
		}).Debug("untracked ability")
		return nil
	}
	return s.applyAbility(o, ab, after)
}

// registerHit places the target next to the caster and counts the attack
// against it. Attacking at all ends the caster's pacifism.
func (s *TimelineState) registerHit(o *Observation, after []Observation) {
	if o.Target == "" || o.Target == o.Caster {
		return
	}
	caster := s.BorrowAgent(o.Caster)
	room, elevation := caster.RoomID, caster.Elevation
	hit := attackHit(after)
	s.ForAgent(o.Target, agent.EffectFunc(func(a *agent.AgentState) {
		a.RegisterHit()
		if hit {
			a.Dodge.RegisterHit()
		}
		if room != 0 {
			a.RoomID = room
			a.Elevation = elevation
		}
	}))
	s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
		if a.Is(agent.Pacifism) && a.Balanced(agent.BalancePacifism) {
			a.ToggleFlag(agent.Pacifism, false)
		}
	}))
}

func (s *TimelineState) applyAbility(o *Observation, ab Ability, after []Observation) error {
	first := o.Caster == s.me
	failed := strings.Contains(o.Annotation, "failure")

	s.abilityBalances(o, ab, after)
	s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
		for _, f := range ab.Gain {
			a.SetFlag(f, true)
		}
		for _, f := range ab.Lose {
			a.ToggleFlag(f, false)
		}
		for _, f := range ab.ObserveAbsent {
			a.ObserveFlag(f, false)
		}
		if len(ab.Cures) > 0 {
			inferCures(a, ab.Cures, first, after)
		}
		if ab.Regenerate {
			a.Regenerate()
		}
		if ab.Zenith {
			a.AssumeZealot(func(z *agent.ZealotState) { z.Zenith.Initiate() })
		}
		switch ab.Channel {
		case agent.ChannelHeelrush:
			if l, ok := limbFromName(o.Annotation); ok {
				a.SetChannel(agent.Heelrush(l, agent.CountDown(ab.ChannelTicks)))
			}
		case agent.ChannelDireblow:
			a.SetChannel(agent.Direblow(agent.CountDown(ab.ChannelTicks)))
		}
	}))
	if ab.RandomCure > 0 {
		s.randomCure(o.Caster, ab.RandomCure, after)
	}

	switch {
	case ab.Special == "flay":
		return s.handleFlay(o, after)
	case ab.Hypnosis != HypnosisNone:
		s.handleHypnosis(o, ab, after)
		return nil
	case ab.AnnotationVenom:
		return s.handleBite(o, after)
	}

	if o.Target == "" || failed {
		return nil
	}
	var errs []error
	if ab.Venoms {
		if err := s.applyWeaponHits(o.Caster, o.Target, after); err != nil {
			errs = append(errs, err)
		}
	}
	if !attackHit(after) {
		return errors.Join(errs...)
	}
	afflict := ab.Afflict
	if len(ab.Annotated) > 0 {
		extra, ok := ab.Annotated[o.Annotation]
		if !ok {
			extra = ab.Annotated["*"]
		}
		afflict = append(afflict[:len(afflict):len(afflict)], extra...)
	}
	var hit *LimbHit
	if ab.Limb != nil {
		h := *ab.Limb
		if h.FromAnnotation {
			l, ok := limbFromName(o.Annotation)
			if !ok {
				errs = append(errs, fmt.Errorf("%s: unknown limb %q", o.Skill, o.Annotation))
			}
			h.Limb = l
			if ok {
				hit = &h
			}
		} else {
			hit = &h
		}
	}
	hidden := 0
	for _, w := range window(after) {
		if w.Kind == KindHiddenAff {
			hidden++
		}
	}
	s.ForAgent(o.Target, agent.EffectFunc(func(a *agent.AgentState) {
		for _, f := range afflict {
			a.SetFlag(f, true)
		}
		for _, f := range ab.Strip {
			a.SetFlag(f, false)
		}
		for _, l := range ab.Dewelt {
			a.Limbs.Dewelt(l)
		}
		if ab.Rotate {
			a.RotateLimbs(o.Annotation == "anti-clockwise")
		}
		if hit != nil {
			applyLimbDamage(a, *hit, after)
		}
		for i := 0; i < hidden; i++ {
			a.Hidden.AddUnknown()
		}
	}))
	if ab.Random != nil {
		s.randomAfflict(o, *ab.Random, after)
	}
	return errors.Join(errs...)
}

// abilityBalances takes the caster off every balance the ability uses.
// Our own Balance lines carry the real duration and win.
func (s *TimelineState) abilityBalances(o *Observation, ab Ability, after []Observation) {
	if len(ab.Balances) == 0 {
		return
	}
	if ab.NoBalanceOn != "" && (o.Annotation == ab.NoBalanceOn || (ab.NoBalanceOn == "proc" && o.Kind == KindProc)) {
		return
	}
	reported := make(map[string]bool)
	if o.Caster == s.me {
		for _, a := range after {
			if a.Kind == KindBalance {
				reported[a.What] = true
			}
		}
	}
	s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
		for b, secs := range ab.Balances {
			if reported[b.String()] {
				continue
			}
			for f, extra := range ab.SlowedBy {
				if a.Is(f) {
					secs += extra
				}
			}
			a.SetBalance(b, secs)
		}
	}))
}

// randomAfflict handles an attack giving some afflictions chosen at
// random. What the target shows is believed; otherwise every branch forks
// over the choices it could have made.
func (s *TimelineState) randomAfflict(o *Observation, pick RandomPick, after []Observation) {
	target := o.Target
	persp := s.Perspective(*o)
	seen := 0
	var discerned []agent.Flag
	for _, w := range window(after) {
		var name string
		switch {
		case persp == PerspectiveTarget && (w.Kind == KindAfflicted || w.Kind == KindStripped):
			name = w.What
		case persp != PerspectiveTarget && w.Kind == KindDiscernedAfflict:
			name = w.What
		default:
			continue
		}
		if f, ok := agent.FlagFromName(name); ok {
			discerned = append(discerned, f)
			seen++
		}
	}
	if seen > 0 {
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
			for _, f := range discerned {
				if persp == PerspectiveTarget {
					a.SetFlag(f, true)
				} else {
					a.ToggleFlag(f, true)
				}
			}
		}))
		return
	}
	s.ForAgentUncertain(target, agent.UncertainFunc(func(a *agent.AgentState) ([]agent.AgentState, bool) {
		var lacking []agent.Flag
		for _, f := range pick.From {
			if !a.Is(f) {
				lacking = append(lacking, f)
			}
		}
		count := pick.Count
		if count > len(lacking) {
			count = len(lacking)
		}
		sets := combinations(lacking, count)
		if len(sets) == 0 {
			return nil, false
		}
		out := make([]agent.AgentState, 0, len(sets))
		for _, set := range sets {
			b := a.Clone()
			for _, f := range set {
				b.SetFlag(f, true)
				b.AddGuess(f)
			}
			out = append(out, b)
		}
		return out, true
	}))
}

// randomCure handles an ability curing count random afflictions from the
// shared list. Cure lines name what went; our own use naming fewer than
// count means nothing else on the list was there.
func (s *TimelineState) randomCure(who string, count int, after []Observation) {
	first := who == s.me
	var cured []agent.Flag
	for _, w := range window(after) {
		switch {
		case first && w.Kind == KindCured:
		case w.Kind == KindDiscernedCure && w.Who == who:
		default:
			continue
		}
		if f, ok := agent.FlagFromName(w.What); ok {
			cured = append(cured, f)
		}
	}
	s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
		for _, f := range cured {
			a.ToggleFlag(f, false)
		}
		if first && len(cured) < count {
			for _, f := range s.rules.RandomCures {
				a.ObserveFlag(f, false)
			}
		}
	}))
}

// ---------------------------------------------------------------------------
// Specials
// ---------------------------------------------------------------------------

// handleFlay strips a defence, or when the flay found nothing to strip
// delivers the weapon's venoms.
func (s *TimelineState) handleFlay(o *Observation, after []Observation) error {
	target := o.Target
	ann := o.Annotation
	failed := strings.Contains(ann, "failure")
	devenoms := 0
	for _, w := range window(after) {
		if w.Kind == KindDevenoms {
			devenoms++
		}
	}
	s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
		for i := 0; i < devenoms; i++ {
			a.ObserveFlag(agent.Shielded, false)
			a.ObserveFlag(agent.Rebounding, false)
			if failed && a.Hypno.IsHypnotized() {
				a.Hypno.Desway()
			}
		}
	}))

	switch {
	case strings.HasPrefix(ann, "failure-"):
		f, ok := s.rules.FlayDefence(strings.TrimPrefix(ann, "failure-"))
		if !ok {
			return fmt.Errorf("flay: unknown defence %q", ann)
		}
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
			a.ObserveFlag(f, false)
		}))
	case ann != "" && !failed:
		f, ok := s.rules.FlayDefence(ann)
		if !ok {
			return fmt.Errorf("flay: unknown defence %q", ann)
		}
		_, named := s.flayTarget(target)
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
			if !named {
				for _, g := range s.rules.FlayOrder {
					if g == f {
						break
					}
					a.ObserveFlag(g, false)
				}
			}
			a.ToggleFlag(f, false)
		}))
		return nil
	}

	t := s.BorrowAgent(target)
	if t.Is(agent.Rebounding) || t.Is(agent.Shielded) || (failed && t.Hypno.IsHypnotized()) {
		return nil
	}
	return s.applyWeaponHits(o.Caster, target, after)
}

// handleBite delivers the venom named by the annotation unless the target
// turned it away itself.
func (s *TimelineState) handleBite(o *Observation, after []Observation) error {
	if o.Annotation == "failure" {
		s.ForAgent(o.Target, agent.EffectFunc(func(a *agent.AgentState) {
			a.ObserveFlag(agent.Fangbarrier, true)
		}))
		return nil
	}
	if len(after) > 0 {
		switch next := after[0]; next.Kind {
		case KindParry, KindAbsorbed, KindPurgeVenom:
			if next.Who == o.Target {
				return nil
			}
		}
	}
	var errs []error
	s.forVenom(o.Target, o.Annotation, &errs)
	return errors.Join(errs...)
}

func (s *TimelineState) handleHypnosis(o *Observation, ab Ability, after []Observation) {
	target := o.Target
	switch ab.Hypnosis {
	case HypnosisHypnotise:
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) { a.Hypno.Hypnotize() }))
	case HypnosisDesway:
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) { a.Hypno.Desway() }))
	case HypnosisSeal:
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) { a.Hypno.Seal(ab.SealTicks) }))
	case HypnosisSuggest:
		suggestion := s.inferSuggestion(target)
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) { a.Hypno.PushSuggestion(suggestion) }))
	case HypnosisFizzle:
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) { a.Hypno.PopSuggestion() }))
	case HypnosisSnap:
		if target == "" {
			target, _ = s.PlayerHint(o.Caster, hintSnap)
		}
		if target == "" {
			return
		}
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
			if a.Hypno.Phase() == agent.HypnoSealed {
				a.Hypno.Activate()
			}
		}))
	case HypnosisFire:
		if target == "" {
			target = o.Caster
		}
		var gave agent.Flag
		gives := false
		if len(after) > 0 && after[0].Kind == KindOtherAfflicted && after[0].Who == target {
			gave, gives = agent.FlagFromName(after[0].What)
		}
		s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
			a.Hypno.Fire()
			if gives {
				a.SetFlag(gave, true)
			}
		}))
	}
}

// ---------------------------------------------------------------------------
// Afflictions taking hold
// ---------------------------------------------------------------------------

// handleAff applies an affliction message about the caster. The skill
// names the affliction and the annotation its detail.
func (s *TimelineState) handleAff(o *Observation) error {
	who := o.Caster
	switch o.Skill {
	case "ablaze":
		bounds := s.rules.FlameStack(o.Annotation)
		s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
			a.TickFlagUp(agent.Ablaze)
			switch n := a.Count(agent.Ablaze); {
			case n < bounds.Min:
				a.SetCount(agent.Ablaze, bounds.Min)
			case n > bounds.Max:
				a.SetCount(agent.Ablaze, bounds.Max)
			}
		}))
	case "dizziness", "stupidity":
		f, _ := agent.FlagFromName(o.Skill)
		s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
			a.ToggleFlag(agent.Fallen, true)
			a.ObserveFlag(f, true)
		}))
	case "narcolepsy":
		s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
			a.ObserveFlag(agent.Narcolepsy, true)
			if a.Is(agent.Insomnia) {
				a.ToggleFlag(agent.Insomnia, false)
			} else {
				a.ToggleFlag(agent.Asleep, true)
			}
		}))
	case "self_loathing":
		count, secs := uint8(1), 24.0
		switch {
		case strings.Contains(o.Annotation, "first"):
			count, secs = 2, 8
		case strings.Contains(o.Annotation, "furrow"):
			count, secs = 3, 4
		}
		flings := strings.Contains(o.Annotation, "flings")
		s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
			a.SetFlag(agent.SelfLoathing, true)
			a.SetCount(agent.SelfLoathing, count)
			a.SetBalance(agent.BalanceSelfLoathing, secs)
			if flings {
				a.ToggleFlag(agent.Fallen, true)
			}
		}))
	case "broken legs":
		s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
			a.ToggleFlag(agent.Fallen, true)
			a.ObserveFlag(agent.LeftLegCrippled, true)
			a.ObserveFlag(agent.RightLegCrippled, true)
		}))
	default:
		f, ok := agent.FlagFromName(o.Skill)
		if !ok {
			return fmt.Errorf("unknown affliction %q", o.Skill)
		}
		s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
			a.ObserveFlag(f, true)
		}))
	}
	return nil
}
