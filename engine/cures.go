package engine

import (
	"fmt"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// handleSimpleCure applies a pill, salve or smoke taken by the caster.
func (s *TimelineState) handleSimpleCure(o *Observation, after []Observation) error {
	if o.Cure >= cureTypeCount {
		return fmt.Errorf("unknown cure type %d", o.Cure)
	}
	first := o.Caster == s.me
	s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
		a.SetFlag(agent.Asleep, false)
		a.SetFlag(agent.Stun, false)
	}))
	if ct, ok := s.rules.CureTypes[o.Cure]; ok {
		s.inferBalance(o.Caster, ct.Balance, s.rules.CureSeconds, after)
	}
	if o.Cure == CureSmoke {
		s.puffPipe(o, first, after)
	}

	if len(after) > 0 {
		next := after[0]
		if next.Kind == KindProc && next.Skill == "Sear" {
			return nil
		}
		if next.Kind == KindDiscernedCure && next.Who == o.Caster {
			switch next.What {
			case "void":
				s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
					a.ToggleFlag(agent.Void, false)
					a.ToggleFlag(agent.Weakvoid, true)
				}))
				return nil
			case "weakvoid":
				s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
					a.ObserveFlag(agent.Weakvoid, false)
				}))
				return nil
			}
		}
	}

	var err error
	s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
		if e := s.inferCure(a, o, first, after); e != nil {
			err = e
		}
	}))
	return err
}

// inferBalance puts who off a balance unless one of our own Balance lines
// reports the real duration later in the slice.
func (s *TimelineState) inferBalance(who string, b agent.Balance, seconds float64, after []Observation) {
	if who == s.me {
		name := b.String()
		for _, o := range after {
			if o.Kind == KindBalance && o.What == name {
				return
			}
		}
	}
	s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
		a.SetBalance(b, seconds)
	}))
}

func (s *TimelineState) puffPipe(o *Observation, first bool, after []Observation) {
	h := agent.HerbFromString(o.What)
	if h == agent.HerbEmpty {
		return
	}
	empty := false
	for _, a := range after {
		if a.Kind == KindPipeEmpty {
			empty = true
			break
		}
	}
	s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
		switch {
		case empty:
			a.Pipes.PuffAll(h)
		case first:
			a.ObserveFlag(agent.Addiction, false)
			a.Pipes.Puff(h)
		case a.Is(agent.Addiction):
			a.Pipes.PuffAll(h)
		default:
			a.Pipes.Puff(h)
		}
	}))
}

// inferCure works out what a cure removed. A cure line right after it
// names the affliction: everything earlier in the cure order was absent.
// Without one we know nothing in the order was present when it was our
// own cure, and assume the first present entry went for anyone else.
func (s *TimelineState) inferCure(a *agent.AgentState, o *Observation, first bool, after []Observation) error {
	r := s.rules
	order := r.CureOrder(*o)
	if len(after) > 0 && namesCure(after[0], o.Caster, first) {
		f, ok := agent.FlagFromName(after[0].What)
		if !ok {
			return fmt.Errorf("unknown flag %q", after[0].What)
		}
		if ct, ok := s.rules.CureTypes[o.Cure]; ok {
			a.ObserveFlag(ct.Gate, false)
		}
		if f != agent.Void && f != agent.Weakvoid {
			for _, g := range order {
				if g == f {
					break
				}
				a.ObserveFlag(g, false)
			}
		}
		a.ToggleFlag(f, false)
		return nil
	}

	switch o.Cure {
	case CurePill:
		if o.What == "anabiotic" {
			return nil
		}
		if order != nil {
			removeOrObserve(a, order, first)
			return nil
		}
		if def, ok := r.PillDefences[o.What]; ok {
			if def == agent.Insomnia && a.Is(agent.Hypersomnia) {
				return nil
			}
			a.SetFlag(def, true)
			return nil
		}
		return fmt.Errorf("unknown pill %q", o.What)
	case CureSalve:
		switch o.What {
		case "caloric":
			if a.Some(r.CaloricOrder...) {
				a.RemoveInOrder(r.CaloricOrder)
			} else {
				a.SetFlag(agent.Insulation, true)
			}
			return nil
		case "mass":
			a.SetFlag(agent.Density, true)
			return nil
		case "restoration":
			l, ok := limbFromName(o.Location)
			if !ok {
				return fmt.Errorf("unknown limb %q", o.Location)
			}
			a.StartRestore(l, first, &r.Restore)
			return nil
		}
		if order == nil {
			return fmt.Errorf("unknown salve %q on %q", o.What, o.Location)
		}
		if l, ok := limbFromName(o.Location); ok {
			// A salve on a broken limb fizzles.
			if !first && !a.Limbs.Limbs[l].Broken {
				a.RemoveInOrder(order)
			}
			return nil
		}
		removeOrObserve(a, order, first)
		return nil
	case CureSmoke:
		if order != nil {
			removeOrObserve(a, order, first)
			return nil
		}
		if o.What == "reishi" {
			if a.Is(agent.Besilence) {
				a.ToggleFlag(agent.Besilence, false)
			} else {
				a.SetBalance(agent.BalanceRebounding, 6.25)
			}
			return nil
		}
		return fmt.Errorf("unknown herb %q", o.What)
	}
	return nil
}

func namesCure(next Observation, caster string, first bool) bool {
	switch next.Kind {
	case KindCured, KindStripped:
		return first
	case KindDiscernedCure:
		return next.Who == caster
	}
	return false
}

// removeOrObserve is the fallback when no cure line named what went. Our
// own cure curing nothing means the whole order was absent.
func removeOrObserve(a *agent.AgentState, order []agent.Flag, first bool) {
	if first {
		for _, f := range order {
			a.ObserveFlag(f, false)
		}
		return
	}
	top, ok := a.TopAff(order)
	a.RemoveInOrder(order)
	if ok && top == agent.ThinBlood {
		a.ClearRelapses()
	}
}

// inferCures handles an ability that cures from a fixed order, like focus.
// Our own use reports what it cured; nothing reported means nothing in the
// order was there.
func inferCures(a *agent.AgentState, order []agent.Flag, first bool, after []Observation) {
	if !first {
		top, ok := a.TopAff(order)
		a.RemoveInOrder(order)
		if ok && top == agent.ThinBlood {
			a.ClearRelapses()
		}
		return
	}
	found := false
	for _, o := range window(after) {
		switch o.Kind {
		case KindCured:
			f, ok := agent.FlagFromName(o.What)
			if !ok {
				continue
			}
			switch f {
			case agent.ThinBlood:
				a.ClearRelapses()
			case agent.Void:
				a.SetFlag(agent.Weakvoid, true)
			}
			found = true
		case KindStripped:
			found = true
		}
	}
	if !found {
		for _, f := range order {
			a.ObserveFlag(f, false)
		}
	}
}
