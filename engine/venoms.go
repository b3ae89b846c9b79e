package engine

import (
	"errors"
	"fmt"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// applyVenom gives a venom's affliction. relapse marks a venom resurfacing
// from thin blood: it is not pushed again and what it gives is only a
// guess.
func (r *Rules) applyVenom(a *agent.AgentState, venom string, relapse bool) error {
	if a.Is(agent.ThinBlood) && !relapse {
		a.PushToxin(venom)
	}
	mapped, known := r.Venoms[venom]
	guessed, hasGuess := agent.Dead, false
	give := func(f agent.Flag) {
		a.SetFlag(f, true)
		guessed, hasGuess = f, true
	}
	switch {
	case venom == "prefarar" && a.Is(agent.Deafness):
		a.SetFlag(agent.Deafness, false)
	case venom == "oculus" && a.Is(agent.Blindness):
		a.SetFlag(agent.Blindness, false)
	case venom == "epseth":
		if a.Is(agent.LeftLegBroken) {
			give(agent.RightLegBroken)
		} else {
			give(agent.LeftLegBroken)
		}
	case venom == "epteth":
		if a.Is(agent.LeftArmBroken) {
			give(agent.RightArmBroken)
		} else {
			give(agent.LeftArmBroken)
		}
	case known:
		give(mapped)
	case venom == "asp" || venom == "loki":
		a.Hidden.AddUnknown()
	case venom == "camus":
		a.SetStat(agent.StatHealth, a.Stat(agent.StatHealth)-1000)
	case venom == "delphinium":
		switch {
		case a.Is(agent.Insomnia):
			a.SetFlag(agent.Insomnia, false)
		case !a.Is(agent.Asleep):
			a.SetFlag(agent.Asleep, true)
		default:
			a.SetFlag(agent.Instawake, false)
		}
	case venom == "wasi":
		a.SetFlag(agent.Rebounding, false)
	case venom == "azu" || venom == "cripple":
		if a.Is(agent.Crippled) {
			a.SetFlag(agent.PhysicalDisruption, true)
		} else {
			a.SetFlag(agent.Crippled, true)
		}
	case venom == "dirne" || venom == "disrupt":
		if a.Is(agent.PhysicalDisruption) {
			a.SetFlag(agent.MentalDisruption, true)
		} else {
			a.SetFlag(agent.PhysicalDisruption, true)
		}
	default:
		return fmt.Errorf("unknown venom %q", venom)
	}
	if relapse && hasGuess {
		a.AddGuess(guessed)
	}
	return nil
}

// applyWeaponHits lands the venoms of a weapon attack on target. Our own
// attacks report each venom; one following a rebound lands on us instead,
// and one followed by a purge never lands. Other attackers are trusted to
// use the venoms hinted for them, minus the last if the target dodged.
func (s *TimelineState) applyWeaponHits(caster, target string, after []Observation) error {
	if caster == s.me {
		var errs []error
		w := window(after)
		for i, o := range w {
			if o.Kind != KindDevenoms {
				continue
			}
			venom := o.What
			switch {
			case i > 0 && w[i-1].Kind == KindRebounds:
				s.ForAgent(target, agent.EffectFunc(func(a *agent.AgentState) {
					a.ObserveFlag(agent.Rebounding, true)
				}))
				s.forVenom(caster, venom, &errs)
			case i+1 < len(w) && w[i+1].Kind == KindPurgeVenom:
			default:
				s.forVenom(target, venom, &errs)
			}
		}
		return errors.Join(errs...)
	}
	hint, ok := s.PlayerHint(caster, hintCalledVenoms)
	if !ok {
		return nil
	}
	venoms := calledVenoms(hint)
	if len(after) > 0 && after[0].Kind == KindDodges && len(venoms) > 0 {
		venoms = venoms[:len(venoms)-1]
	}
	var errs []error
	for _, v := range venoms {
		s.forVenom(target, v, &errs)
	}
	return errors.Join(errs...)
}

func (s *TimelineState) forVenom(who, venom string, errs *[]error) {
	var err error
	s.ForAgent(who, agent.EffectFunc(func(a *agent.AgentState) {
		err = s.rules.applyVenom(a, venom, false)
	}))
	if err != nil {
		*errs = append(*errs, err)
	}
}

// inferRelapse explains a run of relapse lines. The agent must have thin
// blood. When exactly the ripe venoms account for the lines they are
// applied; when more venoms could have relapsed, the branch forks over
// every choice. A branch with nothing that could relapse, or one that
// kept venoms past their window, is struck.
func (s *TimelineState) inferRelapse(who string, after []Observation) agent.UncertainFunc {
	count := 1
	for _, o := range after {
		if o.Kind != KindRelapse {
			continue
		}
		if o.Who != who {
			break
		}
		count++
	}
	return func(a *agent.AgentState) ([]agent.AgentState, bool) {
		a.ObserveFlag(agent.ThinBlood, true)
		res := a.GetRelapses(count)
		if res.Expired > 0 {
			a.Strike("expired relapse")
		}
		switch res.Outcome {
		case agent.RelapseConcrete:
			for _, v := range res.Venoms {
				_ = s.rules.applyVenom(a, v, true)
			}
		case agent.RelapseUncertain:
			var out []agent.AgentState
			for _, set := range combinations(res.Alive, res.Count) {
				b := a.Clone()
				for _, e := range set {
					b.Relapses.DropRelapse(e.Age, e.Venom)
					_ = s.rules.applyVenom(&b, e.Venom, true)
				}
				out = append(out, b)
			}
			if len(out) > 0 {
				return out, true
			}
			a.Strike("no possible relapse")
		default:
			a.Strike("no possible relapse")
		}
		return nil, false
	}
}

// combinations lists every k-element subset of items, in order.
func combinations[T any](items []T, k int) [][]T {
	if k <= 0 || k > len(items) {
		return nil
	}
	var out [][]T
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		set := make([]T, k)
		for i, j := range idx {
			set[i] = items[j]
		}
		out = append(out, set)
		i := k - 1
		for i >= 0 && idx[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
