package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// ApplyTimeSlice applies one slice: it sets the perspective agent, advances
// the clock, applies every observation in order and prunes. A malformed
// slice is rejected before anything changes. Errors from individual
// observations are logged and joined into the result; they never stop the
// rest of the slice.
func (s *TimelineState) ApplyTimeSlice(ctx context.Context, slice *TimeSlice, store ClassStore) error {
	if err := slice.Validate(); err != nil {
		return err
	}
	if slice.Me != "" {
		s.me = slice.Me
	}
	s.UpdateTime(slice.Time)

	var errs []error
	obs := slice.Observations
	for i := range obs {
		o := &obs[i]
		if err := s.applyObservation(ctx, o, slice.Lines, obs[:i], obs[i+1:], store); err != nil {
			s.log.WithFields(logrus.Fields{
				"kind":  o.Kind.String(),
				"error": err,
			}).Warn("bad observation")
			errs = append(errs, fmt.Errorf("observation %d (%s): %w", i, o.Kind, err))
		}
	}
	if slice.Prompt.Kind == PromptStats && s.me != "" {
		s.applyPrompt(slice.Prompt.Stats)
	}
	s.Strikeout()
	return errors.Join(errs...)
}

func (s *TimelineState) applyPrompt(stats Vitals) {
	s.ForAgent(s.me, agent.EffectFunc(func(me *agent.AgentState) {
		me.SetStat(agent.StatHealth, stats.Health)
		me.SetStat(agent.StatMana, stats.Mana)
		me.SetStat(agent.StatSP, stats.SP)
		if !stats.Prone {
			me.ObserveNotProne()
		}
	}))
}

// applyObservation dispatches one observation. before holds what was
// already applied this slice and after what is still to come.
func (s *TimelineState) applyObservation(ctx context.Context, o *Observation, lines []Line, before, after []Observation, store ClassStore) error {
	switch o.Kind {
	case KindSent:
		s.handleSent(o.What)
	case KindCombatAction:
		if err := s.inferClass(ctx, o, store); err != nil {
			return err
		}
		return s.handleCombatAction(o, after)
	case KindProc:
		return s.handleCombatAction(o, after)
	case KindSimpleCure:
		return s.handleSimpleCure(o, after)
	case KindDiscernedCure:
		return s.SetFlagForAgent(o.Who, o.What, false)
	case KindCured:
		return s.SetFlagForAgent(s.me, o.What, false)
	case KindFlameShield:
		if s.BorrowAgent(o.Who).Count(agent.Ablaze) <= 1 {
			return s.SetFlagForAgent(o.Who, "ablaze", false)
		}
	case KindAfflicted:
		if f, ok := agent.FlagFromName(o.What); ok && f.IsCounter() {
			return s.TickCounterForAgent(s.me, o.What)
		}
		return s.SetFlagForAgent(s.me, o.What, true)
	case KindDiscovered:
		f, ok := agent.FlagFromName(o.What)
		if !ok {
			return fmt.Errorf("unknown flag %q", o.What)
		}
		s.ForAgent(s.me, agent.EffectFunc(func(me *agent.AgentState) {
			me.ObserveFlag(f, true)
		}))
	case KindOtherAfflicted:
		if n := len(before); n > 0 {
			prev := before[n-1]
			if prev.Kind == KindDiscernedCure && prev.Who == o.Who && prev.What == o.What {
				return nil
			}
		}
		return s.SetFlagForAgent(o.Who, o.What, true)
	case KindBalance, KindBalanceBack:
		b := agent.BalanceFromName(o.What)
		if b == agent.BalanceUnknown {
			return fmt.Errorf("unknown balance %q", o.What)
		}
		secs := o.Value
		if o.Kind == KindBalanceBack {
			secs = 0
		}
		s.ForAgent(s.me, agent.EffectFunc(func(me *agent.AgentState) {
			me.SetBalance(b, secs)
		}))
	case KindDodges:
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.Dodge.RegisterDodge()
		}))
	case KindListStart:
		return s.handleList(o, lines, after)
	case KindStripped:
		return s.SetFlagForAgent(s.me, o.What, false)
	case KindLostRebound:
		return s.SetFlagForAgent(o.Who, "rebounding", false)
	case KindLostShield:
		return s.SetFlagForAgent(o.Who, "shielded", false)
	case KindLostFangBarrier:
		return s.SetFlagForAgent(o.Who, "fangbarrier", false)
	case KindGained:
		if err := s.SetFlagForAgent(o.Who, o.What, true); err != nil {
			return err
		}
		if f, _ := agent.FlagFromName(o.What); f == agent.Rebounding {
			s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
				a.SetBalance(agent.BalanceRebounding, 0)
			}))
		}
	case KindLimbDamage:
		return s.AdjustAgentLimb(s.me, o.What, o.Value)
	case KindLimbHeal:
		return s.AdjustAgentLimb(s.me, o.What, -o.Value)
	case KindLimbDone:
		return s.FinishAgentRestore(s.me, o.What)
	case KindStand:
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.SetFlag(agent.Asleep, false)
			a.SetFlag(agent.Fallen, false)
			if a.Is(agent.Backstrain) {
				applyLimbDamage(a, LimbHit{Limb: agent.LimbTorso, Damage: 10, Break: a.Is(agent.Stiffness)}, after)
			}
		}))
	case KindFall:
		return s.SetFlagForAgent(o.Who, "fallen", true)
	case KindParryStart, KindParry:
		l, _ := limbFromName(o.What)
		sore := o.Kind == KindParry
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.SetParrying(l)
			if sore && a.Is(agent.SoreWrist) {
				stiff := a.Is(agent.Stiffness)
				applyLimbDamage(a, LimbHit{Limb: agent.LimbLeftArm, Damage: 4, Break: stiff}, after)
				applyLimbDamage(a, LimbHit{Limb: agent.LimbRightArm, Damage: 4, Break: stiff}, after)
			}
		}))
	case KindWield:
		var left, right string
		switch o.Hand {
		case "left":
			left = o.What
		case "right":
			right = o.What
		}
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.WieldMulti(left, right)
		}))
	case KindUnwield:
		left, right := o.Hand == "left", o.Hand == "right"
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.UnwieldMulti(left, right)
		}))
	case KindDualWield:
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.WieldMulti(o.Left, o.Right)
		}))
	case KindTwoHandedWield:
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.WieldTwoHands(o.What)
		}))
	case KindTickAff:
		return s.TickCounterForAgent(o.Who, o.What)
	case KindRelapse:
		for _, b := range before {
			if b.Kind == KindRelapse && b.Who == o.Who {
				return nil
			}
		}
		s.ForAgentUncertain(o.Who, s.inferRelapse(o.Who, after))
	case KindFillPipe:
		h := agent.HerbFromString(o.What)
		s.ForAgent(s.me, agent.EffectFunc(func(me *agent.AgentState) {
			me.Pipes.Refill(h)
		}))
	case KindRoom:
		s.SetAgentRoom(o.Who, int64(o.Value))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansi.ReplaceAllString(s, "") }

func listItems(list string, after []Observation) []Observation {
	var out []Observation
	for _, o := range after {
		if o.Kind == KindListItem && o.What == list {
			out = append(out, o)
		}
	}
	return out
}

func (s *TimelineState) handleList(o *Observation, lines []Line, after []Observation) error {
	switch o.What {
	case "Wounds":
		type wound struct {
			limb   agent.Limb
			damage int32
		}
		var wounds []wound
		for _, item := range listItems("Wounds", after) {
			if len(item.Args) < 2 {
				continue
			}
			l, ok := limbFromName(item.Args[0])
			pct, err := strconv.ParseFloat(item.Args[1], 64)
			if !ok || err != nil {
				continue
			}
			wounds = append(wounds, wound{l, int32(pct * 100)})
		}
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			for _, w := range wounds {
				a.SetLimbDamage(w.limb, w.damage, true)
			}
		}))
	case "Diagnose":
		if !s.IsHintTimeFresh(o.Who, hintDiagnoseTime, s.rules.DiagnoseFreshness) {
			s.log.WithField("who", o.Who).Info("ignoring unrequested diagnose")
			return nil
		}
		present := make(map[agent.Flag]bool)
		for _, item := range listItems("Diagnose", after) {
			if len(item.Args) == 0 {
				continue
			}
			if f, ok := agent.FlagFromName(item.Args[0]); ok {
				present[f.Normalize()] = true
			}
		}
		s.ForAgent(o.Who, agent.EffectFunc(func(a *agent.AgentState) {
			a.Hidden.ClearUnknown()
			for f := agent.Sadness; f < agent.FlagCount; f++ {
				if f.IsAffliction() && f.Normalize() == f {
					a.ObserveFlag(f, present[f])
				}
			}
		}))
	case "Pipes":
		s.handlePipes(after)
	case "Allies":
		s.setPlayerList(s.me+"_allies", playersFromLines(lines, "You claim these people as allies"))
	case "Enemies":
		s.setPlayerList(s.me+"_enemies", playersFromLines(lines, "You claim these people as foes"))
	default:
		return fmt.Errorf("unknown list %q", o.What)
	}
	return nil
}

// playersFromLines reads the names that follow a header, skipping the two
// decoration lines under it and stopping at the closing rule.
func playersFromLines(lines []Line, header string) []string {
	names := []string{}
	skip := -1
	for _, l := range lines {
		if skip < 0 {
			if strings.Contains(l.Text, header) {
				skip = 2
			}
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if strings.Contains(l.Text, "--") {
			break
		}
		names = append(names, stripANSI(l.Text))
	}
	return names
}

// handlePipes initializes our pipes from a listing. Each item carries the
// pipe id, its contents ("yarrow 10") and "A" for artifacts. Empty pipes
// fill whichever herb was not listed.
func (s *TimelineState) handlePipes(after []Observation) {
	var found [agent.HerbEmpty]*agent.Pipe
	var empties []agent.Pipe
	for _, item := range listItems("Pipes", after) {
		if len(item.Args) < 2 {
			continue
		}
		p := agent.Pipe{}
		p.ID, _ = strconv.Atoi(item.Args[0])
		if i := strings.LastIndexByte(item.Args[1], ' '); i >= 0 {
			p.Puffs, _ = strconv.Atoi(item.Args[1][i+1:])
		}
		p.Artifact = len(item.Args) > 2 && item.Args[2] == "A"
		h := agent.HerbFromString(item.Args[1])
		if h == agent.HerbEmpty {
			empties = append(empties, p)
		} else if found[h] == nil {
			found[h] = &p
		}
	}
	for i := range found {
		if found[i] == nil && len(empties) > 0 {
			found[i] = &empties[0]
			empties = empties[1:]
		}
	}
	s.ForAgent(s.me, agent.EffectFunc(func(me *agent.AgentState) {
		for h, p := range found {
			if p != nil {
				me.Pipes.Initialize(agent.Herb(h), *p)
			}
		}
	}))
}

// ---------------------------------------------------------------------------
// Hit windows
// ---------------------------------------------------------------------------

// window returns the observations that belong to the current action: those
// before the next CombatAction.
func window(after []Observation) []Observation {
	for i, o := range after {
		if o.Kind == KindCombatAction {
			return after[:i]
		}
	}
	return after
}

// attackHit reports whether the action landed: no dodge, miss, absorb or
// parry follows it before the next action.
func attackHit(after []Observation) bool {
	for _, o := range window(after) {
		switch o.Kind {
		case KindDodges, KindMisses, KindAbsorbed, KindParry:
			return false
		}
	}
	return true
}

func limbEvent(after []Observation, kind Kind, l agent.Limb) bool {
	for _, o := range after {
		if o.Kind == kind {
			if got, ok := limbFromName(o.What); ok && got == l {
				return true
			}
		}
	}
	return false
}

// applyLimbDamage infers damage on a limb we cannot see. When our own limb
// damage is reported the numbers arrive separately and nothing is inferred.
// With hit.Break set, a reported break or mangle is believed and a missing
// one caps the damage just under the threshold.
func applyLimbDamage(a *agent.AgentState, hit LimbHit, after []Observation) {
	w := window(after)
	for _, o := range w {
		if o.Kind == KindLimbDamage {
			return
		}
	}
	if !attackHit(after) {
		return
	}
	l := hit.Limb
	a.Limbs.Adjust(l, int32(hit.Damage*100))
	if !hit.Break {
		return
	}
	damage := a.Limbs.Limbs[l].Damage
	switch {
	case limbEvent(after, KindDamaged, l):
		a.Limbs.SetBroken(l, true)
	case !a.Limbs.Limbs[l].Broken && damage > agent.DamagedValue:
		a.SetLimbDamage(l, agent.DamagedValue, false)
	}
	damage = a.Limbs.Limbs[l].Damage
	switch {
	case limbEvent(after, KindMangled, l):
		a.Limbs.SetMangled(l, true)
	case !a.Limbs.Limbs[l].Mangled && damage > agent.MangledValue:
		a.SetLimbDamage(l, agent.MangledValue, false)
	}
}
