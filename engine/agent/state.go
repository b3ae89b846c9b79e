// Package agent models one hypothesis about one combatant: balances, flags,
// limbs and the timed sub-states that advance with the clock.
package agent

import "github.com/sirupsen/logrus"

const (
	shockTime   = 20.0
	burnoutTime = 20.0
)

// RestoreOrders lists, per limb, what a restoration salve cures first.
type RestoreOrders [LimbCount][]Flag

// AgentState is one candidate belief about an agent. Copies made with
// Clone share nothing, so branches can be mutated independently.
type AgentState struct {
	balances [BalanceCount]Ticks // signed; <= 0 is available
	stats    [StatCount]int32
	maxStats [StatCount]int32

	Flags    FlagSet
	Limbs    LimbSet
	Hypno    HypnoState
	Class    ClassState
	Relapses RelapseState
	Wield    WieldState
	Dodge    DodgeState
	Channel  ChannelState
	Hidden   HiddenState
	Branch   BranchState
	Pipes    PipesState
	Aggro    AggroState

	parrying  *Limb
	RoomID    int64
	Elevation Elevation

	log logrus.FieldLogger // not part of the belief; shared by clones
}

// NewAgentState returns the baseline for an agent nobody has observed yet:
// full vitals and the defences every fighter keeps up.
func NewAgentState() AgentState {
	var s AgentState
	s.InitializeStat(StatHealth, 4000)
	s.InitializeStat(StatMana, 4000)
	for _, f := range DefaultFlags {
		s.SetFlag(f, true)
	}
	return s
}

// DefaultFlags are set on a fresh agent and reinstated by a soft reset.
var DefaultFlags = []Flag{
	Player, Blindness, Deafness, Temperance, Levitation, Speed, Vigor,
	Rebounding, Insomnia, Fangbarrier, Instawake, Insulation,
}

// Clone returns a deep copy.
func (s *AgentState) Clone() AgentState {
	c := *s
	c.Limbs = s.Limbs.clone()
	c.Hypno = s.Hypno.clone()
	c.Relapses.entries = s.Relapses.Entries()
	if s.parrying != nil {
		l := *s.parrying
		c.parrying = &l
	}
	return c
}

// Wait advances every timer by d. restore, when non-nil, decides what a
// finished third-party restoration cures; without it the limb is healed.
func (s *AgentState) Wait(d Ticks, restore *RestoreOrders) {
	s.Aggro.Wait(d)
	s.Relapses.Wait(d)
	s.Class.Wait(d)
	s.Dodge.Wait(d)
	s.Pipes.Wait(d)
	s.Hypno.Wait(d)
	s.Channel.Wait(d)
	if done, ok := s.Limbs.Wait(d); ok && !done.FirstPerson {
		s.applyRestore(done, restore)
	}

	reboundPending := !s.Balanced(BalanceRebounding) && !s.Is(Rebounding)
	for i := range s.balances {
		s.balances[i] = s.balances[i].Sub(d)
	}
	if reboundPending && s.Balanced(BalanceRebounding) {
		s.SetFlag(AssumedRebounding, true)
	}

	if s.Is(Void) && s.Balanced(BalanceVoid) {
		s.SetFlag(Void, false)
	} else if s.Is(Weakvoid) && s.Balanced(BalanceVoid) {
		s.SetFlag(Weakvoid, false)
	}
	for _, ex := range expiringFlags {
		if s.Is(ex.flag) && s.Balanced(ex.balance) {
			s.SetFlag(ex.flag, false)
		}
	}
	if s.Is(SelfLoathing) {
		ticks := s.Count(SelfLoathing)
		left := s.BalanceSeconds(BalanceSelfLoathing)
		if (ticks <= 2 && left < 3) || (ticks <= 1 && left < 7) {
			s.logger().WithField("ticks", ticks).Debug("lost track of self_loathing")
			s.ObserveFlag(SelfLoathing, false)
		}
	}
}

var expiringFlags = []struct {
	flag    Flag
	balance Balance
}{
	{Manabarbs, BalanceManabarbs},
	{WritheDartpinned, BalanceWritheDartpinned},
	{WritheWeb, BalanceWritheWeb},
	{Voyria, BalanceVoyria},
	{Shock, BalanceShock},
	{Burnout, BalanceBurnout},
}

func (s *AgentState) applyRestore(done RestoreResult, restore *RestoreOrders) {
	var cure Flag
	var ok bool
	if restore != nil {
		cure, ok = s.RestoreCure(done.Limb, restore[done.Limb])
	}
	if !ok || cure.IsLimbFlag() {
		s.Limbs.Restore(done.Limb, done.HealModifier)
		return
	}
	s.SetFlag(cure, false)
}

// SetLogger routes this state's strike reports, and those of its clones, to l.
func (s *AgentState) SetLogger(l logrus.FieldLogger) { s.log = l }

func (s *AgentState) logger() logrus.FieldLogger {
	if s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}

// BranchAt stamps a fork at time t.
func (s *AgentState) BranchAt(t int64) { s.Branch.Branch(t) }

// strike records evidence that flag was not what this branch expected.
func (s *AgentState) strike(f Flag, expected bool) {
	s.Branch.Strike()
	s.logger().WithFields(logrus.Fields{
		"flag":     f.Name(),
		"expected": expected,
		"strikes":  s.Branch.Strikes(),
	}).Debug("strike")
}

// Strike records evidence against this branch that is not about one flag.
func (s *AgentState) Strike(reason string) {
	s.Branch.Strike()
	s.logger().WithFields(logrus.Fields{
		"reason":  reason,
		"strikes": s.Branch.Strikes(),
	}).Debug("strike")
}

// ---------------------------------------------------------------------------
// Flags
// ---------------------------------------------------------------------------

// Is reports whether a flag holds. Limb flags read the limb set.
func (s *AgentState) Is(f Flag) bool {
	if l, cond, ok := f.limbFlag(); ok {
		r := s.Limbs.Limbs[l]
		switch cond {
		case condCrippled:
			return r.Crippled
		case condBroken:
			return r.Broken
		case condMangled:
			return r.Mangled
		}
		return r.Amputated
	}
	return s.Flags.Is(f.Normalize())
}

// Count returns a counter's stacks.
func (s *AgentState) Count(f Flag) uint8 { return s.Flags.Count(f) }

// SetCount stores a counter's stacks.
func (s *AgentState) SetCount(f Flag, n uint8) { s.Flags.SetCount(f, n) }

// Some reports whether any of the flags holds.
func (s *AgentState) Some(flags ...Flag) bool {
	for _, f := range flags {
		if s.Is(f) {
			return true
		}
	}
	return false
}

// AddGuess marks f as suspected, returning true if it already was.
func (s *AgentState) AddGuess(f Flag) bool { return s.Hidden.AddGuess(f) }

// ObserveFlag records that f was seen to be value. A contradiction strikes
// the branch unless a hidden unknown explains the surprise.
func (s *AgentState) ObserveFlag(f Flag, value bool) {
	is := s.Is(f)
	switch {
	case !value && is:
		s.strike(f, value)
	case value && !is:
		if !s.Hidden.FoundOut() {
			s.strike(f, value)
		}
	case value:
		s.Hidden.Unhide(f)
	}
	if f == TorsoBroken && !value {
		s.Limbs.SetBroken(LimbTorso, false)
	}
	s.SetFlag(f, value)
}

// ToggleFlag records that f was seen changing to value, so it must have
// been !value beforehand.
func (s *AgentState) ToggleFlag(f Flag, value bool) {
	is := s.Is(f)
	if value && is {
		s.strike(f, !value)
	} else if !value && !is {
		if !s.Hidden.FoundOut() {
			s.strike(f, !value)
		}
	}
	s.SetFlag(f, value)
}

// SetFlag sets f with its side effects: timed afflictions start their
// balance and limb flags are routed to the limb set.
func (s *AgentState) SetFlag(f Flag, value bool) {
	f = f.Normalize()
	if !value {
		s.Hidden.Unhide(f)
	}
	if l, cond, ok := f.limbFlag(); ok {
		switch cond {
		case condCrippled:
			s.Limbs.SetCrippled(l, value)
		case condBroken:
			s.Limbs.SetBroken(l, value)
		case condMangled:
			s.Limbs.SetMangled(l, value)
		case condAmputated:
			s.Limbs.SetAmputated(l, value)
		}
	} else {
		s.Flags.Set(f, value)
	}

	if f == Rebounding {
		s.Flags.Set(AssumedRebounding, false)
	}
	if value {
		switch f {
		case Shock:
			s.SetBalance(BalanceShock, shockTime)
		case Burnout:
			s.SetBalance(BalanceBurnout, burnoutTime)
		case Void, Weakvoid:
			s.SetBalance(BalanceVoid, 10)
		case Paresis:
			s.SetBalance(BalanceParesisParalysis, 4)
		case SelfLoathing:
			s.SetBalance(BalanceSelfLoathing, 12)
		case Pacifism:
			s.SetBalance(BalancePacifism, 1.5)
		case WritheDartpinned:
			s.SetBalance(BalanceWritheDartpinned, 3)
		case WritheWeb:
			s.SetBalance(BalanceWritheWeb, 3)
		case Voyria:
			s.SetBalance(BalanceVoyria, 12)
		}
	}
	if f == Zenith {
		s.Class.AssumeZealot(func(z *ZealotState) {
			if value {
				z.Zenith.Activate()
			} else {
				z.Zenith.Deactivate()
			}
		})
	}
}

// ObserveFlagTicking records a counter ticking up; it must have been set.
func (s *AgentState) ObserveFlagTicking(f Flag) {
	if !s.Is(f) {
		s.strike(f, true)
	}
	s.TickFlagUp(f)
}

// ObserveFlagCount records a counter's stacks; it must have been set.
func (s *AgentState) ObserveFlagCount(f Flag, n uint8) {
	if !s.Is(f) {
		s.strike(f, true)
	}
	s.SetCount(f, n)
}

// TickFlagUp adds a stack to a counter.
func (s *AgentState) TickFlagUp(f Flag) {
	if !s.Flags.TickUp(f) {
		s.logger().WithField("flag", f.Name()).Warn("tick on a flag that does not count")
	}
}

// RemoveInOrder cures the first present flag of order. With none present an
// unknown affliction is assumed to have been cured; failing that, the
// branch is struck.
func (s *AgentState) RemoveInOrder(order []Flag) (Flag, bool) {
	for _, f := range order {
		if s.Is(f) {
			s.SetFlag(f, false)
			return f, true
		}
	}
	if s.Hidden.Unknown() > 0 {
		s.Hidden.RemoveUnknown()
		return Dead, false
	}
	s.Strike("cure with nothing to cure")
	return Dead, false
}

// TopAff returns the first present flag of order.
func (s *AgentState) TopAff(order []Flag) (Flag, bool) {
	for _, f := range order {
		if s.Is(f) {
			return f, true
		}
	}
	return Dead, false
}

// AffCount counts present afflictions, limb conditions included.
func (s *AgentState) AffCount() int {
	n := len(s.Flags.Afflictions())
	for f := HeadMangled; f < Remorse; f++ {
		if s.Is(f) {
			n++
		}
	}
	return n
}

// AffsCount counts how many of the flags hold.
func (s *AgentState) AffsCount(flags ...Flag) int {
	n := 0
	for _, f := range flags {
		if s.Is(f) {
			n++
		}
	}
	return n
}

// Afflictions lists present afflictions, limb conditions last.
func (s *AgentState) Afflictions() []Flag {
	out := s.Flags.Afflictions()
	for f := HeadMangled; f < Remorse; f++ {
		if s.Is(f) {
			out = append(out, f)
		}
	}
	return out
}

// ClearAfflictions cures everything, leaving defences alone.
func (s *AgentState) ClearAfflictions() {
	s.Flags.ClearAfflictions()
	s.Hidden = HiddenState{}
	s.Limbs = LimbSet{}
	s.Relapses.Clear()
	s.Hypno.Desway()
}

// ---------------------------------------------------------------------------
// Balances
// ---------------------------------------------------------------------------

// SetBalance starts a balance counting down from seconds.
func (s *AgentState) SetBalance(b Balance, seconds float64) {
	if b < BalanceCount {
		s.balances[b] = Seconds(seconds)
	}
}

// SetBalanceTicks starts a balance counting down from t.
func (s *AgentState) SetBalanceTicks(b Balance, t Ticks) {
	if b < BalanceCount {
		s.balances[b] = t
	}
}

// RawBalance returns the signed countdown.
func (s *AgentState) RawBalance(b Balance) Ticks {
	if b >= BalanceCount {
		return 0
	}
	return s.balances[b]
}

// BalanceSeconds returns the signed countdown in seconds.
func (s *AgentState) BalanceSeconds(b Balance) float64 { return s.RawBalance(b).ToSeconds() }

// Balanced reports whether the countdown has run out.
func (s *AgentState) Balanced(b Balance) bool { return s.RawBalance(b) <= 0 }

// QEB returns the seconds until both balance and equilibrium are back.
func (s *AgentState) QEB() float64 {
	return max(0, s.BalanceSeconds(BalanceBalance), s.BalanceSeconds(BalanceEquil))
}

// QEBBalance returns whichever of balance and equilibrium comes back first.
func (s *AgentState) QEBBalance() Balance {
	if s.RawBalance(BalanceBalance) <= s.RawBalance(BalanceEquil) {
		return BalanceBalance
	}
	return BalanceEquil
}

// NextBalance returns the first of balances to recover.
func (s *AgentState) NextBalance(balances ...Balance) (Balance, bool) {
	if len(balances) == 0 {
		return BalanceUnknown, false
	}
	best := balances[0]
	for _, b := range balances[1:] {
		if !s.Balanced(b) && s.RawBalance(b) < s.RawBalance(best) {
			best = b
		}
	}
	return best, true
}

// WillBeRebounding reports whether rebounding will be up within qeb seconds.
func (s *AgentState) WillBeRebounding(qeb float64) bool {
	if s.Is(Rebounding) || (s.Is(AssumedRebounding) && s.BalanceSeconds(BalanceRebounding) > -1) {
		return true
	}
	if !s.Balanced(BalanceRebounding) {
		return s.BalanceSeconds(BalanceRebounding) < qeb
	}
	return false
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func (s *AgentState) SetStat(st Stat, v int32) { s.stats[st] = v }
func (s *AgentState) Stat(st Stat) int32 { return s.stats[st] }
func (s *AgentState) MaxStat(st Stat) int32 { return s.maxStats[st] }
func (s *AgentState) SetMaxStat(st Stat, v int32) { s.maxStats[st] = v }

// InitializeStat sets both the current and maximum value.
func (s *AgentState) InitializeStat(st Stat, v int32) {
	s.stats[st] = v
	s.maxStats[st] = v
}

// HealthPercent returns health as a fraction of its maximum.
func (s *AgentState) HealthPercent() float64 { return s.percent(StatHealth) }

// ManaPercent returns mana as a fraction of its maximum.
func (s *AgentState) ManaPercent() float64 { return s.percent(StatMana) }

func (s *AgentState) percent(st Stat) float64 {
	if s.maxStats[st] == 0 {
		return 0
	}
	return float64(s.stats[st]) / float64(s.maxStats[st])
}

// ---------------------------------------------------------------------------
// Limbs
// ---------------------------------------------------------------------------

// SetLimbDamage stores reported damage on a limb.
func (s *AgentState) SetLimbDamage(l Limb, v int32, assumeBreak bool) {
	s.Limbs.SetDamage(l, v, assumeBreak)
}

// LimbState summarizes one limb for planners.
func (s *AgentState) LimbState(l Limb) LimbView {
	r := s.Limbs.Limbs[l]
	v := LimbView{
		Damage:          float64(r.Damage) / 100,
		Broken:          r.Broken,
		Mangled:         r.Mangled,
		Amputated:       r.Amputated,
		Welt:            r.Welt,
		Restoring:       s.Limbs.Restoring != nil && *s.Limbs.Restoring == l,
		Parried:         s.CanParry() && s.parrying != nil && *s.parrying == l,
		FleshbanedCount: s.Limbs.FleshbanedCount,
	}
	if f, ok := l.CrippledFlag(); ok {
		v.Crippled = s.Is(f)
	}
	v.Crippled = v.Crippled || v.Damage > 35
	if f, ok := l.DislocatedFlag(); ok {
		v.Dislocated = s.Is(f)
	}
	v.BruiseLevel = s.AffsCount(bruiseFlags[l][:]...)
	return v
}

var bruiseFlags = [LimbCount][3]Flag{
	{HeadBruised, HeadBruisedModerate, HeadBruisedCritical},
	{TorsoBruised, TorsoBruisedModerate, TorsoBruisedCritical},
	{LeftArmBruised, LeftArmBruisedModerate, LeftArmBruisedCritical},
	{RightArmBruised, RightArmBruisedModerate, RightArmBruisedCritical},
	{LeftLegBruised, LeftLegBruisedModerate, LeftLegBruisedCritical},
	{RightLegBruised, RightLegBruisedModerate, RightLegBruisedCritical},
}

// LimbsState summarizes every limb.
func (s *AgentState) LimbsState() [LimbCount]LimbView {
	var out [LimbCount]LimbView
	for _, l := range AllLimbs {
		out[l] = s.LimbState(l)
	}
	return out
}

// RestoreCure returns what a restoration on l would cure, following order.
func (s *AgentState) RestoreCure(l Limb, order []Flag) (Flag, bool) {
	for _, f := range order {
		if s.Is(f) {
			return f, true
		}
	}
	return Dead, false
}

// Curing returns what the restoration in progress will cure.
func (s *AgentState) Curing(orders *RestoreOrders) (Flag, bool) {
	if s.Limbs.Restoring == nil || orders == nil {
		return Dead, false
	}
	l := *s.Limbs.Restoring
	return s.RestoreCure(l, orders[l])
}

// StartRestore begins a restoration, applying one that just finished.
func (s *AgentState) StartRestore(l Limb, firstPerson bool, orders *RestoreOrders) {
	if done, ok := s.Limbs.StartRestore(l, firstPerson); ok && !done.FirstPerson {
		s.applyRestore(done, orders)
	}
}

// CompleteRestoration ends the restoration on l without applying it; the
// caller observes its outcome directly.
func (s *AgentState) CompleteRestoration(l Limb) { s.Limbs.CompleteRestore(&l) }

// Regenerate boosts the restoration in progress.
func (s *AgentState) Regenerate() { s.Limbs.Regenerating = true }

// RestoreTimeLeft returns the seconds until the restoration finishes.
func (s *AgentState) RestoreTimeLeft() float64 {
	if s.Limbs.Restoring == nil {
		return 0
	}
	return s.Limbs.RestoreTimer.TimeLeft().ToSeconds()
}

// RotateLimbs moves arm and leg damage around, dislocations included.
func (s *AgentState) RotateLimbs(counter bool) {
	s.Limbs.Rotate(counter)
	var dislocated [LimbCount]bool
	limbs := []Limb{LimbLeftArm, LimbRightArm, LimbLeftLeg, LimbRightLeg}
	for _, l := range limbs {
		f, _ := l.DislocatedFlag()
		dislocated[l] = s.Is(f)
	}
	for _, l := range limbs {
		to, _ := l.Rotated(counter)
		f, _ := to.DislocatedFlag()
		s.SetFlag(f, dislocated[l])
	}
}

// RestoreCount counts restorations needed to mend every limb.
func (s *AgentState) RestoreCount() int { return s.Limbs.RestoreCount() }

// Parrying returns the limb being parried.
func (s *AgentState) Parrying() (Limb, bool) {
	if s.parrying == nil {
		return LimbHead, false
	}
	return *s.parrying, true
}

func (s *AgentState) SetParrying(l Limb) { s.parrying = &l }
func (s *AgentState) ClearParrying() { s.parrying = nil }

// ---------------------------------------------------------------------------
// Capabilities
// ---------------------------------------------------------------------------

var proneFlags = []Flag{
	Fallen, Indifference, Asleep, Stun, Paralysis,
	WritheImpaled, WritheArmpitlock, WritheNecklock, WritheThighlock, WritheTransfix,
	WritheBind, WritheGunk, WritheRopes, WritheVines, WritheWeb, WritheDartpinned,
	WritheHoist, WritheGrappled, WritheStasis,
}

func (s *AgentState) CanSmoke(ignoreBal bool) bool {
	return !s.Is(Asthma) && (ignoreBal || s.Balanced(BalanceSmoke))
}

func (s *AgentState) CanPill(ignoreBal bool) bool {
	return !s.Is(Anorexia) && (ignoreBal || s.Balanced(BalancePill))
}

func (s *AgentState) CanSalve(ignoreBal bool) bool {
	return !s.Is(Slickness) && (ignoreBal || s.Balanced(BalanceSalve))
}

func (s *AgentState) CanTouch() bool {
	return !s.Is(Paresis) && !s.Is(Paralysis) && !s.Is(NumbArms) &&
		!(s.Is(LeftArmCrippled) && s.Is(RightArmCrippled))
}

func (s *AgentState) CanTree(ignoreBal bool) bool {
	return s.CanTouch() && (ignoreBal || s.Balanced(BalanceTree))
}

func (s *AgentState) CanFocus(ignoreBal bool) bool {
	return !s.Is(Impatience) && !s.Is(Besilence) && (ignoreBal || s.Balanced(BalanceFocus))
}

// CanParry is like not being prone, except that being fallen does not stop
// a parry.
func (s *AgentState) CanParry() bool {
	return s.AffsCount(proneFlags[1:]...) == 0 && !(s.Is(LeftArmCrippled) && s.Is(RightArmCrippled))
}

func (s *AgentState) IsProne() bool { return s.AffsCount(proneFlags...) > 0 }

// ObserveNotProne corrects a branch that thought the agent was down.
func (s *AgentState) ObserveNotProne() {
	if !s.IsProne() {
		return
	}
	for _, f := range proneFlags {
		if f != Paralysis {
			s.ObserveFlag(f, false)
		}
	}
}

func (s *AgentState) CanStand() bool {
	return !s.Is(LeftLegCrippled) && !s.Is(RightLegCrippled) && !s.Is(Frozen) && !s.Is(Paralysis)
}

func (s *AgentState) StuckFallen() bool { return s.Is(Fallen) && !s.CanStand() }

func (s *AgentState) CanWield(left, right bool) bool {
	if left && s.LimbState(LimbLeftArm).Crippled {
		return false
	}
	if right && s.LimbState(LimbRightArm).Crippled {
		return false
	}
	return !s.Is(Paralysis) && !s.Is(Perplexed)
}

func (s *AgentState) ArmsFree() bool { return !s.Is(LeftArmCrippled) && !s.Is(RightArmCrippled) }

// LockDuration estimates the seconds until an agent locked out of smoking,
// eating and applying can cure again. It returns false when not locked.
func (s *AgentState) LockDuration() (float64, bool) {
	if !(s.Is(Asthma) && s.Is(Anorexia) && s.Is(Slickness)) {
		return 0, false
	}
	escape, found := Ticks(0), false
	if !s.Is(Paralysis) && !s.Is(Paresis) {
		escape, found = s.RawBalance(BalanceTree), true
	}
	if !s.Is(Impatience) && !s.Is(Stupidity) {
		if focus := s.RawBalance(BalanceFocus); !found || focus < escape {
			escape, found = focus, true
		}
	} else if !found {
		escape, found = Seconds(15), true
	}
	return escape.ToSeconds(), found
}

// ---------------------------------------------------------------------------
// Relapses, wielding, class
// ---------------------------------------------------------------------------

func (s *AgentState) PushToxin(venom string) { s.Relapses.Push(venom) }
func (s *AgentState) GetRelapses(n int) RelapseResult { return s.Relapses.GetRelapses(n) }
func (s *AgentState) ClearRelapses() { s.Relapses.Clear() }
func (s *AgentState) WieldMulti(left, right string) { s.Wield.Wield(left, right) }
func (s *AgentState) UnwieldMulti(left, right bool) { s.Wield.Unwield(left, right) }
func (s *AgentState) WieldTwoHands(what string) { s.Wield.WieldTwoHands(what) }
func (s *AgentState) SetChannel(c ChannelState) { s.Channel = c }
func (s *AgentState) AssumeZealot(fn func(*ZealotState)) { s.Class.AssumeZealot(fn) }
func (s *AgentState) RegisterHit() { s.Aggro.RegisterHit() }

// NormalizedClass returns the class this branch believes the agent plays.
func (s *AgentState) NormalizedClass() (Class, bool) { return s.Class.NormalizedClass() }
