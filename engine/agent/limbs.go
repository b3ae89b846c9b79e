package agent

import "math"

const (
	DamagedValue int32 = 3332 // above this a limb is broken
	MangledValue int32 = 6665 // above this a limb is mangled
	maxLimbDamage      = 10000

	restoreDuration Ticks = 400
	restoreHeal     int32 = 3000
)

// LimbRecord is the damage on one limb, in hundredths of a percent.
type LimbRecord struct {
	Damage    int32
	Crippled  bool
	Broken    bool
	Mangled   bool
	Amputated bool
	Welt      bool
}

// LimbSet holds every limb plus the restoration salve in progress.
type LimbSet struct {
	Limbs              [LimbCount]LimbRecord
	Restoring          *Limb
	RestoreTimer       Timer
	FleshbanedCount    int
	Regenerating       bool
	FirstPersonRestore bool
}

// RestoreResult is a restoration that has finished.
type RestoreResult struct {
	Limb         Limb
	HealModifier int32
	FirstPerson  bool
}

func crippleable(l Limb) bool { return l != LimbHead && l != LimbTorso }

// SetCrippled cripples an arm or leg. Uncrippling also mends it.
func (s *LimbSet) SetCrippled(l Limb, v bool) {
	if !crippleable(l) {
		return
	}
	r := &s.Limbs[l]
	r.Crippled = v
	if !v {
		r.Broken = false
		r.Mangled = false
	}
}

// SetBroken breaks or mends a limb, moving its damage across the threshold.
func (s *LimbSet) SetBroken(l Limb, v bool) {
	r := &s.Limbs[l]
	if v && crippleable(l) {
		r.Crippled = true
	}
	r.Broken = v
	if !v {
		r.Mangled = false
	}
	if v && r.Damage <= DamagedValue {
		r.Damage = DamagedValue + 1
	} else if !v && r.Damage >= DamagedValue {
		r.Damage = DamagedValue - 1
	}
}

// SetMangled mangles or unmangles a limb. Mangling also breaks it.
func (s *LimbSet) SetMangled(l Limb, v bool) {
	r := &s.Limbs[l]
	if v && crippleable(l) {
		r.Crippled = true
	}
	r.Mangled = v
	if v {
		r.Broken = true
	}
	if v && r.Damage <= MangledValue {
		r.Damage = MangledValue + 1
	} else if !v && r.Damage >= MangledValue {
		r.Damage = MangledValue - 1
	}
}

// SetAmputated severs or reattaches an arm or leg.
func (s *LimbSet) SetAmputated(l Limb, v bool) {
	if !crippleable(l) {
		return
	}
	s.Limbs[l].Amputated = v
	if v {
		s.Limbs[l].Crippled = true
	}
}

// SetDamage stores a reported damage value. Dropping under a threshold
// mends the limb; crossing one only breaks it when assumeBreak is set.
func (s *LimbSet) SetDamage(l Limb, v int32, assumeBreak bool) {
	r := &s.Limbs[l]
	r.Damage = v
	switch {
	case v < DamagedValue:
		r.Broken = false
		r.Mangled = false
	case v < MangledValue:
		r.Mangled = false
		if assumeBreak {
			if crippleable(l) {
				r.Crippled = true
			}
			r.Broken = true
		}
	case assumeBreak:
		if crippleable(l) {
			r.Crippled = true
		}
		r.Broken = true
		r.Mangled = true
	}
}

// Adjust adds to a limb's damage, clamped to [0, 10000].
func (s *LimbSet) Adjust(l Limb, delta int32) {
	r := &s.Limbs[l]
	r.Damage += delta
	if r.Damage < 0 {
		r.Damage = 0
	} else if r.Damage > maxLimbDamage {
		r.Damage = maxLimbDamage
	}
}

// Welt marks a limb as welted.
func (s *LimbSet) Welt(l Limb) { s.Limbs[l].Welt = true }

// Dewelt clears a welt.
func (s *LimbSet) Dewelt(l Limb) { s.Limbs[l].Welt = false }

// StartRestore begins a restoration on a limb. A restoration that has
// finished or is within a tick of finishing completes first, and is
// returned so the caller can apply it.
func (s *LimbSet) StartRestore(l Limb, firstPerson bool) (RestoreResult, bool) {
	var done RestoreResult
	var ok bool
	if s.Restoring != nil && (!s.RestoreTimer.Active() || s.RestoreTimer.TimeLeft() < 10) {
		done, ok = s.CompleteRestore(nil)
	}
	limb := l
	s.Restoring = &limb
	s.RestoreTimer = CountDown(restoreDuration)
	s.FirstPersonRestore = firstPerson
	return done, ok
}

// CompleteRestore finishes the restoration in progress. When l is non-nil it
// must name the limb being restored or nothing happens.
func (s *LimbSet) CompleteRestore(l *Limb) (RestoreResult, bool) {
	if l != nil && (s.Restoring == nil || *s.Restoring != *l) {
		return RestoreResult{}, false
	}
	if s.Restoring == nil {
		s.Regenerating = false
		s.RestoreTimer = Timer{}
		return RestoreResult{}, false
	}
	var mod int32
	if s.Regenerating {
		mod = 1500
	}
	mod -= int32(200 * s.FleshbanedCount)
	res := RestoreResult{Limb: *s.Restoring, HealModifier: mod, FirstPerson: s.FirstPersonRestore}
	s.Regenerating = false
	s.Restoring = nil
	s.RestoreTimer = Timer{}
	s.FleshbanedCount = 0
	return res, true
}

// Restore heals a limb by a restoration's worth of damage.
func (s *LimbSet) Restore(l Limb, mod int32) {
	heal := restoreHeal + mod
	dmg := s.Limbs[l].Damage
	if heal > dmg {
		heal = dmg
	}
	s.SetDamage(l, dmg-heal, false)
}

// Wait advances the restoration timer, returning a restoration that finished.
func (s *LimbSet) Wait(d Ticks) (RestoreResult, bool) {
	if s.Restoring == nil {
		return RestoreResult{}, false
	}
	s.RestoreTimer.Wait(d)
	if s.RestoreTimer.Active() {
		return RestoreResult{}, false
	}
	return s.CompleteRestore(nil)
}

// Rotate moves arm and leg records around the body.
func (s *LimbSet) Rotate(counter bool) {
	old := s.Limbs
	for _, l := range []Limb{LimbLeftArm, LimbRightArm, LimbLeftLeg, LimbRightLeg} {
		to, _ := l.Rotated(counter)
		s.Limbs[to] = old[l]
	}
}

// TotalDamage sums damage across every limb, in percent.
func (s *LimbSet) TotalDamage() float64 {
	var total int32
	for _, r := range s.Limbs {
		total += r.Damage
	}
	return float64(total) / 100
}

// RestoreCount counts restorations needed to mend every limb.
func (s *LimbSet) RestoreCount() int {
	n := 0
	for _, r := range s.Limbs {
		switch {
		case r.Mangled:
			n += 2
		case r.Broken:
			n++
		}
	}
	return n
}

func (s *LimbSet) clone() LimbSet {
	c := *s
	if s.Restoring != nil {
		l := *s.Restoring
		c.Restoring = &l
	}
	return c
}

// ---------------------------------------------------------------------------
// Read model
// ---------------------------------------------------------------------------

// LimbView is a planner-facing summary of one limb.
type LimbView struct {
	Damage          float64 `json:"damage"` // percent
	Crippled        bool    `json:"crippled"`
	Broken          bool    `json:"broken"`
	Mangled         bool    `json:"mangled"`
	Amputated       bool    `json:"amputated"`
	Restoring       bool    `json:"restoring"`
	Parried         bool    `json:"parried"`
	Dislocated      bool    `json:"dislocated"`
	Welt            bool    `json:"welt"`
	BruiseLevel     int     `json:"bruise_level"`
	FleshbanedCount int     `json:"fleshbaned_count"`
}

// RestoresToZero estimates restorations needed to heal the limb fully.
func (v LimbView) RestoresToZero() int {
	d := v.Damage
	if v.Restoring {
		d -= 30
	}
	return max(int(d/30), 0)
}

// HitsToBreak estimates hits of the given percent damage to break the limb.
func (v LimbView) HitsToBreak(damage float64) int {
	return int(math.Ceil((float64(DamagedValue+1)/100 - v.Damage) / damage))
}

// HitsToMangle estimates hits of the given percent damage to mangle the limb.
func (v LimbView) HitsToMangle(damage float64) int {
	return int(math.Ceil((float64(MangledValue+1)/100 - v.Damage) / damage))
}
