package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ErrMalformedSlice is wrapped by every Validate failure.
var ErrMalformedSlice = errors.New("malformed time slice")

// PromptKind tags what ended a slice.
type PromptKind uint8

const (
	Promptless PromptKind = iota
	PromptBlackout
	PromptSimulation // produced by a planner, not the game
	PromptStats
)

var promptNames = [...]string{"Promptless", "Blackout", "Simulation", "Stats"}

func (p PromptKind) String() string {
	if int(p) < len(promptNames) {
		return promptNames[p]
	}
	return "Unknown"
}

// PromptKindFromName parses a prompt kind by its exact name.
func PromptKindFromName(name string) (PromptKind, bool) {
	for i, n := range promptNames {
		if n == name {
			return PromptKind(i), true
		}
	}
	return Promptless, false
}

// Vitals are what a Stats prompt shows for me.
type Vitals struct {
	Health      int32
	Mana        int32
	SP          int32
	Equilibrium bool
	Balance     bool
	Shadow      bool
	Prone       bool
}

// Prompt ends a slice.
type Prompt struct {
	Kind  PromptKind
	Stats Vitals // PromptStats only
}

// Line is a raw text line kept for listings that are parsed late.
type Line struct {
	Text   string
	Number uint32
}

// TimeSlice is everything observed between two prompts.
type TimeSlice struct {
	ID           uuid.UUID
	Time         int64 // ticks
	Me           string
	Observations []Observation
	Lines        []Line
	Prompt       Prompt
}

// SimulationSlice wraps observations produced by a planner.
func SimulationSlice(observations []Observation, time int64) TimeSlice {
	return TimeSlice{
		ID:           uuid.New(),
		Time:         time,
		Observations: observations,
		Prompt:       Prompt{Kind: PromptSimulation},
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

type field uint8

const (
	needWho field = 1 << iota
	needWhat
	needCaster
	needSkill
	needLimb
)

var kindRequires = [kindCount]field{
	KindCombatAction:     needCaster | needSkill,
	KindProc:             needCaster | needSkill,
	KindSimpleCure:       needCaster | needWhat,
	KindDualWield:        needWho,
	KindWield:            needWho | needWhat,
	KindUnwield:          needWho,
	KindTwoHandedWield:   needWho | needWhat,
	KindConnects:         needWho,
	KindDevenoms:         needWhat,
	KindParryStart:       needWho | needWhat,
	KindParry:            needWho | needWhat,
	KindDamaged:          needWho | needLimb,
	KindMangled:          needWho | needLimb,
	KindAbsorbed:         needWho,
	KindDiscernedAfflict: needWhat,
	KindDodges:           needWho,
	KindMisses:           needWho,
	KindOtherAfflicted:   needWho | needWhat,
	KindDiscernedCure:    needWho | needWhat,
	KindLostRebound:      needWho,
	KindLostShield:       needWho,
	KindLostFangBarrier:  needWho,
	KindPurgeVenom:       needWho | needWhat,
	KindFlameShield:      needWho,
	KindListStart:        needWho | needWhat,
	KindListItem:         needWhat,
	KindAfflicted:        needWhat,
	KindDiscovered:       needWhat,
	KindCured:            needWhat,
	KindGained:           needWho | needWhat,
	KindStripped:         needWhat,
	KindRelapse:          needWho,
	KindTickAff:          needWho | needWhat,
	KindFillPipe:         needWhat,
	KindBalance:          needWhat,
	KindBalanceBack:      needWhat,
	KindLimbDamage:       needLimb,
	KindLimbHeal:         needLimb,
	KindLimbDone:         needLimb,
	KindFall:             needWho,
	KindStand:            needWho,
	KindSent:             needWhat,
	KindRoom:             needWho,
}

// Validate checks the slice before anything is applied. Errors wrap
// ErrMalformedSlice.
func (s *TimeSlice) Validate() error {
	if s.Time < 0 {
		return fmt.Errorf("%w: negative time %d", ErrMalformedSlice, s.Time)
	}
	if s.Prompt.Kind > PromptStats {
		return fmt.Errorf("%w: unknown prompt kind %d", ErrMalformedSlice, s.Prompt.Kind)
	}
	if s.Me == "" && s.Prompt.Kind != PromptSimulation {
		return fmt.Errorf("%w: no perspective agent", ErrMalformedSlice)
	}
	for i := range s.Observations {
		if err := s.Observations[i].validate(); err != nil {
			return fmt.Errorf("%w: observation %d: %v", ErrMalformedSlice, i, err)
		}
	}
	return nil
}

func (o *Observation) validate() error {
	if o.Kind >= kindCount {
		return fmt.Errorf("unknown kind %d", o.Kind)
	}
	if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return fmt.Errorf("%s: non-finite value", o.Kind)
	}
	req := kindRequires[o.Kind]
	switch {
	case req&needWho != 0 && o.Who == "":
		return fmt.Errorf("%s: missing who", o.Kind)
	case req&needWhat != 0 && o.What == "":
		return fmt.Errorf("%s: missing what", o.Kind)
	case req&needCaster != 0 && o.Caster == "":
		return fmt.Errorf("%s: missing caster", o.Kind)
	case req&needSkill != 0 && o.Skill == "":
		return fmt.Errorf("%s: missing skill", o.Kind)
	}
	if req&needLimb != 0 {
		if _, ok := limbFromName(o.What); !ok {
			return fmt.Errorf("%s: unknown limb %q", o.Kind, o.What)
		}
	}
	if o.Kind == KindSimpleCure {
		if o.Cure >= cureTypeCount {
			return fmt.Errorf("%s: unknown cure type %d", o.Kind, o.Cure)
		}
		if o.Cure == CureSalve && o.Location == "" {
			return fmt.Errorf("%s: salve without location", o.Kind)
		}
	}
	return nil
}
