package engine

import (
	"context"
	"fmt"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// ClassStore remembers which class each player was last seen using. The
// engine only reads and writes through it; implementations handle their
// own synchronization. A nil ClassStore disables the lookup.
type ClassStore interface {
	GetClass(ctx context.Context, who string) (agent.Class, bool, error)
	SetClass(ctx context.Context, who string, class agent.Class) error
}

// inferClass records the class behind a class skill and resets the
// caster's class state to it. A target whose class is unknown to every
// branch is looked up in the store.
func (s *TimelineState) inferClass(ctx context.Context, o *Observation, store ClassStore) error {
	if store == nil {
		return nil
	}
	if class, ok := s.rules.ClassForCategory(o.Category); ok {
		if err := store.SetClass(ctx, o.Caster, class); err != nil {
			return fmt.Errorf("storing class of %s: %w", o.Caster, err)
		}
		normal := class.Normal()
		s.ForAgent(o.Caster, agent.EffectFunc(func(a *agent.AgentState) {
			a.Class.InitializeFor(normal)
		}))
	}
	if o.Target == "" || o.Target == o.Caster {
		return nil
	}
	target := s.BorrowAgent(o.Target)
	if _, known := target.NormalizedClass(); known {
		return nil
	}
	class, ok, err := store.GetClass(ctx, o.Target)
	if err != nil {
		return fmt.Errorf("loading class of %s: %w", o.Target, err)
	}
	if ok {
		normal := class.Normal()
		s.ForAgent(o.Target, agent.EffectFunc(func(a *agent.AgentState) {
			a.Class.InitializeFor(normal)
		}))
	}
	return nil
}
