package agent

// Effect is a change that applies the same way to every branch.
type Effect interface {
	Apply(s *AgentState)
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(s *AgentState)

func (f EffectFunc) Apply(s *AgentState) { f(s) }

// UncertainEffect is a change whose outcome depends on what a branch does
// not know. It returns the replacement branches, or false to leave the
// branch as it was.
type UncertainEffect interface {
	Apply(s *AgentState) ([]AgentState, bool)
}

// UncertainFunc adapts a function to UncertainEffect.
type UncertainFunc func(s *AgentState) ([]AgentState, bool)

func (f UncertainFunc) Apply(s *AgentState) ([]AgentState, bool) { return f(s) }

// ForkFlags is the common uncertain effect: one replacement per candidate,
// each with that flag set and guessed.
func ForkFlags(candidates ...Flag) UncertainFunc {
	return func(s *AgentState) ([]AgentState, bool) {
		var out []AgentState
		for _, f := range candidates {
			if s.Is(f) {
				continue
			}
			c := s.Clone()
			c.SetFlag(f, true)
			c.AddGuess(f)
			out = append(out, c)
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
}
