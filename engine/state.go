// Package engine keeps a belief state about every agent in a fight. Each
// agent has one or more branches, candidate states that disagree only about
// what could not be observed. Observations arrive in time slices; they
// advance the clock, fork branches on ambiguity and strike branches that
// contradict the evidence.
package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// Perspective is how an action relates to the perspective agent.
type Perspective uint8

const (
	PerspectiveAttacker Perspective = iota
	PerspectiveTarget
	PerspectiveBystander
)

type hintKey struct {
	who  string
	kind string
}

// TimelineState holds every agent's branches plus the facts about the
// world that are not per-branch.
type TimelineState struct {
	agents map[string][]agent.AgentState
	hints  map[hintKey]string
	lists  map[string][]string
	time   int64
	me     string

	rules *Rules
	log   logrus.FieldLogger
}

// NewTimelineState creates an empty state. nil arguments select the
// embedded rules and the standard logger.
func NewTimelineState(rules *Rules, logger logrus.FieldLogger) *TimelineState {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TimelineState{
		agents: make(map[string][]agent.AgentState),
		hints:  make(map[hintKey]string),
		lists:  make(map[string][]string),
		rules:  rules,
		log:    logger,
	}
}

// Rules returns the rule set in use.
func (s *TimelineState) Rules() *Rules { return s.rules }

// Time returns the current time in ticks.
func (s *TimelineState) Time() int64 { return s.time }

// Me returns the perspective agent.
func (s *TimelineState) Me() string { return s.me }

// Clone returns a deep copy that shares only the immutable rules.
func (s *TimelineState) Clone() *TimelineState {
	c := &TimelineState{
		agents: make(map[string][]agent.AgentState, len(s.agents)),
		hints:  make(map[hintKey]string, len(s.hints)),
		lists:  make(map[string][]string, len(s.lists)),
		time:   s.time,
		me:     s.me,
		rules:  s.rules,
		log:    s.log,
	}
	for name, branches := range s.agents {
		cp := make([]agent.AgentState, len(branches))
		for i := range branches {
			cp[i] = branches[i].Clone()
		}
		c.agents[name] = cp
	}
	for k, v := range s.hints {
		c.hints[k] = v
	}
	for k, v := range s.lists {
		c.lists[k] = append([]string(nil), v...)
	}
	return c
}

// ---------------------------------------------------------------------------
// Agents
// ---------------------------------------------------------------------------

// Agent returns the branches of an agent, or nil if it was never
// referenced. The slice is owned by the state.
func (s *TimelineState) Agent(name string) []agent.AgentState {
	return s.agents[name]
}

// Agents lists every referenced agent, sorted.
func (s *TimelineState) Agents() []string {
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Branches counts an agent's branches; 0 if never referenced.
func (s *TimelineState) Branches(name string) int { return len(s.agents[name]) }

// BorrowAgent returns the first branch of an agent, or the baseline for
// an agent nobody has seen. The result must be treated as read-only and is
// only valid until the next change to the agent's branches.
func (s *TimelineState) BorrowAgent(name string) *agent.AgentState {
	if branches := s.agents[name]; len(branches) > 0 {
		return &branches[0]
	}
	a := agent.NewAgentState()
	return &a
}

// BorrowMe borrows the perspective agent.
func (s *TimelineState) BorrowMe() *agent.AgentState { return s.BorrowAgent(s.me) }

// branches returns an agent's branches, creating the baseline on first
// reference.
func (s *TimelineState) branches(name string) []agent.AgentState {
	b, ok := s.agents[name]
	if !ok {
		a := agent.NewAgentState()
		a.SetLogger(s.log.WithField("agent", name))
		b = []agent.AgentState{a}
		s.agents[name] = b
	}
	return b
}

// ForAgent applies a certain effect to every branch of an agent.
func (s *TimelineState) ForAgent(name string, e agent.Effect) {
	branches := s.branches(name)
	for i := range branches {
		e.Apply(&branches[i])
	}
}

// ForAgentUncertain applies an effect that may fork. Each affected branch is
// replaced by the branches it returns, stamped with the current time;
// unaffected branches are kept as they are.
func (s *TimelineState) ForAgentUncertain(name string, e agent.UncertainEffect) {
	branches := s.branches(name)
	out := make([]agent.AgentState, 0, len(branches))
	for i := range branches {
		repl, ok := e.Apply(&branches[i])
		if !ok || len(repl) == 0 {
			out = append(out, branches[i])
			continue
		}
		for _, r := range repl {
			r.BranchAt(s.time)
			out = append(out, r)
		}
	}
	s.agents[name] = out
}

// UpdateTime advances every branch of every agent to t. Earlier or equal
// times are ignored.
func (s *TimelineState) UpdateTime(t int64) {
	if t <= s.time {
		return
	}
	delta := t - s.time
	if delta > math.MaxInt32 {
		delta = math.MaxInt32
	}
	for _, branches := range s.agents {
		for i := range branches {
			branches[i].Wait(agent.Ticks(delta), &s.rules.Restore)
		}
	}
	s.time = t
}

// Perspective classifies an action relative to the perspective agent.
func (s *TimelineState) Perspective(o Observation) Perspective {
	switch s.me {
	case o.Caster:
		return PerspectiveAttacker
	case o.Target:
		return PerspectiveTarget
	}
	return PerspectiveBystander
}

// ---------------------------------------------------------------------------
// Hints
// ---------------------------------------------------------------------------

// AddPlayerHint records a free-form fact about an agent.
func (s *TimelineState) AddPlayerHint(name, kind, value string) {
	s.hints[hintKey{name, kind}] = value
}

// PlayerHint looks up a hint.
func (s *TimelineState) PlayerHint(name, kind string) (string, bool) {
	v, ok := s.hints[hintKey{name, kind}]
	return v, ok
}

// MyHint looks up a hint about the perspective agent.
func (s *TimelineState) MyHint(kind string) (string, bool) { return s.PlayerHint(s.me, kind) }

// IsHintTimeFresh reports whether a hint holding a time is no older than
// freshness seconds.
func (s *TimelineState) IsHintTimeFresh(name, kind string, freshness float64) bool {
	v, ok := s.PlayerHint(name, kind)
	if !ok {
		return false
	}
	t, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false
	}
	return s.time-t <= int64(agent.Seconds(freshness))
}

// ---------------------------------------------------------------------------
// Assumptions
// ---------------------------------------------------------------------------

// SetFlagForAgent sets a flag by name on every branch. Clearing thin blood
// also forgets pending relapses; insomnia cannot be set over hypersomnia.
func (s *TimelineState) SetFlagForAgent(name, flag string, value bool) error {
	f, ok := agent.FlagFromName(flag)
	if !ok {
		return fmt.Errorf("unknown flag %q", flag)
	}
	s.ForAgent(name, agent.EffectFunc(func(a *agent.AgentState) {
		if f == agent.ThinBlood && !value {
			a.ClearRelapses()
		}
		if f == agent.Insomnia && value && a.Is(agent.Hypersomnia) {
			return
		}
		a.SetFlag(f, value)
	}))
	return nil
}

// TickCounterForAgent adds a stack to a counted flag.
func (s *TimelineState) TickCounterForAgent(name, flag string) error {
	f, ok := agent.FlagFromName(flag)
	if !ok {
		return fmt.Errorf("unknown flag %q", flag)
	}
	if !f.IsCounter() {
		return fmt.Errorf("flag %q does not count", flag)
	}
	s.ForAgent(name, agent.EffectFunc(func(a *agent.AgentState) {
		a.TickFlagUp(f)
	}))
	return nil
}

// AdjustAgentLimb adds percent damage to a limb; negative values heal.
func (s *TimelineState) AdjustAgentLimb(name, limb string, percent float64) error {
	l, ok := limbFromName(limb)
	if !ok {
		return fmt.Errorf("unknown limb %q", limb)
	}
	delta := int32(percent * 100)
	s.ForAgent(name, agent.EffectFunc(func(a *agent.AgentState) {
		a.Limbs.Adjust(l, delta)
	}))
	return nil
}

// FinishAgentRestore ends a restoration whose outcome was seen.
func (s *TimelineState) FinishAgentRestore(name, limb string) error {
	l, ok := limbFromName(limb)
	if !ok {
		return fmt.Errorf("unknown limb %q", limb)
	}
	s.ForAgent(name, agent.EffectFunc(func(a *agent.AgentState) {
		a.CompleteRestoration(l)
	}))
	return nil
}

// ---------------------------------------------------------------------------
// World facts
// ---------------------------------------------------------------------------

// SetAgentRoom places an agent in a room on every branch.
func (s *TimelineState) SetAgentRoom(name string, room int64) {
	s.ForAgent(name, agent.EffectFunc(func(a *agent.AgentState) {
		a.RoomID = room
	}))
}

// AgentsInRoom lists agents believed to be in a room, sorted.
func (s *TimelineState) AgentsInRoom(room int64) []string {
	var out []string
	for name, branches := range s.agents {
		if len(branches) > 0 && branches[0].RoomID == room {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// PlayerList returns a named list such as "<me>_allies".
func (s *TimelineState) PlayerList(key string) []string {
	return append([]string(nil), s.lists[key]...)
}

func (s *TimelineState) setPlayerList(key string, names []string) {
	s.lists[key] = names
}

func limbFromName(name string) (agent.Limb, bool) { return agent.LimbFromName(name) }
