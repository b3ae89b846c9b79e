package agent

import "strings"

// PipePuffs is the number of puffs in a freshly filled pipe.
const PipePuffs = 10

// Herb names a smokeable pipe herb.
type Herb uint8

const (
	HerbYarrow Herb = iota
	HerbWillow
	HerbReishi
	HerbEmpty
)

var herbNames = [...]string{"yarrow", "willow", "reishi", "empty"}

func (h Herb) String() string { return herbNames[h] }

// HerbFromString finds the herb named anywhere in s.
func HerbFromString(s string) Herb {
	switch {
	case strings.Contains(s, "willow"):
		return HerbWillow
	case strings.Contains(s, "reishi"):
		return HerbReishi
	case strings.Contains(s, "yarrow"):
		return HerbYarrow
	}
	return HerbEmpty
}

// Pipe is a pipe we have seen a listing for.
type Pipe struct {
	Artifact bool
	Lit      Ticks
	ID       int
	Puffs    int
}

// PipeKnowledge tags how much is known about a pipe.
type PipeKnowledge uint8

const (
	PipeUnknownFilled      PipeKnowledge = iota // assumed full
	PipeUnknownFilledPuffs                      // refilled after running dry; puffs counted
	PipeUnknownUnfilled                         // ran dry
	PipeKnown                                   // listed
)

// PipeState is what we believe about one pipe.
type PipeState struct {
	Knowledge PipeKnowledge
	Puffs     int  // PipeUnknownFilledPuffs
	Pipe      Pipe // PipeKnown
}

func (p *PipeState) wait(d Ticks) {
	if p.Knowledge == PipeKnown && !p.Pipe.Artifact {
		p.Pipe.Lit = p.Pipe.Lit.Sub(d)
	}
}

func (p *PipeState) refill() {
	if p.Knowledge == PipeKnown {
		p.Pipe.Puffs = PipePuffs
		return
	}
	*p = PipeState{Knowledge: PipeUnknownFilled}
}

func (p *PipeState) puff() bool {
	switch p.Knowledge {
	case PipeKnown:
		if p.Pipe.Puffs > 0 {
			p.Pipe.Puffs--
			return true
		}
		return false
	case PipeUnknownUnfilled:
		*p = PipeState{Knowledge: PipeUnknownFilledPuffs, Puffs: PipePuffs - 1}
	case PipeUnknownFilledPuffs:
		if p.Puffs > 1 {
			p.Puffs--
		} else {
			*p = PipeState{Knowledge: PipeUnknownUnfilled}
		}
	}
	return true
}

func (p *PipeState) puffAll() {
	if p.Knowledge == PipeKnown {
		p.Pipe.Puffs = 0
		return
	}
	*p = PipeState{Knowledge: PipeUnknownUnfilled}
}

func (p *PipeState) empty() bool {
	switch p.Knowledge {
	case PipeKnown:
		return p.Pipe.Puffs <= 0
	case PipeUnknownUnfilled:
		return true
	}
	return false
}

// PipeRefill names a listed pipe that needs filling.
type PipeRefill struct {
	Herb Herb
	ID   int
}

// PipesState holds the three smoking pipes.
type PipesState struct {
	pipes [HerbEmpty]PipeState
}

// Get returns the state of one pipe.
func (s *PipesState) Get(h Herb) PipeState {
	if h >= HerbEmpty {
		return PipeState{Knowledge: PipeUnknownUnfilled}
	}
	return s.pipes[h]
}

// Wait burns down lit, non-artifact pipes.
func (s *PipesState) Wait(d Ticks) {
	for i := range s.pipes {
		s.pipes[i].wait(d)
	}
}

// Puff smokes one puff. It returns false if the pipe is known to be empty.
func (s *PipesState) Puff(h Herb) bool {
	if h >= HerbEmpty {
		return false
	}
	return s.pipes[h].puff()
}

// PuffAll marks a pipe as smoked out.
func (s *PipesState) PuffAll(h Herb) {
	if h < HerbEmpty {
		s.pipes[h].puffAll()
	}
}

// Refill fills a pipe.
func (s *PipesState) Refill(h Herb) {
	if h < HerbEmpty {
		s.pipes[h].refill()
	}
}

// Initialize records a listed pipe.
func (s *PipesState) Initialize(h Herb, p Pipe) {
	if h < HerbEmpty {
		s.pipes[h] = PipeState{Knowledge: PipeKnown, Pipe: p}
	}
}

// NeededRefills lists known pipes with no puffs left.
func (s *PipesState) NeededRefills() []PipeRefill {
	var out []PipeRefill
	for _, h := range []Herb{HerbYarrow, HerbWillow, HerbReishi} {
		p := s.pipes[h]
		if p.Knowledge == PipeKnown && p.Pipe.Puffs <= 0 {
			out = append(out, PipeRefill{Herb: h, ID: p.Pipe.ID})
		}
	}
	return out
}

// Empties lists pipes believed to be empty.
func (s *PipesState) Empties() []Herb {
	var out []Herb
	for _, h := range []Herb{HerbYarrow, HerbWillow, HerbReishi} {
		if s.pipes[h].empty() {
			out = append(out, h)
		}
	}
	return out
}
