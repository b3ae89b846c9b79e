package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// Strikeout prunes every agent down to its least-struck branches. When more
// than the prune cap survive, identical branches are folded together.
// Running it twice in a row changes nothing the second time.
func (s *TimelineState) Strikeout() {
	for _, name := range s.Agents() {
		branches := s.agents[name]
		if len(branches) == 0 {
			panic(fmt.Sprintf("engine: agent %q has no branches", name))
		}
		before := len(branches)
		least := branches[0].Branch.Strikes()
		for i := range branches {
			if n := branches[i].Branch.Strikes(); n < least {
				least = n
			}
		}
		kept := branches[:0]
		for i := range branches {
			if branches[i].Branch.Strikes() == least {
				kept = append(kept, branches[i])
			}
		}
		mid := len(kept)
		if mid > s.rules.PruneCap {
			kept = dedupBranches(kept)
		}
		s.agents[name] = kept
		if len(kept) != before {
			s.log.WithFields(logrus.Fields{
				"agent":  name,
				"before": before,
				"mid":    mid,
				"after":  len(kept),
			}).Info("pruned branches")
		}
	}
}

// dedupBranches drops branches equal to an earlier one, keeping order.
func dedupBranches(branches []agent.AgentState) []agent.AgentState {
	seen := make(map[uint64][]int, len(branches))
	out := branches[:0]
	for i := range branches {
		b := &branches[i]
		fp := b.Fingerprint()
		dup := false
		for _, j := range seen[fp] {
			if out[j].Equal(b) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[fp] = append(seen[fp], len(out))
		out = append(out, *b)
	}
	return out
}
