package agent

// BranchState records whether an agent state has been forked, and how much
// evidence has counted against it since.
type BranchState struct {
	branched bool
	forkTime int64
	strikes  uint32
	points   uint32
}

// Single is the state of a hypothesis that has never forked.
func Single() BranchState { return BranchState{} }

// Branched builds a forked state directly.
func Branched(forkTime int64, strikes, points uint32) BranchState {
	return BranchState{branched: true, forkTime: forkTime, strikes: strikes, points: points}
}

// Branch stamps a fork at time t. Strikes and points carry over.
func (b *BranchState) Branch(t int64) {
	b.branched = true
	b.forkTime = t
}

// Strike counts one piece of contradicting evidence. An unforked state has
// no competitor to lose to, so it is left alone.
func (b *BranchState) Strike() {
	if b.branched {
		b.strikes++
	}
}

// IsBranched reports whether the state has forked.
func (b BranchState) IsBranched() bool { return b.branched }

// ForkTime returns the time of the most recent fork, or 0.
func (b BranchState) ForkTime() int64 { return b.forkTime }

// Strikes returns the contradiction count.
func (b BranchState) Strikes() uint32 { return b.strikes }

// Points returns the supporting-evidence count.
func (b BranchState) Points() uint32 { return b.points }

// Point counts one piece of supporting evidence.
func (b *BranchState) Point() {
	if b.branched {
		b.points++
	}
}
