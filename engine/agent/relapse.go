package agent

const (
	relapseRipeAfter = 190 // a venom relapses after this age...
	relapseDeadAfter = 710 // ...and is gone once it reaches this one
)

// RelapseEntry is one venom that may resurface.
type RelapseEntry struct {
	Age   Ticks
	Venom string
}

func (e RelapseEntry) ripe() bool  { return e.Age > relapseRipeAfter && e.Age < relapseDeadAfter }
func (e RelapseEntry) alive() bool { return e.Age < relapseDeadAfter }

// RelapseState tracks venoms held back by thin blood. A nil entry list is
// the inactive state.
type RelapseState struct {
	entries []RelapseEntry
}

// RelapseOutcome tells how a relapse report lines up with the tracked venoms.
type RelapseOutcome uint8

const (
	RelapseNone      RelapseOutcome = iota // nothing was ripe
	RelapseConcrete                        // exactly the reported number was ripe
	RelapseUncertain                       // some were ripe, but not that many
)

// RelapseResult is the answer to GetRelapses.
type RelapseResult struct {
	Outcome RelapseOutcome
	Venoms  []string       // concrete: the ripe venoms
	Count   int            // uncertain: how many relapsed
	Alive   []RelapseEntry // uncertain: every entry that could have relapsed
	Expired int            // entries past their window
}

// Active reports whether any venom is being tracked.
func (r *RelapseState) Active() bool { return r.entries != nil }

// Entries returns a copy of the tracked venoms.
func (r *RelapseState) Entries() []RelapseEntry {
	if r.entries == nil {
		return nil
	}
	return append([]RelapseEntry(nil), r.entries...)
}

// Wait ages every entry.
func (r *RelapseState) Wait(d Ticks) {
	for i := range r.entries {
		r.entries[i].Age = r.entries[i].Age.Add(d)
	}
}

// Push starts tracking a venom at age zero.
func (r *RelapseState) Push(venom string) {
	r.entries = append(r.entries, RelapseEntry{Venom: venom})
}

// Clear stops tracking every venom.
func (r *RelapseState) Clear() { r.entries = nil }

// DropRelapse forgets the entry with exactly this age and venom.
func (r *RelapseState) DropRelapse(age Ticks, venom string) {
	if r.entries == nil {
		return
	}
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.Age != age || e.Venom != venom {
			kept = append(kept, e)
		}
	}
	r.entries = kept
}

// Stalest picks the venom among candidates whose latest entry is oldest.
// Candidates with no entry count as older than any tracked venom.
func (r *RelapseState) Stalest(venoms []string) (string, bool) {
	if len(venoms) == 0 {
		return "", false
	}
	if r.entries == nil {
		return venoms[0], true
	}
	ages := make(map[string]Ticks, len(venoms))
	for _, v := range venoms {
		ages[v] = 10 * BalanceScale
	}
	for _, e := range r.entries {
		if _, ok := ages[e.Venom]; ok {
			ages[e.Venom] = e.Age
		}
	}
	best, bestAge := venoms[0], ages[venoms[0]]
	for _, v := range venoms[1:] {
		if ages[v] > bestAge {
			best, bestAge = v, ages[v]
		}
	}
	return best, true
}

// GetRelapses matches a report of count relapses against the tracked venoms.
// A concrete match removes the ripe entries; an uncertain one only drops
// entries that are past their window.
func (r *RelapseState) GetRelapses(count int) RelapseResult {
	if r.entries == nil {
		return RelapseResult{Outcome: RelapseNone}
	}
	var ripe []string
	expired := 0
	for _, e := range r.entries {
		if e.ripe() {
			ripe = append(ripe, e.Venom)
		} else if !e.alive() {
			expired++
		}
	}
	switch {
	case len(ripe) == count:
		kept := r.entries[:0]
		for _, e := range r.entries {
			if !e.ripe() && e.alive() {
				kept = append(kept, e)
			}
		}
		r.entries = kept
		return RelapseResult{Outcome: RelapseConcrete, Venoms: ripe, Expired: expired}
	case len(ripe) > 0:
		kept := r.entries[:0]
		for _, e := range r.entries {
			if e.alive() {
				kept = append(kept, e)
			}
		}
		r.entries = kept
		return RelapseResult{Outcome: RelapseUncertain, Count: count, Alive: r.Entries(), Expired: expired}
	}
	return RelapseResult{Outcome: RelapseNone}
}
