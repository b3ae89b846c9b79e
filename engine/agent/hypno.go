package agent

// FiringWindow is how long a firing suggestion queue waits for its next
// trigger before it is spent.
const FiringWindow Ticks = 600

// HypnosisKind tags a queued suggestion.
type HypnosisKind uint8

const (
	HypnosisAff       HypnosisKind = iota // gives an affliction
	HypnosisAction                        // makes the target perform an action
	HypnosisBulimia                       // purges ingested cures
	HypnosisEradicate                     // strips a defence
	HypnosisTrigger                       // arms a trigger word; never delivered
)

// Hypnosis is one queued suggestion.
type Hypnosis struct {
	Kind   HypnosisKind
	Aff    Flag   // HypnosisAff
	Action string // HypnosisAction, HypnosisTrigger
}

// HypnoPhase is the stage of the suggestion queue.
type HypnoPhase uint8

const (
	HypnoEmpty HypnoPhase = iota
	HypnoHypnotized
	HypnoSealed
	HypnoFiring
)

func (p HypnoPhase) String() string {
	switch p {
	case HypnoHypnotized:
		return "hypnotized"
	case HypnoSealed:
		return "sealed"
	case HypnoFiring:
		return "firing"
	}
	return "empty"
}

// HypnoState is the suggestion queue. Suggestions pile up while the target
// is hypnotized, are frozen once sealed, and fire one at a time after the
// seal breaks.
type HypnoState struct {
	phase HypnoPhase
	queue []Hypnosis
	timer Ticks // sealed: time until firing; firing: time left in the window
}

// Phase returns the current stage.
func (h *HypnoState) Phase() HypnoPhase { return h.phase }

// Queue returns a copy of the queued suggestions, oldest first.
func (h *HypnoState) Queue() []Hypnosis { return append([]Hypnosis(nil), h.queue...) }

// SuggestionCount returns the number of queued suggestions.
func (h *HypnoState) SuggestionCount() int { return len(h.queue) }

// TimeLeft returns the seal or firing timer.
func (h *HypnoState) TimeLeft() Ticks { return h.timer }

// IsHypnotized reports whether new suggestions can be queued.
func (h *HypnoState) IsHypnotized() bool { return h.phase == HypnoHypnotized }

// Hypnotize puts the target under, keeping anything already queued.
func (h *HypnoState) Hypnotize() {
	h.phase = HypnoHypnotized
	h.timer = 0
}

// PushSuggestion queues a suggestion. Queueing always returns to Hypnotized.
func (h *HypnoState) PushSuggestion(s Hypnosis) {
	h.queue = append(h.queue, s)
	h.Hypnotize()
}

// PopSuggestion drops the most recent suggestion.
func (h *HypnoState) PopSuggestion() (Hypnosis, bool) {
	if len(h.queue) == 0 {
		return Hypnosis{}, false
	}
	last := h.queue[len(h.queue)-1]
	h.queue = h.queue[:len(h.queue)-1]
	return last, true
}

// Seal freezes the queue for length ticks. Sealing nothing does nothing.
func (h *HypnoState) Seal(length Ticks) {
	if h.phase == HypnoEmpty {
		return
	}
	h.phase = HypnoSealed
	h.timer = length
}

// Activate starts firing. Trigger entries only set up later suggestions and
// are dropped here.
func (h *HypnoState) Activate() {
	if h.phase != HypnoHypnotized && h.phase != HypnoSealed {
		return
	}
	kept := h.queue[:0]
	for _, s := range h.queue {
		if s.Kind != HypnosisTrigger {
			kept = append(kept, s)
		}
	}
	h.queue = kept
	h.phase = HypnoFiring
	h.timer = FiringWindow
}

// Fire delivers the oldest suggestion. A sealed queue starts firing first.
// Firing the last suggestion, or firing an empty queue, empties the state.
func (h *HypnoState) Fire() (Hypnosis, bool) {
	if h.phase == HypnoSealed {
		h.Activate()
	}
	if h.phase != HypnoFiring {
		return Hypnosis{}, false
	}
	if len(h.queue) == 0 {
		h.Desway()
		return Hypnosis{}, false
	}
	top := h.queue[0]
	h.queue = append(h.queue[:0:0], h.queue[1:]...)
	if len(h.queue) == 0 {
		h.Desway()
	} else {
		h.timer = FiringWindow
	}
	return top, true
}

// NextAff returns the affliction the next firing will deliver.
func (h *HypnoState) NextAff() (Flag, bool) {
	if h.phase != HypnoFiring || len(h.queue) == 0 || h.queue[0].Kind != HypnosisAff {
		return Dead, false
	}
	return h.queue[0].Aff, true
}

// Desway clears the target's mind entirely.
func (h *HypnoState) Desway() { *h = HypnoState{} }

// Wait advances the seal and firing timers. A seal that runs out starts
// firing in the same call, carrying the overshoot into the window; a window
// that runs out empties the state.
func (h *HypnoState) Wait(d Ticks) {
	switch h.phase {
	case HypnoSealed:
		h.timer = h.timer.Sub(d)
		if h.timer > 0 {
			return
		}
		over := -h.timer
		h.Activate()
		h.timer = h.timer.Sub(over)
		if h.timer <= 0 {
			h.Desway()
		}
	case HypnoFiring:
		h.timer = h.timer.Sub(d)
		if h.timer <= 0 {
			h.Desway()
		}
	}
}

func (h *HypnoState) clone() HypnoState {
	c := *h
	c.queue = h.Queue()
	return c
}
