package agent

// HiddenState separates facts nobody can know yet from specific suspicions.
//
// unknown counts conditions that are known to exist but have no candidate
// flag. guessed holds flags that one branch assumes without confirmation.
type HiddenState struct {
	unknown uint8
	guessed FlagSet
}

// Unknown returns the number of unattributed hidden conditions.
func (h *HiddenState) Unknown() uint8 { return h.unknown }

// AddUnknown records one more unattributed hidden condition.
func (h *HiddenState) AddUnknown() {
	if h.unknown < 255 {
		h.unknown++
	}
}

// RemoveUnknown drops one unattributed condition if any remain.
func (h *HiddenState) RemoveUnknown() {
	if h.unknown > 0 {
		h.unknown--
	}
}

// ClearUnknown forgets every unattributed condition.
func (h *HiddenState) ClearUnknown() { h.unknown = 0 }

// FoundOut consumes one unknown slot because some hidden condition was
// identified. It returns false, leaving unknown at 0, when there was none.
func (h *HiddenState) FoundOut() bool {
	if h.unknown == 0 {
		return false
	}
	h.unknown--
	return true
}

// AddGuess marks a flag as suspected. It returns true if it already was.
func (h *HiddenState) AddGuess(f Flag) bool {
	already := h.guessed.Is(f)
	h.guessed.Set(f, true)
	return already
}

// Unhide removes a flag from the suspected set.
func (h *HiddenState) Unhide(f Flag) { h.guessed.Set(f, false) }

// IsGuessed reports whether a flag is suspected but unconfirmed.
func (h *HiddenState) IsGuessed(f Flag) bool { return h.guessed.Is(f) }

// Guesses returns the number of suspected flags.
func (h *HiddenState) Guesses() int { return len(h.GuessedFlags()) }

// GuessedFlags lists the suspected flags in flag order.
func (h *HiddenState) GuessedFlags() []Flag {
	var out []Flag
	for f := Flag(0); f < simpleFlagEnd; f++ {
		if h.guessed.Is(f) {
			out = append(out, f)
		}
	}
	for f := simpleFlagEnd + 1; f < counterFlagEnd; f++ {
		if h.guessed.Is(f) {
			out = append(out, f)
		}
	}
	return out
}
