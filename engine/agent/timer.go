package agent

// Timer is the shared shape of timed sub-states. A count-down timer runs
// out after a fixed duration; a count-up timer accrues progress until it
// reaches UpTo, and expires at ExpireAt regardless.
type Timer struct {
	CountUp   bool
	Remaining Ticks // count-down only
	ExpireAt  Ticks // count-up only
	UpTo      Ticks // count-up only
	Progress  Ticks // count-up only
}

// CountDown starts a timer that expires after d.
func CountDown(d Ticks) Timer { return Timer{Remaining: d} }

// CountUpObserve starts a timer that accrues progress towards upTo and
// gives up at expireAt.
func CountUpObserve(expireAt, upTo Ticks) Timer {
	return Timer{CountUp: true, ExpireAt: expireAt, UpTo: upTo}
}

// Wait advances the timer by d. Count-down timers clamp at zero; count-up
// timers stop accruing once they expire.
func (t *Timer) Wait(d Ticks) {
	if t.CountUp {
		if t.Progress < t.ExpireAt {
			t.Progress = t.Progress.Add(d)
		}
		return
	}
	t.Remaining = t.Remaining.Sub(d)
	if t.Remaining < 0 {
		t.Remaining = 0
	}
}

// Active reports whether the timer still has time left.
func (t *Timer) Active() bool {
	if t.CountUp {
		return t.Progress < t.ExpireAt
	}
	return t.Remaining > 0
}

// Finished reports whether a count-up timer has reached its goal.
// Count-down timers finish when they stop being active.
func (t *Timer) Finished() bool {
	if t.CountUp {
		return t.Progress >= t.UpTo
	}
	return t.Remaining <= 0
}

// TimeLeft returns the ticks until the timer finishes.
func (t *Timer) TimeLeft() Ticks {
	if t.CountUp {
		if t.Progress >= t.UpTo {
			return 0
		}
		return t.UpTo - t.Progress
	}
	return t.Remaining
}

// Elapsed returns the ticks a count-up timer has accrued.
func (t *Timer) Elapsed() Ticks { return t.Progress }

// Reset restarts a count-up timer's progress.
func (t *Timer) Reset() { t.Progress = 0 }

// Expire ends the timer immediately.
func (t *Timer) Expire() {
	if t.CountUp {
		t.Progress = t.ExpireAt
		return
	}
	t.Remaining = 0
}

// ---------------------------------------------------------------------------
// TimedFlagState
// ---------------------------------------------------------------------------

// TimedFlagState is a flag that drops on its own once its duration passes.
type TimedFlagState struct {
	active    bool
	remaining Ticks
}

// Activate turns the flag on for d ticks.
func (s *TimedFlagState) Activate(d Ticks) {
	s.active = true
	s.remaining = d
}

// Deactivate turns the flag off.
func (s *TimedFlagState) Deactivate() { *s = TimedFlagState{} }

// Active reports whether the flag is on.
func (s TimedFlagState) Active() bool { return s.active }

// Remaining returns the time left while active.
func (s TimedFlagState) Remaining() Ticks { return s.remaining }

// Wait counts the flag down, turning it off in the same call when it runs out.
func (s *TimedFlagState) Wait(d Ticks) {
	if !s.active {
		return
	}
	s.remaining = s.remaining.Sub(d)
	if s.remaining <= 0 {
		s.Deactivate()
	}
}
