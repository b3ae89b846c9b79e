package agent

const aggroWindow Ticks = 10 * BalanceScale

// AggroState counts hits taken over the current and previous ten-second
// windows.
type AggroState struct {
	timer  Ticks
	latest int
	oldest int
}

// Wait rolls the window when it runs out.
func (a *AggroState) Wait(d Ticks) {
	a.timer = a.timer.Sub(d)
	if a.timer <= 0 {
		a.oldest = a.latest
		a.latest = 0
		a.timer = aggroWindow
	}
}

// RegisterHit counts a hit in the current window.
func (a *AggroState) RegisterHit() { a.latest++ }

// Aggro returns the hits across both windows.
func (a *AggroState) Aggro() int { return a.latest + a.oldest }
