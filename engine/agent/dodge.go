package agent

const (
	dodgeSoftCooldown Ticks = 2 * BalanceScale
	dodgeHardCooldown Ticks = 6 * BalanceScale
)

// DodgeType is the kind of attack an agent has chosen to dodge.
type DodgeType uint8

const (
	DodgeUnknown DodgeType = iota
	DodgeMelee
	DodgeRanged
	DodgeCharge
	DodgeUpset
)

// DodgeState tracks the cooldown between dodges.
type DodgeState struct {
	Type     DodgeType
	cooldown Ticks // 0 when ready
}

// Wait counts the cooldown down.
func (s *DodgeState) Wait(d Ticks) {
	if s.cooldown > d {
		s.cooldown -= d
	} else {
		s.cooldown = 0
	}
}

// RegisterHit starts the short cooldown after taking a hit while ready.
func (s *DodgeState) RegisterHit() {
	if s.cooldown == 0 {
		s.cooldown = dodgeSoftCooldown
	}
}

// RegisterDodge starts the full cooldown after a dodge.
func (s *DodgeState) RegisterDodge() { s.cooldown = dodgeHardCooldown }

// CanDodge reports whether a dodge is ready now.
func (s *DodgeState) CanDodge() bool { return s.cooldown == 0 }

// CanDodgeAt reports whether a dodge will be ready within qeb seconds.
func (s *DodgeState) CanDodgeAt(qeb float64) bool {
	return s.cooldown == 0 || s.cooldown < Seconds(qeb)
}

// Cooldown returns the time until the next dodge.
func (s *DodgeState) Cooldown() Ticks { return s.cooldown }
