package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountDownClampsAtZero(t *testing.T) {
	tm := CountDown(100)
	tm.Wait(40)
	assert.True(t, tm.Active())
	assert.Equal(t, Ticks(60), tm.TimeLeft())
	tm.Wait(150)
	assert.False(t, tm.Active())
	assert.Equal(t, Ticks(0), tm.TimeLeft())
}

// TestCountUpObserve verifies progress accrues until expiry and then stops.
func TestCountUpObserve(t *testing.T) {
	tm := CountUpObserve(300, 200)
	tm.Wait(150)
	assert.True(t, tm.Active())
	assert.False(t, tm.Finished())
	assert.Equal(t, Ticks(50), tm.TimeLeft())

	tm.Wait(100)
	assert.True(t, tm.Finished())
	assert.True(t, tm.Active())

	tm.Wait(100)
	assert.False(t, tm.Active())
	tm.Wait(100)
	assert.Equal(t, Ticks(350), tm.Elapsed())

	tm.Reset()
	assert.True(t, tm.Active())
	tm.Expire()
	assert.False(t, tm.Active())
}

func TestTimedFlagStateExpiresInSameWait(t *testing.T) {
	var s TimedFlagState
	s.Activate(100)
	s.Wait(60)
	assert.True(t, s.Active())
	assert.Equal(t, Ticks(40), s.Remaining())
	s.Wait(40)
	assert.False(t, s.Active())
}
