package agent

// ChannelKind names a channelled ability.
type ChannelKind uint8

const (
	ChannelInactive ChannelKind = iota
	ChannelHeelrush
	ChannelDireblow
)

// ChannelState is an ability being channelled over several seconds.
type ChannelState struct {
	Kind  ChannelKind
	Limb  Limb // Heelrush target
	Timer Timer
}

// Heelrush starts a heelrush channel at a limb.
func Heelrush(limb Limb, t Timer) ChannelState {
	return ChannelState{Kind: ChannelHeelrush, Limb: limb, Timer: t}
}

// Direblow starts a direblow channel.
func Direblow(t Timer) ChannelState { return ChannelState{Kind: ChannelDireblow, Timer: t} }

// Active reports whether a channel is running.
func (c *ChannelState) Active() bool { return c.Kind != ChannelInactive }

// Wait advances the channel, ending it in the same call once it runs out.
func (c *ChannelState) Wait(d Ticks) {
	if c.Kind == ChannelInactive {
		return
	}
	c.Timer.Wait(d)
	if !c.Timer.Active() {
		*c = ChannelState{}
	}
}
