package agent

import "strings"

// WieldState tracks what an agent holds. A two-handed item fills both hands.
type WieldState struct {
	TwoHanded bool
	Left      string // "" for an empty hand
	Right     string
	Both      string // TwoHanded only
}

// LeftItem returns the item in the left hand.
func (w *WieldState) LeftItem() (string, bool) {
	if w.TwoHanded {
		return w.Both, true
	}
	return w.Left, w.Left != ""
}

// RightItem returns the item in the right hand.
func (w *WieldState) RightItem() (string, bool) {
	if w.TwoHanded {
		return w.Both, true
	}
	return w.Right, w.Right != ""
}

// IsWielding reports whether either hand holds an item containing substr.
func (w *WieldState) IsWielding(substr string) bool {
	return w.IsWieldingLeft(substr) || w.IsWieldingRight(substr)
}

func (w *WieldState) IsWieldingLeft(substr string) bool {
	item, ok := w.LeftItem()
	return ok && strings.Contains(item, substr)
}

func (w *WieldState) IsWieldingRight(substr string) bool {
	item, ok := w.RightItem()
	return ok && strings.Contains(item, substr)
}

// EmptyHand reports whether at least one hand is free.
func (w *WieldState) EmptyHand() bool {
	_, l := w.LeftItem()
	_, r := w.RightItem()
	return !l || !r
}

// HandsEmpty reports whether each requested hand is free.
func (w *WieldState) HandsEmpty(left, right bool) bool {
	if _, ok := w.LeftItem(); left && ok {
		return false
	}
	if _, ok := w.RightItem(); right && ok {
		return false
	}
	return true
}

// Wield puts items in hands; an empty name leaves that hand as it was,
// except that a two-handed grip is always released.
func (w *WieldState) Wield(left, right string) {
	if w.TwoHanded {
		*w = WieldState{Left: left, Right: right}
		return
	}
	if left != "" {
		w.Left = left
	}
	if right != "" {
		w.Right = right
	}
}

// Unwield empties the requested hands. A two-handed item leaves both.
func (w *WieldState) Unwield(left, right bool) {
	if w.TwoHanded {
		*w = WieldState{}
		return
	}
	if left {
		w.Left = ""
	}
	if right {
		w.Right = ""
	}
}

// WieldTwoHands grips one item in both hands.
func (w *WieldState) WieldTwoHands(what string) { *w = WieldState{TwoHanded: true, Both: what} }

// Weave conjures an item into the left hand if it is free, else the right.
func (w *WieldState) Weave(item string) {
	if w.TwoHanded {
		*w = WieldState{Left: item}
		return
	}
	if w.Left == "" {
		w.Left = item
	} else {
		w.Right = item
	}
}

// Unweave removes the first held item matching pred, left hand first.
func (w *WieldState) Unweave(pred func(string) bool) {
	switch {
	case w.TwoHanded:
		if pred(w.Both) {
			*w = WieldState{}
		}
	case w.Left != "" && pred(w.Left):
		w.Left = ""
	case w.Right != "" && pred(w.Right):
		w.Right = ""
	}
}
