package agent

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// AppendCanonical appends a byte encoding of every field of the state.
// Two states encode identically exactly when they are equal.
func (s *AgentState) AppendCanonical(b []byte) []byte {
	le := binary.LittleEndian
	for _, v := range s.balances {
		b = le.AppendUint32(b, uint32(v))
	}
	for i := range s.stats {
		b = le.AppendUint32(b, uint32(s.stats[i]))
		b = le.AppendUint32(b, uint32(s.maxStats[i]))
	}
	for _, w := range s.Flags.bits {
		b = le.AppendUint64(b, w)
	}
	b = append(b, s.Flags.counters[:]...)

	for _, r := range s.Limbs.Limbs {
		b = le.AppendUint32(b, uint32(r.Damage))
		b = append(b, boolByte(r.Crippled), boolByte(r.Broken), boolByte(r.Mangled), boolByte(r.Amputated), boolByte(r.Welt))
	}
	b = appendLimbPtr(b, s.Limbs.Restoring)
	b = appendTimer(b, s.Limbs.RestoreTimer)
	b = le.AppendUint32(b, uint32(s.Limbs.FleshbanedCount))
	b = append(b, boolByte(s.Limbs.Regenerating), boolByte(s.Limbs.FirstPersonRestore))

	b = append(b, byte(s.Hypno.phase))
	b = le.AppendUint32(b, uint32(s.Hypno.timer))
	b = le.AppendUint32(b, uint32(len(s.Hypno.queue)))
	for _, h := range s.Hypno.queue {
		b = append(b, byte(h.Kind))
		b = le.AppendUint16(b, uint16(h.Aff))
		b = appendString(b, h.Action)
	}

	c := &s.Class
	b = append(b, byte(c.kind), byte(c.other))
	b = append(b, byte(c.zealot.Zenith.Phase))
	b = le.AppendUint32(b, uint32(c.zealot.Zenith.Timer))
	b = append(b, boolByte(c.zealot.Pyromania.active))
	b = le.AppendUint32(b, uint32(c.zealot.Pyromania.remaining))
	b = append(b, byte(c.monk.Stance))
	b = le.AppendUint32(b, uint32(c.monk.Kai))
	for _, h := range c.shifter.Howls {
		b = appendString(b, h)
	}
	b = le.AppendUint32(b, uint32(c.shifter.TimeSince))

	b = append(b, boolByte(s.Relapses.entries != nil))
	b = le.AppendUint32(b, uint32(len(s.Relapses.entries)))
	for _, e := range s.Relapses.entries {
		b = le.AppendUint32(b, uint32(e.Age))
		b = appendString(b, e.Venom)
	}

	b = append(b, boolByte(s.Wield.TwoHanded))
	b = appendString(b, s.Wield.Left)
	b = appendString(b, s.Wield.Right)
	b = appendString(b, s.Wield.Both)

	b = append(b, byte(s.Dodge.Type))
	b = le.AppendUint32(b, uint32(s.Dodge.cooldown))
	b = append(b, byte(s.Channel.Kind), byte(s.Channel.Limb))
	b = appendTimer(b, s.Channel.Timer)

	b = append(b, s.Hidden.unknown)
	for _, w := range s.Hidden.guessed.bits {
		b = le.AppendUint64(b, w)
	}
	b = append(b, s.Hidden.guessed.counters[:]...)

	br := s.Branch
	b = append(b, boolByte(br.branched))
	b = le.AppendUint64(b, uint64(br.forkTime))
	b = le.AppendUint32(b, br.strikes)
	b = le.AppendUint32(b, br.points)

	for _, p := range s.Pipes.pipes {
		b = append(b, byte(p.Knowledge))
		b = le.AppendUint32(b, uint32(p.Puffs))
		b = append(b, boolByte(p.Pipe.Artifact))
		b = le.AppendUint32(b, uint32(p.Pipe.Lit))
		b = le.AppendUint64(b, uint64(p.Pipe.ID))
		b = le.AppendUint32(b, uint32(p.Pipe.Puffs))
	}

	b = le.AppendUint32(b, uint32(s.Aggro.timer))
	b = le.AppendUint32(b, uint32(s.Aggro.latest))
	b = le.AppendUint32(b, uint32(s.Aggro.oldest))

	b = appendLimbPtr(b, s.parrying)
	b = le.AppendUint64(b, uint64(s.RoomID))
	b = append(b, byte(s.Elevation))
	return b
}

// Fingerprint hashes the canonical encoding.
func (s *AgentState) Fingerprint() uint64 {
	return xxhash.Sum64(s.AppendCanonical(make([]byte, 0, 1024)))
}

// Equal reports whether two states are identical in every field.
func (s *AgentState) Equal(o *AgentState) bool {
	return bytes.Equal(s.AppendCanonical(nil), o.AppendCanonical(nil))
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

func appendLimbPtr(b []byte, l *Limb) []byte {
	if l == nil {
		return append(b, 0xff)
	}
	return append(b, byte(*l))
}

func appendTimer(b []byte, t Timer) []byte {
	le := binary.LittleEndian
	b = append(b, boolByte(t.CountUp))
	b = le.AppendUint32(b, uint32(t.Remaining))
	b = le.AppendUint32(b, uint32(t.ExpireAt))
	b = le.AppendUint32(b, uint32(t.UpTo))
	return le.AppendUint32(b, uint32(t.Progress))
}
