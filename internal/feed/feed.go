// Package feed reads and writes time slices in their JSON wire form.
//
// Each slice is one JSON object. Feeds are JSON lines: one slice per line,
// blank lines ignored. Every slice is checked against an embedded schema
// before it is converted, so a bad producer is reported as ErrSchema rather
// than as a confusing engine error.
package feed

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/seurimas/topper-public-sub002/engine"
)

// ErrSchema is wrapped by every schema violation.
var ErrSchema = errors.New("slice does not match schema")

//go:embed slice.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("slice.schema.json", schemaSource)

// WireSlice is the JSON form of engine.TimeSlice.
type WireSlice struct {
	ID           string            `json:"id,omitempty"`
	Time         int64             `json:"time"`
	Me           string            `json:"me,omitempty"`
	Observations []WireObservation `json:"observations"`
	Lines        []WireLine        `json:"lines,omitempty"`
	Prompt       WirePrompt        `json:"prompt"`
}

type WireObservation struct {
	Kind       string   `json:"kind"`
	Who        string   `json:"who,omitempty"`
	What       string   `json:"what,omitempty"`
	Caster     string   `json:"caster,omitempty"`
	Category   string   `json:"category,omitempty"`
	Skill      string   `json:"skill,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
	Target     string   `json:"target,omitempty"`
	Cure       string   `json:"cure,omitempty"`
	Location   string   `json:"location,omitempty"`
	Hand       string   `json:"hand,omitempty"`
	Left       string   `json:"left,omitempty"`
	Right      string   `json:"right,omitempty"`
	Value      float64  `json:"value,omitempty"`
	Args       []string `json:"args,omitempty"`
}

type WireLine struct {
	Text   string `json:"text"`
	Number uint32 `json:"number"`
}

type WirePrompt struct {
	Kind  string     `json:"kind"`
	Stats *WireStats `json:"stats,omitempty"`
}

type WireStats struct {
	Health      int32 `json:"health"`
	Mana        int32 `json:"mana"`
	SP          int32 `json:"sp"`
	Equilibrium bool  `json:"equilibrium"`
	Balance     bool  `json:"balance"`
	Shadow      bool  `json:"shadow"`
	Prone       bool  `json:"prone"`
}

// Decode reads a single slice from r.
func Decode(r io.Reader) (engine.TimeSlice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return engine.TimeSlice{}, fmt.Errorf("read slice: %w", err)
	}
	return DecodeLine(data)
}

// DecodeLine validates and converts one JSON slice.
func DecodeLine(data []byte) (engine.TimeSlice, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return engine.TimeSlice{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := schema.Validate(raw); err != nil {
		return engine.TimeSlice{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	var w WireSlice
	if err := json.Unmarshal(data, &w); err != nil {
		return engine.TimeSlice{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	slice, err := w.TimeSlice()
	if err != nil {
		return engine.TimeSlice{}, err
	}
	if err := slice.Validate(); err != nil {
		return engine.TimeSlice{}, err
	}
	return slice, nil
}

// TimeSlice converts the wire form. A missing id gets a fresh one.
func (w *WireSlice) TimeSlice() (engine.TimeSlice, error) {
	s := engine.TimeSlice{
		Time: w.Time,
		Me:   w.Me,
	}
	if w.ID == "" {
		s.ID = uuid.New()
	} else {
		id, err := uuid.Parse(w.ID)
		if err != nil {
			return engine.TimeSlice{}, fmt.Errorf("%w: id: %v", engine.ErrMalformedSlice, err)
		}
		s.ID = id
	}

	kind, ok := engine.PromptKindFromName(w.Prompt.Kind)
	if !ok {
		return engine.TimeSlice{}, fmt.Errorf("%w: unknown prompt %q", engine.ErrMalformedSlice, w.Prompt.Kind)
	}
	s.Prompt.Kind = kind
	if st := w.Prompt.Stats; st != nil {
		s.Prompt.Stats = engine.Vitals{
			Health:      st.Health,
			Mana:        st.Mana,
			SP:          st.SP,
			Equilibrium: st.Equilibrium,
			Balance:     st.Balance,
			Shadow:      st.Shadow,
			Prone:       st.Prone,
		}
	}

	s.Observations = make([]engine.Observation, len(w.Observations))
	for i, wo := range w.Observations {
		o, err := wo.observation()
		if err != nil {
			return engine.TimeSlice{}, fmt.Errorf("%w: observation %d: %v", engine.ErrMalformedSlice, i, err)
		}
		s.Observations[i] = o
	}
	for _, l := range w.Lines {
		s.Lines = append(s.Lines, engine.Line{Text: l.Text, Number: l.Number})
	}
	return s, nil
}

func (wo *WireObservation) observation() (engine.Observation, error) {
	kind, ok := engine.KindFromName(wo.Kind)
	if !ok {
		return engine.Observation{}, fmt.Errorf("unknown kind %q", wo.Kind)
	}
	o := engine.Observation{
		Kind:       kind,
		Who:        wo.Who,
		What:       wo.What,
		Caster:     wo.Caster,
		Category:   wo.Category,
		Skill:      wo.Skill,
		Annotation: wo.Annotation,
		Target:     wo.Target,
		Location:   wo.Location,
		Hand:       wo.Hand,
		Left:       wo.Left,
		Right:      wo.Right,
		Value:      wo.Value,
		Args:       wo.Args,
	}
	if wo.Cure != "" {
		c, ok := engine.CureTypeFromName(wo.Cure)
		if !ok {
			return engine.Observation{}, fmt.Errorf("unknown cure %q", wo.Cure)
		}
		o.Cure = c
	}
	return o, nil
}

// Wire converts a slice to its JSON form.
func Wire(s *engine.TimeSlice) WireSlice {
	w := WireSlice{
		Time:         s.Time,
		Me:           s.Me,
		Observations: make([]WireObservation, len(s.Observations)),
		Prompt:       WirePrompt{Kind: s.Prompt.Kind.String()},
	}
	if s.ID != uuid.Nil {
		w.ID = s.ID.String()
	}
	if s.Prompt.Kind == engine.PromptStats {
		st := s.Prompt.Stats
		w.Prompt.Stats = &WireStats{
			Health:      st.Health,
			Mana:        st.Mana,
			SP:          st.SP,
			Equilibrium: st.Equilibrium,
			Balance:     st.Balance,
			Shadow:      st.Shadow,
			Prone:       st.Prone,
		}
	}
	for i, o := range s.Observations {
		wo := WireObservation{
			Kind:       o.Kind.String(),
			Who:        o.Who,
			What:       o.What,
			Caster:     o.Caster,
			Category:   o.Category,
			Skill:      o.Skill,
			Annotation: o.Annotation,
			Target:     o.Target,
			Location:   o.Location,
			Hand:       o.Hand,
			Left:       o.Left,
			Right:      o.Right,
			Value:      o.Value,
			Args:       o.Args,
		}
		if o.Kind == engine.KindSimpleCure {
			wo.Cure = o.Cure.String()
		}
		w.Observations[i] = wo
	}
	for _, l := range s.Lines {
		w.Lines = append(w.Lines, WireLine{Text: l.Text, Number: l.Number})
	}
	return w
}

// Encode marshals a slice to a single JSON line without the trailing newline.
func Encode(s *engine.TimeSlice) ([]byte, error) {
	return json.Marshal(Wire(s))
}

// Scanner iterates a JSON lines feed.
type Scanner struct {
	sc    *bufio.Scanner
	line  int
	slice engine.TimeSlice
	err   error
}

const maxLine = 4 << 20

// NewScanner reads slices from r, one per line.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Scanner{sc: sc}
}

// Scan advances to the next slice. It returns false at the end of input or
// on the first bad line; Err tells which.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.sc.Scan() {
		s.line++
		data := s.sc.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		slice, err := DecodeLine(data)
		if err != nil {
			s.err = fmt.Errorf("line %d: %w", s.line, err)
			return false
		}
		s.slice = slice
		return true
	}
	s.err = s.sc.Err()
	return false
}

// Slice returns the slice read by the last successful Scan.
func (s *Scanner) Slice() engine.TimeSlice { return s.slice }

// Err returns the error that stopped Scan, if any.
func (s *Scanner) Err() error { return s.err }
