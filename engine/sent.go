package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// Hint kinds recorded from our own commands.
const (
	hintSuggestion   = "suggestion"
	hintFlay         = "flay"
	hintCalledVenoms = "called_venoms"
	hintDiagnoseTime = "diagnose_time"
	hintSnap         = "snap"
)

var (
	sentSuggestion = regexp.MustCompile(`suggest (\w+) ([^;%]+)`)
	sentFlay       = regexp.MustCompile(`flay (\w+)($|;;| (\w+) ?(\w+)?$)`)
	sentVenoms     = regexp.MustCompile(`^(?:dstab|doublestab|slit) (\w+) (\w+)(?:,? (\w+))?`)
	sentDiagnose   = regexp.MustCompile(`^(?:diagnose|diag)(?: (\w+))?$`)
	sentSnap       = regexp.MustCompile(`(?i)^snap (\w+)$`)

	suggestAction  = regexp.MustCompile(`action (.*)`)
	suggestTrigger = regexp.MustCompile(`trigger (.*)`)
)

// handleSent records what our commands imply about upcoming lines: queued
// suggestions, flay targets, snap targets, the venoms on our weapons and
// when we last asked for a diagnose.
func (s *TimelineState) handleSent(command string) {
	for _, cmd := range strings.Split(command, ";;") {
		cmd = strings.TrimSpace(cmd)
		if m := sentSuggestion.FindStringSubmatch(cmd); m != nil {
			s.AddPlayerHint(m[1], hintSuggestion, strings.ToLower(m[2]))
		}
		if m := sentFlay.FindStringSubmatch(cmd); m != nil {
			s.AddPlayerHint(m[1], hintFlay, m[0])
		}
		if m := sentVenoms.FindStringSubmatch(cmd); m != nil && s.me != "" {
			venoms := m[2]
			if m[3] != "" {
				venoms += " " + m[3]
			}
			s.AddPlayerHint(s.me, hintCalledVenoms, venoms)
		}
		if m := sentDiagnose.FindStringSubmatch(strings.ToLower(cmd)); m != nil {
			who := s.me
			if m[1] != "" && m[1] != "me" {
				who = m[1]
			}
			s.AddPlayerHint(who, hintDiagnoseTime, strconv.FormatInt(s.time, 10))
		}
		if m := sentSnap.FindStringSubmatch(cmd); m != nil && s.me != "" {
			s.AddPlayerHint(s.me, hintSnap, m[1])
		}
	}
}

// inferSuggestion reads the suggestion we sent to name, defaulting to
// impatience.
func (s *TimelineState) inferSuggestion(name string) agent.Hypnosis {
	hint, ok := s.PlayerHint(name, hintSuggestion)
	if !ok {
		return agent.Hypnosis{Kind: agent.HypnosisAff, Aff: agent.Impatience}
	}
	if m := suggestAction.FindStringSubmatch(hint); m != nil {
		return agent.Hypnosis{Kind: agent.HypnosisAction, Action: m[1]}
	}
	if m := suggestTrigger.FindStringSubmatch(hint); m != nil {
		return agent.Hypnosis{Kind: agent.HypnosisTrigger, Action: m[1]}
	}
	switch hint {
	case "bulimia":
		return agent.Hypnosis{Kind: agent.HypnosisBulimia}
	case "eradicate":
		return agent.Hypnosis{Kind: agent.HypnosisEradicate}
	}
	if f, ok := agent.FlagFromName(hint); ok {
		return agent.Hypnosis{Kind: agent.HypnosisAff, Aff: f}
	}
	return agent.Hypnosis{Kind: agent.HypnosisAff, Aff: agent.Impatience}
}

// flayTarget returns the defence our last flay command against name
// aimed at, if it named one.
func (s *TimelineState) flayTarget(name string) (agent.Flag, bool) {
	hint, ok := s.PlayerHint(name, hintFlay)
	if !ok {
		return agent.Dead, false
	}
	m := sentFlay.FindStringSubmatch(hint)
	if m == nil || m[3] == "" {
		return agent.Dead, false
	}
	if f, ok := s.rules.FlayDefence(m[3]); ok {
		return f, true
	}
	return agent.Rebounding, true
}

// calledVenoms splits a venom hint into at most two venoms.
func calledVenoms(hint string) []string {
	fields := strings.FieldsFunc(hint, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return fields
}
