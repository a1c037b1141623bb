// internal/triage/engine.go
package triage

import (
	"fmt"
	"strings"
)

// tier is one row of the vital-signs decision table. Level and score live
// on the same row so a match always assigns both.
type tier struct {
	level           Level
	score           int
	recommendations []string
	match           func(v *VitalSigns) bool
}

// vitalTiers is ordered most severe first; the first matching tier wins.
var vitalTiers = []tier{
	{
		level: LevelImmediate,
		score: 100,
		recommendations: []string{
			"Immediate physician assessment required",
			"Prepare resuscitation equipment",
			"Continuous monitoring essential",
		},
		match: func(v *VitalSigns) bool {
			return outside(v.HeartRate, 40, 150) ||
				outside(v.RespiratoryRate, 8, 30) ||
				below(v.OxygenSaturation, 90) ||
				below(v.Systolic(), 80) ||
				v.Consciousness == ConsciousnessUnresponsive
		},
	},
	{
		level: LevelVeryUrgent,
		score: 80,
		recommendations: []string{
			"Urgent assessment within 10 minutes",
			"Monitor vital signs closely",
		},
		match: func(v *VitalSigns) bool {
			return outside(v.HeartRate, 50, 120) ||
				outside(v.RespiratoryRate, 12, 24) ||
				below(v.OxygenSaturation, 94) ||
				below(v.Systolic(), 100) ||
				v.Consciousness == ConsciousnessConfused ||
				atLeast(v.PainLevel, 8)
		},
	},
	{
		level: LevelUrgent,
		score: 60,
		recommendations: []string{
			"Assessment within 30 minutes",
			"Standard monitoring",
		},
		match: func(v *VitalSigns) bool {
			return outside(v.HeartRate, 60, 100) ||
				outside(v.RespiratoryRate, 14, 20) ||
				below(v.OxygenSaturation, 96) ||
				atLeast(v.PainLevel, 5)
		},
	},
	{
		level:           LevelSemiUrgent,
		score:           40,
		recommendations: []string{"Assessment within 1 hour"},
		match: func(v *VitalSigns) bool {
			return atLeast(v.PainLevel, 3) || above(v.Temperature, 38.5)
		},
	},
}

var vitalDefault = tier{
	level:           LevelNonUrgent,
	score:           20,
	recommendations: []string{"Routine assessment"},
}

// keywordTier is one row of the complaint decision table.
type keywordTier struct {
	level           Level
	score           int
	recommendations []string
	keywords        []string
}

// complaintTiers is checked in order; critical precedes urgent.
var complaintTiers = []keywordTier{
	{
		level: LevelVeryUrgent,
		score: 75,
		recommendations: []string{
			"Urgent assessment - collect vital signs immediately",
			"Monitor for deterioration",
		},
		keywords: []string{
			"chest pain", "heart attack", "cardiac arrest", "unconscious",
			"not breathing", "severe bleeding", "stroke", "seizure",
			"severe trauma", "anaphylaxis",
		},
	},
	{
		level: LevelUrgent,
		score: 55,
		recommendations: []string{
			"Standard assessment - collect vital signs",
			"Monitor symptoms",
		},
		keywords: []string{
			"difficulty breathing", "severe pain", "high fever",
			"abdominal pain", "head injury", "fracture",
		},
	},
}

var complaintDefault = keywordTier{
	level:           LevelSemiUrgent,
	score:           35,
	recommendations: []string{"Routine assessment"},
}

// Engine is the rule-based triage decision table. It holds no state and
// is safe for concurrent use.
type Engine struct{}

// NewEngine returns a triage engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SelectPath picks the decision branch. Vitals win whenever at least one
// clinical field was measured; an empty or all-null record counts as absent.
func SelectPath(v *VitalSigns) Path {
	if v.Measured() {
		return PathVitals
	}
	return PathComplaint
}

// Assess classifies the input. It never fails.
func (e *Engine) Assess(in *Input) Assessment {
	path := SelectPath(in.VitalSigns)

	var (
		level Level
		score int
		recs  []string
	)
	switch path {
	case PathVitals:
		t := classifyVitals(in.VitalSigns)
		level, score, recs = t.level, t.score, t.recommendations
	default:
		t := classifyComplaint(in.ChiefComplaint)
		level, score, recs = t.level, t.score, t.recommendations
	}

	return Assessment{
		Level:             level,
		PriorityScore:     score,
		Notes:             buildNotes(path, in.ChiefComplaint, in.AdditionalNotes),
		Recommendations:   append([]string(nil), recs...),
		EstimatedWaitTime: WaitTime(level),
	}
}

func classifyVitals(v *VitalSigns) tier {
	for _, t := range vitalTiers {
		if t.match(v) {
			return t
		}
	}
	return vitalDefault
}

func classifyComplaint(complaint string) keywordTier {
	c := strings.ToLower(complaint)
	for _, t := range complaintTiers {
		if containsAny(c, t.keywords) {
			return t
		}
	}
	return complaintDefault
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func buildNotes(path Path, complaint, additional string) string {
	basis := ""
	if path == PathVitals {
		basis = "vital signs and "
	}
	notes := fmt.Sprintf("Triage assessment based on %schief complaint: %s", basis, complaint)
	if additional != "" {
		notes += "\nAdditional notes: " + additional
	}
	return notes
}

type number interface {
	~int | ~float64
}

// below, above, atLeast and outside treat a nil measurement as no match.

func below[T number](p *T, limit T) bool {
	return p != nil && *p < limit
}

func above[T number](p *T, limit T) bool {
	return p != nil && *p > limit
}

func atLeast[T number](p *T, limit T) bool {
	return p != nil && *p >= limit
}

func outside[T number](p *T, low, high T) bool {
	return p != nil && (*p < low || *p > high)
}
