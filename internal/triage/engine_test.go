package triage

import (
	"encoding/json"
	"strings"
	"testing"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func assess(complaint string, vs *VitalSigns) Assessment {
	return NewEngine().Assess(&Input{ChiefComplaint: complaint, VitalSigns: vs})
}

func TestAssess_NoMeasuredFields_ComplaintPath(t *testing.T) {
	t.Parallel()

	a := assess("patient has chest pain", &VitalSigns{})
	if a.Level != LevelVeryUrgent || a.PriorityScore != 75 {
		t.Errorf("empty vitals + chest pain = (%s, %d), want (2, 75)", a.Level, a.PriorityScore)
	}
	if strings.Contains(a.Notes, "vital signs") {
		t.Errorf("notes = %q, should not mention vital signs on complaint path", a.Notes)
	}
}

func TestAssess_AllAbsentVitals_NoKeywords(t *testing.T) {
	t.Parallel()

	// source and confidence are not measurements
	a := assess("feeling tired", &VitalSigns{Source: "video", Confidence: floatp(0.7)})
	if a.Level != LevelSemiUrgent || a.PriorityScore != 35 {
		t.Errorf("got (%s, %d), want (4, 35)", a.Level, a.PriorityScore)
	}
}

func TestAssess_PainZero_VitalsPathIgnoresComplaint(t *testing.T) {
	t.Parallel()

	a := assess("patient has chest pain", &VitalSigns{PainLevel: intp(0)})
	if a.Level != LevelNonUrgent || a.PriorityScore != 20 {
		t.Errorf("painLevel 0 + chest pain = (%s, %d), want (5, 20)", a.Level, a.PriorityScore)
	}
	if !strings.HasPrefix(a.Notes, "Triage assessment based on vital signs and chief complaint: ") {
		t.Errorf("notes = %q, want vitals prefix", a.Notes)
	}
}

func TestAssess_NormalVitals_Default(t *testing.T) {
	t.Parallel()

	a := assess("check-up", &VitalSigns{
		HeartRate:        intp(72),
		RespiratoryRate:  intp(16),
		OxygenSaturation: floatp(98),
		BloodPressure:    &BloodPressure{Systolic: intp(120), Diastolic: intp(80)},
		Temperature:      floatp(36.8),
		Consciousness:    ConsciousnessAlert,
		PainLevel:        intp(1),
	})
	if a.Level != LevelNonUrgent || a.PriorityScore != 20 {
		t.Errorf("got (%s, %d), want (5, 20)", a.Level, a.PriorityScore)
	}
	if len(a.Recommendations) != 1 || a.Recommendations[0] != "Routine assessment" {
		t.Errorf("recommendations = %v", a.Recommendations)
	}
	if a.EstimatedWaitTime != 120 {
		t.Errorf("wait = %d, want 120", a.EstimatedWaitTime)
	}
}

func TestAssess_VitalTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		vs        *VitalSigns
		wantLevel Level
		wantScore int
	}{
		// tier 1
		{"hr 35", &VitalSigns{HeartRate: intp(35)}, LevelImmediate, 100},
		{"hr 0 is measured", &VitalSigns{HeartRate: intp(0)}, LevelImmediate, 100},
		{"hr 151", &VitalSigns{HeartRate: intp(151)}, LevelImmediate, 100},
		{"hr 150 not tier 1", &VitalSigns{HeartRate: intp(150)}, LevelVeryUrgent, 80},
		{"hr 40 not tier 1", &VitalSigns{HeartRate: intp(40)}, LevelVeryUrgent, 80},
		{"rr 7", &VitalSigns{RespiratoryRate: intp(7)}, LevelImmediate, 100},
		{"rr 31", &VitalSigns{RespiratoryRate: intp(31)}, LevelImmediate, 100},
		{"spo2 89.5", &VitalSigns{OxygenSaturation: floatp(89.5)}, LevelImmediate, 100},
		{"systolic 79", &VitalSigns{BloodPressure: &BloodPressure{Systolic: intp(79)}}, LevelImmediate, 100},
		{"unresponsive", &VitalSigns{Consciousness: ConsciousnessUnresponsive}, LevelImmediate, 100},
		{"hr 35 beats pain 9", &VitalSigns{HeartRate: intp(35), PainLevel: intp(9)}, LevelImmediate, 100},

		// tier 2
		{"hr 121", &VitalSigns{HeartRate: intp(121)}, LevelVeryUrgent, 80},
		{"hr 49", &VitalSigns{HeartRate: intp(49)}, LevelVeryUrgent, 80},
		{"rr 25", &VitalSigns{RespiratoryRate: intp(25)}, LevelVeryUrgent, 80},
		{"rr 11", &VitalSigns{RespiratoryRate: intp(11)}, LevelVeryUrgent, 80},
		{"spo2 93", &VitalSigns{OxygenSaturation: floatp(93)}, LevelVeryUrgent, 80},
		{"systolic 99", &VitalSigns{BloodPressure: &BloodPressure{Systolic: intp(99)}}, LevelVeryUrgent, 80},
		{"confused", &VitalSigns{Consciousness: ConsciousnessConfused}, LevelVeryUrgent, 80},
		{"pain 8", &VitalSigns{PainLevel: intp(8)}, LevelVeryUrgent, 80},

		// tier 3
		{"hr 120 falls to tier 3", &VitalSigns{HeartRate: intp(120)}, LevelUrgent, 60},
		{"hr 110", &VitalSigns{HeartRate: intp(110)}, LevelUrgent, 60},
		{"hr 59", &VitalSigns{HeartRate: intp(59)}, LevelUrgent, 60},
		{"rr 21", &VitalSigns{RespiratoryRate: intp(21)}, LevelUrgent, 60},
		{"rr 13", &VitalSigns{RespiratoryRate: intp(13)}, LevelUrgent, 60},
		{"spo2 95", &VitalSigns{OxygenSaturation: floatp(95)}, LevelUrgent, 60},
		{"pain 5", &VitalSigns{PainLevel: intp(5)}, LevelUrgent, 60},
		{"pain 7", &VitalSigns{PainLevel: intp(7)}, LevelUrgent, 60},

		// tier 4
		{"pain 3", &VitalSigns{PainLevel: intp(3)}, LevelSemiUrgent, 40},
		{"temp 38.6", &VitalSigns{Temperature: floatp(38.6)}, LevelSemiUrgent, 40},

		// default
		{"hr 100", &VitalSigns{HeartRate: intp(100)}, LevelNonUrgent, 20},
		{"hr 60", &VitalSigns{HeartRate: intp(60)}, LevelNonUrgent, 20},
		{"spo2 96", &VitalSigns{OxygenSaturation: floatp(96)}, LevelNonUrgent, 20},
		{"temp 38.5", &VitalSigns{Temperature: floatp(38.5)}, LevelNonUrgent, 20},
		{"pain 2", &VitalSigns{PainLevel: intp(2)}, LevelNonUrgent, 20},
		{"alert", &VitalSigns{Consciousness: ConsciousnessAlert}, LevelNonUrgent, 20},
		{"other consciousness", &VitalSigns{Consciousness: "drowsy"}, LevelNonUrgent, 20},
		{"diastolic only", &VitalSigns{BloodPressure: &BloodPressure{Diastolic: intp(40)}}, LevelNonUrgent, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := assess("chest pain", tt.vs)
			if a.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", a.Level, tt.wantLevel)
			}
			if a.PriorityScore != tt.wantScore {
				t.Errorf("priority score = %d, want %d", a.PriorityScore, tt.wantScore)
			}
			if a.EstimatedWaitTime != WaitTime(tt.wantLevel) {
				t.Errorf("wait = %d, want %d", a.EstimatedWaitTime, WaitTime(tt.wantLevel))
			}
		})
	}
}

func TestAssess_TierRecommendations(t *testing.T) {
	t.Parallel()

	a := assess("x", &VitalSigns{HeartRate: intp(35)})
	want := []string{
		"Immediate physician assessment required",
		"Prepare resuscitation equipment",
		"Continuous monitoring essential",
	}
	if len(a.Recommendations) != len(want) {
		t.Fatalf("recommendations = %v, want %v", a.Recommendations, want)
	}
	for i := range want {
		if a.Recommendations[i] != want[i] {
			t.Errorf("recommendations[%d] = %q, want %q", i, a.Recommendations[i], want[i])
		}
	}
}

func TestAssess_RecommendationsNotShared(t *testing.T) {
	t.Parallel()

	a := assess("x", &VitalSigns{HeartRate: intp(35)})
	a.Recommendations[0] = "mutated"

	b := assess("x", &VitalSigns{HeartRate: intp(35)})
	if b.Recommendations[0] != "Immediate physician assessment required" {
		t.Errorf("decision table was mutated through a returned slice: %q", b.Recommendations[0])
	}
}

func TestAssess_ComplaintKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		complaint string
		wantLevel Level
		wantScore int
	}{
		{"Chest Pain radiating to arm", LevelVeryUrgent, 75},
		{"suspected HEART ATTACK", LevelVeryUrgent, 75},
		{"cardiac arrest on arrival", LevelVeryUrgent, 75},
		{"found unconscious", LevelVeryUrgent, 75},
		{"not breathing", LevelVeryUrgent, 75},
		{"severe bleeding from leg", LevelVeryUrgent, 75},
		{"possible stroke", LevelVeryUrgent, 75},
		{"had a seizure", LevelVeryUrgent, 75},
		{"severe trauma", LevelVeryUrgent, 75},
		{"anaphylaxis after bee sting", LevelVeryUrgent, 75},
		{"difficulty breathing", LevelUrgent, 55},
		{"severe pain in back", LevelUrgent, 55},
		{"high fever for 3 days", LevelUrgent, 55},
		{"abdominal pain", LevelUrgent, 55},
		{"head injury from fall", LevelUrgent, 55},
		{"wrist fracture", LevelUrgent, 55},
		// critical precedes urgent when both match
		{"severe pain and chest pain", LevelVeryUrgent, 75},
		{"sore throat", LevelSemiUrgent, 35},
		{"", LevelSemiUrgent, 35},
	}

	for _, tt := range tests {
		t.Run(tt.complaint, func(t *testing.T) {
			t.Parallel()
			a := assess(tt.complaint, nil)
			if a.Level != tt.wantLevel || a.PriorityScore != tt.wantScore {
				t.Errorf("assess(%q) = (%s, %d), want (%s, %d)", tt.complaint, a.Level, a.PriorityScore, tt.wantLevel, tt.wantScore)
			}
		})
	}
}

func TestAssess_Notes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			name: "complaint only",
			in:   Input{ChiefComplaint: "Sore throat"},
			want: "Triage assessment based on chief complaint: Sore throat",
		},
		{
			name: "with additional notes",
			in:   Input{ChiefComplaint: "Sore throat", AdditionalNotes: "since Monday"},
			want: "Triage assessment based on chief complaint: Sore throat\nAdditional notes: since Monday",
		},
		{
			name: "with vitals",
			in:   Input{ChiefComplaint: "Dizzy", VitalSigns: &VitalSigns{HeartRate: intp(80)}},
			want: "Triage assessment based on vital signs and chief complaint: Dizzy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := NewEngine().Assess(&tt.in)
			if a.Notes != tt.want {
				t.Errorf("notes = %q, want %q", a.Notes, tt.want)
			}
			if !strings.Contains(a.Notes, tt.in.ChiefComplaint) {
				t.Errorf("notes %q missing complaint %q", a.Notes, tt.in.ChiefComplaint)
			}
		})
	}
}

func TestWaitTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  int
	}{
		{LevelImmediate, 0},
		{LevelVeryUrgent, 10},
		{LevelUrgent, 30},
		{LevelSemiUrgent, 60},
		{LevelNonUrgent, 120},
		{"6", 60},
		{"", 60},
		{"critical", 60},
	}

	for _, tt := range tests {
		if got := WaitTime(tt.level); got != tt.want {
			t.Errorf("WaitTime(%q) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestAssess_UnmeasuredPayloads_ComplaintPath(t *testing.T) {
	t.Parallel()

	// present but carrying no measurement, these fall back to the complaint
	for _, body := range []string{
		`{"heartRate":null}`,
		`{"bloodPressure":{}}`,
		`{"source":"video","confidence":0.7}`,
	} {
		t.Run(body, func(t *testing.T) {
			t.Parallel()

			var vs VitalSigns
			if err := json.Unmarshal([]byte(body), &vs); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := SelectPath(&vs); got != PathComplaint {
				t.Errorf("SelectPath = %q, want %q", got, PathComplaint)
			}
			a := assess("chest pain", &vs)
			if a.Level != LevelVeryUrgent || a.PriorityScore != 75 {
				t.Errorf("got (%s, %d), want (2, 75)", a.Level, a.PriorityScore)
			}
		})
	}
}

func TestSelectPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vs   *VitalSigns
		want Path
	}{
		{"nil", nil, PathComplaint},
		{"empty", &VitalSigns{}, PathComplaint},
		{"empty blood pressure", &VitalSigns{BloodPressure: &BloodPressure{}}, PathComplaint},
		{"source only", &VitalSigns{Source: "manual"}, PathComplaint},
		{"pain zero", &VitalSigns{PainLevel: intp(0)}, PathVitals},
		{"consciousness", &VitalSigns{Consciousness: ConsciousnessAlert}, PathVitals},
		{"diastolic", &VitalSigns{BloodPressure: &BloodPressure{Diastolic: intp(70)}}, PathVitals},
		{"temperature", &VitalSigns{Temperature: floatp(37)}, PathVitals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SelectPath(tt.vs); got != tt.want {
				t.Errorf("SelectPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func FuzzAssess(f *testing.F) {
	f.Add("chest pain", 72, 16, 98.0, 120, 1, 36.8, true)
	f.Add("", 0, 0, 0.0, 0, 0, 0.0, false)
	f.Add("fracture", 200, 40, 50.0, 60, 10, 41.0, true)

	f.Fuzz(func(t *testing.T, complaint string, hr, rr int, spo2 float64, sys, pain int, temp float64, withVitals bool) {
		in := &Input{ChiefComplaint: complaint}
		if withVitals {
			in.VitalSigns = &VitalSigns{
				HeartRate:        &hr,
				RespiratoryRate:  &rr,
				OxygenSaturation: &spo2,
				BloodPressure:    &BloodPressure{Systolic: &sys},
				PainLevel:        &pain,
				Temperature:      &temp,
			}
		}
		a := NewEngine().Assess(in)

		var scores map[Level]int
		if withVitals {
			scores = map[Level]int{"1": 100, "2": 80, "3": 60, "4": 40, "5": 20}
		} else {
			scores = map[Level]int{"2": 75, "3": 55, "4": 35}
		}
		want, ok := scores[a.Level]
		if !ok {
			t.Fatalf("unexpected level %q for path (vitals=%v)", a.Level, withVitals)
		}
		if a.PriorityScore != want {
			t.Errorf("level %s score = %d, want %d", a.Level, a.PriorityScore, want)
		}
		if a.EstimatedWaitTime != WaitTime(a.Level) {
			t.Errorf("wait = %d, want %d", a.EstimatedWaitTime, WaitTime(a.Level))
		}
		if !strings.Contains(a.Notes, complaint) {
			t.Errorf("notes %q missing complaint", a.Notes)
		}
		if len(a.Recommendations) == 0 {
			t.Error("recommendations empty")
		}
	})
}
