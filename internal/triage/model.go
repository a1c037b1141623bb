package triage

import "time"

// Level is the acuity classification, "1" is most severe and "5" least.
type Level string

const (
	// LevelImmediate means life-threatening, physician now
	LevelImmediate Level = "1"

	// LevelVeryUrgent means assessment within 10 minutes
	LevelVeryUrgent Level = "2"

	// LevelUrgent means assessment within 30 minutes
	LevelUrgent Level = "3"

	// LevelSemiUrgent means assessment within 1 hour
	LevelSemiUrgent Level = "4"

	// LevelNonUrgent means routine assessment
	LevelNonUrgent Level = "5"
)

// defaultWaitMinutes is returned for levels outside the table.
const defaultWaitMinutes = 60

var waitMinutes = map[Level]int{
	LevelImmediate:  0,
	LevelVeryUrgent: 10,
	LevelUrgent:     30,
	LevelSemiUrgent: 60,
	LevelNonUrgent:  120,
}

// WaitTime returns the estimated wait in minutes for a level.
func WaitTime(l Level) int {
	if m, ok := waitMinutes[l]; ok {
		return m
	}
	return defaultWaitMinutes
}

// Path is the decision branch chosen for an assessment.
type Path string

const (
	// PathVitals classifies on measured vital-sign thresholds only.
	PathVitals Path = "vitals"

	// PathComplaint classifies on chief-complaint keywords only.
	PathComplaint Path = "complaint"
)

// Consciousness is the observed responsiveness of the patient.
// The empty value means not assessed.
type Consciousness string

const (
	ConsciousnessAlert        Consciousness = "alert"
	ConsciousnessConfused     Consciousness = "confused"
	ConsciousnessUnresponsive Consciousness = "unresponsive"
)

// BloodPressure in mmHg.
type BloodPressure struct {
	Systolic  *int `json:"systolic,omitempty" validate:"omitempty,min=0"`
	Diastolic *int `json:"diastolic,omitempty" validate:"omitempty,min=0"`
}

// VitalSigns is a partial set of measurements. A nil field was not
// measured, which is different from a measured zero.
type VitalSigns struct {
	HeartRate        *int           `json:"heartRate" validate:"omitempty,min=0"`
	RespiratoryRate  *int           `json:"respiratoryRate" validate:"omitempty,min=0"`
	OxygenSaturation *float64       `json:"oxygenSaturation" validate:"omitempty,min=0,max=100"`
	BloodPressure    *BloodPressure `json:"bloodPressure"`
	Temperature      *float64       `json:"temperature"`
	Consciousness    Consciousness  `json:"consciousness,omitempty"`
	PainLevel        *int           `json:"painLevel" validate:"omitempty,min=0,max=10"`

	// Source and Confidence describe where the record came from and are
	// never used for classification.
	Source     string   `json:"source,omitempty"`
	Confidence *float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
}

// Systolic returns the systolic pressure, or nil when no blood pressure was taken.
func (v *VitalSigns) Systolic() *int {
	if v.BloodPressure == nil {
		return nil
	}
	return v.BloodPressure.Systolic
}

// Measured reports whether at least one clinical field is present.
func (v *VitalSigns) Measured() bool {
	if v == nil {
		return false
	}
	return v.HeartRate != nil ||
		v.RespiratoryRate != nil ||
		v.OxygenSaturation != nil ||
		v.Systolic() != nil ||
		(v.BloodPressure != nil && v.BloodPressure.Diastolic != nil) ||
		v.Temperature != nil ||
		v.Consciousness != "" ||
		v.PainLevel != nil
}

// Input is everything the engine looks at for one assessment.
type Input struct {
	ChiefComplaint  string
	AdditionalNotes string
	VitalSigns      *VitalSigns
}

// Assessment is the engine output, serialized as-is on the wire.
type Assessment struct {
	Level             Level    `json:"level"`
	PriorityScore     int      `json:"priorityScore"`
	Notes             string   `json:"notes"`
	Recommendations   []string `json:"recommendations"`
	EstimatedWaitTime int      `json:"estimatedWaitTime"`
}

// Result wraps an assessment with request-scoped metadata. It lives for
// one request and is never stored.
type Result struct {
	ID             string
	Path           Path
	ChiefComplaint string
	Assessment     Assessment
	CreatedAt      time.Time
	Duration       float64
}

// clone returns a copy that shares no mutable state with r.
func (r *Result) clone() *Result {
	c := *r
	c.Assessment.Recommendations = append([]string(nil), r.Assessment.Recommendations...)
	return &c
}
