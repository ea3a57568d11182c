package models

import (
	"encoding/json"
	"time"
)

// VitalSigns is an optional partial set of measurements taken at scoring time.
// A nil field means the measurement was not taken and must not influence scoring.
type VitalSigns struct {
	Temperature      *float64 `json:"temperature,omitempty"`       // Celsius
	SystolicBP       *int     `json:"systolic_bp,omitempty"`       // mmHg
	DiastolicBP      *int     `json:"diastolic_bp,omitempty"`      // mmHg
	HeartRate        *int     `json:"heart_rate,omitempty"`        // bpm
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`  // breaths/min
	OxygenSaturation *float64 `json:"oxygen_saturation,omitempty"` // percent
}

// DiagnosisSuggestion is a single ranked candidate produced by the scoring engine
type DiagnosisSuggestion struct {
	Disease         Disease          `json:"disease"`
	Confidence      float64          `json:"confidence"` // 0-100, clamped
	MatchedSymptoms int              `json:"matched_symptoms"`
	TotalSymptoms   int              `json:"total_symptoms"`
	MatchPercentage float64          `json:"match_percentage"`
	SymptomProfile  []DiseaseSymptom `json:"symptom_profile"`
	Treatments      []Treatment      `json:"treatments"`
	IsRecurring     bool             `json:"is_recurring"`
	VitalAlerts     []string         `json:"vital_alerts,omitempty"`
}

// DiagnosisRecord is the immutable audit record persisted once a clinician
// reviews a set of suggestions
type DiagnosisRecord struct {
	ID                 string          `json:"id" db:"id"`
	PatientID          int64           `json:"patient_id" db:"patient_id"`
	ClinicianID        string          `json:"clinician_id" db:"clinician_id"`
	SymptomIDs         []int64         `json:"symptom_ids" db:"symptom_ids"`
	Vitals             *VitalSigns     `json:"vitals,omitempty" db:"vitals"`
	Suggestions        json.RawMessage `json:"suggestions" db:"suggestions"`
	ConfirmedDiagnosis string          `json:"confirmed_diagnosis" db:"confirmed_diagnosis"`
	WasAccurate        *bool           `json:"was_accurate,omitempty" db:"was_accurate"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// SimilarCase is a historical record scored against a query symptom set
type SimilarCase struct {
	Record     DiagnosisRecord `json:"record"`
	Similarity float64         `json:"similarity"` // Jaccard * 100
}

// DrugInteraction represents a known interaction between two drugs
type DrugInteraction struct {
	ID          int64  `json:"id" db:"id"`
	DrugA       string `json:"drug_a" db:"drug_a"`
	DrugB       string `json:"drug_b" db:"drug_b"`
	Severity    string `json:"severity" db:"severity"`
	Description string `json:"description" db:"description"`
}

// DiagnosisRequest represents the scoring request accepted by the API
type DiagnosisRequest struct {
	SymptomIDs []int64     `json:"symptom_ids" binding:"required"`
	Vitals     *VitalSigns `json:"vitals,omitempty"`
	PatientID  *int64      `json:"patient_id,omitempty"`
}

// ConfirmDiagnosisRequest records the clinician's final call on a suggestion set
type ConfirmDiagnosisRequest struct {
	ConfirmedDiagnosis string `json:"confirmed_diagnosis" binding:"required"`
	WasAccurate        *bool  `json:"was_accurate,omitempty"`
}
