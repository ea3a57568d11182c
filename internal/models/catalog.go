package models

import (
	"time"
)

// Symptom represents a clinical symptom in the catalog
type Symptom struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
	Severity string `json:"severity" db:"severity"` // "normal", "high", "emergency"
	IsActive bool   `json:"is_active" db:"is_active"`
}

// Disease represents a diagnosable condition in the catalog
type Disease struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Category    string    `json:"category" db:"category"`
	Severity    string    `json:"severity" db:"severity"`
	Description string    `json:"description" db:"description"`
	Prevalence  float64   `json:"prevalence" db:"prevalence"` // population percentage, 0-100
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DiseaseSymptom represents the association between a disease and one of its
// symptoms, carrying the per-pair probability and the primary-indicator flag
type DiseaseSymptom struct {
	DiseaseID   int64   `json:"disease_id" db:"disease_id"`
	SymptomID   int64   `json:"symptom_id" db:"symptom_id"`
	SymptomName string  `json:"symptom_name" db:"symptom_name"`
	Probability float64 `json:"probability" db:"probability"` // 0-100
	IsPrimary   bool    `json:"is_primary" db:"is_primary"`
}

// Treatment represents a treatment recommendation for a disease
type Treatment struct {
	ID          int64  `json:"id" db:"id"`
	DiseaseID   int64  `json:"disease_id" db:"disease_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Priority    string `json:"priority" db:"priority"` // "immediate", "high", "medium", "low"
}

// DiseaseCandidate is the aggregated result of matching a symptom set against
// the disease catalog, before confidence scoring
type DiseaseCandidate struct {
	Disease         Disease `json:"disease"`
	MatchedSymptoms int     `json:"matched_symptoms"`
	AvgProbability  float64 `json:"avg_probability"`
	PrimaryMatches  int     `json:"primary_matches"`
}
