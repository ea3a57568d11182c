package services

import (
	"fmt"
	"strings"

	"github.com/medisight/medisight-go/internal/models"
)

// vitalRule is one entry of the vital-sign boost table. A rule fires for a
// suggestion when its trigger holds for the measured vitals and the disease
// matches any of the listed name keywords, category keywords, or severities.
// A boost of 1.0 appends the alert without changing the score.
type vitalRule struct {
	name         string
	trigger      func(v *models.VitalSigns) bool
	alert        func(v *models.VitalSigns) string
	nameKeywords []string
	categories   []string
	severities   []string
	boost        float64
}

// The keyword lists are matched case-insensitively as substrings, mirroring
// the clinical screening rules this table encodes. Keep them in sync with the
// disease catalog's naming conventions.
var vitalRules = []vitalRule{
	{
		name:    "fever",
		trigger: func(v *models.VitalSigns) bool { return v.Temperature != nil && *v.Temperature > 38.0 },
		alert: func(v *models.VitalSigns) string {
			return fmt.Sprintf("High fever detected (%.1f°C)", *v.Temperature)
		},
		nameKeywords: []string{"flu", "pneumonia", "covid"},
		boost:        1.15,
	},
	{
		name:    "hypertensive",
		trigger: func(v *models.VitalSigns) bool { return v.SystolicBP != nil && *v.SystolicBP > 140 },
		alert: func(v *models.VitalSigns) string {
			return fmt.Sprintf("Elevated systolic blood pressure (%d mmHg)", *v.SystolicBP)
		},
		nameKeywords: []string{"hypertension"},
		boost:        1.2,
	},
	{
		name:    "tachycardia",
		trigger: func(v *models.VitalSigns) bool { return v.HeartRate != nil && *v.HeartRate > 100 },
		alert: func(v *models.VitalSigns) string {
			return fmt.Sprintf("Elevated heart rate (%d bpm)", *v.HeartRate)
		},
		categories: []string{"cardiovascular"},
		severities: []string{"severe"},
		boost:      1.0,
	},
	{
		name:    "hypoxia",
		trigger: func(v *models.VitalSigns) bool { return v.OxygenSaturation != nil && *v.OxygenSaturation < 95 },
		alert: func(v *models.VitalSigns) string {
			return fmt.Sprintf("Low oxygen saturation (%.1f%%)", *v.OxygenSaturation)
		},
		categories: []string{"respiratory"},
		boost:      1.2,
	},
}

func (r vitalRule) matchesDisease(d models.Disease) bool {
	name := strings.ToLower(d.Name)
	for _, keyword := range r.nameKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	category := strings.ToLower(d.Category)
	for _, keyword := range r.categories {
		if strings.Contains(category, keyword) {
			return true
		}
	}
	for _, severity := range r.severities {
		if strings.EqualFold(d.Severity, severity) {
			return true
		}
	}
	return false
}

// applyVitalRules runs each rule independently over every suggestion. Boosts
// clamp to 100 and every firing rule appends its alert message.
func applyVitalRules(suggestions []models.DiagnosisSuggestion, vitals *models.VitalSigns) {
	for _, rule := range vitalRules {
		if !rule.trigger(vitals) {
			continue
		}
		for i := range suggestions {
			if !rule.matchesDisease(suggestions[i].Disease) {
				continue
			}
			if rule.boost != 1.0 {
				boosted := suggestions[i].Confidence * rule.boost
				if boosted > maxConfidence {
					boosted = maxConfidence
				}
				suggestions[i].Confidence = round2(boosted)
			}
			suggestions[i].VitalAlerts = append(suggestions[i].VitalAlerts, rule.alert(vitals))
		}
	}
}
