package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medisight/medisight-go/internal/config"
	"github.com/medisight/medisight-go/internal/models"
)

// Scoring policy constants. These are fixed heuristic weights, not derived
// values; compatible output requires reproducing them exactly.
const (
	weightMatchPct       = 0.5
	weightAvgProbability = 0.3
	weightPrimaryMatches = 0.2
	primaryMatchPoints   = 10.0
	primaryBoost         = 1.2
	historyBoostPerMatch = 0.1
	maxConfidence        = 100.0
	minSimilarity        = 30.0
)

// SuggestionCache caches scored suggestion sets for pure symptom queries.
type SuggestionCache interface {
	Get(ctx context.Context, symptomIDs []int64) ([]models.DiagnosisSuggestion, bool)
	Set(ctx context.Context, symptomIDs []int64, suggestions []models.DiagnosisSuggestion)
}

// DiagnosisService ranks candidate diagnoses for a symptom set using a
// weighted multi-factor heuristic. It is stateless; every invocation operates
// only on catalog and history rows fetched through the injected repositories.
type DiagnosisService struct {
	cfg          *config.Config
	catalog      CatalogRepository
	history      HistoryRepository
	interactions InteractionRepository
	cache        SuggestionCache
	logger       *logrus.Logger
}

// NewDiagnosisService creates a new diagnosis scoring service. cache may be
// nil to disable suggestion caching.
func NewDiagnosisService(
	cfg *config.Config,
	catalog CatalogRepository,
	history HistoryRepository,
	interactions InteractionRepository,
	cache SuggestionCache,
	logger *logrus.Logger,
) *DiagnosisService {
	return &DiagnosisService{
		cfg:          cfg,
		catalog:      catalog,
		history:      history,
		interactions: interactions,
		cache:        cache,
		logger:       logger,
	}
}

// Diagnose scores candidate diseases for the given symptom set. Vitals and
// patientID are optional enrichment signals; absence skips the corresponding
// boost step. An empty symptom set yields an empty result, not an error.
func (ds *DiagnosisService) Diagnose(ctx context.Context, symptomIDs []int64, vitals *models.VitalSigns, patientID *int64) ([]models.DiagnosisSuggestion, error) {
	if len(symptomIDs) == 0 {
		return []models.DiagnosisSuggestion{}, nil
	}

	// Pure symptom queries are cacheable; vitals and patient history make the
	// result request-specific.
	cacheable := ds.cache != nil && vitals == nil && patientID == nil
	if cacheable {
		if cached, ok := ds.cache.Get(ctx, symptomIDs); ok {
			return cached, nil
		}
	}

	candidates, err := ds.catalog.CandidateDiseases(ctx, symptomIDs, ds.cfg.Diagnosis.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate diseases: %w", err)
	}

	suggestions := make([]models.DiagnosisSuggestion, 0, len(candidates))
	for _, candidate := range candidates {
		suggestion, err := ds.scoreCandidate(ctx, candidate, len(symptomIDs))
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, suggestion)
	}

	if patientID != nil {
		if err := ds.applyHistoryBoost(ctx, suggestions, *patientID); err != nil {
			return nil, err
		}
	}

	if vitals != nil {
		applyVitalRules(suggestions, vitals)
	}

	// Confidence blends the factors differently than the candidate query's
	// ordering, and boosts can reshuffle further, so sort last.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	ds.logger.WithFields(logrus.Fields{
		"symptoms":   len(symptomIDs),
		"candidates": len(suggestions),
	}).Info("Diagnosis suggestions computed")

	if cacheable {
		ds.cache.Set(ctx, symptomIDs, suggestions)
	}
	return suggestions, nil
}

func (ds *DiagnosisService) scoreCandidate(ctx context.Context, candidate models.DiseaseCandidate, totalSymptoms int) (models.DiagnosisSuggestion, error) {
	matchPct := float64(candidate.MatchedSymptoms) / float64(totalSymptoms) * 100

	primaryWeight := 1.0
	if candidate.PrimaryMatches > 0 {
		primaryWeight = primaryBoost
	}
	prevalenceWeight := 1 + candidate.Disease.Prevalence/100

	rawScore := matchPct*weightMatchPct +
		candidate.AvgProbability*weightAvgProbability +
		float64(candidate.PrimaryMatches)*primaryMatchPoints*weightPrimaryMatches

	confidence := rawScore * primaryWeight * prevalenceWeight
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	profile, err := ds.catalog.DiseaseSymptoms(ctx, candidate.Disease.ID)
	if err != nil {
		return models.DiagnosisSuggestion{}, fmt.Errorf("failed to fetch symptom profile: %w", err)
	}
	sort.SliceStable(profile, func(i, j int) bool {
		if profile[i].Probability != profile[j].Probability {
			return profile[i].Probability > profile[j].Probability
		}
		return profile[i].IsPrimary && !profile[j].IsPrimary
	})

	treatments, err := ds.catalog.Treatments(ctx, candidate.Disease.ID, ds.cfg.Diagnosis.MaxTreatments)
	if err != nil {
		return models.DiagnosisSuggestion{}, fmt.Errorf("failed to fetch treatments: %w", err)
	}

	return models.DiagnosisSuggestion{
		Disease:         candidate.Disease,
		Confidence:      round2(confidence),
		MatchedSymptoms: candidate.MatchedSymptoms,
		TotalSymptoms:   totalSymptoms,
		MatchPercentage: round2(matchPct),
		SymptomProfile:  profile,
		Treatments:      treatments,
	}, nil
}

func (ds *DiagnosisService) applyHistoryBoost(ctx context.Context, suggestions []models.DiagnosisSuggestion, patientID int64) error {
	records, err := ds.history.RecentConfirmedByPatient(ctx, patientID, ds.cfg.Diagnosis.HistoryDepth)
	if err != nil {
		return fmt.Errorf("failed to fetch patient history: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	for i := range suggestions {
		name := strings.ToLower(suggestions[i].Disease.Name)
		matches := 0
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.ConfirmedDiagnosis), name) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		boosted := suggestions[i].Confidence * (1 + historyBoostPerMatch*float64(matches))
		if boosted > maxConfidence {
			boosted = maxConfidence
		}
		suggestions[i].Confidence = round2(boosted)
		suggestions[i].IsRecurring = true
	}
	return nil
}

// FindSimilarCases scores recent confirmed records against the query symptom
// set with Jaccard similarity, keeping only records above the similarity
// floor.
func (ds *DiagnosisService) FindSimilarCases(ctx context.Context, symptomIDs []int64, limit int) ([]models.SimilarCase, error) {
	if len(symptomIDs) == 0 {
		return []models.SimilarCase{}, nil
	}

	records, err := ds.history.RecentConfirmed(ctx, ds.cfg.Diagnosis.SimilarityWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent records: %w", err)
	}

	cases := make([]models.SimilarCase, 0)
	for _, record := range records {
		similarity := jaccardSimilarity(symptomIDs, record.SymptomIDs)
		if similarity <= minSimilarity {
			continue
		}
		cases = append(cases, models.SimilarCase{
			Record:     record,
			Similarity: round2(similarity),
		})
	}

	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].Similarity > cases[j].Similarity
	})
	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}
	return cases, nil
}

// CheckDrugInteractions looks up every unordered pair of the given drugs.
// Interactions are stored as ordered pairs but checked symmetrically. Fewer
// than 2 drugs yields an empty result.
func (ds *DiagnosisService) CheckDrugInteractions(ctx context.Context, drugNames []string) ([]models.DrugInteraction, error) {
	if len(drugNames) < 2 {
		return []models.DrugInteraction{}, nil
	}

	found := make([]models.DrugInteraction, 0)
	for i := 0; i < len(drugNames); i++ {
		for j := i + 1; j < len(drugNames); j++ {
			interaction, err := ds.interactions.FindInteraction(ctx, drugNames[i], drugNames[j])
			if err != nil {
				return nil, fmt.Errorf("failed to look up interaction: %w", err)
			}
			if interaction != nil {
				found = append(found, *interaction)
			}
		}
	}
	return found, nil
}

// RecordDiagnosis persists a scored suggestion set as an immutable audit
// record attributed to the acting clinician.
func (ds *DiagnosisService) RecordDiagnosis(ctx context.Context, clinicianID string, req models.DiagnosisRequest, suggestions []models.DiagnosisSuggestion) (*models.DiagnosisRecord, error) {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode suggestions: %w", err)
	}

	var patientID int64
	if req.PatientID != nil {
		patientID = *req.PatientID
	}

	record := &models.DiagnosisRecord{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		ClinicianID: clinicianID,
		SymptomIDs:  req.SymptomIDs,
		Vitals:      req.Vitals,
		Suggestions: payload,
		CreatedAt:   time.Now(),
	}
	if err := ds.history.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist diagnosis record: %w", err)
	}
	return record, nil
}

// ConfirmDiagnosis records the clinician's final diagnosis on an existing
// audit record.
func (ds *DiagnosisService) ConfirmDiagnosis(ctx context.Context, recordID, diagnosis string, wasAccurate *bool) error {
	if err := ds.history.Confirm(ctx, recordID, diagnosis, wasAccurate); err != nil {
		return fmt.Errorf("failed to confirm diagnosis: %w", err)
	}
	return nil
}

func jaccardSimilarity(a, b []int64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[int64]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[int64]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}

	intersection := 0
	for id := range setA {
		if _, ok := setB[id]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}
