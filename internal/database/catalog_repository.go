package database

import (
	"context"
	"fmt"

	"github.com/medisight/medisight-go/internal/models"
)

// CatalogRepository handles read-only access to the disease/symptom catalog.
type CatalogRepository struct {
	pool DatabasePool
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(pool DatabasePool) *CatalogRepository {
	return &CatalogRepository{
		pool: pool,
	}
}

// CandidateDiseases aggregates every active disease associated with at least
// one of the given symptoms: distinct matched count, average association
// probability, and count of primary-flagged matches, ordered by match breadth
// then strength then primary presence, capped at limit.
func (r *CatalogRepository) CandidateDiseases(ctx context.Context, symptomIDs []int64, limit int) ([]models.DiseaseCandidate, error) {
	query := `
		SELECT d.id, d.name, d.code, d.category, d.severity, d.description, d.prevalence, d.is_active, d.created_at,
		       COUNT(DISTINCT ds.symptom_id) AS matched_symptoms,
		       COALESCE(AVG(ds.probability), 0) AS avg_probability,
		       COUNT(*) FILTER (WHERE ds.is_primary) AS primary_matches
		FROM diseases d
		JOIN disease_symptoms ds ON ds.disease_id = d.id
		WHERE ds.symptom_id = ANY($1) AND d.is_active = true
		GROUP BY d.id
		ORDER BY matched_symptoms DESC, avg_probability DESC, primary_matches DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, symptomIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate diseases: %w", err)
	}
	defer rows.Close()

	var candidates []models.DiseaseCandidate
	for rows.Next() {
		var c models.DiseaseCandidate
		err := rows.Scan(
			&c.Disease.ID, &c.Disease.Name, &c.Disease.Code, &c.Disease.Category,
			&c.Disease.Severity, &c.Disease.Description, &c.Disease.Prevalence,
			&c.Disease.IsActive, &c.Disease.CreatedAt,
			&c.MatchedSymptoms, &c.AvgProbability, &c.PrimaryMatches,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate disease: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate diseases: %w", err)
	}
	return candidates, nil
}

// DiseaseSymptoms returns the full known symptom profile for a disease.
func (r *CatalogRepository) DiseaseSymptoms(ctx context.Context, diseaseID int64) ([]models.DiseaseSymptom, error) {
	query := `
		SELECT ds.disease_id, ds.symptom_id, s.name, ds.probability, ds.is_primary
		FROM disease_symptoms ds
		JOIN symptoms s ON s.id = ds.symptom_id
		WHERE ds.disease_id = $1 AND s.is_active = true
		ORDER BY ds.probability DESC, ds.is_primary DESC`

	rows, err := r.pool.Query(ctx, query, diseaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query disease symptoms: %w", err)
	}
	defer rows.Close()

	var symptoms []models.DiseaseSymptom
	for rows.Next() {
		var s models.DiseaseSymptom
		if err := rows.Scan(&s.DiseaseID, &s.SymptomID, &s.SymptomName, &s.Probability, &s.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan disease symptom: %w", err)
		}
		symptoms = append(symptoms, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating disease symptoms: %w", err)
	}
	return symptoms, nil
}

// Treatments returns up to limit treatment recommendations for a disease,
// ordered by fixed priority rank.
func (r *CatalogRepository) Treatments(ctx context.Context, diseaseID int64, limit int) ([]models.Treatment, error) {
	query := `
		SELECT id, disease_id, name, description, priority
		FROM treatments
		WHERE disease_id = $1
		ORDER BY CASE priority
			WHEN 'immediate' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, diseaseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query treatments: %w", err)
	}
	defer rows.Close()

	var treatments []models.Treatment
	for rows.Next() {
		var t models.Treatment
		if err := rows.Scan(&t.ID, &t.DiseaseID, &t.Name, &t.Description, &t.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan treatment: %w", err)
		}
		treatments = append(treatments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating treatments: %w", err)
	}
	return treatments, nil
}
