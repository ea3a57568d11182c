package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medisight/medisight-go/internal/models"
)

// InteractionRepository looks up known drug-drug interactions. Pairs are
// stored ordered but queried symmetrically.
type InteractionRepository struct {
	pool DatabasePool
}

// NewInteractionRepository creates a new interaction repository.
func NewInteractionRepository(pool DatabasePool) *InteractionRepository {
	return &InteractionRepository{
		pool: pool,
	}
}

// FindInteraction returns the interaction record for a drug pair in either
// stored order, or nil when none is known.
func (r *InteractionRepository) FindInteraction(ctx context.Context, drugA, drugB string) (*models.DrugInteraction, error) {
	query := `
		SELECT id, drug_a, drug_b, severity, description
		FROM drug_interactions
		WHERE (LOWER(drug_a) = LOWER($1) AND LOWER(drug_b) = LOWER($2))
		   OR (LOWER(drug_a) = LOWER($2) AND LOWER(drug_b) = LOWER($1))
		LIMIT 1`

	var interaction models.DrugInteraction
	err := r.pool.QueryRow(ctx, query, drugA, drugB).Scan(
		&interaction.ID, &interaction.DrugA, &interaction.DrugB,
		&interaction.Severity, &interaction.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query drug interaction: %w", err)
	}
	return &interaction, nil
}
