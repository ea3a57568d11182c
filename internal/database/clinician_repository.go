package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medisight/medisight-go/internal/models"
)

// ErrClinicianNotFound is returned when no clinician matches the lookup.
var ErrClinicianNotFound = errors.New("clinician not found")

// ClinicianRepository handles staff account lookups for authentication.
type ClinicianRepository struct {
	pool DatabasePool
}

// NewClinicianRepository creates a new clinician repository.
func NewClinicianRepository(pool DatabasePool) *ClinicianRepository {
	return &ClinicianRepository{
		pool: pool,
	}
}

// GetByEmail fetches a clinician account by email.
func (r *ClinicianRepository) GetByEmail(ctx context.Context, email string) (*models.Clinician, error) {
	query := `
		SELECT id, email, password_hash, full_name, role, created_at
		FROM clinicians
		WHERE LOWER(email) = LOWER($1)`

	var clinician models.Clinician
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&clinician.ID, &clinician.Email, &clinician.PasswordHash,
		&clinician.FullName, &clinician.Role, &clinician.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicianNotFound
		}
		return nil, fmt.Errorf("failed to fetch clinician: %w", err)
	}
	return &clinician, nil
}
