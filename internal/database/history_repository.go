package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medisight/medisight-go/internal/models"
)

// ErrRecordNotFound is returned when a diagnosis record does not exist.
var ErrRecordNotFound = errors.New("diagnosis record not found")

// HistoryRepository handles the append/read store of diagnosis audit records.
type HistoryRepository struct {
	pool DatabasePool
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(pool DatabasePool) *HistoryRepository {
	return &HistoryRepository{
		pool: pool,
	}
}

const historyColumns = `id, patient_id, clinician_id, symptom_ids, vitals, suggestions, COALESCE(confirmed_diagnosis, ''), was_accurate, created_at`

// Insert appends a new diagnosis record.
func (r *HistoryRepository) Insert(ctx context.Context, record *models.DiagnosisRecord) error {
	query := `
		INSERT INTO diagnosis_records (id, patient_id, clinician_id, symptom_ids, vitals, suggestions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		record.ID, record.PatientID, record.ClinicianID,
		record.SymptomIDs, record.Vitals, record.Suggestions, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert diagnosis record: %w", err)
	}
	return nil
}

// Get fetches a single diagnosis record by id.
func (r *HistoryRepository) Get(ctx context.Context, id string) (*models.DiagnosisRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM diagnosis_records WHERE id = $1`

	var record models.DiagnosisRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.PatientID, &record.ClinicianID, &record.SymptomIDs,
		&record.Vitals, &record.Suggestions, &record.ConfirmedDiagnosis,
		&record.WasAccurate, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch diagnosis record: %w", err)
	}
	return &record, nil
}

// Confirm sets the clinician's final diagnosis on an existing record.
func (r *HistoryRepository) Confirm(ctx context.Context, id, diagnosis string, wasAccurate *bool) error {
	query := `
		UPDATE diagnosis_records
		SET confirmed_diagnosis = $2, was_accurate = $3
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, diagnosis, wasAccurate)
	if err != nil {
		return fmt.Errorf("failed to confirm diagnosis record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// RecentConfirmedByPatient returns the most recent confirmed records for one
// patient, newest first.
func (r *HistoryRepository) RecentConfirmedByPatient(ctx context.Context, patientID int64, limit int) ([]models.DiagnosisRecord, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM diagnosis_records
		WHERE patient_id = $1 AND confirmed_diagnosis IS NOT NULL AND confirmed_diagnosis != ''
		ORDER BY created_at DESC
		LIMIT $2`

	return r.queryRecords(ctx, query, patientID, limit)
}

// RecentConfirmed returns the most recent confirmed records across all
// patients, newest first.
func (r *HistoryRepository) RecentConfirmed(ctx context.Context, limit int) ([]models.DiagnosisRecord, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM diagnosis_records
		WHERE confirmed_diagnosis IS NOT NULL AND confirmed_diagnosis != ''
		ORDER BY created_at DESC
		LIMIT $1`

	return r.queryRecords(ctx, query, limit)
}

func (r *HistoryRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.DiagnosisRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnosis records: %w", err)
	}
	defer rows.Close()

	var records []models.DiagnosisRecord
	for rows.Next() {
		var record models.DiagnosisRecord
		err := rows.Scan(
			&record.ID, &record.PatientID, &record.ClinicianID, &record.SymptomIDs,
			&record.Vitals, &record.Suggestions, &record.ConfirmedDiagnosis,
			&record.WasAccurate, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diagnosis record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diagnosis records: %w", err)
	}
	return records, nil
}
