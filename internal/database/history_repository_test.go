package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisight/medisight-go/internal/models"
)

func TestHistoryRepository_Insert(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewHistoryRepository(NewMockPoolAdapter(mockPool))

	record := &models.DiagnosisRecord{
		ID:          "rec-1",
		PatientID:   7,
		ClinicianID: "clin-1",
		SymptomIDs:  []int64{1, 2},
		Suggestions: json.RawMessage(`[]`),
		CreatedAt:   time.Now(),
	}

	mockPool.ExpectExec("INSERT INTO diagnosis_records").
		WithArgs(record.ID, record.PatientID, record.ClinicianID,
			record.SymptomIDs, record.Vitals, record.Suggestions, record.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Insert(context.Background(), record)

	require.NoError(t, err)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestHistoryRepository_Get_NotFound(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewHistoryRepository(NewMockPoolAdapter(mockPool))

	mockPool.ExpectQuery("FROM diagnosis_records").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestHistoryRepository_Confirm(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewHistoryRepository(NewMockPoolAdapter(mockPool))

	accurate := true
	mockPool.ExpectExec("UPDATE diagnosis_records").
		WithArgs("rec-1", "Influenza", &accurate).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Confirm(context.Background(), "rec-1", "Influenza", &accurate)

	require.NoError(t, err)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestHistoryRepository_Confirm_NotFound(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewHistoryRepository(NewMockPoolAdapter(mockPool))

	mockPool.ExpectExec("UPDATE diagnosis_records").
		WithArgs("missing", "Influenza", (*bool)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Confirm(context.Background(), "missing", "Influenza", nil)

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestHistoryRepository_RecentConfirmedByPatient(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewHistoryRepository(NewMockPoolAdapter(mockPool))

	createdAt := time.Now()
	mockPool.ExpectQuery("FROM diagnosis_records").
		WithArgs(int64(7), 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "clinician_id", "symptom_ids", "vitals", "suggestions", "confirmed_diagnosis", "was_accurate", "created_at",
		}).
			AddRow("rec-2", int64(7), "clin-1", []int64{1, 2}, (*models.VitalSigns)(nil), json.RawMessage(`[]`), "Influenza", (*bool)(nil), createdAt).
			AddRow("rec-1", int64(7), "clin-2", []int64{3}, (*models.VitalSigns)(nil), json.RawMessage(`[]`), "Migraine", (*bool)(nil), createdAt.Add(-time.Hour)))

	records, err := repo.RecentConfirmedByPatient(context.Background(), 7, 10)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Influenza", records[0].ConfirmedDiagnosis)
	assert.Equal(t, []int64{1, 2}, records[0].SymptomIDs)
	require.NoError(t, mockPool.ExpectationsWereMet())
}
