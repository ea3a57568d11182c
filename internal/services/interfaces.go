package services

import (
	"context"

	"github.com/medisight/medisight-go/internal/models"
)

// FinanceRepository supplies the grouped financial aggregates the forecasting
// engine consumes. How the aggregates are computed is the storage layer's
// concern; only ready-made monthly series cross this boundary.
type FinanceRepository interface {
	MonthlyRevenue(ctx context.Context, months int) ([]models.MonthlyAmount, error)
	MonthlyExpenses(ctx context.Context, months int) ([]models.MonthlyAmount, error)
	DepartmentTotals(ctx context.Context, months int) ([]models.DepartmentTotals, error)
	ServiceBilling(ctx context.Context, months int) ([]models.ServiceBilling, error)
	MonthlyAdmissions(ctx context.Context, months int) ([]models.MonthlyAmount, error)
}

// InventoryRepository supplies pharmacy stock snapshots with their per-day
// dispensing aggregates.
type InventoryRepository interface {
	StockLevels(ctx context.Context) ([]models.MedicineStock, error)
}

// CatalogRepository is the read-only disease/symptom/treatment catalog.
type CatalogRepository interface {
	CandidateDiseases(ctx context.Context, symptomIDs []int64, limit int) ([]models.DiseaseCandidate, error)
	DiseaseSymptoms(ctx context.Context, diseaseID int64) ([]models.DiseaseSymptom, error)
	Treatments(ctx context.Context, diseaseID int64, limit int) ([]models.Treatment, error)
}

// HistoryRepository is the append/read store of diagnosis audit records.
type HistoryRepository interface {
	Insert(ctx context.Context, record *models.DiagnosisRecord) error
	Get(ctx context.Context, id string) (*models.DiagnosisRecord, error)
	Confirm(ctx context.Context, id, diagnosis string, wasAccurate *bool) error
	RecentConfirmedByPatient(ctx context.Context, patientID int64, limit int) ([]models.DiagnosisRecord, error)
	RecentConfirmed(ctx context.Context, limit int) ([]models.DiagnosisRecord, error)
}

// InteractionRepository looks up known drug-drug interactions.
type InteractionRepository interface {
	FindInteraction(ctx context.Context, drugA, drugB string) (*models.DrugInteraction, error)
}

// AlertNotifier pushes predictive alerts to an external channel.
type AlertNotifier interface {
	NotifyAlerts(ctx context.Context, alerts []models.PredictiveAlert) error
}
