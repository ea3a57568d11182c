package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/medisight/medisight-go/internal/models"
)

// MockFinanceRepository implements FinanceRepository for testing within the services package
type MockFinanceRepository struct {
	mock.Mock
}

func (m *MockFinanceRepository) MonthlyRevenue(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonthlyAmount), args.Error(1)
}

func (m *MockFinanceRepository) MonthlyExpenses(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonthlyAmount), args.Error(1)
}

func (m *MockFinanceRepository) DepartmentTotals(ctx context.Context, months int) ([]models.DepartmentTotals, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DepartmentTotals), args.Error(1)
}

func (m *MockFinanceRepository) ServiceBilling(ctx context.Context, months int) ([]models.ServiceBilling, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceBilling), args.Error(1)
}

func (m *MockFinanceRepository) MonthlyAdmissions(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonthlyAmount), args.Error(1)
}

// MockInventoryRepository implements InventoryRepository for testing within the services package
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) StockLevels(ctx context.Context) ([]models.MedicineStock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MedicineStock), args.Error(1)
}

// MockCatalogRepository implements CatalogRepository for testing within the services package
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CandidateDiseases(ctx context.Context, symptomIDs []int64, limit int) ([]models.DiseaseCandidate, error) {
	args := m.Called(ctx, symptomIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiseaseCandidate), args.Error(1)
}

func (m *MockCatalogRepository) DiseaseSymptoms(ctx context.Context, diseaseID int64) ([]models.DiseaseSymptom, error) {
	args := m.Called(ctx, diseaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiseaseSymptom), args.Error(1)
}

func (m *MockCatalogRepository) Treatments(ctx context.Context, diseaseID int64, limit int) ([]models.Treatment, error) {
	args := m.Called(ctx, diseaseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Treatment), args.Error(1)
}

// MockHistoryRepository implements HistoryRepository for testing within the services package
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Insert(ctx context.Context, record *models.DiagnosisRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) Get(ctx context.Context, id string) (*models.DiagnosisRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiagnosisRecord), args.Error(1)
}

func (m *MockHistoryRepository) Confirm(ctx context.Context, id, diagnosis string, wasAccurate *bool) error {
	args := m.Called(ctx, id, diagnosis, wasAccurate)
	return args.Error(0)
}

func (m *MockHistoryRepository) RecentConfirmedByPatient(ctx context.Context, patientID int64, limit int) ([]models.DiagnosisRecord, error) {
	args := m.Called(ctx, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiagnosisRecord), args.Error(1)
}

func (m *MockHistoryRepository) RecentConfirmed(ctx context.Context, limit int) ([]models.DiagnosisRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiagnosisRecord), args.Error(1)
}

// MockInteractionRepository implements InteractionRepository for testing within the services package
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) FindInteraction(ctx context.Context, drugA, drugB string) (*models.DrugInteraction, error) {
	args := m.Called(ctx, drugA, drugB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrugInteraction), args.Error(1)
}
