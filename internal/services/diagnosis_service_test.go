package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medisight/medisight-go/internal/config"
	"github.com/medisight/medisight-go/internal/models"
)

func testDiagnosisConfig() *config.Config {
	return &config.Config{
		Diagnosis: config.DiagnosisConfig{
			MaxCandidates:    10,
			MaxTreatments:    3,
			HistoryDepth:     10,
			SimilarityWindow: 100,
		},
	}
}

// MockSuggestionCache implements SuggestionCache for testing within the services package
type MockSuggestionCache struct {
	mock.Mock
}

func (m *MockSuggestionCache) Get(ctx context.Context, symptomIDs []int64) ([]models.DiagnosisSuggestion, bool) {
	args := m.Called(ctx, symptomIDs)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.DiagnosisSuggestion), args.Bool(1)
}

func (m *MockSuggestionCache) Set(ctx context.Context, symptomIDs []int64, suggestions []models.DiagnosisSuggestion) {
	m.Called(ctx, symptomIDs, suggestions)
}

func emptyProfile(catalog *MockCatalogRepository, diseaseID int64) {
	catalog.On("DiseaseSymptoms", mock.Anything, diseaseID).Return([]models.DiseaseSymptom{}, nil)
	catalog.On("Treatments", mock.Anything, diseaseID, 3).Return([]models.Treatment{}, nil)
}

func TestDiagnose_EmptySymptomSet(t *testing.T) {
	catalog := new(MockCatalogRepository)
	service := NewDiagnosisService(testDiagnosisConfig(), catalog, nil, nil, nil, testLogger())

	suggestions, err := service.Diagnose(context.Background(), nil, nil, nil)

	require.NoError(t, err)
	assert.Empty(t, suggestions)
	catalog.AssertNotCalled(t, "CandidateDiseases", mock.Anything, mock.Anything, mock.Anything)
}

func TestDiagnose_ConfidenceScoring(t *testing.T) {
	symptoms := []int64{1, 2}
	catalog := new(MockCatalogRepository)
	catalog.On("CandidateDiseases", mock.Anything, symptoms, 10).Return([]models.DiseaseCandidate{
		{
			Disease:         models.Disease{ID: 1, Name: "Influenza", Prevalence: 10},
			MatchedSymptoms: 2,
			AvgProbability:  80,
			PrimaryMatches:  1,
		},
		{
			Disease:         models.Disease{ID: 2, Name: "Common Cold", Prevalence: 5},
			MatchedSymptoms: 1,
			AvgProbability:  60,
			PrimaryMatches:  0,
		},
	}, nil)
	emptyProfile(catalog, 1)
	emptyProfile(catalog, 2)

	service := NewDiagnosisService(testDiagnosisConfig(), catalog, nil, nil, nil, testLogger())
	suggestions, err := service.Diagnose(context.Background(), symptoms, nil, nil)

	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	// Full match with a primary hit blows past the cap and clamps at 100
	assert.Equal(t, "Influenza", suggestions[0].Disease.Name)
	assert.Equal(t, 100.0, suggestions[0].Confidence)
	assert.Equal(t, 100.0, suggestions[0].MatchPercentage)
	assert.Equal(t, 2, suggestions[0].MatchedSymptoms)
	assert.Equal(t, 2, suggestions[0].TotalSymptoms)

	// (50*0.5 + 60*0.3) * 1.05 = 45.15
	assert.Equal(t, "Common Cold", suggestions[1].Disease.Name)
	assert.Equal(t, 45.15, suggestions[1].Confidence)
	assert.Equal(t, 50.0, suggestions[1].MatchPercentage)
}

func TestDiagnose_SymptomProfileOrdering(t *testing.T) {
	symptoms := []int64{1}
	catalog := new(MockCatalogRepository)
	catalog.On("CandidateDiseases", mock.Anything, symptoms, 10).Return([]models.DiseaseCandidate{
		{Disease: models.Disease{ID: 1, Name: "Pneumonia"}, MatchedSymptoms: 1, AvgProbability: 70},
	}, nil)
	catalog.On("DiseaseSymptoms", mock.Anything, int64(1)).Return([]models.DiseaseSymptom{
		{SymptomName: "Cough", Probability: 60, IsPrimary: false},
		{SymptomName: "Fever", Probability: 90, IsPrimary: true},
		{SymptomName: "Chest pain", Probability: 60, IsPrimary: true},
	}, nil)
	catalog.On("Treatments", mock.Anything, int64(1), 3).Return([]models.Treatment{}, nil)

	service := NewDiagnosisService(testDiagnosisConfig(), catalog, nil, nil, nil, testLogger())
	suggestions, err := service.Diagnose(context.Background(), symptoms, nil, nil)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	profile := suggestions[0].SymptomProfile
	require.Len(t, profile, 3)
	assert.Equal(t, "Fever", profile[0].SymptomName)
	// Equal probability ties break on the primary flag
	assert.Equal(t, "Chest pain", profile[1].SymptomName)
	assert.Equal(t, "Cough", profile[2].SymptomName)
}

func TestDiagnose_HistoryBoost(t *testing.T) {
	symptoms := []int64{1}
	patientID := int64(7)

	catalog := new(MockCatalogRepository)
	catalog.On("CandidateDiseases", mock.Anything, symptoms, 10).Return([]models.DiseaseCandidate{
		{Disease: models.Disease{ID: 1, Name: "Flu"}, MatchedSymptoms: 1, AvgProbability: 50},
	}, nil)
	emptyProfile(catalog, 1)

	history := new(MockHistoryRepository)
	history.On("RecentConfirmedByPatient", mock.Anything, patientID, 10).Return([]models.DiagnosisRecord{
		{ConfirmedDiagnosis: "Seasonal Flu"},
		{ConfirmedDiagnosis: "Migraine"},
	}, nil)

	service := NewDiagnosisService(testDiagnosisConfig(), catalog, history, nil, nil, testLogger())
	suggestions, err := service.Diagnose(context.Background(), symptoms, nil, &patientID)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	// Base 65.0 boosted by one matching prior diagnosis: 65 * 1.1 = 71.5
	assert.Equal(t, 71.5, suggestions[0].Confidence)
	assert.True(t, suggestions[0].IsRecurring)
}

func TestDiagnose_HistoryBoostClampsAtCap(t *testing.T) {
	symptoms := []int64{1, 2}
	patientID := int64(3)

	catalog := new(MockCatalogRepository)
	catalog.On("CandidateDiseases", mock.Anything, symptoms, 10).Return([]models.DiseaseCandidate{
		{Disease: models.Disease{ID: 1, Name: "Hypertension"}, MatchedSymptoms: 2, AvgProbability: 90, PrimaryMatches: 2},
	}, nil)
	emptyProfile(catalog, 1)

	history := new(MockHistoryRepository)
	history.On("RecentConfirmedByPatient", mock.Anything, patientID, 10).Return([]models.DiagnosisRecord{
		{ConfirmedDiagnosis: "Hypertension"},
		{ConfirmedDiagnosis: "Hypertension"},
		{ConfirmedDiagnosis: "Hypertension"},
	}, nil)

	service := NewDiagnosisService(testDiagnosisConfig(), catalog, history, nil, nil, testLogger())
	suggestions, err := service.Diagnose(context.Background(), symptoms, nil, &patientID)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 100.0, suggestions[0].Confidence)
	assert.True(t, suggestions[0].IsRecurring)
}

func TestDiagnose_CacheRoundTrip(t *testing.T) {
	symptoms := []int64{1, 2}

	catalog := new(MockCatalogRepository)
	catalog.On("CandidateDiseases", mock.Anything, symptoms, 10).Return([]models.DiseaseCandidate{
		{Disease: models.Disease{ID: 1, Name: "Flu"}, MatchedSymptoms: 2, AvgProbability: 50},
	}, nil)
	emptyProfile(catalog, 1)

	suggestionCache := new(MockSuggestionCache)
	suggestionCache.On("Get", mock.Anything, symptoms).Return(nil, false).Once()
	suggestionCache.On("Set", mock.Anything, symptoms, mock.Anything).Once()

	service := NewDiagnosisService(testDiagnosisConfig(), catalog, nil, nil, suggestionCache, testLogger())
	_, err := service.Diagnose(context.Background(), symptoms, nil, nil)
	require.NoError(t, err)

	cached := []models.DiagnosisSuggestion{{Disease: models.Disease{Name: "Flu"}, Confidence: 80}}
	suggestionCache.On("Get", mock.Anything, symptoms).Return(cached, true).Once()

	suggestions, err := service.Diagnose(context.Background(), symptoms, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, cached, suggestions)

	catalog.AssertNumberOfCalls(t, "CandidateDiseases", 1)
	suggestionCache.AssertExpectations(t)
}

func TestDiagnose_VitalsBypassCache(t *testing.T) {
	symptoms := []int64{1}
	temp := 39.5

	catalog := new(MockCatalogRepository)
	catalog.On("CandidateDiseases", mock.Anything, symptoms, 10).Return([]models.DiseaseCandidate{}, nil)

	suggestionCache := new(MockSuggestionCache)

	service := NewDiagnosisService(testDiagnosisConfig(), catalog, nil, nil, suggestionCache, testLogger())
	_, err := service.Diagnose(context.Background(), symptoms, &models.VitalSigns{Temperature: &temp}, nil)

	require.NoError(t, err)
	suggestionCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	suggestionCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindSimilarCases(t *testing.T) {
	symptoms := []int64{1, 2, 3}

	history := new(MockHistoryRepository)
	history.On("RecentConfirmed", mock.Anything, 100).Return([]models.DiagnosisRecord{
		{ID: "a", SymptomIDs: []int64{1, 2, 3, 4}, ConfirmedDiagnosis: "Flu"},
		{ID: "b", SymptomIDs: []int64{3, 4, 5}, ConfirmedDiagnosis: "Cold"},
		{ID: "c", SymptomIDs: []int64{1, 2, 3}, ConfirmedDiagnosis: "Flu"},
		{ID: "d", SymptomIDs: []int64{1, 2}, ConfirmedDiagnosis: "Covid"},
	}, nil)

	service := NewDiagnosisService(testDiagnosisConfig(), nil, history, nil, nil, testLogger())
	cases, err := service.FindSimilarCases(context.Background(), symptoms, 2)

	require.NoError(t, err)
	// Record b scores 20 and falls below the similarity floor, the limit
	// then keeps the two best of the remaining three
	require.Len(t, cases, 2)
	assert.Equal(t, "c", cases[0].Record.ID)
	assert.Equal(t, 100.0, cases[0].Similarity)
	assert.Equal(t, "a", cases[1].Record.ID)
	assert.Equal(t, 75.0, cases[1].Similarity)
}

func TestFindSimilarCases_EmptySymptomSet(t *testing.T) {
	history := new(MockHistoryRepository)
	service := NewDiagnosisService(testDiagnosisConfig(), nil, history, nil, nil, testLogger())

	cases, err := service.FindSimilarCases(context.Background(), nil, 5)

	require.NoError(t, err)
	assert.Empty(t, cases)
	history.AssertNotCalled(t, "RecentConfirmed", mock.Anything, mock.Anything)
}

func TestCheckDrugInteractions(t *testing.T) {
	interactions := new(MockInteractionRepository)
	interactions.On("FindInteraction", mock.Anything, "warfarin", "aspirin").Return(&models.DrugInteraction{
		DrugA: "warfarin", DrugB: "aspirin", Severity: "major",
	}, nil)
	interactions.On("FindInteraction", mock.Anything, "warfarin", "omeprazole").Return(nil, nil)
	interactions.On("FindInteraction", mock.Anything, "aspirin", "omeprazole").Return(nil, nil)

	service := NewDiagnosisService(testDiagnosisConfig(), nil, nil, interactions, nil, testLogger())
	found, err := service.CheckDrugInteractions(context.Background(), []string{"warfarin", "aspirin", "omeprazole"})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "major", found[0].Severity)
	interactions.AssertExpectations(t)
}

func TestCheckDrugInteractions_SingleDrug(t *testing.T) {
	interactions := new(MockInteractionRepository)
	service := NewDiagnosisService(testDiagnosisConfig(), nil, nil, interactions, nil, testLogger())

	found, err := service.CheckDrugInteractions(context.Background(), []string{"warfarin"})

	require.NoError(t, err)
	assert.Empty(t, found)
	interactions.AssertNotCalled(t, "FindInteraction", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordDiagnosis(t *testing.T) {
	history := new(MockHistoryRepository)
	var inserted *models.DiagnosisRecord
	history.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(*models.DiagnosisRecord)
	}).Return(nil)

	patientID := int64(12)
	service := NewDiagnosisService(testDiagnosisConfig(), nil, history, nil, nil, testLogger())
	record, err := service.RecordDiagnosis(context.Background(), "clin-1", models.DiagnosisRequest{
		SymptomIDs: []int64{1, 2},
		PatientID:  &patientID,
	}, []models.DiagnosisSuggestion{{Confidence: 80}})

	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, record, inserted)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, int64(12), record.PatientID)
	assert.Equal(t, "clin-1", record.ClinicianID)
	assert.NotEmpty(t, record.Suggestions)
}

func TestConfirmDiagnosis_WrapsRepositoryError(t *testing.T) {
	history := new(MockHistoryRepository)
	history.On("Confirm", mock.Anything, "rec-1", "Flu", (*bool)(nil)).Return(errors.New("not found"))

	service := NewDiagnosisService(testDiagnosisConfig(), nil, history, nil, nil, testLogger())
	err := service.ConfirmDiagnosis(context.Background(), "rec-1", "Flu", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirm")
}

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, jaccardSimilarity(nil, nil))
	assert.Equal(t, 0.0, jaccardSimilarity([]int64{1, 2}, []int64{3, 4}))
	assert.Equal(t, 100.0, jaccardSimilarity([]int64{1, 2}, []int64{2, 1}))
	// Duplicates collapse into the set
	assert.Equal(t, 100.0, jaccardSimilarity([]int64{1, 1, 2}, []int64{1, 2}))
	assert.Equal(t, 50.0, jaccardSimilarity([]int64{1, 2}, []int64{1, 2, 3, 4}))
}
