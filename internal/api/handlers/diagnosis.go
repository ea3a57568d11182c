package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medisight/medisight-go/internal/database"
	"github.com/medisight/medisight-go/internal/middleware"
	"github.com/medisight/medisight-go/internal/models"
	"github.com/medisight/medisight-go/internal/services"
	"github.com/medisight/medisight-go/internal/telemetry"
	"github.com/medisight/medisight-go/internal/utils"
)

// DiagnosisHandler exposes the diagnosis scoring engine over HTTP.
type DiagnosisHandler struct {
	service *services.DiagnosisService
	logger  *logrus.Logger
}

// SuggestResponse is the scoring endpoint payload.
type SuggestResponse struct {
	Suggestions []models.DiagnosisSuggestion `json:"suggestions"`
	Count       int                          `json:"count"`
	RecordID    string                       `json:"record_id,omitempty"`
	Timestamp   time.Time                    `json:"timestamp"`
}

// SimilarCasesResponse is the case-similarity endpoint payload.
type SimilarCasesResponse struct {
	Cases     []models.SimilarCase `json:"cases"`
	Count     int                  `json:"count"`
	Timestamp time.Time            `json:"timestamp"`
}

// InteractionsRequest lists the drugs to cross-check.
type InteractionsRequest struct {
	Drugs []string `json:"drugs" binding:"required"`
}

// InteractionsResponse is the drug-interaction endpoint payload.
type InteractionsResponse struct {
	Interactions []models.DrugInteraction `json:"interactions"`
	Count        int                      `json:"count"`
	Timestamp    time.Time                `json:"timestamp"`
}

// NewDiagnosisHandler creates a new diagnosis handler.
func NewDiagnosisHandler(service *services.DiagnosisService, logger *logrus.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{
		service: service,
		logger:  logger,
	}
}

// Suggest scores candidate diagnoses for a symptom set. When a patient id is
// supplied the suggestion set is persisted as an audit record attributed to
// the authenticated clinician.
func (h *DiagnosisHandler) Suggest(c *gin.Context) {
	var req models.DiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, span := telemetry.DiagnosisTracer().Start(c.Request.Context(), "diagnosis.suggest")
	defer span.End()
	span.SetAttributes(attribute.Int("diagnosis.symptom_count", len(req.SymptomIDs)))

	suggestions, err := h.service.Diagnose(ctx, req.SymptomIDs, req.Vitals, req.PatientID)
	if err != nil {
		h.logger.WithError(err).Error("Diagnosis scoring failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute diagnosis suggestions"})
		return
	}

	response := SuggestResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
		Timestamp:   time.Now(),
	}

	if req.PatientID != nil {
		clinicianID := c.GetString(middleware.ContextClinicianID)
		record, err := h.service.RecordDiagnosis(ctx, clinicianID, req, suggestions)
		if err != nil {
			h.logger.WithError(err).Error("Failed to persist diagnosis record")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist diagnosis record"})
			return
		}
		response.RecordID = record.ID
	}

	c.JSON(http.StatusOK, response)
}

// SimilarCases returns historical cases with symptom overlap above the
// similarity floor.
func (h *DiagnosisHandler) SimilarCases(c *gin.Context) {
	symptomIDs, err := parseSymptomIDs(c.Query("symptom_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
	}

	cases, err := h.service.FindSimilarCases(c.Request.Context(), symptomIDs, limit)
	if err != nil {
		h.logger.WithError(err).Error("Similar case search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find similar cases"})
		return
	}

	c.JSON(http.StatusOK, SimilarCasesResponse{
		Cases:     cases,
		Count:     len(cases),
		Timestamp: time.Now(),
	})
}

// Interactions cross-checks every pair of the given drugs against the known
// interaction table.
func (h *DiagnosisHandler) Interactions(c *gin.Context) {
	var req InteractionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	interactions, err := h.service.CheckDrugInteractions(c.Request.Context(), req.Drugs)
	if err != nil {
		h.logger.WithError(err).Error("Drug interaction check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check drug interactions"})
		return
	}

	c.JSON(http.StatusOK, InteractionsResponse{
		Interactions: interactions,
		Count:        len(interactions),
		Timestamp:    time.Now(),
	})
}

// Confirm records the clinician's final diagnosis on an existing audit record.
func (h *DiagnosisHandler) Confirm(c *gin.Context) {
	recordID := c.Param("id")

	var req models.ConfirmDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.service.ConfirmDiagnosis(c.Request.Context(), recordID, req.ConfirmedDiagnosis, req.WasAccurate)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Diagnosis record not found"})
			return
		}
		h.logger.WithError(err).Error("Diagnosis confirmation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm diagnosis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed", "record_id": recordID})
}

func parseSymptomIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, utils.NewValidationError("symptom_ids parameter is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, utils.NewValidationErrorf("invalid symptom id %q", strings.TrimSpace(part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
