package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medisight/medisight-go/internal/models"
	"github.com/medisight/medisight-go/internal/services"
	"github.com/medisight/medisight-go/internal/telemetry"
)

// ForecastHandler exposes the forecasting engine over HTTP.
type ForecastHandler struct {
	service  *services.ForecastService
	notifier services.AlertNotifier
	logger   *logrus.Logger
}

// AlertsResponse is the predictive alert sweep payload.
type AlertsResponse struct {
	Alerts    []models.PredictiveAlert `json:"alerts"`
	Count     int                      `json:"count"`
	Timestamp time.Time                `json:"timestamp"`
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(service *services.ForecastService, notifier services.AlertNotifier, logger *logrus.Logger) *ForecastHandler {
	return &ForecastHandler{
		service:  service,
		notifier: notifier,
		logger:   logger,
	}
}

// CashFlow returns the revenue/expense projection with derived insights.
func (h *ForecastHandler) CashFlow(c *gin.Context) {
	months := intQuery(c, "months", 12)
	horizon := intQuery(c, "horizon", 0)

	ctx, span := telemetry.ForecastTracer().Start(c.Request.Context(), "forecast.cashflow")
	defer span.End()
	span.SetAttributes(attribute.Int("forecast.months", months), attribute.Int("forecast.horizon", horizon))

	forecast, err := h.service.ForecastCashFlow(ctx, months, horizon)
	if err != nil {
		h.logger.WithError(err).Error("Cash flow forecast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to forecast cash flow"})
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// Departments returns the per-department profitability grading.
func (h *ForecastHandler) Departments(c *gin.Context) {
	months := intQuery(c, "months", 12)

	performance, err := h.service.AnalyzeDepartmentProfitability(c.Request.Context(), months)
	if err != nil {
		h.logger.WithError(err).Error("Department profitability analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze department profitability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": performance, "count": len(performance), "timestamp": time.Now()})
}

// Pricing returns per-service price adjustment suggestions.
func (h *ForecastHandler) Pricing(c *gin.Context) {
	months := intQuery(c, "months", 12)
	horizon := intQuery(c, "horizon", 0)

	suggestions, err := h.service.SuggestServicePricing(c.Request.Context(), months, horizon)
	if err != nil {
		h.logger.WithError(err).Error("Service pricing analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suggest service pricing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions), "timestamp": time.Now()})
}

// Alerts runs the predictive alert sweep. With notify=true actionable alerts
// are also pushed to the configured channel; notification failures never fail
// the sweep itself.
func (h *ForecastHandler) Alerts(c *gin.Context) {
	ctx, span := telemetry.ForecastTracer().Start(c.Request.Context(), "forecast.alerts")
	defer span.End()

	alerts, err := h.service.GeneratePredictiveAlerts(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Predictive alert sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate predictive alerts"})
		return
	}

	if c.Query("notify") == "true" && h.notifier != nil {
		if err := h.notifier.NotifyAlerts(ctx, alerts); err != nil {
			h.logger.WithError(err).Warn("Failed to push predictive alerts")
		}
	}

	c.JSON(http.StatusOK, AlertsResponse{
		Alerts:    alerts,
		Count:     len(alerts),
		Timestamp: time.Now(),
	})
}

// Admissions returns the smoothed admissions trend for the dashboard.
func (h *ForecastHandler) Admissions(c *gin.Context) {
	months := intQuery(c, "months", 24)

	trend, err := h.service.AnalyzeAdmissionsTrend(c.Request.Context(), months)
	if err != nil {
		h.logger.WithError(err).Error("Admissions trend analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze admissions trend"})
		return
	}
	c.JSON(http.StatusOK, trend)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
