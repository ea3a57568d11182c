package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/medisight/medisight-go/internal/api/handlers"
	"github.com/medisight/medisight-go/internal/middleware"
	"github.com/medisight/medisight-go/internal/telemetry"
)

// SetupRoutes wires the HTTP surface: a public health endpoint, clinician
// login, and the authenticated analytics API.
func SetupRoutes(
	router *gin.Engine,
	health *handlers.HealthHandler,
	auth *handlers.AuthHandler,
	diagnosis *handlers.DiagnosisHandler,
	forecast *handlers.ForecastHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.Use(otelgin.Middleware(telemetry.ServiceName))

	// Health check endpoint
	router.GET("/health", health.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", auth.Login)

		authed := v1.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			diag := authed.Group("/diagnosis")
			{
				diag.POST("/suggest", diagnosis.Suggest)
				diag.GET("/similar", diagnosis.SimilarCases)
				diag.POST("/interactions", diagnosis.Interactions)
				diag.POST("/:id/confirm", diagnosis.Confirm)
			}

			// Financial analytics pages are gated to back-office roles
			fc := authed.Group("/forecast")
			fc.Use(middleware.RequireRole("admin", "finance", "management"))
			{
				fc.GET("/cashflow", forecast.CashFlow)
				fc.GET("/departments", forecast.Departments)
				fc.GET("/pricing", forecast.Pricing)
				fc.GET("/alerts", forecast.Alerts)
				fc.GET("/admissions", forecast.Admissions)
			}
		}
	}
}
