package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovingAverageResult holds a smoothed series plus its forward projection
type MovingAverageResult struct {
	Smoothed  []float64 `json:"smoothed"`
	Predicted []float64 `json:"predicted"`
}

// RegressionResult holds an ordinary-least-squares fit and its projection
type RegressionResult struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Predicted []float64 `json:"predicted"`
	RSquared  float64   `json:"r_squared"`
}

// StockoutConfidence labels how much dispensing history backs an estimate
type StockoutConfidence string

const (
	StockoutConfidenceLow    StockoutConfidence = "low"
	StockoutConfidenceMedium StockoutConfidence = "medium"
	StockoutConfidenceHigh   StockoutConfidence = "high"
)

// StockoutNeverDays is the sentinel for items with zero consumption
const StockoutNeverDays = 999

// StockoutEstimate projects when an inventory item runs out at its recent
// consumption rate
type StockoutEstimate struct {
	DailyRate         float64            `json:"daily_rate"`
	DaysUntilStockout int                `json:"days_until_stockout"`
	StockoutDate      *time.Time         `json:"stockout_date,omitempty"`
	Confidence        StockoutConfidence `json:"confidence"`
}

// MonthlyAmount is one row of a caller-supplied monthly aggregate
type MonthlyAmount struct {
	Month  string          `json:"month" db:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount" db:"amount"`
}

// CashFlowForecast is the composed revenue/expense outlook
type CashFlowForecast struct {
	RevenueHistory  []MonthlyAmount  `json:"revenue_history"`
	ExpenseHistory  []MonthlyAmount  `json:"expense_history"`
	Revenue         RegressionResult `json:"revenue"`
	Expenses        RegressionResult `json:"expenses"`
	ProjectedMargin []float64        `json:"projected_margin"`
	Insights        []Insight        `json:"insights"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Insight is a categorical takeaway derived from a numeric forecast
type Insight struct {
	Level   string `json:"level"` // "danger", "warning", "info"
	Message string `json:"message"`
}

// DepartmentPerformance grades one department's margin
type DepartmentPerformance struct {
	Department string          `json:"department"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Margin     float64         `json:"margin"` // percent
	Tier       string          `json:"tier"`   // "excellent", "good", "fair", "loss"
}

// PricingSuggestion proposes a price adjustment for a billed service
type PricingSuggestion struct {
	Service        string           `json:"service"`
	CurrentPrice   decimal.Decimal  `json:"current_price"`
	Trend          RegressionResult `json:"trend"`
	SuggestedPrice float64          `json:"suggested_price"`
	Rationale      string           `json:"rationale"`
}

// DepartmentTotals is one row of the per-department financial aggregate
type DepartmentTotals struct {
	Department string          `json:"department" db:"department"`
	Revenue    decimal.Decimal `json:"revenue" db:"revenue"`
	Cost       decimal.Decimal `json:"cost" db:"cost"`
}

// ServiceBilling is the billing history for one priced service
type ServiceBilling struct {
	Service       string          `json:"service" db:"service"`
	CurrentPrice  decimal.Decimal `json:"current_price" db:"current_price"`
	MonthlyTotals []MonthlyAmount `json:"monthly_totals"`
}

// MedicineStock is the inventory snapshot fed into the stockout sweep
type MedicineStock struct {
	MedicineID   int64           `json:"medicine_id" db:"medicine_id"`
	Name         string          `json:"name" db:"name"`
	CurrentStock int             `json:"current_stock" db:"current_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Dispensing   []float64       `json:"dispensing"` // per-day quantities, oldest first
}

// PredictiveAlert is one entry of the alert sweep, ordered by severity
type PredictiveAlert struct {
	Level    string            `json:"level"` // "danger", "warning", "info"
	Category string            `json:"category"`
	Message  string            `json:"message"`
	Estimate *StockoutEstimate `json:"estimate,omitempty"`
}

// AdmissionsTrend is the smoothed admissions dashboard series
type AdmissionsTrend struct {
	Smoothed  []float64 `json:"smoothed"`
	Momentum  float64   `json:"momentum"`
	Direction string    `json:"direction"` // "rising", "falling", "stable"
}
