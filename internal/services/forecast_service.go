package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/medisight/medisight-go/internal/config"
	"github.com/medisight/medisight-go/internal/models"
)

// Margin tiers for department profitability grading
const (
	marginTierExcellent = 20.0
	marginTierGood      = 10.0
)

// Fixed ordering for alert and insight severity
var severityRank = map[string]int{
	"danger":  0,
	"warning": 1,
	"info":    2,
}

// ForecastService composes the statistical estimators over hospital financial
// and operational aggregates supplied by the storage layer.
type ForecastService struct {
	cfg       *config.Config
	finance   FinanceRepository
	inventory InventoryRepository
	logger    *logrus.Logger
}

// NewForecastService creates a new forecast service
func NewForecastService(cfg *config.Config, finance FinanceRepository, inventory InventoryRepository, logger *logrus.Logger) *ForecastService {
	return &ForecastService{
		cfg:       cfg,
		finance:   finance,
		inventory: inventory,
		logger:    logger,
	}
}

// ForecastCashFlow projects revenue and expenses over the requested horizon
// and derives categorical insights from the projections.
func (fs *ForecastService) ForecastCashFlow(ctx context.Context, months, horizon int) (*models.CashFlowForecast, error) {
	if horizon <= 0 {
		horizon = fs.cfg.Forecast.DefaultHorizon
	}

	revenue, err := fs.finance.MonthlyRevenue(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly revenue: %w", err)
	}
	expenses, err := fs.finance.MonthlyExpenses(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly expenses: %w", err)
	}

	revenueSeries := monthlySeries(revenue)
	expenseSeries := monthlySeries(expenses)

	revenueFit := LinearRegression(revenueSeries, horizon)
	expenseFit := LinearRegression(expenseSeries, horizon)

	margin := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		margin[i] = round2(revenueFit.Predicted[i] - expenseFit.Predicted[i])
	}

	insights := fs.cashFlowInsights(revenueSeries, revenueFit, margin)

	fs.logger.WithFields(logrus.Fields{
		"months":  len(revenueSeries),
		"horizon": horizon,
		"slope":   revenueFit.Slope,
	}).Info("Cash flow forecast generated")

	return &models.CashFlowForecast{
		RevenueHistory:  revenue,
		ExpenseHistory:  expenses,
		Revenue:         revenueFit,
		Expenses:        expenseFit,
		ProjectedMargin: margin,
		Insights:        insights,
		GeneratedAt:     time.Now(),
	}, nil
}

func (fs *ForecastService) cashFlowInsights(revenueSeries []float64, revenueFit models.RegressionResult, margin []float64) []models.Insight {
	var insights []models.Insight

	if len(revenueSeries) > 0 && len(revenueFit.Predicted) > 0 {
		lastActual := revenueSeries[len(revenueSeries)-1]
		if lastActual > 0 && revenueFit.Predicted[0] < lastActual*fs.cfg.Forecast.RevenueWarningRatio {
			insights = append(insights, models.Insight{
				Level: "warning",
				Message: fmt.Sprintf("Forecasted revenue %.2f is below %.0f%% of last month's actual %.2f",
					revenueFit.Predicted[0], fs.cfg.Forecast.RevenueWarningRatio*100, lastActual),
			})
		}
	}

	for i, m := range margin {
		if m < 0 {
			insights = append(insights, models.Insight{
				Level:   "danger",
				Message: fmt.Sprintf("Projected expenses exceed revenue in %d month(s)", i+1),
			})
			break
		}
	}

	if len(insights) == 0 {
		insights = append(insights, models.Insight{
			Level:   "info",
			Message: "Cash flow outlook is stable",
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return severityRank[insights[i].Level] < severityRank[insights[j].Level]
	})
	return insights
}

// AnalyzeDepartmentProfitability grades each department's margin into fixed
// performance tiers.
func (fs *ForecastService) AnalyzeDepartmentProfitability(ctx context.Context, months int) ([]models.DepartmentPerformance, error) {
	totals, err := fs.finance.DepartmentTotals(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch department totals: %w", err)
	}

	performance := make([]models.DepartmentPerformance, 0, len(totals))
	for _, t := range totals {
		revenue := t.Revenue.InexactFloat64()
		cost := t.Cost.InexactFloat64()

		var margin float64
		if revenue > 0 {
			margin = round2((revenue - cost) / revenue * 100)
		} else if cost > 0 {
			margin = -100
		}

		tier := "fair"
		switch {
		case margin >= marginTierExcellent:
			tier = "excellent"
		case margin >= marginTierGood:
			tier = "good"
		case margin < 0:
			tier = "loss"
		}

		performance = append(performance, models.DepartmentPerformance{
			Department: t.Department,
			Revenue:    t.Revenue,
			Cost:       t.Cost,
			Margin:     margin,
			Tier:       tier,
		})
	}

	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].Margin > performance[j].Margin
	})
	return performance, nil
}

// SuggestServicePricing fits a demand trend per billed service and proposes a
// fixed-step price adjustment in the trend's direction.
func (fs *ForecastService) SuggestServicePricing(ctx context.Context, months, horizon int) ([]models.PricingSuggestion, error) {
	if horizon <= 0 {
		horizon = fs.cfg.Forecast.DefaultHorizon
	}

	billing, err := fs.finance.ServiceBilling(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service billing: %w", err)
	}

	suggestions := make([]models.PricingSuggestion, 0, len(billing))
	for _, b := range billing {
		fit := LinearRegression(monthlySeries(b.MonthlyTotals), horizon)
		price := b.CurrentPrice.InexactFloat64()

		suggested := price
		rationale := "Demand is flat, hold current price"
		if fit.Slope > 0 {
			suggested = round2(price * 1.05)
			rationale = "Demand is rising, a 5% increase is sustainable"
		} else if fit.Slope < 0 {
			suggested = round2(price * 0.95)
			rationale = "Demand is falling, a 5% reduction may recover volume"
		}

		suggestions = append(suggestions, models.PricingSuggestion{
			Service:        b.Service,
			CurrentPrice:   b.CurrentPrice,
			Trend:          fit,
			SuggestedPrice: suggested,
			Rationale:      rationale,
		})
	}
	return suggestions, nil
}

// GeneratePredictiveAlerts sweeps pharmacy stock for projected stockouts and
// folds in the cash-flow warning, ordered danger, warning, info.
func (fs *ForecastService) GeneratePredictiveAlerts(ctx context.Context) ([]models.PredictiveAlert, error) {
	stocks, err := fs.inventory.StockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock levels: %w", err)
	}

	alerts := make([]models.PredictiveAlert, 0)
	for _, stock := range stocks {
		estimate := PredictStockout(stock.CurrentStock, stock.Dispensing, fs.cfg.Forecast.StockoutHistoryDays)
		if estimate.DaysUntilStockout >= models.StockoutNeverDays {
			continue
		}

		est := estimate
		switch {
		case estimate.DaysUntilStockout <= fs.cfg.Forecast.StockoutDangerDays:
			alerts = append(alerts, models.PredictiveAlert{
				Level:    "danger",
				Category: "pharmacy",
				Message:  fmt.Sprintf("%s is projected to stock out in %d day(s)", stock.Name, estimate.DaysUntilStockout),
				Estimate: &est,
			})
		case estimate.DaysUntilStockout <= fs.cfg.Forecast.StockoutWarningDays:
			alerts = append(alerts, models.PredictiveAlert{
				Level:    "warning",
				Category: "pharmacy",
				Message:  fmt.Sprintf("%s is projected to stock out in %d day(s)", stock.Name, estimate.DaysUntilStockout),
				Estimate: &est,
			})
		}
	}

	forecast, err := fs.ForecastCashFlow(ctx, 12, fs.cfg.Forecast.DefaultHorizon)
	if err != nil {
		// Analytics must not take down the whole sweep, report what we have
		fs.logger.WithError(err).Warn("Cash flow forecast unavailable for alert sweep")
	} else {
		for _, insight := range forecast.Insights {
			if insight.Level == "info" {
				continue
			}
			alerts = append(alerts, models.PredictiveAlert{
				Level:    insight.Level,
				Category: "finance",
				Message:  insight.Message,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Level] < severityRank[alerts[j].Level]
	})
	return alerts, nil
}

// AnalyzeAdmissionsTrend smooths the admissions series for the dashboard and
// labels its direction from an RSI-style momentum reading.
func (fs *ForecastService) AnalyzeAdmissionsTrend(ctx context.Context, months int) (*models.AdmissionsTrend, error) {
	admissions, err := fs.finance.MonthlyAdmissions(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly admissions: %w", err)
	}

	series := monthlySeries(admissions)
	window := fs.cfg.Forecast.MovingAvgWindow
	if window < 1 {
		window = 1
	}

	if len(series) <= window {
		return &models.AdmissionsTrend{Smoothed: series, Momentum: 50, Direction: "stable"}, nil
	}

	ema := trend.NewEmaWithPeriod[float64](window)
	smoothed := helper.ChanToSlice(ema.Compute(helper.SliceToChan(series)))

	momentumValue := 50.0
	rsiPeriod := window
	if len(series) > rsiPeriod+1 {
		rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
		rsiValues := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(series)))
		if len(rsiValues) > 0 {
			momentumValue = round2(rsiValues[len(rsiValues)-1])
		}
	}

	direction := "stable"
	if momentumValue > 55 {
		direction = "rising"
	} else if momentumValue < 45 {
		direction = "falling"
	}

	return &models.AdmissionsTrend{
		Smoothed:  smoothed,
		Momentum:  momentumValue,
		Direction: direction,
	}, nil
}

func monthlySeries(rows []models.MonthlyAmount) []float64 {
	series := make([]float64, len(rows))
	for i, row := range rows {
		series[i] = row.Amount.InexactFloat64()
	}
	return series
}
