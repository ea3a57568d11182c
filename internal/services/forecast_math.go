package services

import (
	"math"
	"time"

	"github.com/medisight/medisight-go/internal/models"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func sumFloat64(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func meanFloat64(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumFloat64(values) / float64(len(values))
}

// MovingAverage smooths a series with a trailing mean and projects it forward.
// The window is clamped at the series start, so the first window-1 points use a
// growing window. The forecast rolls the buffer over its own predictions,
// decaying toward the recent mean. Predicted values are rounded to 2 decimals.
func MovingAverage(values []float64, window, horizon int) models.MovingAverageResult {
	if window < 1 {
		window = 1
	}

	smoothed := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		smoothed[i] = meanFloat64(values[start : i+1])
	}

	// Seed the rolling buffer with the last window actuals, fewer if the
	// series is shorter than the window.
	start := len(values) - window
	if start < 0 {
		start = 0
	}
	buffer := append([]float64(nil), values[start:]...)

	predicted := make([]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		if len(buffer) == 0 {
			predicted = append(predicted, 0)
			continue
		}
		next := round2(meanFloat64(buffer))
		predicted = append(predicted, next)
		buffer = append(buffer[1:], next)
	}

	return models.MovingAverageResult{Smoothed: smoothed, Predicted: predicted}
}

// LinearRegression fits an ordinary-least-squares line over values indexed by
// position and projects it horizon steps past the end of the series. Fewer
// than 2 points yields the zero sentinel with a zero-filled projection.
// Projected values are clamped at 0 and rounded to 2 decimals; slope,
// intercept and r-squared are rounded to 4 decimals. R-squared is computed by
// formula and deliberately not clamped, so it can go negative on pathological
// series.
func LinearRegression(values []float64, horizon int) models.RegressionResult {
	if horizon < 0 {
		horizon = 0
	}
	n := len(values)
	predicted := make([]float64, 0, horizon)

	if n < 2 {
		for i := 0; i < horizon; i++ {
			predicted = append(predicted, 0)
		}
		return models.RegressionResult{Predicted: predicted}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (nf*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / nf

	meanY := sumY / nf
	var ssRes, ssTot float64
	for i, y := range values {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - meanY) * (y - meanY)
	}
	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	for i := 0; i < horizon; i++ {
		v := slope*float64(n+i) + intercept
		if v < 0 {
			v = 0
		}
		predicted = append(predicted, round2(v))
	}

	return models.RegressionResult{
		Slope:     round4(slope),
		Intercept: round4(intercept),
		Predicted: predicted,
		RSquared:  round4(rSquared),
	}
}

// PredictStockout estimates when an item runs out given its current stock and
// dispensing history over historyDays. A zero consumption rate returns the
// 999-day "effectively never" sentinel with low confidence. Confidence is
// tiered on the number of history entries: at least 30 is high, under 7 is
// low, anything else medium.
func PredictStockout(currentStock int, dispensingHistory []float64, historyDays int) models.StockoutEstimate {
	var dailyRate float64
	if historyDays > 0 {
		dailyRate = sumFloat64(dispensingHistory) / float64(historyDays)
	}

	if dailyRate <= 0 {
		return models.StockoutEstimate{
			DailyRate:         0,
			DaysUntilStockout: models.StockoutNeverDays,
			StockoutDate:      nil,
			Confidence:        models.StockoutConfidenceLow,
		}
	}

	days := int(math.Ceil(float64(currentStock) / dailyRate))
	date := time.Now().AddDate(0, 0, days)

	confidence := models.StockoutConfidenceMedium
	switch {
	case len(dispensingHistory) >= 30:
		confidence = models.StockoutConfidenceHigh
	case len(dispensingHistory) < 7:
		confidence = models.StockoutConfidenceLow
	}

	return models.StockoutEstimate{
		DailyRate:         dailyRate,
		DaysUntilStockout: days,
		StockoutDate:      &date,
		Confidence:        confidence,
	}
}
