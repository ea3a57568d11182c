package database

import (
	"context"
	"fmt"

	"github.com/medisight/medisight-go/internal/models"
)

// FinanceRepository computes the grouped financial aggregates consumed by the
// forecasting engine. Grouping stays in SQL; only ready-made monthly series
// cross into the engine.
type FinanceRepository struct {
	pool DatabasePool
}

// NewFinanceRepository creates a new finance repository.
func NewFinanceRepository(pool DatabasePool) *FinanceRepository {
	return &FinanceRepository{
		pool: pool,
	}
}

// MonthlyRevenue returns total paid invoice amounts per month, oldest first.
func (r *FinanceRepository) MonthlyRevenue(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	query := `
		SELECT to_char(paid_at, 'YYYY-MM') AS month, SUM(amount) AS total
		FROM payments
		WHERE paid_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY month
		ORDER BY month`

	return r.queryMonthly(ctx, query, months)
}

// MonthlyExpenses returns total recorded expenses per month, oldest first.
func (r *FinanceRepository) MonthlyExpenses(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	query := `
		SELECT to_char(incurred_at, 'YYYY-MM') AS month, SUM(amount) AS total
		FROM expenses
		WHERE incurred_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY month
		ORDER BY month`

	return r.queryMonthly(ctx, query, months)
}

// MonthlyAdmissions returns admission counts per month, oldest first.
func (r *FinanceRepository) MonthlyAdmissions(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	query := `
		SELECT to_char(admitted_at, 'YYYY-MM') AS month, COUNT(*)::numeric AS total
		FROM admissions
		WHERE admitted_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY month
		ORDER BY month`

	return r.queryMonthly(ctx, query, months)
}

// DepartmentTotals returns revenue and cost per department over the window.
func (r *FinanceRepository) DepartmentTotals(ctx context.Context, months int) ([]models.DepartmentTotals, error) {
	query := `
		SELECT d.name,
		       COALESCE(SUM(p.amount), 0) AS revenue,
		       COALESCE(SUM(e.amount), 0) AS cost
		FROM departments d
		LEFT JOIN payments p ON p.department_id = d.id
			AND p.paid_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		LEFT JOIN expenses e ON e.department_id = d.id
			AND e.incurred_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY d.name
		ORDER BY d.name`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("failed to query department totals: %w", err)
	}
	defer rows.Close()

	var totals []models.DepartmentTotals
	for rows.Next() {
		var t models.DepartmentTotals
		if err := rows.Scan(&t.Department, &t.Revenue, &t.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan department totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department totals: %w", err)
	}
	return totals, nil
}

// ServiceBilling returns per-service billing history: the current list price
// plus the monthly billed totals over the window, oldest month first.
func (r *FinanceRepository) ServiceBilling(ctx context.Context, months int) ([]models.ServiceBilling, error) {
	query := `
		SELECT s.name, s.price, to_char(i.billed_at, 'YYYY-MM') AS month, SUM(i.amount) AS total
		FROM services s
		JOIN invoice_items i ON i.service_id = s.id
		WHERE i.billed_at >= date_trunc('month', now()) - ($1 || ' months')::interval
		GROUP BY s.name, s.price, month
		ORDER BY s.name, month`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("failed to query service billing: %w", err)
	}
	defer rows.Close()

	var billing []models.ServiceBilling
	for rows.Next() {
		var (
			service models.ServiceBilling
			row     models.MonthlyAmount
		)
		if err := rows.Scan(&service.Service, &service.CurrentPrice, &row.Month, &row.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan service billing: %w", err)
		}
		if n := len(billing); n > 0 && billing[n-1].Service == service.Service {
			billing[n-1].MonthlyTotals = append(billing[n-1].MonthlyTotals, row)
			continue
		}
		service.MonthlyTotals = []models.MonthlyAmount{row}
		billing = append(billing, service)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service billing: %w", err)
	}
	return billing, nil
}

func (r *FinanceRepository) queryMonthly(ctx context.Context, query string, args ...interface{}) ([]models.MonthlyAmount, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly aggregate: %w", err)
	}
	defer rows.Close()

	var amounts []models.MonthlyAmount
	for rows.Next() {
		var row models.MonthlyAmount
		if err := rows.Scan(&row.Month, &row.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly aggregate: %w", err)
		}
		amounts = append(amounts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly aggregate: %w", err)
	}
	return amounts, nil
}
