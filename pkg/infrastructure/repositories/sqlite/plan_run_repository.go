package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/repositories"
)

// timeLayout has fixed width so created_at sorts chronologically as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const planRunColumns = `id, created_at, initial_capacity, first_year, last_year, objective,
	total_revenue, total_budget, total_cost, total_savings, plans_json, costs_json`

// PlanRunRepository implements repositories.PlanRunRepository on SQLite.
// Plan records and cost breakdowns are stored as JSON documents.
type PlanRunRepository struct {
	db *sql.DB
}

// NewPlanRunRepository creates a new PlanRunRepository
func NewPlanRunRepository(db *sql.DB) *PlanRunRepository {
	return &PlanRunRepository{db: db}
}

var _ repositories.PlanRunRepository = (*PlanRunRepository)(nil)

func (r *PlanRunRepository) Save(ctx context.Context, run *entities.PlanRun) error {
	if run == nil {
		return fmt.Errorf("plan run is nil")
	}
	plans, err := json.Marshal(run.Plans)
	if err != nil {
		return fmt.Errorf("encoding plan records: %w", err)
	}
	costs, err := json.Marshal(run.Costs)
	if err != nil {
		return fmt.Errorf("encoding cost breakdowns: %w", err)
	}

	query := `INSERT OR REPLACE INTO plan_runs (` + planRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.InitialCapacity,
		run.FirstYear,
		run.LastYear,
		run.Objective,
		run.Summary.TotalRevenue.String(),
		run.Summary.TotalBudget.String(),
		run.Summary.TotalCost.String(),
		run.Summary.TotalSavings.String(),
		string(plans),
		string(costs),
	)
	if err != nil {
		return fmt.Errorf("inserting plan run: %w", err)
	}
	return nil
}

func (r *PlanRunRepository) Get(ctx context.Context, id string) (*entities.PlanRun, error) {
	query := `SELECT ` + planRunColumns + ` FROM plan_runs WHERE id = ?`
	run, err := scanPlanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrPlanRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading plan run %s: %w", id, err)
	}
	return run, nil
}

func (r *PlanRunRepository) List(ctx context.Context, limit int) ([]*entities.PlanRun, error) {
	query := `SELECT ` + planRunColumns + ` FROM plan_runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing plan runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.PlanRun
	for rows.Next() {
		run, err := scanPlanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing plan runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlanRun(s scanner) (*entities.PlanRun, error) {
	var run entities.PlanRun
	var createdAt, revenue, budget, cost, savings, plansJSON, costsJSON string
	err := s.Scan(
		&run.ID,
		&createdAt,
		&run.InitialCapacity,
		&run.FirstYear,
		&run.LastYear,
		&run.Objective,
		&revenue,
		&budget,
		&cost,
		&savings,
		&plansJSON,
		&costsJSON,
	)
	if err != nil {
		return nil, err
	}

	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	totals := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{revenue, &run.Summary.TotalRevenue},
		{budget, &run.Summary.TotalBudget},
		{cost, &run.Summary.TotalCost},
		{savings, &run.Summary.TotalSavings},
	}
	for _, t := range totals {
		if *t.dst, err = decimal.NewFromString(t.raw); err != nil {
			return nil, fmt.Errorf("parsing summary total %q: %w", t.raw, err)
		}
	}
	if err := json.Unmarshal([]byte(plansJSON), &run.Plans); err != nil {
		return nil, fmt.Errorf("decoding plan records: %w", err)
	}
	if err := json.Unmarshal([]byte(costsJSON), &run.Costs); err != nil {
		return nil, fmt.Errorf("decoding cost breakdowns: %w", err)
	}
	return &run, nil
}
