// Package pricing computes the monetary total of a quote: per-day base
// amounts, the weekend uplift sourced from the time_pricing_rules table,
// multiply-arrangement scaling and the GST extraction.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RuleStore reads uplift percentages from time_pricing_rules.
type RuleStore struct {
	db DB
}

// NewRuleStore creates a pricing rule store.
func NewRuleStore(db DB) *RuleStore {
	return &RuleStore{db: db}
}

// WeekendUpliftPercent returns the active weekend uplift percentage, or 0
// when no rule is configured.
func (s *RuleStore) WeekendUpliftPercent(ctx context.Context) (float64, error) {
	var pct float64
	err := s.db.QueryRow(ctx, `
		SELECT uplift_percent
		FROM time_pricing_rules
		WHERE rule_type = 'weekend' AND active
		ORDER BY id DESC
		LIMIT 1`).Scan(&pct)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pricing: weekend uplift lookup: %w", err)
	}
	return pct, nil
}
