package pricing

import (
	"context"
	"time"

	"github.com/ripplecare/event-therapy-platform/internal/quotes"
	"github.com/ripplecare/event-therapy-platform/internal/schedule"
	"github.com/ripplecare/event-therapy-platform/internal/settings"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

// RuleSource supplies the weekend uplift percentage.
type RuleSource interface {
	WeekendUpliftPercent(ctx context.Context) (float64, error)
}

// TaxSource reads numeric system settings (the cached settings reader).
type TaxSource interface {
	Float(ctx context.Context, key string, fallback float64) float64
}

// Input describes one pricing run.
type Input struct {
	HourlyRate       float64
	Days             []quotes.Day
	Arrangement      quotes.Arrangement
	TherapistsNeeded int
	DiscountAmount   float64
}

// DayAmount is the per-day line of the breakdown.
type DayAmount struct {
	Date          time.Time `json:"date"`
	DayNumber     int       `json:"day_number"`
	Minutes       int       `json:"minutes"`
	Weekend       bool      `json:"weekend"`
	UpliftPercent float64   `json:"uplift_percent"`
	Amount        float64   `json:"amount"`
}

// Totals is the calculator result. TotalAmount is the sum of per-day
// uplifted amounts; BaseAmount reports the unuplifted sum and exists only so
// the uplift delta can be displayed, it is never used to re-derive the total.
type Totals struct {
	BaseAmount          float64     `json:"base_amount"`
	WeekendUpliftAmount float64     `json:"weekend_uplift_amount"`
	TotalAmount         float64     `json:"total_amount"`
	DiscountAmount      float64     `json:"discount_amount"`
	FinalAmount         float64     `json:"final_amount"`
	GSTAmount           float64     `json:"gst_amount"`
	Breakdown           []DayAmount `json:"breakdown"`
}

// Calculator computes quote totals. All randomness-free: identical inputs
// produce identical outputs, which the re-save workflow depends on.
type Calculator struct {
	rules          RuleSource
	tax            TaxSource
	defaultTaxRate float64
	logger         *logging.Logger
}

// NewCalculator builds a calculator. defaultTaxRate is the percentage used
// when system settings carry no tax_rate_percent.
func NewCalculator(rules RuleSource, tax TaxSource, defaultTaxRate float64, logger *logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Calculator{rules: rules, tax: tax, defaultTaxRate: defaultTaxRate, logger: logger}
}

// QuoteTotal resolves the uplift and tax rates, then runs the pure
// computation.
func (c *Calculator) QuoteTotal(ctx context.Context, in Input) (*Totals, error) {
	upliftPct, err := c.rules.WeekendUpliftPercent(ctx)
	if err != nil {
		return nil, err
	}
	taxRate := c.defaultTaxRate
	if c.tax != nil {
		taxRate = c.tax.Float(ctx, settings.KeyTaxRatePercent, c.defaultTaxRate)
	}
	totals := Compute(in, upliftPct, taxRate)
	return &totals, nil
}

// Compute is the deterministic core of the calculator. The total is the sum
// of per-day uplifted amounts, each rounded at the point of computation, so
// multi-day rounding never drifts with day order.
func Compute(in Input, upliftPct, taxRatePct float64) Totals {
	totals := Totals{DiscountAmount: schedule.RoundCents(in.DiscountAmount)}

	for i, day := range in.Days {
		minutes := day.Minutes()
		base := schedule.RoundCents(float64(minutes) / 60 * in.HourlyRate)
		amount := base
		weekend := schedule.IsWeekend(day.EventDate)
		pct := 0.0
		if weekend && upliftPct > 0 {
			pct = upliftPct
			amount = schedule.RoundCents(base * (1 + upliftPct/100))
		}
		dayNumber := day.DayNumber
		if dayNumber == 0 {
			dayNumber = i + 1
		}
		totals.Breakdown = append(totals.Breakdown, DayAmount{
			Date:          day.EventDate,
			DayNumber:     dayNumber,
			Minutes:       minutes,
			Weekend:       weekend,
			UpliftPercent: pct,
			Amount:        amount,
		})
		totals.BaseAmount = schedule.RoundCents(totals.BaseAmount + base)
		totals.TotalAmount = schedule.RoundCents(totals.TotalAmount + amount)
	}

	// Multiply staffing scales the whole engagement after the per-day
	// weekend summation: each therapist works the full schedule.
	if in.Arrangement == quotes.ArrangementMultiply && in.TherapistsNeeded > 1 {
		n := float64(in.TherapistsNeeded)
		totals.BaseAmount = schedule.RoundCents(totals.BaseAmount * n)
		totals.TotalAmount = schedule.RoundCents(totals.TotalAmount * n)
	}

	totals.WeekendUpliftAmount = schedule.RoundCents(totals.TotalAmount - totals.BaseAmount)
	totals.FinalAmount = schedule.RoundCents(totals.TotalAmount - totals.DiscountAmount)

	// GST is extracted from the GST-inclusive final amount.
	divisor := 1 + taxRatePct/100
	if divisor > 0 {
		totals.GSTAmount = schedule.RoundCents(totals.FinalAmount - totals.FinalAmount/divisor)
	}
	return totals
}
