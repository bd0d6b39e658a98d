package bookings

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

var (
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	tenAM    = mustTime("10:00")
)

func mustTime(raw string) schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func twoDayQuote() (QuoteInfo, []DayInfo) {
	quote := QuoteInfo{
		ID:            42,
		TotalAmount:   594,
		Arrangement:   ArrangementSplit,
		CustomerName:  "Dana Li",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "+61400000000",
	}
	days := []DayInfo{
		{Date: monday, Minutes: 180},
		{Date: saturday, Minutes: 180},
	}
	return quote, days
}

func fourAssignments() []Assignment {
	return []Assignment{
		{Date: monday, Start: tenAM, TherapistID: 1, HourlyRate: 90},
		{Date: monday, Start: tenAM, TherapistID: 2, HourlyRate: 90},
		{Date: saturday, Start: tenAM, TherapistID: 1, HourlyRate: 110},
		{Date: saturday, Start: tenAM, TherapistID: 2, HourlyRate: 110},
	}
}

func newTestMaterializer(mode SplitMode) *Materializer {
	return NewMaterializer(nil, mode, logging.New("error"))
}

func TestBuildRejectsEmptyAssignments(t *testing.T) {
	quote, days := twoDayQuote()
	_, err := newTestMaterializer(SplitByQuote).Build(quote, days, nil)
	if !errors.Is(err, ErrNoAssignments) {
		t.Fatalf("expected ErrNoAssignments, got %v", err)
	}
}

func TestBuildRejectsIncompleteQuote(t *testing.T) {
	m := newTestMaterializer(SplitByQuote)
	quote, days := twoDayQuote()

	broke := quote
	broke.TotalAmount = 0
	if _, err := m.Build(broke, days, fourAssignments()); !errors.Is(err, ErrQuoteIncomplete) {
		t.Fatalf("zero total: expected ErrQuoteIncomplete, got %v", err)
	}

	if _, err := m.Build(quote, []DayInfo{{Date: monday, Minutes: 0}}, fourAssignments()); !errors.Is(err, ErrQuoteIncomplete) {
		t.Fatalf("no duration: expected ErrQuoteIncomplete, got %v", err)
	}
}

func TestBuildSplitDurations(t *testing.T) {
	quote, days := twoDayQuote()
	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("expected 4 bookings, got %d", len(batch))
	}
	for i, b := range batch {
		if b.DurationMinutes != 90 {
			t.Errorf("booking %d duration = %d, want 90 (two therapists split 180m)", i, b.DurationMinutes)
		}
	}
	// Fee is 1.5h at the assignment's rate.
	if batch[0].TherapistFee != 135 {
		t.Errorf("weekday fee = %v, want 135", batch[0].TherapistFee)
	}
	if batch[2].TherapistFee != 165 {
		t.Errorf("weekend fee = %v, want 165", batch[2].TherapistFee)
	}
}

func TestBuildMultiplyUsesFullDay(t *testing.T) {
	quote, days := twoDayQuote()
	quote.Arrangement = ArrangementMultiply
	quote.TherapistsNeeded = 2

	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var total int
	for _, b := range batch {
		if b.DurationMinutes != 180 {
			t.Errorf("multiply duration = %d, want full 180", b.DurationMinutes)
		}
		total += b.DurationMinutes
	}
	// Multiply across 2 therapists doubles each day's worked minutes.
	if total != 720 {
		t.Errorf("total multiply minutes = %d, want 720", total)
	}
}

func TestSplitMultiplyDuality(t *testing.T) {
	quote, days := twoDayQuote()
	m := newTestMaterializer(SplitByQuote)

	split, err := m.Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("split Build failed: %v", err)
	}
	perDay := make(map[int]int)
	for _, b := range split {
		perDay[b.QuoteDayNumber] += b.DurationMinutes
	}
	for day, sum := range perDay {
		if sum != 180 {
			t.Errorf("split day %d minutes = %d, want the day duration 180", day, sum)
		}
	}
}

func TestBuildDayNumberingFollowsFirstSeenOrder(t *testing.T) {
	quote, days := twoDayQuote()
	// Saturday appears first in the assignment list, so it becomes day 1
	// regardless of calendar order.
	assignments := []Assignment{
		{Date: saturday, Start: tenAM, TherapistID: 1, HourlyRate: 110},
		{Date: monday, Start: tenAM, TherapistID: 1, HourlyRate: 90},
		{Date: saturday, Start: tenAM, TherapistID: 2, HourlyRate: 110},
	}
	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, assignments)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if batch[0].QuoteDayNumber != 1 || batch[2].QuoteDayNumber != 1 {
		t.Errorf("saturday bookings should be day 1, got %d and %d", batch[0].QuoteDayNumber, batch[2].QuoteDayNumber)
	}
	if batch[1].QuoteDayNumber != 2 {
		t.Errorf("monday booking should be day 2, got %d", batch[1].QuoteDayNumber)
	}
	if batch[0].BookingID != "BK-42-1-1" || batch[2].BookingID != "BK-42-1-2" {
		t.Errorf("unexpected booking ids: %s, %s", batch[0].BookingID, batch[2].BookingID)
	}
}

func TestBuildFlatMoneySplitWholeQuote(t *testing.T) {
	quote, days := twoDayQuote()
	quote.DiscountAmount = 40
	quote.GSTAmount = 54

	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, b := range batch {
		if b.Price != 148.5 {
			t.Errorf("booking %d price = %v, want 148.50 (594/4)", i, b.Price)
		}
		if b.DiscountAmount != 10 {
			t.Errorf("booking %d discount = %v, want 10", i, b.DiscountAmount)
		}
		if b.TaxRateAmount != 13.5 {
			t.Errorf("booking %d gst = %v, want 13.5", i, b.TaxRateAmount)
		}
		if b.NetPrice != 138.5 {
			t.Errorf("booking %d net = %v, want 138.5", i, b.NetPrice)
		}
	}
}

func TestBuildPerDayMoneySplit(t *testing.T) {
	quote, days := twoDayQuote()
	assignments := []Assignment{
		{Date: monday, Start: tenAM, TherapistID: 1, HourlyRate: 90},
		{Date: monday, Start: tenAM, TherapistID: 2, HourlyRate: 90},
		{Date: saturday, Start: tenAM, TherapistID: 1, HourlyRate: 110},
	}
	batch, err := newTestMaterializer(SplitByDay).Build(quote, days, assignments)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if batch[0].Price != 297 || batch[1].Price != 297 {
		t.Errorf("monday prices = %v/%v, want 297 each (594/2)", batch[0].Price, batch[1].Price)
	}
	if batch[2].Price != 594 {
		t.Errorf("saturday price = %v, want 594 (sole assignment that day)", batch[2].Price)
	}
}

func TestBuildAverageFallbackForUnmatchedDate(t *testing.T) {
	quote, _ := twoDayQuote()
	days := []DayInfo{
		{Date: monday, Minutes: 120},
		{Date: saturday, Minutes: 240},
	}
	stray := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, []Assignment{
		{Date: stray, Start: tenAM, TherapistID: 1, HourlyRate: 90},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if batch[0].DurationMinutes != 180 {
		t.Errorf("unmatched date duration = %d, want average 180", batch[0].DurationMinutes)
	}
}

func TestBuildZeroRateToleratedWithZeroFee(t *testing.T) {
	quote, days := twoDayQuote()
	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, []Assignment{
		{Date: monday, Start: tenAM, TherapistID: 3, HourlyRate: 0},
	})
	if err != nil {
		t.Fatalf("zero rate must not fail the build: %v", err)
	}
	if batch[0].TherapistFee != 0 {
		t.Errorf("zero-rate fee = %v, want 0", batch[0].TherapistFee)
	}
}

func TestBuildCorporateSnapshotOverride(t *testing.T) {
	quote, days := twoDayQuote()
	quote.CompanyName = "Acme Pty Ltd"
	quote.CorporateContact = "Priya Shah"

	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if batch[0].CustomerName != "Priya Shah" {
		t.Errorf("snapshot name = %q, want corporate contact", batch[0].CustomerName)
	}

	quote.CompanyName = ""
	batch, err = newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if batch[0].CustomerName != "Dana Li" {
		t.Errorf("snapshot name = %q, want personal contact", batch[0].CustomerName)
	}
}

func TestBuildDeterministic(t *testing.T) {
	quote, days := twoDayQuote()
	m := newTestMaterializer(SplitByQuote)

	first, err := m.Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := m.Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Build over identical inputs diverged")
	}
}

func TestBuildPriceSumReconciles(t *testing.T) {
	quote, days := twoDayQuote()
	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var sum float64
	for _, b := range batch {
		sum += b.Price
	}
	if schedule.RoundCents(sum) != quote.TotalAmount {
		t.Errorf("price sum = %v, want %v", sum, quote.TotalAmount)
	}
}

func TestBuildBookingTimeIsUTCInstant(t *testing.T) {
	quote, days := twoDayQuote()
	batch, err := newTestMaterializer(SplitByQuote).Build(quote, days, fourAssignments())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !batch[0].BookingTime.Equal(want) {
		t.Errorf("booking time = %s, want %s", batch[0].BookingTime, want)
	}
}
