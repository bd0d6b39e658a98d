package therapists

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads therapist rosters from Postgres.
type Store struct {
	db DB
}

// NewStore creates a therapists store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// ListActive returns all bookable therapist profiles.
func (s *Store) ListActive(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, full_name, gender, rating, hourly_rate, afterhours_rate, active
		FROM therapist_profiles
		WHERE active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("therapists: list active: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Gender, &p.Rating, &p.HourlyRate, &p.AfterhoursRate, &p.Active); err != nil {
			return nil, fmt.Errorf("therapists: scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("therapists: iterate profiles: %w", err)
	}
	return profiles, nil
}

// WeeklyWindowsFor returns recurring coverage windows for one weekday,
// keyed by therapist id. Malformed clock times are skipped rather than
// failing the whole lookup.
func (s *Store) WeeklyWindowsFor(ctx context.Context, dayOfWeek int) (map[int64][]WeeklyWindow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT therapist_id, day_of_week, start_time, end_time
		FROM therapist_availability
		WHERE day_of_week = $1`, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("therapists: weekly windows: %w", err)
	}
	defer rows.Close()

	windows := make(map[int64][]WeeklyWindow)
	for rows.Next() {
		var (
			therapistID int64
			dow         int
			startRaw    string
			endRaw      string
		)
		if err := rows.Scan(&therapistID, &dow, &startRaw, &endRaw); err != nil {
			return nil, fmt.Errorf("therapists: scan weekly window: %w", err)
		}
		start, err := schedule.ParseTimeOfDay(startRaw)
		if err != nil {
			continue
		}
		end, err := schedule.ParseTimeOfDay(endRaw)
		if err != nil {
			continue
		}
		windows[therapistID] = append(windows[therapistID], WeeklyWindow{
			TherapistID: therapistID,
			DayOfWeek:   dow,
			Start:       start,
			End:         end,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("therapists: iterate weekly windows: %w", err)
	}
	return windows, nil
}

// OnTimeOff returns the set of therapist ids with an active blackout
// spanning the given date.
func (s *Store) OnTimeOff(ctx context.Context, date time.Time) (map[int64]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT therapist_id
		FROM therapist_time_off
		WHERE active AND $1::date BETWEEN start_date AND end_date`, dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("therapists: time off lookup: %w", err)
	}
	defer rows.Close()

	off := make(map[int64]bool)
	for rows.Next() {
		var therapistID int64
		if err := rows.Scan(&therapistID); err != nil {
			return nil, fmt.Errorf("therapists: scan time off: %w", err)
		}
		off[therapistID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("therapists: iterate time off: %w", err)
	}
	return off, nil
}

// Get loads a single profile by id.
func (s *Store) Get(ctx context.Context, id int64) (*Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx, `
		SELECT id, full_name, gender, rating, hourly_rate, afterhours_rate, active
		FROM therapist_profiles
		WHERE id = $1`, id).
		Scan(&p.ID, &p.FullName, &p.Gender, &p.Rating, &p.HourlyRate, &p.AfterhoursRate, &p.Active)
	if err != nil {
		return nil, fmt.Errorf("therapists: load profile %d: %w", id, err)
	}
	return &p, nil
}
