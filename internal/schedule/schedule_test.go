package schedule

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		raw     string
		want    TimeOfDay
		wantErr bool
	}{
		{raw: "09:00", want: 540},
		{raw: "23:59", want: 1439},
		{raw: "00:00", want: 0},
		{raw: "10:30:00", want: 630},
		{raw: " 15:04 ", want: 904},
		{raw: "24:00", wantErr: true},
		{raw: "10:60", wantErr: true},
		{raw: "banana", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error, got %v", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if s := TimeOfDay(540).String(); s != "09:00" {
		t.Errorf("String() = %q, want 09:00", s)
	}
	if s := TimeOfDay(1439).String(); s != "23:59" {
		t.Errorf("String() = %q, want 23:59", s)
	}
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	got := TimeOfDay(630).At(date)
	want := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At() = %s, want %s", got, want)
	}
}

func TestConflictsSymmetry(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	buffer := 30 * time.Minute
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "identical intervals",
			a:    NewInterval(base, 60),
			b:    NewInterval(base, 60),
			want: true,
		},
		{
			name: "back to back collide through buffer",
			a:    NewInterval(base, 60),
			b:    NewInterval(base.Add(time.Hour), 60),
			want: true,
		},
		{
			name: "exactly two buffers apart",
			a:    NewInterval(base, 60),
			b:    NewInterval(base.Add(2*time.Hour), 60),
			want: false,
		},
		{
			name: "just inside the buffered window",
			a:    NewInterval(base, 60),
			b:    NewInterval(base.Add(119*time.Minute), 60),
			want: true,
		},
		{
			name: "far apart",
			a:    NewInterval(base, 60),
			b:    NewInterval(base.Add(6*time.Hour), 60),
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Conflicts(tc.a, tc.b, buffer)
			if got != tc.want {
				t.Errorf("Conflicts(a,b) = %v, want %v", got, tc.want)
			}
			if mirror := Conflicts(tc.b, tc.a, buffer); mirror != got {
				t.Errorf("Conflicts is asymmetric: a,b=%v b,a=%v", got, mirror)
			}
		})
	}
}

func TestConflictsZeroBuffer(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	a := NewInterval(base, 60)
	b := NewInterval(base.Add(time.Hour), 60)
	if Conflicts(a, b, 0) {
		t.Error("adjacent intervals should not conflict with zero buffer")
	}
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	mon := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !IsWeekend(sat) || !IsWeekend(sun) {
		t.Error("Saturday and Sunday should classify as weekend")
	}
	if IsWeekend(mon) {
		t.Error("Monday should not classify as weekend")
	}
}

func TestDayMinutesHybrid(t *testing.T) {
	start, _ := ParseTimeOfDay("10:00")
	finish, _ := ParseTimeOfDay("13:00")

	if got := DayMinutes(240, start, finish); got != 240 {
		t.Errorf("stored duration should win, got %d", got)
	}
	if got := DayMinutes(0, start, finish); got != 180 {
		t.Errorf("derived duration = %d, want 180", got)
	}
	if got := DayMinutes(0, finish, start); got != 0 {
		t.Errorf("inverted window should resolve to 0, got %d", got)
	}
}

func TestRoundCents(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{in: 1.005, want: 1.01},
		{in: 269.999999, want: 270},
		{in: 324.0, want: 324},
		{in: -1.005, want: -1.01},
	}
	for _, tc := range cases {
		if got := RoundCents(tc.in); got != tc.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFee(t *testing.T) {
	if got := Fee(90, 90); got != 135 {
		t.Errorf("Fee(90m, $90/h) = %v, want 135", got)
	}
	if got := Fee(0, 90); got != 0 {
		t.Errorf("Fee(0m) = %v, want 0", got)
	}
	if got := Fee(60, 0); got != 0 {
		t.Errorf("zero rate fee = %v, want 0", got)
	}
}
