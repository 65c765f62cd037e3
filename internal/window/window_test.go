package window

import (
	"testing"
	"time"
)

func TestComputeDefaultBounds(t *testing.T) {
	// 2024-03-15 is before the spring DST switch, so Paris is UTC+1:
	// 18:00 local = 17:00Z, next-day 08:00 local = 07:00Z.
	w, err := Compute("2024-03-15")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	wantStart := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 16, 7, 0, 0, 0, time.UTC)

	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
}

func TestComputeDuration(t *testing.T) {
	tests := []struct {
		name string
		date string
		want time.Duration
	}{
		{"regular night", "2024-03-15", 14 * time.Hour},
		{"midsummer night", "2024-07-10", 14 * time.Hour},
		{"spring forward", "2024-03-30", 13 * time.Hour},
		{"fall back", "2024-10-26", 15 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Compute(tt.date)
			if err != nil {
				t.Fatalf("Compute(%q) returned error: %v", tt.date, err)
			}
			if got := w.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
			if !w.Start.Before(w.End) {
				t.Errorf("Start %v is not before End %v", w.Start, w.End)
			}
		})
	}
}

func TestComputeInCustomHours(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("loading Europe/Paris: %v", err)
	}

	w, err := ComputeIn("2024-03-15", 16, 6, paris)
	if err != nil {
		t.Fatalf("ComputeIn returned error: %v", err)
	}

	wantStart := time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 16, 5, 0, 0, 0, time.UTC)

	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
}

func TestComputeInvalidDate(t *testing.T) {
	for _, date := range []string{"", "2024-13-01", "15-03-2024", "tonight"} {
		if _, err := Compute(date); err == nil {
			t.Errorf("Compute(%q) = nil error, want invalid date error", date)
		}
	}
}

func TestWindowContains(t *testing.T) {
	w, err := Compute("2024-03-15")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if !w.Contains(w.Start) {
		t.Error("Contains(Start) = false, want true (interval is closed at start)")
	}
	if w.Contains(w.End) {
		t.Error("Contains(End) = true, want false (interval is open at end)")
	}
	if !w.Contains(w.Start.Add(7 * time.Hour)) {
		t.Error("Contains(midpoint) = false, want true")
	}
	if w.Contains(w.Start.Add(-time.Minute)) {
		t.Error("Contains(before start) = true, want false")
	}
}

func TestTodayFormat(t *testing.T) {
	got := Today()
	if _, err := time.Parse(DateLayout, got); err != nil {
		t.Errorf("Today() = %q, not a valid YYYY-MM-DD date: %v", got, err)
	}
}
