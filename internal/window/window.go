package window

import (
	"fmt"
	"time"
)

const (
	// DefaultZone is the reference timezone for the night slate.
	DefaultZone = "Europe/Paris"

	// DefaultStartHour and DefaultEndHour bound the night window: a slate
	// runs from 18:00 local on the chosen date to 08:00 local the next morning.
	DefaultStartHour = 18
	DefaultEndHour   = 8

	// DateLayout is the calendar date format accepted by Compute.
	DateLayout = "2006-01-02"
)

// Window is a half-open UTC interval [Start, End) covering one night slate.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window length. It varies around DST transitions.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Compute returns the night window for a calendar date (YYYY-MM-DD) using the
// default Paris bounds.
func Compute(date string) (Window, error) {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		return Window{}, fmt.Errorf("loading timezone %s: %w", DefaultZone, err)
	}
	return ComputeIn(date, DefaultStartHour, DefaultEndHour, loc)
}

// ComputeIn returns the window [date startHour, date+1 endHourNextDay) in loc,
// converted to UTC. Conversion goes through the location's real offset rules,
// so a window spanning a DST transition comes out shorter or longer than usual.
func ComputeIn(date string, startHour, endHourNextDay int, loc *time.Location) (Window, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}

	start := time.Date(d.Year(), d.Month(), d.Day(), startHour, 0, 0, 0, loc)
	next := d.AddDate(0, 0, 1)
	end := time.Date(next.Year(), next.Month(), next.Day(), endHourNextDay, 0, 0, 0, loc)

	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// Today returns the current calendar date in the default zone.
func Today() string {
	return time.Now().In(Location()).Format(DateLayout)
}

// Location returns the default zone, falling back to UTC when tzdata is
// unavailable. Display formatting only; Compute fails loud instead.
func Location() *time.Location {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
