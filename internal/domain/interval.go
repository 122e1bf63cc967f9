package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CivilDate is a timezone-naive calendar date. The engine never converts
// dates through time zones; the day of week is computed directly from the
// civil date with the standard calendar algorithm.
type CivilDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// NewCivilDate returns the civil date for the given year, month, and day.
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{Year: year, Month: month, Day: day}
}

// CivilDateOf extracts the civil date from t in t's own location.
func CivilDateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// ParseCivilDate parses a date in YYYY-MM-DD form.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return CivilDateOf(t), nil
}

// Weekday returns the day of week for the date.
func (d CivilDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the date n days after d.
func (d CivilDate) AddDays(n int) CivilDate {
	return CivilDateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Before reports whether d is earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is later than other.
func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

// IsZero reports whether d is the zero date.
func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (d CivilDate) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String formats the date as YYYY-MM-DD.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *CivilDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCivilDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a clock time expressed as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay returns the time of day for the given hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf extracts the time of day from t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses a time in HH:MM form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return TimeOfDayOf(t), nil
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes the time as an HH:MM string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an HH:MM string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeInterval is a half-open time range [Start, End) on a single civil date.
type TimeInterval struct {
	Date  CivilDate `json:"date"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewTimeInterval returns a TimeInterval for the given date and bounds.
func NewTimeInterval(date CivilDate, start, end TimeOfDay) TimeInterval {
	return TimeInterval{Date: date, Start: start, End: end}
}

// Validate reports whether the interval is well formed (start strictly
// before end).
func (i TimeInterval) Validate() error {
	if i.Start >= i.End {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidInput, i.Start, i.End)
	}
	return nil
}

// Overlaps reports whether i and other share any time on the same date.
// Touching endpoints do not overlap.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	if i.Date != other.Date {
		return false
	}
	return i.Start < other.End && i.End > other.Start
}

// Contains reports whether other lies entirely within i on the same date.
func (i TimeInterval) Contains(other TimeInterval) bool {
	if i.Date != other.Date {
		return false
	}
	return i.Start <= other.Start && other.End <= i.End
}

// String formats the interval as "YYYY-MM-DD HH:MM-HH:MM".
func (i TimeInterval) String() string {
	return fmt.Sprintf("%s %s-%s", i.Date, i.Start, i.End)
}
