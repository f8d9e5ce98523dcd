package banner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

// DefaultDays is the length of a banner window when no end date is given.
const DefaultDays = 7

// Date is a request date given either as a calendar day (2006-01-02) or as
// an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// Ptr returns the wrapped time, or nil for a nil Date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Window resolves the dates of a new banner. A missing start is today, a
// missing end is start plus DefaultDays. Both are truncated to the day.
func Window(now time.Time, start, end *time.Time) (time.Time, time.Time, error) {
	from := Day(now)
	if start != nil {
		from = Day(*start)
	}

	to := from.AddDate(0, 0, DefaultDays)
	if end != nil {
		to = Day(*end)
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, errInvertedWindow()
	}
	return from, to, nil
}

// DefaultWindow is Window with neither date given.
func DefaultWindow(now time.Time) (time.Time, time.Time) {
	from, to, _ := Window(now, nil, nil)
	return from, to
}

// normalise truncates optional dates for the edit path, where omitted dates
// stay null.
func normalise(start, end *time.Time) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != nil {
		d := Day(*start)
		from = &d
	}
	if end != nil {
		d := Day(*end)
		to = &d
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, errInvertedWindow()
	}
	return from, to, nil
}

func errInvertedWindow() error {
	return apperror.Validation("Banner start date must not be after its end date",
		[]validation.FieldError{{Field: "endDate", Rule: "gtefield", Param: "startDate"}})
}
