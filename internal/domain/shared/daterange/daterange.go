package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRange  = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate   = errors.New("daterange: invalid date")
	ErrUnknownPolicy = errors.New("daterange: unknown overlap policy")
)

// DateRange represents a stay between checkIn and checkOut.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// ParseRange parses both bounds and validates the result.
func ParseRange(checkIn, checkOut string) (DateRange, error) {
	in, err := Parse(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := Parse(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

var layouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
}

// Parse accepts an ISO-8601 calendar date or date-time. Values without an
// offset are read as UTC.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps reports a strict intersection; shared boundaries do not count.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// Touches reports an intersection where shared boundaries count.
func (dr DateRange) Touches(other DateRange) bool {
	return !dr.CheckIn.After(other.CheckOut) && !other.CheckIn.After(dr.CheckOut)
}

// Conflicts applies the overlap rule selected by policy.
func (dr DateRange) Conflicts(other DateRange, policy OverlapPolicy) bool {
	if policy == Strict {
		return dr.Overlaps(other)
	}
	return dr.Touches(other)
}

func (dr DateRange) String() string {
	return dr.CheckIn.Format(time.RFC3339) + "/" + dr.CheckOut.Format(time.RFC3339)
}

// OverlapPolicy selects how reservation boundaries are compared.
type OverlapPolicy int

const (
	// Inclusive treats a checkout equal to another checkin as a conflict.
	Inclusive OverlapPolicy = iota
	// Strict allows back-to-back stays.
	Strict
)

func ParsePolicy(raw string) (OverlapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "inclusive":
		return Inclusive, nil
	case "strict":
		return Strict, nil
	default:
		return Inclusive, fmt.Errorf("%w: %s", ErrUnknownPolicy, raw)
	}
}

func (p OverlapPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "inclusive"
}
