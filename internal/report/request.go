package report

import (
	"errors"
	"fmt"
	"strings"

	"incomebook/internal/core"
)

// Kind names a report shape.
type Kind string

const (
	KindDetailed Kind = "detailed"
	KindMonthly  Kind = "monthly"
	KindYearly   Kind = "yearly"
)

var (
	ErrUnknownKind  = errors.New("unknown report kind")
	ErrInvalidRange = errors.New("report range start is after its end")
	ErrInvalidYear  = errors.New("invalid report year")
)

// Request is one of Detailed, Monthly or Yearly.
type Request interface {
	Kind() Kind
	isRequest()
}

// Detailed lists entries dated within [From, To]. A zero bound is open.
type Detailed struct {
	From core.Date
	To   core.Date
}

// Monthly lists the monthly buckets of Year, or of every year when Year is 0.
type Monthly struct {
	Year int
}

// Yearly lists every year in the entry history.
type Yearly struct{}

func (Detailed) Kind() Kind { return KindDetailed }
func (Monthly) Kind() Kind  { return KindMonthly }
func (Yearly) Kind() Kind   { return KindYearly }

func (Detailed) isRequest() {}
func (Monthly) isRequest()  {}
func (Yearly) isRequest()   {}

// Contains reports whether d lies inside the inclusive range.
func (r Detailed) Contains(d core.Date) bool {
	if !r.From.IsZero() && d.Before(r.From.Time) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To.Time) {
		return false
	}
	return true
}

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDetailed, KindMonthly, KindYearly:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NewRequest assembles a request from loosely typed parameters such as
// query strings or queue messages. Parameters that do not apply to the kind
// are ignored.
func NewRequest(kind Kind, from, to string, year int) (Request, error) {
	var req Request
	switch kind {
	case KindDetailed:
		var r Detailed
		var err error
		if strings.TrimSpace(from) != "" {
			if r.From, err = core.ParseDate(from); err != nil {
				return nil, err
			}
		}
		if strings.TrimSpace(to) != "" {
			if r.To, err = core.ParseDate(to); err != nil {
				return nil, err
			}
		}
		req = r
	case KindMonthly:
		req = Monthly{Year: year}
	case KindYearly:
		req = Yearly{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the kind-specific fields of req.
func Validate(req Request) error {
	switch r := req.(type) {
	case Detailed:
		if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To.Time) {
			return fmt.Errorf("%w: %s > %s", ErrInvalidRange, r.From, r.To)
		}
	case Monthly:
		if r.Year < 0 || r.Year > 9999 {
			return fmt.Errorf("%w: %d", ErrInvalidYear, r.Year)
		}
	case Yearly:
	default:
		return ErrUnknownKind
	}
	return nil
}
