package vat

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Rule maps a half-open local-date range [From, next rule's From) to a VAT
// rate. A nil From marks the open-ended first range; the last rule runs to
// infinity, so unknown future instants resolve to the newest rate.
type Rule struct {
	From *civil.Date
	Rate decimal.Decimal
}

// Table is the ordered VAT rule table. Rates change on local calendar days,
// so lookups are evaluated in the region's civil time, never in UTC: around
// a rate-change boundary an hour's UTC date and local date can differ, and
// the local date decides the rate.
type Table struct {
	rules []Rule
}

// NewTable builds a table from rules ordered by From ascending.
// The first rule must be open-ended; later rules must be strictly ascending,
// which makes the ranges contiguous and non-overlapping by construction.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, errors.New("vat table needs at least one rule")
	}
	if rules[0].From != nil {
		return nil, errors.New("first vat rule must be open-ended")
	}
	for i := 1; i < len(rules); i++ {
		if rules[i].From == nil {
			return nil, errors.New("only the first vat rule may be open-ended")
		}
		if i > 1 && !rules[i-1].From.Before(*rules[i].From) {
			return nil, errors.New("vat rule dates must be strictly ascending")
		}
	}

	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Table{rules: copied}, nil
}

// RateFor returns the VAT rate applicable at the given instant, evaluated
// on the instant's calendar day in loc.
func (t *Table) RateFor(instant time.Time, loc *time.Location) decimal.Decimal {
	day := civil.DateOf(instant.In(loc))

	// Small fixed table; walk it back to front.
	for i := len(t.rules) - 1; i > 0; i-- {
		if !day.Before(*t.rules[i].From) {
			return t.rules[i].Rate
		}
	}
	return t.rules[0].Rate
}
