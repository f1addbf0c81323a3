package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpotPriceHour is one hourly wholesale price row for a market region.
// TS is hour-aligned UTC. VatRate is resolved from the VAT rule table when
// the row is ingested and stored with it, so historical rows stay stable
// even after VAT law changes.
type SpotPriceHour struct {
	ID         uuid.UUID       `json:"id"`
	Region     string          `json:"region"`
	TS         time.Time       `json:"utc_timestamp"`
	PriceNoTax decimal.Decimal `json:"price_without_tax"` // cents/kWh, may legitimately be negative
	VatRate    decimal.Decimal `json:"vat_rate"`          // e.g. 0.255
}

// PriceWithTax returns the consumer price in cents/kWh. VAT is never applied
// to a negative wholesale price.
func (h SpotPriceHour) PriceWithTax() decimal.Decimal {
	if h.PriceNoTax.IsNegative() {
		return h.PriceNoTax
	}
	return h.PriceNoTax.Mul(decimal.NewFromInt(1).Add(h.VatRate))
}

// LocalHour returns the row's timestamp truncated to the hour in loc
func (h SpotPriceHour) LocalHour(loc *time.Location) time.Time {
	t := h.TS.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
}

// Validate ensures the row adheres to domain rules
func (h *SpotPriceHour) Validate() error {
	if h.Region == "" {
		return &ValidationError{Field: "region", Reason: "region cannot be empty"}
	}
	if h.TS.IsZero() {
		return &ValidationError{Field: "utc_timestamp", Reason: "timestamp is required"}
	}
	if !h.TS.Equal(h.TS.Truncate(time.Hour)) {
		return &ValidationError{Field: "utc_timestamp", Reason: "timestamp must be hour-aligned"}
	}
	if h.VatRate.IsNegative() || h.VatRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return &ValidationError{Field: "vat_rate", Reason: "vat rate must be within [0, 1)"}
	}
	return nil
}
