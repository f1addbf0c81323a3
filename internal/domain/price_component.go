package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// PriceComponentType identifies which price of a contract a component carries
type PriceComponentType string

const (
	ComponentGeneral           PriceComponentType = "GENERAL"
	ComponentMonthly           PriceComponentType = "MONTHLY"
	ComponentDayTime           PriceComponentType = "DAY_TIME"
	ComponentNightTime         PriceComponentType = "NIGHT_TIME"
	ComponentSeasonalWinterDay PriceComponentType = "SEASONAL_WINTER_DAY"
	ComponentSeasonalOther     PriceComponentType = "SEASONAL_OTHER"
	ComponentSpotMargin        PriceComponentType = "SPOT_MARGIN"
)

// PriceUnit is the unit a component price is quoted in
type PriceUnit string

const (
	UnitCentsPerKWh PriceUnit = "CENTS_PER_KWH"
	UnitEURPerMonth PriceUnit = "EUR_PER_MONTH"
)

// DiscountKind is the tagged variant for the mutually exclusive discount shapes.
// A component carries at most one kind; the payload fields of the other kinds
// are ignored.
type DiscountKind string

const (
	DiscountNone        DiscountKind = "NONE"
	DiscountFirstMonths DiscountKind = "FIRST_MONTHS"
	DiscountFirstKWh    DiscountKind = "FIRST_KWH"
)

// Discount is an introductory price reduction attached to a price component.
// Value is either a percentage (0-100) of the price, or an absolute amount:
// in the component's own unit for plain and first-kWh discounts, and EUR off
// each affected monthly bucket for first-months discounts.
type Discount struct {
	Kind         DiscountKind
	Value        decimal.Decimal
	IsPercentage bool
	Months       int         // payload for DiscountFirstMonths
	KWh          int         // payload for DiscountFirstKWh
	UntilDate    *civil.Date // discount is void on and after this local date
}

// Active reports whether the discount still applies on the given local date.
// DiscountNone only means the discount is not bounded to introductory months
// or kWh; a non-zero value still reduces the price until UntilDate passes.
func (d *Discount) Active(asOf civil.Date) bool {
	if d == nil || d.Value.IsZero() {
		return false
	}
	if d.UntilDate != nil && !asOf.Before(*d.UntilDate) {
		return false
	}
	return true
}

// PriceComponent is one dated price row of a contract.
// Rows are immutable: a price change is a new row with a later EffectiveDate,
// older rows are retained for history and never mutated.
type PriceComponent struct {
	Type          PriceComponentType
	Price         decimal.Decimal
	Unit          PriceUnit
	EffectiveDate civil.Date
	Discount      *Discount
}

// Validate ensures the component adheres to domain rules
func (c *PriceComponent) Validate() error {
	switch c.Type {
	case ComponentGeneral, ComponentMonthly, ComponentDayTime, ComponentNightTime,
		ComponentSeasonalWinterDay, ComponentSeasonalOther, ComponentSpotMargin:
	default:
		return &ValidationError{Field: "type", Reason: "unknown price component type " + string(c.Type)}
	}

	switch c.Unit {
	case UnitCentsPerKWh, UnitEURPerMonth:
	default:
		return &ValidationError{Field: "unit", Reason: "unknown price unit " + string(c.Unit)}
	}

	if c.Type == ComponentMonthly && c.Unit != UnitEURPerMonth {
		return &ValidationError{Field: "unit", Reason: "monthly fee must be quoted per month"}
	}
	if c.Type != ComponentMonthly && c.Unit != UnitCentsPerKWh {
		return &ValidationError{Field: "unit", Reason: "energy component must be quoted per kWh"}
	}

	if !c.EffectiveDate.IsValid() {
		return &ValidationError{Field: "effective_date", Reason: "effective date is required"}
	}

	if d := c.Discount; d != nil {
		switch d.Kind {
		case DiscountNone, DiscountFirstMonths, DiscountFirstKWh:
		default:
			return &ValidationError{Field: "discount.kind", Reason: "unknown discount kind " + string(d.Kind)}
		}
		if d.Kind == DiscountFirstMonths && (d.Months < 1 || d.Months > 12) {
			return &ValidationError{Field: "discount.months", Reason: "first-months discount must cover 1..12 months"}
		}
		if d.Kind == DiscountFirstKWh && d.KWh < 1 {
			return &ValidationError{Field: "discount.kwh", Reason: "first-kWh discount must cover at least 1 kWh"}
		}
		if d.IsPercentage && (d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(100))) {
			return &ValidationError{Field: "discount.value", Reason: "percentage discount must be between 0 and 100"}
		}
	}

	return nil
}
