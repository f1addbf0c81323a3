package domain

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeteringType represents how a contract's energy price varies over time
type MeteringType string

const (
	MeteringGeneral  MeteringType = "GENERAL"  // one flat energy price
	MeteringTime     MeteringType = "TIME"     // separate day and night prices
	MeteringSeasonal MeteringType = "SEASONAL" // winter-day price vs. everything else
)

// PricingModel represents how a contract's price is set against the market
type PricingModel string

const (
	PricingFixed  PricingModel = "FIXED"
	PricingSpot   PricingModel = "SPOT"
	PricingHybrid PricingModel = "HYBRID"
)

// ConsumptionLimits restricts the yearly consumption a contract is sold for.
// A nil limit means unbounded on that side.
type ConsumptionLimits struct {
	MinKWhYear *decimal.Decimal
	MaxKWhYear *decimal.Decimal
}

// Allows reports whether the yearly consumption falls within the limits
func (l *ConsumptionLimits) Allows(kwhYear decimal.Decimal) bool {
	if l == nil {
		return true
	}
	if l.MinKWhYear != nil && kwhYear.LessThan(*l.MinKWhYear) {
		return false
	}
	if l.MaxKWhYear != nil && kwhYear.GreaterThan(*l.MaxKWhYear) {
		return false
	}
	return true
}

// Contract represents an electricity sales contract offered on the site
type Contract struct {
	ID         uuid.UUID
	Name       string
	Metering   MeteringType
	Pricing    PricingModel
	Limits     *ConsumptionLimits
	Components []PriceComponent
}

// RequiredComponentTypes returns the energy component types the contract's
// metering mandates. The monthly fee and spot margin are optional extras.
func (c *Contract) RequiredComponentTypes() []PriceComponentType {
	switch c.Metering {
	case MeteringTime:
		return []PriceComponentType{ComponentDayTime, ComponentNightTime}
	case MeteringSeasonal:
		return []PriceComponentType{ComponentSeasonalWinterDay, ComponentSeasonalOther}
	default:
		return []PriceComponentType{ComponentGeneral}
	}
}

// CurrentComponent returns the component of the given type whose effective
// date is the greatest one not after asOf. Future-dated rows are invisible,
// older rows are shadowed. Returns nil when no row qualifies.
func (c *Contract) CurrentComponent(t PriceComponentType, asOf civil.Date) *PriceComponent {
	var current *PriceComponent
	for i := range c.Components {
		pc := &c.Components[i]
		if pc.Type != t || asOf.Before(pc.EffectiveDate) {
			continue
		}
		if current == nil || current.EffectiveDate.Before(pc.EffectiveDate) {
			current = pc
		}
	}
	return current
}

// Validate ensures the contract adheres to domain rules
func (c *Contract) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "contract name cannot be empty"}
	}

	switch c.Metering {
	case MeteringGeneral, MeteringTime, MeteringSeasonal:
	default:
		return &ValidationError{Field: "metering", Reason: "unknown metering type " + string(c.Metering)}
	}

	switch c.Pricing {
	case PricingFixed, PricingSpot, PricingHybrid:
	default:
		return &ValidationError{Field: "pricing_model", Reason: "unknown pricing model " + string(c.Pricing)}
	}

	if l := c.Limits; l != nil && l.MinKWhYear != nil && l.MaxKWhYear != nil {
		if l.MaxKWhYear.LessThan(*l.MinKWhYear) {
			return &ValidationError{Field: "consumption_limits", Reason: "max kWh limit below min"}
		}
	}

	for i := range c.Components {
		if err := c.Components[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}
