package domain

import "github.com/shopspring/decimal"

// EnergySource identifies what a heating system burns or draws, and thereby
// which entry of the energy price map feeds its running cost
type EnergySource string

const (
	SourceElectricity  EnergySource = "ELECTRICITY"
	SourceDistrictHeat EnergySource = "DISTRICT_HEAT"
	SourceOil          EnergySource = "OIL"
	SourceWood         EnergySource = "WOOD"
)

// HeatingAlternative is one catalog entry in the heat-pump comparison: a
// heating system a household could switch to, with its default investment
// cost and efficiency.
type HeatingAlternative struct {
	Key            string
	DisplayName    string
	COP            decimal.Decimal // 1.0 for direct resistive heating
	InvestmentCost decimal.Decimal // EUR
	LifetimeYears  int
	Source         EnergySource
}

// Validate ensures the alternative adheres to domain rules
func (a *HeatingAlternative) Validate() error {
	if a.Key == "" {
		return &ValidationError{Field: "key", Reason: "alternative key cannot be empty"}
	}
	if a.COP.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "coefficient_of_performance", Reason: "COP must be positive"}
	}
	if a.InvestmentCost.IsNegative() {
		return &ValidationError{Field: "investment_cost", Reason: "investment cost cannot be negative"}
	}
	if a.LifetimeYears < 1 {
		return &ValidationError{Field: "expected_lifetime_years", Reason: "lifetime must be at least one year"}
	}
	switch a.Source {
	case SourceElectricity, SourceDistrictHeat, SourceOil, SourceWood:
	default:
		return &ValidationError{Field: "energy_source", Reason: "unknown energy source " + string(a.Source)}
	}
	return nil
}
