package heatpump

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Request is one comparison run: the household's current heating method,
// its yearly thermal heating need, and the energy prices to cost against.
// InvestmentOverrides lets a user plug in a real quote for an alternative
// without touching the shared catalog.
type Request struct {
	CurrentMethod       domain.HeatingMethod
	HeatingNeedKWh      decimal.Decimal // thermal kWh/year
	EnergyPrices        map[domain.EnergySource]decimal.Decimal // cents/kWh
	InvestmentOverrides map[string]decimal.Decimal              // EUR, by alternative key
}

// UpdateInvestment overrides the investment cost of one alternative for
// this request only
func (r *Request) UpdateInvestment(key string, value decimal.Decimal) {
	if r.InvestmentOverrides == nil {
		r.InvestmentOverrides = make(map[string]decimal.Decimal)
	}
	r.InvestmentOverrides[key] = value
}

// SystemCost is the annualized cost breakdown of one heating alternative.
// The JSON field names are rendered verbatim by the callers and must not
// change.
type SystemCost struct {
	Key                  string          `json:"key"`
	DisplayName          string          `json:"display_name"`
	Investment           decimal.Decimal `json:"investment"`
	AnnualizedInvestment decimal.Decimal `json:"annualizedInvestment"`
	OperatingCost        decimal.Decimal `json:"operatingCost"`
	AnnualizedTotalCost  decimal.Decimal `json:"annualizedTotalCost"`
}

// CurrentSystem is the running cost of the system already installed.
// No investment is amortized: the money is already spent.
type CurrentSystem struct {
	AnnualCost decimal.Decimal `json:"annualCost"`
}

// Result is the ranked comparison output, alternatives sorted ascending by
// annualized total cost
type Result struct {
	CurrentSystem CurrentSystem `json:"current_system"`
	Alternatives  []SystemCost  `json:"alternatives"`
}

// Service ranks heating alternatives against a household's current system
type Service struct {
	catalog       []domain.HeatingAlternative
	defaultPrices map[domain.EnergySource]decimal.Decimal
	logger        *zap.Logger
}

// NewService creates a new comparison Service. The catalog and default
// prices are externally supplied configuration; the service never mutates
// them.
func NewService(catalog []domain.HeatingAlternative, defaultPrices map[domain.EnergySource]decimal.Decimal, logger *zap.Logger) *Service {
	return &Service{
		catalog:       catalog,
		defaultPrices: defaultPrices,
		logger:        logger,
	}
}

// Compare computes the annualized cost of every catalog alternative and of
// the current system, ranked cheapest first.
//
// Per alternative: operating = (need / COP) × price, annualized investment =
// investment / lifetime (straight-line, no discounting), total = sum.
func (s *Service) Compare(req Request) (*Result, error) {
	if req.HeatingNeedKWh.LessThanOrEqual(decimal.Zero) {
		return nil, &domain.ValidationError{Field: "heating_energy_need", Reason: "thermal heating need must be positive"}
	}

	alternatives := make([]SystemCost, 0, len(s.catalog))
	for _, alt := range s.catalog {
		if err := alt.Validate(); err != nil {
			return nil, fmt.Errorf("alternative %s: %w", alt.Key, err)
		}

		price, err := s.priceFor(alt.Source, req.EnergyPrices)
		if err != nil {
			return nil, err
		}

		investment := alt.InvestmentCost
		if override, ok := req.InvestmentOverrides[alt.Key]; ok {
			investment = override
		}

		operating := operatingCost(req.HeatingNeedKWh, alt.COP, price)
		annualized := investment.Div(decimal.NewFromInt(int64(alt.LifetimeYears)))

		alternatives = append(alternatives, SystemCost{
			Key:                  alt.Key,
			DisplayName:          alt.DisplayName,
			Investment:           investment.Round(2),
			AnnualizedInvestment: annualized.Round(2),
			OperatingCost:        operating.Round(2),
			AnnualizedTotalCost:  operating.Add(annualized).Round(2),
		})
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].AnnualizedTotalCost.LessThan(alternatives[j].AnnualizedTotalCost)
	})

	current, err := s.currentCost(req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("heating alternatives compared",
		zap.Int("alternatives", len(alternatives)),
		zap.String("current_annual_cost", current.String()),
	)

	return &Result{
		CurrentSystem: CurrentSystem{AnnualCost: current.Round(2)},
		Alternatives:  alternatives,
	}, nil
}

// currentCost prices the already-installed system: its own COP when it is a
// heat pump, COP 1 otherwise, and no investment to amortize.
func (s *Service) currentCost(req Request) (decimal.Decimal, error) {
	cop := decimal.NewFromInt(1)
	source := sourceForMethod(req.CurrentMethod)

	if key := catalogKeyForMethod(req.CurrentMethod); key != "" {
		for _, alt := range s.catalog {
			if alt.Key == key {
				cop = alt.COP
				source = alt.Source
				break
			}
		}
	}

	price, err := s.priceFor(source, req.EnergyPrices)
	if err != nil {
		return decimal.Zero, err
	}
	return operatingCost(req.HeatingNeedKWh, cop, price), nil
}

// priceFor resolves the running energy price for a source: request prices
// first, configured defaults second. A zero or missing price fails; silently
// reporting free heat would be worse.
func (s *Service) priceFor(source domain.EnergySource, prices map[domain.EnergySource]decimal.Decimal) (decimal.Decimal, error) {
	if p, ok := prices[source]; ok {
		if p.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, domain.ErrMissingPriceInput
		}
		return p, nil
	}
	if p, ok := s.defaultPrices[source]; ok && p.IsPositive() {
		return p, nil
	}
	return decimal.Zero, domain.ErrMissingPriceInput
}

// operatingCost converts thermal kWh through the system COP at cents/kWh
// into EUR per year
func operatingCost(needKWh, cop, priceCKWh decimal.Decimal) decimal.Decimal {
	return needKWh.Div(cop).Mul(priceCKWh).Div(hundred)
}

// catalogKeyForMethod maps a household heating method onto its catalog
// entry, empty when the catalog has no counterpart
func catalogKeyForMethod(m domain.HeatingMethod) string {
	switch m {
	case domain.HeatingDirectElectric, domain.HeatingStorageElectric:
		return "direct_electric"
	case domain.HeatingAirSourcePump:
		return "air_source_heat_pump"
	case domain.HeatingExhaustAirPump:
		return "exhaust_air_heat_pump"
	case domain.HeatingGroundSource:
		return "ground_source_heat_pump"
	case domain.HeatingDistrict:
		return "district_heat"
	case domain.HeatingOil:
		return "oil_boiler"
	}
	return ""
}

// sourceForMethod is the fallback energy source when the catalog has no
// entry for the method
func sourceForMethod(m domain.HeatingMethod) domain.EnergySource {
	switch m {
	case domain.HeatingDistrict:
		return domain.SourceDistrictHeat
	case domain.HeatingOil:
		return domain.SourceOil
	case domain.HeatingWood:
		return domain.SourceWood
	}
	return domain.SourceElectricity
}
