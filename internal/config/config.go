package config

import (
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

// Config holds the externally supplied domain tables. These are domain
// constants that change over time and by jurisdiction, so they are loaded
// from a YAML file with the compiled-in defaults below as fallback.
type Config struct {
	Vat          VatConfig          `yaml:"vat"`
	Heating      HeatingConfig      `yaml:"heating"`
	Alternatives []Alternative      `yaml:"alternatives"`
	Splits       SplitConfig        `yaml:"splits"`
	EnergyPrices map[string]float64 `yaml:"energy_prices"` // cents/kWh by energy source
}

// VatRule is one VAT rate range. From is a local civil date (YYYY-MM-DD);
// an empty From marks the open-ended first range.
type VatRule struct {
	From string  `yaml:"from"`
	Rate float64 `yaml:"rate"`
}

// VatConfig is the VAT rule table plus the civil timezone it is evaluated in
type VatConfig struct {
	Timezone string    `yaml:"timezone"`
	Rules    []VatRule `yaml:"rules"`
}

// HeatingConfig carries the heating-demand coefficient tables: base demand
// per building era, climate multiplier per region, COP per heating method,
// and the domestic hot water allowance per occupant.
type HeatingConfig struct {
	EraKWhPerM2         map[string]float64 `yaml:"era_kwh_per_m2"`
	RegionFactor        map[string]float64 `yaml:"region_factor"`
	MethodCOP           map[string]float64 `yaml:"method_cop"`
	WaterKWhPerOccupant float64            `yaml:"water_kwh_per_occupant"`
}

// Alternative is one heating-alternative catalog entry with its default
// investment cost
type Alternative struct {
	Key            string  `yaml:"key"`
	DisplayName    string  `yaml:"display_name"`
	COP            float64 `yaml:"cop"`
	InvestmentCost float64 `yaml:"investment_cost"`
	LifetimeYears  int     `yaml:"lifetime_years"`
	EnergySource   string  `yaml:"energy_source"`
}

// SplitConfig is the assumed consumption split policy used when only an
// aggregate kWh figure is available for a time-of-use or seasonal contract
type SplitConfig struct {
	DayShare       float64 `yaml:"day_share"`
	WinterDayShare float64 `yaml:"winter_day_share"`
}

// Default returns the built-in configuration: Finnish VAT history, Motiva-style
// heating coefficients and a stock heating-alternative catalog.
func Default() *Config {
	return &Config{
		Vat: VatConfig{
			Timezone: "Europe/Helsinki",
			Rules: []VatRule{
				{From: "", Rate: 0.24},
				{From: "2022-12-01", Rate: 0.10},
				{From: "2023-05-01", Rate: 0.24},
				{From: "2024-09-01", Rate: 0.255},
			},
		},
		Heating: HeatingConfig{
			EraKWhPerM2: map[string]float64{
				string(domain.EraBefore1970): 135,
				string(domain.Era1970s):      120,
				string(domain.Era1980s):      105,
				string(domain.Era1990s):      95,
				string(domain.Era2000s):      80,
				string(domain.Era2010Later):  60,
			},
			RegionFactor: map[string]float64{
				string(domain.RegionSouth):  1.0,
				string(domain.RegionMiddle): 1.1,
				string(domain.RegionNorth):  1.25,
			},
			MethodCOP: map[string]float64{
				string(domain.HeatingDirectElectric):  1.0,
				string(domain.HeatingStorageElectric): 1.0,
				string(domain.HeatingAirSourcePump):   2.0,
				string(domain.HeatingExhaustAirPump):  1.8,
				string(domain.HeatingGroundSource):    3.0,
			},
			WaterKWhPerOccupant: 1000,
		},
		Alternatives: []Alternative{
			{Key: "direct_electric", DisplayName: "Direct electric heating", COP: 1.0, InvestmentCost: 0, LifetimeYears: 30, EnergySource: string(domain.SourceElectricity)},
			{Key: "air_source_heat_pump", DisplayName: "Air-source heat pump", COP: 2.0, InvestmentCost: 2500, LifetimeYears: 15, EnergySource: string(domain.SourceElectricity)},
			{Key: "exhaust_air_heat_pump", DisplayName: "Exhaust-air heat pump", COP: 1.8, InvestmentCost: 9000, LifetimeYears: 20, EnergySource: string(domain.SourceElectricity)},
			{Key: "ground_source_heat_pump", DisplayName: "Ground-source heat pump", COP: 3.0, InvestmentCost: 18000, LifetimeYears: 25, EnergySource: string(domain.SourceElectricity)},
			{Key: "district_heat", DisplayName: "District heating", COP: 1.0, InvestmentCost: 12000, LifetimeYears: 40, EnergySource: string(domain.SourceDistrictHeat)},
			{Key: "oil_boiler", DisplayName: "Oil boiler", COP: 0.85, InvestmentCost: 10000, LifetimeYears: 25, EnergySource: string(domain.SourceOil)},
		},
		Splits: SplitConfig{
			DayShare:       0.60,
			WinterDayShare: 0.55,
		},
		EnergyPrices: map[string]float64{
			string(domain.SourceElectricity):  12.0,
			string(domain.SourceDistrictHeat): 9.5,
			string(domain.SourceOil):          11.0,
			string(domain.SourceWood):         6.0,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults for
// anything the file does not set. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Vat.Rules) == 0 {
		return fmt.Errorf("vat: at least one rule is required")
	}
	if c.Vat.Rules[0].From != "" {
		return fmt.Errorf("vat: first rule must be open-ended (empty from)")
	}
	var prev civil.Date
	for i, r := range c.Vat.Rules {
		if r.Rate < 0 || r.Rate >= 1 {
			return fmt.Errorf("vat: rule %d rate %v outside [0, 1)", i, r.Rate)
		}
		if i == 0 {
			continue
		}
		d, err := civil.ParseDate(r.From)
		if err != nil {
			return fmt.Errorf("vat: rule %d: %w", i, err)
		}
		if i > 1 && !prev.Before(d) {
			return fmt.Errorf("vat: rule dates must be strictly ascending")
		}
		prev = d
	}
	if _, err := time.LoadLocation(c.Vat.Timezone); err != nil {
		return fmt.Errorf("vat: %w", err)
	}

	if c.Splits.DayShare <= 0 || c.Splits.DayShare >= 1 {
		return fmt.Errorf("splits: day_share must be within (0, 1)")
	}
	if c.Splits.WinterDayShare <= 0 || c.Splits.WinterDayShare >= 1 {
		return fmt.Errorf("splits: winter_day_share must be within (0, 1)")
	}

	for _, a := range c.Alternatives {
		alt := a.Domain()
		if err := alt.Validate(); err != nil {
			return fmt.Errorf("alternatives: %s: %w", a.Key, err)
		}
	}

	return nil
}

// Location resolves the configured civil timezone
func (v VatConfig) Location() (*time.Location, error) {
	return time.LoadLocation(v.Timezone)
}

// ParsedRules returns the rule table with parsed dates and decimal rates,
// ordered as configured. The first rule's nil From marks the open start.
func (v VatConfig) ParsedRules() ([]ParsedVatRule, error) {
	rules := make([]ParsedVatRule, 0, len(v.Rules))
	for i, r := range v.Rules {
		pr := ParsedVatRule{Rate: decimal.NewFromFloat(r.Rate)}
		if i > 0 {
			d, err := civil.ParseDate(r.From)
			if err != nil {
				return nil, fmt.Errorf("vat: rule %d: %w", i, err)
			}
			pr.From = &d
		}
		rules = append(rules, pr)
	}
	return rules, nil
}

// ParsedVatRule is a VatRule with its types resolved
type ParsedVatRule struct {
	From *civil.Date
	Rate decimal.Decimal
}

// Domain converts a catalog entry into its domain representation
func (a Alternative) Domain() domain.HeatingAlternative {
	return domain.HeatingAlternative{
		Key:            a.Key,
		DisplayName:    a.DisplayName,
		COP:            decimal.NewFromFloat(a.COP),
		InvestmentCost: decimal.NewFromFloat(a.InvestmentCost),
		LifetimeYears:  a.LifetimeYears,
		Source:         domain.EnergySource(a.EnergySource),
	}
}

// Catalog converts the configured alternatives into domain entries
func (c *Config) Catalog() []domain.HeatingAlternative {
	catalog := make([]domain.HeatingAlternative, 0, len(c.Alternatives))
	for _, a := range c.Alternatives {
		catalog = append(catalog, a.Domain())
	}
	return catalog
}

// Prices returns the configured default energy prices keyed by source
func (c *Config) Prices() map[domain.EnergySource]decimal.Decimal {
	prices := make(map[domain.EnergySource]decimal.Decimal, len(c.EnergyPrices))
	for source, price := range c.EnergyPrices {
		prices[domain.EnergySource(source)] = decimal.NewFromFloat(price)
	}
	return prices
}

// EraTable returns the per-era base heat demand in kWh/m² keyed by era
func (h HeatingConfig) EraTable() map[domain.BuildingEra]decimal.Decimal {
	table := make(map[domain.BuildingEra]decimal.Decimal, len(h.EraKWhPerM2))
	for era, coeff := range h.EraKWhPerM2 {
		table[domain.BuildingEra(era)] = decimal.NewFromFloat(coeff)
	}
	return table
}

// RegionTable returns the per-region climate multipliers keyed by region
func (h HeatingConfig) RegionTable() map[domain.ClimateRegion]decimal.Decimal {
	table := make(map[domain.ClimateRegion]decimal.Decimal, len(h.RegionFactor))
	for region, factor := range h.RegionFactor {
		table[domain.ClimateRegion(region)] = decimal.NewFromFloat(factor)
	}
	return table
}

// COPTable returns the per-method COP values keyed by heating method
func (h HeatingConfig) COPTable() map[domain.HeatingMethod]decimal.Decimal {
	table := make(map[domain.HeatingMethod]decimal.Decimal, len(h.MethodCOP))
	for method, cop := range h.MethodCOP {
		table[domain.HeatingMethod(method)] = decimal.NewFromFloat(cop)
	}
	return table
}
