package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sepsi77/voltikka-sub000/internal/adapter/repository/memory"
	"github.com/sepsi77/voltikka-sub000/internal/config"
	"github.com/sepsi77/voltikka-sub000/internal/domain"
	"github.com/sepsi77/voltikka-sub000/internal/usecase/estimate"
	"github.com/sepsi77/voltikka-sub000/internal/usecase/heatpump"
	"github.com/sepsi77/voltikka-sub000/internal/usecase/spotstats"
	"github.com/sepsi77/voltikka-sub000/internal/usecase/tariff"
	"github.com/sepsi77/voltikka-sub000/internal/usecase/vat"
)

func main() {
	configPath := flag.String("config", "", "path to the domain configuration YAML (defaults compiled in)")
	requestPath := flag.String("request", "", "path to the calculation request YAML")
	flag.Parse()

	logger, err := zap.NewProduction()
	noErr(err)
	defer func() { _ = logger.Sync() }()

	if *requestPath == "" {
		logger.Fatal("a -request file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	out, err := run(cfg, *requestPath, logger)
	if err != nil {
		logger.Fatal("calculation failed", zap.Error(err))
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	noErr(err)
	fmt.Println(string(encoded))
}

// request is the YAML input file: raw contract, consumption, household and
// spot price data supplied by the external collaborators.
type request struct {
	Region      string          `yaml:"region"`
	Now         time.Time       `yaml:"now"`
	Contract    *contractSpec   `yaml:"contract"`
	Consumption *consumption    `yaml:"consumption"`
	Profile     *profileSpec    `yaml:"profile"`
	SpotPrices  []spotPriceSpec `yaml:"spot_prices"`
	WindowHours int             `yaml:"window_hours"`
}

type contractSpec struct {
	Name        string          `yaml:"name"`
	Metering    string          `yaml:"metering"`
	Pricing     string          `yaml:"pricing"`
	MinKWhYear  *float64        `yaml:"min_kwh_year"`
	MaxKWhYear  *float64        `yaml:"max_kwh_year"`
	SpotAverage *float64        `yaml:"spot_average"`
	Components  []componentSpec `yaml:"components"`
}

type componentSpec struct {
	Type          string        `yaml:"type"`
	Price         float64       `yaml:"price"`
	Unit          string        `yaml:"unit"`
	EffectiveDate string        `yaml:"effective_date"`
	Discount      *discountSpec `yaml:"discount"`
}

type discountSpec struct {
	Kind         string  `yaml:"kind"`
	Value        float64 `yaml:"value"`
	IsPercentage bool    `yaml:"is_percentage"`
	Months       int     `yaml:"months"`
	KWh          int     `yaml:"kwh"`
	UntilDate    string  `yaml:"until_date"`
}

type consumption struct {
	TotalKWh  float64  `yaml:"total_kwh"`
	DayKWh    *float64 `yaml:"day_kwh"`
	NightKWh  *float64 `yaml:"night_kwh"`
	WinterKWh *float64 `yaml:"winter_kwh"`
	OtherKWh  *float64 `yaml:"other_kwh"`
}

type profileSpec struct {
	FloorAreaM2      float64 `yaml:"floor_area_m2"`
	Occupants        int     `yaml:"occupants"`
	BuildingType     string  `yaml:"building_type"`
	HeatingMethod    string  `yaml:"heating_method"`
	BuildingEra      string  `yaml:"building_era"`
	ClimateRegion    string  `yaml:"climate_region"`
	IncludeHeating   bool    `yaml:"include_heating"`
	EVKmPerMonth     float64 `yaml:"ev_km_per_month"`
	SaunaPerWeek     int     `yaml:"sauna_sessions_per_week"`
	SaunaAlwaysOn    bool    `yaml:"sauna_always_on"`
	BathroomHeatedM2 float64 `yaml:"bathroom_heated_m2"`
	Cooling          bool    `yaml:"cooling"`
}

type spotPriceSpec struct {
	TS         time.Time `yaml:"ts"`
	PriceNoTax float64   `yaml:"price_no_tax"`
}

// output aggregates whatever the request asked for
type output struct {
	AnnualCost     *tariff.CostResult              `json:"annual_cost,omitempty"`
	Estimate       *estimate.Result                `json:"estimate,omitempty"`
	HeatingOptions *heatpump.Result                `json:"heating_options,omitempty"`
	CurrentPrice   *domain.SpotPriceHour           `json:"current_price,omitempty"`
	DayStatistics  *spotstats.Stats                `json:"day_statistics,omitempty"`
	DayVolatility  *spotstats.VolatilityStats      `json:"day_volatility,omitempty"`
	BestWindow     *spotstats.Window               `json:"best_window,omitempty"`
	Historical     *spotstats.HistoricalComparison `json:"historical,omitempty"`
}

func run(cfg *config.Config, requestPath string, logger *zap.Logger) (*output, error) {
	data, err := os.ReadFile(requestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	var req request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	if req.Region == "" {
		req.Region = "FI"
	}

	loc, err := cfg.Vat.Location()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Vat.ParsedRules()
	if err != nil {
		return nil, err
	}
	vatRules := make([]vat.Rule, len(rules))
	for i, r := range rules {
		vatRules[i] = vat.Rule{From: r.From, Rate: r.Rate}
	}
	vatTable, err := vat.NewTable(vatRules)
	if err != nil {
		return nil, err
	}

	out := &output{}
	ctx := context.Background()

	// Spot prices: VAT rate is resolved at ingestion and stored with the row.
	if len(req.SpotPrices) > 0 {
		spotRepo := memory.NewSpotPriceRepository()
		for _, p := range req.SpotPrices {
			row := domain.SpotPriceHour{
				ID:         uuid.New(),
				Region:     req.Region,
				TS:         p.TS.UTC(),
				PriceNoTax: decimal.NewFromFloat(p.PriceNoTax),
				VatRate:    vatTable.RateFor(p.TS, loc),
			}
			if err := spotRepo.Add(row); err != nil {
				return nil, err
			}
		}

		stats := spotstats.NewService(spotRepo, req.Region, loc, logger.Named("spotstats"))
		if out.CurrentPrice, err = stats.CurrentPrice(ctx, now); err != nil {
			return nil, err
		}
		if out.DayStatistics, err = stats.DayStatistics(ctx, now); err != nil {
			return nil, err
		}
		if out.DayVolatility, err = stats.DayVolatility(ctx, now); err != nil {
			return nil, err
		}
		if out.Historical, err = stats.HistoricalComparison(ctx, now); err != nil {
			return nil, err
		}
		if req.WindowHours > 0 {
			out.BestWindow, err = stats.BestWindow(ctx, now, req.WindowHours)
			if err != nil && !errors.Is(err, domain.ErrInsufficientData) {
				return nil, err
			}
		}
	}

	var est *estimate.Result
	if req.Profile != nil {
		estimator := estimate.NewService(estimate.Coefficients{
			EraKWhPerM2:         cfg.Heating.EraTable(),
			RegionFactor:        cfg.Heating.RegionTable(),
			MethodCOP:           cfg.Heating.COPTable(),
			WaterKWhPerOccupant: decimal.NewFromFloat(cfg.Heating.WaterKWhPerOccupant),
		}, logger.Named("estimate"))

		profile := req.Profile.domain()
		if est, err = estimator.Estimate(profile); err != nil {
			return nil, err
		}
		out.Estimate = est

		if profile.IncludeHeating {
			need, err := estimator.ThermalHeatDemand(profile)
			if err != nil {
				return nil, err
			}
			pumps := heatpump.NewService(cfg.Catalog(), cfg.Prices(), logger.Named("heatpump"))
			if out.HeatingOptions, err = pumps.Compare(heatpump.Request{
				CurrentMethod:  profile.Heating,
				HeatingNeedKWh: need,
				EnergyPrices:   cfg.Prices(),
			}); err != nil {
				return nil, err
			}
		}
	}

	if req.Contract != nil && req.Consumption != nil {
		contract, err := req.Contract.domain()
		if err != nil {
			return nil, err
		}
		contracts := memory.NewContractRepository()
		if err := contracts.Put(contract); err != nil {
			return nil, err
		}

		pricer := tariff.NewService(contracts, tariff.SplitPolicy{
			DayShare:       decimal.NewFromFloat(cfg.Splits.DayShare),
			WinterDayShare: decimal.NewFromFloat(cfg.Splits.WinterDayShare),
		}, logger.Named("tariff"))

		costReq := req.Consumption.costRequest(civil.DateOf(now.In(loc)))
		if req.Contract.SpotAverage != nil {
			avg := decimal.NewFromFloat(*req.Contract.SpotAverage)
			costReq.SpotAverageCKWh = &avg
		}
		if out.AnnualCost, err = pricer.AnnualCost(ctx, contract.ID, costReq); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (p *profileSpec) domain() domain.ConsumptionProfile {
	profile := domain.ConsumptionProfile{
		FloorAreaM2:      decimal.NewFromFloat(p.FloorAreaM2),
		Occupants:        p.Occupants,
		Building:         domain.BuildingType(p.BuildingType),
		Heating:          domain.HeatingMethod(p.HeatingMethod),
		Era:              domain.BuildingEra(p.BuildingEra),
		Region:           domain.ClimateRegion(p.ClimateRegion),
		IncludeHeating:   p.IncludeHeating,
		EVKmPerMonth:     decimal.NewFromFloat(p.EVKmPerMonth),
		BathroomHeatedM2: decimal.NewFromFloat(p.BathroomHeatedM2),
		Cooling:          p.Cooling,
	}
	if p.SaunaPerWeek > 0 || p.SaunaAlwaysOn {
		profile.Sauna = &domain.SaunaUsage{
			SessionsPerWeek: p.SaunaPerWeek,
			AlwaysOn:        p.SaunaAlwaysOn,
		}
	}
	return profile
}

func (c *contractSpec) domain() (*domain.Contract, error) {
	contract := &domain.Contract{
		ID:       uuid.New(),
		Name:     c.Name,
		Metering: domain.MeteringType(c.Metering),
		Pricing:  domain.PricingModel(c.Pricing),
	}
	if c.MinKWhYear != nil || c.MaxKWhYear != nil {
		limits := &domain.ConsumptionLimits{}
		if c.MinKWhYear != nil {
			v := decimal.NewFromFloat(*c.MinKWhYear)
			limits.MinKWhYear = &v
		}
		if c.MaxKWhYear != nil {
			v := decimal.NewFromFloat(*c.MaxKWhYear)
			limits.MaxKWhYear = &v
		}
		contract.Limits = limits
	}

	for _, spec := range c.Components {
		comp, err := spec.domain()
		if err != nil {
			return nil, err
		}
		contract.Components = append(contract.Components, comp)
	}

	return contract, contract.Validate()
}

func (c *componentSpec) domain() (domain.PriceComponent, error) {
	effective, err := civil.ParseDate(c.EffectiveDate)
	if err != nil {
		return domain.PriceComponent{}, fmt.Errorf("component %s: %w", c.Type, err)
	}
	comp := domain.PriceComponent{
		Type:          domain.PriceComponentType(c.Type),
		Price:         decimal.NewFromFloat(c.Price),
		Unit:          domain.PriceUnit(c.Unit),
		EffectiveDate: effective,
	}
	if d := c.Discount; d != nil {
		discount := &domain.Discount{
			Kind:         domain.DiscountKind(d.Kind),
			Value:        decimal.NewFromFloat(d.Value),
			IsPercentage: d.IsPercentage,
			Months:       d.Months,
			KWh:          d.KWh,
		}
		if d.UntilDate != "" {
			until, err := civil.ParseDate(d.UntilDate)
			if err != nil {
				return domain.PriceComponent{}, fmt.Errorf("component %s discount: %w", c.Type, err)
			}
			discount.UntilDate = &until
		}
		comp.Discount = discount
	}
	return comp, nil
}

func (c *consumption) costRequest(asOf civil.Date) tariff.CostRequest {
	req := tariff.CostRequest{
		Consumption: tariff.Consumption{TotalKWh: decimal.NewFromFloat(c.TotalKWh)},
		AsOf:        asOf,
	}
	req.Consumption.DayKWh = optDecimal(c.DayKWh)
	req.Consumption.NightKWh = optDecimal(c.NightKWh)
	req.Consumption.WinterKWh = optDecimal(c.WinterKWh)
	req.Consumption.OtherKWh = optDecimal(c.OtherKWh)
	return req
}

func optDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func noErr(err error) {
	if err != nil {
		panic("failed to initialize something important: " + err.Error())
	}
}
