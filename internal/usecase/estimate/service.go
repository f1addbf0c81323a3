package estimate

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

var (
	minOccupants     = 1
	minFloorAreaM2   = decimal.NewFromInt(10)
	kwhPerOccupant   = decimal.NewFromInt(400)
	kwhPerM2Living   = decimal.NewFromInt(30)
	saunaSessionKWh  = decimal.NewFromFloat(7.5)
	weeksPerYear     = decimal.NewFromInt(52)
	saunaAlwaysOnKWh = decimal.NewFromInt(2750)
	evKWhPerKm       = decimal.NewFromFloat(0.199)
	monthsPerYear    = decimal.NewFromInt(12)
	bathroomKWhPerM2 = decimal.NewFromInt(200)
	coolingKWh       = decimal.NewFromInt(240)
)

// Coefficients are the configurable heating-demand tables: base demand per
// building era, climate multiplier per region, COP per heating method and
// the domestic hot water allowance. Loaded once at startup, immutable after.
type Coefficients struct {
	EraKWhPerM2         map[domain.BuildingEra]decimal.Decimal
	RegionFactor        map[domain.ClimateRegion]decimal.Decimal
	MethodCOP           map[domain.HeatingMethod]decimal.Decimal
	WaterKWhPerOccupant decimal.Decimal
}

// Result is the estimated yearly electricity need broken into named
// components. Nil pointers mean "not applicable for this profile"; the JSON
// field names are rendered verbatim by the callers and must not change.
type Result struct {
	Total       decimal.Decimal `json:"total"`
	BasicLiving decimal.Decimal `json:"basic_living"`

	RoomHeating               *decimal.Decimal `json:"room_heating,omitempty"`
	Water                     *decimal.Decimal `json:"water,omitempty"`
	HeatingTotal              *decimal.Decimal `json:"heating_total,omitempty"`
	Sauna                     *decimal.Decimal `json:"sauna,omitempty"`
	ElectricityVehicle        *decimal.Decimal `json:"electricity_vehicle,omitempty"`
	BathroomUnderfloorHeating *decimal.Decimal `json:"bathroom_underfloor_heating,omitempty"`
	Cooling                   *decimal.Decimal `json:"cooling,omitempty"`
}

// Service estimates the yearly electricity need of a household
type Service struct {
	coeffs Coefficients
	logger *zap.Logger
}

// NewService creates a new estimation Service with the given coefficient
// tables
func NewService(coeffs Coefficients, logger *zap.Logger) *Service {
	return &Service{coeffs: coeffs, logger: logger}
}

// Estimate computes the yearly electricity need for the profile.
// All components are additive and independently toggled by profile fields;
// the profile must have passed Validate before this is called.
func (s *Service) Estimate(profile domain.ConsumptionProfile) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	occupants, area := clampBasics(profile)

	result := &Result{
		BasicLiving: decimal.NewFromInt(int64(occupants)).Mul(kwhPerOccupant).
			Add(area.Mul(kwhPerM2Living)),
	}
	total := result.BasicLiving

	// Heating is on the electricity bill only for electric heating methods.
	if profile.IncludeHeating && profile.Heating.Electric() {
		room, water := s.heatingDraw(profile, occupants, area)
		heatingTotal := room.Add(water)
		result.RoomHeating = &room
		result.Water = &water
		result.HeatingTotal = &heatingTotal
		total = total.Add(heatingTotal)
	}

	if sauna := saunaEnergy(profile.Sauna); sauna != nil {
		result.Sauna = sauna
		total = total.Add(*sauna)
	}

	if profile.EVKmPerMonth.IsPositive() {
		ev := profile.EVKmPerMonth.Mul(evKWhPerKm).Mul(monthsPerYear)
		result.ElectricityVehicle = &ev
		total = total.Add(ev)
	}

	if profile.BathroomHeatedM2.IsPositive() {
		floor := profile.BathroomHeatedM2.Mul(bathroomKWhPerM2)
		result.BathroomUnderfloorHeating = &floor
		total = total.Add(floor)
	}

	if profile.Cooling {
		cooling := coolingKWh
		result.Cooling = &cooling
		total = total.Add(cooling)
	}

	result.Total = total

	s.logger.Debug("consumption estimated",
		zap.String("total_kwh", total.String()),
		zap.Int("occupants", occupants),
	)
	return result, nil
}

// ThermalHeatDemand returns the yearly thermal heating need (space + hot
// water) of the profile in kWh, before any COP is applied. This is the
// figure the heating system comparison amortizes against.
func (s *Service) ThermalHeatDemand(profile domain.ConsumptionProfile) (decimal.Decimal, error) {
	if err := profile.Validate(); err != nil {
		return decimal.Zero, err
	}
	occupants, area := clampBasics(profile)
	room := area.Mul(s.eraCoefficient(profile.Era)).Mul(s.regionFactor(profile.Region))
	water := decimal.NewFromInt(int64(occupants)).Mul(s.coeffs.WaterKWhPerOccupant)
	return room.Add(water), nil
}

// heatingDraw converts thermal demand into electrical draw via the method's
// COP and splits it into room heating and domestic hot water
func (s *Service) heatingDraw(profile domain.ConsumptionProfile, occupants int, area decimal.Decimal) (room, water decimal.Decimal) {
	cop := s.methodCOP(profile.Heating)
	room = area.Mul(s.eraCoefficient(profile.Era)).Mul(s.regionFactor(profile.Region)).Div(cop)
	water = decimal.NewFromInt(int64(occupants)).Mul(s.coeffs.WaterKWhPerOccupant).Div(cop)
	return room, water
}

func (s *Service) eraCoefficient(era domain.BuildingEra) decimal.Decimal {
	if c, ok := s.coeffs.EraKWhPerM2[era]; ok {
		return c
	}
	// unknown eras price like the oldest stock
	return s.coeffs.EraKWhPerM2[domain.EraBefore1970]
}

func (s *Service) regionFactor(region domain.ClimateRegion) decimal.Decimal {
	if f, ok := s.coeffs.RegionFactor[region]; ok {
		return f
	}
	return decimal.NewFromInt(1)
}

func (s *Service) methodCOP(method domain.HeatingMethod) decimal.Decimal {
	if cop, ok := s.coeffs.MethodCOP[method]; ok && cop.IsPositive() {
		return cop
	}
	return decimal.NewFromInt(1)
}

// clampBasics applies the floor-area and occupant minimums before any
// formula runs
func clampBasics(profile domain.ConsumptionProfile) (int, decimal.Decimal) {
	occupants := profile.Occupants
	if occupants < minOccupants {
		occupants = minOccupants
	}
	area := profile.FloorAreaM2
	if area.LessThan(minFloorAreaM2) {
		area = minFloorAreaM2
	}
	return occupants, area
}

// saunaEnergy returns the yearly sauna energy, or nil when the household has
// no electric sauna. Always-on saunas use a flat figure; the alternatives
// are exclusive, not additive.
func saunaEnergy(usage *domain.SaunaUsage) *decimal.Decimal {
	if usage == nil {
		return nil
	}
	if usage.AlwaysOn {
		v := saunaAlwaysOnKWh
		return &v
	}
	if usage.SessionsPerWeek <= 0 {
		return nil
	}
	v := decimal.NewFromInt(int64(usage.SessionsPerWeek)).Mul(saunaSessionKWh).Mul(weeksPerYear)
	return &v
}
