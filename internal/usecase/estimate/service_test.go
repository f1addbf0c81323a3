package estimate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

func testCoefficients() Coefficients {
	return Coefficients{
		EraKWhPerM2: map[domain.BuildingEra]decimal.Decimal{
			domain.EraBefore1970: decimal.NewFromInt(135),
			domain.Era2000s:      decimal.NewFromInt(80),
			domain.Era2010Later:  decimal.NewFromInt(60),
		},
		RegionFactor: map[domain.ClimateRegion]decimal.Decimal{
			domain.RegionSouth:  decimal.NewFromInt(1),
			domain.RegionMiddle: decimal.NewFromFloat(1.1),
			domain.RegionNorth:  decimal.NewFromFloat(1.25),
		},
		MethodCOP: map[domain.HeatingMethod]decimal.Decimal{
			domain.HeatingDirectElectric: decimal.NewFromInt(1),
			domain.HeatingGroundSource:   decimal.NewFromInt(3),
		},
		WaterKWhPerOccupant: decimal.NewFromInt(1000),
	}
}

func baseProfile() domain.ConsumptionProfile {
	return domain.ConsumptionProfile{
		FloorAreaM2: decimal.NewFromInt(80),
		Occupants:   2,
		Building:    domain.BuildingDetached,
		Heating:     domain.HeatingDirectElectric,
		Era:         domain.Era2000s,
		Region:      domain.RegionSouth,
	}
}

func TestEstimate_BasicLivingFormula(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	result, err := svc.Estimate(baseProfile())
	require.NoError(t, err)

	// 2 occupants * 400 + 80 m² * 30 = 3200 kWh
	assert.True(t, result.BasicLiving.Equal(decimal.NewFromInt(3200)), "got %s", result.BasicLiving)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(3200)), "nothing else applies for this profile")
	assert.Nil(t, result.Sauna)
	assert.Nil(t, result.HeatingTotal)
	assert.Nil(t, result.Cooling)
}

func TestEstimate_MinimumsAreClamped(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.Occupants = 0
	profile.FloorAreaM2 = decimal.NewFromInt(5)

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	// clamped to 1 occupant and 10 m²: 400 + 300 = 700 kWh
	assert.True(t, result.BasicLiving.Equal(decimal.NewFromInt(700)), "got %s", result.BasicLiving)
}

func TestEstimate_SaunaSessions(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.Sauna = &domain.SaunaUsage{SessionsPerWeek: 2}

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	// 2 sessions * 7.5 kWh * 52 weeks = 780 kWh
	require.NotNil(t, result.Sauna)
	assert.True(t, result.Sauna.Equal(decimal.NewFromInt(780)), "got %s", result.Sauna)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(3980)))
}

func TestEstimate_AlwaysOnSaunaWinsOverSessions(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.Sauna = &domain.SaunaUsage{SessionsPerWeek: 2, AlwaysOn: true}

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	require.NotNil(t, result.Sauna)
	assert.True(t, result.Sauna.Equal(decimal.NewFromInt(2750)), "always-on is a flat figure, not additive with sessions")
}

func TestEstimate_ElectricVehicle(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.EVKmPerMonth = decimal.NewFromInt(1000)

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	// 1000 km * 0.199 kWh/km * 12 months = 2388 kWh
	require.NotNil(t, result.ElectricityVehicle)
	assert.True(t, result.ElectricityVehicle.Equal(decimal.NewFromInt(2388)), "got %s", result.ElectricityVehicle)
}

func TestEstimate_BathroomUnderfloorHeating(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.BathroomHeatedM2 = decimal.NewFromInt(15)

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	// 15 m² * 200 kWh/m² = 3000 kWh
	require.NotNil(t, result.BathroomUnderfloorHeating)
	assert.True(t, result.BathroomUnderfloorHeating.Equal(decimal.NewFromInt(3000)), "got %s", result.BathroomUnderfloorHeating)
}

func TestEstimate_CoolingFlat(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.Cooling = true

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	require.NotNil(t, result.Cooling)
	assert.True(t, result.Cooling.Equal(decimal.NewFromInt(240)))
}

func TestEstimate_HeatPumpDividesByCOP(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.FloorAreaM2 = decimal.NewFromInt(100)
	profile.Heating = domain.HeatingGroundSource
	profile.IncludeHeating = true

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	three := decimal.NewFromInt(3)
	wantRoom := decimal.NewFromInt(100 * 80).Div(three)
	wantWater := decimal.NewFromInt(2 * 1000).Div(three)

	require.NotNil(t, result.RoomHeating)
	require.NotNil(t, result.Water)
	require.NotNil(t, result.HeatingTotal)
	assert.True(t, result.RoomHeating.Equal(wantRoom), "thermal demand divided by COP 3, got %s", result.RoomHeating)
	assert.True(t, result.Water.Equal(wantWater))
	assert.True(t, result.HeatingTotal.Equal(wantRoom.Add(wantWater)))
}

func TestEstimate_DirectElectricUsesCOPOne(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.FloorAreaM2 = decimal.NewFromInt(100)
	profile.IncludeHeating = true

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	require.NotNil(t, result.RoomHeating)
	assert.True(t, result.RoomHeating.Equal(decimal.NewFromInt(8000)), "COP 1 means electrical equals thermal")
}

func TestEstimate_NorthernRegionCostsMore(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	south := baseProfile()
	south.IncludeHeating = true
	north := south
	north.Region = domain.RegionNorth

	southResult, err := svc.Estimate(south)
	require.NoError(t, err)
	northResult, err := svc.Estimate(north)
	require.NoError(t, err)

	assert.True(t, northResult.RoomHeating.GreaterThan(*southResult.RoomHeating),
		"the northern multiplier must raise the heat demand")
}

func TestEstimate_NonElectricHeatingHasNoHeatingComponents(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.Heating = domain.HeatingDistrict
	profile.IncludeHeating = true

	result, err := svc.Estimate(profile)
	require.NoError(t, err)

	assert.Nil(t, result.RoomHeating, "district heating is not on the electricity bill")
	assert.Nil(t, result.HeatingTotal)
}

func TestEstimate_RejectsUnknownEnums(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.Region = "LAPLAND"

	_, err := svc.Estimate(profile)
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "climate_region", verr.Field)
}

func TestThermalHeatDemand(t *testing.T) {
	svc := NewService(testCoefficients(), zap.NewNop())

	profile := baseProfile()
	profile.FloorAreaM2 = decimal.NewFromInt(100)
	profile.Heating = domain.HeatingGroundSource

	need, err := svc.ThermalHeatDemand(profile)
	require.NoError(t, err)

	// 100 m² * 80 kWh/m² + 2 * 1000 kWh, no COP applied
	assert.True(t, need.Equal(decimal.NewFromInt(10000)), "got %s", need)
}
