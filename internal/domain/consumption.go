package domain

import "github.com/shopspring/decimal"

// BuildingType represents the kind of dwelling being estimated
type BuildingType string

const (
	BuildingDetached  BuildingType = "DETACHED"
	BuildingSemi      BuildingType = "SEMI_DETACHED"
	BuildingRowHouse  BuildingType = "ROW_HOUSE"
	BuildingApartment BuildingType = "APARTMENT"
)

// HeatingMethod represents the primary heating system of a dwelling
type HeatingMethod string

const (
	HeatingDirectElectric  HeatingMethod = "DIRECT_ELECTRIC"
	HeatingStorageElectric HeatingMethod = "STORAGE_ELECTRIC"
	HeatingAirSourcePump   HeatingMethod = "AIR_SOURCE_HEAT_PUMP"
	HeatingExhaustAirPump  HeatingMethod = "EXHAUST_AIR_HEAT_PUMP"
	HeatingGroundSource    HeatingMethod = "GROUND_SOURCE_HEAT_PUMP"
	HeatingDistrict        HeatingMethod = "DISTRICT"
	HeatingOil             HeatingMethod = "OIL"
	HeatingWood            HeatingMethod = "WOOD"
)

// Electric reports whether the heating method draws its energy from the
// household's electricity contract
func (m HeatingMethod) Electric() bool {
	switch m {
	case HeatingDirectElectric, HeatingStorageElectric, HeatingAirSourcePump,
		HeatingExhaustAirPump, HeatingGroundSource:
		return true
	}
	return false
}

// BuildingEra classifies construction age; older construction leaks more heat
type BuildingEra string

const (
	EraBefore1970 BuildingEra = "BEFORE_1970"
	Era1970s      BuildingEra = "1970_1979"
	Era1980s      BuildingEra = "1980_1989"
	Era1990s      BuildingEra = "1990_1999"
	Era2000s      BuildingEra = "2000_2009"
	Era2010Later  BuildingEra = "2010_OR_LATER"
)

// ClimateRegion is the coarse climate zone of the dwelling
type ClimateRegion string

const (
	RegionSouth  ClimateRegion = "SOUTH"
	RegionMiddle ClimateRegion = "MIDDLE"
	RegionNorth  ClimateRegion = "NORTH"
)

// SaunaUsage describes how the household uses an electric sauna.
// SessionsPerWeek and AlwaysOn are exclusive alternatives; AlwaysOn wins
// when both are set.
type SaunaUsage struct {
	SessionsPerWeek int
	AlwaysOn        bool
}

// ConsumptionProfile carries the user-entered household descriptors for one
// estimation request. Immutable for the duration of the calculation.
type ConsumptionProfile struct {
	FloorAreaM2      decimal.Decimal
	Occupants        int
	Building         BuildingType
	Heating          HeatingMethod
	SupplementaryLog bool // supplementary wood/log heating reduces nothing here, informational
	Era              BuildingEra
	Region           ClimateRegion
	IncludeHeating   bool
	EVKmPerMonth     decimal.Decimal
	Sauna            *SaunaUsage
	BathroomHeatedM2 decimal.Decimal
	Cooling          bool
}

// Validate rejects unknown enum values before any estimation runs
func (p *ConsumptionProfile) Validate() error {
	switch p.Building {
	case BuildingDetached, BuildingSemi, BuildingRowHouse, BuildingApartment:
	default:
		return &ValidationError{Field: "building_type", Reason: "unknown building type " + string(p.Building)}
	}

	switch p.Heating {
	case HeatingDirectElectric, HeatingStorageElectric, HeatingAirSourcePump,
		HeatingExhaustAirPump, HeatingGroundSource, HeatingDistrict, HeatingOil, HeatingWood:
	default:
		return &ValidationError{Field: "heating_method", Reason: "unknown heating method " + string(p.Heating)}
	}

	switch p.Era {
	case EraBefore1970, Era1970s, Era1980s, Era1990s, Era2000s, Era2010Later:
	default:
		return &ValidationError{Field: "building_era", Reason: "unknown building era " + string(p.Era)}
	}

	switch p.Region {
	case RegionSouth, RegionMiddle, RegionNorth:
	default:
		return &ValidationError{Field: "climate_region", Reason: "unknown climate region " + string(p.Region)}
	}

	if p.FloorAreaM2.IsNegative() {
		return &ValidationError{Field: "floor_area_m2", Reason: "floor area cannot be negative"}
	}
	if p.Occupants < 0 {
		return &ValidationError{Field: "occupants", Reason: "occupant count cannot be negative"}
	}
	if p.EVKmPerMonth.IsNegative() {
		return &ValidationError{Field: "ev_km_per_month", Reason: "EV kilometers cannot be negative"}
	}
	if p.BathroomHeatedM2.IsNegative() {
		return &ValidationError{Field: "bathroom_heated_m2", Reason: "heated bathroom area cannot be negative"}
	}
	if p.Sauna != nil && p.Sauna.SessionsPerWeek < 0 {
		return &ValidationError{Field: "sauna.sessions_per_week", Reason: "sauna sessions cannot be negative"}
	}

	return nil
}
