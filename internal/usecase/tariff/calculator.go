package tariff

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

const monthsInYear = 12

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// SplitPolicy is the assumed consumption split applied when a time-of-use or
// seasonal contract is priced from an aggregate kWh figure only
type SplitPolicy struct {
	DayShare       decimal.Decimal // share billed at the day price
	WinterDayShare decimal.Decimal // share billed at the winter-day price
}

// DefaultSplitPolicy returns the documented default split assumptions:
// 60 % of consumption during day hours, 55 % during winter days.
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{
		DayShare:       decimal.NewFromFloat(0.60),
		WinterDayShare: decimal.NewFromFloat(0.55),
	}
}

// Consumption is the yearly consumption input for one cost calculation.
// When the optional sub-profile figures are present they override the
// aggregate split policy; the aggregate is then their sum.
type Consumption struct {
	TotalKWh  decimal.Decimal
	DayKWh    *decimal.Decimal
	NightKWh  *decimal.Decimal
	WinterKWh *decimal.Decimal
	OtherKWh  *decimal.Decimal
}

// effectiveTotal is the figure validated against the contract limits
func (c Consumption) effectiveTotal() decimal.Decimal {
	if c.DayKWh != nil && c.NightKWh != nil {
		return c.DayKWh.Add(*c.NightKWh)
	}
	if c.WinterKWh != nil && c.OtherKWh != nil {
		return c.WinterKWh.Add(*c.OtherKWh)
	}
	return c.TotalKWh
}

// CostRequest carries everything one annual cost calculation needs beyond
// the contract itself. AsOf pins "today" so component selection and
// discount expiry stay deterministic and testable.
type CostRequest struct {
	Consumption Consumption

	// SpotAverageCKWh is the reference spot price (cents/kWh, tax included)
	// a Spot or Hybrid contract's margin is added to. Required for those
	// pricing models, ignored for Fixed.
	SpotAverageCKWh *decimal.Decimal

	AsOf civil.Date
}

// CostResult is the annual cost breakdown for one contract. The JSON field
// names are rendered verbatim by the callers and must not change.
type CostResult struct {
	TotalCost       decimal.Decimal   `json:"total_cost"`
	AvgMonthlyCost  decimal.Decimal   `json:"avg_monthly_cost"`
	MonthlyCosts    []decimal.Decimal `json:"monthly_costs"`
	MonthlyFixedFee decimal.Decimal   `json:"monthly_fixed_fee"`

	GeneralKWhPrice           *decimal.Decimal `json:"general_kwh_price,omitempty"`
	DayTimeKWhPrice           *decimal.Decimal `json:"day_time_kwh_price,omitempty"`
	NightTimeKWhPrice         *decimal.Decimal `json:"night_time_kwh_price,omitempty"`
	SeasonalWinterDayKWhPrice *decimal.Decimal `json:"seasonal_winter_day_kwh_price,omitempty"`
	SeasonalOtherKWhPrice     *decimal.Decimal `json:"seasonal_other_kwh_price,omitempty"`
	SpotMarginKWhPrice        *decimal.Decimal `json:"spot_margin_kwh_price,omitempty"`
}

// bucket is one slice of yearly consumption billed at one component's price
type bucket struct {
	kwh  decimal.Decimal
	comp *domain.PriceComponent
}

// Calculate computes the annual cost of consuming under the given contract.
// Pure: same inputs, same result; all intermediate math keeps full decimal
// precision, rounding to cents happens once on the way out.
func Calculate(contract *domain.Contract, req CostRequest, policy SplitPolicy) (*CostResult, error) {
	total := req.Consumption.effectiveTotal()
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidConsumption
	}
	if !contract.Limits.Allows(total) {
		return nil, domain.ErrInvalidConsumption
	}

	// 1. Resolve the current component for every type the metering requires
	comps := make(map[domain.PriceComponentType]*domain.PriceComponent)
	for _, t := range contract.RequiredComponentTypes() {
		cur := contract.CurrentComponent(t, req.AsOf)
		if cur == nil {
			return nil, domain.ErrContractMisconfigured
		}
		comps[t] = cur
	}

	// 2. Spot and hybrid contracts ride on a reference spot average; quoted
	// component prices act as margins on top of it.
	spotAdd := decimal.Zero
	var marginEcho *decimal.Decimal
	if contract.Pricing != domain.PricingFixed {
		if req.SpotAverageCKWh == nil {
			return nil, domain.ErrMissingPriceInput
		}
		spotAdd = *req.SpotAverageCKWh
		if m := contract.CurrentComponent(domain.ComponentSpotMargin, req.AsOf); m != nil {
			spotAdd = spotAdd.Add(m.Price)
			marginEcho = dec(m.Price)
		}
	}

	// 3. Split consumption into billing buckets
	buckets := splitConsumption(contract, req.Consumption, total, comps, policy)

	// 4. Energy cost per bucket per month, discounts applied per component
	monthlyEnergy := make([]decimal.Decimal, monthsInYear)
	for _, b := range buckets {
		perMonth := bucketMonthlyCosts(b, spotAdd, req.AsOf)
		for i := range monthlyEnergy {
			monthlyEnergy[i] = monthlyEnergy[i].Add(perMonth[i])
		}
	}

	// 5. Fixed monthly fee, with its own discount if one is attached
	monthlyFee := decimal.Zero
	feeComp := contract.CurrentComponent(domain.ComponentMonthly, req.AsOf)
	if feeComp != nil {
		monthlyFee = feeComp.Price
	}

	monthlyCosts := make([]decimal.Decimal, monthsInYear)
	totalCost := decimal.Zero
	for i := range monthlyCosts {
		fee := monthlyFee
		if feeComp != nil {
			fee = discountedFee(feeComp, i, req.AsOf)
		}
		monthlyCosts[i] = monthlyEnergy[i].Add(fee)
		totalCost = totalCost.Add(monthlyCosts[i])
	}

	result := &CostResult{
		TotalCost:       totalCost.Round(2),
		AvgMonthlyCost:  totalCost.Div(twelve).Round(2),
		MonthlyCosts:    make([]decimal.Decimal, monthsInYear),
		MonthlyFixedFee: monthlyFee.Round(2),
	}
	for i := range monthlyCosts {
		result.MonthlyCosts[i] = monthlyCosts[i].Round(2)
	}

	if c := comps[domain.ComponentGeneral]; c != nil {
		result.GeneralKWhPrice = dec(c.Price)
	}
	if c := comps[domain.ComponentDayTime]; c != nil {
		result.DayTimeKWhPrice = dec(c.Price)
	}
	if c := comps[domain.ComponentNightTime]; c != nil {
		result.NightTimeKWhPrice = dec(c.Price)
	}
	if c := comps[domain.ComponentSeasonalWinterDay]; c != nil {
		result.SeasonalWinterDayKWhPrice = dec(c.Price)
	}
	if c := comps[domain.ComponentSeasonalOther]; c != nil {
		result.SeasonalOtherKWhPrice = dec(c.Price)
	}
	result.SpotMarginKWhPrice = marginEcho

	return result, nil
}

// splitConsumption slices the yearly kWh into per-component buckets.
// Explicit sub-profile figures win; otherwise the policy shares apply.
func splitConsumption(
	contract *domain.Contract,
	cons Consumption,
	total decimal.Decimal,
	comps map[domain.PriceComponentType]*domain.PriceComponent,
	policy SplitPolicy,
) []bucket {
	switch contract.Metering {
	case domain.MeteringTime:
		day := total.Mul(policy.DayShare)
		night := total.Sub(day)
		if cons.DayKWh != nil && cons.NightKWh != nil {
			day, night = *cons.DayKWh, *cons.NightKWh
		}
		return []bucket{
			{kwh: day, comp: comps[domain.ComponentDayTime]},
			{kwh: night, comp: comps[domain.ComponentNightTime]},
		}

	case domain.MeteringSeasonal:
		winter := total.Mul(policy.WinterDayShare)
		other := total.Sub(winter)
		if cons.WinterKWh != nil && cons.OtherKWh != nil {
			winter, other = *cons.WinterKWh, *cons.OtherKWh
		}
		return []bucket{
			{kwh: winter, comp: comps[domain.ComponentSeasonalWinterDay]},
			{kwh: other, comp: comps[domain.ComponentSeasonalOther]},
		}

	default:
		return []bucket{{kwh: total, comp: comps[domain.ComponentGeneral]}}
	}
}

// bucketMonthlyCosts spreads a bucket's energy cost evenly over 12 months
// and applies the component's discount. Discounts never apply retroactively:
// a first-N-months discount touches only buckets 0..N-1, a first-N-kWh
// discount is exhausted once N kWh are billed.
func bucketMonthlyCosts(b bucket, spotAdd decimal.Decimal, asOf civil.Date) []decimal.Decimal {
	unit := b.comp.Price.Add(spotAdd) // cents/kWh
	months := make([]decimal.Decimal, monthsInYear)

	d := b.comp.Discount
	if !d.Active(asOf) {
		spread(months, energyCost(b.kwh, unit))
		return months
	}

	switch d.Kind {
	case domain.DiscountFirstKWh:
		discounted := decimal.NewFromInt(int64(d.KWh))
		if discounted.GreaterThan(b.kwh) {
			discounted = b.kwh
		}
		rest := b.kwh.Sub(discounted)
		cost := energyCost(discounted, applyDiscount(unit, d)).Add(energyCost(rest, unit))
		spread(months, cost)

	case domain.DiscountFirstMonths:
		full := energyCost(b.kwh, unit).Div(twelve)
		for i := range months {
			if i >= d.Months {
				months[i] = full
				continue
			}
			if d.IsPercentage {
				months[i] = energyCost(b.kwh, applyDiscount(unit, d)).Div(twelve)
			} else {
				// absolute first-months discount is EUR off the bucket
				reduced := full.Sub(d.Value)
				if reduced.IsNegative() {
					reduced = decimal.Zero
				}
				months[i] = reduced
			}
		}

	default:
		spread(months, energyCost(b.kwh, applyDiscount(unit, d)))
	}

	return months
}

// discountedFee returns the fixed fee for month index m (0-based)
func discountedFee(comp *domain.PriceComponent, m int, asOf civil.Date) decimal.Decimal {
	d := comp.Discount
	if !d.Active(asOf) {
		return comp.Price
	}
	if d.Kind == domain.DiscountFirstMonths && m >= d.Months {
		return comp.Price
	}
	if d.Kind == domain.DiscountFirstKWh {
		// kWh-bounded discounts have no meaning on a monthly fee
		return comp.Price
	}
	fee := applyDiscount(comp.Price, d)
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

// energyCost converts kWh at cents/kWh into EUR
func energyCost(kwh, centsPerKWh decimal.Decimal) decimal.Decimal {
	return kwh.Mul(centsPerKWh).Div(hundred)
}

// applyDiscount reduces a price by the discount's value, never below zero
func applyDiscount(price decimal.Decimal, d *domain.Discount) decimal.Decimal {
	var reduced decimal.Decimal
	if d.IsPercentage {
		reduced = price.Mul(hundred.Sub(d.Value)).Div(hundred)
	} else {
		reduced = price.Sub(d.Value)
	}
	if reduced.IsNegative() {
		return decimal.Zero
	}
	return reduced
}

// spread distributes a yearly cost evenly across the month slots
func spread(months []decimal.Decimal, yearly decimal.Decimal) {
	share := yearly.Div(twelve)
	for i := range months {
		months[i] = share
	}
}

func dec(v decimal.Decimal) *decimal.Decimal { return &v }
