package spotstats

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

// All functions in this file are pure transforms over an ordered hourly
// price series. "Now" and the civil timezone always arrive as parameters;
// nothing here reads the wall clock. Prices are consumer prices (VAT
// included) and may legitimately be negative during high renewable output,
// so nothing below special-cases negative values.

var hundred = decimal.NewFromInt(100)

// Stats are the descriptive statistics of a price series
type Stats struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Average decimal.Decimal `json:"average"`
	Median  decimal.Decimal `json:"median"`
}

// VolatilityStats describe how much a price series moves. Variance is the
// population variance (divide by N, not N-1).
type VolatilityStats struct {
	Variance     float64         `json:"variance"`
	StdDeviation float64         `json:"std_deviation"`
	Range        decimal.Decimal `json:"range"`
	Average      decimal.Decimal `json:"average"`
}

// Window is a consecutive run of hours with its average price
type Window struct {
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	StartHour int               `json:"start_hour"`
	EndHour   int               `json:"end_hour"`
	Average   decimal.Decimal   `json:"average"`
	Prices    []decimal.Decimal `json:"prices"`
}

// Savings is the outcome of shifting load into the cheapest hours
type Savings struct {
	TotalKWh       decimal.Decimal `json:"total_kwh"`
	AveragePrice   decimal.Decimal `json:"average_price"`
	OptimizedPrice decimal.Decimal `json:"optimized_price"`
	AbsoluteEUR    decimal.Decimal `json:"absolute_eur"`
	Percent        decimal.Decimal `json:"percent"`
}

// CurrentPrice returns the row whose local hour contains now, nil when the
// series has no row for that hour
func CurrentPrice(series []domain.SpotPriceHour, now time.Time, loc *time.Location) *domain.SpotPriceHour {
	hour := hourStart(now, loc)
	for i := range series {
		if series[i].LocalHour(loc).Equal(hour) {
			row := series[i]
			return &row
		}
	}
	return nil
}

// Statistics computes min, max, average and median over the series, nil for
// an empty series
func Statistics(series []domain.SpotPriceHour) *Stats {
	if len(series) == 0 {
		return nil
	}

	ps := taxedPrices(series)
	min, max := ps[0], ps[0]
	sum := decimal.Zero
	for _, p := range ps {
		if p.LessThan(min) {
			min = p
		}
		if p.GreaterThan(max) {
			max = p
		}
		sum = sum.Add(p)
	}

	return &Stats{
		Min:     min,
		Max:     max,
		Average: sum.Div(decimal.NewFromInt(int64(len(ps)))),
		Median:  median(ps),
	}
}

// CheapestHour returns the row with the lowest price, nil for an empty
// series. Ties resolve to the earliest hour.
func CheapestHour(series []domain.SpotPriceHour) *domain.SpotPriceHour {
	var best *domain.SpotPriceHour
	for i := range series {
		if best == nil || series[i].PriceWithTax().LessThan(best.PriceWithTax()) {
			row := series[i]
			best = &row
		}
	}
	return best
}

// MostExpensiveHour returns the row with the highest price, nil for an
// empty series. Ties resolve to the earliest hour.
func MostExpensiveHour(series []domain.SpotPriceHour) *domain.SpotPriceHour {
	var worst *domain.SpotPriceHour
	for i := range series {
		if worst == nil || series[i].PriceWithTax().GreaterThan(worst.PriceWithTax()) {
			row := series[i]
			worst = &row
		}
	}
	return worst
}

// BestConsecutiveHours slides a window of n hours over the remaining hours
// of today plus all of tomorrow (whatever of that range the series holds)
// and returns the window with the lowest average price. The hour containing
// now still counts as remaining. Nil when fewer than n hours remain.
func BestConsecutiveHours(series []domain.SpotPriceHour, n int, now time.Time, loc *time.Location) *Window {
	if n <= 0 {
		return nil
	}

	hour := hourStart(now, loc)
	remaining := make([]domain.SpotPriceHour, 0, len(series))
	for _, row := range series {
		if !row.LocalHour(loc).Before(hour) {
			remaining = append(remaining, row)
		}
	}
	if len(remaining) < n {
		return nil
	}

	bestStart := 0
	var bestSum decimal.Decimal
	sum := decimal.Zero
	for i := 0; i < n; i++ {
		sum = sum.Add(remaining[i].PriceWithTax())
	}
	bestSum = sum
	for i := n; i < len(remaining); i++ {
		sum = sum.Add(remaining[i].PriceWithTax()).Sub(remaining[i-n].PriceWithTax())
		if sum.LessThan(bestSum) {
			bestSum = sum
			bestStart = i - n + 1
		}
	}

	window := remaining[bestStart : bestStart+n]
	prices := taxedPrices(window)
	start := window[0].LocalHour(loc)
	end := window[n-1].LocalHour(loc)

	return &Window{
		Start:     start,
		End:       end,
		StartHour: start.Hour(),
		EndHour:   end.Hour(),
		Average:   bestSum.Div(decimal.NewFromInt(int64(n))),
		Prices:    prices,
	}
}

// CheapestRemainingHours returns up to n rows strictly after the hour
// containing now, ranked ascending by price rather than by time
func CheapestRemainingHours(series []domain.SpotPriceHour, n int, now time.Time, loc *time.Location) []domain.SpotPriceHour {
	if n <= 0 {
		return nil
	}

	hour := hourStart(now, loc)
	upcoming := make([]domain.SpotPriceHour, 0, len(series))
	for _, row := range series {
		if row.LocalHour(loc).After(hour) {
			upcoming = append(upcoming, row)
		}
	}
	if len(upcoming) == 0 {
		return nil
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].PriceWithTax().LessThan(upcoming[j].PriceWithTax())
	})
	if len(upcoming) > n {
		upcoming = upcoming[:n]
	}
	return upcoming
}

// Volatility computes population variance, standard deviation, range and
// average; nil for an empty series. Variance and deviation are float64:
// square roots do not stay decimal.
func Volatility(series []domain.SpotPriceHour) *VolatilityStats {
	if len(series) == 0 {
		return nil
	}

	ps := taxedPrices(series)
	sum := decimal.Zero
	min, max := ps[0], ps[0]
	for _, p := range ps {
		sum = sum.Add(p)
		if p.LessThan(min) {
			min = p
		}
		if p.GreaterThan(max) {
			max = p
		}
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(ps))))

	avgF := avg.InexactFloat64()
	var variance float64
	for _, p := range ps {
		d := p.InexactFloat64() - avgF
		variance += d * d
	}
	variance /= float64(len(ps))

	return &VolatilityStats{
		Variance:     variance,
		StdDeviation: math.Sqrt(variance),
		Range:        max.Sub(min),
		Average:      avg,
	}
}

// PotentialSavings compares paying the overall average for nHours×kwhPerHour
// against concentrating the same energy into the cheapest nHours. Nil when
// the series holds fewer than nHours rows.
func PotentialSavings(series []domain.SpotPriceHour, nHours int, kwhPerHour decimal.Decimal) *Savings {
	if nHours <= 0 || len(series) < nHours {
		return nil
	}

	ps := taxedPrices(series)
	overall := mean(ps)

	sorted := make([]decimal.Decimal, len(ps))
	copy(sorted, ps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	optimized := mean(sorted[:nHours])

	totalKWh := kwhPerHour.Mul(decimal.NewFromInt(int64(nHours)))
	absolute := overall.Sub(optimized).Mul(totalKWh).Div(hundred) // cents -> EUR

	percent := decimal.Zero
	if !overall.IsZero() {
		percent = overall.Sub(optimized).Div(overall).Mul(hundred)
	}

	return &Savings{
		TotalKWh:       totalKWh,
		AveragePrice:   overall,
		OptimizedPrice: optimized,
		AbsoluteEUR:    absolute,
		Percent:        percent,
	}
}

func taxedPrices(series []domain.SpotPriceHour) []decimal.Decimal {
	ps := make([]decimal.Decimal, len(series))
	for i, row := range series {
		ps[i] = row.PriceWithTax()
	}
	return ps
}

func mean(ps []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(ps))))
}

// median uses the standard rule: middle value for odd counts, mean of the
// two middle values for even counts
func median(ps []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(ps))
	copy(sorted, ps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// hourStart truncates now to the start of its hour in loc
func hourStart(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
}
