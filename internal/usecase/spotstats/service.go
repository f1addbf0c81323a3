package spotstats

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

// HistoricalComparison sets today's average against yesterday and the
// trailing seven days. Nil fields mean the comparison period has no data;
// that is a normal condition, not an error.
type HistoricalComparison struct {
	TodayAverage       *decimal.Decimal `json:"today_average"`
	YesterdayAverage   *decimal.Decimal `json:"yesterday_average"`
	WeekAverage        *decimal.Decimal `json:"week_average"`
	VsYesterdayPercent *decimal.Decimal `json:"vs_yesterday_percent"`
	VsWeekPercent      *decimal.Decimal `json:"vs_week_percent"`
}

// MonthComparison sets one calendar month's average against a reference
// month, reporting how many days of data each side actually has
type MonthComparison struct {
	CurrentAverage  *decimal.Decimal `json:"current_average"`
	PreviousAverage *decimal.Decimal `json:"previous_average"`
	DeltaPercent    *decimal.Decimal `json:"delta_percent"`
	CurrentDays     int              `json:"current_days"`
	PreviousDays    int              `json:"previous_days"`
}

// Service runs the analytics over stored hourly prices for one market
// region. The repository is the only collaborator; every calculation is a
// pure function over what it returns, with "now" passed in explicitly.
type Service struct {
	prices domain.SpotPriceRepository
	region string
	loc    *time.Location
	logger *zap.Logger
}

// NewService creates a new analytics Service for a market region evaluated
// in the given civil timezone
func NewService(prices domain.SpotPriceRepository, region string, loc *time.Location, logger *zap.Logger) *Service {
	return &Service{
		prices: prices,
		region: region,
		loc:    loc,
		logger: logger,
	}
}

// CurrentPrice returns the stored row for the hour containing now, nil when
// that hour has no data
func (s *Service) CurrentPrice(ctx context.Context, now time.Time) (*domain.SpotPriceHour, error) {
	rows, err := s.prices.ListDay(ctx, s.region, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's prices: %w", err)
	}
	return CurrentPrice(rows, now, s.loc), nil
}

// DayStatistics returns min/max/average/median for the local day containing
// now, nil when the day has no data
func (s *Service) DayStatistics(ctx context.Context, now time.Time) (*Stats, error) {
	rows, err := s.prices.ListDay(ctx, s.region, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's prices: %w", err)
	}
	return Statistics(rows), nil
}

// DayVolatility returns the volatility figures for the local day containing
// now, nil when the day has no data
func (s *Service) DayVolatility(ctx context.Context, now time.Time) (*VolatilityStats, error) {
	rows, err := s.prices.ListDay(ctx, s.region, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's prices: %w", err)
	}
	return Volatility(rows), nil
}

// BestWindow finds the cheapest n consecutive hours among the remaining
// hours of today plus all of tomorrow. Fails with ErrInsufficientData when
// fewer than n hours of data remain.
func (s *Service) BestWindow(ctx context.Context, now time.Time, n int) (*Window, error) {
	if n < 1 {
		return nil, &domain.ValidationError{Field: "window_hours", Reason: "window size must be at least one hour"}
	}
	rows, err := s.todayAndTomorrow(ctx, now)
	if err != nil {
		return nil, err
	}
	window := BestConsecutiveHours(rows, n, now, s.loc)
	if window == nil {
		return nil, domain.ErrInsufficientData
	}

	s.logger.Debug("best window found",
		zap.Int("hours", n),
		zap.Int("start_hour", window.StartHour),
		zap.String("average", window.Average.String()),
	)
	return window, nil
}

// CheapestUpcoming returns up to n of the cheapest hours strictly after the
// current hour, today or tomorrow, ranked by price
func (s *Service) CheapestUpcoming(ctx context.Context, now time.Time, n int) ([]domain.SpotPriceHour, error) {
	rows, err := s.todayAndTomorrow(ctx, now)
	if err != nil {
		return nil, err
	}
	return CheapestRemainingHours(rows, n, now, s.loc), nil
}

// SavingsPotential estimates what shifting nHours×kwhPerHour of load into
// the cheapest hours of today would save. Nil when today has fewer than
// nHours of data.
func (s *Service) SavingsPotential(ctx context.Context, now time.Time, nHours int, kwhPerHour decimal.Decimal) (*Savings, error) {
	rows, err := s.prices.ListDay(ctx, s.region, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's prices: %w", err)
	}
	return PotentialSavings(rows, nHours, kwhPerHour), nil
}

// HistoricalComparison compares today's average against yesterday and the
// trailing seven days. Missing periods degrade to nil deltas.
func (s *Service) HistoricalComparison(ctx context.Context, now time.Time) (*HistoricalComparison, error) {
	today, err := s.dayAverage(ctx, now)
	if err != nil {
		return nil, err
	}
	yesterday, err := s.dayAverage(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	todayStart := s.dayStart(now)
	weekRows, err := s.prices.ListRange(ctx, s.region, todayStart.AddDate(0, 0, -7), todayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load trailing week: %w", err)
	}
	week := averageOf(weekRows)

	return &HistoricalComparison{
		TodayAverage:       today,
		YesterdayAverage:   yesterday,
		WeekAverage:        week,
		VsYesterdayPercent: pctDelta(today, yesterday),
		VsWeekPercent:      pctDelta(today, week),
	}, nil
}

// MonthlyComparison compares the current calendar month against the
// immediately preceding one
func (s *Service) MonthlyComparison(ctx context.Context, now time.Time) (*MonthComparison, error) {
	monthStart := s.monthStart(now)
	return s.compareMonths(ctx, monthStart, monthStart.AddDate(0, -1, 0))
}

// YearOverYearComparison compares the current calendar month against the
// same month one year earlier
func (s *Service) YearOverYearComparison(ctx context.Context, now time.Time) (*MonthComparison, error) {
	monthStart := s.monthStart(now)
	return s.compareMonths(ctx, monthStart, monthStart.AddDate(-1, 0, 0))
}

func (s *Service) compareMonths(ctx context.Context, currentStart, referenceStart time.Time) (*MonthComparison, error) {
	currentRows, err := s.prices.ListRange(ctx, s.region, currentStart, currentStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to load current month: %w", err)
	}
	referenceRows, err := s.prices.ListRange(ctx, s.region, referenceStart, referenceStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to load reference month: %w", err)
	}

	current := averageOf(currentRows)
	reference := averageOf(referenceRows)

	return &MonthComparison{
		CurrentAverage:  current,
		PreviousAverage: reference,
		DeltaPercent:    pctDelta(current, reference),
		CurrentDays:     s.countDays(currentRows),
		PreviousDays:    s.countDays(referenceRows),
	}, nil
}

func (s *Service) todayAndTomorrow(ctx context.Context, now time.Time) ([]domain.SpotPriceHour, error) {
	start := s.dayStart(now)
	rows, err := s.prices.ListRange(ctx, s.region, start, start.AddDate(0, 0, 2))
	if err != nil {
		return nil, fmt.Errorf("failed to load today and tomorrow: %w", err)
	}
	return rows, nil
}

func (s *Service) dayAverage(ctx context.Context, day time.Time) (*decimal.Decimal, error) {
	rows, err := s.prices.ListDay(ctx, s.region, day, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load day: %w", err)
	}
	return averageOf(rows), nil
}

func (s *Service) dayStart(now time.Time) time.Time {
	t := now.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) monthStart(now time.Time) time.Time {
	t := now.In(s.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
}

func (s *Service) countDays(rows []domain.SpotPriceHour) int {
	days := make(map[civil.Date]struct{})
	for _, row := range rows {
		days[civil.DateOf(row.TS.In(s.loc))] = struct{}{}
	}
	return len(days)
}

func averageOf(rows []domain.SpotPriceHour) *decimal.Decimal {
	if len(rows) == 0 {
		return nil
	}
	avg := mean(taxedPrices(rows))
	return &avg
}

// pctDelta returns (current-reference)/reference×100, nil when either side
// is missing or the reference is zero
func pctDelta(current, reference *decimal.Decimal) *decimal.Decimal {
	if current == nil || reference == nil || reference.IsZero() {
		return nil
	}
	delta := current.Sub(*reference).Div(*reference).Mul(hundred)
	return &delta
}
