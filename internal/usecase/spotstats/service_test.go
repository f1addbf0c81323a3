package spotstats

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sepsi77/voltikka-sub000/internal/adapter/repository/memory"
	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

func newTestService(t *testing.T, rows ...[]domain.SpotPriceHour) *Service {
	t.Helper()
	repo := memory.NewSpotPriceRepository()
	for _, batch := range rows {
		require.NoError(t, repo.Add(batch...))
	}
	return NewService(repo, "FI", time.UTC, zap.NewNop())
}

func fullDay(t *testing.T, base time.Time, price float64) []domain.SpotPriceHour {
	t.Helper()
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = price
	}
	return day(t, base, 0, prices...)
}

func TestHistoricalComparison_AllPeriodsPresent(t *testing.T) {
	today := baseDay
	svc := newTestService(t,
		fullDay(t, today, 10),
		fullDay(t, today.AddDate(0, 0, -1), 8),
		fullDay(t, today.AddDate(0, 0, -2), 8),
		fullDay(t, today.AddDate(0, 0, -3), 8),
	)

	cmp, err := svc.HistoricalComparison(context.Background(), today.Add(12*time.Hour))
	require.NoError(t, err)

	require.NotNil(t, cmp.TodayAverage)
	require.NotNil(t, cmp.YesterdayAverage)
	require.NotNil(t, cmp.WeekAverage)
	assert.True(t, cmp.TodayAverage.Equal(decimal.NewFromInt(10)))
	assert.True(t, cmp.YesterdayAverage.Equal(decimal.NewFromInt(8)))

	require.NotNil(t, cmp.VsYesterdayPercent)
	assert.True(t, cmp.VsYesterdayPercent.Equal(decimal.NewFromInt(25)), "today is 25%% above yesterday, got %s", cmp.VsYesterdayPercent)
}

func TestHistoricalComparison_MissingPeriodsDegradeToNil(t *testing.T) {
	svc := newTestService(t, fullDay(t, baseDay, 10))

	cmp, err := svc.HistoricalComparison(context.Background(), baseDay.Add(12*time.Hour))
	require.NoError(t, err)

	require.NotNil(t, cmp.TodayAverage)
	assert.Nil(t, cmp.YesterdayAverage, "a missing comparison period is data absence, not an error")
	assert.Nil(t, cmp.VsYesterdayPercent)
	assert.Nil(t, cmp.WeekAverage)
	assert.Nil(t, cmp.VsWeekPercent)
}

func TestMonthlyComparison(t *testing.T) {
	// Two days of data this month, the whole reference day last month.
	current := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t,
		fullDay(t, current, 12),
		fullDay(t, current.AddDate(0, 0, -1), 12),
		fullDay(t, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), 10),
	)

	cmp, err := svc.MonthlyComparison(context.Background(), current.Add(12*time.Hour))
	require.NoError(t, err)

	require.NotNil(t, cmp.CurrentAverage)
	require.NotNil(t, cmp.PreviousAverage)
	require.NotNil(t, cmp.DeltaPercent)
	assert.True(t, cmp.DeltaPercent.Equal(decimal.NewFromInt(20)), "12 vs 10 is +20%%, got %s", cmp.DeltaPercent)
	assert.Equal(t, 2, cmp.CurrentDays, "partial months report how many days they actually cover")
	assert.Equal(t, 1, cmp.PreviousDays)
}

func TestMonthlyComparison_NoReferenceData(t *testing.T) {
	current := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, fullDay(t, current, 12))

	cmp, err := svc.MonthlyComparison(context.Background(), current.Add(12*time.Hour))
	require.NoError(t, err)

	assert.Nil(t, cmp.PreviousAverage)
	assert.Nil(t, cmp.DeltaPercent)
	assert.Equal(t, 0, cmp.PreviousDays)
}

func TestYearOverYearComparison(t *testing.T) {
	current := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t,
		fullDay(t, current, 15),
		fullDay(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 10),
	)

	cmp, err := svc.YearOverYearComparison(context.Background(), current.Add(12*time.Hour))
	require.NoError(t, err)

	require.NotNil(t, cmp.DeltaPercent)
	assert.True(t, cmp.DeltaPercent.Equal(decimal.NewFromInt(50)), "15 vs 10 a year earlier is +50%%")
}

func TestBestWindow_InsufficientData(t *testing.T) {
	svc := newTestService(t, day(t, baseDay, 0, 5, 5))

	_, err := svc.BestWindow(context.Background(), baseDay, 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestBestWindow_RejectsNonPositiveSize(t *testing.T) {
	svc := newTestService(t, day(t, baseDay, 0, 5, 5))

	var verr *domain.ValidationError
	_, err := svc.BestWindow(context.Background(), baseDay, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "window_hours", verr.Field)

	_, err = svc.BestWindow(context.Background(), baseDay, -3)
	assert.ErrorAs(t, err, &verr)
}

func TestBestWindow_AcrossMidnight(t *testing.T) {
	today := day(t, baseDay, 20, 10, 10, 10, 2)
	tomorrow := day(t, baseDay.AddDate(0, 0, 1), 0, 1, 3, 10)
	svc := newTestService(t, today, tomorrow)

	window, err := svc.BestWindow(context.Background(), baseDay.Add(21*time.Hour), 3)
	require.NoError(t, err)
	assert.Equal(t, 23, window.StartHour)
	assert.Equal(t, 1, window.EndHour)
}

func TestCurrentPriceAndDayStatistics(t *testing.T) {
	svc := newTestService(t, day(t, baseDay, 0, 1, 2, 3, 4))

	row, err := svc.CurrentPrice(context.Background(), baseDay.Add(90*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.PriceNoTax.Equal(decimal.NewFromInt(2)))

	stats, err := svc.DayStatistics(context.Background(), baseDay)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.True(t, stats.Median.Equal(decimal.NewFromFloat(2.5)))

	empty, err := svc.DayStatistics(context.Background(), baseDay.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestSavingsPotential_Service(t *testing.T) {
	svc := newTestService(t, day(t, baseDay, 0, 1, 3, 7, 9))

	savings, err := svc.SavingsPotential(context.Background(), baseDay, 2, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NotNil(t, savings)
	assert.True(t, savings.Percent.Equal(decimal.NewFromInt(60)))

	none, err := svc.SavingsPotential(context.Background(), baseDay, 10, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Nil(t, none, "fewer hours than requested yields nil, not an error")
}

func TestCheapestUpcoming_Service(t *testing.T) {
	svc := newTestService(t, day(t, baseDay, 0, 5, 9, 1, 7, 3, 8))

	cheapest, err := svc.CheapestUpcoming(context.Background(), baseDay.Add(time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, cheapest, 2)
	assert.True(t, cheapest[0].PriceNoTax.Equal(decimal.NewFromInt(1)))
}
