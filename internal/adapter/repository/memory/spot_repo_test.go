package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

func row(ts time.Time, price float64) domain.SpotPriceHour {
	return domain.SpotPriceHour{
		ID:         uuid.New(),
		Region:     "FI",
		TS:         ts,
		PriceNoTax: decimal.NewFromFloat(price),
		VatRate:    decimal.NewFromFloat(0.255),
	}
}

func TestSpotPriceRepository_RangeIsHalfOpenAndOrdered(t *testing.T) {
	repo := NewSpotPriceRepository()
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	require.NoError(t, repo.Add(row(base.Add(2*time.Hour), 3), row(base, 1), row(base.Add(time.Hour), 2)))

	rows, err := repo.ListRange(context.Background(), "FI", base, base.Add(2*time.Hour))
	require.NoError(t, err)

	require.Len(t, rows, 2, "the range end is exclusive")
	assert.True(t, rows[0].TS.Before(rows[1].TS))
}

func TestSpotPriceRepository_SameHourReplaces(t *testing.T) {
	repo := NewSpotPriceRepository()
	ts := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Add(row(ts, 5)))
	require.NoError(t, repo.Add(row(ts, 7)))

	rows, err := repo.ListRange(context.Background(), "FI", ts, ts.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].PriceNoTax.Equal(decimal.NewFromInt(7)), "a re-ingested hour replaces the old row")
}

func TestSpotPriceRepository_RejectsInvalidRows(t *testing.T) {
	repo := NewSpotPriceRepository()
	bad := row(time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC), 5)

	assert.Error(t, repo.Add(bad), "misaligned rows never enter the store")
}
