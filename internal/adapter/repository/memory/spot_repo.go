package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sepsi77/voltikka-sub000/internal/domain"
)

// SpotPriceRepository is an in-memory implementation of
// domain.SpotPriceRepository. Rows are kept sorted by timestamp per region.
type SpotPriceRepository struct {
	mu   sync.RWMutex
	rows map[string][]domain.SpotPriceHour
}

// NewSpotPriceRepository creates an empty in-memory spot price repository
func NewSpotPriceRepository() *SpotPriceRepository {
	return &SpotPriceRepository{
		rows: make(map[string][]domain.SpotPriceHour),
	}
}

// Add stores rows after validating them. Rows for the same region and hour
// replace the previous value.
func (r *SpotPriceRepository) Add(rows ...domain.SpotPriceHour) error {
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		existing := r.rows[row.Region]
		replaced := false
		for i := range existing {
			if existing[i].TS.Equal(row.TS) {
				existing[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, row)
		}
		sort.Slice(existing, func(i, j int) bool {
			return existing[i].TS.Before(existing[j].TS)
		})
		r.rows[row.Region] = existing
	}
	return nil
}

// ListRange retrieves rows for a region with from <= TS < to, ordered by
// timestamp ascending
func (r *SpotPriceRepository) ListRange(_ context.Context, region string, from, to time.Time) ([]domain.SpotPriceHour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.SpotPriceHour
	for _, row := range r.rows[region] {
		if row.TS.Before(from) || !row.TS.Before(to) {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

// ListDay retrieves the rows of the local calendar day containing day
func (r *SpotPriceRepository) ListDay(ctx context.Context, region string, day time.Time, loc *time.Location) ([]domain.SpotPriceHour, error) {
	t := day.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return r.ListRange(ctx, region, start, start.AddDate(0, 0, 1))
}
