// Package market provides daily bar retrieval from external market data
// services. Sources do not retry failed calls; retry policy, if any,
// belongs to the upstream service or the caller.
package market

import (
	"context"
	"time"

	"github.com/astocklab/astock-eval/internal/types"
)

// Source fetches the daily bars of one instrument over a date range.
type Source interface {
	// FetchDaily returns bars ascending by date, or an error when the
	// upstream call fails. An empty series with a nil error means the
	// instrument has no data in the range.
	FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time, adjust types.AdjustMode) (types.PriceSeries, error)
}
