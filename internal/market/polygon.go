package market

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/astocklab/astock-eval/internal/types"
)

// PolygonSource fetches daily aggregates from polygon.io. Useful when
// evaluating US-listed instruments with the same pipeline.
type PolygonSource struct {
	client *polygon.Client
}

// NewPolygonSource creates a source using the given API key.
func NewPolygonSource(apiKey string) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("polygon api key is empty")
	}

	return &PolygonSource{client: polygon.New(apiKey)}, nil
}

// FetchDaily implements Source.
func (s *PolygonSource) FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time, adjust types.AdjustMode) (types.PriceSeries, error) {
	params := models.ListAggsParams{
		Ticker:     symbol,
		From:       models.Millis(start),
		To:         models.Millis(end),
		Multiplier: 1,
		Timespan:   models.Day,
	}

	// Polygon only distinguishes adjusted and unadjusted prices; both
	// forward and backward modes map to its adjusted series.
	adjusted := adjust != types.AdjustNone
	params = *params.WithAdjusted(adjusted)

	iter := s.client.ListAggs(ctx, &params)

	var series types.PriceSeries

	for iter.Next() {
		agg := iter.Item()
		series = append(series, types.Bar{
			Date:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("failed to list aggs for %s: %w", symbol, iter.Err())
	}

	return series.Normalize(), nil
}
