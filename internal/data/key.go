// Package data is the single entry point for price series retrieval. It
// layers an in-memory cache and a durable on-disk cache in front of a
// market data source so repeated evaluations never refetch the same range.
package data

import (
	"fmt"
	"time"

	"github.com/astocklab/astock-eval/internal/types"
)

const dateLayout = "2006-01-02"

// CacheKey identifies one cached price series. Two keys with identical
// fields are interchangeable; the key is the sole cache identity.
type CacheKey struct {
	Symbol string
	Start  string
	End    string
	Adjust types.AdjustMode
}

// NewCacheKey builds a key from a request, normalizing dates so that
// requests for the same calendar range always collide.
func NewCacheKey(symbol string, start time.Time, end time.Time, adjust types.AdjustMode) CacheKey {
	return CacheKey{
		Symbol: symbol,
		Start:  start.Format(dateLayout),
		End:    end.Format(dateLayout),
		Adjust: adjust,
	}
}

// FileName returns the durable cache file name for this key.
func (k CacheKey) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%s.parquet", k.Symbol, k.Start, k.End, k.Adjust)
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s[%s~%s,%s]", k.Symbol, k.Start, k.End, k.Adjust)
}
