package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/astocklab/astock-eval/internal/types"
)

const defaultEastMoneyBaseURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

// EastMoneySource fetches A-share daily bars from the eastmoney kline
// endpoint, the same upstream used by akshare.
type EastMoneySource struct {
	client  *http.Client
	baseURL string
}

// NewEastMoneySource creates a source against the public eastmoney API.
func NewEastMoneySource() *EastMoneySource {
	return &EastMoneySource{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultEastMoneyBaseURL,
	}
}

// NewEastMoneySourceWithURL creates a source against a custom endpoint.
// Used by tests to point at a local server.
func NewEastMoneySourceWithURL(baseURL string) *EastMoneySource {
	return &EastMoneySource{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type eastMoneyResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDaily implements Source.
func (s *EastMoneySource) FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time, adjust types.AdjustMode) (types.PriceSeries, error) {
	query := url.Values{}
	query.Set("secid", secID(symbol))
	query.Set("klt", "101") // daily bars
	query.Set("fqt", adjustCode(adjust))
	query.Set("beg", start.Format("20060102"))
	query.Set("end", end.Format("20060102"))
	query.Set("fields1", "f1,f2,f3,f4,f5,f6")
	query.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, symbol)
	}

	var payload eastMoneyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response for %s: %w", symbol, err)
	}

	if payload.Data == nil {
		return nil, nil
	}

	series := make(types.PriceSeries, 0, len(payload.Data.Klines))

	for _, line := range payload.Data.Klines {
		bar, err := parseKline(line)
		if err != nil {
			return nil, fmt.Errorf("bad kline for %s: %w", symbol, err)
		}

		series = append(series, bar)
	}

	return series.Normalize(), nil
}

// secID maps a 6-digit instrument code to eastmoney's exchange-prefixed
// id: "1." for Shanghai (6xxxxx), "0." for Shenzhen.
func secID(symbol string) string {
	if strings.HasPrefix(symbol, "6") {
		return "1." + symbol
	}

	return "0." + symbol
}

func adjustCode(adjust types.AdjustMode) string {
	switch adjust {
	case types.AdjustForward:
		return "1"
	case types.AdjustBackward:
		return "2"
	default:
		return "0"
	}
}

// parseKline parses one "date,open,close,high,low,volume,amount" line.
func parseKline(line string) (types.Bar, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 7 {
		return types.Bar{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}

	date, err := time.ParseInLocation("2006-01-02", fields[0], time.UTC)
	if err != nil {
		return types.Bar{}, err
	}

	numeric := make([]float64, 6)

	for i, field := range fields[1:7] {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return types.Bar{}, err
		}

		numeric[i] = value
	}

	return types.Bar{
		Date:   date,
		Open:   numeric[0],
		Close:  numeric[1],
		High:   numeric[2],
		Low:    numeric[3],
		Volume: numeric[4],
		Amount: numeric[5],
	}, nil
}
