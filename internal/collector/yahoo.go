package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eliezerRevach/finance-data/internal/model"
)

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func at(series []interface{}, i int) (float64, bool) {
	if i >= len(series) {
		return 0, false
	}
	return toFloat(series[i])
}

// FetchDailyHistory fetches daily bars for symbol over [start, end].
func (f *YahooFetcher) FetchDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*model.RawTable, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		f.BaseURL, url.PathEscape(symbol), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: empty result for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return &model.RawTable{Symbol: symbol}, nil
	}
	quote := result.Indicators.Quote[0]

	// Adjusted close is a separate indicator block and is not always present.
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	columns := []string{"Open", "High", "Low", "Close", "Volume"}
	if adj != nil {
		columns = append(columns, "Adj Close")
	}

	table := &model.RawTable{Symbol: symbol, Columns: columns}
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		if !okO && !okH && !okL && !okC {
			continue // null bar (holiday, halted session)
		}
		fields := map[string]decimal.Decimal{
			"Open":  decimal.NewFromFloat(o),
			"High":  decimal.NewFromFloat(h),
			"Low":   decimal.NewFromFloat(l),
			"Close": decimal.NewFromFloat(c),
		}
		if v, ok := at(quote.Volume, i); ok {
			fields["Volume"] = decimal.NewFromFloat(v)
		} else {
			fields["Volume"] = decimal.Zero
		}
		if adj != nil {
			if a, ok := at(adj, i); ok {
				fields["Adj Close"] = decimal.NewFromFloat(a)
			} else {
				fields["Adj Close"] = fields["Close"]
			}
		}
		table.Rows = append(table.Rows, model.RawRow{Time: time.Unix(ts, 0).UTC(), Fields: fields})
	}

	sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i].Time.Before(table.Rows[j].Time) })
	return table, nil
}
