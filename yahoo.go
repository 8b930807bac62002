package folioval

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// SecurityProvider resolves prices for traded securities (stocks, ETFs,
// funds) by ticker. Responses are untrusted; callers validate price
// positivity before use.
type SecurityProvider interface {
	// FetchPrice returns the current price snapshot for one ticker.
	FetchPrice(ctx context.Context, symbol string) (PriceSnapshot, error)
	// FetchMonthly returns the instrument's historical series at monthly
	// granularity, oldest first.
	FetchMonthly(ctx context.Context, symbol string) ([]PricePoint, error)
	Name() string
}

// YahooProvider implements SecurityProvider on the Yahoo Finance chart API.
// It holds a rotation of HTTP clients (direct, then proxies) and advances to
// the next one whenever a request fails, to ride out transient blocking of
// one egress path.
type YahooProvider struct {
	clients   []*http.Client
	history   *http.Client // daily disk-cached variant for the heavy series calls
	next      atomic.Int64
	symbolMap map[string]string
}

// NewYahooProvider creates the provider. Pass proxy URLs to extend the
// transport rotation beyond the direct client.
func NewYahooProvider(timeout time.Duration, proxies ...string) *YahooProvider {
	clients := newTransports(timeout, proxies...)
	return &YahooProvider{
		clients: clients,
		history: dailyCached(clients[0]),
		symbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) symbol(s string) string {
	if mapped, ok := p.symbolMap[s]; ok {
		return mapped
	}
	return s
}

// client returns the current transport of the rotation.
func (p *YahooProvider) client() *http.Client {
	return p.clients[int(p.next.Load())%len(p.clients)]
}

// rotate advances to the next transport after a failure.
func (p *YahooProvider) rotate() { p.next.Add(1) }

// yahooChart is the response shape of the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []any `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) fetchChart(ctx context.Context, client *http.Client, symbol, interval, rng string) (*yahooChart, error) {
	addr := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s",
		url.PathEscape(p.symbol(symbol)), interval, rng)
	var chart yahooChart
	if err := jwget(ctx, client, addr, &chart); err != nil {
		p.rotate()
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", symbol)
	}
	return &chart, nil
}

func (p *YahooProvider) FetchPrice(ctx context.Context, symbol string) (PriceSnapshot, error) {
	chart, err := p.fetchChart(ctx, p.client(), symbol, "1d", "1d")
	if err != nil {
		return PriceSnapshot{}, err
	}
	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return PriceSnapshot{}, fmt.Errorf("yahoo: non-positive price %v for %s", meta.RegularMarketPrice, symbol)
	}
	snap := PriceSnapshot{
		Instrument: symbol,
		Price:      meta.RegularMarketPrice,
		AsOf:       time.Now(),
		Source:     p.Name(),
	}
	if meta.PreviousClose > 0 {
		snap.ChangePercent = Percent(100 * (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose)
	}
	return snap, nil
}

func (p *YahooProvider) FetchMonthly(ctx context.Context, symbol string) ([]PricePoint, error) {
	chart, err := p.fetchChart(ctx, p.history, symbol, "1mo", "10y")
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quotes for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close
	points := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		price, ok := closes[i].(float64)
		if !ok || price <= 0 {
			continue // null bars (holidays, suspensions) are dropped
		}
		points = append(points, PricePoint{
			Date:  NewDate(time.Unix(ts, 0).UTC().Date()),
			Price: price,
		})
	}
	return points, nil
}
