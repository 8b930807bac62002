package folioval

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// CryptoProvider resolves prices for crypto-class instruments. It is a
// single trusted call without cross-provider fallback: a failure is passed
// through to the caller as is.
type CryptoProvider interface {
	// FetchPrices returns snapshots for a batch of symbols in one call.
	// A symbol the provider does not know is simply absent from the result.
	FetchPrices(ctx context.Context, symbols []string) (map[string]PriceSnapshot, error)
	// FetchHistory returns the daily historical series for one symbol.
	FetchHistory(ctx context.Context, symbol string) ([]PricePoint, error)
	Name() string
}

// CoinGeckoProvider implements CryptoProvider on the CoinGecko public API.
type CoinGeckoProvider struct {
	client   *http.Client
	history  *http.Client
	baseURL  string
	currency string // quote currency, lowercased (e.g. "eur")
	idMap    map[string]string
}

// defaultCoinIDs maps the common ticker symbols to CoinGecko coin ids.
var defaultCoinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"ADA":  "cardano",
	"SOL":  "solana",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"XRP":  "ripple",
	"DOGE": "dogecoin",
}

// NewCoinGeckoProvider creates the provider quoting in the given currency.
func NewCoinGeckoProvider(currency string, timeout time.Duration) *CoinGeckoProvider {
	clients := newTransports(timeout)
	return &CoinGeckoProvider{
		client:   clients[0],
		history:  dailyCached(clients[0]),
		baseURL:  "https://api.coingecko.com/api/v3",
		currency: strings.ToLower(currency),
		idMap:    defaultCoinIDs,
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) coinID(symbol string) string {
	if id, ok := p.idMap[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// pathFloat extracts one float64 from a loosely-shaped JSON document.
// The API is not strict about its shapes, so values are pulled by jsonpath
// rather than a rigid struct.
func pathFloat(doc any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", path, err)
	}
	// jsonpath sometimes wraps a single answer in a list.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("parsing %q: not a number: %v", path, jval)
	}
	return val, nil
}

func (p *CoinGeckoProvider) FetchPrices(ctx context.Context, symbols []string) (map[string]PriceSnapshot, error) {
	if len(symbols) == 0 {
		return map[string]PriceSnapshot{}, nil
	}
	ids := make([]string, len(symbols))
	for i, s := range symbols {
		ids[i] = p.coinID(s)
	}
	addr := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s&include_24hr_change=true",
		p.baseURL, strings.Join(ids, ","), p.currency)

	var doc any
	if err := jwget(ctx, p.client, addr, &doc); err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}

	snapshots := make(map[string]PriceSnapshot, len(symbols))
	now := time.Now()
	for i, symbol := range symbols {
		price, err := pathFloat(doc, fmt.Sprintf("$.%s.%s", ids[i], p.currency))
		if err != nil || price <= 0 {
			continue // unknown coin, left unresolved for the caller to flag
		}
		snap := PriceSnapshot{
			Instrument: symbol,
			Price:      price,
			AsOf:       now,
			Source:     p.Name(),
		}
		if change, err := pathFloat(doc, fmt.Sprintf("$.%s.%s_24h_change", ids[i], p.currency)); err == nil {
			snap.ChangePercent = Percent(change)
		}
		snapshots[symbol] = snap
	}
	return snapshots, nil
}

func (p *CoinGeckoProvider) FetchHistory(ctx context.Context, symbol string) ([]PricePoint, error) {
	addr := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=max&interval=daily",
		p.baseURL, p.coinID(symbol), p.currency)

	var doc any
	if err := jwget(ctx, p.history, addr, &doc); err != nil {
		return nil, fmt.Errorf("coingecko history %s: %w", symbol, err)
	}
	jval, err := jsonpath.Get("$.prices", doc)
	if err != nil {
		return nil, fmt.Errorf("coingecko history %s: %w", symbol, err)
	}
	rows, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("coingecko history %s: unexpected shape", symbol)
	}
	points := make([]PricePoint, 0, len(rows))
	for _, row := range rows {
		pair, ok := row.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		ms, msOK := pair[0].(float64)
		price, priceOK := pair[1].(float64)
		if !msOK || !priceOK || price <= 0 {
			continue
		}
		points = append(points, PricePoint{
			Date:  NewDate(time.UnixMilli(int64(ms)).UTC().Date()),
			Price: price,
		})
	}
	return points, nil
}
