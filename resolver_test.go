package folioval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSecurityProvider is a mock implementation of SecurityProvider for testing
type MockSecurityProvider struct {
	mock.Mock
}

func (m *MockSecurityProvider) FetchPrice(ctx context.Context, symbol string) (PriceSnapshot, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(PriceSnapshot), args.Error(1)
}

func (m *MockSecurityProvider) FetchMonthly(ctx context.Context, symbol string) ([]PricePoint, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PricePoint), args.Error(1)
}

func (m *MockSecurityProvider) Name() string { return "mock-securities" }

// MockCryptoProvider is a mock implementation of CryptoProvider for testing
type MockCryptoProvider struct {
	mock.Mock
}

func (m *MockCryptoProvider) FetchPrices(ctx context.Context, symbols []string) (map[string]PriceSnapshot, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]PriceSnapshot), args.Error(1)
}

func (m *MockCryptoProvider) FetchHistory(ctx context.Context, symbol string) ([]PricePoint, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PricePoint), args.Error(1)
}

func (m *MockCryptoProvider) Name() string { return "mock-crypto" }

// newTestResolver builds a resolver over mocks with an instant backoff so
// the retry tests run fast.
func newTestResolver(cache PriceCache, crypto *MockCryptoProvider, securities *MockSecurityProvider) *Resolver {
	r := NewResolver(cache, crypto, securities, []string{"BTC", "ETH"})
	r.backoff = func(int) time.Duration { return 0 }
	return r
}

func snap(id string, price float64) PriceSnapshot {
	return PriceSnapshot{Instrument: id, Price: price, AsOf: time.Now(), Source: "test"}
}

func TestResolverIsCrypto(t *testing.T) {
	r := newTestResolver(NewMemoryCache(0), new(MockCryptoProvider), new(MockSecurityProvider))
	assert.True(t, r.IsCrypto("BTC"))
	assert.True(t, r.IsCrypto("btc"))
	assert.False(t, r.IsCrypto("AAPL"))
}

func TestResolveCurrentCacheHitSkipsNetwork(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	cache.Put(map[string]PriceSnapshot{"AAPL": snap("AAPL", 150)})

	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(cache, crypto, securities)

	out := r.ResolveCurrent(context.Background(), []string{"AAPL"})
	require.Len(t, out, 1)
	assert.True(t, out["AAPL"].Resolved())
	assert.Equal(t, 150.0, out["AAPL"].Snapshot.Price)
	// No expectations were set: any provider call would have failed the test.
	securities.AssertNotCalled(t, "FetchPrice", mock.Anything, mock.Anything)
	crypto.AssertNotCalled(t, "FetchPrices", mock.Anything, mock.Anything)
}

func TestResolveCurrentPartition(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(cache, crypto, securities)

	securities.On("FetchPrice", mock.Anything, "AAPL").Return(snap("AAPL", 150), nil).Once()
	crypto.On("FetchPrices", mock.Anything, []string{"BTC"}).
		Return(map[string]PriceSnapshot{"BTC": snap("BTC", 60000)}, nil).Once()

	out := r.ResolveCurrent(context.Background(), []string{"AAPL", "BTC"})
	require.Len(t, out, 2)
	assert.True(t, out["AAPL"].Resolved())
	assert.True(t, out["BTC"].Resolved())
	securities.AssertExpectations(t)
	crypto.AssertExpectations(t)

	// Both fresh snapshots were written back to the cache.
	_, ok := cache.Get("AAPL")
	assert.True(t, ok, "AAPL not written back to the cache")
	_, ok = cache.Get("BTC")
	assert.True(t, ok, "BTC not written back to the cache")
}

func TestResolveCurrentRetriesSecurities(t *testing.T) {
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(NewMemoryCache(time.Hour), crypto, securities)

	boom := errors.New("boom")
	securities.On("FetchPrice", mock.Anything, "AAPL").Return(PriceSnapshot{}, boom).Twice()
	securities.On("FetchPrice", mock.Anything, "AAPL").Return(snap("AAPL", 151), nil).Once()

	out := r.ResolveCurrent(context.Background(), []string{"AAPL"})
	require.True(t, out["AAPL"].Resolved(), "resolution failed despite a successful final attempt")
	assert.Equal(t, 151.0, out["AAPL"].Snapshot.Price)
	securities.AssertExpectations(t)
}

func TestResolveCurrentUnresolvedMarker(t *testing.T) {
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(NewMemoryCache(time.Hour), crypto, securities)

	securities.On("FetchPrice", mock.Anything, "GONE").Return(PriceSnapshot{}, errors.New("no such symbol")).Times(3)

	out := r.ResolveCurrent(context.Background(), []string{"GONE"})
	res := out["GONE"]
	require.False(t, res.Resolved())
	assert.ErrorIs(t, res.Err, ErrUnresolved)
	securities.AssertExpectations(t)
}

func TestResolveCurrentRejectsNonPositive(t *testing.T) {
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(NewMemoryCache(time.Hour), crypto, securities)

	securities.On("FetchPrice", mock.Anything, "AAPL").Return(snap("AAPL", 0), nil).Once()

	out := r.ResolveCurrent(context.Background(), []string{"AAPL"})
	assert.ErrorIs(t, out["AAPL"].Err, ErrUnresolved)
}

func TestResolveCurrentCryptoUnknownSymbol(t *testing.T) {
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(NewMemoryCache(time.Hour), crypto, securities)

	// The provider answers the batch but knows nothing about ETH.
	crypto.On("FetchPrices", mock.Anything, mock.Anything).
		Return(map[string]PriceSnapshot{"BTC": snap("BTC", 60000)}, nil).Once()

	out := r.ResolveCurrent(context.Background(), []string{"BTC", "ETH"})
	assert.True(t, out["BTC"].Resolved())
	assert.ErrorIs(t, out["ETH"].Err, ErrUnresolved)
}

func TestResolveCurrentCancelledContextCommitsNothing(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(cache, crypto, securities)

	ctx, cancel := context.WithCancel(context.Background())
	// The fetch succeeds but the overall pass is cancelled while it runs.
	securities.On("FetchPrice", mock.Anything, "AAPL").
		Run(func(mock.Arguments) { cancel() }).
		Return(snap("AAPL", 150), nil).Once()

	out := r.ResolveCurrent(ctx, []string{"AAPL"})
	assert.ErrorIs(t, out["AAPL"].Err, ErrUnresolved, "partial pass displayed as authoritative")
	_, ok := cache.Get("AAPL")
	assert.False(t, ok, "cancelled pass committed to the cache")
}

func TestHistoricalTables(t *testing.T) {
	securities := new(MockSecurityProvider)
	crypto := new(MockCryptoProvider)
	r := newTestResolver(NewMemoryCache(time.Hour), crypto, securities)

	points := []PricePoint{{Date: NewDate(2025, time.January, 31), Price: 100}}
	securities.On("FetchMonthly", mock.Anything, "AAPL").Return(points, nil).Once()
	securities.On("FetchMonthly", mock.Anything, "MSFT").Return(nil, errors.New("rate limited")).Once()
	crypto.On("FetchHistory", mock.Anything, "BTC").
		Return([]PricePoint{{Date: NewDate(2025, time.January, 31), Price: 60000}}, nil).Once()

	tables, err := r.HistoricalTables(context.Background(), []string{"AAPL", "MSFT", "BTC"})
	require.Len(t, tables, 3)

	// A failed instrument yields an empty table plus a joined error, never
	// a missing map entry.
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MSFT")
	assert.Equal(t, 0, tables["MSFT"].Len())

	price, ok := tables["AAPL"].Get(NewMonth(2025, time.January))
	assert.True(t, ok)
	assert.Equal(t, 100.0, price)
	price, ok = tables["BTC"].Get(NewMonth(2025, time.January))
	assert.True(t, ok)
	assert.Equal(t, 60000.0, price)
}
