package folioval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrUnresolved marks an instrument no source yielded a usable price for.
// It is an explicit marker, never a silently wrong price.
var ErrUnresolved = errors.New("price unresolved")

// Resolution is the per-instrument outcome of a resolve pass: a snapshot or
// an explicit error, never both.
type Resolution struct {
	Snapshot PriceSnapshot
	Err      error
}

// Resolved reports whether the instrument got a usable price.
func (r Resolution) Resolved() bool { return r.Err == nil }

// Resolver routes price requests to the right provider class, consults the
// cache first, and normalizes whatever the providers answer into
// PriceSnapshot records.
type Resolver struct {
	cache      PriceCache
	crypto     CryptoProvider
	securities SecurityProvider

	cryptoSymbols map[string]struct{}

	retries     int                       // retries after the first attempt
	backoff     func(int) time.Duration   // wait before retry n (0-based)
	callTimeout time.Duration             // per network call
	fanout      int                       // max concurrent security fetches
}

// NewResolver wires a resolver with the default retry policy: 2 retries with
// exponential backoff (1s, 2s), 10s per call, and a bounded fan-out.
// cryptoSymbols lists the instruments to route to the crypto provider.
func NewResolver(cache PriceCache, crypto CryptoProvider, securities SecurityProvider, cryptoSymbols []string) *Resolver {
	set := make(map[string]struct{}, len(cryptoSymbols))
	for _, s := range cryptoSymbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	return &Resolver{
		cache:         cache,
		crypto:        crypto,
		securities:    securities,
		cryptoSymbols: set,
		retries:       2,
		backoff:       func(n int) time.Duration { return time.Duration(1<<n) * time.Second },
		callTimeout:   10 * time.Second,
		fanout:        4,
	}
}

// IsCrypto reports whether an instrument is routed to the crypto provider.
func (r *Resolver) IsCrypto(instrument string) bool {
	_, ok := r.cryptoSymbols[strings.ToUpper(instrument)]
	return ok
}

// ResolveCurrent resolves the current price of every instrument, returning
// one Resolution per requested id. Cached-fresh instruments skip the
// network; the rest are fetched concurrently (batched for crypto) and the
// new snapshots are written back to the cache. When the context is
// cancelled, nothing is committed to the cache: a partial pass must not be
// displayed as authoritative.
func (r *Resolver) ResolveCurrent(ctx context.Context, instruments []string) map[string]Resolution {
	out := make(map[string]Resolution, len(instruments))

	var cryptoIDs, securityIDs []string
	for _, id := range instruments {
		if _, dup := out[id]; dup {
			continue
		}
		if snap, ok := r.cache.Get(id); ok {
			out[id] = Resolution{Snapshot: snap}
			continue
		}
		out[id] = Resolution{Err: ErrUnresolved}
		if r.IsCrypto(id) {
			cryptoIDs = append(cryptoIDs, id)
		} else {
			securityIDs = append(securityIDs, id)
		}
	}

	var mu sync.Mutex
	fresh := make(map[string]PriceSnapshot)

	gctx := ctx
	var g errgroup.Group
	g.SetLimit(r.fanout)

	// Crypto-class instruments: one batched call, no retry and no
	// cross-provider fallback. A failure is passed through per instrument.
	if len(cryptoIDs) > 0 {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, r.callTimeout)
			defer cancel()
			snaps, err := r.crypto.FetchPrices(cctx, cryptoIDs)
			mu.Lock()
			defer mu.Unlock()
			for _, id := range cryptoIDs {
				if snap, ok := snaps[id]; ok && snap.Price > 0 {
					out[id] = Resolution{Snapshot: snap}
					fresh[id] = snap
				} else if err != nil {
					out[id] = Resolution{Err: fmt.Errorf("%w: %s: %v", ErrUnresolved, id, err)}
				} else {
					out[id] = Resolution{Err: fmt.Errorf("%w: %s: unknown to %s", ErrUnresolved, id, r.crypto.Name())}
				}
			}
			return nil
		})
	}

	// Security-class instruments fan out, one goroutine per instrument,
	// each with its own retry/backoff loop. A stalled provider call only
	// blocks its own instrument.
	for _, id := range securityIDs {
		g.Go(func() error {
			snap, err := r.fetchSecurity(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[WARN] could not resolve %s: %v", id, err)
				out[id] = Resolution{Err: fmt.Errorf("%w: %s: %v", ErrUnresolved, id, err)}
				return nil
			}
			out[id] = Resolution{Snapshot: snap}
			fresh[id] = snap
			return nil
		})
	}

	g.Wait()

	if ctx.Err() != nil {
		// Abandoned pass: keep the cache untouched and mark the rest
		// unresolved rather than committing partial results.
		for id, res := range out {
			if res.Err == nil {
				if _, cached := r.cache.Get(id); !cached {
					out[id] = Resolution{Err: fmt.Errorf("%w: %s: %v", ErrUnresolved, id, ctx.Err())}
				}
			}
		}
		return out
	}

	if len(fresh) > 0 {
		r.cache.Put(fresh)
	}
	return out
}

// fetchSecurity fetches one security price with up to r.retries retries and
// exponential backoff. The provider rotates its transports between attempts.
func (r *Resolver) fetchSecurity(ctx context.Context, id string) (PriceSnapshot, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return PriceSnapshot{}, ctx.Err()
			case <-time.After(r.backoff(attempt - 1)):
			}
		}
		cctx, cancel := context.WithTimeout(ctx, r.callTimeout)
		snap, err := r.securities.FetchPrice(cctx, id)
		cancel()
		if err == nil {
			if snap.Price <= 0 {
				return PriceSnapshot{}, fmt.Errorf("non-positive price %v from %s", snap.Price, r.securities.Name())
			}
			return snap, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return PriceSnapshot{}, ctx.Err()
		}
		log.Printf("[WARN] fetch %s attempt %d/%d failed: %v", id, attempt+1, r.retries+1, err)
	}
	return PriceSnapshot{}, lastErr
}

// HistoricalTables builds the month-keyed price table of every instrument
// from its provider's historical series. Instruments whose history cannot
// be fetched get an empty table and contribute to the joined error; the
// valuation fallback chain covers the gaps.
func (r *Resolver) HistoricalTables(ctx context.Context, instruments []string) (map[string]*PriceTable, error) {
	tables := make(map[string]*PriceTable, len(instruments))
	var mu sync.Mutex
	var errs error

	var g errgroup.Group
	g.SetLimit(r.fanout)
	for _, id := range instruments {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, 4*r.callTimeout)
			defer cancel()
			var points []PricePoint
			var err error
			if r.IsCrypto(id) {
				points, err = r.crypto.FetchHistory(cctx, id)
			} else {
				points, err = r.securities.FetchMonthly(cctx, id)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("history for %s: %w", id, err))
				tables[id] = BuildPriceTable(nil)
				return nil
			}
			tables[id] = BuildPriceTable(points)
			return nil
		})
	}
	g.Wait()
	if ctx.Err() != nil {
		return tables, ctx.Err()
	}
	return tables, errs
}
