package folioval

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache is a persistent PriceCache backed by a SQLite database, so
// snapshots survive process restarts. It honors the same lazy-TTL contract
// as MemoryCache; any database error is swallowed, logged, and reported as
// a cache miss.
type SQLiteCache struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the cache database and runs migrations.
func NewSQLiteCache(path string, ttl time.Duration) (*SQLiteCache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	c := &SQLiteCache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS price_snapshots (
		instrument     TEXT PRIMARY KEY,
		price          REAL NOT NULL,
		as_of          INTEGER NOT NULL,
		source         TEXT,
		change_percent REAL
	)`)
	return err
}

// Close releases the underlying database.
func (c *SQLiteCache) Close() error { return c.db.Close() }

func (c *SQLiteCache) Get(instrument string) (PriceSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row := c.db.QueryRow(
		`SELECT price, as_of, source, change_percent FROM price_snapshots WHERE instrument = ?`,
		instrument)
	var price, change float64
	var asOf int64
	var source string
	if err := row.Scan(&price, &asOf, &source, &change); err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[WARN] price cache read failed (treated as miss): %v", err)
		}
		return PriceSnapshot{}, false
	}
	snap := PriceSnapshot{
		Instrument:    instrument,
		Price:         price,
		AsOf:          time.Unix(asOf, 0),
		Source:        source,
		ChangePercent: Percent(change),
	}
	if c.now().Sub(snap.AsOf) >= c.ttl {
		return PriceSnapshot{}, false
	}
	return snap, true
}

func (c *SQLiteCache) Put(snapshots map[string]PriceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, snap := range snapshots {
		_, err := c.db.Exec(
			`INSERT INTO price_snapshots (instrument, price, as_of, source, change_percent)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(instrument) DO UPDATE SET
			   price = excluded.price, as_of = excluded.as_of,
			   source = excluded.source, change_percent = excluded.change_percent`,
			id, snap.Price, snap.AsOf.Unix(), snap.Source, float64(snap.ChangePercent))
		if err != nil {
			// Storage failures must never propagate to the valuation pass.
			log.Printf("[WARN] price cache write failed (ignored): %v", err)
		}
	}
}

func (c *SQLiteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.Exec(`DELETE FROM price_snapshots`); err != nil {
		log.Printf("[WARN] price cache clear failed (ignored): %v", err)
	}
}
