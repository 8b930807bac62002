package folioval

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// http utils shared by the price providers.

// diskCache is an http.RoundTripper that caches GET responses on disk for
// the current day. It keeps historical-series requests from hammering the
// providers; the short-lived current-price snapshots go through the
// PriceCache instead.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// The key embeds the day, so entries expire daily.
	key := fmt.Sprintf("%s %s %s", Today(), req.Method, req.URL)
	key = fmt.Sprintf("folioval-%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("[WARN] http cache write failed (ignored): %v", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0644)
}

// newTransports builds the rotation of HTTP clients the providers cycle
// through on failure: a direct client first, then one per configured proxy.
// Rotating transports mitigates transient blocking of one egress path.
func newTransports(timeout time.Duration, proxies ...string) []*http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clients := []*http.Client{{Timeout: timeout}}
	for _, p := range proxies {
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil {
			log.Printf("[WARN] ignoring invalid proxy %q: %v", p, err)
			continue
		}
		clients = append(clients, &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(u)},
		})
	}
	return clients
}

// dailyCached wraps a client with the daily disk cache, for historical
// series endpoints.
func dailyCached(client *http.Client) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{Timeout: client.Timeout, Transport: &diskCache{base}}
}

// jwget performs an HTTP GET and unmarshals the JSON response into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
