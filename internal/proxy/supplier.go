// Package proxy keeps the pool of outbound proxies used for the price table
// API. Proxies are checked once at startup and handed out round-robin.
package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const maxParallelChecks = 16

type Supplier interface {
	// Next returns the next working proxy, or "" when the pool is empty.
	Next() string
	Len() int
}

type supplier struct {
	mu      sync.Mutex
	proxies []string
	current int
}

// NewSupplier keeps the proxies that can reach checkURL. Order of the input
// is preserved. An empty input yields an empty pool and direct connections.
func NewSupplier(ctx context.Context, proxies []string, checkURL string) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	log.Infof("🔄 Checking %d proxies against %s...", len(proxies), checkURL)

	working := make([]bool, len(proxies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)
	for i, proxyURL := range proxies {
		g.Go(func() error {
			working[i] = reachable(ctx, proxyURL, checkURL)
			return nil
		})
	}
	g.Wait()

	valid := make([]string, 0, len(proxies))
	for i, ok := range working {
		if ok {
			valid = append(valid, proxies[i])
		}
	}

	log.Infof("✅ %d of %d proxies are usable", len(valid), len(proxies))
	return &supplier{proxies: valid}
}

func (s *supplier) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}
	p := s.proxies[s.current]
	s.current = (s.current + 1) % len(s.proxies)
	return p
}

func (s *supplier) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.proxies)
}

func reachable(ctx context.Context, proxyURL, checkURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().SetContext(ctx).Get(checkURL)
	if err != nil {
		log.Infof("❌ Proxy %s failed: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Infof("❌ Proxy %s answered %s", proxyURL, resp.Status())
		return false
	}
	return true
}
