package http

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per image host with token buckets. Hosts are
// throttled independently, so downloads from different CDNs proceed in
// parallel.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

// NewHostLimiter allows rps requests per second to each host, with up to
// burst requests at once. A burst below 1 is treated as 1.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   max(burst, 1),
	}
}

// Wait blocks until a request to the host of rawURL is allowed. URLs
// without a host share one bucket.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return h.bucket(hostOf(rawURL)).Wait(ctx)
}

func (h *HostLimiter) bucket(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.buckets[host]
	if !ok {
		b = rate.NewLimiter(h.rps, h.burst)
		h.buckets[host] = b
	}
	return b
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
