// Package probe implements the liveness checks that run before any content
// fetch: a lightweight HEAD probe and a heavier GET recheck for servers
// that reject HEAD.
package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/policy/ratelimit"
)

// Default timeouts; the probe is deliberately short so a stuck connection
// cannot starve a worker for long.
const (
	defaultProbeTimeout   = 5 * time.Second
	defaultRecheckTimeout = 8 * time.Second
)

// Config controls Prober behavior.
type Config struct {
	ProbeTimeout   time.Duration
	RecheckTimeout time.Duration
	UserAgent      string
}

// Prober classifies domains as active or inactive. It shares one pooled
// transport across all workers and carries no cookies or session state.
type Prober struct {
	cfg           Config
	probeClient   *http.Client
	recheckClient *http.Client
	limiter       *ratelimit.Limiter
	logger        *zap.Logger
}

// New builds a Prober. The limiter is optional; nil means unpaced.
func New(cfg Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Prober {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.RecheckTimeout <= 0 {
		cfg.RecheckTimeout = defaultRecheckTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := newHTTPTransport()
	return &Prober{
		cfg:           cfg,
		probeClient:   &http.Client{Transport: transport, Timeout: cfg.ProbeTimeout},
		recheckClient: &http.Client{Transport: transport, Timeout: cfg.RecheckTimeout},
		limiter:       limiter,
		logger:        logger,
	}
}

// Probe issues the lightweight HEAD existence check.
func (p *Prober) Probe(ctx context.Context, domain string) enrich.LivenessStatus {
	return p.check(ctx, http.MethodHead, domain, p.probeClient)
}

// Recheck issues a full GET against a domain the HEAD probe marked
// inactive. Some servers reject HEAD but serve content fine; the second
// pass absorbs those false negatives.
func (p *Prober) Recheck(ctx context.Context, domain string) enrich.LivenessStatus {
	return p.check(ctx, http.MethodGet, domain, p.recheckClient)
}

func (p *Prober) check(ctx context.Context, method, domain string, client *http.Client) enrich.LivenessStatus {
	target := enrich.NormalizeURL(domain)
	if target == "" {
		return enrich.StatusInactive
	}
	if err := p.limiter.Wait(ctx, target); err != nil {
		return enrich.StatusInactive
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return enrich.StatusInactive
	}
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		p.logger.Debug("liveness check failed",
			zap.String("domain", domain),
			zap.String("method", method),
			zap.Error(err),
		)
		return enrich.StatusInactive
	}
	defer func() {
		// Drain a bounded amount so the pooled connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	// Redirects are followed by the client; any remaining 3xx still counts
	// as a live site.
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return enrich.StatusActive
	}
	return enrich.StatusInactive
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
