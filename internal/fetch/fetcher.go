// Package fetch retrieves full page content for active domains and feeds
// it through the extractor.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/policy/ratelimit"
)

const defaultFetchTimeout = 10 * time.Second

// Config controls collector behavior.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher implements enrich.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
	extractor     enrich.Extractor
	retry         RetryPolicy
	limiter       *ratelimit.Limiter
	logger        *zap.Logger
}

// New builds a Fetcher. A nil retry policy degrades to single-attempt
// mode; a nil limiter means unpaced requests.
func New(cfg Config, extractor enrich.Extractor, retry RetryPolicy, limiter *ratelimit.Limiter, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	transport := newHTTPTransport()
	c.WithTransport(transport)
	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
		extractor:     extractor,
		retry:         retry,
		limiter:       limiter,
		logger:        logger,
	}
}

// FetchContacts fetches the domain's landing page and extracts contacts,
// retrying failed attempts per the policy. Exhausted retries yield the
// Error sentinel; extraction results pass through untouched.
func (f *Fetcher) FetchContacts(ctx context.Context, domain string) enrich.ContactSet {
	target := enrich.NormalizeURL(domain)
	if target == "" {
		return enrich.ContactSet{Err: true}
	}

	attempt := 0
	for {
		if err := f.limiter.Wait(ctx, target); err != nil {
			return enrich.ContactSet{Err: true}
		}
		body, err := f.fetch(ctx, target)
		if err == nil {
			return f.extractor.Extract(body)
		}
		attempt++
		if f.retry == nil || !f.retry.ShouldRetry(err, attempt) {
			f.logger.Debug("fetch gave up",
				zap.String("domain", domain),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return enrich.ContactSet{Err: true}
		}
		select {
		case <-ctx.Done():
			return enrich.ContactSet{Err: true}
		case <-time.After(f.retry.Backoff(attempt)):
		}
	}
}

func (f *Fetcher) fetch(ctx context.Context, target string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", target, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", target, fetchErr)
		}
		return body, nil
	}
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
