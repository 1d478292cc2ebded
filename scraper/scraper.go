// Package scraper fetches product pages and feeds parsed records into the
// pipeline. Fetching is strictly sequential: each URL is retried to
// completion before the next one starts.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/gocolly/colly/v2"
)

// Scraper wraps the colly collector and the retry loop for product pages.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	requestCount int64
	retryCount   int64
	errorCount   int64

	mu           sync.Mutex
	failedURLs   []string
	errorsByType map[string]int

	// outcome of the most recent visit; fetching is sequential so a
	// single slot is enough
	visitMu     sync.Mutex
	visitOK     bool
	visitStatus int

	handlersOnce sync.Once
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)

	// retries re-fetch the same URL, so the visited-URL filter must be off
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Scraper{
		cfg:          cfg,
		collector:    collector,
		errorsByType: make(map[string]int),
		Metrics:      NewMetrics(),
	}, nil
}

// Run fetches every URL in order and streams parsed products through the
// pipeline. Fetch failures are skipped, never fatal; the returned result
// summarises the run.
func (s *Scraper) Run(ctx context.Context, urls []string, p *pipeline.Pipeline) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.configureHandlers(p)

	start := time.Now()
	for _, pageURL := range urls {
		if ctx.Err() != nil {
			slog.Info("run cancelled, skipping remaining URLs")
			break
		}
		slog.Info("scraping product page", slog.String("url", pageURL))
		if err := s.visitWithRetry(ctx, pageURL); err != nil {
			s.mu.Lock()
			s.failedURLs = append(s.failedURLs, pageURL)
			s.mu.Unlock()
			slog.Error("could not fetch product page",
				slog.String("url", pageURL),
				slog.Int("attempts", s.cfg.MaxAttempts),
				slog.Any("error", err),
			)
		}
	}

	result := &models.ScrapeResult{
		StartTime:    start,
		EndTime:      time.Now(),
		ErrorCount:   int(atomic.LoadInt64(&s.errorCount)),
		FailedURLs:   s.snapshotFailedURLs(),
		ErrorsByType: s.snapshotErrors(),
		RetryCount:   int(atomic.LoadInt64(&s.retryCount)),
		RequestCount: int(atomic.LoadInt64(&s.requestCount)),
	}

	if metrics := p.GetMetrics(); metrics != nil {
		if processed, ok := metrics["processed_products"].(int64); ok {
			result.TotalCount = int(processed)
		}
	}

	return result, nil
}

// visitWithRetry fetches one URL, retrying transport and status failures
// with a linearly growing sleep between attempts.
func (s *Scraper) visitWithRetry(ctx context.Context, pageURL string) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		s.resetVisit()
		err := s.collector.Visit(pageURL)
		if err == nil {
			ok, status := s.visitOutcome()
			if ok {
				return nil
			}
			err = fmt.Errorf("unexpected response status %d", status)
		}
		lastErr = err
		slog.Warn("fetch attempt failed",
			slog.String("url", pageURL),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.cfg.MaxAttempts),
			slog.Any("error", err),
		)

		if attempt == s.cfg.MaxAttempts {
			break
		}
		atomic.AddInt64(&s.retryCount, 1)
		s.Metrics.IncRetries()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff(attempt)):
		}
	}
	return lastErr
}

// backoff grows linearly with the attempt number: 1.5s, 3.0s, ... by
// default. No jitter, no cap.
func (s *Scraper) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * s.cfg.RetryBackoff
}

func (s *Scraper) configureHandlers(p *pipeline.Pipeline) {
	s.handlersOnce.Do(func() {
		s.collector.OnRequest(func(r *colly.Request) {
			r.Headers.Set("Accept-Language", s.cfg.AcceptLanguage)
			r.Ctx.Put("start", time.Now())
			atomic.AddInt64(&s.requestCount, 1)
			s.Metrics.IncRequest("started")
		})

		s.collector.OnResponse(func(r *colly.Response) {
			if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
				s.Metrics.ObserveDuration(time.Since(start))
			}
			s.recordVisit(r.StatusCode)
			if r.StatusCode != http.StatusOK {
				return
			}

			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
			if err != nil {
				slog.Error("parse response body",
					slog.String("url", r.Request.URL.String()),
					slog.Any("error", err),
				)
				return
			}

			product := parser.ParseProduct(doc, r.Request.URL.String(), s.cfg)
			s.Metrics.IncProducts()
			slog.Info("parsed product",
				slog.String("title", product.Title),
				slog.Int("images", len(product.Images)),
			)
			if err := p.Process(product); err != nil && err != pipeline.ErrPipelineClosed {
				slog.Error("pipeline process error", slog.Any("error", err))
			}
		})

		s.collector.OnError(func(r *colly.Response, err error) {
			atomic.AddInt64(&s.errorCount, 1)
			statusCode := 0
			if r != nil {
				statusCode = r.StatusCode
			}
			category := errorTypeLabel(classifyError(err, statusCode))

			s.mu.Lock()
			s.errorsByType[category]++
			s.mu.Unlock()
			s.Metrics.IncError(category)
		})
	})
}

func (s *Scraper) resetVisit() {
	s.visitMu.Lock()
	s.visitOK = false
	s.visitStatus = 0
	s.visitMu.Unlock()
}

func (s *Scraper) recordVisit(status int) {
	s.visitMu.Lock()
	s.visitStatus = status
	s.visitOK = status == http.StatusOK
	s.visitMu.Unlock()
}

func (s *Scraper) visitOutcome() (bool, int) {
	s.visitMu.Lock()
	defer s.visitMu.Unlock()
	return s.visitOK, s.visitStatus
}

func (s *Scraper) snapshotFailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}
