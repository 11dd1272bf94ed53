// Package fetcher pulls a list of page URLs through a bounded pool of
// concurrent fetch workers, parses each body, and streams the resulting
// pages to the caller in completion order. A shared RepeatGuard ends the
// stream early once page bodies start repeating.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"harvest-go/pkg/htmldoc"
	"harvest-go/pkg/logger"
)

// DefaultMaxWorkers bounds simultaneous in-flight fetches per run.
const DefaultMaxWorkers = 5

// ErrInvalidWorkerCount reports a non-positive worker bound. It is returned
// before any work is dispatched.
var ErrInvalidWorkerCount = errors.New("fetcher: max workers must be positive")

// Transport fetches the raw text of one page. Implementations must be safe
// for concurrent use; the pool invokes them from multiple workers.
type Transport interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Page is one fetched, parsed, non-repeated page.
type Page struct {
	URL  string
	Body string
	Doc  *htmldoc.Document
}

// Option configures a fetch run.
type Option func(*settings)

type settings struct {
	maxWorkers    int
	stopThreshold int
}

// WithMaxWorkers sets the concurrent fetch bound. Values <= 0 make Fetch
// fail with ErrInvalidWorkerCount.
func WithMaxWorkers(n int) Option {
	return func(s *settings) { s.maxWorkers = n }
}

// WithStopThreshold sets the RepeatGuard streak after which the run stops.
func WithStopThreshold(n int) Option {
	return func(s *settings) { s.stopThreshold = n }
}

type completion struct {
	url  string
	body string
	err  error
}

// Stream is the consumer side of one fetch run. It is one-shot: every call
// to Fetch creates a fresh stream with its own guard and worker pool.
type Stream struct {
	pages  chan Page
	cancel context.CancelFunc

	mu      sync.Mutex
	err     error
	stopped bool
}

// Pages returns the channel of fetched pages. It is closed when all URLs
// are processed, when the stop signal fires, or when a fetch fails. Pages
// arrive in completion order, not input order.
func (s *Stream) Pages() <-chan Page {
	return s.pages
}

// Err reports the failure that terminated the stream, or nil. Valid once
// Pages is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stopped reports whether the stream ended because the repeat guard raised
// its stop signal. Valid once Pages is closed.
func (s *Stream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Close abandons the run, cancelling outstanding fetches. The consumer must
// still drain Pages until it closes.
func (s *Stream) Close() {
	s.cancel()
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Stream) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Fetch dispatches one fetch task per URL into a pool of at most maxWorkers
// concurrent fetches and returns a stream of parsed pages.
//
// Completions are drained by a single coordinator goroutine, which owns the
// run's RepeatGuard: bodies repeating the previous one are dropped without
// being yielded, and once the guard's stop signal fires the stream ends and
// outstanding fetches are cancelled. A transport failure also ends the
// stream; it is reported through Stream.Err rather than being skipped.
func Fetch(ctx context.Context, transport Transport, urls []string, opts ...Option) (*Stream, error) {
	cfg := settings{
		maxWorkers:    DefaultMaxWorkers,
		stopThreshold: DefaultStopThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxWorkers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, cfg.maxWorkers)
	}

	workers := cfg.maxWorkers
	if len(urls) < workers {
		workers = len(urls)
	}

	runCtx, cancel := context.WithCancel(ctx)
	stream := &Stream{
		pages:  make(chan Page),
		cancel: cancel,
	}

	log := logger.GetLogger().WithFields(map[string]interface{}{
		"component": "fetcher",
		"urls":      len(urls),
		"workers":   workers,
	})
	log.Debug("Starting fetch run")

	jobs := make(chan string)
	completions := make(chan completion)

	// Feed URLs to the pool.
	go func() {
		defer close(jobs)
		for _, url := range urls {
			select {
			case jobs <- url:
			case <-runCtx.Done():
				return
			}
		}
	}()

	// Fetch workers. Unbuffered completions give natural backpressure: at
	// most `workers` fetches run while the consumer is slow.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				body, err := transport.FetchText(runCtx, url)
				select {
				case completions <- completion{url: url, body: body, err: err}:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(completions)
	}()

	// Coordinator: the only goroutine that touches the guard.
	go func() {
		defer close(stream.pages)
		defer cancel()

		guard := NewRepeatGuard(cfg.stopThreshold)
		yielded := make(map[string]bool, len(urls))
		for c := range completions {
			if c.err != nil {
				if runCtx.Err() != nil && errors.Is(c.err, context.Canceled) {
					// A worker losing the race with cancellation is not a
					// run failure.
					continue
				}
				log.WithError(c.err).WithField("url", c.url).Error("Fetch failed, terminating run")
				stream.setErr(fmt.Errorf("fetch %s: %w", c.url, c.err))
				return
			}

			doc, err := htmldoc.Parse(c.body)
			if err != nil {
				stream.setErr(fmt.Errorf("parse %s: %w", c.url, err))
				return
			}

			if guard.Observe(c.body) {
				log.WithFields(map[string]interface{}{
					"url":    c.url,
					"streak": guard.Streak(),
				}).Debug("Repeated page body dropped")
				if guard.Stopped() {
					log.Info("Repeat threshold reached, stopping run")
					stream.markStopped()
					return
				}
				continue
			}

			if yielded[c.url] {
				// Duplicate input URLs fetch more than once but yield at
				// most one page.
				continue
			}
			yielded[c.url] = true

			select {
			case stream.pages <- Page{URL: c.url, Body: c.body, Doc: doc}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	return stream, nil
}
