package poller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Probe defaults.
const (
	DefaultProbeInterval = 30 * time.Second
	DefaultProbeTimeout  = 5 * time.Second
	minProbeInterval     = time.Second
)

// ProbeResult is the outcome of one connectivity check.
type ProbeResult struct {
	// Online is true when the request completed with a status below 500.
	Online     bool
	Latency    time.Duration
	StatusCode int
	Err        error
	CheckedAt  time.Time
}

// Prober checks one URL immediately and then on every interval, and emits a
// [ProbeResult] for each check. Start and Stop are idempotent and safe for
// concurrent use.
type Prober struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	method   string
	client   *Client
	logger   *slog.Logger
	results  chan ProbeResult
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// ProberOption configures a [Prober].
type ProberOption func(*Prober)

// WithProbeTimeout sets the per-request timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeMethod sets the HTTP method, HEAD by default.
func WithProbeMethod(method string) ProberOption {
	return func(p *Prober) {
		if method != "" {
			p.method = method
		}
	}
}

// WithProbeClient replaces the HTTP client.
func WithProbeClient(c *Client) ProberOption {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

// NewProber creates a stopped prober. Intervals below one second are raised
// to one second; zero means [DefaultProbeInterval].
func NewProber(url string, interval time.Duration, logger *slog.Logger, opts ...ProberOption) *Prober {
	if interval == 0 {
		interval = DefaultProbeInterval
	}
	if interval < minProbeInterval {
		interval = minProbeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Prober{
		url:      url,
		interval: interval,
		timeout:  DefaultProbeTimeout,
		method:   http.MethodHead,
		client:   NewClient(),
		logger:   logger,
		results:  make(chan ProbeResult, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Results is closed once the prober stops.
func (p *Prober) Results() <-chan ProbeResult {
	return p.results
}

// Interval returns the effective check interval.
func (p *Prober) Interval() time.Duration {
	return p.interval
}

// Start runs the first check right away and then ticks until Stop or until
// ctx is cancelled. It is a no-op once started or stopped.
func (p *Prober) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer p.closeOnce.Do(func() { close(p.results) })

		if !p.emit(ctx, p.check(ctx)) {
			return
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !p.emit(ctx, p.check(ctx)) {
					return
				}
			}
		}
	}()
}

// Stop cancels the loop, waits for an in-flight check and closes Results.
func (p *Prober) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.cancel != nil {
			p.cancel()
		}
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.client.Close()
	p.closeOnce.Do(func() { close(p.results) })
}

func (p *Prober) emit(ctx context.Context, res ProbeResult) bool {
	select {
	case p.results <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Prober) check(ctx context.Context) ProbeResult {
	resp := p.client.Fetch(ctx, p.method, p.url, nil, p.timeout)
	res := ProbeResult{
		Online:     resp.Error == nil && resp.StatusCode < http.StatusInternalServerError,
		Latency:    resp.Latency,
		StatusCode: resp.StatusCode,
		Err:        resp.Error,
		CheckedAt:  time.Now(),
	}
	if !res.Online {
		p.logger.Debug("probe offline", "url", p.url, "status", resp.StatusCode, "error", resp.Error)
	}
	return res
}
