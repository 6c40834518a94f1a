package rpc

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Conn is a request/response connection to a rippled server. Implementations
// are safe for concurrent use.
type Conn interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	// Request sends command with params (a struct or map merged into the
	// request object) and decodes the result object into result.
	Request(ctx context.Context, command string, params any, result any) error
	// Subscribe returns a channel receiving connectivity changes and a func
	// to stop receiving them
	Subscribe() (<-chan bool, func())
	Close() error
}

// Options holds the settings shared by every transport
type Options struct {
	RequestTimeout      time.Duration
	MaxRequestsPerSec   float64
	ReconnectMinBackoff time.Duration
	ReconnectMaxBackoff time.Duration
}

func DefaultOptions() Options {
	return Options{
		RequestTimeout:      20 * time.Second,
		MaxRequestsPerSec:   20,
		ReconnectMinBackoff: 500 * time.Millisecond,
		ReconnectMaxBackoff: 30 * time.Second,
	}
}

type Option func(*Options)

func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) { o.RequestTimeout = d }
}

// WithRateLimit caps outbound requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(o *Options) { o.MaxRequestsPerSec = rps }
}

func WithReconnectBackoff(minBackoff, maxBackoff time.Duration) Option {
	return func(o *Options) {
		o.ReconnectMinBackoff = minBackoff
		o.ReconnectMaxBackoff = maxBackoff
	}
}

func newOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) limiter() *rate.Limiter {
	if o.MaxRequestsPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(o.MaxRequestsPerSec)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(o.MaxRequestsPerSec), burst)
}

// withTimeout applies the request timeout unless ctx already ends sooner
func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.RequestTimeout)
}

// status tracks connectivity and fans changes out to subscribers
type status struct {
	mu          sync.Mutex
	connected   bool
	subscribers map[chan bool]struct{}
}

func newStatus() *status {
	return &status{subscribers: make(map[chan bool]struct{})}
}

func (s *status) get() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// set records the state and reports whether it changed
func (s *status) set(connected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected == connected {
		return false
	}
	s.connected = connected
	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- connected
	}
	return true
}

func (s *status) subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.connected
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}
