package server

import (
	"context"
	"sync"
	"time"

	"github.com/teemow/ewsfreebusy/internal/config"
	"github.com/teemow/ewsfreebusy/internal/ews"
	"github.com/teemow/ewsfreebusy/internal/instrumentation"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	config   config.Runtime
	service  *ews.Service
	metrics  *instrumentation.Metrics
	now      func() time.Time
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. service may be nil when no
// EWS endpoint is configured; tools then report the missing endpoint.
func NewServerContext(ctx context.Context, cfg config.Runtime, service *ews.Service, metrics *instrumentation.Metrics) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		config:  cfg,
		service: service,
		metrics: metrics,
		now:     time.Now,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the runtime configuration
func (sc *ServerContext) Config() config.Runtime {
	return sc.config
}

// Service returns the availability service, or nil when none is configured
func (sc *ServerContext) Service() *ews.Service {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.service
}

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// Now returns the current time from the context's clock
func (sc *ServerContext) Now() time.Time {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.now()
}

// SetClock overrides the clock, for tests
func (sc *ServerContext) SetClock(now func() time.Time) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.now = now
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
