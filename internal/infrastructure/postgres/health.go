package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker pings the database on an interval in its own goroutine.
// Start and Stop are tied to process startup and shutdown.
type HealthChecker struct {
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *logrus.Logger

	healthy   atomic.Bool
	lastCheck atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHealthChecker(db Pinger, interval time.Duration, logger *logrus.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthChecker{db: db, interval: interval, timeout: 3 * time.Second, logger: logger}
}

// Start runs one check synchronously and then keeps checking until Stop or ctx is done.
func (h *HealthChecker) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	h.check(ctx)

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.check(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (h *HealthChecker) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (h *HealthChecker) check(ctx context.Context) {
	c, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	err := h.db.Ping(c)
	was := h.healthy.Swap(err == nil)
	h.lastCheck.Store(time.Now().UnixNano())
	if h.logger == nil {
		return
	}
	switch {
	case err != nil && was:
		h.logger.WithError(err).Error("database health check failed")
	case err == nil && !was:
		h.logger.Info("database healthy")
	}
}

func (h *HealthChecker) Healthy() bool { return h.healthy.Load() }

func (h *HealthChecker) LastCheck() time.Time {
	n := h.lastCheck.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
