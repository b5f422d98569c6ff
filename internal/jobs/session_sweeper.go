package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper is satisfied by *application.AuthService.
type Sweeper interface {
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// SessionSweeper periodically marks expired sessions inactive.
type SessionSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSessionSweeper(s Sweeper, interval time.Duration, logger *logrus.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionSweeper{sweeper: s, interval: interval, logger: logger}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (s *SessionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	n, err := s.sweeper.SweepExpiredSessions(ctx)
	if s.logger == nil {
		return
	}
	if err != nil {
		if ctx.Err() == nil {
			s.logger.WithError(err).Error("session sweep failed")
		}
		return
	}
	if n > 0 {
		s.logger.WithField("sessions", n).Info("expired sessions deactivated")
	}
}
