package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/synqit/synqit-backend/pkg/helpers"
)

type countingSweeper struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingSweeper) SweepExpiredSessions(context.Context) (int64, error) {
	c.calls.Add(1)
	if c.fail.Load() {
		return 0, errors.New("db down")
	}
	return 2, nil
}

func TestSessionSweeperRunsUntilStopped(t *testing.T) {
	c := &countingSweeper{}
	s := NewSessionSweeper(c, 5*time.Millisecond, helpers.NewDiscardLogger())

	s.Start(context.Background())
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return c.calls.Load() >= 3 }, time.Second, time.Millisecond)

	// errors do not stop the loop
	c.fail.Store(true)
	n := c.calls.Load()
	assert.Eventually(t, func() bool { return c.calls.Load() > n+1 }, time.Second, time.Millisecond)

	s.Stop()
	stopped := c.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, c.calls.Load())

	s.Stop()
}

func TestSessionSweeperStopsWithContext(t *testing.T) {
	c := &countingSweeper{}
	s := NewSessionSweeper(c, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	assert.Eventually(t, func() bool { return c.calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	s.Stop()
}
