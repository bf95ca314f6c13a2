package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/clientkit/config"
	"github.com/pitabwire/clientkit/workerpool"
)

type WorkerPoolSuite struct {
	suite.Suite
}

func TestWorkerPoolSuite(t *testing.T) {
	suite.Run(t, new(WorkerPoolSuite))
}

func (s *WorkerPoolSuite) TestRunsTasks() {
	ctx := context.Background()
	pool, err := workerpool.NewPool(ctx, workerpool.WithCapacity(4), workerpool.WithPoolNonblocking(false))
	s.Require().NoError(err)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	var ran atomic.Int32
	for range 20 {
		wg.Add(1)
		s.Require().NoError(pool.Submit(ctx, func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()
	s.Equal(int32(20), ran.Load())
}

func (s *WorkerPoolSuite) TestCancelledContextRejected() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool, err := workerpool.NewPool(context.Background())
	s.Require().NoError(err)
	defer pool.Shutdown()

	s.Require().ErrorIs(pool.Submit(ctx, func() {}), context.Canceled)
}

func (s *WorkerPoolSuite) TestNonblockingOverload() {
	ctx := context.Background()
	pool, err := workerpool.NewPool(ctx, workerpool.WithCapacity(1))
	s.Require().NoError(err)
	defer pool.Shutdown()

	release := make(chan struct{})
	s.Require().NoError(pool.Submit(ctx, func() { <-release }))
	s.Eventually(func() bool { return pool.Running() == 1 }, time.Second, 5*time.Millisecond)

	s.Require().ErrorIs(pool.Submit(ctx, func() {}), ants.ErrPoolOverload)
	close(release)
}

func (s *WorkerPoolSuite) TestPanicHandlerAndConfig() {
	ctx := context.Background()
	recovered := make(chan any, 1)

	cfg := &config.ConfigurationDefault{WorkerPoolCapacity: 2, WorkerPoolExpiryDuration: "2s"}
	opts := append(workerpool.FromConfig(cfg), workerpool.WithPoolPanicHandler(func(p any) { recovered <- p }))

	pool, err := workerpool.NewPool(ctx, opts...)
	s.Require().NoError(err)
	defer pool.Shutdown()

	s.Require().NoError(pool.Submit(ctx, func() { panic("boom") }))

	select {
	case p := <-recovered:
		s.Equal("boom", p)
	case <-time.After(time.Second):
		s.Fail("panic handler not invoked")
	}
}

func (s *WorkerPoolSuite) TestShutdownRejects() {
	ctx := context.Background()
	pool, err := workerpool.NewPool(ctx)
	s.Require().NoError(err)

	pool.Shutdown()
	s.Require().ErrorIs(pool.Submit(ctx, func() {}), ants.ErrPoolClosed)
}
