package workerpool

import (
	"context"
)

// WorkerPool runs submitted tasks on a bounded set of goroutines.
type WorkerPool interface {
	Submit(ctx context.Context, task func()) error
	Running() int
	Shutdown()
}
