package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubResult struct {
	err error
}

func (r *stubResult) Err() error { return r.err }

type stubJob struct {
	executed *int32
	fail     bool
}

func (j *stubJob) Execute(context.Context) Result {
	atomic.AddInt32(j.executed, 1)
	if j.fail {
		return &stubResult{err: errors.New("job failed")}
	}
	return &stubResult{}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	var executed int32
	for i := 0; i < 20; i++ {
		pool.Submit(&stubJob{executed: &executed, fail: i%5 == 0})
	}

	results := pool.Wait()
	assert.Len(t, results, 20)
	assert.EqualValues(t, 20, atomic.LoadInt32(&executed))

	failed := 0
	for _, r := range results {
		if r.Err() != nil {
			failed++
		}
	}
	assert.Equal(t, 4, failed)
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	pool := NewPool(context.Background(), 0)
	pool.Start()

	var executed int32
	pool.Submit(&stubJob{executed: &executed})

	results := pool.Wait()
	assert.Len(t, results, 1)
}

func TestPoolShutdownStopsAcceptingWork(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	var executed int32
	// Submit after shutdown is a no-op, not a deadlock
	pool.Submit(&stubJob{executed: &executed})
	assert.EqualValues(t, 0, atomic.LoadInt32(&executed))
}
