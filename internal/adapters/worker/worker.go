// Package worker runs independent jobs on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

// Job is one unit of work. Jobs must not share mutable state.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result reports how a job ended.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Pool runs jobs with at most workerCount in flight.
type Pool struct {
	workerCount int
	logger      logger.Logger
}

// NewPool creates a pool. workerCount < 1 means one worker per CPU.
func NewPool(workerCount int, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{workerCount: workerCount}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Named("worker-pool")
	}
	return p
}

// Run executes every job and returns their results in input order. Jobs not
// started before ctx is done report ctx.Err(). A panicking job is reported as
// an error and does not stop the others.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	queue := make(chan int)
	workers := p.workerCount
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		w := &worker{logger: p.logger.Named("worker-" + strconv.Itoa(i))}
		go func() {
			defer wg.Done()
			for idx := range queue {
				results[idx] = w.process(ctx, jobs[idx])
			}
		}()
	}

	for idx := range jobs {
		if ctx.Err() != nil {
			results[idx] = Result{Name: jobs[idx].Name, Err: ctx.Err()}
			continue
		}
		select {
		case queue <- idx:
		case <-ctx.Done():
			results[idx] = Result{Name: jobs[idx].Name, Err: ctx.Err()}
		}
	}
	close(queue)
	wg.Wait()
	return results
}

type worker struct {
	logger logger.Logger
}

func (w *worker) process(ctx context.Context, job Job) (res Result) {
	start := time.Now()
	res.Name = job.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			metrics.RecordErrorByComponent("worker", "job_failed")
			w.logger.Error(ctx, "job failed", logger.String("job", job.Name), logger.Error(res.Err))
		}
	}()

	res.Err = job.Run(ctx)
	return res
}
