package worker_test

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/shuttlerank/internal/adapters/worker"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		p := worker.NewPool(3)
		ctx := context.Background()

		convey.Convey("When ten jobs are run", func() {
			var inFlight, peak atomic.Int32
			jobs := make([]worker.Job, 10)
			for i := range jobs {
				jobs[i] = worker.Job{
					Name: "job-" + strconv.Itoa(i),
					Run: func(context.Context) error {
						n := inFlight.Add(1)
						for {
							old := peak.Load()
							if n <= old || peak.CompareAndSwap(old, n) {
								break
							}
						}
						time.Sleep(5 * time.Millisecond)
						inFlight.Add(-1)
						return nil
					},
				}
			}
			results := p.Run(ctx, jobs)

			convey.Convey("Then every job reports in input order", func() {
				convey.So(len(results), convey.ShouldEqual, 10)
				for i, r := range results {
					convey.So(r.Name, convey.ShouldEqual, "job-"+strconv.Itoa(i))
					convey.So(r.Err, convey.ShouldBeNil)
				}
			})

			convey.Convey("Then no more than three ran at once", func() {
				convey.So(peak.Load(), convey.ShouldBeLessThanOrEqualTo, 3)
			})
		})

		convey.Convey("When a job fails or panics", func() {
			boom := errors.New("boom")
			results := p.Run(ctx, []worker.Job{
				{Name: "ok", Run: func(context.Context) error { return nil }},
				{Name: "err", Run: func(context.Context) error { return boom }},
				{Name: "panic", Run: func(context.Context) error { panic("bad partition") }},
			})

			convey.Convey("Then the others are unaffected", func() {
				convey.So(results[0].Err, convey.ShouldBeNil)
				convey.So(errors.Is(results[1].Err, boom), convey.ShouldBeTrue)
				convey.So(results[2].Err, convey.ShouldNotBeNil)
				convey.So(results[2].Err.Error(), convey.ShouldContainSubstring, "bad partition")
			})
		})

		convey.Convey("When the context is canceled before running", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			var ran atomic.Int32
			results := p.Run(cctx, []worker.Job{
				{Name: "a", Run: func(context.Context) error { ran.Add(1); return nil }},
				{Name: "b", Run: func(context.Context) error { ran.Add(1); return nil }},
			})

			convey.Convey("Then jobs report the cancellation", func() {
				convey.So(ran.Load(), convey.ShouldEqual, 0)
				for _, r := range results {
					convey.So(errors.Is(r.Err, context.Canceled), convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When there is nothing to do", func() {
			convey.So(p.Run(ctx, nil), convey.ShouldBeEmpty)
		})
	})
}
