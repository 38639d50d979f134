package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/shuttlerank/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "1:a1:b1:c1:d")

			Convey("Then it reports unseen", func() {
				So(seen, ShouldBeFalse)
			})

			Convey("And recording it again reports seen", func() {
				So(d.SeenAndRecord(ctx, "1:a1:b1:c1:d"), ShouldBeTrue)
			})
		})

		Convey("When many keys are recorded", func() {
			for i := 0; i < 5000; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i)), ShouldBeFalse)
			}

			Convey("Then none of them is ever forgotten", func() {
				for i := 0; i < 5000; i++ {
					So(d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i)), ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is claimed exactly once", func() {
			So(fresh, ShouldEqual, 100)
		})
	})
}
