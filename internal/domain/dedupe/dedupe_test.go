package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	dedupe "github.com/okian/vedichart/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a fingerprint is new", func() {
			seen := d.SeenAndRecord(ctx, "fp-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And it is seen on the second call", func() {
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a fingerprint is unrecorded", func() {
			d.SeenAndRecord(ctx, "fp-1")
			d.Unrecord(ctx, "fp-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"fp-1", "fp-2", "fp-3"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("When a fourth fingerprint arrives", func() {
			So(d.SeenAndRecord(ctx, "fp-4"), ShouldBeFalse)

			Convey("Then the oldest is evicted and the rest are kept", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "fp-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "fp-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
			})
		})

		Convey("When the middle fingerprint is unrecorded", func() {
			d.Unrecord(ctx, "fp-2")
			d.SeenAndRecord(ctx, "fp-4")

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := range 1000 {
			d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "fp-0"), ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent submitters racing on the same fingerprints", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const workers, ids = 8, 100

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range ids {
					if !d.SeenAndRecord(context.Background(), fmt.Sprintf("fp-%d", j)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each fingerprint is fresh exactly once", func() {
			So(fresh, ShouldEqual, ids)
			So(d.Size(), ShouldEqual, ids)
		})
	})
}
