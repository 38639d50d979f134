package history_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/shuttlerank/internal/adapters/history"
	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

type aliases map[model.PersonID][]model.PlayerID

func (a aliases) Players(p model.PersonID) []model.PlayerID { return a[p] }

var people = aliases{"Jo Smith": {"jo", "joanna"}}

func snap(player model.PlayerID, match string, day, idx int, mu, sigma float64) model.RatingSnapshot {
	return model.RatingSnapshot{
		PlayerID:     player,
		MatchID:      match,
		Mu:           mu,
		Sigma:        sigma,
		Date:         time.Date(2024, 5, 1+day, 0, 0, 0, 0, time.UTC),
		StartTime:    19 * time.Hour,
		SessionIndex: idx,
	}
}

func stores(t *testing.T) map[string]func() history.Store {
	return map[string]func() history.Store{
		"memory": func() history.Store {
			return history.NewMemoryStore(history.WithResolver(people))
		},
		"sqlite": func() history.Store {
			s, err := history.OpenSQLite(filepath.Join(t.TempDir(), "history.db"), history.WithResolver(people))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, open := range stores(t) {
		Convey("Given an empty "+name+" store", t, func() {
			s := open()
			Reset(func() { _ = s.Close() })

			Convey("When the same key is recorded twice", func() {
				first, err := s.Record(ctx, snap("p", "m", 0, 0, 5, 1))
				So(err, ShouldBeNil)
				second, err := s.Record(ctx, snap("p", "m", 0, 0, 9, 2))
				So(err, ShouldBeNil)

				Convey("Then the first write wins and only one row exists", func() {
					So(first.Mu, ShouldEqual, 5)
					So(second.Mu, ShouldEqual, 5)
					So(second.Sigma, ShouldEqual, 1)
					h, err := s.History(ctx, "p")
					So(err, ShouldBeNil)
					So(len(h), ShouldEqual, 1)
					So(h[0].Mu, ShouldEqual, 5)
				})
			})

			Convey("When snapshots are recorded for several matches", func() {
				for _, sn := range []model.RatingSnapshot{
					snap("jo", "m1", 0, 0, 26, 8),
					snap("jo", "m2", 0, 1, 27, 7.5),
					snap("joanna", "m3", 1, 0, 24, 8),
					snap("jo", "m4", 2, 0, 28, 7),
				} {
					_, err := s.Record(ctx, sn)
					So(err, ShouldBeNil)
				}

				Convey("Then Latest returns the newest per player", func() {
					latest, ok, err := s.Latest(ctx, "jo")
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					So(latest.MatchID, ShouldEqual, "m4")
					So(latest.Date.Equal(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
					So(latest.StartTime, ShouldEqual, 19*time.Hour)

					_, ok, err = s.Latest(ctx, "nobody")
					So(err, ShouldBeNil)
					So(ok, ShouldBeFalse)
				})

				Convey("Then HasMatch sees recorded matches only", func() {
					ok, err := s.HasMatch(ctx, "m3")
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					ok, err = s.HasMatch(ctx, "m9")
					So(err, ShouldBeNil)
					So(ok, ShouldBeFalse)
				})

				Convey("Then a person's history merges aliases chronologically", func() {
					h, err := s.HistoryByPerson(ctx, "Jo Smith")
					So(err, ShouldBeNil)
					ids := make([]string, len(h))
					for i, sn := range h {
						ids[i] = sn.MatchID
					}
					So(ids, ShouldResemble, []string{"m1", "m2", "m3", "m4"})
				})

				Convey("Then unknown players and people are not found", func() {
					_, err := s.History(ctx, "ghost")
					So(errors.Is(err, history.ErrNotFound), ShouldBeTrue)
					_, err = s.HistoryByPerson(ctx, "Nobody")
					So(errors.Is(err, history.ErrNotFound), ShouldBeTrue)
				})
			})

			Convey("When a batch fails midway", func() {
				boom := errors.New("boom")
				err := s.Batch(ctx, func(w history.Writer) error {
					if _, err := w.Record(ctx, snap("a", "x1", 0, 0, 30, 6)); err != nil {
						return err
					}
					ok, _ := w.HasMatch(ctx, "x1")
					So(ok, ShouldBeTrue)
					return boom
				})

				Convey("Then none of its writes are kept", func() {
					So(errors.Is(err, boom), ShouldBeTrue)
					ok, err := s.HasMatch(ctx, "x1")
					So(err, ShouldBeNil)
					So(ok, ShouldBeFalse)
				})
			})

			Convey("When a batch succeeds", func() {
				err := s.Batch(ctx, func(w history.Writer) error {
					for _, sn := range []model.RatingSnapshot{
						snap("a", "x1", 0, 0, 30, 6),
						snap("a", "x2", 0, 1, 31, 5),
						snap("a", "x2", 0, 1, 99, 9),
					} {
						if _, err := w.Record(ctx, sn); err != nil {
							return err
						}
					}
					latest, ok, err := w.Latest(ctx, "a")
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					So(latest.MatchID, ShouldEqual, "x2")
					So(latest.Mu, ShouldEqual, 31)
					return nil
				})

				Convey("Then every write is visible afterwards", func() {
					So(err, ShouldBeNil)
					h, err := s.History(ctx, "a")
					So(err, ShouldBeNil)
					So(len(h), ShouldEqual, 2)
				})
			})

			Convey("When a snapshot has no match id", func() {
				_, err := s.Record(ctx, snap("a", "", 0, 0, 25, 8))
				So(errors.Is(err, history.ErrInvalidSnapshot), ShouldBeTrue)
			})
		})
	}
}
