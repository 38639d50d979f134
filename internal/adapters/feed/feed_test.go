package feed_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/shuttlerank/internal/adapters/feed"
	"github.com/okian/shuttlerank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const sample = `club,date,start_time,session_index,type,winner_a,winner_b,winner_score,loser_a,loser_b,loser_score
north,2024-02-08,19:30,1,Mixed,ann,bob,21,cat,dan,17
north,2024-02-01,19:00,0,MMMM,bob,dan,21,eve,fay,9
south,2024-02-01,18:00,0,Ladies,gia,hal,21,ivy,jen,19
north,2024-02-08,19:00,0,LMLM,cat,dan,22,ann,bob,20
`

func TestReadCSV(t *testing.T) {
	ctx := context.Background()

	Convey("Given a feed with two clubs out of file order", t, func() {
		f, err := feed.ReadCSV(strings.NewReader(sample))
		So(err, ShouldBeNil)
		So(f.Len(), ShouldEqual, 4)

		Convey("Then All is chronological by date, start time and index", func() {
			all, err := f.All(ctx)
			So(err, ShouldBeNil)
			So(all[0].ClubID, ShouldEqual, "south")
			So(all[1].ClubID, ShouldEqual, "north")
			So(all[1].SessionIndex, ShouldEqual, 0)
			So(all[2].StartTime, ShouldEqual, 19*time.Hour)
			So(all[3].StartTime, ShouldEqual, 19*time.Hour+30*time.Minute)
			for i := 1; i < len(all); i++ {
				So(all[i].Before(&all[i-1]), ShouldBeFalse)
			}
		})

		Convey("Then clubs, sessions and matches are indexed", func() {
			clubs, _ := f.Clubs(ctx)
			So(clubs, ShouldResemble, []string{"north", "south"})

			sessions, err := f.OrderedSessions(ctx, "north")
			So(err, ShouldBeNil)
			So(len(sessions), ShouldEqual, 2)
			So(sessions[0].Date.Before(sessions[1].Date), ShouldBeTrue)

			ms, err := f.OrderedMatches(ctx, sessions[1].ID)
			So(err, ShouldBeNil)
			So(len(ms), ShouldEqual, 2)
			So(ms[0].SessionIndex, ShouldEqual, 0)
			So(ms[1].SessionIndex, ShouldEqual, 1)
		})

		Convey("Then categories are parsed from names and codes", func() {
			all, _ := f.All(ctx)
			cats := map[model.Category]int{}
			for _, m := range all {
				cats[m.Category]++
			}
			So(cats[model.CategoryMixed], ShouldEqual, 2)
			So(cats[model.CategoryMens], ShouldEqual, 1)
			So(cats[model.CategoryLadies], ShouldEqual, 1)
		})

		Convey("Then missing match ids are deterministic", func() {
			again, _ := feed.ReadCSV(strings.NewReader(sample))
			a, _ := f.All(ctx)
			b, _ := again.All(ctx)
			So(a[0].ID, ShouldNotBeBlank)
			So(a[0].ID, ShouldEqual, b[0].ID)
			So(a[0].ID, ShouldNotEqual, a[1].ID)
		})

		Convey("Then unknown keys are errors", func() {
			_, err := f.OrderedSessions(ctx, "east")
			So(errors.Is(err, feed.ErrUnknownClub), ShouldBeTrue)
			_, err = f.OrderedMatches(ctx, "nope")
			So(errors.Is(err, feed.ErrUnknownSession), ShouldBeTrue)
		})
	})

	Convey("Given malformed rows", t, func() {
		header := "club,date,start_time,session_index,type,winner_a,winner_b,winner_score,loser_a,loser_b,loser_score\n"
		cases := map[string]string{
			"missing partner": "north,2024-02-01,19:00,0,Mens,ann,,21,cat,dan,10\n",
			"shared player":   "north,2024-02-01,19:00,0,Mens,ann,bob,21,ann,dan,10\n",
			"bad date":        "north,01/02/2024,19:00,0,Mens,ann,bob,21,cat,dan,10\n",
			"bad score":       "north,2024-02-01,19:00,0,Mens,ann,bob,x,cat,dan,10\n",
			"loser ahead":     "north,2024-02-01,19:00,0,Mens,ann,bob,10,cat,dan,21\n",
			"reserved club":   "All,2024-02-01,19:00,0,Mens,ann,bob,21,cat,dan,10\n",
		}
		for name, row := range cases {
			_, err := feed.ReadCSV(strings.NewReader(header + row))
			Convey("Then "+name+" is rejected at the boundary", func() {
				So(errors.Is(err, feed.ErrInvalidRecord), ShouldBeTrue)
			})
		}

		Convey("Then a missing column is rejected", func() {
			_, err := feed.ReadCSV(strings.NewReader("club,date\nnorth,2024-02-01\n"))
			So(errors.Is(err, feed.ErrInvalidRecord), ShouldBeTrue)
		})
	})
}

func TestGenerator(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded generator", t, func() {
		g := feed.NewGenerator(feed.WithClubs(3), feed.WithSessions(4), feed.WithMatchesPerSession(5), feed.WithSeed(42))
		ms := g.Generate()

		Convey("Then it produces the requested volume in order", func() {
			So(len(ms), ShouldEqual, 3*4*5)
			for i := 1; i < len(ms); i++ {
				So(ms[i].Before(&ms[i-1]), ShouldBeFalse)
			}
			for i := range ms {
				_, err := ms[i].Outcome()
				So(err, ShouldBeNil)
			}
		})

		Convey("Then the same seed reproduces the same feed", func() {
			again := feed.NewGenerator(feed.WithClubs(3), feed.WithSessions(4), feed.WithMatchesPerSession(5), feed.WithSeed(42)).Generate()
			So(again, ShouldResemble, ms)
		})

		Convey("Then the CSV form reads back to the same matches", func() {
			var buf bytes.Buffer
			So(feed.WriteCSV(&buf, ms), ShouldBeNil)
			f, err := feed.ReadCSV(&buf)
			So(err, ShouldBeNil)
			back, _ := f.All(ctx)
			So(len(back), ShouldEqual, len(ms))
			for i := range ms {
				So(back[i].ID, ShouldEqual, ms[i].ID)
				So(back[i].Results, ShouldResemble, ms[i].Results)
				So(back[i].Category, ShouldEqual, ms[i].Category)
				So(back[i].StartTime, ShouldEqual, ms[i].StartTime)
			}
		})
	})
}

func TestResolver(t *testing.T) {
	Convey("Given a person map", t, func() {
		r, err := feed.ReadResolver(strings.NewReader("player_id,person\njo,Jo Smith\njoanna,Jo Smith\nbob,Bob\n"))
		So(err, ShouldBeNil)

		Convey("Then aliases resolve both ways", func() {
			So(r.Person("joanna"), ShouldEqual, model.PersonID("Jo Smith"))
			So(r.Players("Jo Smith"), ShouldResemble, []model.PlayerID{"jo", "joanna"})
		})

		Convey("Then unmapped identities are their own person", func() {
			So(r.Person("zed"), ShouldEqual, model.PersonID("zed"))
			So(r.Players("zed"), ShouldResemble, []model.PlayerID{"zed"})
		})
	})

	Convey("Given an empty path", t, func() {
		r, err := feed.LoadResolver("")
		So(err, ShouldBeNil)
		So(r.Players("x"), ShouldResemble, []model.PlayerID{"x"})
	})

	Convey("Given a person map with a single column", t, func() {
		_, err := feed.ReadResolver(strings.NewReader("player_id\nalice\n"))
		So(errors.Is(err, feed.ErrInvalidRecord), ShouldBeTrue)
	})

	Convey("Given a row missing the person column", t, func() {
		_, err := feed.ReadResolver(strings.NewReader("player_id,person\njo,Jo\nalice\n"))
		So(errors.Is(err, feed.ErrInvalidRecord), ShouldBeTrue)
	})

	Convey("Given a row with an empty field", t, func() {
		_, err := feed.ReadResolver(strings.NewReader("player_id,person\njo,\n"))
		So(errors.Is(err, feed.ErrInvalidRecord), ShouldBeTrue)
	})
}
