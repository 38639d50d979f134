package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/shuttlerank/internal/app"
	"github.com/okian/shuttlerank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func m(club string, day int, cat model.Category) model.Match {
	mt := model.NewMatch(club+string(rune('a'+day)), model.MustTeam("a", "b"), model.MustTeam("c", "d"), 21, 10)
	mt.ClubID = club
	mt.Date = time.Date(2024, 1, 1+day, 0, 0, 0, 0, time.UTC)
	mt.Category = cat
	return mt
}

func names(parts []app.Partition) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.Name
	}
	return out
}

func TestPartitions(t *testing.T) {
	feed := []model.Match{
		m("north", 0, model.CategoryMens),
		m("south", 1, model.CategoryMixed),
		m("north", 2, model.CategoryUndefined),
		m("north", 3, model.CategoryMixed),
	}

	Convey("Given per-club and combined partitions", t, func() {
		parts, err := app.Partitions(feed, app.PartitionOptions{PerClub: true, Combined: true, Excluded: model.CategoryUndefined})
		So(err, ShouldBeNil)

		Convey("Then every non-empty partition is named after its scope", func() {
			So(names(parts), ShouldResemble, []string{
				"north_mens", "north_mixed", "north_overall",
				"south_mixed", "south_overall",
				"all_mens", "all_mixed", "all_overall",
			})
		})

		Convey("Then overall partitions leave out the excluded category", func() {
			for _, p := range parts {
				if p.Name == "north_overall" {
					So(len(p.Matches), ShouldEqual, 2)
					So(p.Overall, ShouldBeTrue)
				}
				if p.Name == "all_overall" {
					So(len(p.Matches), ShouldEqual, 3)
					So(p.Club, ShouldBeBlank)
				}
			}
		})

		Convey("Then partitions keep feed order", func() {
			for _, p := range parts {
				for i := 1; i < len(p.Matches); i++ {
					So(p.Matches[i].Before(&p.Matches[i-1]), ShouldBeFalse)
				}
			}
		})
	})

	Convey("Given only combined partitions with nothing excluded", t, func() {
		parts, err := app.Partitions(feed, app.PartitionOptions{Combined: true, Excluded: model.Category(-1)})
		So(err, ShouldBeNil)

		Convey("Then undefined matches count toward overall only", func() {
			So(names(parts), ShouldResemble, []string{"all_mens", "all_mixed", "all_overall"})
			So(len(parts[2].Matches), ShouldEqual, 4)
		})
	})

	Convey("Given a club named like the combined partitions", t, func() {
		clash := append([]model.Match{m("all", 4, model.CategoryMens)}, feed...)
		_, err := app.Partitions(clash, app.PartitionOptions{PerClub: true, Combined: true})

		Convey("Then partitioning is refused instead of overwriting all_*", func() {
			So(errors.Is(err, app.ErrReservedClub), ShouldBeTrue)
		})
	})

	Convey("Given matches grouped by club", t, func() {
		by := app.ByClub(feed)
		So(len(by["north"]), ShouldEqual, 3)
		So(len(by["south"]), ShouldEqual, 1)
	})
}
