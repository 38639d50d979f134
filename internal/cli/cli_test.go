package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/shuttlerank/internal/adapters/feed"
	"github.com/okian/shuttlerank/internal/adapters/history"
	"github.com/okian/shuttlerank/internal/app"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := Root()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestCommands(t *testing.T) {
	Convey("Given a generated feed on disk", t, func() {
		dir := t.TempDir()
		feedPath := filepath.Join(dir, "matches.csv")
		reports := filepath.Join(dir, "reports")
		db := filepath.Join(dir, "history.db")

		_, err := run("generate", "--feed-out", feedPath, "--clubs", "2", "--players", "8", "--sessions", "3", "--matches", "4", "--seed", "5")
		So(err, ShouldBeNil)
		f, err := feed.LoadCSV(feedPath)
		So(err, ShouldBeNil)
		So(f.Len(), ShouldEqual, 24)
		all, _ := f.All(context.Background())
		first := all[0].Players()

		Convey("When listing partitions", func() {
			out, err := run("partitions", "--feed", feedPath)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "club-1_overall")
			So(out, ShouldContainSubstring, "all_overall")
		})

		Convey("When ranking into a database", func() {
			out, err := run("rank", "--feed", feedPath, "--out", reports, "--db", db, "--graph", "--draws")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "history: 2 clubs recorded, 0 matches skipped")

			Convey("Then reports are on disk", func() {
				for _, name := range []string{"all_overall.csv", "all_overall_graph.csv", "all_overall_draws.csv", "all_overall_pairings.csv"} {
					_, err := os.Stat(filepath.Join(reports, name))
					So(err, ShouldBeNil)
				}
			})

			Convey("Then a resumed rank skips every match", func() {
				out, err := run("rank", "--feed", feedPath, "--out", reports, "--db", db, "--resume")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "24 matches skipped")
			})

			Convey("Then a player's trajectory starts at the prior", func() {
				out, err := run("history", "--feed", feedPath, "--db", db, "--player", string(first[0]))
				So(err, ShouldBeNil)
				ls := lines(out)
				So(ls[0], ShouldEqual, "player,match_id,date,start_time,mu,sigma,ordinal")
				So(ls[1], ShouldStartWith, string(first[0])+",,,,25.000000,8.333333,")
				So(ls[2], ShouldContainSubstring, all[0].ID)
			})

			Convey("Then a person's trajectory merges their aliases", func() {
				personMap := filepath.Join(dir, "people.csv")
				body := "player_id,person\n" + string(first[0]) + ",zed\n" + string(first[1]) + ",zed\n"
				So(os.WriteFile(personMap, []byte(body), 0o600), ShouldBeNil)

				single, err := run("history", "--feed", feedPath, "--db", db, "--player", string(first[0]))
				So(err, ShouldBeNil)
				merged, err := run("history", "--feed", feedPath, "--db", db, "--person-map", personMap, "--person", "zed")
				So(err, ShouldBeNil)
				So(len(lines(merged)), ShouldBeGreaterThan, len(lines(single)))
			})
		})

		Convey("When printing history from an in-memory replay", func() {
			out, err := run("history", "--feed", feedPath, "--player", string(first[2]))
			So(err, ShouldBeNil)
			So(len(lines(out)), ShouldBeGreaterThan, 2)
		})

		Convey("When history gets no subject", func() {
			_, err := run("history", "--feed", feedPath)
			So(errors.Is(err, ErrHistorySubject), ShouldBeTrue)
		})

		Convey("When history asks for an unknown player", func() {
			_, err := run("history", "--feed", feedPath, "--player", "ghost")
			So(errors.Is(err, history.ErrNotFound), ShouldBeTrue)
		})

		Convey("When ranking a partition by graph centrality", func() {
			out, err := run("graph", "--feed", feedPath, "--partition", "all_overall")
			So(err, ShouldBeNil)
			So(lines(out)[0], ShouldEqual, "rank,player,score")
			So(len(lines(out)), ShouldBeGreaterThan, 4)
		})

		Convey("When listing the top draws", func() {
			out, err := run("draws", "--feed", feedPath, "--top", "5")
			So(err, ShouldBeNil)
			So(len(lines(out)), ShouldEqual, 6)
		})

		Convey("When a partition does not exist", func() {
			_, err := run("graph", "--feed", feedPath, "--partition", "moon_overall")
			So(errors.Is(err, app.ErrUnknownPartition), ShouldBeTrue)
		})
	})
}
