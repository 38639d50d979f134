package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/shuttlerank/internal/adapters/feed"
	"github.com/okian/shuttlerank/internal/domain/model"
)

// Partition is one disjoint engine input.
type Partition struct {
	Name     string
	Club     string // empty for combined partitions
	Category model.Category
	Overall  bool
	Matches  []model.Match
}

// PartitionOptions selects which partitions are produced.
type PartitionOptions struct {
	PerClub  bool
	Combined bool
	// Excluded is left out of overall partitions. Undefined matches never
	// form a category partition of their own.
	Excluded model.Category
}

// combinedPrefix names partitions spanning every club. No club may use it.
const combinedPrefix = feed.ReservedClub

// Partitions splits an ordered feed into per club x category, per club
// overall, all_<category> and all_overall inputs. Each keeps the feed's
// order and empty partitions are dropped. A club named like the combined
// prefix is rejected with ErrReservedClub since its partitions would
// collide with the combined ones.
func Partitions(all []model.Match, opts PartitionOptions) ([]Partition, error) {
	byClub := ByClub(all)
	for c := range byClub {
		if strings.EqualFold(c, combinedPrefix) {
			return nil, fmt.Errorf("%w: %q", ErrReservedClub, c)
		}
	}

	var out []Partition
	if opts.PerClub {
		clubs := make([]string, 0, len(byClub))
		for c := range byClub {
			clubs = append(clubs, c)
		}
		sort.Strings(clubs)
		for _, club := range clubs {
			out = append(out, split(club, club, byClub[club], opts.Excluded)...)
		}
	}
	if opts.Combined {
		out = append(out, split(combinedPrefix, "", all, opts.Excluded)...)
	}
	return out, nil
}

func split(prefix, club string, matches []model.Match, excluded model.Category) []Partition {
	var out []Partition
	for _, cat := range model.Categories {
		var ms []model.Match
		for _, m := range matches {
			if m.Category == cat {
				ms = append(ms, m)
			}
		}
		if len(ms) > 0 {
			out = append(out, Partition{Name: prefix + "_" + cat.Slug(), Club: club, Category: cat, Matches: ms})
		}
	}

	var overall []model.Match
	for _, m := range matches {
		if m.Category != excluded {
			overall = append(overall, m)
		}
	}
	if len(overall) > 0 {
		out = append(out, Partition{Name: prefix + "_overall", Club: club, Overall: true, Matches: overall})
	}
	return out
}

// ByClub groups an ordered feed per club for history recording.
func ByClub(all []model.Match) map[string][]model.Match {
	out := make(map[string][]model.Match)
	for _, m := range all {
		out[m.ClubID] = append(out[m.ClubID], m)
	}
	return out
}
