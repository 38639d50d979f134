// Package history persists per-(player, match) rating snapshots.
//
// Record is idempotent: the first write for a key wins and later writes
// return the stored snapshot unchanged. Replaying an already recorded feed
// is therefore safe and is the recovery path after a crash.
package history

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// Writer is the surface available inside a batch.
type Writer interface {
	// Record stores snap unless (PlayerID, MatchID) exists, and returns the
	// stored snapshot either way.
	Record(ctx context.Context, snap model.RatingSnapshot) (model.RatingSnapshot, error)
	// Latest returns the chronologically newest snapshot for id.
	Latest(ctx context.Context, id model.PlayerID) (model.RatingSnapshot, bool, error)
	// HasMatch reports whether any snapshot references matchID.
	HasMatch(ctx context.Context, matchID string) (bool, error)
}

// Store is a durable snapshot log.
type Store interface {
	Writer
	// History returns id's snapshots in processing order.
	History(ctx context.Context, id model.PlayerID) ([]model.RatingSnapshot, error)
	// HistoryByPerson merges the histories of every alias of person.
	HistoryByPerson(ctx context.Context, person model.PersonID) ([]model.RatingSnapshot, error)
	// Batch runs fn against a staged view and commits all of its writes or
	// none of them.
	Batch(ctx context.Context, fn func(w Writer) error) error
	Close() error
}

// Resolver maps a real-world person to the player records it owns.
type Resolver interface {
	Players(person model.PersonID) []model.PlayerID
}

type identityResolver struct{}

func (identityResolver) Players(person model.PersonID) []model.PlayerID {
	return []model.PlayerID{model.PlayerID(person)}
}

func validate(snap *model.RatingSnapshot) error {
	if snap.PlayerID == "" || snap.MatchID == "" {
		return fmt.Errorf("%w: player %q match %q", ErrInvalidSnapshot, snap.PlayerID, snap.MatchID)
	}
	return nil
}

// sortChronological orders snapshots by (date, start time, session index),
// keeping insertion order for equal keys.
func sortChronological(snaps []model.RatingSnapshot) {
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Before(&snaps[j]) })
}
