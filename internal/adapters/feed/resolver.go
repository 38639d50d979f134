package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// Resolver is a read-only player -> person mapping. Players without an
// entry are their own person.
type Resolver struct {
	person  map[model.PlayerID]model.PersonID
	players map[model.PersonID][]model.PlayerID
}

// NewResolver builds a resolver from explicit pairs.
func NewResolver(pairs map[model.PlayerID]model.PersonID) *Resolver {
	r := &Resolver{
		person:  make(map[model.PlayerID]model.PersonID, len(pairs)),
		players: make(map[model.PersonID][]model.PlayerID),
	}
	for player, person := range pairs {
		r.add(player, person)
	}
	for _, ids := range r.players {
		sortPlayers(ids)
	}
	return r
}

// LoadResolver reads a player_id,person CSV. An empty path yields the
// identity resolver.
func LoadResolver(path string) (*Resolver, error) {
	if path == "" {
		return NewResolver(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open person map: %w", err)
	}
	defer f.Close()
	return ReadResolver(f)
}

// ReadResolver parses a player_id,person CSV with a header row.
func ReadResolver(r io.Reader) (*Resolver, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 2
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("%w: person map header: %w", ErrInvalidRecord, err)
	}
	pairs := make(map[model.PlayerID]model.PersonID)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: person map line %d: %w", ErrInvalidRecord, line, err)
		}
		player, person := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if player == "" || person == "" {
			return nil, fmt.Errorf("%w: person map line %d has an empty field", ErrInvalidRecord, line)
		}
		pairs[model.PlayerID(player)] = model.PersonID(person)
	}
	return NewResolver(pairs), nil
}

func (r *Resolver) add(player model.PlayerID, person model.PersonID) {
	r.person[player] = person
	r.players[person] = append(r.players[person], player)
}

// Person returns the person owning player.
func (r *Resolver) Person(player model.PlayerID) model.PersonID {
	if p, ok := r.person[player]; ok {
		return p
	}
	return model.PersonID(player)
}

// Players returns every player owned by person. An unmapped person owns the
// player with the same id.
func (r *Resolver) Players(person model.PersonID) []model.PlayerID {
	ids, ok := r.players[person]
	if !ok {
		return []model.PlayerID{model.PlayerID(person)}
	}
	out := make([]model.PlayerID, len(ids))
	copy(out, ids)
	return out
}

func sortPlayers(ids []model.PlayerID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
