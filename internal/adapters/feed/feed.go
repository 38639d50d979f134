// Package feed supplies ordered match records and person resolution from
// flat files.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// Layouts accepted in the date and start_time columns.
const (
	DateLayout      = "2006-01-02"
	StartTimeLayout = "15:04"
)

// ReservedClub names the partitions that span every club, so no club in a
// feed may carry it (in any letter case).
const ReservedClub = "all"

// Columns is the feed header in canonical order. match_id is optional.
var Columns = []string{
	"club", "date", "start_time", "session_index", "type",
	"winner_a", "winner_b", "winner_score",
	"loser_a", "loser_b", "loser_score", "match_id",
}

// matchNamespace seeds the deterministic ids of rows without a match_id.
var matchNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("shuttlerank/match"))

// Feed is the ordered view of recorded matches.
type Feed interface {
	// Clubs lists every club in the feed, sorted.
	Clubs(ctx context.Context) ([]string, error)
	// OrderedSessions lists a club's sessions ascending by date.
	OrderedSessions(ctx context.Context, club string) ([]model.Session, error)
	// OrderedMatches lists a session's matches ascending by session index.
	OrderedMatches(ctx context.Context, sessionID string) ([]model.Match, error)
	// All returns every match ordered by (date, start time, session index).
	All(ctx context.Context) ([]model.Match, error)
}

// MatchID derives the stable id of a match from its chronological key.
func MatchID(club string, date time.Time, sessionIndex int) string {
	key := club + "|" + date.Format(DateLayout) + "|" + strconv.Itoa(sessionIndex)
	return uuid.NewSHA1(matchNamespace, []byte(key)).String()
}

// SessionID names the session of a club on a date.
func SessionID(club string, date time.Time) string {
	return club + "@" + date.Format(DateLayout)
}

// CSVFeed is an in-memory Feed loaded from CSV.
type CSVFeed struct {
	all       []model.Match
	clubs     []string
	sessions  map[string][]model.Session
	bySession map[string][]model.Match
}

// LoadCSV reads the feed file at path.
func LoadCSV(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a feed with a header row. Columns may appear in any order.
func ReadCSV(r io.Reader) (*CSVFeed, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrInvalidRecord, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range Columns[:len(Columns)-1] {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidRecord, c)
		}
	}

	var matches []model.Match
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRecord, line, err)
		}
		m, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		matches = append(matches, m)
	}
	return NewFeed(matches), nil
}

// NewFeed indexes already parsed matches. Matches need ClubID, SessionID and
// ID set.
func NewFeed(matches []model.Match) *CSVFeed {
	f := &CSVFeed{
		all:       make([]model.Match, len(matches)),
		sessions:  make(map[string][]model.Session),
		bySession: make(map[string][]model.Match),
	}
	copy(f.all, matches)
	sort.SliceStable(f.all, func(i, j int) bool {
		a, b := &f.all[i], &f.all[j]
		if a.Before(b) {
			return true
		}
		if b.Before(a) {
			return false
		}
		return a.ClubID < b.ClubID
	})

	for _, m := range f.all {
		if _, ok := f.bySession[m.SessionID]; !ok {
			if _, known := f.sessions[m.ClubID]; !known {
				f.clubs = append(f.clubs, m.ClubID)
			}
			f.sessions[m.ClubID] = append(f.sessions[m.ClubID], model.Session{ID: m.SessionID, ClubID: m.ClubID, Date: m.Date})
		}
		f.bySession[m.SessionID] = append(f.bySession[m.SessionID], m)
	}
	sort.Strings(f.clubs)
	for _, ms := range f.bySession {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].SessionIndex < ms[j].SessionIndex })
	}
	return f
}

// Clubs implements Feed.
func (f *CSVFeed) Clubs(context.Context) ([]string, error) {
	out := make([]string, len(f.clubs))
	copy(out, f.clubs)
	return out, nil
}

// OrderedSessions implements Feed.
func (f *CSVFeed) OrderedSessions(_ context.Context, club string) ([]model.Session, error) {
	ss, ok := f.sessions[club]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClub, club)
	}
	out := make([]model.Session, len(ss))
	copy(out, ss)
	return out, nil
}

// OrderedMatches implements Feed.
func (f *CSVFeed) OrderedMatches(_ context.Context, sessionID string) ([]model.Match, error) {
	ms, ok := f.bySession[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	out := make([]model.Match, len(ms))
	copy(out, ms)
	return out, nil
}

// All implements Feed.
func (f *CSVFeed) All(context.Context) ([]model.Match, error) {
	out := make([]model.Match, len(f.all))
	copy(out, f.all)
	return out, nil
}

// Len returns the number of matches.
func (f *CSVFeed) Len() int { return len(f.all) }

func parseRow(rec []string, idx map[string]int) (model.Match, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRecord}, args...)...)
	}

	club := get("club")
	if club == "" {
		return model.Match{}, bad("club is empty")
	}
	if strings.EqualFold(club, ReservedClub) {
		return model.Match{}, bad("club name %q is reserved", club)
	}
	date, err := time.Parse(DateLayout, get("date"))
	if err != nil {
		return model.Match{}, bad("date %q: %v", get("date"), err)
	}
	var start time.Duration
	if s := get("start_time"); s != "" {
		t, err := time.Parse(StartTimeLayout, s)
		if err != nil {
			return model.Match{}, bad("start_time %q: %v", s, err)
		}
		start = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	}
	sessionIndex, err := strconv.Atoi(get("session_index"))
	if err != nil {
		return model.Match{}, bad("session_index %q", get("session_index"))
	}
	ws, err := strconv.Atoi(get("winner_score"))
	if err != nil {
		return model.Match{}, bad("winner_score %q", get("winner_score"))
	}
	ls, err := strconv.Atoi(get("loser_score"))
	if err != nil {
		return model.Match{}, bad("loser_score %q", get("loser_score"))
	}

	winners, err := model.NewTeam(model.PlayerID(get("winner_a")), model.PlayerID(get("winner_b")))
	if err != nil {
		return model.Match{}, bad("winners: %v", err)
	}
	losers, err := model.NewTeam(model.PlayerID(get("loser_a")), model.PlayerID(get("loser_b")))
	if err != nil {
		return model.Match{}, bad("losers: %v", err)
	}

	id := get("match_id")
	if id == "" {
		id = MatchID(club, date, sessionIndex)
	}
	m := model.NewMatch(id, winners, losers, ws, ls)
	m.ClubID = club
	m.SessionID = SessionID(club, date)
	m.Date = date
	m.StartTime = start
	m.SessionIndex = sessionIndex
	m.Category = model.ParseCategory(get("type"))
	if _, err := m.Outcome(); err != nil {
		return model.Match{}, bad("%v", err)
	}
	return m, nil
}
