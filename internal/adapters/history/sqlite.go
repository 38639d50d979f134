package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

//go:embed schema.sql
var schema string

const timestampLayout = "2006-01-02T15:04:05Z"

const snapshotColumns = `player_id, match_id, mu, sigma, match_date, start_time_ns, session_index, winner`

const chronological = `ORDER BY match_date, start_time_ns, session_index, id`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore keeps history in a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	resolver Resolver
	logger   logger.Logger
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	s := defaults(opts)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; a single connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, resolver: s.resolver, logger: s.logger}, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record implements Writer.
func (s *SQLiteStore) Record(ctx context.Context, snap model.RatingSnapshot) (model.RatingSnapshot, error) {
	return (&sqlWriter{q: s.db}).Record(ctx, snap)
}

// Latest implements Writer.
func (s *SQLiteStore) Latest(ctx context.Context, id model.PlayerID) (model.RatingSnapshot, bool, error) {
	return (&sqlWriter{q: s.db}).Latest(ctx, id)
}

// HasMatch implements Writer.
func (s *SQLiteStore) HasMatch(ctx context.Context, matchID string) (bool, error) {
	return (&sqlWriter{q: s.db}).HasMatch(ctx, matchID)
}

// History implements Store.
func (s *SQLiteStore) History(ctx context.Context, id model.PlayerID) ([]model.RatingSnapshot, error) {
	return s.query(ctx, []model.PlayerID{id})
}

// HistoryByPerson implements Store.
func (s *SQLiteStore) HistoryByPerson(ctx context.Context, person model.PersonID) ([]model.RatingSnapshot, error) {
	return s.query(ctx, s.resolver.Players(person))
}

func (s *SQLiteStore) query(ctx context.Context, ids []model.PlayerID) ([]model.RatingSnapshot, error) {
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM rank_history WHERE player_id IN (`+placeholders+`) `+chronological,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.RatingSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Batch implements Store with one transaction.
func (s *SQLiteStore) Batch(ctx context.Context, fn func(w Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	w := &sqlWriter{q: tx}
	if err := fn(w); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error(ctx, "history rollback failed", logger.Error(rbErr))
		}
		s.logger.Warn(ctx, "history batch discarded", logger.Int("staged", w.written), logger.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordErrorByComponent("history", "commit")
		return fmt.Errorf("commit batch: %w", err)
	}
	for i := 0; i < w.written; i++ {
		metrics.RecordSnapshotWritten()
	}
	return nil
}

type sqlWriter struct {
	q       querier
	written int
}

func (w *sqlWriter) Record(ctx context.Context, snap model.RatingSnapshot) (model.RatingSnapshot, error) {
	if err := validate(&snap); err != nil {
		return model.RatingSnapshot{}, err
	}
	res, err := w.q.ExecContext(ctx, `
		INSERT INTO rank_history (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id, match_id) DO NOTHING
	`, string(snap.PlayerID), snap.MatchID, snap.Mu, snap.Sigma,
		snap.Date.UTC().Format(timestampLayout), int64(snap.StartTime), snap.SessionIndex, snap.Winner)
	if err != nil {
		metrics.RecordErrorByComponent("history", "insert")
		return model.RatingSnapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		w.written++
		return snap, nil
	}

	metrics.RecordSnapshotDuplicate()
	row := w.q.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM rank_history WHERE player_id = ? AND match_id = ?`,
		string(snap.PlayerID), snap.MatchID)
	return scanSnapshot(row)
}

func (w *sqlWriter) Latest(ctx context.Context, id model.PlayerID) (model.RatingSnapshot, bool, error) {
	row := w.q.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM rank_history WHERE player_id = ?
		ORDER BY match_date DESC, start_time_ns DESC, session_index DESC, id DESC
		LIMIT 1
	`, string(id))
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RatingSnapshot{}, false, nil
	}
	if err != nil {
		return model.RatingSnapshot{}, false, err
	}
	return snap, true, nil
}

func (w *sqlWriter) HasMatch(ctx context.Context, matchID string) (bool, error) {
	var one int
	err := w.q.QueryRowContext(ctx, `SELECT 1 FROM rank_history WHERE match_id = ? LIMIT 1`, matchID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup match: %w", err)
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (model.RatingSnapshot, error) {
	var (
		snap      model.RatingSnapshot
		player    string
		date      string
		startTime int64
	)
	if err := sc.Scan(&player, &snap.MatchID, &snap.Mu, &snap.Sigma, &date, &startTime, &snap.SessionIndex, &snap.Winner); err != nil {
		return model.RatingSnapshot{}, err
	}
	d, err := time.Parse(timestampLayout, date)
	if err != nil {
		return model.RatingSnapshot{}, fmt.Errorf("parse match_date %q: %w", date, err)
	}
	snap.PlayerID = model.PlayerID(player)
	snap.Date = d
	snap.StartTime = time.Duration(startTime)
	return snap, nil
}
