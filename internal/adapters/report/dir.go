package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/shuttlerank/internal/domain/draws"
	"github.com/okian/shuttlerank/internal/domain/engine"
	"github.com/okian/shuttlerank/internal/domain/graphrank"
	"github.com/okian/shuttlerank/internal/domain/registry"
)

// Dir writes one file per partition and report kind under a directory.
type Dir struct {
	root string
}

// NewDir creates root if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	return &Dir{root: root}, nil
}

// Path returns the file a partition's report of kind is written to.
func (d *Dir) Path(partition, kind string) string {
	name := partition + ".csv"
	if kind != "" {
		name = partition + "_" + kind + ".csv"
	}
	return filepath.Join(d.root, name)
}

// Ratings writes <partition>.csv.
func (d *Dir) Ratings(partition string, rows []engine.Row) error {
	return d.write(d.Path(partition, ""), func(w io.Writer) error { return WriteRatings(w, rows) })
}

// Draws writes <partition>_draws.csv.
func (d *Dir) Draws(partition string, matchups []draws.Matchup, top int) error {
	return d.write(d.Path(partition, "draws"), func(w io.Writer) error { return WriteDraws(w, matchups, top) })
}

// Graph writes <partition>_graph.csv.
func (d *Dir) Graph(partition string, scores []graphrank.Score) error {
	return d.write(d.Path(partition, "graph"), func(w io.Writer) error { return WriteGraph(w, scores) })
}

// Pairings writes <partition>_pairings.csv.
func (d *Dir) Pairings(partition string, reg *registry.Registry) error {
	return d.write(d.Path(partition, "pairings"), func(w io.Writer) error { return WritePairings(w, reg) })
}

func (d *Dir) write(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrWriteReport, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteReport, path, err)
	}
	return nil
}
