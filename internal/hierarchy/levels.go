package hierarchy

import (
	"context"
	"fmt"

	"github.com/efebarandurmaz/ontograph/internal/ontology"
)

// LevelCell is one (ancestor uri, ancestor label) pair of a level row.
type LevelCell struct {
	URI   string
	Label string
}

// LevelRow places a class under the root-first ancestors of its minimal path.
type LevelRow struct {
	ID     string
	Label  string
	URI    string
	Levels []LevelCell
}

// Fields flattens the row into 3 + 2*len(Levels) columns.
func (r LevelRow) Fields() []string {
	out := make([]string, 0, 3+2*len(r.Levels))
	out = append(out, r.ID, r.Label, r.URI)
	for _, cell := range r.Levels {
		out = append(out, cell.URI, cell.Label)
	}
	return out
}

// MembershipResult holds level rows plus the anomalies skipped on the way.
type MembershipResult struct {
	Rows       []LevelRow
	Classes    int
	MissingURI int
}

// ToplevelMembership computes one level row per class with a URI, in the
// order given. Level columns 0..maxLevel are filled root-first from the
// minimal ancestor path and padded with blanks; root classes have every
// level blank. ctx is checked between classes.
func ToplevelMembership(ctx context.Context, w *Walker, classes []ontology.ClassRef, maxLevel int) (*MembershipResult, error) {
	if maxLevel < 0 {
		return nil, fmt.Errorf("max level must be >= 0, got %d", maxLevel)
	}
	res := &MembershipResult{Rows: make([]LevelRow, 0, len(classes))}
	for _, c := range classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Classes++
		rec, ok := NewRecord(w.ont, c)
		if !ok {
			res.MissingURI++
			w.logger.Info("skipping class without uri", "class", string(c))
			continue
		}
		path, err := w.MinimalAncestorPath(c)
		if err != nil {
			return nil, fmt.Errorf("level membership of %s: %w", rec.URI, err)
		}
		res.Rows = append(res.Rows, levelRow(rec, path, maxLevel))
	}
	w.logger.Debug("level membership computed", "rows", len(res.Rows), "max_level", maxLevel)
	return res, nil
}

func levelRow(rec ClassRecord, path AncestorPath, maxLevel int) LevelRow {
	row := LevelRow{
		ID:     rec.ID,
		Label:  rec.Label,
		URI:    rec.URI,
		Levels: make([]LevelCell, maxLevel+1),
	}
	rootFirst := path.Reversed()
	for j := 0; j <= maxLevel && j < len(rootFirst); j++ {
		row.Levels[j] = LevelCell{URI: rootFirst[j].URI, Label: rootFirst[j].DisplayLabel()}
	}
	return row
}
