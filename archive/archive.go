/*
	Copyright (c) 2015-2016 Christopher Young
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	archive.go: Keep assembled series of each run in a SQLite file for later comparison.
*/

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/b3nn0/redplot/series"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	figure TEXT NOT NULL,
	data_dir TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	series TEXT NOT NULL,
	idx INTEGER NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	PRIMARY KEY (run_id, series, idx)
);
CREATE TABLE IF NOT EXISTS run_series (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	pos INTEGER NOT NULL,
	series TEXT NOT NULL,
	PRIMARY KEY (run_id, pos)
);
`

// Run is one archived build.
type Run struct {
	ID        int64
	Figure    string
	DataDir   string
	CreatedAt time.Time
}

type Archive struct {
	db *sql.DB
}

// Open creates or opens the archive at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single writer; sqlite3 serializes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Store writes all series of one build in a single transaction and returns the run id.
func (a *Archive) Store(ctx context.Context, figure, dataDir string, all []*series.Series) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (figure, data_dir, created_at) VALUES (?, ?, ?)",
		figure, dataDir, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	order, err := tx.PrepareContext(ctx, "INSERT INTO run_series (run_id, pos, series) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer order.Close()
	ins, err := tx.PrepareContext(ctx, "INSERT INTO samples (run_id, series, idx, x, y) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer ins.Close()

	for pos, s := range all {
		if _, err := order.ExecContext(ctx, runID, pos, s.Name); err != nil {
			return 0, fmt.Errorf("series %s: %w", s.Name, err)
		}
		for i := 0; i < s.Len(); i++ {
			x, y := s.XY(i)
			if _, err := ins.ExecContext(ctx, runID, s.Name, i, x, y); err != nil {
				return 0, fmt.Errorf("series %s point %d: %w", s.Name, i, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// Runs lists archived runs, newest first.
func (a *Archive) Runs(ctx context.Context) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT id, figure, data_dir, created_at FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Figure, &r.DataDir, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Load returns the series of a run in the order they were stored.
func (a *Archive) Load(ctx context.Context, runID int64) ([]*series.Series, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT series FROM run_series WHERE run_id = ? ORDER BY pos", runID)
	if err != nil {
		return nil, err
	}
	var out []*series.Series
	byName := make(map[string]*series.Series)
	for rows.Next() {
		s := &series.Series{X: []float64{}, Y: []float64{}}
		if err := rows.Scan(&s.Name); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
		byName[s.Name] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("run %d: %w", runID, sql.ErrNoRows)
	}

	pts, err := a.db.QueryContext(ctx, "SELECT series, x, y FROM samples WHERE run_id = ? ORDER BY series, idx", runID)
	if err != nil {
		return nil, err
	}
	defer pts.Close()
	for pts.Next() {
		var name string
		var x, y float64
		if err := pts.Scan(&name, &x, &y); err != nil {
			return nil, err
		}
		s, ok := byName[name]
		if !ok {
			continue
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}
	return out, pts.Err()
}
