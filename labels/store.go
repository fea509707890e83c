/*
 * store.go, part of stitch.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package labels

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a label record kept in a SQLite database, one row per labeled frame.
type Store struct {
	db   *sql.DB
	name string
}

// OpenStore opens (creating it if needed) the SQLite label store in the file name,
// and brings its schema up to date.
func OpenStore(name string) (*Store, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, fmt.Errorf("labels.OpenStore %s: %w", name, err)
	}
	db.SetMaxOpenConns(1)
	S := &Store{db: db, name: name}
	if err := S.migrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("labels.OpenStore %s: %w", name, err)
	}
	return S, nil
}

func (S *Store) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(S.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed, that would close S.db too.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (S *Store) Close() error {
	return S.db.Close()
}

// Put replaces the contents of the store with rec, in a single transaction.
func (S *Store) Put(rec Record) (err error) {
	tx, err := S.db.Begin()
	if err != nil {
		return fmt.Errorf("labels.Store.Put %s: %w", S.name, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			err = fmt.Errorf("labels.Store.Put %s: %w", S.name, err)
		}
	}()
	if _, err = tx.Exec(`DELETE FROM labels`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO labels (segment, frame, state) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for s, seg := range rec {
		for f, v := range seg {
			if _, err = stmt.Exec(s, f, v); err != nil {
				return err
			}
		}
	}
	_, err = tx.Exec(`INSERT INTO record_info (key, value) VALUES ('nsegments', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(len(rec)))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Record reads the whole record back. Segments with no rows, up to the
// segment count stored with the record, are returned empty. The frames of
// a segment must be numbered from 0 with no gaps.
func (S *Store) Record() (Record, error) {
	nseg, err := S.nsegments()
	if err != nil {
		return nil, fmt.Errorf("labels.Store.Record %s: %w", S.name, err)
	}
	rows, err := S.db.Query(`SELECT segment, frame, state FROM labels ORDER BY segment, frame`)
	if err != nil {
		return nil, fmt.Errorf("labels.Store.Record %s: %w", S.name, err)
	}
	defer rows.Close()
	rec := make(Record, nseg)
	for rows.Next() {
		var s, f, v int
		if err := rows.Scan(&s, &f, &v); err != nil {
			return nil, fmt.Errorf("labels.Store.Record %s: %w", S.name, err)
		}
		for s >= len(rec) {
			rec = append(rec, nil)
		}
		if f != len(rec[s]) {
			return nil, fmt.Errorf("labels.Store.Record %s: segment %d has no label for frame %d", S.name, s, len(rec[s]))
		}
		rec[s] = append(rec[s], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("labels.Store.Record %s: %w", S.name, err)
	}
	for i := range rec {
		if rec[i] == nil {
			rec[i] = []int{}
		}
	}
	return rec, nil
}

// nsegments returns the segment count stored with the record, 0 if there is none.
func (S *Store) nsegments() (int, error) {
	var v string
	err := S.db.QueryRow(`SELECT value FROM record_info WHERE key = 'nsegments'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid segment count %q", v)
	}
	return n, nil
}

// FirstState returns the first (segment, frame) labeled with state, using the
// state index. ok is false if the state is not in the store.
func (S *Store) FirstState(state int) (segment, frame int, ok bool, err error) {
	err = S.db.QueryRow(`SELECT segment, frame FROM labels WHERE state = ? ORDER BY segment, frame LIMIT 1`, state).Scan(&segment, &frame)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, -1, false, nil
	}
	if err != nil {
		return -1, -1, false, fmt.Errorf("labels.Store.FirstState %s: %w", S.name, err)
	}
	return segment, frame, true, nil
}

// Query answers the questions a trace asks about a record (segment count,
// first occurrence of a state, branch state of a segment) with one database
// query each, so a trace over a large store never loads the whole record.
// A failed query makes the answer negative, and its error is kept for Err.
type Query struct {
	s    *Store
	nseg int
	err  error
}

// Query returns a Query over the record in S.
func (S *Store) Query() (*Query, error) {
	n, err := S.nsegments()
	if err != nil {
		return nil, fmt.Errorf("labels.Store.Query %s: %w", S.name, err)
	}
	return &Query{s: S, nseg: n}, nil
}

// Err returns the first error found while querying the store, if any.
func (Q *Query) Err() error {
	return Q.err
}

func (Q *Query) fail(err error) {
	if Q.err == nil {
		Q.err = err
	}
}

// NSegments returns the number of segments in the record.
func (Q *Query) NSegments() int {
	return Q.nseg
}

// Contains returns true if state labels some frame.
func (Q *Query) Contains(state int) bool {
	_, _, ok := Q.First(state)
	return ok
}

// First is like Record.First.
func (Q *Query) First(state int) (segment, frame int, ok bool) {
	segment, frame, ok, err := Q.s.FirstState(state)
	if err != nil {
		Q.fail(err)
	}
	return segment, frame, ok
}

// Branch is like Record.Branch.
func (Q *Query) Branch(segment int) (state int, ok bool) {
	err := Q.s.db.QueryRow(`SELECT state FROM labels WHERE segment = ? AND frame = 0`, segment).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false
	}
	if err != nil {
		Q.fail(fmt.Errorf("labels.Query.Branch %s: %w", Q.s.name, err))
		return 0, false
	}
	return state, true
}
