// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the persistent geocode cache. Every place name
// that was resolved through the external geocoder is remembered here so a
// later run never repeats the network call.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcodagnone/lanedist/spatial"
	"github.com/jcodagnone/lanedist/utils/textutils"
	"github.com/uber/h3-go/v4"
)

// Entry is one cached geocode resolution, keyed by the normalized place
// string.
type Entry struct {
	Place     string        `json:"place"`
	Point     spatial.Point `json:"point"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	H3Res7    int64         `json:"-"`
	H3Res8    int64         `json:"-"`
}

func (e *Entry) computeH3() error {
	latLng := h3.NewLatLng(e.Point.Lat, e.Point.Lng)

	for _, res := range []int{7, 8} {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 7:
			e.H3Res7 = int64(cell)
		case 8:
			e.H3Res8 = int64(cell)
		}
	}

	return nil
}

// Store handles persistence of geocode cache entries.
type Store interface {
	// CreateSchema creates the cache table
	CreateSchema() error

	// Get returns the cached coordinates for a place, if present
	Get(place string) (spatial.Point, bool, error)

	// Put inserts or replaces the cached coordinates for a place
	Put(place string, pt spatial.Point) error

	// BulkPut upserts a slice of entries
	BulkPut(entries []*Entry) error

	// All returns every entry, sorted by place
	All() ([]*Entry, error)

	// Count returns the total number of cached places
	Count() (int, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlStore struct {
	db *sql.DB
}

// NewStore creates a cache store on top of an open database connection.
func NewStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

// Open opens (or creates) the cache database at path and ensures the
// schema exists. A store that cannot be opened is a configuration error
// the process cannot proceed without, so the error propagates.
func Open(path string) (Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache store %s: %w", path, err)
	}

	store := NewStore(db)
	if err := store.CreateSchema(); err != nil {
		return nil, errors.Join(
			fmt.Errorf("creating cache schema: %w", err),
			db.Close(),
		)
	}

	return store, nil
}

// DB returns the underlying database connection for advanced queries.
func (s *sqlStore) DB() *sql.DB {
	return s.db
}

func (s *sqlStore) CreateSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			place VARCHAR PRIMARY KEY,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (s *sqlStore) Get(place string) (spatial.Point, bool, error) {
	key := textutils.NormalizeKey(place)
	if key == "" {
		return spatial.Point{}, false, nil
	}

	var pt spatial.Point

	err := s.db.QueryRow(`
		SELECT latitude, longitude FROM geocode_cache WHERE place = ?
	`, key).Scan(&pt.Lat, &pt.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return spatial.Point{}, false, nil
	}

	if err != nil {
		return spatial.Point{}, false, fmt.Errorf("reading cache entry %q: %w", key, err)
	}

	return pt, true, nil
}

func (s *sqlStore) Put(place string, pt spatial.Point) error {
	key := textutils.NormalizeKey(place)
	if key == "" {
		return errors.New("cache key can't be empty")
	}

	if !pt.Valid() {
		return fmt.Errorf("refusing to cache out-of-range point %s", pt)
	}

	now := time.Now()

	return s.BulkPut([]*Entry{{
		Place:     key,
		Point:     pt,
		CreatedAt: now,
		UpdatedAt: now,
	}})
}

func (s *sqlStore) BulkPut(entries []*Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	// The upsert keeps a repeated put for the same key as a replace, never
	// a duplicate row. When several processes share one cache file this is
	// the storage layer's job, not the resolver's.
	stmt, err := tx.Prepare(`
		INSERT INTO geocode_cache(
			place, latitude, longitude, h3_res7, h3_res8, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (place) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			h3_res7 = excluded.h3_res7,
			h3_res8 = excluded.h3_res8,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		e.Place = textutils.NormalizeKey(e.Place)
		if e.Place == "" {
			continue
		}

		if err = e.computeH3(); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}

		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}

		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = e.CreatedAt
		}

		if _, err = stmt.Exec(
			e.Place,
			e.Point.Lat,
			e.Point.Lng,
			e.H3Res7,
			e.H3Res8,
			e.CreatedAt,
			e.UpdatedAt,
		); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

func (s *sqlStore) All() ([]*Entry, error) {
	rows, err := s.db.Query(`
		SELECT place, latitude, longitude, h3_res7, h3_res8, created_at, updated_at
		FROM geocode_cache
		ORDER BY place
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry

	for rows.Next() {
		e := &Entry{}

		var h3Res7, h3Res8 sql.NullInt64

		if err := rows.Scan(
			&e.Place,
			&e.Point.Lat,
			&e.Point.Lng,
			&h3Res7,
			&h3Res8,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if h3Res7.Valid {
			e.H3Res7 = h3Res7.Int64
		}

		if h3Res8.Valid {
			e.H3Res8 = h3Res8.Int64
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *sqlStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM geocode_cache",
	).Scan(&count)

	return count, err
}
