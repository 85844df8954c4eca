package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"smart-route-planner/internal/domain"
)

// Initialize the Postgres schema for stored stop batches.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		seq BIGSERIAL NOT NULL,
		batch_id TEXT NOT NULL,
		stop_id INTEGER NOT NULL,
		lat DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
		lon DOUBLE PRECISION NOT NULL CHECK (lon BETWEEN -180 AND 180),
		priority TEXT NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
		PRIMARY KEY (batch_id, stop_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stops_batch_seq
	ON stops(batch_id, seq);
	`

	statements := []string{
		createStopsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	Batch    string  `json:"batch"`
	ID       int     `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Priority string  `json:"priority"`
}

// Read and validate a JSON seed file of stops.
func LoadSeedFile(jsonPath string) ([]StopSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	var data []StopSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed stops: parse json: %w", err)
	}

	type key struct {
		batch string
		id    int
	}
	seen := make(map[key]struct{}, len(data))

	rows := make([]StopSeed, 0, len(data))
	for i, item := range data {
		batch := strings.TrimSpace(item.Batch)
		if batch == "" {
			return nil, fmt.Errorf("seed stops: item at index %d: batch cannot be empty", i+1)
		}

		k := key{batch: batch, id: item.ID}
		if _, ok := seen[k]; ok {
			return nil, fmt.Errorf("seed stops: item at index %d: duplicate stop id %d in batch %q", i+1, item.ID, batch)
		}
		seen[k] = struct{}{}

		if !(domain.Coordinates{Lat: item.Lat, Lon: item.Lon}).Valid() {
			return nil, fmt.Errorf("seed stops: item at index %d: coordinates out of range (%v, %v)", i+1, item.Lat, item.Lon)
		}

		priority := domain.Priority(strings.ToLower(strings.TrimSpace(item.Priority)))
		if !priority.Valid() {
			return nil, fmt.Errorf("seed stops: item at index %d: invalid priority %q", i+1, item.Priority)
		}

		rows = append(rows, StopSeed{Batch: batch, ID: item.ID, Lat: item.Lat, Lon: item.Lon, Priority: string(priority)})
	}

	return rows, nil
}

// Populate the database with stop batches from a JSON file.
// Re-seeding upserts coordinates and priority but keeps the original position.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	if db == nil {
		return 0, errors.New("seed stops: DB is nil")
	}

	rows, err := LoadSeedFile(jsonPath)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed stops: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO stops (batch_id, stop_id, lat, lon, priority)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (batch_id, stop_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		priority = EXCLUDED.priority;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range rows {
		if _, err := stmt.ExecContext(ctx, s.Batch, s.ID, s.Lat, s.Lon, s.Priority); err != nil {
			return 0, fmt.Errorf("seed stops: insert batch=%q stop_id=%d: %w", s.Batch, s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed stops: commit tx: %w", err)
	}

	return len(rows), nil
}
