package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/platform/obs"
)

// Postgres-backed implementation of the StopRepository port.
type PostgresStopRepository struct{ DB *sql.DB }

func NewPostgresStopRepository(db *sql.DB) *PostgresStopRepository {
	return &PostgresStopRepository{DB: db}
}

// Return the stops of a batch in the order they were first inserted.
func (s *PostgresStopRepository) ListStops(ctx context.Context, batchID string) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, "stops.repo.ListStops")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres stop repository: DB is nil")
	}

	query := `
	SELECT
		stop_id,
		lat,
		lon,
		priority
	FROM stops
	WHERE batch_id = $1
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 64)
	for rows.Next() {
		var (
			id       int
			lat, lon float64
			priority string
		)
		if err := rows.Scan(&id, &lat, &lon, &priority); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		stops = append(stops, domain.Stop{ID: id, Lat: lat, Lon: lon, Priority: domain.Priority(priority)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}
