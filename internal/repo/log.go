package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// pgForeignKeyViolation is the SQLSTATE raised when trip_logs references a
// trip that does not exist.
const pgForeignKeyViolation = "23503"

// LogRepo persists generated logs. A trip has at most one log; saving a new
// one replaces the old one atomically.
type LogRepo interface {
	// Save replaces the trip's log. Returns domain.ErrNotFound if the trip
	// does not exist.
	Save(ctx context.Context, rec domain.LogRecord) error

	// Get returns domain.ErrNotFound if the trip has never been planned.
	// Segments and stops come back in the order they were saved.
	Get(ctx context.Context, tripID uuid.UUID) (domain.LogRecord, error)
}

type pgLogRepo struct {
	db db
}

// NewLogRepo constructs a LogRepo backed by the provided db connection.
func NewLogRepo(db db) LogRepo {
	return &pgLogRepo{db: db}
}

func (r *pgLogRepo) Save(ctx context.Context, rec domain.LogRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.LogRepo.Save: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM trip_logs WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": rec.TripID}); err != nil {
		return fmt.Errorf("repo.LogRepo.Save: delete: %w", err)
	}

	const insert = `
		INSERT INTO trip_logs (trip_id, start_cycle_hours, generated_at)
		VALUES (@trip_id, @start_cycle_hours, COALESCE(@generated_at, now()))`
	args := pgx.NamedArgs{
		"trip_id":           rec.TripID,
		"start_cycle_hours": rec.StartCycleHours,
		"generated_at":      nullTime(rec),
	}
	if _, err := tx.Exec(ctx, insert, args); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("repo.LogRepo.Save: trip %s: %w", rec.TripID, domain.ErrNotFound)
		}
		return fmt.Errorf("repo.LogRepo.Save: insert log: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"log_segments"},
		[]string{"trip_id", "seq", "status", "kind", "start_at", "end_at", "location", "notes", "miles", "lon", "lat"},
		pgx.CopyFromSlice(len(rec.Segments), func(i int) ([]any, error) {
			s := rec.Segments[i]
			lon, lat := coords(s.Position)
			return []any{rec.TripID, i, string(s.Status), string(s.Kind), s.Start, s.End,
				s.Location, s.Notes, s.Miles, lon, lat}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("repo.LogRepo.Save: copy segments: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"log_stops"},
		[]string{"trip_id", "seq", "kind", "location", "arrive_at", "minutes", "lon", "lat"},
		pgx.CopyFromSlice(len(rec.Stops), func(i int) ([]any, error) {
			st := rec.Stops[i]
			lon, lat := coords(st.Coordinates)
			return []any{rec.TripID, i, string(st.Kind), st.Location, st.ArriveAt, st.Minutes, lon, lat}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("repo.LogRepo.Save: copy stops: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.LogRepo.Save: commit: %w", err)
	}
	return nil
}

func (r *pgLogRepo) Get(ctx context.Context, tripID uuid.UUID) (domain.LogRecord, error) {
	rec := domain.LogRecord{TripID: tripID}

	err := r.db.QueryRow(ctx,
		`SELECT start_cycle_hours::float8, generated_at FROM trip_logs WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID},
	).Scan(&rec.StartCycleHours, &rec.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LogRecord{}, fmt.Errorf("repo.LogRepo.Get: %w", domain.ErrNotFound)
		}
		return domain.LogRecord{}, fmt.Errorf("repo.LogRepo.Get: %w", err)
	}

	if rec.Segments, err = r.segments(ctx, tripID); err != nil {
		return domain.LogRecord{}, fmt.Errorf("repo.LogRepo.Get: %w", err)
	}
	if rec.Stops, err = r.stops(ctx, tripID); err != nil {
		return domain.LogRecord{}, fmt.Errorf("repo.LogRepo.Get: %w", err)
	}
	return rec, nil
}

func (r *pgLogRepo) segments(ctx context.Context, tripID uuid.UUID) ([]domain.Segment, error) {
	const q = `
		SELECT status, kind, start_at, end_at, location, notes, miles, lon, lat
		FROM log_segments
		WHERE trip_id = @trip_id
		ORDER BY seq`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("segments: %w", err)
	}
	defer rows.Close()

	var out []domain.Segment
	for rows.Next() {
		var (
			s        domain.Segment
			lon, lat *float64
		)
		if err := rows.Scan(&s.Status, &s.Kind, &s.Start, &s.End, &s.Location, &s.Notes, &s.Miles, &lon, &lat); err != nil {
			return nil, fmt.Errorf("segments: scan: %w", err)
		}
		s.Position = position(lon, lat)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("segments: rows: %w", err)
	}
	return out, nil
}

func (r *pgLogRepo) stops(ctx context.Context, tripID uuid.UUID) ([]domain.RouteStop, error) {
	const q = `
		SELECT kind, location, arrive_at, minutes, lon, lat
		FROM log_stops
		WHERE trip_id = @trip_id
		ORDER BY seq`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("stops: %w", err)
	}
	defer rows.Close()

	var out []domain.RouteStop
	for rows.Next() {
		var (
			st       domain.RouteStop
			lon, lat *float64
		)
		if err := rows.Scan(&st.Kind, &st.Location, &st.ArriveAt, &st.Minutes, &lon, &lat); err != nil {
			return nil, fmt.Errorf("stops: scan: %w", err)
		}
		st.Coordinates = position(lon, lat)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stops: rows: %w", err)
	}
	return out, nil
}

func nullTime(rec domain.LogRecord) any {
	if rec.GeneratedAt.IsZero() {
		return nil
	}
	return rec.GeneratedAt
}

func coords(c *domain.Coordinates) (lon, lat *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Lon, &c.Lat
}

func position(lon, lat *float64) *domain.Coordinates {
	if lon == nil || lat == nil {
		return nil
	}
	return &domain.Coordinates{Lon: *lon, Lat: *lat}
}
