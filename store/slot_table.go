// Package store persists slot tables in Postgres and publishes weekly
// congestion reports to Redis.
package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/laundry-sim/laundry-sim/sim/slots"
)

// DB is the subset of *pgxpool.Pool used by SlotTable.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ DB = (*pgxpool.Pool)(nil)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// DefaultTable is the slot table name used by the CLI.
const DefaultTable = "laundry_slots"

// SlotTable stores slot rows keyed by (run_id, room_type, day_of_week, hour).
type SlotTable struct {
	db    DB
	table string // sanitized identifier
}

// NewSlotTable binds a table name to a connection pool.
func NewSlotTable(db DB, table string) (*SlotTable, error) {
	if db == nil {
		panic("NewSlotTable: db must not be nil")
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SlotTable{db: db, table: pgx.Identifier{table}.Sanitize()}, nil
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool init: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the table if it does not exist.
func (t *SlotTable) EnsureSchema(ctx context.Context) error {
	_, err := t.db.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id         TEXT             NOT NULL,
			room_type      TEXT             NOT NULL,
			day_of_week    SMALLINT         NOT NULL,
			hour           SMALLINT         NOT NULL,
			weighted_usage DOUBLE PRECISION NOT NULL,
			congestion     SMALLINT         NOT NULL,
			is_weekend     BOOLEAN          NOT NULL,
			room_code      INTEGER          NOT NULL,
			last_1h        DOUBLE PRECISION NOT NULL,
			last_3h        DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, room_type, day_of_week, hour)
		)`, t.table))
	if err != nil {
		return fmt.Errorf("creating slot table: %w", err)
	}
	return nil
}

// Save upserts every slot under runID in a single batch.
func (t *SlotTable) Save(ctx context.Context, runID string, rows []slots.Slot) error {
	if runID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, room_type, day_of_week, hour, weighted_usage, congestion,
			is_weekend, room_code, last_1h, last_3h)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, room_type, day_of_week, hour) DO UPDATE SET
			weighted_usage = EXCLUDED.weighted_usage,
			congestion = EXCLUDED.congestion,
			is_weekend = EXCLUDED.is_weekend,
			room_code = EXCLUDED.room_code,
			last_1h = EXCLUDED.last_1h,
			last_3h = EXCLUDED.last_3h`, t.table)

	batch := &pgx.Batch{}
	for _, s := range rows {
		batch.Queue(query, runID, s.Room, s.DayOfWeek, s.Hour, s.WeightedUsage, s.Congestion,
			s.IsWeekend, s.RoomCode, s.Last1h, s.Last3h)
	}
	results := t.db.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("upserting slot %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}
	logrus.Infof("Saved %d slots for run %q", len(rows), runID)
	return nil
}

// Load returns the slots of runID ordered by (room code, day, hour).
func (t *SlotTable) Load(ctx context.Context, runID string) ([]slots.Slot, error) {
	rows, err := t.db.Query(ctx, fmt.Sprintf(`
		SELECT room_type, day_of_week, hour, weighted_usage, congestion,
			is_weekend, room_code, last_1h, last_3h
		FROM %s
		WHERE run_id = $1
		ORDER BY room_code, day_of_week, hour`, t.table), runID)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer rows.Close()

	var out []slots.Slot
	for rows.Next() {
		var s slots.Slot
		if err := rows.Scan(&s.Room, &s.DayOfWeek, &s.Hour, &s.WeightedUsage, &s.Congestion,
			&s.IsWeekend, &s.RoomCode, &s.Last1h, &s.Last3h); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading slots: %w", err)
	}
	return out, nil
}
