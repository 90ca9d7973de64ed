package journey

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no journey exists for an ID.
var ErrNotFound = errors.New("journey not found")

// Store persists journey snapshots in Postgres. The whole snapshot lands in
// one row with a single UPSERT, so phase and side data can never be persisted
// separately: a crash either keeps the old snapshot or commits the new one.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Schema is the journeys table DDL, applied at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS journeys (
    id         TEXT PRIMARY KEY,
    phase      TEXT NOT NULL,
    tier       TEXT NOT NULL,
    snapshot   JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS journeys_phase_idx ON journeys (phase);
`

// NewStore connects to Postgres and ensures the schema.
func NewStore(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect journey store: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("apply journey schema: %w", err)
	}
	logger.Info("Journey store ready")
	return &Store{db: db, logger: logger}, nil
}

// NewStoreWithDB wraps an existing connection (used by tests).
func NewStoreWithDB(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Save upserts the full snapshot atomically.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	const q = `
INSERT INTO journeys (id, phase, tier, snapshot, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    phase = EXCLUDED.phase,
    tier = EXCLUDED.tier,
    snapshot = EXCLUDED.snapshot,
    updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, q,
		snap.ID, string(snap.Phase), string(snap.Tier), blob, snap.CreatedAt, snap.UpdatedAt); err != nil {
		return fmt.Errorf("save journey %s: %w", snap.ID, err)
	}

	s.logger.Debug("Journey persisted",
		zap.String("journey_id", snap.ID),
		zap.String("phase", string(snap.Phase)),
	)
	return nil
}

// Load reads a snapshot by ID.
func (s *Store) Load(ctx context.Context, id string) (Snapshot, error) {
	var blob []byte
	err := s.db.QueryRowxContext(ctx, `SELECT snapshot FROM journeys WHERE id = $1`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load journey %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal journey %s: %w", id, err)
	}
	return snap, nil
}

// DB exposes the underlying pool for health probes.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }
