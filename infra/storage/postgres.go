package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/schedule"
)

// PostgresStore persists fleet states and the delivery history in
// PostgreSQL. It implements both schedule.StateStore and
// schedule.HistoryStore.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to the database, verifies the connection and
// creates the schema when missing.
func OpenPostgres(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStatesQuery := `
	CREATE TABLE IF NOT EXISTS barge_states (
		barge_id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL,
		volumes JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createHistoryQuery := `
	CREATE TABLE IF NOT EXISTS delivery_history (
		id TEXT PRIMARY KEY,
		ship TEXT NOT NULL,
		barge_id TEXT NOT NULL,
		product TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_history_ship_completed
	ON delivery_history(ship, completed_at);
	`

	statements := []string{createStatesQuery, createHistoryQuery, createIndexQuery}
	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}

// Load reads all persisted barge states.
func (s *PostgresStore) Load(ctx context.Context) ([]model.BargeState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT barge_id, location_id, volumes FROM barge_states ORDER BY barge_id`)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	defer rows.Close()

	var states []model.BargeState
	for rows.Next() {
		var st model.BargeState
		var volumes []byte
		if err := rows.Scan(&st.BargeID, &st.LocationID, &volumes); err != nil {
			return nil, fmt.Errorf("load states: scan: %w", err)
		}
		if err := json.Unmarshal(volumes, &st.Volumes); err != nil {
			return nil, fmt.Errorf("load states: decode volumes for %s: %w", st.BargeID, err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// Save replaces the whole persisted set in one transaction.
func (s *PostgresStore) Save(ctx context.Context, states []model.BargeState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save states: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM barge_states`); err != nil {
		return fmt.Errorf("save states: clear: %w", err)
	}
	for _, st := range states {
		volumes, err := json.Marshal(st.Volumes)
		if err != nil {
			return fmt.Errorf("save states: encode volumes for %s: %w", st.BargeID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO barge_states (barge_id, location_id, volumes) VALUES ($1, $2, $3)`,
			st.BargeID, st.LocationID, volumes); err != nil {
			return fmt.Errorf("save states: insert %s: %w", st.BargeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save states: commit tx: %w", err)
	}
	return nil
}

// Append inserts one delivery record.
func (s *PostgresStore) Append(ctx context.Context, rec model.DeliveryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO delivery_history (id, ship, barge_id, product, quantity, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Ship, rec.BargeID, rec.Product, rec.Quantity, rec.CompletedAt)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Query returns the records matching the filter, oldest first.
func (s *PostgresStore) Query(ctx context.Context, q schedule.HistoryQuery) ([]model.DeliveryRecord, error) {
	query := `SELECT id, ship, barge_id, product, quantity, completed_at FROM delivery_history WHERE 1=1`
	var args []any
	if q.Ship != "" {
		args = append(args, q.Ship)
		query += fmt.Sprintf(" AND ship = $%d", len(args))
	}
	if q.BargeID != "" {
		args = append(args, q.BargeID)
		query += fmt.Sprintf(" AND barge_id = $%d", len(args))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		query += fmt.Sprintf(" AND completed_at >= $%d", len(args))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		query += fmt.Sprintf(" AND completed_at <= $%d", len(args))
	}
	query += " ORDER BY completed_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var res []model.DeliveryRecord
	for rows.Next() {
		var r model.DeliveryRecord
		if err := rows.Scan(&r.ID, &r.Ship, &r.BargeID, &r.Product, &r.Quantity, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("query history: scan: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
