package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxConn is the subset of *pgxpool.Pool used by the Postgres slot.
type PgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresSlot struct {
	db   PgxConn
	name string
}

func NewPostgresSlot(db PgxConn, slot string) SlotRepository {
	return &postgresSlot{
		db:   db,
		name: slot,
	}
}

// EnsureSchema creates the key/value table backing every slot.
func EnsureSchema(ctx context.Context, db PgxConn) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_slots (
		name       TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create kv_slots table: %w", err)
	}
	return nil
}

func (s *postgresSlot) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.QueryRow(ctx, `SELECT data FROM kv_slots WHERE name = $1`, s.name).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", s.name, err)
	}
	return []byte(data), nil
}

func (s *postgresSlot) Save(ctx context.Context, data []byte) error {
	query := `
	INSERT INTO kv_slots (name, data, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (name)
	DO UPDATE SET data = $2, updated_at = now()`
	_, err := s.db.Exec(ctx, query, s.name, string(data))
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", s.name, err)
	}
	return nil
}

func (s *postgresSlot) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
