package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer lo cumplen *pgxpool.Pool, *pgx.Conn y pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SchemaUsuarios DDL idempotente del almacén de credenciales.
// permisos guarda la lista delimitada por comas en orden de inserción.
const SchemaUsuarios = `
CREATE TABLE IF NOT EXISTS usuarios (
	id            BIGSERIAL PRIMARY KEY,
	login_name    TEXT NOT NULL UNIQUE,
	nombre        TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	rol           TEXT NOT NULL,
	permisos      TEXT NOT NULL DEFAULT '',
	estado        TEXT NOT NULL DEFAULT 'active' CHECK (estado IN ('active', 'inactive')),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, SchemaUsuarios); err != nil {
		return fmt.Errorf("crear tabla usuarios: %w", err)
	}
	return nil
}
