// Package postgres persists policies and membership edges in PostgreSQL.
// Watch channels are fed by LISTEN/NOTIFY: every mutation publishes its
// change in the same transaction, so replicas converge through the same
// path their own writes take.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx pool shared by the persisters
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects a pool to the database
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Pool exposes the underlying pool for migrations and health checks
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases resources associated with the store
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Migrate creates the schema the persisters expect
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
create schema if not exists authz;

create table if not exists authz.memberships (
    member text not null,
    grp    text not null,
    primary key (member, grp)
);

create table if not exists authz.policies (
    id          text primary key,
    object      text not null,
    action      integer not null,
    subject     text not null,
    start_date  date,
    end_date    date,
    type        text not null,
    name        text not null default '',
    description text not null default ''
);

create index if not exists policies_object_idx on authz.policies (object);
create index if not exists policies_subject_idx on authz.policies (subject);
`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate authz schema: %w", err)
	}
	return nil
}
