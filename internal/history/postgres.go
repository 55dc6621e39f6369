package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// SQLExecutor is the query surface PostgresStore needs. *pgxpool.Pool
// satisfies it.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

const qCreateHistory = `
create table if not exists textfx_history (
  id         uuid primary key,
  owner      text not null,
  text       text not null,
  prompt     text not null,
  mime_type  text not null,
  data       bytea not null,
  created_at timestamptz not null
);
create index if not exists textfx_history_owner_created
  on textfx_history (owner, created_at desc);
`

const qInsertImage = `
insert into textfx_history (id, owner, text, prompt, mime_type, data, created_at)
values ($1::uuid, $2, $3, $4, $5, $6, $7);
`

const qListImages = `
select id::text, text, prompt, mime_type, data, created_at
from textfx_history
where owner = $1
order by created_at desc, id desc;
`

const qSelectImage = `
select id::text, text, prompt, mime_type, data, created_at
from textfx_history
where owner = $1 and id = $2::uuid
limit 1;
`

// PostgresStore keeps history rows, image bytes included, in PostgreSQL.
type PostgresStore struct {
	db    SQLExecutor
	owner string
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store for one owner over db.
func NewPostgresStore(db SQLExecutor, owner string) *PostgresStore {
	return &PostgresStore{db: db, owner: owner}
}

// NewPool opens a pgx connection pool for databaseURL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}

// Migrate creates the history table if it does not exist.
func Migrate(ctx context.Context, db SQLExecutor) error {
	if _, err := db.Exec(ctx, qCreateHistory); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Add inserts img.
func (s *PostgresStore) Add(ctx context.Context, img *GeneratedImage) error {
	_, err := s.db.Exec(ctx, qInsertImage,
		img.ID, s.owner, img.Text, img.Prompt, img.MIMEType, img.Data, img.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert history image %s: %w", img.ID, err)
	}
	log.Debug().Str("id", img.ID).Str("owner", s.owner).Msg("History record stored in PostgreSQL")
	return nil
}

// List returns the owner's records newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*GeneratedImage, error) {
	rows, err := s.db.Query(ctx, qListImages, s.owner)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []*GeneratedImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// Get returns one record, or nil, nil when absent.
func (s *PostgresStore) Get(ctx context.Context, id string) (*GeneratedImage, error) {
	img, err := scanImage(s.db.QueryRow(ctx, qSelectImage, s.owner, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return img, err
}

func scanImage(row pgx.Row) (*GeneratedImage, error) {
	var img GeneratedImage
	if err := row.Scan(&img.ID, &img.Text, &img.Prompt, &img.MIMEType, &img.Data, &img.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history row: %w", err)
	}
	return &img, nil
}
