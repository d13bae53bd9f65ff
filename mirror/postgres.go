// mirror/postgres.go
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and checks that the server answers.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Postgres keeps one JSONB document per account in account_documents.
// Concurrent writers to the same field overwrite each other.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Pull(ctx context.Context, account string) (map[string]json.RawMessage, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM account_documents WHERE account_id = $1`, account,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pull %s: %w", account, err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", account, err)
	}
	return doc, nil
}

func (p *Postgres) Push(ctx context.Context, account, key string, value json.RawMessage) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO account_documents (account_id, data, updated_at)
		VALUES ($1, jsonb_build_object($2::text, $3::jsonb), now())
		ON CONFLICT (account_id) DO UPDATE
		SET data = account_documents.data || EXCLUDED.data, updated_at = now()`,
		account, key, string(value))
	if err != nil {
		return fmt.Errorf("push %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context, account, key string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE account_documents SET data = data - $2::text, updated_at = now() WHERE account_id = $1`,
		account, key)
	if err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}
