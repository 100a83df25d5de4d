package store

import (
	"context"
	"fmt"
	"log/slog"

	"contractrag/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// PostgresStore is a Retriever backed by a pgvector table. Each collection
// is a set of rows sharing one collection uuid.
type PostgresStore struct {
	pool      *pgxpool.Pool
	embedder  model.Embedder
	dimension int
	logger    *slog.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, embedder model.Embedder, dimension int) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
			return err
		}
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:      pool,
		embedder:  embedder,
		dimension: dimension,
		logger:    slog.Default().With("component", "pgvector"),
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS clauses (
		collection UUID NOT NULL,
		doc_id TEXT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		PRIMARY KEY (collection, doc_id)
	);

	CREATE INDEX IF NOT EXISTS idx_clauses_collection ON clauses(collection);
	`, p.dimension)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Index(ctx context.Context, collection string, docs []Document) error {
	id, err := uuid.Parse(collection)
	if err != nil {
		return fmt.Errorf("invalid collection id: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range docs {
		vec, err := p.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", d.ID, err)
		}
		if len(vec) != p.dimension {
			return fmt.Errorf("embedding dimension %d does not match column dimension %d", len(vec), p.dimension)
		}
		batch.Queue(
			`INSERT INTO clauses (collection, doc_id, content, embedding) VALUES ($1, $2, $3, $4)`,
			id, d.ID, d.Text, pgvector.NewVector(vec),
		)
	}

	// all rows of a collection become visible together
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("error inserting clauses: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *PostgresStore) Search(ctx context.Context, collection, query string, k int) ([]Hit, error) {
	id, err := uuid.Parse(collection)
	if err != nil {
		return nil, fmt.Errorf("invalid collection id: %w", err)
	}

	qvec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(qvec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	rows, err := p.pool.Query(ctx, `
		SELECT doc_id, 1 - (embedding <=> $2) AS score
		FROM clauses
		WHERE collection = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`, id, pgvector.NewVector(qvec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Score); err != nil {
			return nil, err
		}
		p.logger.Debug("clause found", "collection", collection, "clause", h.ID, "score", h.Score)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (p *PostgresStore) Drop(ctx context.Context, collection string) error {
	id, err := uuid.Parse(collection)
	if err != nil {
		return fmt.Errorf("invalid collection id: %w", err)
	}
	_, err = p.pool.Exec(ctx, "DELETE FROM clauses WHERE collection = $1", id)
	return err
}

// Close closes the connection pool
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.logger.Info("postgres connection pool is closed")
	}
	return nil
}
