package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

// ChunkRepository defines the interface for chunk persistence and
// nearest-neighbor search.
type ChunkRepository interface {
	// ReplaceStore atomically replaces the named store's contents: existing
	// rows for the store are deleted and the new batch inserted in one
	// transaction. Re-indexing is destructive by contract.
	ReplaceStore(ctx context.Context, store entity.StoreName, chunks []entity.Chunk, embeddings [][]float32) error
	// SearchNearest returns up to k chunks from the named store ordered by
	// ascending L2 distance to the query embedding.
	SearchNearest(ctx context.Context, store entity.StoreName, embedding []float32, k int) ([]entity.ChunkMatch, error)
	CountByStore(ctx context.Context, store entity.StoreName) (int, error)
}

var _ ChunkRepository = &ChunkPostgres{}

// ChunkPostgres implements ChunkRepository on PostgreSQL with the pgvector
// extension.
type ChunkPostgres struct {
	db *pgxpool.Pool
}

func NewChunkPostgres(db *pgxpool.Pool) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

func (r *ChunkPostgres) ReplaceStore(ctx context.Context, store entity.StoreName, chunks []entity.Chunk, embeddings [][]float32) (err error) {
	if len(chunks) == 0 {
		return entity.ErrEmptyChunkSet
	}
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings))
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM chunks WHERE store_name = $1`, string(store)); err != nil {
		return fmt.Errorf("clear store %s: %w", store, err)
	}

	const insert = `
		INSERT INTO chunks (
			id, store_name, embedding, text, source, file_name, page,
			start_index, char_count, word_count, quality_score,
			document_type, cleaned, quality_improved, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(insert,
			c.ID, string(store), pgvector.NewVector(embeddings[i]),
			c.Text, c.Source, c.FileName, c.Page,
			c.StartIndex, c.CharCount, c.WordCount, c.QualityScore,
			string(c.DocumentType), c.Cleaned, c.Improved, c.ProcessedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range chunks {
		if _, execErr := results.Exec(); execErr != nil {
			_ = results.Close()
			err = fmt.Errorf("insert chunk %s: %w", chunks[i].ID, execErr)
			return err
		}
	}
	if err = results.Close(); err != nil {
		return fmt.Errorf("close insert batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace transaction: %w", err)
	}
	return nil
}

func (r *ChunkPostgres) SearchNearest(ctx context.Context, store entity.StoreName, embedding []float32, k int) ([]entity.ChunkMatch, error) {
	const query = `
		SELECT id, text, source, file_name, page, start_index, char_count,
		       word_count, quality_score, document_type, cleaned,
		       quality_improved, processed_at,
		       embedding <-> $2 AS distance
		FROM chunks
		WHERE store_name = $1
		ORDER BY embedding <-> $2
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, string(store), pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("search store %s: %w", store, err)
	}
	defer rows.Close()

	var matches []entity.ChunkMatch
	for rows.Next() {
		var (
			m       entity.ChunkMatch
			docType string
		)
		if err := rows.Scan(
			&m.Chunk.ID, &m.Chunk.Text, &m.Chunk.Source, &m.Chunk.FileName,
			&m.Chunk.Page, &m.Chunk.StartIndex, &m.Chunk.CharCount,
			&m.Chunk.WordCount, &m.Chunk.QualityScore, &docType,
			&m.Chunk.Cleaned, &m.Chunk.Improved, &m.Chunk.ProcessedAt,
			&m.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan chunk match: %w", err)
		}
		m.Chunk.DocumentType = entity.DocumentType(docType)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk matches: %w", err)
	}
	return matches, nil
}

func (r *ChunkPostgres) CountByStore(ctx context.Context, store entity.StoreName) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE store_name = $1`, string(store)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count store %s: %w", store, err)
	}
	return count, nil
}
