package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/timberyard/meetingassist/internal/domain"
)

const knowledgeColumns = `id, kind, title, text, source_id, embedding, created_at, updated_at`

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

// Upsert inserts k or overwrites the stored item with the same id.
func (r *KnowledgeRepository) Upsert(ctx context.Context, k *domain.KnowledgeItem) error {
	now := time.Now().UTC()
	createdAt := k.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_items (`+knowledgeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			title = EXCLUDED.title,
			text = EXCLUDED.text,
			source_id = EXCLUDED.source_id,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		k.ID, k.Kind, k.Title, k.Text, nullableString(k.SourceID), nullableVector(k.Embedding), createdAt, now,
	)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+knowledgeColumns+` FROM knowledge_items WHERE id = $1`, id)
	k, err := scanKnowledge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeNotFound
		}
		return nil, err
	}
	return k, nil
}

// ReplaceChunks deletes existing chunks for a source item and inserts new ones.
func (r *KnowledgeRepository) ReplaceChunks(ctx context.Context, sourceID string, chunks []domain.KnowledgeItem) error {
	_, err := r.db.Exec(ctx, `DELETE FROM knowledge_items WHERE source_id = $1`, sourceID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO knowledge_items (`+knowledgeColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Kind, c.Title, c.Text, sourceID, nullableVector(c.Embedding), createdAt, now,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ListEmbedded returns every item carrying an embedding, oldest first.
func (r *KnowledgeRepository) ListEmbedded(ctx context.Context) ([]domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items
		 WHERE embedding IS NOT NULL
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows)
}

// ListPending returns top-level items that have not been indexed yet.
func (r *KnowledgeRepository) ListPending(ctx context.Context, limit int) ([]domain.KnowledgeItem, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items k
		 WHERE k.embedding IS NULL AND k.source_id IS NULL
		   AND NOT EXISTS (SELECT 1 FROM knowledge_items c WHERE c.source_id = k.id)
		 ORDER BY k.created_at ASC, k.id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows)
}

// SearchByEmbedding returns the k nearest items by cosine distance. Items of
// another dimensionality are never compared.
func (r *KnowledgeRepository) SearchByEmbedding(ctx context.Context, query []float32, k int) ([]domain.ScoredItem, error) {
	if k <= 0 {
		return []domain.ScoredItem{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+`, 1 - (embedding <=> $1) AS score
		 FROM knowledge_items
		 WHERE embedding IS NOT NULL AND vector_dims(embedding) = $2
		 ORDER BY embedding <=> $1 ASC, created_at ASC, id ASC
		 LIMIT $3`,
		pgvector.NewVector(query), len(query), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.ScoredItem{}
	for rows.Next() {
		var s domain.ScoredItem
		var sourceID *string
		var embedding *pgvector.Vector
		if err := rows.Scan(&s.Item.ID, &s.Item.Kind, &s.Item.Title, &s.Item.Text, &sourceID, &embedding,
			&s.Item.CreatedAt, &s.Item.UpdatedAt, &s.Score); err != nil {
			return nil, err
		}
		s.Item.SourceID = derefString(sourceID)
		if embedding != nil {
			s.Item.Embedding = embedding.Slice()
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// MismatchedDimensionIDs returns the ids of embedded items whose vector
// length differs from dims, up to limit.
func (r *KnowledgeRepository) MismatchedDimensionIDs(ctx context.Context, dims, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM knowledge_items
		 WHERE embedding IS NOT NULL AND vector_dims(embedding) <> $1
		 ORDER BY id ASC
		 LIMIT $2`,
		dims, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableVector(v []float32) *pgvector.Vector {
	if len(v) == 0 {
		return nil
	}
	vec := pgvector.NewVector(v)
	return &vec
}

func scanKnowledge(row pgx.Row) (*domain.KnowledgeItem, error) {
	var k domain.KnowledgeItem
	var sourceID *string
	var embedding *pgvector.Vector
	if err := row.Scan(&k.ID, &k.Kind, &k.Title, &k.Text, &sourceID, &embedding, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	k.SourceID = derefString(sourceID)
	if embedding != nil {
		k.Embedding = embedding.Slice()
	}
	return &k, nil
}

func scanKnowledgeRows(rows pgx.Rows) ([]domain.KnowledgeItem, error) {
	results := []domain.KnowledgeItem{}
	for rows.Next() {
		k, err := scanKnowledge(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *k)
	}
	return results, rows.Err()
}
