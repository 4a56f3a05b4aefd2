package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/pagination"
	"github.com/timberyard/meetingassist/internal/service"
)

const transcriptColumns = `id, meeting_id, meeting_type_id, text, attendee_ids, participants, knowledge_refs,
	query_embedding, goal, instructions, attached_file_names, source, created_at`

type TranscriptRepository struct {
	db dbtx
}

func NewTranscriptRepository(pool *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: pool}
}

func NewTranscriptRepositoryWithTx(tx pgx.Tx) *TranscriptRepository {
	return &TranscriptRepository{db: tx}
}

func (r *TranscriptRepository) Create(ctx context.Context, t *domain.Transcript) error {
	var queryEmbedding *pgvector.Vector
	if len(t.QueryEmbedding) > 0 {
		v := pgvector.NewVector(t.QueryEmbedding)
		queryEmbedding = &v
	}

	participants := t.Participants
	if participants == nil {
		participants = []domain.Participant{}
	}
	refs := t.KnowledgeRefs
	if refs == nil {
		refs = []domain.KnowledgeRef{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO transcripts (`+transcriptColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.MeetingID, t.MeetingTypeID, t.Text, nonNilStrings(t.AttendeeIDs), participants, refs,
		queryEmbedding, t.Goal, t.Instructions, nonNilStrings(t.AttachedFileNames), t.Source, t.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrTranscriptAlreadyExists
	}
	return err
}

func (r *TranscriptRepository) GetByID(ctx context.Context, id string) (*domain.Transcript, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transcriptColumns+` FROM transcripts WHERE id = $1`, id)
	t, err := scanTranscript(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByIDs returns the transcripts found for ids, oldest first.
func (r *TranscriptRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Transcript, error) {
	if len(ids) == 0 {
		return []*domain.Transcript{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTranscriptRows(rows)
}

// ListAll returns every transcript, oldest first.
func (r *TranscriptRepository) ListAll(ctx context.Context) ([]*domain.Transcript, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTranscriptRows(rows)
}

// ListWithCursor pages through transcripts newest first.
func (r *TranscriptRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.TranscriptPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT t.id, t.meeting_id, t.meeting_type_id, mt.name, t.source, t.created_at
			 FROM transcripts t
			 LEFT JOIN meeting_types mt ON mt.id = t.meeting_type_id
			 WHERE (t.created_at, t.id) < ($1, $2)
			 ORDER BY t.created_at DESC, t.id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT t.id, t.meeting_id, t.meeting_type_id, mt.name, t.source, t.created_at
			 FROM transcripts t
			 LEFT JOIN meeting_types mt ON mt.id = t.meeting_type_id
			 ORDER BY t.created_at DESC, t.id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*service.TranscriptSummary{}
	for rows.Next() {
		var s service.TranscriptSummary
		var typeName *string
		if err := rows.Scan(&s.ID, &s.MeetingID, &s.MeetingTypeID, &typeName, &s.Source, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.MeetingTypeName = derefString(typeName)
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := pagination.Paginate(items, limit, func(s *service.TranscriptSummary) (string, time.Time) {
		return s.ID, s.CreatedAt
	})
	return &service.TranscriptPageResult{
		Items:      page.Items,
		NextCursor: page.Cursor,
		HasMore:    page.HasMore,
	}, nil
}

func scanTranscript(row pgx.Row) (*domain.Transcript, error) {
	var t domain.Transcript
	var queryEmbedding *pgvector.Vector
	if err := row.Scan(
		&t.ID, &t.MeetingID, &t.MeetingTypeID, &t.Text, &t.AttendeeIDs, &t.Participants, &t.KnowledgeRefs,
		&queryEmbedding, &t.Goal, &t.Instructions, &t.AttachedFileNames, &t.Source, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	if queryEmbedding != nil {
		t.QueryEmbedding = queryEmbedding.Slice()
	}
	return &t, nil
}

func scanTranscriptRows(rows pgx.Rows) ([]*domain.Transcript, error) {
	results := []*domain.Transcript{}
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}
