package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberyard/meetingassist/internal/domain"
)

type MeetingTypeRepository struct {
	db dbtx
}

func NewMeetingTypeRepository(pool *pgxpool.Pool) *MeetingTypeRepository {
	return &MeetingTypeRepository{db: pool}
}

func (r *MeetingTypeRepository) GetByID(ctx context.Context, id string) (*domain.MeetingType, error) {
	var m domain.MeetingType
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, default_goal, default_instructions, generation_template
		 FROM meeting_types WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name, &m.Description, &m.DefaultGoal, &m.DefaultInstructions, &m.GenerationTemplate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMeetingTypeNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MeetingTypeRepository) List(ctx context.Context) ([]*domain.MeetingType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, default_goal, default_instructions, generation_template
		 FROM meeting_types ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.MeetingType
	for rows.Next() {
		var m domain.MeetingType
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.DefaultGoal, &m.DefaultInstructions, &m.GenerationTemplate); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}
	return results, rows.Err()
}

func (r *MeetingTypeRepository) Upsert(ctx context.Context, m *domain.MeetingType) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO meeting_types (id, name, description, default_goal, default_instructions, generation_template)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			default_goal = EXCLUDED.default_goal,
			default_instructions = EXCLUDED.default_instructions,
			generation_template = EXCLUDED.generation_template,
			updated_at = now()`,
		m.ID, m.Name, m.Description, m.DefaultGoal, m.DefaultInstructions, m.GenerationTemplate,
	)
	return err
}
