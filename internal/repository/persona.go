package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberyard/meetingassist/internal/domain"
)

type PersonaRepository struct {
	db dbtx
}

func NewPersonaRepository(pool *pgxpool.Pool) *PersonaRepository {
	return &PersonaRepository{db: pool}
}

func (r *PersonaRepository) GetByID(ctx context.Context, id string) (*domain.Persona, error) {
	var p domain.Persona
	err := r.db.QueryRow(ctx,
		`SELECT id, name, role, system_instruction FROM personas WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Role, &p.SystemInstruction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPersonaNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the personas found for ids in the order the ids were given.
// Unknown ids are skipped.
func (r *PersonaRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Persona, error) {
	if len(ids) == 0 {
		return []*domain.Persona{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, p.role, p.system_instruction
		 FROM unnest($1::text[]) WITH ORDINALITY AS req(id, ord)
		 JOIN personas p ON p.id = req.id
		 ORDER BY req.ord`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPersonaRows(rows)
}

func (r *PersonaRepository) List(ctx context.Context) ([]*domain.Persona, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, role, system_instruction FROM personas ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPersonaRows(rows)
}

func (r *PersonaRepository) Upsert(ctx context.Context, p *domain.Persona) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO personas (id, name, role, system_instruction)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			system_instruction = EXCLUDED.system_instruction,
			updated_at = now()`,
		p.ID, p.Name, p.Role, p.SystemInstruction,
	)
	return err
}

func scanPersonaRows(rows pgx.Rows) ([]*domain.Persona, error) {
	results := []*domain.Persona{}
	for rows.Next() {
		var p domain.Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.SystemInstruction); err != nil {
			return nil, err
		}
		results = append(results, &p)
	}
	return results, rows.Err()
}
