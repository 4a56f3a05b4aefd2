//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberyard/meetingassist/internal/domain"
)

func TestMeetingTypeRepository_UpsertListGet(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewMeetingTypeRepository(pool)

	require.NoError(t, repo.Upsert(ctx, &domain.MeetingType{ID: "retro", Name: "Retrospective"}))
	require.NoError(t, repo.Upsert(ctx, &domain.MeetingType{ID: "refinement", Name: "Backlog Refinement", DefaultGoal: "Refine"}))
	require.NoError(t, repo.Upsert(ctx, &domain.MeetingType{ID: "refinement", Name: "Backlog Refinement", DefaultGoal: "Refine stories"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "refinement", list[0].ID)

	got, err := repo.GetByID(ctx, "refinement")
	require.NoError(t, err)
	assert.Equal(t, "Refine stories", got.DefaultGoal)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrMeetingTypeNotFound)
}

func TestPersonaRepository_GetByIDsKeepsRequestOrder(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewPersonaRepository(pool)

	require.NoError(t, repo.Upsert(ctx, &domain.Persona{ID: "p1", Name: "Ana", Role: "QA", SystemInstruction: "Focus on edge cases"}))
	require.NoError(t, repo.Upsert(ctx, &domain.Persona{ID: "p2", Name: "Bo", Role: "Dev"}))

	got, err := repo.GetByIDs(ctx, []string{"p2", "ghost", "p1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)

	none, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
}
