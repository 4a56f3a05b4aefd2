package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/timberyard/meetingassist/internal/domain"
)

func TestCatalogService_Options_SortedByName(t *testing.T) {
	types := new(MockMeetingTypeRepository)
	personas := new(MockPersonaRepository)
	svc := NewCatalogService(types, personas)

	types.On("List", mock.Anything).Return([]*domain.MeetingType{
		{ID: "retro", Name: "Retrospective"},
		{ID: "plan", Name: "Planning"},
	}, nil)
	personas.On("List", mock.Anything).Return([]*domain.Persona{
		{ID: "qa", Name: "Quinn", Role: "QA"},
		{ID: "po", Name: "Ana", Role: "Product Owner"},
	}, nil)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []MeetingTypeOption{{ID: "plan", Name: "Planning"}, {ID: "retro", Name: "Retrospective"}}, opts.MeetingTypes)
	assert.Equal(t, []PersonaOption{{ID: "po", Name: "Ana", Role: "Product Owner"}, {ID: "qa", Name: "Quinn", Role: "QA"}}, opts.Personas)
}

func TestCatalogService_PutValidates(t *testing.T) {
	types := new(MockMeetingTypeRepository)
	personas := new(MockPersonaRepository)
	svc := NewCatalogService(types, personas)
	ctx := context.Background()

	err := svc.PutMeetingType(ctx, &domain.MeetingType{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	err = svc.PutPersona(ctx, &domain.Persona{ID: "p", Name: "P"})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	mt := &domain.MeetingType{ID: "x", Name: "X"}
	types.On("Upsert", mock.Anything, mt).Return(nil)
	require.NoError(t, svc.PutMeetingType(ctx, mt))
}

const catalogYAML = `
meetingTypes:
  - id: refinement
    name: Backlog Refinement
    defaultGoal: Agree on scope
    generationTemplate: |
      1) Transcript
personas:
  - id: po
    name: Ana
    role: Product Owner
    systemInstruction: Prioritize value.
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	require.Len(t, c.MeetingTypes, 1)
	assert.Equal(t, "Backlog Refinement", c.MeetingTypes[0].Name)
	assert.Equal(t, "1) Transcript\n", c.MeetingTypes[0].GenerationTemplate)
	require.Len(t, c.Personas, 1)
	assert.Equal(t, "Prioritize value.", c.Personas[0].SystemInstruction)

	_, err = ParseCatalog(strings.NewReader("meetingTypes:\n  - id: a\n    colour: red\n"))
	assert.ErrorIs(t, err, domain.ErrParse)

	empty, err := ParseCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.MeetingTypes)
}

func TestCatalogService_Seed(t *testing.T) {
	types := new(MockMeetingTypeRepository)
	personas := new(MockPersonaRepository)
	svc := NewCatalogService(types, personas)

	c, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	types.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	personas.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Seed(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{MeetingTypes: 1, Personas: 1}, res)
}

func TestCatalogService_Seed_ValidatesEverythingFirst(t *testing.T) {
	types := new(MockMeetingTypeRepository)
	personas := new(MockPersonaRepository)
	svc := NewCatalogService(types, personas)

	_, err := svc.Seed(context.Background(), &Catalog{
		MeetingTypes: []domain.MeetingType{{ID: "ok", Name: "Ok"}},
		Personas:     []domain.Persona{{ID: "p"}},
	})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	assert.Contains(t, err.Error(), "personas[0]")
	types.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCatalogService_Seed_UsesTransaction(t *testing.T) {
	types := new(MockMeetingTypeRepository)
	personas := new(MockPersonaRepository)
	txTypes := new(MockMeetingTypeRepository)
	txPersonas := new(MockPersonaRepository)
	runner := &testTxRunner{repos: &testTxRepos{meetingTypes: txTypes, personas: txPersonas}}
	svc := NewCatalogService(types, personas).WithTx(runner)

	c, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	txTypes.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	txPersonas.On("Upsert", mock.Anything, mock.Anything).Return(assert.AnError)

	res, err := svc.Seed(context.Background(), c)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, &SeedResult{}, res)
	assert.True(t, runner.called)
	types.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	personas.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
