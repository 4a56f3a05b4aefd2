package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/timberyard/meetingassist/internal/domain"
)

// CatalogService manages meeting types and personas
type CatalogService struct {
	meetingTypes MeetingTypeRepositoryInterface
	personas     PersonaRepositoryInterface
	txRunner     TxRunner
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(meetingTypes MeetingTypeRepositoryInterface, personas PersonaRepositoryInterface) *CatalogService {
	return &CatalogService{meetingTypes: meetingTypes, personas: personas}
}

// WithTx makes Seed store the whole catalog in one transaction.
func (s *CatalogService) WithTx(runner TxRunner) *CatalogService {
	s.txRunner = runner
	return s
}

// MeetingTypeOption is a selectable meeting type
type MeetingTypeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PersonaOption is a selectable persona
type PersonaOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Options lists what a user can pick when starting a meeting
type Options struct {
	MeetingTypes []MeetingTypeOption `json:"meetingTypes"`
	Personas     []PersonaOption     `json:"personas"`
}

// Options returns meeting types and personas ordered by name
func (s *CatalogService) Options(ctx context.Context) (*Options, error) {
	types, err := s.meetingTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting types: %w", err)
	}
	personas, err := s.personas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}

	out := &Options{
		MeetingTypes: make([]MeetingTypeOption, 0, len(types)),
		Personas:     make([]PersonaOption, 0, len(personas)),
	}
	for _, t := range types {
		out.MeetingTypes = append(out.MeetingTypes, MeetingTypeOption{ID: t.ID, Name: t.Name})
	}
	for _, p := range personas {
		out.Personas = append(out.Personas, PersonaOption{ID: p.ID, Name: p.Name, Role: p.Role})
	}
	sort.SliceStable(out.MeetingTypes, func(i, j int) bool { return out.MeetingTypes[i].Name < out.MeetingTypes[j].Name })
	sort.SliceStable(out.Personas, func(i, j int) bool { return out.Personas[i].Name < out.Personas[j].Name })
	return out, nil
}

func (s *CatalogService) GetMeetingType(ctx context.Context, id string) (*domain.MeetingType, error) {
	return s.meetingTypes.GetByID(ctx, id)
}

func (s *CatalogService) GetPersona(ctx context.Context, id string) (*domain.Persona, error) {
	return s.personas.GetByID(ctx, id)
}

// PutMeetingType validates and stores a meeting type
func (s *CatalogService) PutMeetingType(ctx context.Context, m *domain.MeetingType) error {
	if err := domain.ValidateMeetingType(m); err != nil {
		return domain.Wrap(domain.ErrMissingRequiredField, err)
	}
	return s.meetingTypes.Upsert(ctx, m)
}

// PutPersona validates and stores a persona
func (s *CatalogService) PutPersona(ctx context.Context, p *domain.Persona) error {
	if err := domain.ValidatePersona(p); err != nil {
		return domain.Wrap(domain.ErrMissingRequiredField, err)
	}
	return s.personas.Upsert(ctx, p)
}

// Catalog is the seed file format
type Catalog struct {
	MeetingTypes []domain.MeetingType `yaml:"meetingTypes"`
	Personas     []domain.Persona     `yaml:"personas"`
}

// SeedResult counts what Seed stored
type SeedResult struct {
	MeetingTypes int
	Personas     int
}

// ParseCatalog decodes a YAML catalog
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, domain.Wrap(domain.ErrParse, fmt.Errorf("invalid catalog: %w", err))
	}
	return &c, nil
}

// Seed validates every entry first, then upserts them all.
func (s *CatalogService) Seed(ctx context.Context, c *Catalog) (*SeedResult, error) {
	var problems []string
	for i := range c.MeetingTypes {
		if err := domain.ValidateMeetingType(&c.MeetingTypes[i]); err != nil {
			problems = append(problems, fmt.Sprintf("meetingTypes[%d]: %v", i, err))
		}
	}
	for i := range c.Personas {
		if err := domain.ValidatePersona(&c.Personas[i]); err != nil {
			problems = append(problems, fmt.Sprintf("personas[%d]: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New(strings.Join(problems, "; ")))
	}

	if s.txRunner == nil {
		return seedCatalog(ctx, s.meetingTypes, s.personas, c)
	}

	var res *SeedResult
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		var err error
		res, err = seedCatalog(ctx, repos.MeetingTypes(), repos.Personas(), c)
		return err
	})
	if err != nil {
		return &SeedResult{}, err
	}
	return res, nil
}

func seedCatalog(ctx context.Context, meetingTypes MeetingTypeRepositoryInterface, personas PersonaRepositoryInterface, c *Catalog) (*SeedResult, error) {
	res := &SeedResult{}
	for i := range c.MeetingTypes {
		if err := meetingTypes.Upsert(ctx, &c.MeetingTypes[i]); err != nil {
			return res, fmt.Errorf("failed to store meeting type %s: %w", c.MeetingTypes[i].ID, err)
		}
		res.MeetingTypes++
	}
	for i := range c.Personas {
		if err := personas.Upsert(ctx, &c.Personas[i]); err != nil {
			return res, fmt.Errorf("failed to store persona %s: %w", c.Personas[i].ID, err)
		}
		res.Personas++
	}
	return res, nil
}
