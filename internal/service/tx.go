package service

import "context"

// TxRepositories hands out repositories bound to one open transaction.
type TxRepositories interface {
	MeetingTypes() MeetingTypeRepositoryInterface
	Personas() PersonaRepositoryInterface
	Knowledge() KnowledgeRepositoryInterface
	Transcripts() TranscriptRepositoryInterface
}

// TxRunner runs fn in a transaction that commits when fn returns nil and
// rolls back otherwise.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
