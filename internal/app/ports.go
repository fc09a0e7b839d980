package app

import (
	"context"

	"github.com/hylla/pipedeck/internal/domain"
)

// BoardRepository stores whole board values. SaveBoard replaces the stored value atomically.
type BoardRepository interface {
	ListBoards(context.Context) ([]domain.Board, error)
	GetBoard(context.Context, string) (domain.Board, error)
	SaveBoard(context.Context, domain.Board) error
}

// Repository represents repository data used by this package.
type Repository interface {
	BoardRepository

	ListContacts(context.Context) ([]domain.Contact, error)
	GetContact(context.Context, string) (domain.Contact, error)
	UpsertContact(context.Context, domain.Contact) error

	ListAccounts(context.Context) ([]domain.Account, error)
	GetAccount(context.Context, string) (domain.Account, error)
	UpsertAccount(context.Context, domain.Account) error

	ListMessages(context.Context, string) ([]domain.Message, error)
	CreateMessage(context.Context, domain.Message) error

	AppendChangeEvent(context.Context, domain.ChangeEvent) (domain.ChangeEvent, error)
	ListChangeEvents(context.Context, int) ([]domain.ChangeEvent, error)
}

// Logger receives diagnostic events from the service.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// nopLogger discards every event.
type nopLogger struct{}

// Debug discards one event.
func (nopLogger) Debug(string, ...any) {}
