package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/hylla/pipedeck/internal/app"
	"github.com/hylla/pipedeck/internal/domain"
)

// Repository keeps every record in process memory. Nothing survives a restart.
type Repository struct {
	mu sync.RWMutex

	boardOrder []string
	boards     map[string]domain.Board

	contactOrder []string
	contacts     map[string]domain.Contact

	accountOrder []string
	accounts     map[string]domain.Account

	messages map[string][]domain.Message

	events      []domain.ChangeEvent
	nextEventID int64
}

// New constructs an empty repository.
func New() *Repository {
	return &Repository{
		boards:      map[string]domain.Board{},
		contacts:    map[string]domain.Contact{},
		accounts:    map[string]domain.Account{},
		messages:    map[string][]domain.Message{},
		nextEventID: 1,
	}
}

// ListBoards lists boards in insertion order.
func (r *Repository) ListBoards(_ context.Context) ([]domain.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Board, 0, len(r.boardOrder))
	for _, id := range r.boardOrder {
		out = append(out, r.boards[id].Clone())
	}
	return out, nil
}

// GetBoard returns one board.
func (r *Repository) GetBoard(_ context.Context, id string) (domain.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	board, ok := r.boards[strings.TrimSpace(id)]
	if !ok {
		return domain.Board{}, app.ErrNotFound
	}
	return board.Clone(), nil
}

// SaveBoard stores a board, replacing any previous value with the same id.
func (r *Repository) SaveBoard(_ context.Context, board domain.Board) error {
	if strings.TrimSpace(board.ID) == "" {
		return domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[board.ID]; !ok {
		r.boardOrder = append(r.boardOrder, board.ID)
	}
	r.boards[board.ID] = board.Clone()
	return nil
}

// ListContacts lists contacts in insertion order.
func (r *Repository) ListContacts(_ context.Context) ([]domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Contact, 0, len(r.contactOrder))
	for _, id := range r.contactOrder {
		out = append(out, r.contacts[id])
	}
	return out, nil
}

// GetContact returns one contact.
func (r *Repository) GetContact(_ context.Context, id string) (domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contact, ok := r.contacts[strings.TrimSpace(id)]
	if !ok {
		return domain.Contact{}, app.ErrNotFound
	}
	return contact, nil
}

// UpsertContact creates or replaces a contact.
func (r *Repository) UpsertContact(_ context.Context, contact domain.Contact) error {
	if strings.TrimSpace(contact.ID) == "" {
		return domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[contact.ID]; !ok {
		r.contactOrder = append(r.contactOrder, contact.ID)
	}
	r.contacts[contact.ID] = contact
	return nil
}

// ListAccounts lists accounts in insertion order.
func (r *Repository) ListAccounts(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Account, 0, len(r.accountOrder))
	for _, id := range r.accountOrder {
		out = append(out, r.accounts[id])
	}
	return out, nil
}

// GetAccount returns one account.
func (r *Repository) GetAccount(_ context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[strings.TrimSpace(id)]
	if !ok {
		return domain.Account{}, app.ErrNotFound
	}
	return account, nil
}

// UpsertAccount creates or replaces an account.
func (r *Repository) UpsertAccount(_ context.Context, account domain.Account) error {
	if strings.TrimSpace(account.ID) == "" {
		return domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		r.accountOrder = append(r.accountOrder, account.ID)
	}
	r.accounts[account.ID] = account
	return nil
}

// ListMessages lists the thread with one contact in append order.
func (r *Repository) ListMessages(_ context.Context, contactID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.messages[strings.TrimSpace(contactID)]), nil
}

// CreateMessage appends a message to its contact's thread.
func (r *Repository) CreateMessage(_ context.Context, msg domain.Message) error {
	if strings.TrimSpace(msg.ContactID) == "" {
		return domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ContactID] = append(r.messages[msg.ContactID], msg)
	return nil
}

// AppendChangeEvent stores an activity entry and assigns its id.
func (r *Repository) AppendChangeEvent(_ context.Context, event domain.ChangeEvent) (domain.ChangeEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextEventID
	r.nextEventID++
	event.Metadata = maps.Clone(event.Metadata)
	r.events = append(r.events, event)
	return event, nil
}

// ListChangeEvents lists the newest events first. A limit <= 0 returns every event.
func (r *Repository) ListChangeEvents(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.ChangeEvent, 0, n)
	for i := len(r.events) - 1; i >= 0 && len(out) < n; i-- {
		event := r.events[i]
		event.Metadata = maps.Clone(event.Metadata)
		out = append(out, event)
	}
	return out, nil
}

var _ app.Repository = (*Repository)(nil)
