package app

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/hylla/pipedeck/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "pipedeck.snapshot.v1"

// Snapshot is a portable copy of every board and record.
type Snapshot struct {
	Version    string             `json:"version" yaml:"version"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Boards     []SnapshotBoard    `json:"boards" yaml:"boards"`
	Contacts   []SnapshotContact  `json:"contacts" yaml:"contacts"`
	Accounts   []SnapshotAccount  `json:"accounts" yaml:"accounts"`
	Messages   []SnapshotMessage  `json:"messages,omitempty" yaml:"messages,omitempty"`
	Activity   []SnapshotActivity `json:"activity,omitempty" yaml:"activity,omitempty"`
}

// SnapshotBoard represents snapshot board data used by this package.
type SnapshotBoard struct {
	ID      string           `json:"id" yaml:"id"`
	Title   string           `json:"title" yaml:"title"`
	Columns []SnapshotColumn `json:"columns" yaml:"columns"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID    string         `json:"id" yaml:"id"`
	Title string         `json:"title" yaml:"title"`
	Color string         `json:"color,omitempty" yaml:"color,omitempty"`
	Items []SnapshotItem `json:"items" yaml:"items"`
}

// SnapshotItem represents snapshot item data used by this package.
type SnapshotItem struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Value       string          `json:"value,omitempty" yaml:"value,omitempty"`
	Assignee    string          `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Priority    domain.Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
	Tags        []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// SnapshotContact represents snapshot contact data used by this package.
type SnapshotContact struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Email       string        `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	Company     string        `json:"company,omitempty" yaml:"company,omitempty"`
	Position    string        `json:"position,omitempty" yaml:"position,omitempty"`
	Status      domain.Status `json:"status,omitempty" yaml:"status,omitempty"`
	Location    string        `json:"location,omitempty" yaml:"location,omitempty"`
	LastContact string        `json:"last_contact,omitempty" yaml:"last_contact,omitempty"`
	Notes       string        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// SnapshotAccount represents snapshot account data used by this package.
type SnapshotAccount struct {
	ID            string             `json:"id" yaml:"id"`
	Name          string             `json:"name" yaml:"name"`
	Industry      string             `json:"industry,omitempty" yaml:"industry,omitempty"`
	Revenue       string             `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	Employees     string             `json:"employees,omitempty" yaml:"employees,omitempty"`
	Status        domain.Status      `json:"status,omitempty" yaml:"status,omitempty"`
	Tier          domain.AccountTier `json:"tier" yaml:"tier"`
	Contacts      int                `json:"contacts,omitempty" yaml:"contacts,omitempty"`
	Opportunities int                `json:"opportunities,omitempty" yaml:"opportunities,omitempty"`
	LastActivity  string             `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
	Location      string             `json:"location,omitempty" yaml:"location,omitempty"`
	Website       string             `json:"website,omitempty" yaml:"website,omitempty"`
}

// SnapshotMessage represents snapshot message data used by this package.
type SnapshotMessage struct {
	ID        string                  `json:"id" yaml:"id"`
	ContactID string                  `json:"contact_id" yaml:"contact_id"`
	Sender    string                  `json:"sender,omitempty" yaml:"sender,omitempty"`
	Body      string                  `json:"body" yaml:"body"`
	Direction domain.MessageDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
	SentAt    time.Time               `json:"sent_at" yaml:"sent_at"`
}

// SnapshotActivity represents snapshot activity data used by this package.
type SnapshotActivity struct {
	Subject     string                 `json:"subject" yaml:"subject"`
	SubjectID   string                 `json:"subject_id,omitempty" yaml:"subject_id,omitempty"`
	Operation   domain.ChangeOperation `json:"operation" yaml:"operation"`
	Title       string                 `json:"title" yaml:"title"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata    map[string]string      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at" yaml:"occurred_at"`
}

// ExportSnapshot copies every board and record into a snapshot.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := s.repo.ListChangeEvents(ctx, 0)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Boards:     make([]SnapshotBoard, 0, len(boards)),
		Contacts:   make([]SnapshotContact, 0, len(contacts)),
		Accounts:   make([]SnapshotAccount, 0, len(accounts)),
		Messages:   make([]SnapshotMessage, 0),
		Activity:   make([]SnapshotActivity, 0, len(events)),
	}
	for _, board := range boards {
		snap.Boards = append(snap.Boards, snapshotBoardFromDomain(board))
	}
	for _, contact := range contacts {
		snap.Contacts = append(snap.Contacts, snapshotContactFromDomain(contact))
		messages, listErr := s.repo.ListMessages(ctx, contact.ID)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, msg := range messages {
			snap.Messages = append(snap.Messages, snapshotMessageFromDomain(msg))
		}
	}
	for _, account := range accounts {
		snap.Accounts = append(snap.Accounts, snapshotAccountFromDomain(account))
	}
	// Events are listed newest first; snapshots keep them in occurrence order.
	for i := len(events) - 1; i >= 0; i-- {
		snap.Activity = append(snap.Activity, snapshotActivityFromDomain(events[i]))
	}
	return snap, nil
}

// ImportSnapshot validates a snapshot and loads it into the repository.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	boards, contacts, accounts, messages, err := snap.toDomain()
	if err != nil {
		return err
	}
	for _, board := range boards {
		if err := s.repo.SaveBoard(ctx, board); err != nil {
			return err
		}
	}
	for _, contact := range contacts {
		if err := s.repo.UpsertContact(ctx, contact); err != nil {
			return err
		}
	}
	for _, account := range accounts {
		if err := s.repo.UpsertAccount(ctx, account); err != nil {
			return err
		}
	}
	for _, msg := range messages {
		if err := s.repo.CreateMessage(ctx, msg); err != nil {
			return err
		}
	}
	for _, activity := range snap.Activity {
		if _, err := s.repo.AppendChangeEvent(ctx, activity.toDomain()); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks structural snapshot rules that the domain constructors do not cover.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}

	boardIDs := map[string]struct{}{}
	for i, b := range s.Boards {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			return fmt.Errorf("%w: boards[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, exists := boardIDs[id]; exists {
			return fmt.Errorf("%w: duplicate board id %q", ErrInvalidSnapshot, id)
		}
		boardIDs[id] = struct{}{}
	}

	contactIDs := map[string]struct{}{}
	for i, c := range s.Contacts {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return fmt.Errorf("%w: contacts[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, exists := contactIDs[id]; exists {
			return fmt.Errorf("%w: duplicate contact id %q", ErrInvalidSnapshot, id)
		}
		contactIDs[id] = struct{}{}
	}

	accountIDs := map[string]struct{}{}
	for i, a := range s.Accounts {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return fmt.Errorf("%w: accounts[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, exists := accountIDs[id]; exists {
			return fmt.Errorf("%w: duplicate account id %q", ErrInvalidSnapshot, id)
		}
		accountIDs[id] = struct{}{}
	}

	for i, m := range s.Messages {
		if _, ok := contactIDs[strings.TrimSpace(m.ContactID)]; !ok {
			return fmt.Errorf("%w: messages[%d] references unknown contact_id %q", ErrInvalidSnapshot, i, m.ContactID)
		}
		if m.SentAt.IsZero() {
			return fmt.Errorf("%w: messages[%d].sent_at is required", ErrInvalidSnapshot, i)
		}
	}
	for i, a := range s.Activity {
		if strings.TrimSpace(a.Title) == "" {
			return fmt.Errorf("%w: activity[%d].title is required", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

// MarshalJSONIndent renders the snapshot as indented JSON.
func (s Snapshot) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// toDomain builds validated domain values from the snapshot.
func (s Snapshot) toDomain() ([]domain.Board, []domain.Contact, []domain.Account, []domain.Message, error) {
	boards := make([]domain.Board, 0, len(s.Boards))
	for i, b := range s.Boards {
		board, err := b.toDomain()
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: boards[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		boards = append(boards, board)
	}
	contacts := make([]domain.Contact, 0, len(s.Contacts))
	for i, c := range s.Contacts {
		contact, err := c.toDomain()
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: contacts[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		contacts = append(contacts, contact)
	}
	accounts := make([]domain.Account, 0, len(s.Accounts))
	for i, a := range s.Accounts {
		account, err := a.toDomain()
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: accounts[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		accounts = append(accounts, account)
	}
	messages := make([]domain.Message, 0, len(s.Messages))
	for i, m := range s.Messages {
		msg, err := m.toDomain()
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: messages[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		messages = append(messages, msg)
	}
	return boards, contacts, accounts, messages, nil
}

func snapshotBoardFromDomain(b domain.Board) SnapshotBoard {
	out := SnapshotBoard{ID: b.ID, Title: b.Title, Columns: make([]SnapshotColumn, 0, len(b.Columns))}
	for _, column := range b.Columns {
		sc := SnapshotColumn{ID: column.ID, Title: column.Title, Color: column.Color, Items: make([]SnapshotItem, 0, len(column.Items))}
		for _, item := range column.Items {
			sc.Items = append(sc.Items, SnapshotItem{
				ID:          item.ID,
				Title:       item.Title,
				Description: item.Description,
				Value:       item.Value,
				Assignee:    item.Assignee,
				Priority:    item.Priority,
				Tags:        append([]string(nil), item.Tags...),
			})
		}
		out.Columns = append(out.Columns, sc)
	}
	return out
}

func snapshotContactFromDomain(c domain.Contact) SnapshotContact {
	return SnapshotContact{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		Position:    c.Position,
		Status:      c.Status,
		Location:    c.Location,
		LastContact: c.LastContact,
		Notes:       c.Notes,
	}
}

func snapshotAccountFromDomain(a domain.Account) SnapshotAccount {
	return SnapshotAccount{
		ID:            a.ID,
		Name:          a.Name,
		Industry:      a.Industry,
		Revenue:       a.Revenue,
		Employees:     a.Employees,
		Status:        a.Status,
		Tier:          a.Tier,
		Contacts:      a.Contacts,
		Opportunities: a.Opportunities,
		LastActivity:  a.LastActivity,
		Location:      a.Location,
		Website:       a.Website,
	}
}

func snapshotMessageFromDomain(m domain.Message) SnapshotMessage {
	return SnapshotMessage{
		ID:        m.ID,
		ContactID: m.ContactID,
		Sender:    m.Sender,
		Body:      m.Body,
		Direction: m.Direction,
		SentAt:    m.SentAt.UTC(),
	}
}

func snapshotActivityFromDomain(e domain.ChangeEvent) SnapshotActivity {
	return SnapshotActivity{
		Subject:     e.Subject,
		SubjectID:   e.SubjectID,
		Operation:   e.Operation,
		Title:       e.Title,
		Description: e.Description,
		Metadata:    maps.Clone(e.Metadata),
		OccurredAt:  e.OccurredAt.UTC(),
	}
}

func (b SnapshotBoard) toDomain() (domain.Board, error) {
	columns := make([]domain.Column, 0, len(b.Columns))
	for _, sc := range b.Columns {
		items := make([]domain.Item, 0, len(sc.Items))
		for _, si := range sc.Items {
			item, err := domain.NewItem(domain.ItemInput{
				ID:          si.ID,
				Title:       si.Title,
				Description: si.Description,
				Value:       si.Value,
				Assignee:    si.Assignee,
				Priority:    si.Priority,
				Tags:        si.Tags,
			})
			if err != nil {
				return domain.Board{}, fmt.Errorf("item %q: %w", si.ID, err)
			}
			items = append(items, item)
		}
		column, err := domain.NewColumn(sc.ID, sc.Title, sc.Color, items)
		if err != nil {
			return domain.Board{}, fmt.Errorf("column %q: %w", sc.ID, err)
		}
		columns = append(columns, column)
	}
	return domain.NewBoard(b.ID, b.Title, columns)
}

func (c SnapshotContact) toDomain() (domain.Contact, error) {
	return domain.NewContact(domain.ContactInput{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		Position:    c.Position,
		Status:      c.Status,
		Location:    c.Location,
		LastContact: c.LastContact,
		Notes:       c.Notes,
	})
}

func (a SnapshotAccount) toDomain() (domain.Account, error) {
	return domain.NewAccount(domain.AccountInput{
		ID:            a.ID,
		Name:          a.Name,
		Industry:      a.Industry,
		Revenue:       a.Revenue,
		Employees:     a.Employees,
		Status:        a.Status,
		Tier:          a.Tier,
		Contacts:      a.Contacts,
		Opportunities: a.Opportunities,
		LastActivity:  a.LastActivity,
		Location:      a.Location,
		Website:       a.Website,
	})
}

func (m SnapshotMessage) toDomain() (domain.Message, error) {
	return domain.NewMessage(domain.MessageInput{
		ID:        m.ID,
		ContactID: m.ContactID,
		Sender:    m.Sender,
		Body:      m.Body,
		Direction: m.Direction,
	}, m.SentAt)
}

func (a SnapshotActivity) toDomain() domain.ChangeEvent {
	return domain.ChangeEvent{
		Subject:     strings.TrimSpace(a.Subject),
		SubjectID:   strings.TrimSpace(a.SubjectID),
		Operation:   a.Operation,
		Title:       strings.TrimSpace(a.Title),
		Description: strings.TrimSpace(a.Description),
		Metadata:    maps.Clone(a.Metadata),
		OccurredAt:  a.OccurredAt.UTC(),
	}
}
