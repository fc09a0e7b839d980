package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hylla/pipedeck/internal/domain"
)

// Default board and column identifiers.
const (
	DefaultLeadsBoardID         = "leads"
	DefaultOpportunitiesBoardID = "opportunities"
	DefaultWonColumnID          = "closed-won"
	DefaultLostColumnID         = "closed-lost"
	defaultActivityLimit        = 10
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	LeadsBoardID         string
	OpportunitiesBoardID string
	ClosedColumnIDs      []string
	WonColumnID          string
	ActivityLimit        int
	Logger               Logger
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service coordinates boards, drag sessions and CRM records.
type Service struct {
	repo   Repository
	idGen  IDGenerator
	clock  Clock
	cfg    ServiceConfig
	logger Logger

	mu     sync.Mutex
	stores map[string]*BoardStore
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	cfg.LeadsBoardID = strings.TrimSpace(cfg.LeadsBoardID)
	if cfg.LeadsBoardID == "" {
		cfg.LeadsBoardID = DefaultLeadsBoardID
	}
	cfg.OpportunitiesBoardID = strings.TrimSpace(cfg.OpportunitiesBoardID)
	if cfg.OpportunitiesBoardID == "" {
		cfg.OpportunitiesBoardID = DefaultOpportunitiesBoardID
	}
	if len(cfg.ClosedColumnIDs) == 0 {
		cfg.ClosedColumnIDs = []string{DefaultWonColumnID, DefaultLostColumnID}
	}
	if strings.TrimSpace(cfg.WonColumnID) == "" {
		cfg.WonColumnID = DefaultWonColumnID
	}
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = defaultActivityLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Service{
		repo:   repo,
		idGen:  idGen,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
		stores: map[string]*BoardStore{},
	}
}

// LeadsBoardID returns the configured leads board id.
func (s *Service) LeadsBoardID() string {
	return s.cfg.LeadsBoardID
}

// OpportunitiesBoardID returns the configured opportunities board id.
func (s *Service) OpportunitiesBoardID() string {
	return s.cfg.OpportunitiesBoardID
}

// Store returns the store that owns a board.
func (s *Service) Store(ctx context.Context, boardID string) (*BoardStore, error) {
	boardID = strings.TrimSpace(boardID)
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, boardID)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.stores[boardID]
	if !ok {
		store = NewBoardStore(boardID, s.repo)
		s.stores[boardID] = store
	}
	return store, nil
}

// ListBoards lists boards in display order.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return s.repo.ListBoards(ctx)
}

// GetBoard returns one board.
func (s *Service) GetBoard(ctx context.Context, boardID string) (domain.Board, error) {
	store, err := s.Store(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	return store.Board(ctx)
}

// MoveItemInput holds input values for move item operations.
type MoveItemInput struct {
	BoardID        string
	ItemID         string
	SourceColumnID string
	TargetColumnID string
}

// MoveItem moves an item between named columns. Malformed moves are skipped and reported only
// through the returned outcome.
func (s *Service) MoveItem(ctx context.Context, in MoveItemInput) (domain.Board, domain.MoveOutcome, error) {
	store, err := s.Store(ctx, in.BoardID)
	if err != nil {
		return domain.Board{}, "", err
	}
	board, outcome, err := store.Move(ctx, in.ItemID, in.SourceColumnID, in.TargetColumnID)
	if err != nil {
		return domain.Board{}, "", err
	}
	if err := s.afterMove(ctx, board, in.ItemID, in.SourceColumnID, in.TargetColumnID, outcome); err != nil {
		return domain.Board{}, "", err
	}
	return board, outcome, nil
}

// BeginDrag starts a drag session over an item.
func (s *Service) BeginDrag(ctx context.Context, boardID, itemID string) error {
	store, err := s.Store(ctx, boardID)
	if err != nil {
		return err
	}
	return store.BeginDrag(itemID)
}

// DropOnColumn resolves the active drag against a target column.
func (s *Service) DropOnColumn(ctx context.Context, boardID, targetColumnID string) (DropResult, error) {
	store, err := s.Store(ctx, boardID)
	if err != nil {
		return DropResult{}, err
	}
	result, err := store.Drop(ctx, targetColumnID)
	if err != nil {
		return DropResult{}, err
	}
	if err := s.afterMove(ctx, result.Board, result.ItemID, result.SourceColumnID, result.TargetColumnID, result.Outcome); err != nil {
		return DropResult{}, err
	}
	return result, nil
}

// CancelDrag clears the drag session of a board.
func (s *Service) CancelDrag(ctx context.Context, boardID string) error {
	store, err := s.Store(ctx, boardID)
	if err != nil {
		return err
	}
	store.CancelDrag()
	s.logger.Debug("drag cancelled", "board", store.ID())
	return nil
}

// DragSession returns the drag session of a board.
func (s *Service) DragSession(ctx context.Context, boardID string) (domain.DragSession, error) {
	store, err := s.Store(ctx, boardID)
	if err != nil {
		return domain.DragSession{}, err
	}
	return store.DragSession(), nil
}

// CreateItemInput holds input values for create item operations.
type CreateItemInput struct {
	BoardID     string
	ColumnID    string
	Title       string
	Description string
	Value       string
	Assignee    string
	Priority    domain.Priority
	Tags        []string
}

// CreateItem appends a new item to a board column.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (domain.Item, error) {
	item, err := domain.NewItem(domain.ItemInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Value:       in.Value,
		Assignee:    in.Assignee,
		Priority:    in.Priority,
		Tags:        in.Tags,
	})
	if err != nil {
		return domain.Item{}, err
	}
	store, err := s.Store(ctx, in.BoardID)
	if err != nil {
		return domain.Item{}, err
	}
	board, err := store.AddItem(ctx, in.ColumnID, item)
	if err != nil {
		return domain.Item{}, err
	}
	column, _ := board.Column(in.ColumnID)
	if err := s.recordChange(ctx, domain.ChangeEvent{
		Subject:     board.ID,
		SubjectID:   item.ID,
		Operation:   domain.ChangeOperationCreate,
		Title:       fmt.Sprintf("New %s created", s.itemNoun(board.ID)),
		Description: fmt.Sprintf("%s added to %s", item.Title, column.Title),
		Metadata:    map[string]string{"column": column.ID},
	}); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// ItemMatch represents one board item matched by search.
type ItemMatch struct {
	BoardID     string
	ColumnID    string
	ColumnTitle string
	Item        domain.Item
}

// SearchItems matches board items by title, description, assignee and tags.
func (s *Service) SearchItems(ctx context.Context, boardID, query string) ([]ItemMatch, error) {
	board, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemMatch, 0)
	for _, column := range board.Columns {
		for _, item := range domain.Filter(query, column.Items) {
			out = append(out, ItemMatch{
				BoardID:     board.ID,
				ColumnID:    column.ID,
				ColumnTitle: column.Title,
				Item:        item,
			})
		}
	}
	return out, nil
}

// ListContacts lists contacts in seed order.
func (s *Service) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return s.repo.ListContacts(ctx)
}

// SearchContacts matches contacts by name, company and email.
func (s *Service) SearchContacts(ctx context.Context, query string) ([]domain.Contact, error) {
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Filter(query, contacts), nil
}

// SearchConversationContacts matches conversation partners by name and company.
func (s *Service) SearchConversationContacts(ctx context.Context, query string) ([]domain.Contact, error) {
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterFunc(query, contacts, domain.ConversationSearchFields), nil
}

// GetContact returns one contact.
func (s *Service) GetContact(ctx context.Context, contactID string) (domain.Contact, error) {
	return s.repo.GetContact(ctx, strings.TrimSpace(contactID))
}

// ListAccounts lists accounts in seed order.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// SearchAccounts matches accounts by name, industry and tier.
func (s *Service) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Filter(query, accounts), nil
}

// GetAccount returns one account.
func (s *Service) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	return s.repo.GetAccount(ctx, strings.TrimSpace(accountID))
}

// ListMessages lists the thread with one contact, oldest first.
func (s *Service) ListMessages(ctx context.Context, contactID string) ([]domain.Message, error) {
	contactID = strings.TrimSpace(contactID)
	if _, err := s.repo.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, contactID)
}

// SendMessage appends an outgoing message to a contact thread.
func (s *Service) SendMessage(ctx context.Context, contactID, body string) (domain.Message, error) {
	contact, err := s.repo.GetContact(ctx, strings.TrimSpace(contactID))
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := domain.NewMessage(domain.MessageInput{
		ID:        s.idGen(),
		ContactID: contact.ID,
		Body:      body,
		Direction: domain.MessageSent,
	}, s.clock())
	if err != nil {
		return domain.Message{}, err
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	if err := s.recordChange(ctx, domain.ChangeEvent{
		Subject:     "contact",
		SubjectID:   contact.ID,
		Operation:   domain.ChangeOperationMessage,
		Title:       "Message sent",
		Description: "Message sent to " + contact.Name,
	}); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// PipelineSummary totals the opportunities board.
func (s *Service) PipelineSummary(ctx context.Context) (domain.PipelineSummary, error) {
	board, err := s.GetBoard(ctx, s.cfg.OpportunitiesBoardID)
	if err != nil {
		return domain.PipelineSummary{}, err
	}
	return domain.SummarizePipeline(board, s.cfg.ClosedColumnIDs, s.cfg.WonColumnID), nil
}

// DashboardStat is one headline figure on the dashboard.
type DashboardStat struct {
	Title  string
	Value  string
	Detail string
}

// Dashboard holds the dashboard's headline figures and activity feed.
type Dashboard struct {
	Stats    []DashboardStat
	Activity []domain.ChangeEvent
}

// Dashboard computes headline figures from the live boards and records.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	leads, err := s.GetBoard(ctx, s.cfg.LeadsBoardID)
	if err != nil {
		return Dashboard{}, err
	}
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	pipeline, err := s.PipelineSummary(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	activity, err := s.repo.ListChangeEvents(ctx, s.cfg.ActivityLimit)
	if err != nil {
		return Dashboard{}, err
	}

	active := 0
	for _, contact := range contacts {
		if contact.Status == domain.StatusActive {
			active++
		}
	}
	enterprise := 0
	for _, account := range accounts {
		if account.Tier == domain.AccountTierEnterprise {
			enterprise++
		}
	}
	return Dashboard{
		Stats: []DashboardStat{
			{Title: "Total Leads", Value: fmt.Sprintf("%d", leads.ItemCount()), Detail: fmt.Sprintf("across %d stages", len(leads.Columns))},
			{Title: "Active Contacts", Value: fmt.Sprintf("%d", active), Detail: fmt.Sprintf("of %d contacts", len(contacts))},
			{Title: "Total Accounts", Value: fmt.Sprintf("%d", len(accounts)), Detail: fmt.Sprintf("%d enterprise", enterprise)},
			{Title: "Revenue", Value: FormatAmount(pipeline.ClosedWonValue), Detail: FormatAmount(pipeline.OpenValue) + " open"},
		},
		Activity: activity,
	}, nil
}

// ListChangeEvents lists recent activity, newest first.
func (s *Service) ListChangeEvents(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = s.cfg.ActivityLimit
	}
	return s.repo.ListChangeEvents(ctx, limit)
}

// FormatAmount renders a dollar amount with thousands separators and no cents. Non-finite
// amounts render as "$0".
func FormatAmount(amount float64) string {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return "$0"
	}
	amount = math.Round(amount)
	if amount < 0 {
		return "-$" + humanize.Commaf(-amount)
	}
	return "$" + humanize.Commaf(amount)
}

// afterMove logs skipped moves and records applied ones.
func (s *Service) afterMove(ctx context.Context, board domain.Board, itemID, sourceColumnID, targetColumnID string, outcome domain.MoveOutcome) error {
	if !outcome.Applied() {
		s.logger.Debug(
			"move skipped",
			"board", board.ID,
			"item", itemID,
			"source", sourceColumnID,
			"target", targetColumnID,
			"reason", string(outcome),
		)
		return nil
	}
	item, _, _ := board.Item(itemID)
	source, _ := board.Column(sourceColumnID)
	target, _ := board.Column(targetColumnID)
	title := "Card moved"
	if board.ID == s.cfg.OpportunitiesBoardID && target.ID == s.cfg.WonColumnID {
		title = "Deal closed"
	}
	return s.recordChange(ctx, domain.ChangeEvent{
		Subject:     board.ID,
		SubjectID:   itemID,
		Operation:   domain.ChangeOperationMove,
		Title:       title,
		Description: fmt.Sprintf("%s moved from %s to %s", item.Title, source.Title, target.Title),
		Metadata:    map[string]string{"from": source.ID, "to": target.ID},
	})
}

// recordChange stamps and stores one activity entry.
func (s *Service) recordChange(ctx context.Context, event domain.ChangeEvent) error {
	event.OccurredAt = s.clock().UTC()
	if _, err := s.repo.AppendChangeEvent(ctx, event); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// itemNoun names the cards of a board for activity titles.
func (s *Service) itemNoun(boardID string) string {
	switch boardID {
	case s.cfg.LeadsBoardID:
		return "lead"
	case s.cfg.OpportunitiesBoardID:
		return "opportunity"
	default:
		return "card"
	}
}
