package app

import (
	"context"
	"sync"

	"github.com/hylla/pipedeck/internal/domain"
)

// DropResult describes how a drop was resolved.
type DropResult struct {
	ItemID         string
	SourceColumnID string
	TargetColumnID string
	Outcome        domain.MoveOutcome
	Board          domain.Board
}

// BoardStore owns one board and its drag session. Reads and updates are serialized so a drop
// always resolves against the board it was computed from.
type BoardStore struct {
	mu      sync.Mutex
	boardID string
	repo    BoardRepository
	drag    domain.DragSession
}

// NewBoardStore constructs a store for one board id.
func NewBoardStore(boardID string, repo BoardRepository) *BoardStore {
	return &BoardStore{boardID: boardID, repo: repo}
}

// ID returns the board id this store owns.
func (s *BoardStore) ID() string {
	return s.boardID
}

// Board returns the current board value.
func (s *BoardStore) Board(ctx context.Context) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.GetBoard(ctx, s.boardID)
}

// Update applies fn to the current board and stores the result.
func (s *BoardStore) Update(ctx context.Context, fn func(domain.Board) (domain.Board, error)) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, fn)
}

// Move relocates an item between two named columns. Skipped moves leave the stored board untouched.
func (s *BoardStore) Move(ctx context.Context, itemID, sourceColumnID, targetColumnID string) (domain.Board, domain.MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(ctx, itemID, sourceColumnID, targetColumnID)
}

// AddItem appends an item to a column.
func (s *BoardStore) AddItem(ctx context.Context, columnID string, item domain.Item) (domain.Board, error) {
	return s.Update(ctx, func(b domain.Board) (domain.Board, error) {
		return b.AddItem(columnID, item)
	})
}

// BeginDrag starts dragging an item, replacing any drag already in progress.
func (s *BoardStore) BeginDrag(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Start(itemID)
}

// Drop ends the drag session over a target column. The session is idle afterwards whether or
// not the item moved.
func (s *BoardStore) Drop(ctx context.Context, targetColumnID string) (DropResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemID, ok := s.drag.Drop()
	result := DropResult{ItemID: itemID, TargetColumnID: targetColumnID}
	board, err := s.repo.GetBoard(ctx, s.boardID)
	if err != nil {
		return DropResult{}, err
	}
	result.Board = board
	if !ok {
		result.Outcome = domain.MoveNothingDragged
		return result, nil
	}

	sourceColumnID, found := board.SourceColumnOf(itemID)
	if !found {
		result.Outcome = domain.MoveItemNotFound
		return result, nil
	}
	result.SourceColumnID = sourceColumnID

	next, outcome, err := s.moveLocked(ctx, itemID, sourceColumnID, targetColumnID)
	if err != nil {
		return DropResult{}, err
	}
	result.Board = next
	result.Outcome = outcome
	return result, nil
}

// CancelDrag ends the drag session without moving anything.
func (s *BoardStore) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
}

// DragSession returns a copy of the current drag session.
func (s *BoardStore) DragSession() domain.DragSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag
}

// moveLocked runs a move while s.mu is held.
func (s *BoardStore) moveLocked(ctx context.Context, itemID, sourceColumnID, targetColumnID string) (domain.Board, domain.MoveOutcome, error) {
	board, err := s.repo.GetBoard(ctx, s.boardID)
	if err != nil {
		return domain.Board{}, "", err
	}
	next, outcome := board.Move(itemID, sourceColumnID, targetColumnID)
	if !outcome.Applied() {
		return board, outcome, nil
	}
	if err := s.repo.SaveBoard(ctx, next); err != nil {
		return domain.Board{}, "", err
	}
	return next, outcome, nil
}

// updateLocked applies fn while s.mu is held.
func (s *BoardStore) updateLocked(ctx context.Context, fn func(domain.Board) (domain.Board, error)) (domain.Board, error) {
	board, err := s.repo.GetBoard(ctx, s.boardID)
	if err != nil {
		return domain.Board{}, err
	}
	next, err := fn(board)
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.SaveBoard(ctx, next); err != nil {
		return domain.Board{}, err
	}
	return next, nil
}
