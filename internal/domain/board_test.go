package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mustItem builds one item or fails the test.
func mustItem(t *testing.T, id, title string) Item {
	t.Helper()
	item, err := NewItem(ItemInput{ID: id, Title: title, Priority: PriorityMedium, Tags: []string{"crm"}})
	if err != nil {
		t.Fatalf("NewItem(%q) error = %v", id, err)
	}
	return item
}

// mustColumn builds one column or fails the test.
func mustColumn(t *testing.T, id string, items ...Item) Column {
	t.Helper()
	column, err := NewColumn(id, id+" title", "", items)
	if err != nil {
		t.Fatalf("NewColumn(%q) error = %v", id, err)
	}
	return column
}

// sampleBoard builds a three-column board used across move tests.
func sampleBoard(t *testing.T) Board {
	t.Helper()
	board, err := NewBoard("leads", "Leads", []Column{
		mustColumn(t, "new", mustItem(t, "1", "John Smith"), mustItem(t, "2", "Sarah Johnson")),
		mustColumn(t, "qualified", mustItem(t, "3", "Mike Wilson")),
		mustColumn(t, "closed"),
	})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	return board
}

// columnItemIDs returns item ids per column for compact comparisons.
func columnItemIDs(b Board) map[string][]string {
	out := make(map[string][]string, len(b.Columns))
	for _, column := range b.Columns {
		ids := []string{}
		for _, item := range column.Items {
			ids = append(ids, item.ID)
		}
		out[column.ID] = ids
	}
	return out
}

// TestNewBoardRejectsDuplicateIDs verifies the board-wide uniqueness invariant.
func TestNewBoardRejectsDuplicateIDs(t *testing.T) {
	a := mustItem(t, "a", "A")
	_, err := NewBoard("b", "Board", []Column{mustColumn(t, "c1", a), mustColumn(t, "c2", a)})
	if !errors.Is(err, ErrDuplicateItemID) {
		t.Fatalf("expected ErrDuplicateItemID across columns, got %v", err)
	}
	if _, err := NewColumn("c1", "C1", "", []Item{a, a}); !errors.Is(err, ErrDuplicateItemID) {
		t.Fatalf("expected ErrDuplicateItemID within column, got %v", err)
	}
	_, err = NewBoard("b", "Board", []Column{mustColumn(t, "c1"), mustColumn(t, "c1")})
	if !errors.Is(err, ErrDuplicateColumnID) {
		t.Fatalf("expected ErrDuplicateColumnID, got %v", err)
	}
	if _, err := NewBoard("b", "Board", nil); !errors.Is(err, ErrEmptyBoard) {
		t.Fatalf("expected ErrEmptyBoard, got %v", err)
	}
	if _, err := NewBoard(" ", "Board", []Column{mustColumn(t, "c1")}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

// TestNewBoardRejectsBlankItemIDs verifies items built without NewItem still need an id.
func TestNewBoardRejectsBlankItemIDs(t *testing.T) {
	blank := Item{ID: " ", Title: "No id"}
	column := Column{ID: "c1", Title: "C1", Items: []Item{blank}}
	if _, err := NewBoard("b", "Board", []Column{column}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for blank item id on board, got %v", err)
	}
	if _, err := NewColumn("c1", "C1", "", []Item{blank}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for blank item id in column, got %v", err)
	}
}

// TestBoardMoveConcreteScenario verifies new=[itemA], qualified=[] -> new=[], qualified=[itemA].
func TestBoardMoveConcreteScenario(t *testing.T) {
	itemA := mustItem(t, "itemA", "Item A")
	board, err := NewBoard("leads", "Leads", []Column{mustColumn(t, "new", itemA), mustColumn(t, "qualified")})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}

	next, outcome := board.Move("itemA", "new", "qualified")
	if outcome != MoveApplied {
		t.Fatalf("expected applied move, got %q", outcome)
	}
	want := map[string][]string{"new": {}, "qualified": {"itemA"}}
	if diff := cmp.Diff(want, columnItemIDs(next)); diff != "" {
		t.Fatalf("unexpected board after move (-want +got):\n%s", diff)
	}
	moved, columnID, ok := next.Item("itemA")
	if !ok || columnID != "qualified" {
		t.Fatalf("expected itemA in qualified, got %q ok=%t", columnID, ok)
	}
	if diff := cmp.Diff(itemA, moved); diff != "" {
		t.Fatalf("item attributes changed (-want +got):\n%s", diff)
	}
}

// TestBoardMoveAppendsAndPreservesOrder verifies tail insertion and untouched relative order.
func TestBoardMoveAppendsAndPreservesOrder(t *testing.T) {
	board := sampleBoard(t)
	next, outcome := board.Move("1", "new", "qualified")
	if !outcome.Applied() {
		t.Fatalf("expected applied move, got %q", outcome)
	}
	want := map[string][]string{
		"new":       {"2"},
		"qualified": {"3", "1"},
		"closed":    {},
	}
	if diff := cmp.Diff(want, columnItemIDs(next)); diff != "" {
		t.Fatalf("unexpected board after move (-want +got):\n%s", diff)
	}
	if next.ItemCount() != board.ItemCount() {
		t.Fatalf("expected item count %d, got %d", board.ItemCount(), next.ItemCount())
	}
}

// TestBoardMoveLeavesReceiverUntouched verifies the functional-update discipline.
func TestBoardMoveLeavesReceiverUntouched(t *testing.T) {
	board := sampleBoard(t)
	before := columnItemIDs(board)
	_, _ = board.Move("2", "new", "closed")
	if diff := cmp.Diff(before, columnItemIDs(board)); diff != "" {
		t.Fatalf("receiver mutated by Move (-before +after):\n%s", diff)
	}
}

// TestBoardMoveNoOps verifies the benign-race paths return the board unchanged.
func TestBoardMoveNoOps(t *testing.T) {
	board := sampleBoard(t)
	cases := []struct {
		name    string
		itemID  string
		source  string
		target  string
		outcome MoveOutcome
	}{
		{name: "same column", itemID: "1", source: "new", target: "new", outcome: MoveSameColumn},
		{name: "missing item", itemID: "404", source: "new", target: "qualified", outcome: MoveItemNotInSource},
		{name: "wrong source", itemID: "3", source: "new", target: "closed", outcome: MoveItemNotInSource},
		{name: "unknown source", itemID: "1", source: "nope", target: "closed", outcome: MoveUnknownColumn},
		{name: "unknown target", itemID: "1", source: "new", target: "nope", outcome: MoveUnknownColumn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, outcome := board.Move(tc.itemID, tc.source, tc.target)
			if outcome != tc.outcome {
				t.Fatalf("expected outcome %q, got %q", tc.outcome, outcome)
			}
			if diff := cmp.Diff(board, next); diff != "" {
				t.Fatalf("expected unchanged board (-want +got):\n%s", diff)
			}
		})
	}
}

// TestBoardSourceColumnAndAddItem verifies lookup and append helpers.
func TestBoardSourceColumnAndAddItem(t *testing.T) {
	board := sampleBoard(t)
	if columnID, ok := board.SourceColumnOf("3"); !ok || columnID != "qualified" {
		t.Fatalf("expected item 3 in qualified, got %q ok=%t", columnID, ok)
	}
	if _, ok := board.SourceColumnOf("404"); ok {
		t.Fatal("expected missing item lookup to fail")
	}

	next, err := board.AddItem("closed", mustItem(t, "9", "New lead"))
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if got := columnItemIDs(next)["closed"]; len(got) != 1 || got[0] != "9" {
		t.Fatalf("expected new item in closed, got %v", got)
	}
	if board.ItemCount() != 3 {
		t.Fatalf("expected receiver untouched, got %d items", board.ItemCount())
	}
	if _, err := next.AddItem("new", mustItem(t, "9", "dup")); !errors.Is(err, ErrDuplicateItemID) {
		t.Fatalf("expected ErrDuplicateItemID, got %v", err)
	}
	if _, err := next.AddItem("nope", mustItem(t, "10", "x")); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

// TestNewItemNormalizes verifies trimming, priority validation, and tag de-duplication.
func TestNewItemNormalizes(t *testing.T) {
	item, err := NewItem(ItemInput{
		ID:       " 7 ",
		Title:    " Deal ",
		Value:    "$75,000",
		Assignee: "jd",
		Priority: Priority(" HIGH "),
		Tags:     []string{"Enterprise", " enterprise ", "", "Software"},
	})
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if item.ID != "7" || item.Title != "Deal" {
		t.Fatalf("expected trimmed fields, got %#v", item)
	}
	if item.Priority != PriorityHigh {
		t.Fatalf("expected high priority, got %q", item.Priority)
	}
	if diff := cmp.Diff([]string{"Enterprise", "Software"}, item.Tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
	if item.Amount() != 75000 {
		t.Fatalf("expected amount 75000, got %v", item.Amount())
	}
	if item.Initial() != "J" {
		t.Fatalf("expected initial J, got %q", item.Initial())
	}
	if _, err := NewItem(ItemInput{ID: "1", Title: "x", Priority: "urgent"}); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if _, err := NewItem(ItemInput{ID: "1"}); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

// TestPriorityRank verifies the low < medium < high ordering.
func TestPriorityRank(t *testing.T) {
	if !(Priority("").Rank() < PriorityLow.Rank() && PriorityLow.Rank() < PriorityMedium.Rank() && PriorityMedium.Rank() < PriorityHigh.Rank()) {
		t.Fatalf("unexpected priority ordering")
	}
}

// TestSummarizePipeline verifies open and closed-won totals.
func TestSummarizePipeline(t *testing.T) {
	deal := func(id, value string) Item {
		item, err := NewItem(ItemInput{ID: id, Title: "deal " + id, Value: value})
		if err != nil {
			t.Fatalf("NewItem() error = %v", err)
		}
		return item
	}
	board, err := NewBoard("opportunities", "Opportunities", []Column{
		mustColumn(t, "prospecting", deal("1", "$75,000"), deal("2", "$25,000")),
		mustColumn(t, "closed-won", deal("7", "$15,000")),
		mustColumn(t, "closed-lost", deal("8", "$95,000")),
		mustColumn(t, "negotiation", deal("6", "not a number"), deal("9", "inf"), deal("10", "NaN")),
	})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	got := SummarizePipeline(board, []string{"closed-won", "closed-lost"}, "closed-won")
	want := PipelineSummary{OpenValue: 100000, ClosedWonValue: 15000, OpenCount: 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
}

// TestParseAmount verifies currency parsing and the zero fallback.
func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"$75,000":      75000,
		" 1,250.50 ":   1250.5,
		"-$4,500":      -4500,
		"":             0,
		"not a number": 0,
		"inf":          0,
		"-Inf":         0,
		"$Infinity":    0,
		"NaN":          0,
	}
	for raw, want := range cases {
		if got := ParseAmount(raw); got != want {
			t.Fatalf("ParseAmount(%q) = %v, want %v", raw, got, want)
		}
	}
}

// TestBoardWithMinPriority verifies the priority floor keeps columns and leaves the receiver alone.
func TestBoardWithMinPriority(t *testing.T) {
	item := func(id string, p Priority) Item {
		out, err := NewItem(ItemInput{ID: id, Title: "card " + id, Priority: p})
		if err != nil {
			t.Fatalf("NewItem(%q) error = %v", id, err)
		}
		return out
	}
	board, err := NewBoard("leads", "Leads", []Column{
		mustColumn(t, "new", item("1", PriorityHigh), item("2", PriorityLow), item("3", "")),
		mustColumn(t, "qualified", item("4", PriorityMedium)),
	})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}

	got := columnItemIDs(board.WithMinPriority(PriorityMedium))
	want := map[string][]string{"new": {"1"}, "qualified": {"4"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected medium floor (-want +got):\n%s", diff)
	}
	got = columnItemIDs(board.WithMinPriority(PriorityHigh))
	want = map[string][]string{"new": {"1"}, "qualified": {}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected high floor (-want +got):\n%s", diff)
	}
	if got := board.WithMinPriority("").ItemCount(); got != 4 {
		t.Fatalf("expected unset floor to keep all items, got %d", got)
	}
	if got := board.ItemCount(); got != 4 {
		t.Fatalf("expected receiver untouched, got %d items", got)
	}
	if diff := cmp.Diff([]Priority{PriorityLow, PriorityMedium, PriorityHigh}, Priorities()); diff != "" {
		t.Fatalf("unexpected priorities (-want +got):\n%s", diff)
	}
}
