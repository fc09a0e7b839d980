package tui

import (
	"strings"

	"github.com/atotto/clipboard"
)

// BoardConfig controls which card fields the board views render.
type BoardConfig struct {
	ShowDescription bool
	ShowTags        bool
	ShowValue       bool
	ColumnWidth     int
}

// SearchPlaceholders holds the hint text for each search input.
type SearchPlaceholders struct {
	Contacts      string
	Accounts      string
	Conversations string
	Board         string
}

// KeyConfig overrides the action keys. Empty fields keep the defaults.
type KeyConfig struct {
	Grab    string
	NewItem string
	Search  string
	Compose string
	Copy    string
}

type Option func(*Model)

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ShowDescription: true,
		ShowTags:        true,
		ShowValue:       true,
		ColumnWidth:     28,
	}
}

func DefaultSearchPlaceholders() SearchPlaceholders {
	return SearchPlaceholders{
		Contacts:      "Search contacts...",
		Accounts:      "Search accounts...",
		Conversations: "Search conversations...",
		Board:         "Filter cards...",
	}
}

func WithBoardConfig(cfg BoardConfig) Option {
	return func(m *Model) {
		if cfg.ColumnWidth <= 0 {
			cfg.ColumnWidth = DefaultBoardConfig().ColumnWidth
		}
		m.boardCfg = cfg
	}
}

// WithSearchPlaceholders replaces the non-empty placeholders.
func WithSearchPlaceholders(p SearchPlaceholders) Option {
	return func(m *Model) {
		pick := func(current *string, next string) {
			if strings.TrimSpace(next) != "" {
				*current = next
			}
		}
		pick(&m.placeholders.Contacts, p.Contacts)
		pick(&m.placeholders.Accounts, p.Accounts)
		pick(&m.placeholders.Conversations, p.Conversations)
		pick(&m.placeholders.Board, p.Board)
	}
}

// WithDefaultView selects the view shown at startup. Unknown names are ignored.
func WithDefaultView(name string) Option {
	return func(m *Model) {
		if v, ok := viewByName(name); ok {
			m.view = v
		}
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyKeyConfig(cfg)
	}
}

// WithClipboard swaps the clipboard writer used by the copy action.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func WithMouse(enabled bool) Option {
	return func(m *Model) {
		m.mouse = enabled
	}
}

// WithBoardIDs sets the board ids behind the Leads and Opportunities views.
func WithBoardIDs(leadsID, opportunitiesID string) Option {
	return func(m *Model) {
		if strings.TrimSpace(leadsID) != "" {
			m.leadsBoardID = leadsID
		}
		if strings.TrimSpace(opportunitiesID) != "" {
			m.oppsBoardID = opportunitiesID
		}
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
