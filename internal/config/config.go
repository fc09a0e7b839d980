package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// View names accepted by ui.default_view.
const (
	ViewDashboard     = "dashboard"
	ViewLeads         = "leads"
	ViewContacts      = "contacts"
	ViewAccounts      = "accounts"
	ViewOpportunities = "opportunities"
	ViewConversations = "conversations"
)

var knownViews = []string{ViewDashboard, ViewLeads, ViewContacts, ViewAccounts, ViewOpportunities, ViewConversations}

var knownLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Seed    SeedConfig    `toml:"seed"`
	Board   BoardConfig   `toml:"board"`
	Search  SearchConfig  `toml:"search"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeyConfig     `toml:"keys"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type SeedConfig struct {
	Path string `toml:"path"` // empty uses the built-in sample data
}

type BoardConfig struct {
	ShowDescription bool `toml:"show_description"`
	ShowTags        bool `toml:"show_tags"`
	ShowValue       bool `toml:"show_value"`
	ColumnWidth     int  `toml:"column_width"`
}

type SearchConfig struct {
	ContactsPlaceholder      string `toml:"contacts_placeholder"`
	AccountsPlaceholder      string `toml:"accounts_placeholder"`
	ConversationsPlaceholder string `toml:"conversations_placeholder"`
	BoardPlaceholder         string `toml:"board_placeholder"`
}

type UIConfig struct {
	DefaultView string `toml:"default_view"`
	Mouse       bool   `toml:"mouse"`
}

type KeyConfig struct {
	Grab    string `toml:"grab"`
	NewItem string `toml:"new_item"`
	Search  string `toml:"search"`
	Compose string `toml:"compose"`
	Copy    string `toml:"copy"`
}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".pipedeck/log",
			},
		},
		Board: BoardConfig{
			ShowDescription: true,
			ShowTags:        true,
			ShowValue:       true,
			ColumnWidth:     28,
		},
		Search: SearchConfig{
			ContactsPlaceholder:      "Search contacts...",
			AccountsPlaceholder:      "Search accounts...",
			ConversationsPlaceholder: "Search conversations...",
			BoardPlaceholder:         "Filter cards...",
		},
		UI: UIConfig{
			DefaultView: ViewDashboard,
			Mouse:       true,
		},
		Keys: KeyConfig{
			Grab:    " ",
			NewItem: "n",
			Search:  "/",
			Compose: "m",
			Copy:    "y",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level != "" && !slices.Contains(knownLogLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when the dev file is enabled")
	}

	if c.Board.ColumnWidth != 0 && (c.Board.ColumnWidth < 16 || c.Board.ColumnWidth > 80) {
		return fmt.Errorf("board.column_width must be between 16 and 80, got %d", c.Board.ColumnWidth)
	}

	view := strings.TrimSpace(strings.ToLower(c.UI.DefaultView))
	if view != "" && !slices.Contains(knownViews, view) {
		return fmt.Errorf("invalid ui.default_view: %q", c.UI.DefaultView)
	}

	seen := map[string]string{}
	for _, binding := range []struct {
		name string
		key  string
	}{
		{"keys.grab", c.Keys.Grab},
		{"keys.new_item", c.Keys.NewItem},
		{"keys.search", c.Keys.Search},
		{"keys.compose", c.Keys.Compose},
		{"keys.copy", c.Keys.Copy},
	} {
		if binding.key == "" {
			continue
		}
		if other, ok := seen[binding.key]; ok {
			return fmt.Errorf("%s duplicates %s: %q", binding.name, other, binding.key)
		}
		seen[binding.key] = binding.name
	}

	return nil
}

// LogLevel returns the normalized log level name.
func (c Config) LogLevel() string {
	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level == "" {
		return "info"
	}
	return level
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Save validates cfg and writes it as TOML, creating the parent directory when needed.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
