package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hylla/pipedeck/internal/adapters/seed"
	"github.com/hylla/pipedeck/internal/adapters/storage/memory"
	"github.com/hylla/pipedeck/internal/app"
	"github.com/hylla/pipedeck/internal/config"
	"github.com/hylla/pipedeck/internal/platform"
	"github.com/hylla/pipedeck/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree through fang, which renders errors on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	configPath string
	seedPath   string
	appName    string
	devMode    bool
}

// runtime bundles the resolved state every command flow works against.
type runtime struct {
	opts       rootOptions
	paths      platform.Paths
	configPath string
	seedPath   string
	cfg        config.Config
	logger     *runtimeLogger
	svc        *app.Service
}

// newRootCommand builds the pipedeck command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := rootOptions{appName: "pipedeck", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("PIPEDECK_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("PIPEDECK_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "pipedeck",
		Short:         "Terminal CRM dashboard with drag-and-drop pipeline boards",
		Long:          "pipedeck shows leads, contacts, accounts, opportunities and conversations in the terminal.\nRun without arguments to open the dashboard.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setupRuntime(cmd.Context(), opts, stderr, true)
			if err != nil {
				return err
			}
			defer rt.close(stderr)
			return rt.runTUI()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.seedPath, "seed", "", "path to a YAML seed file")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(&opts),
		newInitConfigCommand(&opts),
		newBoardCommand(&opts, stderr),
		newMoveCommand(&opts, stderr),
		newSearchCommand(&opts, stderr),
		newExportCommand(&opts, stderr),
		newColorsCommand(),
	)
	return root
}

// resolvePaths resolves per-user paths for the current flags.
func resolvePaths(opts rootOptions) (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
}

// resolveConfigPath applies flag, then env, then the platform default.
func resolveConfigPath(opts rootOptions, paths platform.Paths) string {
	if path := strings.TrimSpace(opts.configPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("PIPEDECK_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// resolveSeedPath applies flag, env and config overrides, then the first per-user seed file
// found in the data dir. An empty result selects the built-in sample data.
func resolveSeedPath(opts rootOptions, paths platform.Paths, cfg config.Config) string {
	if path := strings.TrimSpace(opts.seedPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("PIPEDECK_SEED")); envPath != "" {
		return envPath
	}
	if path := strings.TrimSpace(cfg.Seed.Path); path != "" {
		return path
	}
	if path, ok := paths.FindSeed(); ok {
		return path
	}
	return ""
}

// setupRuntime loads config, starts logging and seeds an in-memory service.
func setupRuntime(ctx context.Context, opts rootOptions, stderr io.Writer, tuiMode bool) (*runtime, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	configPath := resolveConfigPath(opts, paths)
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if tuiMode {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the dashboard is active.
		logger.SetConsoleEnabled(false)
	}
	rt := &runtime{
		opts:       opts,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "seed_path", paths.SeedPath)
	logger.Info("configuration loaded", "config_path", configPath, "log_level", cfg.LogLevel())
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	rt.seedPath = resolveSeedPath(opts, paths, cfg)
	snap, err := seed.LoadFile(rt.seedPath)
	if err != nil {
		logger.Error("seed load failed", "seed_path", rt.seedPath, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("load seed: %w", err)
	}

	repo := memory.New()
	svc := app.NewService(repo, uuid.NewString, time.Now, app.ServiceConfig{Logger: logger})
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		logger.Error("seed import failed", "seed_path", rt.seedPath, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("import seed: %w", err)
	}
	logger.Info("seed data ready", "seed_path", seedLabel(rt.seedPath), "boards", len(snap.Boards), "contacts", len(snap.Contacts))
	rt.svc = svc
	return rt, nil
}

// close closes the runtime log sinks.
func (rt *runtime) close(stderr io.Writer) {
	if closeErr := rt.logger.Close(); closeErr != nil && rt.logger.shouldLogToSink(rt.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// runTUI runs the dashboard program loop.
func (rt *runtime) runTUI() error {
	rt.logger.Info("command flow start", "command", "tui")
	m := tui.NewModel(rt.svc, tuiOptions(rt.cfg, rt.svc)...)
	rt.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		rt.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	rt.logger.Info("command flow complete", "command", "tui")
	return nil
}

// tuiOptions maps persisted config values into model options.
func tuiOptions(cfg config.Config, svc *app.Service) []tui.Option {
	return []tui.Option{
		tui.WithBoardIDs(svc.LeadsBoardID(), svc.OpportunitiesBoardID()),
		tui.WithBoardConfig(tui.BoardConfig{
			ShowDescription: cfg.Board.ShowDescription,
			ShowTags:        cfg.Board.ShowTags,
			ShowValue:       cfg.Board.ShowValue,
			ColumnWidth:     cfg.Board.ColumnWidth,
		}),
		tui.WithSearchPlaceholders(tui.SearchPlaceholders{
			Contacts:      cfg.Search.ContactsPlaceholder,
			Accounts:      cfg.Search.AccountsPlaceholder,
			Conversations: cfg.Search.ConversationsPlaceholder,
			Board:         cfg.Search.BoardPlaceholder,
		}),
		tui.WithDefaultView(cfg.UI.DefaultView),
		tui.WithMouse(cfg.UI.Mouse),
		tui.WithKeyConfig(tui.KeyConfig{
			Grab:    cfg.Keys.Grab,
			NewItem: cfg.Keys.NewItem,
			Search:  cfg.Keys.Search,
			Compose: cfg.Keys.Compose,
			Copy:    cfg.Keys.Copy,
		}),
	}
}

// seedLabel names the seed source for logs.
func seedLabel(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
