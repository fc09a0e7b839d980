package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/pipedeck/internal/adapters/seed"
	"github.com/hylla/pipedeck/internal/app"
	"github.com/hylla/pipedeck/internal/config"
	"github.com/hylla/pipedeck/internal/domain"
	"github.com/hylla/pipedeck/internal/platform"
	"github.com/hylla/pipedeck/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("PIPEDECK_DEV_MODE", "false")
	_ = os.Unsetenv("PIPEDECK_CONFIG")
	_ = os.Unsetenv("PIPEDECK_SEED")
	_ = os.Unsetenv(platform.DataDirEnv)
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// stubProgram swaps the program factory for the duration of one test and records the model.
func stubProgram(t *testing.T, runErr error) *tea.Model {
	t.Helper()
	orig := programFactory
	t.Cleanup(func() { programFactory = orig })
	var captured tea.Model
	programFactory = func(m tea.Model) program {
		captured = m
		return fakeProgram{runErr: runErr}
	}
	return &captured
}

// isolatedArgs points config and per-user data at temp dirs so host files never leak in.
func isolatedArgs(t *testing.T, args ...string) []string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	return append([]string{"--config", cfgPath}, args...)
}

// executeCommand runs the cobra tree directly and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	root := newRootCommand(&stdout, io.Discard)
	root.SetArgs(isolatedArgs(t, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies the root command launches the dashboard with the seeded service.
func TestRunStartsProgram(t *testing.T) {
	captured := stubProgram(t, nil)
	if err := run(context.Background(), isolatedArgs(t), io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := (*captured).(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", *captured)
	}
}

// TestRunProgramErrorIsReturned verifies behavior for the covered scenario.
func TestRunProgramErrorIsReturned(t *testing.T) {
	stubProgram(t, errors.New("tty gone"))
	err := run(context.Background(), isolatedArgs(t), io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs stay out of stderr and persist to the dev log file.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	stubProgram(t, nil)
	workspace := t.TempDir()
	t.Chdir(workspace)

	var stderr bytes.Buffer
	if err := run(context.Background(), isolatedArgs(t, "--dev"), io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".pipedeck", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"starting tui program loop", "seed data ready"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected log file to include %q, got %q", want, content)
		}
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies behavior for the covered scenario.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "pipedeck.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"verbose\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	stubProgram(t, nil)
	err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid logging.level") {
		t.Fatalf("expected logging level validation error, got %v", err)
	}
}

// TestRunConfigEnvOverride verifies PIPEDECK_CONFIG is used when --config is absent.
func TestRunConfigEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "env.toml")
	t.Setenv("PIPEDECK_CONFIG", cfgPath)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var stdout bytes.Buffer
	root := newRootCommand(&stdout, io.Discard)
	root.SetArgs([]string{"paths"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("paths error = %v", err)
	}
	if !strings.Contains(stdout.String(), "config: "+cfgPath) {
		t.Fatalf("expected env config path, got %q", stdout.String())
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	out, err := executeCommand(t, "--app", "deck-test", "paths")
	if err != nil {
		t.Fatalf("paths error = %v", err)
	}
	for _, want := range []string{"app: deck-test", "dev_mode: false", "config: ", "data_dir: ", "seed.yaml, ", "seed.yml", "export_dir: "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in paths output, got %q", want, out)
		}
	}
}

// TestRunInitConfigCommand verifies the default config is written once and loads back cleanly.
func TestRunInitConfigCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.toml")
	runInit := func(args ...string) (string, error) {
		var stdout bytes.Buffer
		root := newRootCommand(&stdout, io.Discard)
		root.SetArgs(append([]string{"--config", cfgPath, "init-config"}, args...))
		err := root.ExecuteContext(context.Background())
		return stdout.String(), err
	}

	out, err := runInit()
	if err != nil {
		t.Fatalf("init-config error = %v", err)
	}
	if !strings.Contains(out, "wrote "+cfgPath) {
		t.Fatalf("unexpected init-config output %q", out)
	}
	cfg, err := config.Load(cfgPath, config.Config{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel() != "info" || cfg.UI.DefaultView != config.ViewDashboard {
		t.Fatalf("unexpected written config %#v", cfg)
	}

	if _, err := runInit(); !errors.Is(err, errConfigExists) {
		t.Fatalf("expected errConfigExists, got %v", err)
	}
	if _, err := runInit("--force"); err != nil {
		t.Fatalf("init-config --force error = %v", err)
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	if _, err := executeCommand(t, "teleport"); err == nil {
		t.Fatal("expected unknown command error")
	}
}

// TestRunBoardCommand verifies a board renders with column counts and cards.
func TestRunBoardCommand(t *testing.T) {
	out, err := executeCommand(t, "board")
	if err != nil {
		t.Fatalf("board error = %v", err)
	}
	for _, want := range []string{"Leads", "New Leads (2)", "Qualified (1)", "Mike Wilson - RetailCo"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in board output, got %q", want, out)
		}
	}

	if _, err := executeCommand(t, "board", "nope"); !errors.Is(err, app.ErrUnknownBoard) {
		t.Fatalf("expected ErrUnknownBoard, got %v", err)
	}
}

// TestRunBoardCommandMinPriority verifies the priority floor and its validation.
func TestRunBoardCommandMinPriority(t *testing.T) {
	out, err := executeCommand(t, "board", "leads", "--min-priority", "HIGH")
	if err != nil {
		t.Fatalf("board error = %v", err)
	}
	for _, want := range []string{"New Leads (1)", "Qualified (1)", "Proposal Sent (0)", "Closed (0)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in filtered board, got %q", want, out)
		}
	}
	if strings.Contains(out, "Sarah Johnson") {
		t.Fatalf("expected medium card filtered out, got %q", out)
	}

	_, err = executeCommand(t, "board", "--min-priority", "urgent")
	if !errors.Is(err, domain.ErrInvalidPriority) || !strings.Contains(err.Error(), "low|medium|high") {
		t.Fatalf("expected ErrInvalidPriority listing choices, got %v", err)
	}
}

// TestRunMoveCommand verifies applied and skipped drops.
func TestRunMoveCommand(t *testing.T) {
	out, err := executeCommand(t, "move", "leads", "1", "qualified")
	if err != nil {
		t.Fatalf("move error = %v", err)
	}
	if !strings.Contains(out, `moved "John Smith - Tech Corp" from New Leads to Qualified`) {
		t.Fatalf("unexpected move output %q", out)
	}
	if !strings.Contains(out, "Qualified (2)") {
		t.Fatalf("expected updated counts, got %q", out)
	}

	out, err = executeCommand(t, "move", "leads", "1", "new")
	if err != nil {
		t.Fatalf("move error = %v", err)
	}
	if !strings.Contains(out, "drop skipped: same column") {
		t.Fatalf("expected skipped drop, got %q", out)
	}

	out, err = executeCommand(t, "move", "leads", "missing", "qualified")
	if err != nil {
		t.Fatalf("move error = %v", err)
	}
	if !strings.Contains(out, "drop skipped: item not found") {
		t.Fatalf("expected item not found, got %q", out)
	}
}

// TestRunSearchCommand verifies search targets and the unknown target error.
func TestRunSearchCommand(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{args: []string{"search", "contacts", "JOHN"}, want: "john.smith@techcorp.com"},
		{args: []string{"search", "accounts", "tech"}, want: "Tech Corp"},
		{args: []string{"search", "opportunities", "enterprise"}, want: "Stage"},
		{args: []string{"search", "leads", "zzz-nothing"}, want: "no matches"},
	}
	for _, tc := range cases {
		out, err := executeCommand(t, tc.args...)
		if err != nil {
			t.Fatalf("%v error = %v", tc.args, err)
		}
		if !strings.Contains(out, tc.want) {
			t.Fatalf("%v: expected %q, got %q", tc.args, tc.want, out)
		}
	}

	if _, err := executeCommand(t, "search", "tickets", "x"); !errors.Is(err, errUnknownSearchTarget) {
		t.Fatalf("expected errUnknownSearchTarget, got %v", err)
	}
}

// TestRunSeedFlagReplacesContacts verifies a seed file overrides only the sections it names.
func TestRunSeedFlagReplacesContacts(t *testing.T) {
	seedPath := filepath.Join(t.TempDir(), "seed.yaml")
	content := `contacts:
  - id: "z1"
    name: Zed Example
    email: zed@example.com
    company: Example Co
    status: Active
`
	if err := os.WriteFile(seedPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := executeCommand(t, "--seed", seedPath, "search", "contacts")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "Zed Example") || strings.Contains(out, "John Smith") {
		t.Fatalf("expected only seeded contacts, got %q", out)
	}
	out, err = executeCommand(t, "--seed", seedPath, "board")
	if err != nil {
		t.Fatalf("board error = %v", err)
	}
	if !strings.Contains(out, "New Leads") {
		t.Fatalf("expected built-in boards to fill in, got %q", out)
	}
}

// TestRunExportCommand verifies JSON to stdout and YAML to a file.
func TestRunExportCommand(t *testing.T) {
	out, err := executeCommand(t, "export")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(snap.Boards) != 2 || len(snap.Contacts) == 0 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}

	outPath := filepath.Join(t.TempDir(), "nested", "snapshot.yaml")
	if _, err := executeCommand(t, "export", "--format", "yaml", "--out", outPath); err != nil {
		t.Fatalf("export yaml error = %v", err)
	}
	decoded, err := seed.LoadFile(outPath)
	if err != nil {
		t.Fatalf("seed.LoadFile() error = %v", err)
	}
	if len(decoded.Boards) != 2 {
		t.Fatalf("expected yaml export to round trip through the seed loader, got %d boards", len(decoded.Boards))
	}

	if _, err := executeCommand(t, "export", "--format", "xml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

// TestRunExportSaveWritesIntoExportDir verifies --save targets the per-user export dir.
func TestRunExportSaveWritesIntoExportDir(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(platform.DataDirEnv, dataDir)

	out, err := executeCommand(t, "export", "--format", "yml", "--save")
	if err != nil {
		t.Fatalf("export --save error = %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(dataDir, "exports", "snapshot-*.yaml"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one saved export, got %v (err %v)", matches, err)
	}
	if !strings.Contains(out, "wrote "+matches[0]) {
		t.Fatalf("expected saved path in output, got %q", out)
	}
	decoded, err := seed.LoadFile(matches[0])
	if err != nil {
		t.Fatalf("seed.LoadFile() error = %v", err)
	}
	if len(decoded.Boards) != 2 {
		t.Fatalf("expected saved export to load back, got %d boards", len(decoded.Boards))
	}

	if _, err := executeCommand(t, "export", "--save", "--out", "x.json"); err == nil {
		t.Fatal("expected --save and --out to be mutually exclusive")
	}
}

// TestRunColorsCommand verifies behavior for the covered scenario.
func TestRunColorsCommand(t *testing.T) {
	out, err := executeCommand(t, "colors")
	if err != nil {
		t.Fatalf("colors error = %v", err)
	}
	for _, entry := range tui.Palette() {
		if !strings.Contains(out, entry.Hex) {
			t.Fatalf("expected %q in palette output, got %q", entry.Hex, out)
		}
	}
}

// TestResolveSeedPathPrecedence verifies flag, env, config and per-user file ordering.
func TestResolveSeedPathPrecedence(t *testing.T) {
	dataDir := t.TempDir()
	paths, err := platform.Resolve(platform.Base{
		GOOS:      "linux",
		ConfigDir: t.TempDir(),
		DataDir:   t.TempDir(),
		Getenv:    func(name string) string { return map[string]string{platform.DataDirEnv: dataDir}[name] },
	}, platform.Options{DevMode: true})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	cfg := config.Default()

	if got := resolveSeedPath(rootOptions{}, paths, cfg); got != "" {
		t.Fatalf("expected built-in seed, got %q", got)
	}
	ymlSeed := filepath.Join(dataDir, "seed.yml")
	if err := os.WriteFile(ymlSeed, []byte("contacts: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := resolveSeedPath(rootOptions{}, paths, cfg); got != ymlSeed {
		t.Fatalf("expected per-user seed.yml, got %q", got)
	}
	userSeed := filepath.Join(dataDir, "seed.yaml")
	if err := os.WriteFile(userSeed, []byte("contacts: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := resolveSeedPath(rootOptions{}, paths, cfg); got != userSeed {
		t.Fatalf("expected per-user seed.yaml, got %q", got)
	}
	cfg.Seed.Path = "/cfg/seed.yaml"
	if got := resolveSeedPath(rootOptions{}, paths, cfg); got != "/cfg/seed.yaml" {
		t.Fatalf("expected config seed, got %q", got)
	}
	t.Setenv("PIPEDECK_SEED", "/env/seed.yaml")
	if got := resolveSeedPath(rootOptions{}, paths, cfg); got != "/env/seed.yaml" {
		t.Fatalf("expected env seed, got %q", got)
	}
	if got := resolveSeedPath(rootOptions{seedPath: "/flag/seed.yaml"}, paths, cfg); got != "/flag/seed.yaml" {
		t.Fatalf("expected flag seed, got %q", got)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("PIPEDECK_TEST_BOOL", "true")
	if v, ok := parseBoolEnv("PIPEDECK_TEST_BOOL"); !ok || !v {
		t.Fatalf("expected true, got %v %v", v, ok)
	}
	t.Setenv("PIPEDECK_TEST_BOOL", "maybe")
	if _, ok := parseBoolEnv("PIPEDECK_TEST_BOOL"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "pipedeck")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePathResolvesAgainstWorkspaceRoot verifies relative log dirs anchor at workspace root.
func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "pipedeck")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	got, err := devLogFilePath(".pipedeck/log", "pipe deck", time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	want := filepath.Join(root, ".pipedeck", "log", "pipe-deck-20261018.log")
	if normalize(got) != normalize(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies behavior for the covered scenario.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	logger, err := newRuntimeLogger(&console, "pipedeck", false, config.Default(), func() time.Time {
		return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.Debug("hidden")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log entries, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug events filtered at info level, got %q", out)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
