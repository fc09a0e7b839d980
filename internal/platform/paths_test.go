package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// envMap adapts a fixed map to Base.Getenv.
func envMap(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestResolvePerOS(t *testing.T) {
	cases := []struct {
		name       string
		base       Base
		wantConfig string
		wantData   string
	}{
		{
			name: "linux honours xdg",
			base: Base{GOOS: "linux", ConfigDir: "/home/me/.config", DataDir: "/home/me/.local/share", Getenv: envMap(map[string]string{
				"XDG_CONFIG_HOME": "/xdg/config",
				"XDG_DATA_HOME":   "/xdg/data",
			})},
			wantConfig: filepath.Join("/xdg/config", "pipedeck", "config.toml"),
			wantData:   filepath.Join("/xdg/data", "pipedeck"),
		},
		{
			name:       "linux without xdg",
			base:       Base{GOOS: "linux", ConfigDir: "/home/me/.config", DataDir: "/home/me/.local/share"},
			wantConfig: filepath.Join("/home/me/.config", "pipedeck", "config.toml"),
			wantData:   filepath.Join("/home/me/.local/share", "pipedeck"),
		},
		{
			name: "windows uses appdata",
			base: Base{GOOS: "windows", ConfigDir: `C:\fallback\config`, DataDir: `C:\fallback\data`, Getenv: envMap(map[string]string{
				"APPDATA":      `C:\Users\me\AppData\Roaming`,
				"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
			})},
			wantConfig: filepath.Join(`C:\Users\me\AppData\Roaming`, "pipedeck", "config.toml"),
			wantData:   filepath.Join(`C:\Users\me\AppData\Local`, "pipedeck"),
		},
		{
			name: "darwin ignores xdg",
			base: Base{GOOS: "darwin", ConfigDir: "/Users/me/Library/Application Support", DataDir: "/Users/me/Library/Application Support", Getenv: envMap(map[string]string{
				"XDG_CONFIG_HOME": "/ignored",
			})},
			wantConfig: filepath.Join("/Users/me/Library/Application Support", "pipedeck", "config.toml"),
			wantData:   filepath.Join("/Users/me/Library/Application Support", "pipedeck"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Resolve(tc.base, Options{})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if p.ConfigPath != tc.wantConfig || p.DataDir != tc.wantData {
				t.Fatalf("unexpected paths config=%q data=%q", p.ConfigPath, p.DataDir)
			}
			want := []string{filepath.Join(tc.wantData, "seed.yaml"), filepath.Join(tc.wantData, "seed.yml")}
			if diff := cmp.Diff(want, p.SeedCandidates); diff != "" {
				t.Fatalf("unexpected seed candidates (-want +got):\n%s", diff)
			}
			if p.SeedPath != want[0] || p.ExportDir != filepath.Join(tc.wantData, "exports") {
				t.Fatalf("unexpected seed/export paths %#v", p)
			}
		})
	}
}

func TestResolveDataDirOverride(t *testing.T) {
	base := Base{GOOS: "linux", ConfigDir: "/cfg", DataDir: "/data", Getenv: envMap(map[string]string{
		"XDG_DATA_HOME": "/xdg/data",
		DataDirEnv:      "/srv/pipedeck/../deck",
	})}
	p, err := Resolve(base, Options{DevMode: true})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.DataDir != filepath.Clean("/srv/deck") {
		t.Fatalf("expected override data dir, got %q", p.DataDir)
	}
	if p.SeedPath != filepath.Join("/srv/deck", "seed.yaml") {
		t.Fatalf("expected seed under override, got %q", p.SeedPath)
	}
	if p.ConfigPath != filepath.Join("/cfg", "pipedeck-dev", "config.toml") {
		t.Fatalf("expected config to keep the dev app dir, got %q", p.ConfigPath)
	}
}

func TestResolveDevModeAndAppName(t *testing.T) {
	base := Base{GOOS: "freebsd", ConfigDir: "/cfg", DataDir: "/data"}
	p, err := Resolve(base, Options{AppName: " deck ", DevMode: true})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.ConfigPath != filepath.Join("/cfg", "deck-dev", "config.toml") || p.DataDir != filepath.Join("/data", "deck-dev") {
		t.Fatalf("unexpected dev paths %#v", p)
	}
	if got := AppDirName(Options{}); got != "pipedeck" {
		t.Fatalf("expected default app dir, got %q", got)
	}
	if _, err := Resolve(Base{GOOS: "darwin", DataDir: "/data"}, Options{}); err == nil {
		t.Fatal("expected error for empty config base")
	}
}

func TestFindSeedPrefersYAMLThenYML(t *testing.T) {
	dir := t.TempDir()
	p, err := Resolve(Base{GOOS: "linux", ConfigDir: dir, DataDir: dir, Getenv: envMap(map[string]string{DataDirEnv: dir})}, Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := p.FindSeed(); ok {
		t.Fatal("expected no seed in an empty dir")
	}

	yml := filepath.Join(dir, "seed.yml")
	if err := os.WriteFile(yml, []byte("contacts: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got, ok := p.FindSeed(); !ok || got != yml {
		t.Fatalf("expected seed.yml, got %q ok=%t", got, ok)
	}

	yaml := filepath.Join(dir, "seed.yaml")
	if err := os.Mkdir(yaml, 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if got, _ := p.FindSeed(); got != yml {
		t.Fatalf("expected a directory named seed.yaml to be skipped, got %q", got)
	}
	if err := os.Remove(yaml); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := os.WriteFile(yaml, []byte("contacts: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got, _ := p.FindSeed(); got != yaml {
		t.Fatalf("expected seed.yaml to win, got %q", got)
	}
}

func TestExportFile(t *testing.T) {
	p := Paths{ExportDir: "/data/pipedeck/exports"}
	now := time.Date(2026, 10, 18, 15, 4, 5, 0, time.FixedZone("CEST", 2*60*60))
	cases := map[string]string{
		"":     "snapshot-20261018-130405.json",
		"JSON": "snapshot-20261018-130405.json",
		"yml":  "snapshot-20261018-130405.yaml",
		"yaml": "snapshot-20261018-130405.yaml",
	}
	for format, want := range cases {
		if got := p.ExportFile(format, now); got != filepath.Join("/data/pipedeck/exports", want) {
			t.Fatalf("ExportFile(%q) = %q", format, got)
		}
	}
}

func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	t.Setenv(DataDirEnv, "")
	p, err := DefaultPathsWithOptions(Options{DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "pipedeck-dev" || filepath.Base(p.DataDir) != "pipedeck-dev" {
		t.Fatalf("expected dev app dirs, got %#v", p)
	}
}
