package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DataDirEnv replaces the per-user data directory outright when set.
const DataDirEnv = "PIPEDECK_DATA_DIR"

const defaultAppName = "pipedeck"

// seedFileNames lists the user seed names accepted in the data dir, in lookup order.
var seedFileNames = []string{"seed.yaml", "seed.yml"}

// Paths holds the per-user locations pipedeck reads and writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	// SeedPath is the preferred user seed location; SeedCandidates holds every accepted name.
	SeedPath       string
	SeedCandidates []string
	ExportDir      string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// Base is the OS-level starting point that Paths are derived from.
type Base struct {
	GOOS      string
	ConfigDir string
	DataDir   string
	Getenv    func(string) string
}

// DefaultPathsWithOptions resolves paths against the current host.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	base, err := HostBase()
	if err != nil {
		return Paths{}, err
	}
	return Resolve(base, opts)
}

// HostBase reads the user config and data dirs of the running OS.
func HostBase() (Base, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Base{}, fmt.Errorf("user config dir: %w", err)
	}
	base := Base{GOOS: runtime.GOOS, ConfigDir: configDir, DataDir: configDir, Getenv: os.Getenv}
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return Base{}, fmt.Errorf("user home dir: %w", err)
		}
		base.DataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			base.DataDir = v
		}
	}
	return base, nil
}

// AppDirName returns the directory name for opts; dev mode keeps its files apart.
func AppDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = defaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

// Resolve derives app paths from base. XDG vars apply on linux and APPDATA/LOCALAPPDATA on
// windows. PIPEDECK_DATA_DIR wins over both and is used as given, without the app dir name.
func Resolve(base Base, opts Options) (Paths, error) {
	if base.ConfigDir == "" || base.DataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	getenv := base.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := func(name string) string { return strings.TrimSpace(getenv(name)) }

	configBase, dataBase := base.ConfigDir, base.DataDir
	switch base.GOOS {
	case "linux":
		configBase = firstNonEmpty(env("XDG_CONFIG_HOME"), configBase)
		dataBase = firstNonEmpty(env("XDG_DATA_HOME"), dataBase)
	case "windows":
		configBase = firstNonEmpty(env("APPDATA"), configBase)
		dataBase = firstNonEmpty(env("LOCALAPPDATA"), dataBase)
	}

	appDir := AppDirName(opts)
	dataDir := filepath.Join(dataBase, appDir)
	if override := env(DataDirEnv); override != "" {
		dataDir = filepath.Clean(override)
	}

	candidates := make([]string, 0, len(seedFileNames))
	for _, name := range seedFileNames {
		candidates = append(candidates, filepath.Join(dataDir, name))
	}
	return Paths{
		ConfigPath:     filepath.Join(configBase, appDir, "config.toml"),
		DataDir:        dataDir,
		SeedPath:       candidates[0],
		SeedCandidates: candidates,
		ExportDir:      filepath.Join(dataDir, "exports"),
	}, nil
}

// FindSeed returns the first seed candidate that exists as a regular file.
func (p Paths) FindSeed() (string, bool) {
	for _, path := range p.SeedCandidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// ExportFile names a timestamped export in ExportDir, e.g. snapshot-20261018-150405.json.
func (p Paths) ExportFile(format string, now time.Time) string {
	ext := strings.ToLower(strings.TrimSpace(format))
	switch ext {
	case "", "json":
		ext = "json"
	case "yml":
		ext = "yaml"
	}
	return filepath.Join(p.ExportDir, "snapshot-"+now.UTC().Format("20060102-150405")+"."+ext)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
