// Package seed provides the sample data pipedeck starts from.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hylla/pipedeck/internal/app"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in sample data.
func Default() (app.Snapshot, error) {
	snap, err := Decode(defaultYAML)
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("decode built-in seed: %w", err)
	}
	return snap, nil
}

// Decode parses one YAML seed document. Unknown keys are rejected.
func Decode(raw []byte) (app.Snapshot, error) {
	var snap app.Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		return app.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return app.Snapshot{}, err
	}
	return snap, nil
}

// LoadFile reads a YAML seed file. Sections the file omits fall back to the built-in data;
// the sample conversation is kept only when contacts fall back too.
func LoadFile(path string) (app.Snapshot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("read seed file %q: %w", path, err)
	}
	snap, err := Decode(raw)
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("decode seed file %q: %w", path, err)
	}
	defaults, err := Default()
	if err != nil {
		return app.Snapshot{}, err
	}
	return merge(snap, defaults), nil
}

// merge fills empty sections of snap from defaults.
func merge(snap, defaults app.Snapshot) app.Snapshot {
	if snap.Version == "" {
		snap.Version = app.SnapshotVersion
	}
	if len(snap.Boards) == 0 {
		snap.Boards = defaults.Boards
	}
	if len(snap.Contacts) == 0 {
		snap.Contacts = defaults.Contacts
		if len(snap.Messages) == 0 {
			snap.Messages = defaults.Messages
		}
	}
	if len(snap.Accounts) == 0 {
		snap.Accounts = defaults.Accounts
	}
	if len(snap.Activity) == 0 {
		snap.Activity = defaults.Activity
	}
	return snap
}
