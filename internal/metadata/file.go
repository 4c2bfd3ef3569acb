package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// fileEntry accepts the legacy "fancyname" key next to "name"
type fileEntry struct {
	models.AppMeta
	FancyName string `json:"fancyname,omitempty"`
}

// LoadFile reads a JSON metadata cache keyed by application identifier
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read app metadata: %w", err)
	}

	var raw map[string]fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode app metadata %s: %w", path, err)
	}

	out := make(Snapshot, len(raw))
	for app, e := range raw {
		if e.Name == "" {
			e.Name = e.FancyName
		}
		out[app] = e.AppMeta
	}
	return out, nil
}

// SaveFile writes the snapshot as indented JSON, creating parent directories
func SaveFile(path string, s Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	data, err := json.MarshalIndent(map[string]models.AppMeta(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode app metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
