package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a state document, e.g. a seed file or an exported backup.
func LoadFile(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	st := NewState()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	st.normalize()
	return st, nil
}

// WriteFile exports st as indented JSON.
func WriteFile(path string, st *State) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}
