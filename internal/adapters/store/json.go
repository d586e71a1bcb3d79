package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// LoadJSON reads a JSON document into v. A missing file is not an error; v is
// left untouched so callers start from their zero value.
func LoadJSON(path string, v any) error {
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		err = fmt.Errorf("error reading %s: %w", path, err)
		log.Error().Err(err).Send()
		return err
	}

	if err := json.Unmarshal(buf, v); err != nil {
		err = fmt.Errorf("error decoding %s: %w", path, err)
		log.Error().Err(err).Send()
		return err
	}

	return nil
}

// SaveJSON writes v as indented JSON, creating parent directories as needed.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating data dir: %w", err)
	}

	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		err = fmt.Errorf("error writing %s: %w", path, err)
		log.Error().Err(err).Send()
		return err
	}

	return nil
}
