package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tally-dev/tally/internal/model"
)

// Save writes the assembled records to dir, named after batch. Returns the path written.
func Save(dir string, batch, records []model.Record, source model.Institution) (string, error) {
	name, err := Filename(batch, source)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteRecords(f, records); err != nil {
		return "", fmt.Errorf("writing export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export %s: %w", path, err)
	}
	return path, nil
}
