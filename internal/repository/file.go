package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type fileSlot struct {
	path string
}

// NewFileSlot stores the slot as <dir>/<slot>.json.
func NewFileSlot(dir, slot string) SlotRepository {
	return &fileSlot{path: filepath.Join(dir, slot+".json")}
}

func (s *fileSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read slot file %s: %w", s.path, err)
	}
	return data, nil
}

// Save writes to a temp file and renames it over the slot so readers never
// observe a partial write.
func (s *fileSlot) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create slot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp slot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write slot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close slot file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace slot file %s: %w", s.path, err)
	}
	return nil
}

func (s *fileSlot) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
