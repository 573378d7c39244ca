package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("checkpoint not found")

// Store persists one checkpoint per character id.
type Store interface {
	Load(ctx context.Context, id string) (Checkpoint, error)
	Save(ctx context.Context, id string, cp Checkpoint) error
}

// FileStore keeps each checkpoint in its own JSON file under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("checkpoint: bad id %q", id)
	}
	return filepath.Join(s.Dir, id+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, id string) (Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return Checkpoint{}, err
	}
	p, err := s.path(id)
	if err != nil {
		return Checkpoint{}, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Checkpoint{}, fmt.Errorf("checkpoint: load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: load %s: %w", id, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(b, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: decode %s: %w", p, err)
	}
	return cp, nil
}

func (s *FileStore) Save(ctx context.Context, id string, cp Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", id, err)
	}

	b, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: encode %s: %w", id, err)
	}

	// write then rename so a crash never leaves half a file behind
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", id, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", id, err)
	}
	return nil
}
