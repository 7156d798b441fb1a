package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which Local files are served.
const URLPrefix = "/uploads/"

// Local keeps uploaded images on disk.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Dir() string { return l.dir }

// Save writes data under a fresh random name and returns its public URL.
func (l *Local) Save(_ context.Context, ext, _ string, data []byte) (string, error) {
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return URLPrefix + name, nil
}
