package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"evsys/event-api/internal/model"
)

// Local stores objects on disk under a configured root directory. URLs are
// "/media/<key>" paths the HTTP layer can serve directly.
type Local struct {
	Root      string
	URLPrefix string
}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("storage.local_path can't be empty")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root, %w", err)
	}

	return &Local{Root: root, URLPrefix: "/media/"}, nil
}

func (l *Local) Store(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	dst := path.Join(l.Root, key)

	if err := os.MkdirAll(path.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory, %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create object file, %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write object file, %w", err)
	}

	return l.URLPrefix + key, nil
}

func (l *Local) Delete(_ context.Context, url string) error {
	err := os.Remove(l.diskPath(url))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object file, %w", err)
	}

	return nil
}

func (l *Local) Rename(_ context.Context, url, newName string) (string, error) {
	oldPath := l.diskPath(url)
	newPath := path.Join(path.Dir(oldPath), newName)

	if _, err := os.Stat(oldPath); err == nil {
		if err := os.Rename(oldPath, newPath); err != nil {
			return "", fmt.Errorf("failed to rename object file, %w", err)
		}
	}

	key := strings.TrimPrefix(url, l.URLPrefix)
	return l.URLPrefix + path.Join(path.Dir(key), newName), nil
}

func (l *Local) Provider() model.StorageProvider {
	return model.StorageProviderLocal
}

func (l *Local) diskPath(url string) string {
	return path.Join(l.Root, strings.TrimPrefix(url, l.URLPrefix))
}
