package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deifrati/api/config"
)

// LocalURLPrefix is where the router serves the uploads directory.
const LocalURLPrefix = "/uploads/"

// LocalStorage writes uploads into a flat directory served at /uploads/. It has no notion
// of folders or desired names.
type LocalStorage struct {
	dir  string
	Now  func() time.Time
	Rand func() int64
}

// NewLocal creates the uploads directory if needed.
func NewLocal(cfg config.StorageConfig) (*LocalStorage, error) {
	dir := cfg.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir, Now: time.Now, Rand: randomSuffix}, nil
}

func (l *LocalStorage) Driver() Driver { return DriverLocal }

// Dir is the directory files are written to.
func (l *LocalStorage) Dir() string { return l.dir }

// ObjectKey ignores folder and desiredBaseName. The extension keeps its original case.
func (l *LocalStorage) ObjectKey(_, originalName, _ string) string {
	return fmt.Sprintf("%d-%d%s", l.Now().UnixMilli(), l.Rand(), ExtName(originalName))
}

func (l *LocalStorage) PublicURL(key string) string {
	return LocalURLPrefix + strings.TrimLeft(key, "/")
}

func (l *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + key))
	if name == "/" || name == "." {
		return "", fmt.Errorf("local file name %q: %w", key, ErrEmptyKey)
	}

	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return l.PublicURL(name), nil
}

// Delete leaves local files in place and always reports success.
func (l *LocalStorage) Delete(context.Context, string) (bool, error) {
	return true, nil
}

func (l *LocalStorage) EnsureFolder(context.Context, string) FolderResult {
	return FolderResult{Status: FolderSkipped}
}
