package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/utils"
)

// ErrEmptyKey is returned by Put when the key has nothing left to store under.
var ErrEmptyKey = errors.New("storage: empty object key")

// FolderStatus is the outcome of EnsureFolder.
type FolderStatus string

const (
	FolderCreated FolderStatus = "created"
	FolderSkipped FolderStatus = "skipped"
	FolderFailed  FolderStatus = "failed"
)

// FolderResult reports what EnsureFolder did. Err is set only for FolderFailed.
type FolderResult struct {
	Status FolderStatus
	Key    string
	Err    error
}

// Storage is the backend chosen once at startup. All upload, delete and folder
// operations go through it.
type Storage interface {
	Driver() Driver
	// ObjectKey returns the key the next Put should use for an upload.
	ObjectKey(folder, originalName, desiredBaseName string) string
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object addressed by a URL or key. It returns false, nil when
	// nothing resolvable was given.
	Delete(ctx context.Context, urlOrKey string) (bool, error)
	PublicURL(key string) string
	EnsureFolder(ctx context.Context, folder string) FolderResult
}

// New builds the backend SelectDriver picks for cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch SelectDriver(cfg) {
	case DriverS3:
		s, err := NewS3(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		utils.Logger.Info("media storage ready",
			zap.String("driver", string(DriverS3)),
			zap.String("bucket", cfg.Bucket),
			zap.String("prefix", s.Prefix()))
		return s, nil
	default:
		l, err := NewLocal(cfg)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		utils.Logger.Info("media storage ready",
			zap.String("driver", string(DriverLocal)),
			zap.String("dir", l.Dir()))
		return l, nil
	}
}

// DeleteImage removes an image without ever failing the caller. Backend errors are logged
// and reported as false.
func DeleteImage(ctx context.Context, store Storage, urlOrKey string) bool {
	ok, err := store.Delete(ctx, urlOrKey)
	if err != nil {
		utils.Logger.Error("delete image failed",
			zap.String("driver", string(store.Driver())),
			zap.String("target", urlOrKey),
			zap.Error(err))
		return false
	}
	return ok
}
