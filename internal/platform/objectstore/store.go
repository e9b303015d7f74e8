package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrObjectNotFound is returned when a key has no stored object.
var ErrObjectNotFound = errors.New("object not found")

// Store persists large artifacts (clinical record blobs, attribution payloads)
// under an S3-style bucket/key layout. The backing filesystem is abstracted
// through afero so local disk and in-memory test stores share one code path.
type Store struct {
	fs     afero.Fs
	logger *slog.Logger
}

func NewLocal(root string, logger *slog.Logger) *Store {
	base := afero.NewBasePathFs(afero.NewOsFs(), root)
	return New(base, logger)
}

func NewInMemory(logger *slog.Logger) *Store {
	return New(afero.NewMemMapFs(), logger)
}

func New(backing afero.Fs, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		fs:     backing,
		logger: logger,
	}
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if dir := path.Dir(cleaned); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create object prefix %q: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, cleaned, data, 0o640); err != nil {
		return fmt.Errorf("write object %q: %w", cleaned, err)
	}
	s.logger.Info("object stored",
		"event", "objectstore_put",
		"module", "internal/platform/objectstore",
		"layer", "platform",
		"key", cleaned,
		"size", len(data),
	)
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, cleaned)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read object %q: %w", cleaned, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(cleaned); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("delete object %q: %w", cleaned, err)
	}
	return nil
}

// cleanKey rejects traversal outside the store root.
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(key, "/"))
	if trimmed == "" {
		return "", errors.New("object key is required")
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
