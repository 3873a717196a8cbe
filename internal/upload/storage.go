// Package upload keeps parsed uploads on local disk between the upload
// request and the apply request.
package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"calcdash/internal"
	"calcdash/ports"
)

const blobExt = ".json"

// LocalTempStore implements TempStore using the local filesystem. Each blob
// is a file named after its token; blobs older than the TTL read as absent.
type LocalTempStore struct {
	basePath string
	ttl      time.Duration
	now      func() time.Time
	logger   *internal.Logger
}

var _ ports.TempStore = (*LocalTempStore)(nil)

// NewLocalTempStore creates a new local temp store
func NewLocalTempStore(basePath string, ttl time.Duration, logger *internal.Logger) (*LocalTempStore, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LocalTempStore{
		basePath: basePath,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With("TempStore"),
	}, nil
}

// Put stores data under a fresh token
func (s *LocalTempStore) Put(ctx context.Context, data []byte) (string, error) {
	token := uuid.NewString()
	path := s.tokenToPath(token)

	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to store temp file: %w", err)
	}

	s.logger.Debug("stored %d bytes under %s", len(data), token)
	return token, nil
}

// Get returns the data stored under token. Malformed tokens are treated as
// unknown so they can never address files outside the store.
func (s *LocalTempStore) Get(ctx context.Context, token string) ([]byte, bool, error) {
	if !validToken(token) {
		return nil, false, nil
	}
	path := s.tokenToPath(token)

	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat temp file: %w", err)
	}
	if s.expired(stat.ModTime()) {
		s.logger.Debug("temp blob %s expired", token)
		os.Remove(path)
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read temp file: %w", err)
	}
	return data, true, nil
}

// Delete removes the data stored under token
func (s *LocalTempStore) Delete(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	if err := os.Remove(s.tokenToPath(token)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete temp file: %w", err)
	}
	return nil
}

// Cleanup removes expired blobs and returns how many were deleted
func (s *LocalTempStore) Cleanup(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list temp directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), blobExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !s.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove expired file %s: %w", entry.Name(), err)
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed %d expired uploads", removed)
	}
	return removed, nil
}

// RunCleanup calls Cleanup every interval until ctx is done
func (s *LocalTempStore) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Cleanup(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("temp cleanup failed: %v", err)
			}
		}
	}
}

func (s *LocalTempStore) expired(modTime time.Time) bool {
	return s.ttl > 0 && s.now().Sub(modTime) > s.ttl
}

func (s *LocalTempStore) tokenToPath(token string) string {
	return filepath.Join(s.basePath, token+blobExt)
}

func validToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil && len(token) == 36
}
