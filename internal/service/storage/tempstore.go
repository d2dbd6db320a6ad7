package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lpservice/internal/config"
	"lpservice/internal/logger"
)

// TempStore holds uploaded images on disk for the duration of one recognition
// call. Files that outlive their call are removed by the sweeper once they are
// older than the configured TTL. Only files named with the temp_ prefix are
// ever swept; anything else in the upload directory is left alone.
type TempStore struct {
	dir      string
	ttl      time.Duration
	interval time.Duration
	mu       sync.Mutex
	logger   *logger.Logger
}

// NewTempStore creates a store rooted at the configured upload directory,
// using TempFileTTL as the file lifetime and TempSweepInterval as the sweep
// cadence. The directory is created lazily by Save, so construction never
// fails.
func NewTempStore(config *config.Config, logger *logger.Logger) *TempStore {
	return &TempStore{
		dir:      config.UploadDirectory,
		ttl:      config.TempFileTTL,
		interval: config.TempSweepInterval,
		logger:   logger,
	}
}

// Save writes data to a new uniquely named file with extension ext and
// returns its path.
func (s *TempStore) Save(data []byte, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("error creating upload directory: %w", err)
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	filename := fmt.Sprintf("temp_%s.%s", uuid.NewString(), ext)
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("error saving %s: %w", filename, err)
	}
	return path, nil
}

// Remove deletes a file created by Save. Missing files are not an error.
func (s *TempStore) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warning("Could not remove temp file %s: %v", path, err)
	}
}

// Run sweeps expired files every sweep interval until ctx is done. A
// non-positive interval disables sweeping and Run returns immediately.
func (s *TempStore) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Warning("Temp file sweeping disabled: interval %v", s.interval)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep removes temp files last modified before now minus the TTL and returns
// how many were removed.
func (s *TempStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("Error reading upload directory: %v", err)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "temp_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || now.Sub(info.ModTime()) < s.ttl {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Error("Error removing expired file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Swept %d expired temp files", removed)
	}
	return removed
}
