package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rudratech/blog-aggregator/internal/dedupe"
	"github.com/rudratech/blog-aggregator/internal/models"
)

// loadSnapshot reads the durable JSON snapshot. The file's modification time
// stands in for the last refresh instant on cold starts. A missing file is a
// plain cache miss, not a problem worth logging.
func (s *Store) loadSnapshot() ([]models.Post, time.Time, error) {
	info, err := os.Stat(s.snapshotPath)
	if err != nil {
		return nil, time.Time{}, err
	}

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		s.log.Warn("failed to read snapshot", slog.Any("err", err))
		return nil, time.Time{}, err
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.log.Warn("corrupt snapshot ignored", slog.Any("err", err))
		return nil, time.Time{}, err
	}

	return posts, info.ModTime(), nil
}

// snapshotByLink indexes the current snapshot by canonical link so freshly
// fetched posts can reuse already generated summaries.
func (s *Store) snapshotByLink() map[string]models.Post {
	posts, _, err := s.loadSnapshot()
	if err != nil {
		return nil
	}

	byLink := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byLink[dedupe.CanonicalURL(p.Link)] = p
	}
	return byLink
}

// saveSnapshot persists posts best-effort. Failures are logged and swallowed:
// the in-memory cache stays authoritative, and read-only filesystems are a
// normal deployment condition.
func (s *Store) saveSnapshot(posts []models.Post, log *slog.Logger) {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		log.Warn("could not marshal snapshot", slog.Any("err", err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		log.Warn("could not create snapshot dir", slog.Any("err", err))
		return
	}

	// Write-then-rename keeps readers from ever seeing a half-written file.
	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Warn("could not write snapshot", slog.Any("err", err))
		return
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		log.Warn("could not replace snapshot", slog.Any("err", err))
		return
	}

	log.Info("saved snapshot", slog.Int("count", len(posts)), slog.String("path", s.snapshotPath))
}
