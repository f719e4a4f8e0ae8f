// Package cache stores repository snapshots and derived analysis records on
// disk, keyed by repository identity and bounded by a single process-wide
// TTL.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

const (
	snapshotsDirName = "repos"
	metadataDirName  = "metadata"

	// FieldAnalysis and FieldOutdated are the metadata fields merged into
	// the same record as the snapshot, each stamped independently.
	FieldAnalysis = "analysis"
	FieldOutdated = "outdated_packages"
)

// Stats summarizes the cache directory at one point in time.
type Stats struct {
	Total       int           `json:"total"`
	Valid       int           `json:"valid"`
	Expired     int           `json:"expired"`
	BytesOnDisk int64         `json:"bytes_on_disk"`
	TTL         time.Duration `json:"ttl"`
}

// fieldRecord is one derived value with its own timestamp.
type fieldRecord struct {
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

// record is the metadata document co-located with an optional snapshot.
// Writers mutate it; readers only check timestamps.
type record struct {
	Identity     string                 `json:"identity"`
	CachedAt     time.Time              `json:"cached_at"`
	SnapshotPath string                 `json:"repo_snapshot_path,omitempty"`
	Fields       map[string]fieldRecord `json:"fields,omitempty"`
}

// Cache is the on-disk artifact cache. Snapshots live under repos/ and
// metadata documents under metadata/, sharing an identity-derived file stem.
type Cache struct {
	snapshotsDir string
	metadataDir  string
	ttl          time.Duration
	now          func() time.Time
}

// New creates the cache rooted at dir, creating the layout if needed. The
// TTL applies uniformly to every entry.
func New(dir string, ttl time.Duration) (*Cache, error) {
	it := &Cache{
		snapshotsDir: filepath.Join(dir, snapshotsDirName),
		metadataDir:  filepath.Join(dir, metadataDirName),
		ttl:          ttl,
		now:          time.Now,
	}

	for _, sub := range []string{it.snapshotsDir, it.metadataDir} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %q: %w", sub, err)
		}
	}
	return it, nil
}

// NewFromSettings creates the cache configured by the application settings.
func NewFromSettings(settings *entities.Settings) (*Cache, error) {
	return New(settings.Cache.Dir, time.Duration(settings.Cache.TTLHours)*time.Hour)
}

// TTL returns the configured validity window.
func (it *Cache) TTL() time.Duration { return it.ttl }

// GetSnapshot returns the snapshot path for the identity when the record is
// fresh and the tree still exists on disk. Expired and missing entries are
// indistinguishable to the caller.
func (it *Cache) GetSnapshot(identity entities.RepositoryIdentity) (string, bool) {
	rec, err := it.readRecord(identity)
	if err != nil || rec.SnapshotPath == "" {
		return "", false
	}
	if !it.fresh(rec.CachedAt) {
		return "", false
	}
	if _, statErr := os.Stat(rec.SnapshotPath); statErr != nil {
		return "", false
	}
	return rec.SnapshotPath, true
}

// PutSnapshot copies sourcePath into the cache and replaces any prior
// snapshot for the identity. The copy lands in a temporary directory first
// and is renamed into place, so readers in this process never observe a
// partial tree.
func (it *Cache) PutSnapshot(identity entities.RepositoryIdentity, sourcePath string) error {
	stem := identity.FileStem()
	finalPath := filepath.Join(it.snapshotsDir, stem)

	tempPath, err := os.MkdirTemp(it.snapshotsDir, "."+stem+"-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	if copyErr := os.CopyFS(tempPath, os.DirFS(sourcePath)); copyErr != nil {
		_ = os.RemoveAll(tempPath)
		return fmt.Errorf("failed to copy snapshot for %q: %w", identity.String(), copyErr)
	}

	if removeErr := os.RemoveAll(finalPath); removeErr != nil {
		_ = os.RemoveAll(tempPath)
		return fmt.Errorf("failed to drop previous snapshot for %q: %w", identity.String(), removeErr)
	}
	if renameErr := os.Rename(tempPath, finalPath); renameErr != nil {
		_ = os.RemoveAll(tempPath)
		return fmt.Errorf("failed to publish snapshot for %q: %w", identity.String(), renameErr)
	}

	rec, err := it.readRecord(identity)
	if err != nil {
		rec = record{Identity: identity.String()}
	}
	rec.CachedAt = it.now()
	rec.SnapshotPath = finalPath

	logger.Debugf("Cached snapshot for '%s' at '%s'", identity.String(), finalPath)
	return it.writeRecord(identity, rec)
}

// GetRecord returns the named derived field when its own timestamp is still
// within the TTL.
func (it *Cache) GetRecord(identity entities.RepositoryIdentity, field string) (json.RawMessage, bool) {
	rec, err := it.readRecord(identity)
	if err != nil {
		return nil, false
	}
	entry, ok := rec.Fields[field]
	if !ok || !it.fresh(entry.CachedAt) {
		return nil, false
	}
	return entry.Value, true
}

// PutRecord merges the named derived field into the identity's metadata
// record, stamping only that field.
func (it *Cache) PutRecord(identity entities.RepositoryIdentity, field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q record for %q: %w", field, identity.String(), err)
	}

	rec, readErr := it.readRecord(identity)
	if readErr != nil {
		rec = record{Identity: identity.String()}
	}
	if rec.Fields == nil {
		rec.Fields = make(map[string]fieldRecord)
	}
	rec.Fields[field] = fieldRecord{CachedAt: it.now(), Value: raw}

	return it.writeRecord(identity, rec)
}

// Invalidate removes the metadata record and snapshot. Missing keys are not
// an error.
func (it *Cache) Invalidate(identity entities.RepositoryIdentity) error {
	stem := identity.FileStem()
	if err := os.RemoveAll(filepath.Join(it.snapshotsDir, stem)); err != nil {
		return fmt.Errorf("failed to remove snapshot for %q: %w", identity.String(), err)
	}
	if err := os.Remove(it.metadataPath(identity)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove metadata for %q: %w", identity.String(), err)
	}
	return nil
}

// SweepExpired removes every record whose newest timestamp has aged out,
// snapshots included, and returns how many were removed.
func (it *Cache) SweepExpired() (int, error) {
	return it.sweep(false)
}

// SweepAll removes every record and snapshot regardless of age.
func (it *Cache) SweepAll() (int, error) {
	return it.sweep(true)
}

func (it *Cache) sweep(all bool) (int, error) {
	entries, err := os.ReadDir(it.metadataDir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan metadata directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(it.metadataDir, entry.Name())
		rec, readErr := readRecordFile(path)
		if readErr != nil {
			logger.Warnf("Removing unreadable cache record '%s': %s", path, readErr)
			_ = os.Remove(path)
			continue
		}
		if !all && it.fresh(latestTimestamp(rec)) {
			continue
		}

		if rec.SnapshotPath != "" {
			_ = os.RemoveAll(rec.SnapshotPath)
		}
		if removeErr := os.Remove(path); removeErr != nil {
			return removed, fmt.Errorf("failed to remove expired record %q: %w", path, removeErr)
		}
		removed++
	}

	if removed > 0 {
		logger.Infof("Swept %d expired cache entries", removed)
	}
	return removed, nil
}

// Stats walks the cache layout and reports entry counts and disk usage.
func (it *Cache) Stats() (Stats, error) {
	stats := Stats{TTL: it.ttl}

	entries, err := os.ReadDir(it.metadataDir)
	if err != nil {
		return stats, fmt.Errorf("failed to scan metadata directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		stats.Total++

		rec, readErr := readRecordFile(filepath.Join(it.metadataDir, entry.Name()))
		if readErr != nil || !it.fresh(latestTimestamp(rec)) {
			stats.Expired++
			continue
		}
		stats.Valid++
	}

	for _, dir := range []string{it.snapshotsDir, it.metadataDir} {
		walkErr := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil //nolint:nilerr // best-effort size accounting
			}
			if info, infoErr := d.Info(); infoErr == nil {
				stats.BytesOnDisk += info.Size()
			}
			return nil
		})
		if walkErr != nil {
			return stats, fmt.Errorf("failed to walk cache directory %q: %w", dir, walkErr)
		}
	}

	return stats, nil
}

func (it *Cache) fresh(cachedAt time.Time) bool {
	return !cachedAt.IsZero() && it.now().Before(cachedAt.Add(it.ttl))
}

func (it *Cache) metadataPath(identity entities.RepositoryIdentity) string {
	return filepath.Join(it.metadataDir, identity.FileStem()+".json")
}

func (it *Cache) readRecord(identity entities.RepositoryIdentity) (record, error) {
	return readRecordFile(it.metadataPath(identity))
}

func (it *Cache) writeRecord(identity entities.RepositoryIdentity, rec record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %q: %w", identity.String(), err)
	}
	if writeErr := os.WriteFile(it.metadataPath(identity), raw, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write metadata for %q: %w", identity.String(), writeErr)
	}
	return nil
}

func readRecordFile(path string) (record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return record{}, fmt.Errorf("failed to read cache record: %w", err)
	}
	var rec record
	if unmarshalErr := json.Unmarshal(raw, &rec); unmarshalErr != nil {
		return record{}, fmt.Errorf("failed to decode cache record %q: %w", path, unmarshalErr)
	}
	return rec, nil
}

// latestTimestamp is the newest stamp across the snapshot and every derived
// field, used for whole-record expiry.
func latestTimestamp(rec record) time.Time {
	latest := rec.CachedAt
	for _, field := range rec.Fields {
		if field.CachedAt.After(latest) {
			latest = field.CachedAt
		}
	}
	return latest
}
