package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

const cacheVersion = "1"

// cacheFile is the persisted discovery cache. Plugin paths are stored
// relative to the plugin directory so the cache survives the directory
// being moved.
type cacheFile struct {
	Version string              `json:"version"`
	Plugins map[string]Metadata `json:"plugins"`
}

// loadCache reads the persisted cache. Any problem (missing file, corrupt
// JSON, version mismatch) degrades to an empty cache; staleness handling is
// the stamp comparison's job, never partial reuse of a broken file.
func loadCache(cachePath string) cacheFile {
	empty := cacheFile{Version: cacheVersion, Plugins: map[string]Metadata{}}
	if cachePath == "" {
		return empty
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return empty
	}
	var c cacheFile
	if err := json.Unmarshal(data, &c); err != nil || c.Version != cacheVersion {
		return empty
	}
	if c.Plugins == nil {
		c.Plugins = map[string]Metadata{}
	}
	return c
}

// saveCache persists the cache atomically (write temp, then rename).
// Persistence is best-effort: a failure is logged, never propagated.
func saveCache(cachePath string, c cacheFile) {
	if cachePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		logrus.WithField("path", cachePath).WithError(err).Warn("cannot create cache directory")
		return
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		logrus.WithError(err).Warn("cannot marshal plugin cache")
		return
	}
	data = append(data, '\n')

	tmpPath := cachePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		logrus.WithField("path", tmpPath).WithError(err).Warn("cannot write plugin cache")
		return
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		_ = os.Remove(tmpPath)
		logrus.WithField("path", cachePath).WithError(err).Warn("cannot replace plugin cache")
	}
}

// DiscoverCached behaves like Discover but reuses the persisted cache for
// files whose identity stamp is unchanged, re-parsing only on mismatch.
// With an empty cachePath it degrades to an always-fresh scan without
// persistence.
func DiscoverCached(pluginDir, cachePath string) (map[string]Metadata, error) {
	files, err := scanFiles(pluginDir)
	if err != nil {
		return nil, err
	}

	cache := loadCache(cachePath)
	result := make(map[string]Metadata, len(files))
	dirty := false

	for _, c := range files {
		if cached, ok := cache.Plugins[c.name]; ok && cached.Stamp == c.stamp && cached.Path == c.relPath {
			cached.Path = filepath.Join(pluginDir, cached.Path)
			result[c.name] = cached
			continue
		}
		result[c.name] = parseCandidate(c)
		dirty = true
	}

	// Entries for files that vanished also invalidate the stored cache.
	for name := range cache.Plugins {
		if _, ok := result[name]; !ok {
			dirty = true
			break
		}
	}

	if dirty && cachePath != "" {
		next := cacheFile{Version: cacheVersion, Plugins: make(map[string]Metadata, len(result))}
		for name, meta := range result {
			rel, err := filepath.Rel(pluginDir, meta.Path)
			if err != nil {
				rel = meta.Path
			}
			meta.Path = rel
			next.Plugins[name] = meta
		}
		saveCache(cachePath, next)
	}

	return result, nil
}

// ClearCache removes the persisted discovery cache.
func ClearCache(cachePath string) error {
	if cachePath == "" {
		return nil
	}
	err := os.Remove(cachePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Names returns the plugin names in sorted order, for stable listings and
// error messages.
func Names(plugins map[string]Metadata) []string {
	names := make([]string, 0, len(plugins))
	for name := range plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
