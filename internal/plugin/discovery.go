package plugin

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// candidate is a plugin file found during a directory scan, before its
// metadata block has been read.
type candidate struct {
	name    string
	absPath string
	relPath string
	stamp   Stamp
}

// scanFiles enumerates plugin files under pluginDir without reading their
// contents. Hidden entries, cache directories, and test files are skipped.
// A missing directory yields an empty result; any other directory error is
// surfaced to the caller.
func scanFiles(pluginDir string) ([]candidate, error) {
	if pluginDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(pluginDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading plugin directory: %w", err)
	}

	var found []candidate
	err := filepath.WalkDir(pluginDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == pluginDir {
				return fmt.Errorf("reading plugin directory: %w", err)
			}
			logrus.WithField("path", path).WithError(err).Warn("skipping unreadable entry")
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != pluginDir && (strings.HasPrefix(name, ".") || name == "cache" || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || isTestFile(name) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logrus.WithField("path", path).WithError(err).Warn("skipping unstattable file")
			return nil
		}
		rel, err := filepath.Rel(pluginDir, path)
		if err != nil {
			rel = name
		}

		found = append(found, candidate{
			name:    pluginName(name),
			absPath: path,
			relPath: rel,
			stamp:   Stamp{Size: info.Size(), ModTime: info.ModTime().UnixNano()},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Merge deterministically by name regardless of walk order: later
	// entries in sorted relative-path order win on name collisions.
	sort.Slice(found, func(i, j int) bool { return found[i].relPath < found[j].relPath })
	return found, nil
}

// Discover scans pluginDir and parses the metadata block of every plugin
// file. Per-file problems are logged and swallowed; the plugin is still
// listed with empty metadata so callers can report "exists, but declares
// no routing patterns". Only an inaccessible (but existing) directory is
// fatal.
func Discover(pluginDir string) (map[string]Metadata, error) {
	files, err := scanFiles(pluginDir)
	if err != nil {
		return nil, err
	}

	plugins := make(map[string]Metadata, len(files))
	for _, c := range files {
		plugins[c.name] = parseCandidate(c)
	}
	return plugins, nil
}

// parseCandidate builds Metadata for one plugin file, tolerating every
// per-file failure mode.
func parseCandidate(c candidate) Metadata {
	meta := Metadata{
		Name:  c.name,
		Path:  c.absPath,
		Stamp: c.stamp,
	}

	block, ok, err := parseMetaBlock(c.absPath)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"plugin": c.name,
			"path":   c.absPath,
		}).WithError(err).Warn("malformed plugin metadata, continuing with empty metadata")
	}
	if ok && err == nil {
		meta.Matches = block.Matches
		meta.Kind = block.Kind
		meta.Capabilities = block.Capabilities
		meta.Dependencies = block.Dependencies
		meta.Requires = block.Requires
		meta.Raw = block.Raw
	}
	if meta.Kind == "" {
		meta.Kind = inferKind(c.relPath)
	}
	return meta
}

// DiscoverAll overlays cached custom plugins on top of the bundled builtin
// set. Custom plugins win on name collisions. Either directory may be
// missing or empty.
func DiscoverAll(builtinDir, pluginDir, cachePath string) (map[string]Metadata, error) {
	result, err := Discover(builtinDir)
	if err != nil {
		return nil, err
	}
	custom, err := DiscoverCached(pluginDir, cachePath)
	if err != nil {
		return nil, err
	}
	for name, meta := range custom {
		result[name] = meta
	}
	return result, nil
}

// pluginName derives the plugin name from its file name (stem without
// extension).
func pluginName(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isTestFile(name string) bool {
	stem := pluginName(name)
	return strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test")
}

// inferKind guesses a plugin's kind from its directory when the metadata
// block didn't declare one.
func inferKind(relPath string) Kind {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		switch part {
		case "protocols", "shell", "databases":
			return KindProtocol
		case "filters":
			return KindFilter
		case "viewers":
			return KindViewer
		case "formats", "sources", "compression":
			return KindSource
		case "targets":
			return KindTarget
		}
	}
	return ""
}
