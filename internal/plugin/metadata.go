// Package plugin discovers plugin files, parses their embedded metadata
// blocks, and builds the pattern registry that routes addresses to plugins.
// It has zero UI dependencies and is independently testable.
package plugin

import (
	"bufio"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind classifies what a plugin does.
type Kind string

const (
	KindSource   Kind = "source"
	KindTarget   Kind = "target"
	KindFilter   Kind = "filter"
	KindProtocol Kind = "protocol"
	KindViewer   Kind = "viewer"
)

// Stamp is a cheap file identity proxy used for cache invalidation.
// A cache entry is valid only while the stored stamp equals the file's
// current stamp.
type Stamp struct {
	Size    int64 `json:"size"`
	ModTime int64 `json:"mtime"` // Unix nanoseconds
}

// Metadata describes one discovered plugin file. Instances are immutable
// once built; a changed file produces a new Metadata, never a mutation.
type Metadata struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"` // absolute; relative inside the cache file
	Matches      []string `json:"matches,omitempty"`
	Kind         Kind     `json:"kind,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Requires     string   `json:"requires,omitempty"` // minimum runtime version
	Raw          bool     `json:"raw,omitempty"`      // supports raw byte streaming
	Stamp        Stamp    `json:"stamp"`
}

// HasCapability reports whether the plugin declared the given function name.
func (m Metadata) HasCapability(name string) bool {
	for _, c := range m.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

const (
	metaBlockOpen  = "# --- jn"
	metaBlockClose = "# ---"
)

// metaBlock is the declarative header parsed from a plugin file.
// Every field is optional; absence means "no patterns / unknown kind /
// no capabilities".
type metaBlock struct {
	Matches      []string `yaml:"matches"`
	Kind         Kind     `yaml:"kind"`
	Capabilities []string `yaml:"capabilities"`
	Dependencies []string `yaml:"dependencies"`
	Requires     string   `yaml:"requires"`
	Raw          bool     `yaml:"raw"`
}

// parseMetaBlock extracts the comment-framed metadata block from a plugin
// file. The block looks like:
//
//	# --- jn
//	# matches:
//	#   - '.*\.csv$'
//	# kind: source
//	# capabilities: [read, write]
//	# ---
//
// Returns ok=false when the file has no block. A present but malformed
// block returns an error so the caller can warn; either way the plugin
// still exists, just with empty metadata.
func parseMetaBlock(path string) (metaBlock, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return metaBlock{}, false, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Look for the opening marker. Binary garbage simply never matches.
	inBlock := false
	var body strings.Builder
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if !inBlock {
			if line == metaBlockOpen {
				inBlock = true
			}
			continue
		}
		if line == metaBlockClose {
			var block metaBlock
			if err := yaml.Unmarshal([]byte(body.String()), &block); err != nil {
				return metaBlock{}, false, err
			}
			return block, true, nil
		}
		if !strings.HasPrefix(line, "#") {
			// Block never closed properly; treat as absent.
			return metaBlock{}, false, nil
		}
		body.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "#"), " "))
		body.WriteString("\n")
	}
	// Scanner errors (oversized lines, non-text content) mean no metadata,
	// not a failed discovery.
	return metaBlock{}, false, nil
}
