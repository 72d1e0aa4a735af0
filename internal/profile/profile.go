// Package profile loads hierarchical on-disk profile definitions for remote
// services (HTTP APIs and MCP servers), substitutes environment variables,
// validates parameters, and emits protocol-specific descriptors.
//
// Unlike plugin discovery, profile problems are hard failures: profiles
// encode user-trusted connection details, so a malformed definition or a
// missing environment variable aborts resolution with a specific message.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/jn-cli/jn/internal/home"
)

// Profile kinds, each with its own subdirectory under a profile root.
const (
	KindHTTP = "http"
	KindMCP  = "mcp"
)

const metaFileName = "_meta.json"

var (
	// ErrNotFound means no profile root contains the referenced namespace
	// (or the referenced leaf where the kind requires it).
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidDefinition means a profile file exists but cannot be
	// parsed. Never silently downgraded to empty metadata.
	ErrInvalidDefinition = errors.New("invalid profile definition")

	// ErrMissingEnvVar means a ${VAR} placeholder references an unset
	// environment variable.
	ErrMissingEnvVar = errors.New("environment variable not set")
)

// Resolver locates and loads profiles across an ordered list of roots:
// project-local first, then user-level, then bundled. The first root that
// contains the namespace directory wins.
type Resolver struct {
	roots []string // each root contains <kind>/<namespace>/ subdirectories
	env   *EnvSource
}

// NewResolver builds a Resolver for the given home paths and working
// directory. bundledDir may be empty when no bundled profiles ship with the
// installation.
func NewResolver(paths home.Paths, workDir, bundledDir string) *Resolver {
	roots := []string{
		filepath.Join(home.ProjectDir(workDir), "profiles"),
		paths.ProfilesDir,
	}
	if bundledDir != "" {
		roots = append(roots, bundledDir)
	}
	return &Resolver{
		roots: roots,
		env:   NewEnvSource(workDir, paths.HomeDir),
	}
}

// namespaceDir returns the first existing directory for kind/namespace
// across the search path, or ok=false when no root has it.
func (r *Resolver) namespaceDir(kind, namespace string) (string, bool) {
	for _, root := range r.roots {
		dir := filepath.Join(root, kind, namespace)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// HasNamespace reports whether any profile root defines the namespace for
// the given kind. Used by address resolution to route @refs.
func (r *Resolver) HasNamespace(kind, namespace string) bool {
	_, ok := r.namespaceDir(kind, namespace)
	return ok
}

// load merges the container metadata with an optional leaf definition.
// Merge order is always container-then-leaf (leaf wins on conflict), never
// directory enumeration order. requireLeaf makes a missing leaf a hard
// error (HTTP semantics); MCP tolerates it because tools may be dynamic.
func (r *Resolver) load(kind, namespace, leaf string, requireLeaf bool) (map[string]any, error) {
	dir, ok := r.namespaceDir(kind, namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, namespace)
	}

	meta, err := readDefinition(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s/%s has no %s", ErrNotFound, kind, namespace, metaFileName)
	}

	if leaf == "" {
		return meta, nil
	}

	leafDef, err := readDefinition(filepath.Join(dir, leaf+".json"))
	if err != nil {
		return nil, err
	}
	if leafDef == nil {
		if requireLeaf {
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrNotFound, kind, namespace, leaf)
		}
		return meta, nil
	}

	return deepMerge(meta, leafDef), nil
}

// readDefinition parses one profile file. Files are JWCC (JSON with commas
// and comments); hujson standardizes them before decoding. A missing file
// returns nil, nil; a malformed file is a hard error naming the file.
func readDefinition(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidDefinition, path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, path, err)
	}

	var def map[string]any
	if err := json.Unmarshal(std, &def); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, path, err)
	}
	return def, nil
}

// deepMerge merges overlay onto base. Nested maps merge key-by-key with
// overlay winning on conflicts; everything else (including lists) is
// replaced wholesale. Neither input is mutated.
func deepMerge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if bm, ok := out[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				out[k] = deepMerge(bm, om)
				continue
			}
		}
		out[k] = v
	}
	return out
}
