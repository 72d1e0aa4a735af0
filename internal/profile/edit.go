package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefinitionFile locates the file backing a profile reference: the leaf
// definition when a leaf is given, otherwise the container's _meta.json.
func (r *Resolver) DefinitionFile(kind, namespace, leaf string) (string, error) {
	dir, ok := r.namespaceDir(kind, namespace)
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, kind, namespace)
	}
	if leaf == "" {
		return filepath.Join(dir, metaFileName), nil
	}
	path := filepath.Join(dir, leaf+".json")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s/%s/%s", ErrNotFound, kind, namespace, leaf)
	}
	return path, nil
}

// GetValue reads a single value from a profile file by gjson path, e.g.
// "headers.Authorization" or "params.0". Comments and trailing commas in
// the file are tolerated.
func GetValue(path, keyPath string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading profile: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, path, err)
	}
	result := gjson.GetBytes(std, keyPath)
	if !result.Exists() {
		return "", fmt.Errorf("key not found: %s", keyPath)
	}
	return result.String(), nil
}

// SetValue updates a single value in a profile file by sjson path. The
// patch is applied to the document as written, so comments and formatting
// around the edit survive; the file is replaced atomically.
func SetValue(path, keyPath, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}
	// Validity check up front so a broken file errors instead of being
	// half-patched. Standardize mutates its input in place, so it gets a
	// copy; the patch below must see the document as written.
	if _, err := hujson.Standardize(bytes.Clone(data)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, path, err)
	}

	updated, err := sjson.SetBytes(data, keyPath, value)
	if err != nil {
		return fmt.Errorf("updating %s: %w", keyPath, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, updated, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
