package profile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Summary describes one profile reference for introspection commands.
type Summary struct {
	Ref         string `json:"ref"`  // "@namespace" or "@namespace/leaf"
	Kind        string `json:"kind"` // http or mcp
	Description string `json:"description,omitempty"`
	Path        string `json:"path"` // file backing the entry
}

// List enumerates every resolvable profile reference across the search
// path. Higher-priority roots shadow lower ones: a namespace defined in the
// project root hides the same namespace further down, matching how
// resolution picks the first existing directory.
func (r *Resolver) List() []Summary {
	var out []Summary
	for _, kind := range []string{KindHTTP, KindMCP} {
		seen := map[string]bool{}
		for _, root := range r.roots {
			kindDir := filepath.Join(root, kind)
			entries, err := os.ReadDir(kindDir)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if !entry.IsDir() || seen[entry.Name()] {
					continue
				}
				seen[entry.Name()] = true
				out = append(out, summarizeNamespace(kind, filepath.Join(kindDir, entry.Name()), entry.Name())...)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}

// summarizeNamespace lists the container reference plus one entry per leaf
// definition. Unparseable files still get an entry (without description) so
// `jn profiles` shows everything that exists on disk.
func summarizeNamespace(kind, dir, namespace string) []Summary {
	var out []Summary

	metaPath := filepath.Join(dir, metaFileName)
	container := Summary{Ref: "@" + namespace, Kind: kind, Path: metaPath}
	if meta, err := readDefinition(metaPath); err == nil && meta != nil {
		container.Description = stringField(meta, "description")
	}
	out = append(out, container)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == metaFileName || !strings.HasSuffix(name, ".json") {
			continue
		}
		leaf := strings.TrimSuffix(name, ".json")
		s := Summary{
			Ref:  "@" + namespace + "/" + leaf,
			Kind: kind,
			Path: filepath.Join(dir, name),
		}
		if def, err := readDefinition(s.Path); err == nil && def != nil {
			s.Description = stringField(def, "description")
		}
		out = append(out, s)
	}
	return out
}
