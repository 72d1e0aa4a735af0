package plugin

import (
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"
)

// Registry maps compiled match patterns to plugin names. It is a pure
// function of a metadata set: build it once per discovery scan and treat
// it as read-only afterwards (safe for concurrent readers).
type Registry struct {
	patterns []patternEntry
}

type patternEntry struct {
	re     *regexp.Regexp
	source string // pattern source text; its length is the specificity
	owner  string
	kind   Kind
}

// BuildRegistry flattens every plugin's declared patterns into a single
// match list. Patterns that fail to compile are logged and skipped; a bad
// pattern never aborts the build.
//
// Patterns are ordered by source-text length, longest first, so the first
// match is the most specific one. This is a deliberate heuristic: the
// literal pattern string length, not the match length.
func BuildRegistry(plugins map[string]Metadata) *Registry {
	r := &Registry{}
	for _, name := range Names(plugins) {
		meta := plugins[name]
		for _, pat := range meta.Matches {
			re, err := regexp.Compile(pat)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"plugin":  name,
					"pattern": pat,
				}).WithError(err).Warn("invalid match pattern, skipping")
				continue
			}
			r.patterns = append(r.patterns, patternEntry{
				re:     re,
				source: pat,
				owner:  name,
				kind:   meta.Kind,
			})
		}
	}

	// Stable ordering: specificity descending, then owner and source text
	// so registry builds never depend on map iteration order.
	sort.SliceStable(r.patterns, func(i, j int) bool {
		pi, pj := r.patterns[i], r.patterns[j]
		if len(pi.source) != len(pj.source) {
			return len(pi.source) > len(pj.source)
		}
		if pi.owner != pj.owner {
			return pi.owner < pj.owner
		}
		return pi.source < pj.source
	})
	return r
}

// Match returns the owning plugin of the most specific pattern matching
// candidate, or ok=false when nothing handles it. "No match" is a result,
// not an error; fallback behavior belongs to the caller.
func (r *Registry) Match(candidate string) (string, bool) {
	for _, p := range r.patterns {
		if p.re.MatchString(candidate) {
			return p.owner, true
		}
	}
	return "", false
}

// MatchKind behaves like Match but only considers plugins of the given kind.
func (r *Registry) MatchKind(candidate string, kind Kind) (string, bool) {
	for _, p := range r.patterns {
		if p.kind != kind {
			continue
		}
		if p.re.MatchString(candidate) {
			return p.owner, true
		}
	}
	return "", false
}

// PlanRead returns an ordered list of plugin names to read a source.
//
// When a raw-capable protocol plugin and a format plugin both match the
// source (e.g. an https URL ending in .csv), the plan is a two-stage
// [protocol, format] pipeline. Otherwise it is the single best match, or
// empty when nothing handles the source.
func (r *Registry) PlanRead(source string, plugins map[string]Metadata) []string {
	proto, protoOK := r.MatchKind(source, KindProtocol)
	format, formatOK := r.MatchKind(source, KindSource)

	if protoOK && formatOK {
		if meta, ok := plugins[proto]; ok && meta.Raw {
			return []string{proto, format}
		}
	}

	if single, ok := r.Match(source); ok {
		return []string{single}
	}
	return nil
}
