// Package address parses user-supplied address strings and resolves them
// to a handler plugin plus the configuration it needs to run.
//
// The address grammar is:
//
//	base[~format][?parameters]
//
// where base is a file path, a shell command, a URL, a @profile/leaf
// reference, or a bare @plugin name.
package address

import (
	"fmt"
	"sort"
	"strings"
)

// Type classifies an address for resolution strategy.
type Type string

const (
	// TypeFile is a filesystem path (the default).
	TypeFile Type = "file"
	// TypeURL is a remote resource behind a well-known URL scheme
	// (http, https, ftp, ftps, s3), fetched by the network plugin.
	TypeURL Type = "url"
	// TypeProtocol is scheme://resource for a registered protocol plugin.
	TypeProtocol Type = "protocol"
	// TypeProfile is @namespace/leaf, resolved through profile files.
	TypeProfile Type = "profile"
	// TypePlugin is @name, a direct plugin reference.
	TypePlugin Type = "plugin"
	// TypeStdio is "-" (or stdin/stdout).
	TypeStdio Type = "stdio"
)

// Address is the parsed form of a raw address string. Every raw string maps
// to exactly one Address or to a ParseError; there are no partial states.
type Address struct {
	// Raw is the original user input.
	Raw string `json:"raw"`

	// Base is the address without format override or jn parameters, e.g.
	// "file.csv", "https://example.com/d?x=1", "@svc/items", "-".
	Base string `json:"base"`

	// Type selects the resolution strategy.
	Type Type `json:"type"`

	// FormatOverride forces a specific format plugin, from the ~ operator.
	FormatOverride string `json:"format,omitempty"`

	// Compression is the detected compression suffix (gz, bz2, xz),
	// stripped from Base.
	Compression string `json:"compression,omitempty"`

	// Parameters are the ?key=value pairs. Duplicate keys keep the last
	// value; a bare key maps to an empty string, preserved so consumers
	// can check presence.
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Namespace returns the profile namespace for profile addresses
// ("@svc/items" → "svc").
func (a Address) Namespace() string {
	base := strings.TrimPrefix(a.Base, "@")
	if i := strings.Index(base, "/"); i >= 0 {
		return base[:i]
	}
	return base
}

// Leaf returns the sub-reference of a profile address ("@svc/items" →
// "items"), or empty.
func (a Address) Leaf() string {
	base := strings.TrimPrefix(a.Base, "@")
	if i := strings.Index(base, "/"); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// String reassembles a human-readable form of the address.
func (a Address) String() string {
	var b strings.Builder
	b.WriteString(a.Base)
	if a.Compression != "" {
		b.WriteString("." + a.Compression)
	}
	if a.FormatOverride != "" {
		b.WriteString("~" + a.FormatOverride)
	}
	if len(a.Parameters) > 0 {
		keys := make([]string, 0, len(a.Parameters))
		for k := range a.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k + "=" + a.Parameters[k])
		}
	}
	return b.String()
}

// ParseError reports malformed address syntax. It names the offending
// substring so callers can surface it verbatim.
type ParseError struct {
	Input     string
	Offending string
	Reason    string
}

func (e *ParseError) Error() string {
	if e.Offending != "" && e.Offending != e.Input {
		return fmt.Sprintf("invalid address %q: %s: %q", e.Input, e.Reason, e.Offending)
	}
	return fmt.Sprintf("invalid address %q: %s", e.Input, e.Reason)
}

// ResolvedTarget is a complete recipe for the process spawner: handler
// identity plus flat configuration, sufficient to construct an invocation
// without any resolution logic of its own.
type ResolvedTarget struct {
	Address    Address           `json:"address"`
	PluginName string            `json:"plugin"`
	PluginPath string            `json:"pluginPath,omitempty"`
	Config     map[string]any    `json:"config,omitempty"`
	URL        string            `json:"url,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Stage is one step of a planned pipeline execution.
type Stage struct {
	PluginName string            `json:"plugin"`
	PluginPath string            `json:"pluginPath,omitempty"`
	Mode       string            `json:"mode"` // fetch, decompress, read, or write
	Config     map[string]any    `json:"config,omitempty"`
	URL        string            `json:"url,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}
