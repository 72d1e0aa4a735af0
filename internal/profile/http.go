package profile

import (
	"net/url"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// HTTPDescriptor is the protocol-specific output of HTTP profile
// resolution: everything the external HTTP client needs to issue the
// request.
type HTTPDescriptor struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ResolveHTTP resolves an @namespace/leaf reference into a request
// descriptor. The container's _meta.json supplies connection info
// (base_url, headers); the leaf supplies the path template and parameter
// schema. Resolution is deterministic: same reference, environment, and
// disk state always yield the same descriptor.
func (r *Resolver) ResolveHTTP(namespace, leaf string, params map[string]string) (*HTTPDescriptor, error) {
	merged, err := r.load(KindHTTP, namespace, leaf, true)
	if err != nil {
		return nil, err
	}

	substituted, err := SubstituteEnv(merged, r.env)
	if err != nil {
		return nil, err
	}
	merged = substituted.(map[string]any)

	params = validateParams(refString(namespace, leaf), merged, params)

	baseURL := strings.TrimSuffix(stringField(merged, "base_url"), "/")
	path := stringField(merged, "path")

	// Interpolate {name} segments in the path template; interpolated
	// parameters are consumed and do not reappear in the query string.
	remaining := make(map[string]string, len(params))
	for k, v := range params {
		remaining[k] = v
	}
	for name, value := range params {
		placeholder := "{" + name + "}"
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
			delete(remaining, name)
		}
	}

	full := baseURL
	if path != "" {
		full = baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if len(remaining) > 0 {
		full += "?" + encodeQuery(remaining)
	}

	return &HTTPDescriptor{
		URL:     full,
		Method:  stringField(merged, "method"),
		Headers: stringMapField(merged, "headers"),
	}, nil
}

// validateParams checks supplied parameters against the profile's declared
// schema, when one exists. Unknown parameters are dropped with a non-fatal
// warning listing the unsupported names and the supported set; resolution
// proceeds with the known ones.
func validateParams(ref string, def map[string]any, params map[string]string) map[string]string {
	declared, ok := def["params"].([]any)
	if !ok || len(params) == 0 {
		return params
	}

	allowed := make(map[string]bool, len(declared))
	supported := make([]string, 0, len(declared))
	for _, p := range declared {
		if s, ok := p.(string); ok {
			allowed[s] = true
			supported = append(supported, s)
		}
	}

	known := make(map[string]string, len(params))
	var unknown []string
	for k, v := range params {
		if allowed[k] {
			known[k] = v
		} else {
			unknown = append(unknown, k)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		sort.Strings(supported)
		logrus.WithField("profile", ref).Warnf(
			"unsupported parameters: %s (supported: %s)",
			strings.Join(unknown, ", "), strings.Join(supported, ", "))
	}
	return known
}

// encodeQuery builds a query string with sorted keys so descriptors are
// reproducible.
func encodeQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func refString(namespace, leaf string) string {
	if leaf == "" {
		return "@" + namespace
	}
	return "@" + namespace + "/" + leaf
}

func stringField(def map[string]any, key string) string {
	s, _ := def[key].(string)
	return s
}

func stringMapField(def map[string]any, key string) map[string]string {
	raw, ok := def[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
