package profile

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRef splits a profile reference of the form @namespace[/leaf][?params]
// into its parts. Duplicate parameter keys keep the last value; a bare key
// maps to an empty string value, preserved so consumers can test presence.
func ParseRef(ref string) (namespace, leaf string, params map[string]string, err error) {
	if !strings.HasPrefix(ref, "@") {
		return "", "", nil, fmt.Errorf("invalid profile reference (must start with @): %s", ref)
	}

	rest := ref[1:]
	params = map[string]string{}
	if i := strings.Index(rest, "?"); i >= 0 {
		params, err = parseQuery(rest[i+1:])
		if err != nil {
			return "", "", nil, err
		}
		rest = rest[:i]
	}

	namespace = rest
	if i := strings.Index(rest, "/"); i >= 0 {
		namespace, leaf = rest[:i], rest[i+1:]
	}
	if namespace == "" {
		return "", "", nil, fmt.Errorf("profile namespace cannot be empty: %s", ref)
	}
	return namespace, leaf, params, nil
}

// parseQuery decodes key=value&key2=value2 pairs. Later duplicates win.
func parseQuery(query string) (map[string]string, error) {
	params := map[string]string{}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("malformed parameter encoding: %s", pair)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("malformed parameter encoding: %s", pair)
		}
		params[k] = v
	}
	return params, nil
}
