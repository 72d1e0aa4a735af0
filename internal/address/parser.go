package address

import (
	"net/url"
	"strings"
)

// urlSchemes are the well-known remote-resource schemes handled by the
// built-in network fetch plugin. Anything else with :// is a registered
// protocol plugin's business.
var urlSchemes = []string{"http://", "https://", "ftp://", "ftps://", "s3://"}

// compressionSuffixes recognized on the base address, in match order.
var compressionSuffixes = []string{".gz", ".bz2", ".xz"}

// Parse parses base[~format][?parameters] into an Address.
//
// Classification order, first match wins: stdio, profile/plugin (@...),
// well-known URL scheme, scheme://, plain file or token. For protocol URLs
// the query string belongs to the URL itself; jn parameters only appear
// after a ~format override.
func Parse(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}, &ParseError{Input: raw, Reason: "address cannot be empty"}
	}

	isProtocolURL := strings.Contains(raw, "://")

	base := raw
	formatOverride := ""
	params := map[string]string{}

	if tIdx := strings.LastIndex(raw, "~"); tIdx >= 0 && overrideApplies(raw, tIdx, isProtocolURL) {
		base = raw[:tIdx]
		formatPart := raw[tIdx+1:]

		if qIdx := strings.Index(formatPart, "?"); qIdx >= 0 {
			var err error
			params, err = parseQuery(raw, formatPart[qIdx+1:])
			if err != nil {
				return Address{}, err
			}
			formatPart = formatPart[:qIdx]
		}
		if formatPart == "" {
			return Address{}, &ParseError{Input: raw, Offending: "~", Reason: "format override cannot be empty"}
		}

		// Shorthand variant: table.grid → format table + tablefmt=grid.
		if dot := strings.Index(formatPart, "."); dot >= 0 {
			formatOverride = formatPart[:dot]
			for k, v := range expandShorthand(formatOverride, formatPart[dot+1:]) {
				params[k] = v
			}
		} else {
			formatOverride = formatPart
		}
	} else if qIdx := strings.Index(raw, "?"); qIdx >= 0 && !isProtocolURL {
		var err error
		params, err = parseQuery(raw, raw[qIdx+1:])
		if err != nil {
			return Address{}, err
		}
		base = raw[:qIdx]
	}

	compression := ""
	for _, suffix := range compressionSuffixes {
		if strings.HasSuffix(base, suffix) {
			compression = suffix[1:]
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}

	addr := Address{
		Raw:            raw,
		Base:           base,
		Type:           classify(base),
		FormatOverride: formatOverride,
		Compression:    compression,
		Parameters:     params,
	}
	if err := validate(addr); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// overrideApplies reports whether the ~ at tIdx starts a format override.
// For non-protocol addresses a ~ after the first ? sits inside a parameter
// value and is left alone.
func overrideApplies(raw string, tIdx int, isProtocolURL bool) bool {
	if isProtocolURL {
		return true
	}
	qIdx := strings.Index(raw, "?")
	return qIdx < 0 || tIdx < qIdx
}

// expandShorthand maps format.variant shorthands to parameters. Only table
// variants expand today; other formats drop the variant.
func expandShorthand(format, variant string) map[string]string {
	if format == "table" {
		return map[string]string{"tablefmt": variant}
	}
	return nil
}

// parseQuery decodes key=value&key2=value2. Duplicate keys keep the last
// occurrence; a key without = maps to an empty string (present, not
// absent). Malformed percent-encoding is a ParseError naming the pair.
func parseQuery(input, query string) (map[string]string, error) {
	params := map[string]string{}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, &ParseError{Input: input, Offending: pair, Reason: "malformed parameter encoding"}
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, &ParseError{Input: input, Offending: pair, Reason: "malformed parameter encoding"}
		}
		params[k] = v
	}
	return params, nil
}

func classify(base string) Type {
	switch {
	case base == "-" || base == "stdin" || base == "stdout":
		return TypeStdio
	case strings.HasPrefix(base, "@"):
		if strings.Contains(base, "/") {
			return TypeProfile
		}
		return TypePlugin
	case isURL(base):
		return TypeURL
	case strings.Contains(base, "://"):
		return TypeProtocol
	default:
		return TypeFile
	}
}

// isURL reports whether base starts with a well-known remote scheme.
func isURL(base string) bool {
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(base, scheme) {
			return true
		}
	}
	return false
}

func validate(addr Address) error {
	if addr.Base == "" {
		return &ParseError{Input: addr.Raw, Reason: "base address cannot be empty"}
	}

	switch addr.Type {
	case TypeProfile:
		parts := strings.SplitN(strings.TrimPrefix(addr.Base, "@"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return &ParseError{Input: addr.Raw, Offending: addr.Base,
				Reason: "profile reference must be @namespace/leaf"}
		}
	case TypePlugin:
		if strings.TrimPrefix(addr.Base, "@") == "" {
			return &ParseError{Input: addr.Raw, Offending: addr.Base,
				Reason: "plugin name cannot be empty"}
		}
	case TypeProtocol:
		scheme, _, _ := strings.Cut(addr.Base, "://")
		if scheme == "" {
			return &ParseError{Input: addr.Raw, Offending: addr.Base,
				Reason: "protocol cannot be empty"}
		}
	}

	if addr.FormatOverride != "" {
		if strings.ContainsAny(addr.FormatOverride, "/@") {
			return &ParseError{Input: addr.Raw, Offending: addr.FormatOverride,
				Reason: "format names are simple identifiers like csv, json, table"}
		}
	}
	return nil
}
