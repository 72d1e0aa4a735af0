package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

const envFileName = ".env.jn"

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// EnvSource resolves environment variable values for profile substitution.
// Precedence: process env > project .env.jn > global .env.jn.
type EnvSource struct {
	project map[string]string
	global  map[string]string
}

// NewEnvSource loads the optional env files for projectDir and homeDir.
// Missing or unreadable files simply contribute nothing.
func NewEnvSource(projectDir, homeDir string) *EnvSource {
	s := &EnvSource{}
	if projectDir != "" {
		s.project, _ = godotenv.Read(filepath.Join(projectDir, envFileName))
	}
	if homeDir != "" {
		s.global, _ = godotenv.Read(filepath.Join(homeDir, envFileName))
	}
	return s
}

// Lookup resolves a variable name through the precedence chain.
func (s *EnvSource) Lookup(name string) (string, bool) {
	if val, ok := os.LookupEnv(name); ok {
		return val, true
	}
	if val, ok := s.project[name]; ok {
		return val, true
	}
	if val, ok := s.global[name]; ok {
		return val, true
	}
	return "", false
}

// SubstituteEnv replaces every ${VAR} placeholder in value with the
// variable's value from src. It walks the entire structure: strings, nested
// maps, and nested lists. An unset variable is a hard error naming it.
func SubstituteEnv(value any, src *EnvSource) (any, error) {
	switch v := value.(type) {
	case string:
		return substituteString(v, src)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			sub, err := SubstituteEnv(item, src)
			if err != nil {
				return nil, err
			}
			out[k] = sub
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			sub, err := SubstituteEnv(item, src)
			if err != nil {
				return nil, err
			}
			out[i] = sub
		}
		return out, nil
	default:
		return value, nil
	}
}

func substituteString(s string, src *EnvSource) (string, error) {
	var missing string
	result := envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		name := envPlaceholder.FindStringSubmatch(m)[1]
		val, ok := src.Lookup(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return val
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnvVar, missing)
	}
	return result, nil
}
