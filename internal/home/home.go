// Package home resolves where jn looks for plugins, profiles, and its
// discovery cache. It only computes paths; it never touches the filesystem,
// so a path it returns may not exist yet.
package home

import (
	"os"
	"path/filepath"
)

const (
	// EnvHome overrides the jn home directory when set.
	EnvHome = "JN_HOME"

	projectDirName = ".jn"
	pluginsDirName = "plugins"
	profileDirName = "profiles"
	cacheFileName  = "cache.json"
)

// Paths holds the resolved locations for plugin discovery, profile lookup,
// and cache persistence.
type Paths struct {
	// HomeDir is the explicit jn home, or empty when falling back to the
	// user config directory.
	HomeDir string

	// PluginDir is where custom plugins are discovered.
	PluginDir string

	// ProfilesDir is the user-level profile root (per-kind subdirectories
	// live beneath it).
	ProfilesDir string

	// CachePath is the discovery cache file. Empty disables persistence.
	CachePath string
}

// Resolve determines the jn home paths.
//
// Precedence, highest first:
//  1. explicit (the --home flag)
//  2. $JN_HOME
//  3. $XDG_CONFIG_HOME/jn, or ~/.config/jn
//
// Missing directories are not an error; discovery simply finds no custom
// plugins there and falls back to bundled defaults.
func Resolve(explicit string) Paths {
	if explicit != "" {
		return pathsUnder(explicit, explicit)
	}

	if env := os.Getenv(EnvHome); env != "" {
		return pathsUnder(env, env)
	}

	// User config directory. No explicit home concept here, so HomeDir
	// stays empty to signal "defaulted".
	return pathsUnder("", userConfigHome())
}

// ProjectDir returns the project-local jn directory (.jn/ under dir).
// Project profiles live there.
func ProjectDir(dir string) string {
	return filepath.Join(dir, projectDirName)
}

func pathsUnder(homeDir, root string) Paths {
	return Paths{
		HomeDir:     homeDir,
		PluginDir:   filepath.Join(root, pluginsDirName),
		ProfilesDir: filepath.Join(root, profileDirName),
		CachePath:   filepath.Join(root, cacheFileName),
	}
}

func userConfigHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jn")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory at all; resolve relative to the working
		// directory so discovery degrades to an empty scan.
		return projectDirName
	}
	return filepath.Join(home, ".config", "jn")
}
