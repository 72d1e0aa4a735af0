package home

import (
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Run("explicit option wins over everything", func(t *testing.T) {
		t.Setenv(EnvHome, "/env/home")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")

		paths := Resolve("/explicit")

		if paths.HomeDir != "/explicit" {
			t.Errorf("HomeDir = %q, want %q", paths.HomeDir, "/explicit")
		}
		if paths.PluginDir != filepath.Join("/explicit", "plugins") {
			t.Errorf("PluginDir = %q", paths.PluginDir)
		}
		if paths.CachePath != filepath.Join("/explicit", "cache.json") {
			t.Errorf("CachePath = %q", paths.CachePath)
		}
	})

	t.Run("env var used when no explicit option", func(t *testing.T) {
		t.Setenv(EnvHome, "/env/home")

		paths := Resolve("")

		if paths.HomeDir != "/env/home" {
			t.Errorf("HomeDir = %q, want %q", paths.HomeDir, "/env/home")
		}
		if paths.ProfilesDir != filepath.Join("/env/home", "profiles") {
			t.Errorf("ProfilesDir = %q", paths.ProfilesDir)
		}
	})

	t.Run("falls back to XDG config dir", func(t *testing.T) {
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")

		paths := Resolve("")

		if paths.HomeDir != "" {
			t.Errorf("HomeDir = %q, want empty for defaulted home", paths.HomeDir)
		}
		want := filepath.Join("/xdg", "jn", "plugins")
		if paths.PluginDir != want {
			t.Errorf("PluginDir = %q, want %q", paths.PluginDir, want)
		}
	})

	t.Run("falls back to ~/.config/jn without XDG", func(t *testing.T) {
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/users/alice")

		paths := Resolve("")

		want := filepath.Join("/users/alice", ".config", "jn", "cache.json")
		if paths.CachePath != want {
			t.Errorf("CachePath = %q, want %q", paths.CachePath, want)
		}
	})
}

func TestProjectDir(t *testing.T) {
	got := ProjectDir("/work/repo")
	want := filepath.Join("/work/repo", ".jn")
	if got != want {
		t.Errorf("ProjectDir = %q, want %q", got, want)
	}
}
