package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

// writePlugin writes a plugin file with a metadata block to dir.
func writePlugin(t *testing.T, dir, name, block string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "#!/usr/bin/env python3\n" + block + "\nprint('hi')\n"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

const csvBlock = `# --- jn
# matches:
#   - '.*\.csv$'
# kind: source
# capabilities: [read, write]
# dependencies: [pandas]
# ---`

func TestDiscover(t *testing.T) {
	t.Run("parses metadata block", func(t *testing.T) {
		dir := t.TempDir()
		writePlugin(t, dir, "csv_.py", csvBlock)

		plugins, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}

		meta, ok := plugins["csv_"]
		if !ok {
			t.Fatalf("plugin csv_ not discovered; got %v", Names(plugins))
		}
		if len(meta.Matches) != 1 || meta.Matches[0] != `.*\.csv$` {
			t.Errorf("Matches = %v", meta.Matches)
		}
		if meta.Kind != KindSource {
			t.Errorf("Kind = %q, want %q", meta.Kind, KindSource)
		}
		if !meta.HasCapability("read") || !meta.HasCapability("write") {
			t.Errorf("Capabilities = %v", meta.Capabilities)
		}
		if len(meta.Dependencies) != 1 || meta.Dependencies[0] != "pandas" {
			t.Errorf("Dependencies = %v", meta.Dependencies)
		}
	})

	t.Run("missing directory yields empty result", func(t *testing.T) {
		plugins, err := Discover(filepath.Join(t.TempDir(), "nope"))
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(plugins) != 0 {
			t.Errorf("got %d plugins, want 0", len(plugins))
		}
	})

	t.Run("file without metadata block still listed", func(t *testing.T) {
		dir := t.TempDir()
		writePlugin(t, dir, "bare.py", "")

		plugins, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		meta, ok := plugins["bare"]
		if !ok {
			t.Fatal("plugin bare not discovered")
		}
		if len(meta.Matches) != 0 {
			t.Errorf("Matches = %v, want empty", meta.Matches)
		}
	})

	t.Run("binary file never aborts the scan", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "native"), []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0xff}, 0o755); err != nil {
			t.Fatal(err)
		}
		writePlugin(t, dir, "csv_.py", csvBlock)

		plugins, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if _, ok := plugins["native"]; !ok {
			t.Error("binary plugin not listed")
		}
		if len(plugins["native"].Matches) != 0 {
			t.Errorf("binary Matches = %v, want empty", plugins["native"].Matches)
		}
		if _, ok := plugins["csv_"]; !ok {
			t.Error("scan stopped before csv_")
		}
	})

	t.Run("corrupt metadata block yields empty metadata", func(t *testing.T) {
		dir := t.TempDir()
		writePlugin(t, dir, "broken.py", "# --- jn\n# matches: [unclosed\n# ---")

		plugins, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		meta, ok := plugins["broken"]
		if !ok {
			t.Fatal("plugin broken not discovered")
		}
		if len(meta.Matches) != 0 {
			t.Errorf("Matches = %v, want empty", meta.Matches)
		}
	})

	t.Run("skips hidden and test files", func(t *testing.T) {
		dir := t.TempDir()
		writePlugin(t, dir, ".hidden.py", csvBlock)
		writePlugin(t, dir, "test_csv.py", csvBlock)
		writePlugin(t, dir, "csv_test.py", csvBlock)
		writePlugin(t, filepath.Join(dir, ".git"), "hooks.py", csvBlock)
		writePlugin(t, filepath.Join(dir, "__pycache__"), "csv_.py", csvBlock)

		plugins, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(plugins) != 0 {
			t.Errorf("got plugins %v, want none", Names(plugins))
		}
	})

	t.Run("infers kind from directory", func(t *testing.T) {
		dir := t.TempDir()
		writePlugin(t, filepath.Join(dir, "protocols"), "http_.py", "")
		writePlugin(t, filepath.Join(dir, "filters"), "jq_.py", "")

		plugins, err := Discover(dir)
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if plugins["http_"].Kind != KindProtocol {
			t.Errorf("http_ Kind = %q", plugins["http_"].Kind)
		}
		if plugins["jq_"].Kind != KindFilter {
			t.Errorf("jq_ Kind = %q", plugins["jq_"].Kind)
		}
	})
}

func TestDiscoverAll(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()
	writePlugin(t, builtin, "csv_.py", csvBlock)
	writePlugin(t, builtin, "json_.py", "")
	writePlugin(t, custom, "csv_.py", "# --- jn\n# matches:\n#   - '.*\\.tsv$'\n# ---")

	plugins, err := DiscoverAll(builtin, custom, "")
	if err != nil {
		t.Fatalf("DiscoverAll() error = %v", err)
	}
	if len(plugins) != 2 {
		t.Fatalf("got %d plugins, want 2", len(plugins))
	}
	// Custom plugin overrides the builtin of the same name.
	if got := plugins["csv_"].Matches; len(got) != 1 || got[0] != `.*\.tsv$` {
		t.Errorf("csv_ Matches = %v, want custom override", got)
	}
}
