package plugin

import (
	"reflect"
	"testing"
)

func metaWith(name string, kind Kind, raw bool, patterns ...string) Metadata {
	return Metadata{Name: name, Path: "/plugins/" + name, Kind: kind, Raw: raw, Matches: patterns}
}

func TestRegistryMatch(t *testing.T) {
	t.Run("single pattern routes to its plugin", func(t *testing.T) {
		r := BuildRegistry(map[string]Metadata{
			"csv_":  metaWith("csv_", KindSource, false, `.*\.csv$`),
			"json_": metaWith("json_", KindSource, false, `.*\.json$`),
		})

		name, ok := r.Match("data.csv")
		if !ok || name != "csv_" {
			t.Errorf("Match(data.csv) = %q, %v", name, ok)
		}
	})

	t.Run("longest pattern source text wins", func(t *testing.T) {
		r := BuildRegistry(map[string]Metadata{
			"txt_":     metaWith("txt_", KindSource, false, `.*\.txt$`),
			"special_": metaWith("special_", KindSource, false, `.*special.*\.txt$`),
		})

		name, ok := r.Match("special_file.txt")
		if !ok || name != "special_" {
			t.Errorf("Match(special_file.txt) = %q, %v, want special_", name, ok)
		}

		name, ok = r.Match("file.txt")
		if !ok || name != "txt_" {
			t.Errorf("Match(file.txt) = %q, %v, want txt_", name, ok)
		}
	})

	t.Run("no match is a result, not an error", func(t *testing.T) {
		r := BuildRegistry(map[string]Metadata{
			"csv_": metaWith("csv_", KindSource, false, `.*\.csv$`),
		})
		if name, ok := r.Match("file.unknown"); ok {
			t.Errorf("Match(file.unknown) = %q, want no match", name)
		}
	})

	t.Run("invalid pattern is skipped, not fatal", func(t *testing.T) {
		r := BuildRegistry(map[string]Metadata{
			"bad_": metaWith("bad_", KindSource, false, `[unclosed`, `.*\.csv$`),
		})
		name, ok := r.Match("data.csv")
		if !ok || name != "bad_" {
			t.Errorf("Match(data.csv) = %q, %v; valid pattern should survive", name, ok)
		}
	})

	t.Run("match by kind", func(t *testing.T) {
		r := BuildRegistry(map[string]Metadata{
			"http_": metaWith("http_", KindProtocol, true, `^https?://`),
			"csv_":  metaWith("csv_", KindSource, false, `.*\.csv$`),
		})

		name, ok := r.MatchKind("https://example.com/data.csv", KindProtocol)
		if !ok || name != "http_" {
			t.Errorf("MatchKind(protocol) = %q, %v", name, ok)
		}
		name, ok = r.MatchKind("https://example.com/data.csv", KindSource)
		if !ok || name != "csv_" {
			t.Errorf("MatchKind(source) = %q, %v", name, ok)
		}
	})
}

func TestRegistryPlanRead(t *testing.T) {
	plugins := map[string]Metadata{
		"http_": metaWith("http_", KindProtocol, true, `^https?://`),
		"ftp_":  metaWith("ftp_", KindProtocol, false, `^ftp://`),
		"csv_":  metaWith("csv_", KindSource, false, `.*\.csv$`),
	}
	r := BuildRegistry(plugins)

	t.Run("raw protocol plus format gives two stages", func(t *testing.T) {
		got := r.PlanRead("https://example.com/data.csv", plugins)
		want := []string{"http_", "csv_"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("PlanRead = %v, want %v", got, want)
		}
	})

	t.Run("non-raw protocol falls back to single best match", func(t *testing.T) {
		got := r.PlanRead("ftp://example.com/data.csv", plugins)
		if len(got) != 1 {
			t.Fatalf("PlanRead = %v, want single stage", got)
		}
	})

	t.Run("plain file gives single stage", func(t *testing.T) {
		got := r.PlanRead("data.csv", plugins)
		want := []string{"csv_"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("PlanRead = %v, want %v", got, want)
		}
	})

	t.Run("nothing matches gives empty plan", func(t *testing.T) {
		if got := r.PlanRead("mystery.bin", plugins); got != nil {
			t.Errorf("PlanRead = %v, want nil", got)
		}
	})
}
