package address

import (
	"fmt"
	"strings"
)

// Stage modes describe what a pipeline step does with the bytes it sees.
const (
	// StageFetch retrieves raw bytes from a remote source.
	StageFetch = "fetch"
	// StageDecompress expands a compression layer.
	StageDecompress = "decompress"
	// StageRead parses structured records out of bytes.
	StageRead = "read"
	// StageWrite renders records into bytes.
	StageWrite = "write"
)

// Plan expands an address into an ordered list of pipeline stages.
//
// Most addresses become a single stage. Remote sources whose name also
// identifies a format (an https URL ending in .csv, say) split into a
// fetch stage followed by a parse stage, and a compression suffix adds a
// decompression stage between fetching and parsing. Reading stdio with no
// format override yields no stages at all: bytes pass through untouched.
func (r *Resolver) Plan(addr Address, mode string) ([]Stage, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	if addr.Type == TypeStdio && mode == StageRead && addr.FormatOverride == "" {
		return nil, nil
	}

	var stages []Stage
	remote := addr.Type == TypeURL || addr.Type == TypeProtocol

	switch {
	case remote && mode == StageRead && addr.FormatOverride != "":
		// The fetch stage comes from the protocol route; the override only
		// picks the parse stage.
		var fetch *ResolvedTarget
		var err error
		if addr.Type == TypeURL {
			fetch, err = r.resolveURL(addr)
		} else {
			fetch, err = r.resolveProtocol(addr)
		}
		if err != nil {
			return nil, err
		}
		format, err := r.findByFormat(addr.FormatOverride)
		if err != nil {
			return nil, err
		}
		stages = []Stage{
			{PluginName: fetch.PluginName, PluginPath: fetch.PluginPath, Mode: StageFetch, Config: fetch.Config, URL: fetch.URL, Headers: fetch.Headers},
			{PluginName: format.Name, PluginPath: format.Path, Mode: StageRead, Config: buildConfig(addr.Parameters)},
		}

	case remote && mode == StageRead:
		names := r.registry.PlanRead(addr.Base, r.plugins)
		if len(names) == 2 {
			fetch, format := r.plugins[names[0]], r.plugins[names[1]]
			fullURL := addr.Base
			if addr.Type == TypeURL && addr.Compression != "" {
				fullURL += "." + addr.Compression
			}
			stages = []Stage{
				{PluginName: fetch.Name, PluginPath: fetch.Path, Mode: StageFetch, URL: fullURL, Config: map[string]any{"url": fullURL}},
				{PluginName: format.Name, PluginPath: format.Path, Mode: StageRead, Config: buildConfig(addr.Parameters)},
			}
			break
		}
		target, err := r.Resolve(addr, mode)
		if err != nil {
			return nil, err
		}
		stages = []Stage{{PluginName: target.PluginName, PluginPath: target.PluginPath, Mode: StageFetch, Config: target.Config, URL: target.URL, Headers: target.Headers}}

	default:
		target, err := r.Resolve(addr, mode)
		if err != nil {
			return nil, err
		}
		stageMode := mode
		if stageMode == "" {
			stageMode = StageRead
		}
		stages = []Stage{{PluginName: target.PluginName, PluginPath: target.PluginPath, Mode: stageMode, Config: target.Config, URL: target.URL, Headers: target.Headers}}
	}

	if addr.Compression != "" && mode == StageRead {
		decomp, err := r.findByName(addr.Compression)
		if err != nil {
			return nil, fmt.Errorf("no decompression plugin for .%s (looked for %q)", addr.Compression, addr.Compression+"_")
		}
		stage := Stage{PluginName: decomp.Name, PluginPath: decomp.Path, Mode: StageDecompress}
		stages = insertDecompression(stages, stage)
	}

	return stages, nil
}

// insertDecompression places the decompression stage after the fetch
// stage when one exists, otherwise before everything.
func insertDecompression(stages []Stage, decomp Stage) []Stage {
	if len(stages) > 0 && stages[0].Mode == StageFetch {
		out := make([]Stage, 0, len(stages)+1)
		out = append(out, stages[0], decomp)
		return append(out, stages[1:]...)
	}
	return append([]Stage{decomp}, stages...)
}

// Describe renders a plan as one line per stage, for explain output.
func Describe(stages []Stage) string {
	if len(stages) == 0 {
		return "passthrough"
	}
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = fmt.Sprintf("%s(%s)", s.PluginName, s.Mode)
	}
	return strings.Join(parts, " | ")
}
