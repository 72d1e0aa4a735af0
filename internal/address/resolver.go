package address

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jn-cli/jn/internal/home"
	"github.com/jn-cli/jn/internal/plugin"
	"github.com/jn-cli/jn/internal/profile"
)

var (
	// ErrNoMatch means no plugin pattern claims the address. The caller
	// decides fallback behavior; this is a typed result, not control flow.
	ErrNoMatch = errors.New("no plugin matches")

	// ErrNotFound means the address names a file that does not exist.
	// Distinct from ErrNoMatch so callers can tell "nothing handles this"
	// from "this does not exist".
	ErrNotFound = errors.New("file not found")
)

// Built-in handler names for plain command execution.
const (
	// networkPlugin fetches well-known URL schemes.
	networkPlugin = "http_"
	// mcpPlugin speaks to MCP servers resolved from profiles.
	mcpPlugin = "mcp_"
	// execPlugin is the generic pass-through command runner.
	execPlugin = "exec_"
	// stdioFormat is the default stream format on stdin/stdout.
	stdioFormat = "ndjson"
)

// Resolver combines plugin discovery, the pattern registry, and profile
// resolution to turn parsed addresses into ResolvedTargets. Plugins are
// loaded lazily on first use and reused for every resolution within the
// process; the on-disk discovery cache keeps that first load cheap.
type Resolver struct {
	paths      home.Paths
	workDir    string
	builtinDir string

	plugins  map[string]plugin.Metadata
	registry *plugin.Registry
	profiles *profile.Resolver
}

// NewResolver creates a Resolver. builtinDir points at the bundled plugin
// set and may be empty; workDir anchors project-local profiles and env
// files.
func NewResolver(paths home.Paths, workDir, builtinDir string) *Resolver {
	return &Resolver{
		paths:      paths,
		workDir:    workDir,
		builtinDir: builtinDir,
		profiles:   profile.NewResolver(paths, workDir, ""),
	}
}

// ensureLoaded discovers plugins and builds the registry on first use.
func (r *Resolver) ensureLoaded() error {
	if r.plugins != nil {
		return nil
	}
	plugins, err := plugin.DiscoverAll(r.builtinDir, r.paths.PluginDir, r.paths.CachePath)
	if err != nil {
		return err
	}
	r.plugins = plugins
	r.registry = plugin.BuildRegistry(plugins)
	return nil
}

// Plugins returns the discovered plugin set, for introspection commands.
func (r *Resolver) Plugins() (map[string]plugin.Metadata, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	return r.plugins, nil
}

// Profiles returns the profile resolver, for introspection commands.
func (r *Resolver) Profiles() *profile.Resolver {
	return r.profiles
}

// Resolve turns a parsed address into a complete handler recipe.
// An explicit format override always wins over extension or content based
// detection. Resolving the same address twice with unchanged disk state
// yields structurally equal targets.
func (r *Resolver) Resolve(addr Address, mode string) (*ResolvedTarget, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"address": addr.Raw, "type": addr.Type, "mode": mode}).
		Debug("resolving address")

	// An explicit override always selects the format plugin, whatever the
	// registry would have picked. Remote addresses keep the base attached
	// as the resource URL.
	if addr.FormatOverride != "" {
		meta, err := r.findByFormat(addr.FormatOverride)
		if err != nil {
			return nil, err
		}
		config := buildConfig(addr.Parameters)
		target := &ResolvedTarget{
			Address:    addr,
			PluginName: meta.Name,
			PluginPath: meta.Path,
			Config:     config,
		}
		switch addr.Type {
		case TypeURL:
			fullURL := addr.Base
			if addr.Compression != "" {
				fullURL += "." + addr.Compression
			}
			target.URL = fullURL
		case TypeProtocol:
			target.URL = addr.Base
		case TypeFile:
			diskPath := addr.Base
			if addr.Compression != "" {
				diskPath += "." + addr.Compression
			}
			abs, err := filepath.Abs(diskPath)
			if err != nil {
				abs = diskPath
			}
			config["path"] = abs
			config["extension"] = strings.ToLower(filepath.Ext(addr.Base))
		}
		return target, nil
	}

	switch addr.Type {
	case TypeURL:
		return r.resolveURL(addr)
	case TypeProtocol:
		return r.resolveProtocol(addr)
	case TypeProfile:
		return r.resolveProfile(addr)
	case TypePlugin:
		return r.resolvePluginRef(addr)
	case TypeStdio:
		meta, err := r.findByFormat(stdioFormat)
		if err != nil {
			return nil, err
		}
		return &ResolvedTarget{
			Address:    addr,
			PluginName: meta.Name,
			PluginPath: meta.Path,
			Config:     buildConfig(addr.Parameters),
		}, nil
	default:
		return r.resolvePlain(addr, mode)
	}
}

// resolveURL routes well-known URL schemes to the built-in network fetch
// handler.
func (r *Resolver) resolveURL(addr Address) (*ResolvedTarget, error) {
	fullURL := addr.Base
	if addr.Compression != "" {
		fullURL += "." + addr.Compression
	}

	scheme, _, _ := strings.Cut(addr.Base, "://")
	meta, err := r.findByName(scheme)
	if err != nil {
		// http and https share the network plugin.
		meta, err = r.findByName(networkPlugin)
		if err != nil {
			return nil, fmt.Errorf("%w: no handler for %s URLs", ErrNoMatch, scheme)
		}
	}

	return &ResolvedTarget{
		Address:    addr,
		PluginName: meta.Name,
		PluginPath: meta.Path,
		Config:     map[string]any{"url": fullURL},
		URL:        fullURL,
	}, nil
}

// resolveProtocol routes scheme://resource to the plugin registered for
// the scheme, by name first and by pattern second.
func (r *Resolver) resolveProtocol(addr Address) (*ResolvedTarget, error) {
	scheme, _, _ := strings.Cut(addr.Base, "://")

	meta, err := r.findByName(scheme)
	if err != nil {
		if name, ok := r.registry.Match(addr.Base); ok {
			meta = r.plugins[name]
		} else {
			return nil, fmt.Errorf("%w: protocol %s (known plugins: %s)",
				ErrNoMatch, scheme, strings.Join(plugin.Names(r.plugins), ", "))
		}
	}

	return &ResolvedTarget{
		Address:    addr,
		PluginName: meta.Name,
		PluginPath: meta.Path,
		Config:     buildConfig(addr.Parameters),
		URL:        addr.Base,
	}, nil
}

// resolveProfile delegates @namespace/leaf references to the profile
// system. MCP namespaces route to the MCP plugin with an operation
// descriptor; everything else resolves as an HTTP API profile.
func (r *Resolver) resolveProfile(addr Address) (*ResolvedTarget, error) {
	namespace, leaf := addr.Namespace(), addr.Leaf()

	if r.profiles.HasNamespace(profile.KindMCP, namespace) {
		desc, err := r.profiles.ResolveMCP(namespace, leaf, addr.Parameters)
		if err != nil {
			return nil, err
		}
		meta, _ := r.findByName(mcpPlugin)
		return &ResolvedTarget{
			Address:    addr,
			PluginName: mcpPlugin,
			PluginPath: meta.Path,
			Config: map[string]any{
				"operation": string(desc.Type),
				"tool":      desc.Tool,
				"resource":  desc.ResourceURI,
				"params":    desc.Params,
				"server":    desc.Server,
			},
		}, nil
	}

	// A protocol plugin may manage its own profile namespace (e.g. a
	// database plugin); hand it the whole address for internal resolution.
	if meta, err := r.findByName(namespace); err == nil && meta.Kind == plugin.KindProtocol {
		return &ResolvedTarget{
			Address:    addr,
			PluginName: meta.Name,
			PluginPath: meta.Path,
			URL:        addr.String(),
		}, nil
	}

	desc, err := r.profiles.ResolveHTTP(namespace, leaf, addr.Parameters)
	if err != nil {
		return nil, err
	}
	meta, _ := r.findByName(networkPlugin)
	return &ResolvedTarget{
		Address:    addr,
		PluginName: networkPlugin,
		PluginPath: meta.Path,
		URL:        desc.URL,
		Headers:    desc.Headers,
	}, nil
}

// resolvePluginRef handles bare @name references. A name that is also an
// HTTP profile namespace resolves as a container listing through the
// network plugin.
func (r *Resolver) resolvePluginRef(addr Address) (*ResolvedTarget, error) {
	name := strings.TrimPrefix(addr.Base, "@")

	if r.profiles.HasNamespace(profile.KindHTTP, name) {
		meta, _ := r.findByName(networkPlugin)
		return &ResolvedTarget{
			Address:    addr,
			PluginName: networkPlugin,
			PluginPath: meta.Path,
			URL:        addr.Base,
		}, nil
	}
	if r.profiles.HasNamespace(profile.KindMCP, name) {
		return r.resolveProfile(addr)
	}

	meta, err := r.findByName(name)
	if err != nil {
		return nil, err
	}
	return &ResolvedTarget{
		Address:    addr,
		PluginName: meta.Name,
		PluginPath: meta.Path,
		Config:     buildConfig(addr.Parameters),
	}, nil
}

// resolvePlain handles filesystem paths and bare command tokens.
func (r *Resolver) resolvePlain(addr Address, mode string) (*ResolvedTarget, error) {
	// Parsing strips compression suffixes from Base, so the on-disk name
	// is Base plus the suffix while pattern matching uses the logical name.
	diskPath := addr.Base
	if addr.Compression != "" {
		diskPath += "." + addr.Compression
	}
	if info, err := os.Stat(diskPath); err == nil && !info.IsDir() {
		return r.fileTarget(addr, diskPath)
	}

	// Write targets need not exist yet; the pattern match alone selects
	// the handler.
	if mode == StageWrite {
		return r.fileTarget(addr, diskPath)
	}

	// Not an existing file. A shell plugin pattern may claim the token
	// (e.g. "ls" or "ps").
	if name, ok := r.registry.MatchKind(addr.Base, plugin.KindProtocol); ok {
		meta := r.plugins[name]
		return &ResolvedTarget{
			Address:    addr,
			PluginName: meta.Name,
			PluginPath: meta.Path,
			Config:     buildConfig(addr.Parameters),
			URL:        addr.String(),
		}, nil
	}

	// A path-looking address that doesn't exist is reported as missing,
	// not routed to command execution.
	if strings.ContainsRune(addr.Base, os.PathSeparator) || filepath.Ext(addr.Base) != "" || addr.Compression != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, diskPath)
	}

	// Bare token: pass through to command execution. A resolvable binary
	// on PATH is still the generic exec recipe; the spawner owns the
	// subprocess lifecycle either way.
	config := buildConfig(addr.Parameters)
	config["command"] = []string{addr.Base}
	if _, err := exec.LookPath(addr.Base); err == nil {
		config["known"] = true
	}

	target := &ResolvedTarget{
		Address:    addr,
		PluginName: execPlugin,
		Config:     config,
	}
	if meta, err := r.findByName(execPlugin); err == nil {
		target.PluginPath = meta.Path
	}
	return target, nil
}

// fileTarget builds the recipe for a pattern-matched file path.
func (r *Resolver) fileTarget(addr Address, diskPath string) (*ResolvedTarget, error) {
	name, ok := r.registry.Match(addr.Base)
	if !ok {
		ext := filepath.Ext(addr.Base)
		return nil, fmt.Errorf("%w: extension %q (try %s~<format>)", ErrNoMatch, ext, addr.Base)
	}
	meta := r.plugins[name]

	config := buildConfig(addr.Parameters)
	abs, err := filepath.Abs(diskPath)
	if err != nil {
		abs = diskPath
	}
	config["path"] = abs
	config["extension"] = strings.ToLower(filepath.Ext(addr.Base))

	target := &ResolvedTarget{
		Address:    addr,
		PluginName: meta.Name,
		PluginPath: meta.Path,
		Config:     config,
	}
	// Shell-style protocol plugins take the whole address as their
	// argument instead of a path.
	if meta.Kind == plugin.KindProtocol {
		target.URL = addr.String()
	}
	return target, nil
}

// findByFormat locates a format plugin by name, trying the bare name and
// the underscore-suffixed convention.
func (r *Resolver) findByFormat(format string) (plugin.Metadata, error) {
	meta, err := r.findByName(format)
	if err == nil {
		return meta, nil
	}

	formats := make([]string, 0, len(r.plugins))
	for _, name := range plugin.Names(r.plugins) {
		if k := r.plugins[name].Kind; k == plugin.KindSource || k == plugin.KindTarget {
			formats = append(formats, strings.TrimSuffix(name, "_"))
		}
	}
	return plugin.Metadata{}, fmt.Errorf("%w: format %s (available formats: %s)",
		ErrNoMatch, format, strings.Join(formats, ", "))
}

// findByName locates a plugin by exact name, trying the underscore-suffixed
// convention second.
func (r *Resolver) findByName(name string) (plugin.Metadata, error) {
	if meta, ok := r.plugins[name]; ok {
		return meta, nil
	}
	if meta, ok := r.plugins[name+"_"]; ok {
		return meta, nil
	}
	return plugin.Metadata{}, fmt.Errorf("%w: plugin %s", ErrNoMatch, name)
}

// buildConfig converts raw string parameters into typed handler config.
// Coercion is conservative: true/false and plain numeric literals convert,
// everything else (including nan/inf tokens) stays a string. Presence is
// preserved: a bare key becomes an empty string, never dropped.
func buildConfig(params map[string]string) map[string]any {
	config := make(map[string]any, len(params))
	for key, value := range params {
		low := strings.ToLower(value)
		switch {
		case low == "true" || low == "false":
			config[key] = low == "true"
		case isNumber(value) && low != "nan" && !strings.HasSuffix(low, "inf"):
			if !strings.ContainsAny(low, ".e") {
				if n, err := strconv.ParseInt(value, 10, 64); err == nil {
					config[key] = n
					continue
				}
			}
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				config[key] = f
			} else {
				config[key] = value
			}
		default:
			config[key] = value
		}
	}
	return config
}

func isNumber(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}
