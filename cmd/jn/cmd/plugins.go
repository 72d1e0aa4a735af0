package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jn-cli/jn/internal/plugin"
)

var flagPluginsJSON bool

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List discovered plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		plugins, err := d.resolver.Plugins()
		if err != nil {
			return err
		}

		if flagPluginsJSON {
			return printJSON(plugins)
		}

		names := plugin.Names(plugins)
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, "No plugins found.")
			fmt.Fprintf(os.Stdout, "Plugin directory: %s\n", d.paths.PluginDir)
			return nil
		}
		for _, name := range names {
			meta := plugins[name]
			kind := string(meta.Kind)
			if kind == "" {
				kind = "-"
			}
			fmt.Fprintf(os.Stdout, "%-20s %-10s %s\n", name, kind, meta.Path)
		}
		return nil
	},
}

var pluginsInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show one plugin's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		plugins, err := d.resolver.Plugins()
		if err != nil {
			return err
		}

		meta, ok := plugins[args[0]]
		if !ok {
			meta, ok = plugins[args[0]+"_"]
		}
		if !ok {
			return fmt.Errorf("plugin not found: %s", args[0])
		}

		if flagPluginsJSON {
			return printJSON(meta)
		}

		fmt.Fprintf(os.Stdout, "name:         %s\n", meta.Name)
		fmt.Fprintf(os.Stdout, "kind:         %s\n", meta.Kind)
		fmt.Fprintf(os.Stdout, "file:         %s\n", meta.Path)
		if len(meta.Matches) > 0 {
			fmt.Fprintf(os.Stdout, "matches:      %s\n", strings.Join(meta.Matches, "  "))
		}
		if len(meta.Capabilities) > 0 {
			fmt.Fprintf(os.Stdout, "capabilities: %s\n", strings.Join(meta.Capabilities, ", "))
		}
		if len(meta.Dependencies) > 0 {
			fmt.Fprintf(os.Stdout, "dependencies: %s\n", strings.Join(meta.Dependencies, ", "))
		}
		if meta.Requires != "" {
			fmt.Fprintf(os.Stdout, "requires:     %s\n", meta.Requires)
		}
		if meta.Raw {
			fmt.Fprintln(os.Stdout, "raw:          yes")
		}
		return nil
	},
}

func init() {
	pluginsCmd.PersistentFlags().BoolVar(&flagPluginsJSON, "json", false, "output as JSON")
	pluginsCmd.AddCommand(pluginsInfoCmd)
	rootCmd.AddCommand(pluginsCmd)
}
