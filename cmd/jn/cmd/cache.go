package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jn-cli/jn/internal/plugin"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the plugin discovery cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the discovery cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		if err := plugin.ClearCache(d.paths.CachePath); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the discovery cache from the plugin directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		if err := plugin.ClearCache(d.paths.CachePath); err != nil {
			return err
		}
		plugins, err := plugin.DiscoverCached(d.paths.PluginDir, d.paths.CachePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Cached %d plugins.\n", len(plugins))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheRefreshCmd)
	rootCmd.AddCommand(cacheCmd)
}
