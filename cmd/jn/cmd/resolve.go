package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jn-cli/jn/internal/address"
)

var (
	flagResolveMode string
	flagResolvePlan bool
	flagResolveJSON bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Show which plugin handles an address and with what configuration",
	Long: `Resolve an address to its handler plugin without running anything.

Useful for checking what jn would do:

  jn resolve data.csv
  jn resolve 'https://example.com/export.csv.gz'
  jn resolve '@github/repos?user=octocat'
  jn resolve data.txt~csv --plan`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := address.Parse(args[0])
		if err != nil {
			return err
		}
		d, err := newDeps()
		if err != nil {
			return err
		}

		if flagResolvePlan {
			stages, err := d.resolver.Plan(addr, flagResolveMode)
			if err != nil {
				return err
			}
			if flagResolveJSON {
				return printJSON(stages)
			}
			fmt.Fprintln(os.Stdout, address.Describe(stages))
			return nil
		}

		target, err := d.resolver.Resolve(addr, flagResolveMode)
		if err != nil {
			return err
		}
		if flagResolveJSON {
			return printJSON(target)
		}
		printTarget(target)
		return nil
	},
}

func printTarget(target *address.ResolvedTarget) {
	fmt.Fprintf(os.Stdout, "address: %s (%s)\n", target.Address.Raw, target.Address.Type)
	fmt.Fprintf(os.Stdout, "plugin:  %s\n", target.PluginName)
	if target.PluginPath != "" {
		fmt.Fprintf(os.Stdout, "file:    %s\n", target.PluginPath)
	}
	if target.URL != "" {
		fmt.Fprintf(os.Stdout, "url:     %s\n", target.URL)
	}
	if len(target.Headers) > 0 {
		keys := sortedKeys(target.Headers)
		for _, k := range keys {
			fmt.Fprintf(os.Stdout, "header:  %s: %s\n", k, target.Headers[k])
		}
	}
	if len(target.Config) > 0 {
		keys := make([]string, 0, len(target.Config))
		for k := range target.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(os.Stdout, "config:  %s=%v\n", k, target.Config[k])
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	resolveCmd.Flags().StringVar(&flagResolveMode, "mode", address.StageRead, "resolution mode: read or write")
	resolveCmd.Flags().BoolVar(&flagResolvePlan, "plan", false, "show the staged pipeline instead of a single target")
	resolveCmd.Flags().BoolVar(&flagResolveJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(resolveCmd)
}
