package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jn-cli/jn/internal/profile"
)

var flagProfilesJSON bool

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and edit API profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		summaries := d.resolver.Profiles().List()

		if flagProfilesJSON {
			return printJSON(summaries)
		}
		if len(summaries) == 0 {
			fmt.Fprintln(os.Stdout, "No profiles found.")
			fmt.Fprintf(os.Stdout, "Profile directory: %s\n", d.paths.ProfilesDir)
			return nil
		}
		for _, s := range summaries {
			if s.Description != "" {
				fmt.Fprintf(os.Stdout, "%-5s %-30s %s\n", s.Kind, s.Ref, s.Description)
			} else {
				fmt.Fprintf(os.Stdout, "%-5s %s\n", s.Kind, s.Ref)
			}
		}
		return nil
	},
}

var profilesGetCmd = &cobra.Command{
	Use:   "get <kind> <ref> <key>",
	Short: "Read a value from a profile file",
	Long: `Read a single value from a profile definition by key path.

  jn profiles get http @github/repos path
  jn profiles get mcp @files command`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := profileKind(args[0])
		if err != nil {
			return err
		}
		d, err := newDeps()
		if err != nil {
			return err
		}

		namespace, leaf, _, err := profile.ParseRef(args[1])
		if err != nil {
			return err
		}
		path, err := d.resolver.Profiles().DefinitionFile(kind, namespace, leaf)
		if err != nil {
			return err
		}
		value, err := profile.GetValue(path, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, value)
		return nil
	},
}

var profilesSetCmd = &cobra.Command{
	Use:   "set <kind> <ref> <key> <value>",
	Short: "Write a value into a profile file",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := profileKind(args[0])
		if err != nil {
			return err
		}
		d, err := newDeps()
		if err != nil {
			return err
		}

		namespace, leaf, _, err := profile.ParseRef(args[1])
		if err != nil {
			return err
		}
		path, err := d.resolver.Profiles().DefinitionFile(kind, namespace, leaf)
		if err != nil {
			return err
		}
		if err := profile.SetValue(path, args[2], args[3]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Updated %s in %s\n", args[2], path)
		return nil
	},
}

func profileKind(arg string) (string, error) {
	switch arg {
	case profile.KindHTTP, profile.KindMCP:
		return arg, nil
	}
	return "", fmt.Errorf("invalid profile kind %q (want http or mcp)", arg)
}

func init() {
	profilesCmd.PersistentFlags().BoolVar(&flagProfilesJSON, "json", false, "output as JSON")
	profilesCmd.AddCommand(profilesGetCmd)
	profilesCmd.AddCommand(profilesSetCmd)
	rootCmd.AddCommand(profilesCmd)
}
