package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var (
	flagHome     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "jn",
	Short: "Address data anywhere - files, URLs, APIs, and MCP servers",
	Long: `jn routes data addresses to the plugins that handle them.

An address is a file path, a URL, a protocol reference like pg://db/table,
or a profile reference like @github/repos. jn discovers plugins, matches
addresses against their patterns, and resolves API profiles into concrete
requests - all from a single tool.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", flagLogLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jn %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "",
		"configuration directory (default $JN_HOME or ~/.config/jn)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warning",
		"log verbosity: debug, info, warning, or error")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
