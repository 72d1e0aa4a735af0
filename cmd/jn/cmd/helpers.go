package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jn-cli/jn/internal/address"
	"github.com/jn-cli/jn/internal/home"
)

// deps bundles everything a command needs, built once per invocation.
type deps struct {
	paths    home.Paths
	resolver *address.Resolver
}

func newDeps() (*deps, error) {
	paths := home.Resolve(flagHome)
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return &deps{
		paths:    paths,
		resolver: address.NewResolver(paths, cwd, os.Getenv("JN_BUILTIN_PLUGINS")),
	}, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
