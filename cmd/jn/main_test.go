package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/jn-cli/jn/cmd/jn/cmd"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"jn": func() {
			if err := cmd.Execute(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	})
}

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                 filepath.Join("testdata", "script"),
		RequireExplicitExec: true,
		Setup: func(e *testscript.Env) error {
			// Keep everything inside the temp dir so no real jn config
			// leaks into the tests.
			e.Vars = append(e.Vars,
				"HOME="+e.WorkDir,
				"JN_HOME="+filepath.Join(e.WorkDir, "jn-home"),
			)
			return nil
		},
	})
}
