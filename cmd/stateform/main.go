// stateform validates and compiles form definitions, checks values
// documents against them, and runs interaction scenarios.
//
// Usage:
//
//	stateform validate <forms-path>
//	stateform compile <forms-path> [-o out.json]
//	stateform check <form-file> <values.json> [--form name]
//	stateform test <scenarios-dir> [--update] [--filter glob] [--db runs.db]
//	stateform trace --db runs.db [--run id] [--kind change] [--list]
package main

import (
	"fmt"
	"os"

	"github.com/slayermass/stateform/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Subcommands silence cobra's own error output.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
