// fpvcompat computes FPV drone part compatibility tables from typed part
// catalogs (CSV, JSON or YAML).
package main

import (
	"fmt"
	"os"

	"github.com/corey/fpvcompat/cmd/fpvcompat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
