// Command kaamgaractl inspects the level ladder, scores job history files,
// mints development tokens and applies database migrations.
package main

import (
	"fmt"
	"os"

	"kaamgarau/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
