// Command cli is the command-line interface for the commission engine.
package main

import (
	"os"

	"github.com/warp/commission-engine/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
