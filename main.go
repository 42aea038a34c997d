// ./main.go
package main

import (
	"github.com/icesdict/dictscraper/cmd"
)

// main is the entry point for the dictscraper CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
