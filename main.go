package main

import (
	"github.com/xkilldash9x/a11yscope/cmd"
)

// main is the entry point for the a11yscope binary. All command-line
// parsing, configuration, and execution lives in the cmd package.
func main() {
	cmd.Execute()
}
