// Package main is the entry point for the specforge CLI application.
// It turns declarative spec files into implementation code through pluggable agents.
package main

import (
	"specforge/cli/cmd"
)

// main is the entry point for the specforge CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
