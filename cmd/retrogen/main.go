// Package main is the entry point of retrogen, a procedural retro-game
// music generator.
//
// Usage:
//
//	retrogen [flags] <command> [args]
//
// Commands:
//
//	compose    - Generate a piece and save it as a MIDI file
//	show       - Show a stored composition
//	list       - List stored compositions
//	export     - Write the MIDI file of a stored composition
//	delete     - Delete a stored composition
//	stats      - Descriptive statistics of a composition
//	scales     - List the built-in scales
//	serve      - Serve the HTTP API
//	config     - Manage contexts
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/Malifforas/music/cmd/retrogen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
