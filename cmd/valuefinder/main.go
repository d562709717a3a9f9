package main

import (
	"os"

	"github.com/wonny/valuefinder/cmd/valuefinder/commands"
)

// main is the entry point for the valuefinder CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/valuefinder [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
