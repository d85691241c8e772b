package main

import (
	"os"

	"github.com/wonny/churnlens/backend/cmd/churnlens/commands"
)

// main is the entry point for the churnlens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/churnlens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
