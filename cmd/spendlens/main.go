package main

import (
	"log/slog"
	"os"

	"github.com/spendlens/spendlens/internal/commands"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
