package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nlordell/hdwallet/internal/cli"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	app := cli.NewApp(logger, level)
	rootCmd := cli.NewRootCommand(app, fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
