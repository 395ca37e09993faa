package main

import (
	"fmt"
	"os"

	"github.com/epivet/epivet-go/cmd"
	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(settings.LogLevel())

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
