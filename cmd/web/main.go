package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/s22a0058-ai/FYP/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (default: standard locations)")
	port := flag.Int("port", 0, "override the configured listen port")
	flag.Parse()

	application, err := app.NewApplication(app.Options{
		ConfigFile: *configFile,
		Port:       *port,
	})
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
