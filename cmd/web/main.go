package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"secustats/internal/app"
	"secustats/internal/config"
	"secustats/internal/dataset"
)

// Embedded dashboard frontend
//go:embed all:web/*
var webFiles embed.FS

func main() {
	var webFS fs.FS
	if sub, err := fs.Sub(webFiles, "web"); err == nil {
		webFS = sub
	} else {
		slog.Warn("Frontend embedding failed, API only", slog.String("error", err.Error()))
		webFS = nil
	}

	application, err := app.NewApplication(webFS)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		if dataset.IsFatal(err) {
			cfg, cfgErr := config.Load()
			if cfgErr != nil {
				cfg = nil
			}
			fmt.Fprintln(os.Stderr, app.DatasetHint(cfg))
		}
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
