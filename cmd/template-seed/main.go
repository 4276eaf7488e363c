package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/teklifbul/mukayese-backend/internal/export"
	"github.com/teklifbul/mukayese-backend/pkg/config"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "template-seed", Format: os.Getenv(config.EnvLogFormat)})

	// the path defaults to the configured template so the seed and the API agree
	defaultPath := os.Getenv(config.EnvExportTemplatePath)
	if defaultPath == "" {
		defaultPath = "assets/templates/mukayese.xlsx"
	}
	path := flag.String("out", defaultPath, "where to write the comparison template")
	force := flag.Bool("force", false, "overwrite an existing template")
	flag.Parse()

	ctx := logg.WithFields(context.Background(), map[string]any{"path": *path, "force": *force})
	written, err := export.WriteDefaultTemplate(*path, *force)
	if err != nil {
		logg.Error(ctx, "failed to write comparison template", err)
		os.Exit(1)
	}
	if !written {
		logg.Info(ctx, "template already present; pass -force to replace it")
		return
	}
	logg.Info(ctx, "comparison template written")
}
