package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/coachtaylor/transfit/internal/catalog"
	"github.com/coachtaylor/transfit/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	libraryPath := flag.String("library", "", "path to exercise library JSON file (required)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *libraryPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: transfit-seed -config config.yaml -library /path/to/exercises.json\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open catalog
	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		log.Error("failed to open exercise catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	ctx := context.Background()
	stats, err := cat.SeedFromFile(ctx, *libraryPath)
	if err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	count, err := cat.Count(ctx)
	if err != nil {
		log.Error("catalog count failed", "error", err)
		os.Exit(1)
	}

	log.Info("seed complete",
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"catalog_total", count,
	)
}
