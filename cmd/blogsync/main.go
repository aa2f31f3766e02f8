// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/olegiv/blogsync/internal/config"
	"github.com/olegiv/blogsync/internal/logging"
	"github.com/olegiv/blogsync/internal/preview"
	"github.com/olegiv/blogsync/internal/sync"
	"github.com/olegiv/blogsync/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	serveFlag := flag.Bool("serve", false, "Serve the materialized output for local preview after syncing")
	keepGoing := flag.Bool("keep-going", false, "Skip posts that fail to assemble instead of failing the run")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "blogsync - Notion to static JSON blog content sync\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_NOTION_TOKEN      Notion integration token (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_BLOG_DB_ID        Blog database ID (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_CATEGORY_DB_ID    Category database ID (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_DATA_DIR          Output directory for JSON (default: ./public/blog-data)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_IMAGES_DIR        Output directory for images (default: ./public/blog-images)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_SITE_URL          Public site URL, enables sitemap.xml (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGSYNC_LOG_LEVEL         Log level: debug|info|warn|error (default: info)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		info := version.Info{
			Version:   appVersion,
			GitCommit: appGitCommit,
			BuildTime: appBuildTime,
		}
		_, _ = fmt.Printf("blogsync %s\n", info)
		os.Exit(0)
	}

	if err := run(*serveFlag, *keepGoing); err != nil {
		slog.Error("sync failed", "error", err)
		os.Exit(1)
	}
}

func run(serve, keepGoing bool) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration; misconfiguration fails before any network call
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if keepGoing {
		cfg.ContinueOnError = true
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	counting := logging.NewCountingHandler(textHandler)
	logger := slog.New(counting)
	slog.SetDefault(logger)

	runner := sync.New(cfg, logger)
	if err := runner.Run(context.Background()); err != nil {
		return err
	}

	if n := counting.Warnings(); n > 0 {
		logger.Info("run absorbed recoverable failures", "warnings", n)
	}

	if serve {
		srv := preview.NewServer(cfg.DataDir, cfg.ImagesDir, cfg.ImageURLPrefix, logger)
		logger.Info("serving preview", "addr", cfg.ServeAddr)
		return http.ListenAndServe(cfg.ServeAddr, srv.Routes())
	}
	return nil
}
