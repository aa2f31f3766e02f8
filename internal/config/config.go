// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the sync job configuration loaded from environment variables.
type Config struct {
	// Notion API access. All three are required; the job refuses to start
	// without them, before any network call is made.
	NotionToken  string `env:"BLOGSYNC_NOTION_TOKEN,required"`
	BlogDBID     string `env:"BLOGSYNC_BLOG_DB_ID,required"`
	CategoryDBID string `env:"BLOGSYNC_CATEGORY_DB_ID,required"`

	// APIBaseURL is overridable so tests can point the client at a fake server.
	APIBaseURL string `env:"BLOGSYNC_API_BASE_URL" envDefault:"https://api.notion.com"`
	// APIRateLimit caps requests per second against the Notion API.
	// Zero disables client-side limiting.
	APIRateLimit float64 `env:"BLOGSYNC_API_RATE_LIMIT" envDefault:"3"`

	// Output locations, relative to the working directory by default.
	DataDir        string `env:"BLOGSYNC_DATA_DIR" envDefault:"./public/blog-data"`
	ImagesDir      string `env:"BLOGSYNC_IMAGES_DIR" envDefault:"./public/blog-images"`
	ImageURLPrefix string `env:"BLOGSYNC_IMAGE_URL_PREFIX" envDefault:"/blog-images"`

	// Derived-field tuning.
	DefaultLanguage string `env:"BLOGSYNC_DEFAULT_LANGUAGE" envDefault:"en"`
	PreviewLength   int    `env:"BLOGSYNC_PREVIEW_LENGTH" envDefault:"150"`
	WordsPerMinute  int    `env:"BLOGSYNC_WORDS_PER_MINUTE" envDefault:"180"`

	// SiteURL enables sitemap.xml generation when set.
	SiteURL string `env:"BLOGSYNC_SITE_URL"`

	// CategoryCovers maps a category name to a fallback cover image URL,
	// used when a post has no cover of its own.
	CategoryCovers map[string]string `env:"BLOGSYNC_CATEGORY_COVERS"`

	// Thumbnails enables resized cover variants for index entries.
	Thumbnails     bool `env:"BLOGSYNC_THUMBNAILS" envDefault:"false"`
	ThumbnailWidth int  `env:"BLOGSYNC_THUMBNAIL_WIDTH" envDefault:"480"`

	// ContinueOnError keeps the run going when a single post fails to
	// assemble, skipping it instead of aborting the whole run.
	ContinueOnError bool `env:"BLOGSYNC_CONTINUE_ON_ERROR" envDefault:"false"`

	LogLevel  string `env:"BLOGSYNC_LOG_LEVEL" envDefault:"info"`
	ServeAddr string `env:"BLOGSYNC_SERVE_ADDR" envDefault:"localhost:8090"`
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.PreviewLength <= 0 {
		return nil, fmt.Errorf("BLOGSYNC_PREVIEW_LENGTH must be positive, got %d", cfg.PreviewLength)
	}
	if cfg.WordsPerMinute <= 0 {
		return nil, fmt.Errorf("BLOGSYNC_WORDS_PER_MINUTE must be positive, got %d", cfg.WordsPerMinute)
	}
	if cfg.APIRateLimit < 0 {
		return nil, fmt.Errorf("BLOGSYNC_API_RATE_LIMIT must not be negative, got %g", cfg.APIRateLimit)
	}

	return cfg, nil
}
