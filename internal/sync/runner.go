// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sync orchestrates one content sync: query the published
// posts, assemble each one concurrently, then materialize the JSON
// artifacts.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/blogsync/internal/config"
	"github.com/olegiv/blogsync/internal/images"
	"github.com/olegiv/blogsync/internal/materialize"
	"github.com/olegiv/blogsync/internal/notion"
	"github.com/olegiv/blogsync/internal/post"
)

// Runner wires the Notion client, post assembler, image resolver and
// artifact writer for a single batch run.
type Runner struct {
	cfg       *config.Config
	client    *notion.Client
	assembler *post.Assembler
	resolver  *images.Resolver
	thumbs    *images.Thumbnailer
	writer    *materialize.Writer
	logger    *slog.Logger
}

// New builds a Runner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	client := notion.NewClient(cfg.APIBaseURL, cfg.NotionToken, logger,
		notion.WithRateLimit(cfg.APIRateLimit))
	resolver := images.NewResolver(cfg.ImagesDir, cfg.ImageURLPrefix, logger)
	assembler := post.NewAssembler(client, resolver, post.AssemblerConfig{
		CategoryDBID:    cfg.CategoryDBID,
		DefaultLanguage: cfg.DefaultLanguage,
		WordsPerMinute:  cfg.WordsPerMinute,
		CategoryCovers:  cfg.CategoryCovers,
	}, logger)

	var thumbs *images.Thumbnailer
	if cfg.Thumbnails {
		thumbs = images.NewThumbnailer(cfg.ThumbnailWidth, logger)
	}

	return &Runner{
		cfg:       cfg,
		client:    client,
		assembler: assembler,
		resolver:  resolver,
		thumbs:    thumbs,
		writer:    materialize.NewWriter(cfg.DataDir, logger),
		logger:    logger,
	}
}

// Run executes one sync. By default any post that fails to assemble
// fails the whole run before anything is written. With ContinueOnError
// set, failed posts are logged and skipped and the run materializes
// the rest.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.logger.With("run_id", uuid.NewString())

	logger.Info("querying published posts", "database_id", r.cfg.BlogDBID)
	pages, err := r.client.QueryDatabaseAll(ctx, r.cfg.BlogDBID, post.PublishedQuery())
	if err != nil {
		return fmt.Errorf("querying blog database: %w", err)
	}
	logger.Info("assembling posts", "count", len(pages))

	posts := make([]post.Post, len(pages))
	assembled := make([]bool, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	for i := range pages {
		g.Go(func() error {
			p, err := r.assembler.Assemble(gctx, pages[i])
			if err != nil {
				if r.cfg.ContinueOnError {
					logger.Warn("skipping post after assembly failure",
						"page_id", pages[i].ID, "error", err)
					return nil
				}
				return fmt.Errorf("assembling post %s: %w", pages[i].ID, err)
			}
			posts[i] = p
			assembled[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Materialize in query order so the index stays sorted by publish date.
	entries := make([]post.IndexEntry, 0, len(posts))
	for i := range posts {
		if !assembled[i] {
			continue
		}
		if err := r.writer.WritePost(posts[i]); err != nil {
			return err
		}
		entry := posts[i].IndexEntry(r.cfg.PreviewLength)
		if r.thumbs != nil {
			entry.Thumbnail = r.thumbnailFor(posts[i], logger)
		}
		entries = append(entries, entry)
	}

	if err := r.writer.WriteIndex(entries); err != nil {
		return err
	}
	if r.cfg.SiteURL != "" {
		if err := r.writer.WriteSitemap(r.cfg.SiteURL, entries); err != nil {
			return err
		}
	}

	logger.Info("sync complete", "posts", len(entries), "skipped", len(pages)-len(entries))
	return nil
}

// thumbnailFor generates a thumbnail for a post's cover when the cover
// was downloaded locally. Failures degrade to no thumbnail.
func (r *Runner) thumbnailFor(p post.Post, logger *slog.Logger) string {
	local, ok := r.resolver.LocalPath(p.CoverImage)
	if !ok {
		return ""
	}
	name, err := r.thumbs.Create(local)
	if err != nil {
		logger.Warn("thumbnail generation failed", "slug", p.Slug, "error", err)
		return ""
	}
	if name == "" {
		return ""
	}
	return strings.TrimSuffix(r.cfg.ImageURLPrefix, "/") + "/" + name
}
