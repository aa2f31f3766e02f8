// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package materialize persists assembled posts as the static JSON
// artifacts the rendering layer consumes.
package materialize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/olegiv/blogsync/internal/post"
	"github.com/olegiv/blogsync/internal/seo"
	"github.com/olegiv/blogsync/internal/util"
)

// IndexFilename is the name of the post index artifact.
const IndexFilename = "index.json"

// SitemapFilename is the name of the optional sitemap artifact.
const SitemapFilename = "sitemap.xml"

// Writer writes post artifacts into the data directory. Files are
// overwritten unconditionally; stale files from removed posts are not
// cleaned up.
type Writer struct {
	dataDir string
	logger  *slog.Logger
}

// NewWriter creates a Writer targeting dataDir.
func NewWriter(dataDir string, logger *slog.Logger) *Writer {
	return &Writer{
		dataDir: dataDir,
		logger:  logger,
	}
}

// WritePost writes one {slug}.json file. A later post with a colliding
// slug silently clobbers the earlier file.
func (w *Writer) WritePost(p post.Post) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding post %q: %w", p.Slug, err)
	}
	if err := w.writeFile(p.Slug+".json", append(data, '\n')); err != nil {
		return err
	}
	w.logger.Debug("post written", "slug", p.Slug)
	return nil
}

// WriteIndex writes index.json with entries in the given order, which is
// the source-defined descending-publish-date order.
func (w *Writer) WriteIndex(entries []post.IndexEntry) error {
	if entries == nil {
		entries = []post.IndexEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := w.writeFile(IndexFilename, append(data, '\n')); err != nil {
		return err
	}
	w.logger.Debug("index written", "posts", len(entries))
	return nil
}

// WriteSitemap writes sitemap.xml listing the homepage and every post.
func (w *Writer) WriteSitemap(siteURL string, entries []post.IndexEntry) error {
	builder := seo.NewSitemapBuilder(strings.TrimSuffix(siteURL, "/"))
	builder.AddHomepage()
	for _, entry := range entries {
		builder.AddPost(seo.SitemapPost{
			Slug:    entry.Slug,
			LastMod: entry.LastEditedTime,
		})
	}

	data, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building sitemap: %w", err)
	}
	return w.writeFile(SitemapFilename, data)
}

// writeFile creates the data directory if needed and writes one artifact,
// rejecting names that would escape the directory.
func (w *Writer) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	target, err := util.SafeJoinPath(w.dataDir, name)
	if err != nil {
		return fmt.Errorf("resolving path for %q: %w", name, err)
	}

	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
