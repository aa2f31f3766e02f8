// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package post

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/olegiv/blogsync/internal/notion"
	"github.com/olegiv/blogsync/internal/seo"
	"github.com/olegiv/blogsync/internal/util"
)

// Blog database property names. These mirror the Notion database schema.
const (
	propTitle           = "Title"
	propSubtitle        = "Subtitle"
	propMetaTitle       = "Meta Title"
	propMetaDescription = "Meta Description"
	propSlug            = "Slug"
	propTags            = "Tags"
	propSeries          = "Series"
	propLanguage        = "Language"
	propPointTo         = "Point To"
	propPointedBy       = "Pointed By"
	propStatus          = "Status"
	propPublishedDate   = "Published Date"
)

// Category database property names.
const (
	propCategoryName  = "Name"
	propCategoryPosts = "Posts"
)

// statusPublished marks a post as published in the blog database.
const statusPublished = "Published"

// Image roles used for local image filenames.
const RoleCover = "cover"

// PublishedQuery is the canonical blog database query: published posts,
// newest first. The result order defines the index order.
func PublishedQuery() *notion.DatabaseQuery {
	return &notion.DatabaseQuery{
		Filter: &notion.Filter{
			Property: propStatus,
			Status:   &notion.StatusFilter{Equals: statusPublished},
		},
		Sorts: []notion.Sort{
			{Property: propPublishedDate, Direction: notion.SortDescending},
		},
	}
}

// Source is the part of the Notion client the assembler needs.
type Source interface {
	QueryDatabaseAll(ctx context.Context, databaseID string, query *notion.DatabaseQuery) ([]notion.Page, error)
	GetPage(ctx context.Context, pageID string) (*notion.Page, error)
	FetchBlockTree(ctx context.Context, blockID string) ([]notion.Block, error)
}

// ImageResolver localizes image URLs. It returns the URL to store: the
// input unchanged for stable URLs, or a local path for cached downloads.
type ImageResolver interface {
	Resolve(ctx context.Context, rawURL, slug, role string) (string, error)
}

// AssemblerConfig carries the assembly parameters read from configuration.
type AssemblerConfig struct {
	CategoryDBID    string
	DefaultLanguage string
	WordsPerMinute  int
	// CategoryCovers maps a category name to its default cover URL,
	// the second tier of the cover fallback chain.
	CategoryCovers map[string]string
}

// Assembler turns one Notion page into a complete Post.
type Assembler struct {
	source Source
	images ImageResolver
	cfg    AssemblerConfig
	logger *slog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(source Source, images ImageResolver, cfg AssemblerConfig, logger *slog.Logger) *Assembler {
	return &Assembler{
		source: source,
		images: images,
		cfg:    cfg,
		logger: logger,
	}
}

// Assemble builds the Post for one page: properties, categories, cover,
// localized body images and derived fields. Sub-fetches run sequentially;
// only the content and category fetches are fatal for the post.
func (a *Assembler) Assemble(ctx context.Context, page notion.Page) (Post, error) {
	title := page.StringProp(propTitle)
	slug := page.StringProp(propSlug)
	if slug == "" {
		slug = util.SlugOrDefault(title)
	}
	logger := a.logger.With("slug", slug, "post_title", title)

	blocks, err := a.source.FetchBlockTree(ctx, page.ID)
	if err != nil {
		return Post{}, fmt.Errorf("fetching content of %q: %w", title, err)
	}

	categories, err := a.resolveCategories(ctx, page.ID)
	if err != nil {
		return Post{}, fmt.Errorf("resolving categories of %q: %w", title, err)
	}

	cover := a.resolveCover(ctx, page.ID, slug, categories, logger)
	a.resolveBodyImages(ctx, blocks, slug, logger)

	language := page.StringProp(propLanguage)
	if language == "" {
		language = a.cfg.DefaultLanguage
	}

	return Post{
		ID:              page.ID,
		Title:           title,
		Subtitle:        page.StringProp(propSubtitle),
		MetaTitle:       seo.MetaTitle(page.StringProp(propMetaTitle), title),
		MetaDescription: seo.MetaDescription(page.StringProp(propMetaDescription), collectParagraphText(blocks, seo.MaxDescriptionLength)),
		Slug:            slug,
		Tags:            orEmpty(page.ListProp(propTags)),
		PostCategories:  categories,
		Series:          page.StringProp(propSeries),
		Language:        language,
		PointTo:         orEmpty(page.ListProp(propPointTo)),
		PointedBy:       orEmpty(page.ListProp(propPointedBy)),
		PublishedDate:   page.StringProp(propPublishedDate),
		CreatedTime:     page.CreatedTime,
		LastEditedTime:  page.LastEditedTime,
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
		ReadTime:        ReadTime(blocks, a.cfg.WordsPerMinute),
		CoverImage:      cover,
		Content:         blocks,
	}, nil
}

// resolveCategories queries the category database for records whose
// relation contains this page, flattened to plain names in source order.
func (a *Assembler) resolveCategories(ctx context.Context, pageID string) ([]string, error) {
	pages, err := a.source.QueryDatabaseAll(ctx, a.cfg.CategoryDBID, &notion.DatabaseQuery{
		Filter: &notion.Filter{
			Property: propCategoryPosts,
			Relation: &notion.RelationFilter{Contains: pageID},
		},
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(pages))
	for i := range pages {
		if name := pages[i].StringProp(propCategoryName); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// resolveCover picks the cover image with a three-tier fallback: the
// page's own cover, a category default, then a deterministic placeholder
// seeded by the slug. Failures are recovered by moving to the next tier.
func (a *Assembler) resolveCover(ctx context.Context, pageID, slug string, categories []string, logger *slog.Logger) string {
	record, err := a.source.GetPage(ctx, pageID)
	if err != nil {
		logger.Warn("fetching cover metadata failed, falling back to default cover", "error", err)
	} else if coverURL := record.Cover.URL(); coverURL != "" {
		resolved, err := a.images.Resolve(ctx, coverURL, slug, RoleCover)
		if err != nil {
			logger.Warn("cover download failed, falling back to default cover", "error", err)
		} else {
			return resolved
		}
	}

	for _, category := range categories {
		if coverURL := a.cfg.CategoryCovers[category]; coverURL != "" {
			return coverURL
		}
	}

	return placeholderCover(slug)
}

// placeholderCover is the last cover tier: a stable external image
// deterministically seeded by the post slug.
func placeholderCover(slug string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(slug) + "/1200/630"
}

// resolveBodyImages rewrites image block URLs in place, numbering them in
// document order. A failed download keeps the source URL.
func (a *Assembler) resolveBodyImages(ctx context.Context, blocks []notion.Block, slug string, logger *slog.Logger) {
	n := 0
	notion.Walk(blocks, func(b *notion.Block) {
		imageURL, ok := b.ImageURL()
		if !ok {
			return
		}
		n++
		role := fmt.Sprintf("image-%d", n)

		resolved, err := a.images.Resolve(ctx, imageURL, slug, role)
		if err != nil {
			logger.Warn("image download failed, keeping source URL", "role", role, "error", err)
			return
		}
		if resolved == imageURL {
			return
		}
		if err := b.SetImageURL(resolved); err != nil {
			logger.Warn("rewriting image URL failed", "role", role, "error", err)
		}
	})
}

// orEmpty keeps list fields as [] rather than null in the output JSON.
func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
