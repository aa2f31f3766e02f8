// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package post assembles blog posts from Notion records and computes
// their derived fields. The JSON shape of Post and IndexEntry is the
// contract with the rendering layer and must stay stable.
package post

import "github.com/olegiv/blogsync/internal/notion"

// Post is one published blog post, fully materialized.
type Post struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Subtitle        string         `json:"subtitle"`
	MetaTitle       string         `json:"metaTitle"`
	MetaDescription string         `json:"metaDescription"`
	Slug            string         `json:"slug"`
	Tags            []string       `json:"tags"`
	PostCategories  []string       `json:"postCategories"`
	Series          string         `json:"series,omitempty"`
	Language        string         `json:"language"`
	PointTo         []string       `json:"pointTo"`
	PointedBy       []string       `json:"pointedBy"`
	PublishedDate   string         `json:"publishedDate"`
	CreatedTime     string         `json:"createdTime"`
	LastEditedTime  string         `json:"lastEditedTime"`
	LastUpdated     string         `json:"lastUpdated"`
	ReadTime        int            `json:"readTime"`
	CoverImage      string         `json:"coverImage"`
	Content         []notion.Block `json:"content"`
}

// IndexEntry is the Post projection written to index.json: everything
// except the content tree, plus a short plain-text preview.
type IndexEntry struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Slug            string   `json:"slug"`
	Tags            []string `json:"tags"`
	PostCategories  []string `json:"postCategories"`
	Series          string   `json:"series,omitempty"`
	Language        string   `json:"language"`
	PointTo         []string `json:"pointTo"`
	PointedBy       []string `json:"pointedBy"`
	PublishedDate   string   `json:"publishedDate"`
	CreatedTime     string   `json:"createdTime"`
	LastEditedTime  string   `json:"lastEditedTime"`
	LastUpdated     string   `json:"lastUpdated"`
	ReadTime        int      `json:"readTime"`
	CoverImage      string   `json:"coverImage"`
	ContentPreview  string   `json:"contentPreview"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
}

// IndexEntry projects the post for the index, computing the preview from
// its content tree.
func (p Post) IndexEntry(previewLength int) IndexEntry {
	return IndexEntry{
		ID:              p.ID,
		Title:           p.Title,
		Subtitle:        p.Subtitle,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Slug:            p.Slug,
		Tags:            p.Tags,
		PostCategories:  p.PostCategories,
		Series:          p.Series,
		Language:        p.Language,
		PointTo:         p.PointTo,
		PointedBy:       p.PointedBy,
		PublishedDate:   p.PublishedDate,
		CreatedTime:     p.CreatedTime,
		LastEditedTime:  p.LastEditedTime,
		LastUpdated:     p.LastUpdated,
		ReadTime:        p.ReadTime,
		CoverImage:      p.CoverImage,
		ContentPreview:  Preview(p.Content, previewLength),
	}
}
