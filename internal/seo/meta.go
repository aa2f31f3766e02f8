// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo computes SEO meta fields and sitemaps for materialized posts.
package seo

import "strings"

// MaxDescriptionLength is the conventional meta description limit.
const MaxDescriptionLength = 160

// MetaTitle resolves the meta title with fallback: explicit value, then
// the post title.
func MetaTitle(explicit, title string) string {
	if explicit != "" {
		return explicit
	}
	return title
}

// MetaDescription resolves the meta description with fallback: explicit
// value, then body text truncated at a word boundary.
func MetaDescription(explicit, bodyText string) string {
	if explicit != "" {
		return explicit
	}
	return TruncateText(bodyText, MaxDescriptionLength)
}

// TruncateText truncates text to maxLen characters at a word boundary,
// appending an ellipsis when truncation occurs.
func TruncateText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	// Last space at or before maxLen+1 keeps a word ending exactly on
	// the boundary intact.
	cut := -1
	limit := maxLen + 1
	if limit > len(runes) {
		limit = len(runes)
	}
	for i := 0; i < limit; i++ {
		if runes[i] == ' ' {
			cut = i
		}
	}
	if cut <= 0 {
		cut = maxLen
	}

	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}
