// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package post

import (
	"strings"

	"github.com/olegiv/blogsync/internal/notion"
	"github.com/olegiv/blogsync/internal/seo"
)

// textBearingTypes are the block types whose rich text counts toward the
// word total.
var textBearingTypes = map[string]bool{
	"paragraph":          true,
	"heading_1":          true,
	"heading_2":          true,
	"heading_3":          true,
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"quote":              true,
	"callout":            true,
	"toggle":             true,
	"to_do":              true,
}

// ReadTime estimates reading minutes for a block tree: depth-first word
// count over text-bearing blocks, divided by reading speed, rounded up,
// never less than one minute.
func ReadTime(blocks []notion.Block, wordsPerMinute int) int {
	words := 0
	notion.Walk(blocks, func(b *notion.Block) {
		if !textBearingTypes[b.Type] {
			return
		}
		words += len(strings.Fields(b.PlainText()))
	})

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Preview extracts a short plain-text excerpt from the post's top-level
// paragraph blocks. Child blocks are not descended into. Returns "" when
// the post has no paragraph text.
func Preview(blocks []notion.Block, maxLength int) string {
	text := collectParagraphText(blocks, maxLength)
	if text == "" {
		return ""
	}
	if len([]rune(text)) <= maxLength {
		return text
	}
	return seo.TruncateText(text, maxLength)
}

// collectParagraphText concatenates top-level paragraph text in document
// order, stopping once the accumulated length exceeds limit.
func collectParagraphText(blocks []notion.Block, limit int) string {
	var sb strings.Builder
	for i := range blocks {
		if blocks[i].Type != "paragraph" {
			continue
		}
		text := strings.TrimSpace(blocks[i].PlainText())
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(text)
		if sb.Len() > limit {
			break
		}
	}
	return sb.String()
}
