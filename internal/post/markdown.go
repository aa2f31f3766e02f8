// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package post

import (
	"encoding/json"
	"strings"

	"github.com/olegiv/blogsync/internal/notion"
)

// Markdown renders a block tree as markdown. The preview server uses it
// to show materialized posts as readable pages; it is not part of the
// JSON output contract.
func Markdown(blocks []notion.Block) string {
	var sb strings.Builder
	renderBlocks(&sb, blocks, 0)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func renderBlocks(sb *strings.Builder, blocks []notion.Block, depth int) {
	indent := strings.Repeat("  ", depth)

	for i := range blocks {
		b := &blocks[i]
		text := b.PlainText()

		switch b.Type {
		case "paragraph":
			if text != "" {
				sb.WriteString(indent + text + "\n\n")
			}
		case "heading_1":
			sb.WriteString("# " + text + "\n\n")
		case "heading_2":
			sb.WriteString("## " + text + "\n\n")
		case "heading_3":
			sb.WriteString("### " + text + "\n\n")
		case "bulleted_list_item":
			sb.WriteString(indent + "- " + text + "\n")
		case "numbered_list_item":
			sb.WriteString(indent + "1. " + text + "\n")
		case "to_do":
			box := "[ ]"
			if todoChecked(b) {
				box = "[x]"
			}
			sb.WriteString(indent + "- " + box + " " + text + "\n")
		case "quote", "callout":
			sb.WriteString(indent + "> " + text + "\n\n")
		case "toggle":
			if text != "" {
				sb.WriteString(indent + "**" + text + "**\n\n")
			}
		case "code":
			sb.WriteString("```" + codeLanguage(b) + "\n" + text + "\n```\n\n")
		case "image":
			if url, ok := b.ImageURL(); ok {
				sb.WriteString("![" + imageCaption(b) + "](" + url + ")\n\n")
			}
		case "divider":
			sb.WriteString("---\n\n")
		default:
			if text != "" {
				sb.WriteString(indent + text + "\n\n")
			}
		}

		if len(b.Children) > 0 {
			renderBlocks(sb, b.Children, depth+1)
		}
	}
}

func todoChecked(b *notion.Block) bool {
	raw, ok := b.Payload["to_do"]
	if !ok {
		return false
	}
	var p struct {
		Checked bool `json:"checked"`
	}
	_ = json.Unmarshal(raw, &p)
	return p.Checked
}

func codeLanguage(b *notion.Block) string {
	raw, ok := b.Payload["code"]
	if !ok {
		return ""
	}
	var p struct {
		Language string `json:"language"`
	}
	_ = json.Unmarshal(raw, &p)
	return p.Language
}

func imageCaption(b *notion.Block) string {
	raw, ok := b.Payload["image"]
	if !ok {
		return ""
	}
	var p struct {
		Caption []notion.RichText `json:"caption"`
	}
	_ = json.Unmarshal(raw, &p)

	var out string
	for _, rt := range p.Caption {
		out += rt.PlainText
	}
	return out
}
