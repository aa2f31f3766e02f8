// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

import (
	"encoding/json"
	"fmt"
)

// Block is one node of a content tree: a type tag, the type-specific
// payload kept verbatim, and an ordered list of child blocks. Unknown
// block types survive a marshal round trip untouched.
type Block struct {
	ID          string
	Type        string
	HasChildren bool

	// Payload holds every field of the source block except id, type and
	// has_children, keyed by field name.
	Payload map[string]json.RawMessage

	// Children is attached by the tree fetcher. A nil slice means the
	// block has no children; an empty non-nil slice means children exist
	// upstream but could not be fetched.
	Children []Block
}

// UnmarshalJSON splits the well-known block fields from the type-specific
// payload, which is preserved raw.
func (b *Block) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &b.ID); err != nil {
			return fmt.Errorf("block id: %w", err)
		}
		delete(raw, "id")
	}
	if v, ok := raw["type"]; ok {
		if err := json.Unmarshal(v, &b.Type); err != nil {
			return fmt.Errorf("block type: %w", err)
		}
		delete(raw, "type")
	}
	if v, ok := raw["has_children"]; ok {
		if err := json.Unmarshal(v, &b.HasChildren); err != nil {
			return fmt.Errorf("block has_children: %w", err)
		}
		delete(raw, "has_children")
	}
	if v, ok := raw["children"]; ok {
		if err := json.Unmarshal(v, &b.Children); err != nil {
			return fmt.Errorf("block children: %w", err)
		}
		delete(raw, "children")
	}

	b.Payload = raw
	return nil
}

// MarshalJSON reassembles the block in its source shape, with children
// attached when present.
func (b Block) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Payload)+4)
	for k, v := range b.Payload {
		out[k] = v
	}
	out["id"] = b.ID
	out["type"] = b.Type
	out["has_children"] = b.HasChildren
	if b.Children != nil {
		out["children"] = b.Children
	}
	return json.Marshal(out)
}

// richTextPayload is the common shape of text-bearing block payloads.
type richTextPayload struct {
	RichText []RichText `json:"rich_text"`
}

// RichTexts returns the block's text runs, or nil for blocks whose payload
// carries no rich text.
func (b *Block) RichTexts() []RichText {
	raw, ok := b.Payload[b.Type]
	if !ok {
		return nil
	}
	var p richTextPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return p.RichText
}

// PlainText concatenates the plain text of all the block's text runs.
func (b *Block) PlainText() string {
	var out string
	for _, rt := range b.RichTexts() {
		out += rt.PlainText
	}
	return out
}

// ImageURL returns the URL of an image block, and whether the block is an
// image carrying one.
func (b *Block) ImageURL() (string, bool) {
	if b.Type != "image" {
		return "", false
	}
	raw, ok := b.Payload["image"]
	if !ok {
		return "", false
	}
	var ref FileRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", false
	}
	url := ref.URL()
	return url, url != ""
}

// SetImageURL rewrites an image block's URL in place, preserving every
// other payload field (caption, expiry metadata and so on).
func (b *Block) SetImageURL(url string) error {
	raw, ok := b.Payload["image"]
	if !ok {
		return fmt.Errorf("block %s has no image payload", b.ID)
	}

	var img map[string]any
	if err := json.Unmarshal(raw, &img); err != nil {
		return fmt.Errorf("image payload of block %s: %w", b.ID, err)
	}

	hostType, _ := img["type"].(string)
	switch hostType {
	case "file":
		file, _ := img["file"].(map[string]any)
		if file == nil {
			file = map[string]any{}
		}
		file["url"] = url
		img["file"] = file
	case "external":
		ext, _ := img["external"].(map[string]any)
		if ext == nil {
			ext = map[string]any{}
		}
		ext["url"] = url
		img["external"] = ext
	default:
		return fmt.Errorf("block %s has unknown image hosting type %q", b.ID, hostType)
	}

	data, err := json.Marshal(img)
	if err != nil {
		return err
	}
	b.Payload["image"] = json.RawMessage(data)
	return nil
}

// Walk visits blocks depth-first in document order, children after the
// block that owns them. The visited block may be mutated in place.
func Walk(blocks []Block, fn func(*Block)) {
	for i := range blocks {
		fn(&blocks[i])
		Walk(blocks[i].Children, fn)
	}
}
