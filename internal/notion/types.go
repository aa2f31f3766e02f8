// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notion is a minimal client for the Notion API covering the
// operations the sync job needs: database queries, page retrieval and
// block-tree listing. Identifiers are treated as opaque strings.
package notion

// Page is a record in a Notion database. Properties are keyed by their
// display name in the database schema.
type Page struct {
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time"`
	LastEditedTime string              `json:"last_edited_time"`
	Cover          *FileRef            `json:"cover"`
	Properties     map[string]Property `json:"properties"`
}

// FileRef points at either a Notion-hosted file or an external URL.
type FileRef struct {
	Type     string       `json:"type"`
	File     *HostedFile  `json:"file,omitempty"`
	External *ExternalRef `json:"external,omitempty"`
}

// HostedFile is a file stored by Notion. Its URL expires.
type HostedFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// ExternalRef is a file referenced by a stable external URL.
type ExternalRef struct {
	URL string `json:"url"`
}

// URL returns the file URL regardless of hosting type, or "" if absent.
func (f *FileRef) URL() string {
	if f == nil {
		return ""
	}
	switch f.Type {
	case "file":
		if f.File != nil {
			return f.File.URL
		}
	case "external":
		if f.External != nil {
			return f.External.URL
		}
	}
	return ""
}

// RichText is one text run inside a block or property value.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	PlainText string       `json:"plain_text"`
	Href      *string      `json:"href,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
}

// TextContent is the payload of a "text" rich text run.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link is a hyperlink attached to a text run.
type Link struct {
	URL string `json:"url"`
}

// SelectOption is a select, status or multi-select option.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// RelationRef references a page in a related database.
type RelationRef struct {
	ID string `json:"id"`
}

// DateValue is the payload of a date property.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// DatabaseQuery is the body of a database query request. Only the filter
// and sort shapes the sync job uses are modeled.
type DatabaseQuery struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// Filter matches pages by a single property condition.
type Filter struct {
	Property string          `json:"property"`
	Status   *StatusFilter   `json:"status,omitempty"`
	Relation *RelationFilter `json:"relation,omitempty"`
}

// StatusFilter matches a status property by exact option name.
type StatusFilter struct {
	Equals string `json:"equals"`
}

// RelationFilter matches a relation property containing a page ID.
type RelationFilter struct {
	Contains string `json:"contains"`
}

// Sort orders query results by a property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// Sort directions.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// pageList is one page of database query results.
type pageList struct {
	Results    []Page `json:"results"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// blockList is one page of block children results.
type blockList struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}
