// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

// Property is a typed database property value. Only the field matching
// Type is populated.
type Property struct {
	ID             string         `json:"id,omitempty"`
	Type           string         `json:"type"`
	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	Date           *DateValue     `json:"date,omitempty"`
	Select         *SelectOption  `json:"select,omitempty"`
	Status         *SelectOption  `json:"status,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Relation       []RelationRef  `json:"relation,omitempty"`
	Number         *float64       `json:"number,omitempty"`
	CreatedTime    string         `json:"created_time,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty"`
	URL            *string        `json:"url,omitempty"`
}

// Value maps the property to a plain value keyed by its declared type:
// strings for text-like types, []string for multi_select and relation,
// float64 for number. An unknown type, or a missing field for the
// declared type, yields nil; call sites supply their own defaults.
func (p Property) Value() any {
	switch p.Type {
	case "title":
		if p.Title == nil {
			return nil
		}
		return firstPlainText(p.Title)
	case "rich_text":
		if p.RichText == nil {
			return nil
		}
		return firstPlainText(p.RichText)
	case "date":
		if p.Date == nil {
			return nil
		}
		return p.Date.Start
	case "select":
		if p.Select == nil {
			return nil
		}
		return p.Select.Name
	case "status":
		if p.Status == nil {
			return nil
		}
		return p.Status.Name
	case "multi_select":
		if p.MultiSelect == nil {
			return nil
		}
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return names
	case "relation":
		if p.Relation == nil {
			return nil
		}
		ids := make([]string, 0, len(p.Relation))
		for _, ref := range p.Relation {
			ids = append(ids, ref.ID)
		}
		return ids
	case "number":
		if p.Number == nil {
			return float64(0)
		}
		return *p.Number
	case "created_time":
		return p.CreatedTime
	case "last_edited_time":
		return p.LastEditedTime
	case "url":
		if p.URL == nil {
			return nil
		}
		return *p.URL
	default:
		return nil
	}
}

// firstPlainText returns the first text run's plain text, or "".
func firstPlainText(runs []RichText) string {
	if len(runs) == 0 {
		return ""
	}
	return runs[0].PlainText
}

// StringProp extracts a string-valued property, defaulting to "".
func (p *Page) StringProp(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	s, _ := prop.Value().(string)
	return s
}

// ListProp extracts a list-valued property (multi_select or relation),
// defaulting to nil.
func (p *Page) ListProp(name string) []string {
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	list, _ := prop.Value().([]string)
	return list
}

// NumberProp extracts a number property, defaulting to 0.
func (p *Page) NumberProp(name string) float64 {
	prop, ok := p.Properties[name]
	if !ok {
		return 0
	}
	n, _ := prop.Value().(float64)
	return n
}
