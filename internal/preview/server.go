// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package preview serves the materialized artifacts over HTTP for local
// inspection: the raw JSON files, the cached images and a rendered HTML
// view of each post.
package preview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/blogsync/internal/notion"
	"github.com/olegiv/blogsync/internal/post"
	"github.com/olegiv/blogsync/internal/util"
)

// htmlSanitizer strips dangerous markup from rendered post HTML. The UGC
// policy keeps the tags the markdown renderer emits, images included.
var htmlSanitizer = bluemonday.UGCPolicy()

// pageTemplate is the minimal shell around a rendered post.
var pageTemplate = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8">
<title>{{.MetaTitle}}</title>
<meta name="description" content="{{.MetaDescription}}">
<style>body{max-width:48rem;margin:2rem auto;padding:0 1rem;font-family:sans-serif;line-height:1.6}img{max-width:100%}</style>
</head>
<body>
{{if .Cover}}<img src="{{.Cover}}" alt="">{{end}}
<h1>{{.Title}}</h1>
{{if .Subtitle}}<p><em>{{.Subtitle}}</em></p>{{end}}
<p><small>{{.PublishedDate}} &middot; {{.ReadTime}} min read</small></p>
{{.Body}}
</body>
</html>
`))

// Server serves one data directory and one images directory.
type Server struct {
	dataDir     string
	imagesDir   string
	imagePrefix string
	logger      *slog.Logger
}

// NewServer creates a preview server over the given artifact directories.
// imagePrefix is the public path prefix stored in post JSON, e.g.
// "/blog-images".
func NewServer(dataDir, imagesDir, imagePrefix string, logger *slog.Logger) *Server {
	return &Server{
		dataDir:     dataDir,
		imagesDir:   imagesDir,
		imagePrefix: imagePrefix,
		logger:      logger,
	}
}

// Routes builds the preview router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/posts/{slug}", s.handlePostJSON)
	r.Get("/preview/{slug}", s.handlePreview)

	imageServer := http.StripPrefix(s.imagePrefix, http.FileServer(http.Dir(s.imagesDir)))
	r.Get(s.imagePrefix+"/*", imageServer.ServeHTTP)

	return r
}

// handleIndex serves index.json.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveJSONFile(w, "index.json")
}

// handlePostJSON serves one post's JSON artifact by slug.
func (s *Server) handlePostJSON(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		http.Error(w, "invalid slug", http.StatusBadRequest)
		return
	}
	s.serveJSONFile(w, slug+".json")
}

// handlePreview renders one post as sanitized HTML.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		http.Error(w, "invalid slug", http.StatusBadRequest)
		return
	}

	p, err := s.loadPost(slug)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("loading post for preview", "slug", slug, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := renderHTML(p.Content)
	if err != nil {
		s.logger.Error("rendering post preview", "slug", slug, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, map[string]any{
		"Language":        p.Language,
		"Title":           p.Title,
		"Subtitle":        p.Subtitle,
		"MetaTitle":       p.MetaTitle,
		"MetaDescription": p.MetaDescription,
		"PublishedDate":   p.PublishedDate,
		"ReadTime":        p.ReadTime,
		"Cover":           p.CoverImage,
		"Body":            template.HTML(body),
	})
	if err != nil {
		s.logger.Error("executing preview template", "slug", slug, "error", err)
	}
}

// serveJSONFile streams one artifact from the data directory.
func (s *Server) serveJSONFile(w http.ResponseWriter, name string) {
	path, err := util.SafeJoinPath(s.dataDir, name)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.logger.Error("reading artifact", "file", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(data)
}

// loadPost reads and decodes one post artifact.
func (s *Server) loadPost(slug string) (*post.Post, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, slug+".json"))
	if err != nil {
		return nil, err
	}
	var p post.Post
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding %s.json: %w", slug, err)
	}
	return &p, nil
}

// renderHTML converts a block tree to sanitized HTML via its markdown
// projection.
func renderHTML(blocks []notion.Block) ([]byte, error) {
	md := post.Markdown(blocks)
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return nil, err
	}
	return htmlSanitizer.SanitizeBytes(buf.Bytes()), nil
}
