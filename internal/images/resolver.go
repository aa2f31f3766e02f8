// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package images localizes post images: URLs on Notion's transient
// storage are downloaded into an on-disk cache keyed by deterministic
// filenames, everything else passes through untouched.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	stdpath "path"
	"path/filepath"
	"strings"
)

// Resolver downloads expiring images into a local cache directory and
// returns their public URL paths.
type Resolver struct {
	httpClient *http.Client
	dir        string
	urlPrefix  string
	logger     *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.httpClient = hc
	}
}

// NewResolver creates a Resolver writing to dir and mapping cached files
// under urlPrefix.
func NewResolver(dir, urlPrefix string, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		httpClient: http.DefaultClient,
		dir:        dir,
		urlPrefix:  strings.TrimSuffix(urlPrefix, "/"),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsExpiring reports whether the URL is served from Notion's transient
// storage and will stop working after its signing window.
func IsExpiring(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "file.notion.so":
		return true
	case strings.HasSuffix(host, "secure.notion-static.com"):
		return true
	case strings.Contains(host, "prod-files-secure") && strings.HasSuffix(host, ".amazonaws.com"):
		return true
	case strings.HasSuffix(host, ".amazonaws.com") && strings.Contains(u.Path, "secure.notion-static.com"):
		// Pre-2022 uploads live under s3.<region>.amazonaws.com/secure.notion-static.com/...
		return true
	}
	return false
}

// Filename computes the deterministic cache filename {slug}-{role}{ext},
// sniffing the extension from the URL path.
func Filename(slug, role, rawURL string) string {
	return slug + "-" + role + extensionFor(rawURL)
}

// supported image extensions; anything else is stored as .jpg.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func extensionFor(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if ext := strings.ToLower(stdpath.Ext(p)); imageExtensions[ext] {
		return ext
	}
	return ".jpg"
}

// Resolve returns a URL safe for long-term use: stable URLs unchanged,
// expiring URLs replaced by the path of a locally cached copy. An
// already-cached filename is returned without touching the network.
func (r *Resolver) Resolve(ctx context.Context, rawURL, slug, role string) (string, error) {
	if !IsExpiring(rawURL) {
		return rawURL, nil
	}

	name := Filename(slug, role, rawURL)
	target := filepath.Join(r.dir, name)
	public := r.urlPrefix + "/" + name

	if _, err := os.Stat(target); err == nil {
		r.logger.Debug("image cache hit", "file", name)
		return public, nil
	}

	if err := r.download(ctx, rawURL, target); err != nil {
		return "", err
	}
	r.logger.Debug("image downloaded", "file", name)
	return public, nil
}

// LocalPath returns the on-disk path for a public image path produced by
// this resolver, and whether the URL is one of ours.
func (r *Resolver) LocalPath(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, r.urlPrefix+"/") {
		return "", false
	}
	name := stdpath.Base(publicURL)
	return filepath.Join(r.dir, name), true
}

// download streams the resource to disk. Two concurrent downloads of the
// same name race benignly: the content is identical, last writer wins.
func (r *Resolver) download(ctx context.Context, rawURL, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return fmt.Errorf("writing image: %w", err)
	}
	return f.Close()
}
