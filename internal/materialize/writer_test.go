package materialize

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegiv/blogsync/internal/post"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWritePost(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "blog-data")
	w := NewWriter(dir, discardLogger())

	p := post.Post{ID: "p1", Slug: "hello-world", Title: "Hello"}
	if err := w.WritePost(p); err != nil {
		t.Fatalf("WritePost: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hello-world.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var got post.Post
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if got.ID != "p1" || got.Title != "Hello" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestWritePostOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	if err := w.WritePost(post.Post{ID: "first", Slug: "dup"}); err != nil {
		t.Fatalf("WritePost: %v", err)
	}
	if err := w.WritePost(post.Post{ID: "second", Slug: "dup"}); err != nil {
		t.Fatalf("WritePost: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "dup.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"second"`) {
		t.Error("later post must clobber the earlier file")
	}
}

func TestWritePostRejectsTraversalSlug(t *testing.T) {
	w := NewWriter(t.TempDir(), discardLogger())
	if err := w.WritePost(post.Post{Slug: "../escape"}); err == nil {
		t.Fatal("slug escaping the data directory must be rejected")
	}
}

func TestWriteIndexPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	entries := []post.IndexEntry{
		{Slug: "newest"},
		{Slug: "older"},
		{Slug: "oldest"},
	}
	if err := w.WriteIndex(entries); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexFilename))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}

	var got []post.IndexEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}
	if len(got) != 3 || got[0].Slug != "newest" || got[2].Slug != "oldest" {
		t.Errorf("index order = %+v", got)
	}
}

func TestWriteIndexEmpty(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	if err := w.WriteIndex(nil); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, IndexFilename))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty index = %q, want []", data)
	}
}

func TestWriteSitemap(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	entries := []post.IndexEntry{{Slug: "hello-world", LastEditedTime: "2024-02-01T00:00:00.000Z"}}
	if err := w.WriteSitemap("https://example.com/", entries); err != nil {
		t.Fatalf("WriteSitemap: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SitemapFilename))
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	xml := string(data)
	if !strings.Contains(xml, "<loc>https://example.com/blog/hello-world</loc>") {
		t.Errorf("sitemap missing post URL:\n%s", xml)
	}
	if !strings.Contains(xml, "<loc>https://example.com</loc>") {
		t.Errorf("sitemap missing homepage:\n%s", xml)
	}
}
