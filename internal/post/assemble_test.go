package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/olegiv/blogsync/internal/notion"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource serves canned pages and block trees.
type fakeSource struct {
	categoryPages []notion.Page
	categoryErr   error
	trees         map[string][]notion.Block
	treeErr       error
	records       map[string]*notion.Page
	recordErr     error
}

func (f *fakeSource) QueryDatabaseAll(_ context.Context, _ string, _ *notion.DatabaseQuery) ([]notion.Page, error) {
	return f.categoryPages, f.categoryErr
}

func (f *fakeSource) GetPage(_ context.Context, pageID string) (*notion.Page, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	if rec, ok := f.records[pageID]; ok {
		return rec, nil
	}
	return &notion.Page{ID: pageID}, nil
}

func (f *fakeSource) FetchBlockTree(_ context.Context, blockID string) ([]notion.Block, error) {
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	return f.trees[blockID], nil
}

// fakeResolver localizes expiring URLs and fails on demand.
type fakeResolver struct {
	calls []string
	fail  bool
}

func (f *fakeResolver) Resolve(_ context.Context, rawURL, slug, role string) (string, error) {
	f.calls = append(f.calls, role+" "+rawURL)
	if f.fail {
		return "", errors.New("download failed")
	}
	if strings.Contains(rawURL, "notion-static") || strings.Contains(rawURL, "prod-files-secure") || strings.Contains(rawURL, "file.notion.so") {
		return fmt.Sprintf("/blog-images/%s-%s.jpg", slug, role), nil
	}
	return rawURL, nil
}

func mustPage(t *testing.T, raw string) notion.Page {
	t.Helper()
	var p notion.Page
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	return p
}

func categoryPage(t *testing.T, name string) notion.Page {
	t.Helper()
	return mustPage(t, fmt.Sprintf(`{
		"id": "cat-%s",
		"properties": {"Name": {"type":"title","title":[{"plain_text":%q}]}}
	}`, name, name))
}

const blogPageJSON = `{
	"id": "page-1",
	"created_time": "2024-01-01T00:00:00.000Z",
	"last_edited_time": "2024-02-01T00:00:00.000Z",
	"properties": {
		"Title": {"type":"title","title":[{"plain_text":"Hello, World!"}]},
		"Status": {"type":"status","status":{"name":"Published"}},
		"Published Date": {"type":"date","date":{"start":"2024-01-15"}},
		"Tags": {"type":"multi_select","multi_select":[{"name":"go"},{"name":"web"}]}
	}
}`

func defaultConfig() AssemblerConfig {
	return AssemblerConfig{
		CategoryDBID:    "cat-db",
		DefaultLanguage: "en",
		WordsPerMinute:  180,
	}
}

func TestAssembleDerivesSlugFromTitle(t *testing.T) {
	src := &fakeSource{trees: map[string][]notion.Block{}}
	a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())

	p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if p.Slug != "hello-world" {
		t.Errorf("Slug = %q, want hello-world", p.Slug)
	}
	if p.Title != "Hello, World!" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Language != "en" {
		t.Errorf("Language = %q, want default en", p.Language)
	}
	if p.PublishedDate != "2024-01-15" {
		t.Errorf("PublishedDate = %q", p.PublishedDate)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "go" {
		t.Errorf("Tags = %v", p.Tags)
	}
	if p.PointTo == nil || p.PointedBy == nil {
		t.Error("relation lists must be empty, not nil")
	}
	if p.ReadTime < 1 {
		t.Errorf("ReadTime = %d", p.ReadTime)
	}
	if p.LastUpdated == "" {
		t.Error("LastUpdated must be stamped")
	}
}

func TestAssembleExplicitSlugWins(t *testing.T) {
	raw := `{
		"id": "page-2",
		"properties": {
			"Title": {"type":"title","title":[{"plain_text":"Some Title"}]},
			"Slug": {"type":"rich_text","rich_text":[{"plain_text":"custom-slug"}]}
		}
	}`
	src := &fakeSource{trees: map[string][]notion.Block{}}
	a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())

	p, err := a.Assemble(context.Background(), mustPage(t, raw))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if p.Slug != "custom-slug" {
		t.Errorf("Slug = %q, want custom-slug", p.Slug)
	}
}

func TestAssembleUntitled(t *testing.T) {
	raw := `{"id": "page-3", "properties": {}}`
	src := &fakeSource{trees: map[string][]notion.Block{}}
	a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())

	p, err := a.Assemble(context.Background(), mustPage(t, raw))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if p.Slug != "untitled" {
		t.Errorf("Slug = %q, want untitled", p.Slug)
	}
}

func TestAssembleContentFetchFailureIsFatal(t *testing.T) {
	src := &fakeSource{treeErr: errors.New("api down")}
	a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())

	if _, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON)); err == nil {
		t.Fatal("content fetch failure must propagate")
	}
}

func TestAssembleCoverTiers(t *testing.T) {
	withCover := &notion.Page{
		ID: "page-1",
		Cover: &notion.FileRef{
			Type: "file",
			File: &notion.HostedFile{URL: "https://prod-files-secure.s3.us-west-2.amazonaws.com/a/b.png"},
		},
	}

	t.Run("page cover resolved", func(t *testing.T) {
		src := &fakeSource{
			trees:   map[string][]notion.Block{},
			records: map[string]*notion.Page{"page-1": withCover},
		}
		a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())
		p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if p.CoverImage != "/blog-images/hello-world-cover.jpg" {
			t.Errorf("CoverImage = %q", p.CoverImage)
		}
	})

	t.Run("category default when no page cover", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.CategoryCovers = map[string]string{"golang": "https://cdn.example.com/go.png"}
		src := &fakeSource{
			trees:         map[string][]notion.Block{},
			categoryPages: []notion.Page{categoryPage(t, "golang")},
		}
		a := NewAssembler(src, &fakeResolver{}, cfg, discardLogger())
		p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if p.CoverImage != "https://cdn.example.com/go.png" {
			t.Errorf("CoverImage = %q", p.CoverImage)
		}
		if len(p.PostCategories) != 1 || p.PostCategories[0] != "golang" {
			t.Errorf("PostCategories = %v", p.PostCategories)
		}
	})

	t.Run("placeholder when nothing else", func(t *testing.T) {
		src := &fakeSource{trees: map[string][]notion.Block{}}
		a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())
		p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if !strings.Contains(p.CoverImage, "picsum.photos/seed/hello-world") {
			t.Errorf("CoverImage = %q, want deterministic placeholder", p.CoverImage)
		}
	})

	t.Run("cover download failure falls through", func(t *testing.T) {
		src := &fakeSource{
			trees:   map[string][]notion.Block{},
			records: map[string]*notion.Page{"page-1": withCover},
		}
		a := NewAssembler(src, &fakeResolver{fail: true}, defaultConfig(), discardLogger())
		p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
		if err != nil {
			t.Fatalf("cover failure must not fail the post: %v", err)
		}
		if !strings.Contains(p.CoverImage, "picsum.photos") {
			t.Errorf("CoverImage = %q, want placeholder tier", p.CoverImage)
		}
	})

	t.Run("cover metadata fetch failure falls through", func(t *testing.T) {
		src := &fakeSource{
			trees:     map[string][]notion.Block{},
			recordErr: errors.New("not found"),
		}
		a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())
		p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
		if err != nil {
			t.Fatalf("cover metadata failure must not fail the post: %v", err)
		}
		if !strings.Contains(p.CoverImage, "picsum.photos") {
			t.Errorf("CoverImage = %q", p.CoverImage)
		}
	})
}

func imageBlock(id, url string) notion.Block {
	payload := fmt.Sprintf(`{"type":"file","file":{"url":%q}}`, url)
	return notion.Block{
		ID:      id,
		Type:    "image",
		Payload: map[string]json.RawMessage{"image": json.RawMessage(payload)},
	}
}

func TestAssembleBodyImagesNumberedInDocumentOrder(t *testing.T) {
	toggle := textBlock("toggle", "more")
	toggle.Children = []notion.Block{
		imageBlock("img-2", "https://file.notion.so/f/two.png"),
	}
	tree := []notion.Block{
		imageBlock("img-1", "https://file.notion.so/f/one.png"),
		toggle,
		imageBlock("img-3", "https://example.com/stable.png"),
	}

	resolver := &fakeResolver{}
	src := &fakeSource{trees: map[string][]notion.Block{"page-1": tree}}
	a := NewAssembler(src, resolver, defaultConfig(), discardLogger())

	p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	url1, _ := p.Content[0].ImageURL()
	if url1 != "/blog-images/hello-world-image-1.jpg" {
		t.Errorf("first image = %q", url1)
	}
	url2, _ := p.Content[1].Children[0].ImageURL()
	if url2 != "/blog-images/hello-world-image-2.jpg" {
		t.Errorf("nested image = %q", url2)
	}
	url3, _ := p.Content[2].ImageURL()
	if url3 != "https://example.com/stable.png" {
		t.Errorf("stable image = %q, want passthrough", url3)
	}
}

func TestAssembleMetaFallbacks(t *testing.T) {
	tree := []notion.Block{textBlock("paragraph", "This paragraph feeds the description.")}
	src := &fakeSource{trees: map[string][]notion.Block{"page-1": tree}}
	a := NewAssembler(src, &fakeResolver{}, defaultConfig(), discardLogger())

	p, err := a.Assemble(context.Background(), mustPage(t, blogPageJSON))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if p.MetaTitle != "Hello, World!" {
		t.Errorf("MetaTitle = %q, want title fallback", p.MetaTitle)
	}
	if p.MetaDescription != "This paragraph feeds the description." {
		t.Errorf("MetaDescription = %q", p.MetaDescription)
	}
}
