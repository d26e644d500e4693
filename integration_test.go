package gotmemo_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/ZaguanLabs/gotmemo/processor"
	"github.com/ZaguanLabs/gotmemo/provider"
	"github.com/ZaguanLabs/gotmemo/store"
)

// Integration tests using all real components

func TestIntegration_EngineSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.db")
	p := provider.NewMockProvider()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	e := gotmemo.NewEngine(s, p, gotmemo.WithTargetLang("es"), gotmemo.WithAPIKey("k"))
	e.T("Hello", false)
	e.Wait()
	if got := e.T("Hello", false); got != "Hola" {
		t.Fatalf("expected Hola, got %q", got)
	}
	e.Close()
	s.Close()

	// A new engine over the same database needs no remote call.
	s2, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s2.Close()
	e2 := gotmemo.NewEngine(s2, p, gotmemo.WithTargetLang("es"), gotmemo.WithAPIKey("k"))
	defer e2.Close()

	e2.T("Hello", false)
	e2.Wait()
	if got := e2.T("Hello", false); got != "Hola" {
		t.Errorf("expected Hola from the store, got %q", got)
	}
	if p.Calls() != 1 {
		t.Errorf("provider should be called once, was called %d times", p.Calls())
	}
}

func TestIntegration_EngineAndClientShareStore(t *testing.T) {
	s := store.NewMemoryStore()
	p := provider.NewMockProvider()

	c := gotmemo.NewClient(s, p, gotmemo.WithClientTargetLang("es"), gotmemo.WithClientAPIKey("k"))
	if _, err := c.Translate(context.Background(), []string{"Hello", "World"}); err != nil {
		t.Fatalf("bulk translate failed: %v", err)
	}

	e := gotmemo.NewEngine(s, p, gotmemo.WithTargetLang("es"), gotmemo.WithAPIKey("k"))
	defer e.Close()
	e.T("World", true)
	e.Wait()

	if got := e.T("World", true); got != "Mundo" {
		t.Errorf("expected Mundo, got %q", got)
	}
	if p.Calls() != 1 {
		t.Errorf("provider should be called once, was called %d times", p.Calls())
	}
}

func TestIntegration_HTMLStoreHit(t *testing.T) {
	s := store.NewMemoryStore()
	p := provider.NewMockProvider()
	proc := processor.NewHTMLProcessor()
	c := gotmemo.NewClient(s, p, gotmemo.WithClientTargetLang("es_ES"), gotmemo.WithClientAPIKey("k"))

	html := `<div><p>Hello</p><p>World</p></div>`

	result1, err := proc.Translate(context.Background(), html, c)
	if err != nil {
		t.Fatalf("first translation failed: %v", err)
	}
	if result1.TranslatedCount != 2 || result1.CachedCount != 0 {
		t.Errorf("first call: expected 2 translated, 0 cached; got %d, %d",
			result1.TranslatedCount, result1.CachedCount)
	}
	if !strings.Contains(result1.Content, "Hola") || !strings.Contains(result1.Content, "Mundo") {
		t.Errorf("expected translations in result, got: %s", result1.Content)
	}

	result2, err := proc.Translate(context.Background(), html, c)
	if err != nil {
		t.Fatalf("second translation failed: %v", err)
	}
	if result2.TranslatedCount != 0 || result2.CachedCount != 2 {
		t.Errorf("second call: expected 0 translated, 2 cached; got %d, %d",
			result2.TranslatedCount, result2.CachedCount)
	}
	if p.Calls() != 1 {
		t.Errorf("provider should be called once, was called %d times", p.Calls())
	}
}

func TestIntegration_RTLLanguage(t *testing.T) {
	p := provider.NewMockProvider()
	p.Set("Hello", "مرحبا")
	c := gotmemo.NewClient(store.NewMemoryStore(), p,
		gotmemo.WithClientTargetLang("ar_SA"), gotmemo.WithClientAPIKey("k"))

	result, err := processor.NewHTMLProcessor().Translate(context.Background(), `<html><body><p>Hello</p></body></html>`, c)
	if err != nil {
		t.Fatalf("translation failed: %v", err)
	}

	if result.Direction != "rtl" {
		t.Errorf("expected rtl, got %s", result.Direction)
	}
	if !strings.Contains(result.Content, `dir="rtl"`) || !strings.Contains(result.Content, `lang="ar-SA"`) {
		t.Errorf("expected lang and dir attributes, got: %s", result.Content)
	}
}

func TestIntegration_SourceEqualsTarget(t *testing.T) {
	p := provider.NewMockProvider()
	c := gotmemo.NewClient(store.NewMemoryStore(), p,
		gotmemo.WithClientTargetLang("en_GB"), gotmemo.WithClientAPIKey("k"))

	result, err := processor.NewHTMLProcessor().Translate(context.Background(), `<p>Hello</p>`, c)
	if err != nil {
		t.Fatalf("translation failed: %v", err)
	}

	if !strings.Contains(result.Content, "Hello") {
		t.Errorf("content should be unchanged, got: %s", result.Content)
	}
	if p.Calls() != 0 {
		t.Errorf("provider should not be called, was called %d times", p.Calls())
	}
}

func TestIntegration_RemoteFailureSurfacesFromHTML(t *testing.T) {
	p := provider.NewMockProvider()
	p.SetError(errors.New("service down"))
	c := gotmemo.NewClient(store.NewMemoryStore(), p,
		gotmemo.WithClientTargetLang("es"), gotmemo.WithClientAPIKey("k"))

	_, err := processor.NewHTMLProcessor().Translate(context.Background(), `<p>Hello</p>`, c)
	if err == nil {
		t.Fatal("expected error")
	}

	var te *gotmemo.TranslationError
	if !errors.As(err, &te) {
		t.Errorf("expected TranslationError, got %T: %v", err, err)
	}
}

func TestIntegration_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemoryStore()
	c := gotmemo.NewClient(src, provider.NewMockProvider(),
		gotmemo.WithClientTargetLang("es"), gotmemo.WithClientAPIKey("k"))
	if _, err := c.Translate(ctx, []string{"Hello", "World"}); err != nil {
		t.Fatalf("bulk translate failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "memo.yaml")
	if err := store.NewExporter(src).ExportToFile(ctx, path, nil); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst := store.NewMemoryStore()
	result, err := store.NewImporter(dst).ImportFromFile(ctx, path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}

	rec, ok, err := dst.Get(ctx, gotmemo.MakeKey("World", "es"))
	if err != nil || !ok || rec.TranslatedText != "Mundo" {
		t.Errorf("expected imported Mundo, got %+v ok=%v err=%v", rec, ok, err)
	}
}
