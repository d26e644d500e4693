package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/gotmemo"
	"gopkg.in/yaml.v3"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	ctx := context.Background()
	for _, rec := range []Record{
		{SourceText: "Hello", TargetLang: "es", TranslatedText: "Hola"},
		{SourceText: "World", TargetLang: "es", TranslatedText: "Mundo"},
	} {
		if err := s.Put(ctx, gotmemo.MakeKey(rec.SourceText, rec.TargetLang), rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	return s
}

func TestExporter_Export(t *testing.T) {
	exporter := NewExporter(seededStore(t))
	var buf bytes.Buffer

	err := exporter.Export(context.Background(), &buf, FormatJSON, map[string]string{"lang": "es"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if export.Version != ExportVersion {
		t.Errorf("Expected version %s, got %s", ExportVersion, export.Version)
	}
	if len(export.Entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(export.Entries))
	}
	if export.Metadata["lang"] != "es" {
		t.Errorf("Expected metadata lang=es, got %v", export.Metadata)
	}
	for _, e := range export.Entries {
		if e.Key != gotmemo.MakeKey(e.SourceText, e.TargetLang) {
			t.Errorf("Entry key %q does not match its pair %q/%q", e.Key, e.SourceText, e.TargetLang)
		}
	}
}

func TestExporter_ExportYAML(t *testing.T) {
	exporter := NewExporter(seededStore(t))
	var buf bytes.Buffer

	if err := exporter.Export(context.Background(), &buf, FormatYAML, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := yaml.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse YAML export: %v", err)
	}
	if len(export.Entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(export.Entries))
	}
	if !strings.Contains(buf.String(), "translated_text: Hola") {
		t.Errorf("YAML should use snake_case keys, got:\n%s", buf.String())
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"exported_at": "2026-01-01T00:00:00Z",
		"entries": [
			{"key": "ignored", "source_text": "Hello", "target_lang": "es", "translated_text": "Hola", "updated_at": "2026-01-01T00:00:00Z"},
			{"source_text": "World", "target_lang": "es", "translated_text": "Mundo"},
			{"source_text": "", "target_lang": "es", "translated_text": "broken"}
		],
		"metadata": {"lang": "es"}
	}`

	s := NewMemoryStore()
	importer := NewImporter(s)

	result, err := importer.Import(context.Background(), strings.NewReader(jsonData), FormatJSON)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Failed)
	}
	if result.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", result.Version)
	}

	rec, ok, _ := s.Get(context.Background(), gotmemo.MakeKey("Hello", "es"))
	if !ok || rec.TranslatedText != "Hola" {
		t.Errorf("Expected Hello/es to be importable under its derived key, got %+v (ok=%v)", rec, ok)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("updated_at should be carried over")
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	importer := NewImporter(NewMemoryStore())

	_, err := importer.Import(context.Background(), strings.NewReader("not json"), FormatJSON)
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestExportImport_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"export.json", "export.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			if err := NewExporter(seededStore(t)).ExportToFile(ctx, path, nil); err != nil {
				t.Fatalf("ExportToFile failed: %v", err)
			}

			dst := NewMemoryStore()
			result, err := NewImporter(dst).ImportFromFile(ctx, path)
			if err != nil {
				t.Fatalf("ImportFromFile failed: %v", err)
			}
			if result.Imported != 2 || dst.Len() != 2 {
				t.Errorf("Expected 2 records after round trip, got imported=%d len=%d", result.Imported, dst.Len())
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
