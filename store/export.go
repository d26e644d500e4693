package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"gopkg.in/yaml.v3"
)

// ExportVersion is written into every export and accepted on import.
const ExportVersion = "1.0"

// Format is a serialization format for exports.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name ("json", "yaml" or "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ExportFormat represents the structure for store export/import.
type ExportFormat struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt string            `json:"exported_at" yaml:"exported_at"`
	Entries    []ExportEntry     `json:"entries" yaml:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ExportEntry represents a single stored translation.
type ExportEntry struct {
	Key            string `json:"key" yaml:"key"`
	SourceText     string `json:"source_text" yaml:"source_text"`
	TargetLang     string `json:"target_lang" yaml:"target_lang"`
	TranslatedText string `json:"translated_text" yaml:"translated_text"`
	UpdatedAt      string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Exporter provides store export functionality.
type Exporter struct {
	store Lister
}

// NewExporter creates a new store exporter.
func NewExporter(store Lister) *Exporter {
	return &Exporter{store: store}
}

// Export writes the store contents to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, metadata map[string]string) error {
	records, err := e.store.Records(ctx)
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(records)),
		Metadata:   metadata,
	}
	for _, kr := range records {
		entry := ExportEntry{
			Key:            kr.Key,
			SourceText:     kr.Record.SourceText,
			TargetLang:     kr.Record.TargetLang,
			TranslatedText: kr.Record.TranslatedText,
		}
		if !kr.Record.UpdatedAt.IsZero() {
			entry.UpdatedAt = kr.Record.UpdatedAt.UTC().Format(time.RFC3339)
		}
		export.Entries = append(export.Entries, entry)
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(export); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(export); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	}
}

// ExportToFile exports the store to a file, choosing the format by extension.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, FormatFromPath(path), metadata)
}

// Importer provides store import functionality.
type Importer struct {
	store Store
}

// NewImporter creates a new store importer.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads entries from r and writes them into the store. Keys are
// re-derived from each entry's source text and target language, so files
// edited by hand cannot introduce mismatched keys.
func (i *Importer) Import(ctx context.Context, r io.Reader, format Format) (*ImportResult, error) {
	var export ExportFormat
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&export); err != nil {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&export); err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if entry.SourceText == "" || entry.TargetLang == "" || entry.TranslatedText == "" {
			result.Failed++
			continue
		}

		rec := Record{
			SourceText:     entry.SourceText,
			TargetLang:     entry.TargetLang,
			TranslatedText: entry.TranslatedText,
		}
		if ts, err := time.Parse(time.RFC3339, entry.UpdatedAt); err == nil {
			rec.UpdatedAt = ts
		}

		if err := i.store.Put(ctx, gotmemo.MakeKey(rec.SourceText, rec.TargetLang), rec); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports entries from a file, choosing the format by extension.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f, FormatFromPath(path))
}
