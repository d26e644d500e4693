// Package processor translates the text of HTML documents through a bulk
// translation client.
package processor

import (
	"context"

	"github.com/ZaguanLabs/gotmemo"
)

// IgnoredTags contains HTML tags whose content is never translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// TextNode is a unique translatable text found in a document.
type TextNode struct {
	ID        string // Sequential identifier in document order ("node-0", ...)
	Text      string // Text with surrounding whitespace trimmed
	Hash      string // gotmemo.HashText(Text)
	ParentTag string
	Context   string // Human readable location hint (parent tag, siblings, ancestors)
}

// BulkTranslator resolves a list of words in one round trip.
// *gotmemo.Client implements it.
type BulkTranslator interface {
	Translate(ctx context.Context, words []string) (*gotmemo.BulkResult, error)
	TargetLang() string
}

// ProcessedContent is the result of translating a document.
type ProcessedContent struct {
	Content         string
	TargetLang      string
	Direction       string // "ltr" or "rtl"
	Nodes           int    // Unique text nodes found
	CachedCount     int
	TranslatedCount int
}

var _ BulkTranslator = (*gotmemo.Client)(nil)
