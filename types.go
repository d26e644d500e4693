package gotmemo

import (
	"context"
	"time"
)

// DefaultSourceLang is the language source texts are written in unless configured otherwise.
const DefaultSourceLang = "en"

// Record is a persisted translation, addressed by MakeKey(SourceText, TargetLang).
type Record struct {
	SourceText     string    `json:"source_text" yaml:"source_text"`
	TargetLang     string    `json:"target_lang" yaml:"target_lang"`
	TranslatedText string    `json:"translated_text" yaml:"translated_text"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store is the persistent key/value contract for translation records.
type Store interface {
	// Get returns the record stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (rec Record, ok bool, err error)

	// Put upserts the record under key.
	Put(ctx context.Context, key string, rec Record) error
}

// RemoteTranslator is the interface for remote translation services.
type RemoteTranslator interface {
	// Translate returns one translation per request text, in the same order.
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a remote translation call.
type TranslateRequest struct {
	Texts      []string
	TargetLang string
	SourceLang string
	APIKey     string
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}
