package gotmemo

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Client translates lists of words against the persistent store, sending all
// misses to the remote translator in a single call. It keeps no in-memory
// state and does not deduplicate across concurrent calls.
type Client struct {
	store      Store
	remote     RemoteTranslator
	targetLang string
	sourceLang string
	apiKey     string
	logger     *zap.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithClientTargetLang sets the target language.
func WithClientTargetLang(lang string) ClientOption {
	return func(c *Client) {
		c.targetLang = lang
	}
}

// WithClientSourceLang sets the source language.
func WithClientSourceLang(lang string) ClientOption {
	return func(c *Client) {
		c.sourceLang = lang
	}
}

// WithClientAPIKey sets the credential passed to the remote translator.
func WithClientAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a bulk translation client.
func NewClient(store Store, remote RemoteTranslator, opts ...ClientOption) *Client {
	c := &Client{
		store:      store,
		remote:     remote,
		sourceLang: DefaultSourceLang,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ForLang returns a copy of the client targeting lang.
func (c *Client) ForLang(lang string) *Client {
	clone := *c
	clone.targetLang = lang
	return &clone
}

// TargetLang returns the target language.
func (c *Client) TargetLang() string {
	return c.targetLang
}

// SourceLang returns the source language.
func (c *Client) SourceLang() string {
	return c.sourceLang
}

// BulkResult is the outcome of a bulk translation.
type BulkResult struct {
	Translations    []string // Same length and order as the input
	CachedCount     int      // Positions served from the persistent store
	TranslatedCount int      // Positions filled by the remote translator
	Total           int
}

// BulkTranslate returns the translation of every word, in input order.
// Words that could not be resolved are returned unchanged; a remote failure
// is logged, not returned.
func (c *Client) BulkTranslate(ctx context.Context, words []string) []string {
	result, err := c.Translate(ctx, words)
	if err != nil {
		c.logger.Error("bulk translation failed",
			zap.String("target_lang", c.targetLang),
			zap.Int("words", len(words)),
			zap.Error(err),
		)
	}
	return result.Translations
}

// Translate resolves words like BulkTranslate but also reports counts and
// the remote error. The result is always non-nil.
func (c *Client) Translate(ctx context.Context, words []string) (*BulkResult, error) {
	result := &BulkResult{
		Translations: append([]string(nil), words...),
		Total:        len(words),
	}
	if len(words) == 0 || c.targetLang == "" || c.apiKey == "" || SameLang(c.targetLang, c.sourceLang) {
		return result, nil
	}

	// Distinct missing words in first-seen order, and every position each occupies.
	var misses []string
	positions := make(map[string][]int)

	for i, word := range words {
		if word == "" {
			continue
		}
		if rec, ok := c.lookup(ctx, MakeKey(word, c.targetLang)); ok {
			result.Translations[i] = rec.TranslatedText
			result.CachedCount++
			continue
		}
		if _, seen := positions[word]; !seen {
			misses = append(misses, word)
		}
		positions[word] = append(positions[word], i)
	}

	if len(misses) == 0 || c.remote == nil {
		return result, nil
	}

	translations, err := c.remote.Translate(ctx, TranslateRequest{
		Texts:      misses,
		TargetLang: c.targetLang,
		SourceLang: c.sourceLang,
		APIKey:     c.apiKey,
	})
	if err == nil && len(translations) != len(misses) {
		err = &CountMismatchError{Expected: len(misses), Got: len(translations)}
	}
	if err != nil {
		return result, &TranslationError{Message: "bulk translation failed", Cause: err}
	}

	now := time.Now().UTC()
	for i, word := range misses {
		translated := translations[i]
		if translated == "" {
			continue
		}

		if c.store != nil {
			key := MakeKey(word, c.targetLang)
			rec := Record{
				SourceText:     word,
				TargetLang:     c.targetLang,
				TranslatedText: translated,
				UpdatedAt:      now,
			}
			if err := c.store.Put(ctx, key, rec); err != nil {
				c.logger.Warn("failed to persist translation", zap.String("key", key), zap.Error(err))
			}
		}

		for _, idx := range positions[word] {
			result.Translations[idx] = translated
		}
		result.TranslatedCount += len(positions[word])
	}

	return result, nil
}

// lookup reads the persistent store. Failures count as misses.
func (c *Client) lookup(ctx context.Context, key string) (Record, bool) {
	if c.store == nil {
		return Record{}, false
	}
	rec, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("store lookup failed", zap.String("key", key), zap.Error(err))
		return Record{}, false
	}
	return rec, ok && rec.TranslatedText != ""
}
