package gotmemo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine serves single-word translations from an in-memory cache and resolves
// misses in the background: first from the persistent store, then from the
// remote translator. At most one resolution runs per key at a time.
type Engine struct {
	store        Store
	remote       RemoteTranslator
	sourceLang   string
	apiKey       string
	fetchTimeout time.Duration
	logger       *zap.Logger

	mu         sync.Mutex
	targetLang string
	cache      map[string]string
	inFlight   map[string]struct{}
	generation uint64

	subs subscribers

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithTargetLang sets the initial target language.
func WithTargetLang(lang string) EngineOption {
	return func(e *Engine) {
		e.targetLang = lang
	}
}

// WithSourceLang sets the source language.
func WithSourceLang(lang string) EngineOption {
	return func(e *Engine) {
		e.sourceLang = lang
	}
}

// WithAPIKey sets the credential passed to the remote translator.
// Without one the engine passes every text through untranslated.
func WithAPIKey(key string) EngineOption {
	return func(e *Engine) {
		e.apiKey = key
	}
}

// WithFetchTimeout bounds each background resolution. Zero means no timeout.
func WithFetchTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over the given store and remote translator.
// Either may be nil: a nil store never hits, a nil remote never fetches.
func NewEngine(store Store, remote RemoteTranslator, opts ...EngineOption) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:      store,
		remote:     remote,
		sourceLang: DefaultSourceLang,
		logger:     zap.NewNop(),
		cache:      make(map[string]string),
		inFlight:   make(map[string]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Translate returns the translation of sourceText into targetLang if it is
// already cached in memory. Otherwise it returns sourceText unchanged and
// starts a background resolution, unless one is already running for the key.
// With disableFetch set, the resolution only consults the persistent store.
//
// Calling Translate with a target language different from the current one
// clears the in-memory cache.
func (e *Engine) Translate(sourceText, targetLang string, disableFetch bool) string {
	if e.passThrough(sourceText, targetLang) {
		return sourceText
	}

	key := MakeKey(sourceText, targetLang)

	e.mu.Lock()
	cleared := e.switchLangLocked(targetLang)
	if translated, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return translated
	}
	_, busy := e.inFlight[key]
	if !busy && e.ctx.Err() == nil {
		e.inFlight[key] = struct{}{}
		e.wg.Add(1)
		go e.resolve(key, sourceText, targetLang, disableFetch, e.generation)
	}
	e.mu.Unlock()

	if cleared {
		e.subs.publish(Event{Type: EventCleared, TargetLang: targetLang})
	}
	return sourceText
}

// T is a short alias for Translate using the current target language.
func (e *Engine) T(sourceText string, disableFetch bool) string {
	return e.Translate(sourceText, e.TargetLang(), disableFetch)
}

// SetTargetLang switches the target language. The in-memory cache is dropped
// when the language actually changes; persisted translations are kept.
func (e *Engine) SetTargetLang(lang string) {
	e.mu.Lock()
	cleared := e.switchLangLocked(lang)
	e.mu.Unlock()

	if cleared {
		e.subs.publish(Event{Type: EventCleared, TargetLang: lang})
	}
}

// TargetLang returns the current target language.
func (e *Engine) TargetLang() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targetLang
}

// SourceLang returns the source language.
func (e *Engine) SourceLang() string {
	return e.sourceLang
}

// Cached returns the in-memory translation for the pair, if resolved.
func (e *Engine) Cached(sourceText, targetLang string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	translated, ok := e.cache[MakeKey(sourceText, targetLang)]
	return translated, ok
}

// InFlight reports whether a resolution is running for the pair.
func (e *Engine) InFlight(sourceText, targetLang string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inFlight[MakeKey(sourceText, targetLang)]
	return ok
}

// Len returns the number of translations held in memory.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// Subscribe registers fn to be called after every change to the in-memory
// cache. fn runs on the goroutine that made the change and must not block.
// The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	return e.subs.add(fn)
}

// Wait blocks until all background resolutions started so far have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close cancels running resolutions and waits for them to return.
// Translate keeps serving cached entries afterwards but starts no new work.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.cancel()
	e.mu.Unlock()
	e.wg.Wait()
	return nil
}

func (e *Engine) passThrough(sourceText, targetLang string) bool {
	return sourceText == "" || targetLang == "" || e.apiKey == "" || SameLang(targetLang, e.sourceLang)
}

// switchLangLocked records lang as the current target language and reports
// whether a previously populated language was dropped. Must hold e.mu.
func (e *Engine) switchLangLocked(lang string) bool {
	if lang == e.targetLang {
		return false
	}
	previous := e.targetLang
	e.targetLang = lang
	e.cache = make(map[string]string)
	e.generation++
	return previous != ""
}

func (e *Engine) resolve(key, sourceText, targetLang string, disableFetch bool, generation uint64) {
	defer e.wg.Done()
	defer e.release(key)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("translation resolution panicked",
				zap.String("key", key),
				zap.Any("panic", r),
			)
		}
	}()

	ctx := e.ctx
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	if rec, ok := e.lookup(ctx, key); ok {
		e.populate(key, rec, generation)
		return
	}

	if disableFetch || e.remote == nil {
		return
	}

	translations, err := e.remote.Translate(ctx, TranslateRequest{
		Texts:      []string{sourceText},
		TargetLang: targetLang,
		SourceLang: e.sourceLang,
		APIKey:     e.apiKey,
	})
	if err == nil && len(translations) != 1 {
		err = &CountMismatchError{Expected: 1, Got: len(translations)}
	}
	if err != nil {
		e.logger.Error("translation failed",
			zap.String("target_lang", targetLang),
			zap.String("text", sourceText),
			zap.Error(err),
		)
		return
	}
	if translations[0] == "" {
		e.logger.Warn("remote returned empty translation",
			zap.String("target_lang", targetLang),
			zap.String("text", sourceText),
		)
		return
	}

	rec := Record{
		SourceText:     sourceText,
		TargetLang:     targetLang,
		TranslatedText: translations[0],
		UpdatedAt:      time.Now().UTC(),
	}
	if e.store != nil {
		if err := e.store.Put(ctx, key, rec); err != nil {
			e.logger.Warn("failed to persist translation", zap.String("key", key), zap.Error(err))
		}
	}
	e.populate(key, rec, generation)
}

// lookup reads the persistent store. Failures count as misses.
func (e *Engine) lookup(ctx context.Context, key string) (Record, bool) {
	if e.store == nil {
		return Record{}, false
	}
	rec, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("store lookup failed", zap.String("key", key), zap.Error(err))
		return Record{}, false
	}
	return rec, ok && rec.TranslatedText != ""
}

// populate adds a resolved translation to memory, unless the cache was
// dropped since the resolution started.
func (e *Engine) populate(key string, rec Record, generation uint64) {
	e.mu.Lock()
	if generation != e.generation {
		e.mu.Unlock()
		return
	}
	e.cache[key] = rec.TranslatedText
	e.mu.Unlock()

	e.subs.publish(Event{
		Type:       EventResolved,
		TargetLang: rec.TargetLang,
		Key:        key,
		Record:     rec,
	})
}

func (e *Engine) release(key string) {
	e.mu.Lock()
	delete(e.inFlight, key)
	e.mu.Unlock()
}
