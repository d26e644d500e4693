package gotmemo

import (
	"context"
	"fmt"
	"sync"
)

// fakeStore is a map-backed Store that counts calls.
type fakeStore struct {
	mu     sync.Mutex
	data   map[string]Record
	gets   int
	puts   int
	getErr error
	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]Record)}
}

func (s *fakeStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return Record{}, false, s.getErr
	}
	rec, ok := s.data[key]
	return rec, ok, nil
}

func (s *fakeStore) Put(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.data[key] = rec
	return nil
}

func (s *fakeStore) seed(text, lang, translated string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[MakeKey(text, lang)] = Record{SourceText: text, TargetLang: lang, TranslatedText: translated}
}

func (s *fakeStore) lookup(text, lang string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[MakeKey(text, lang)]
	return rec.TranslatedText, ok
}

func (s *fakeStore) counts() (gets, puts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.puts
}

// fakeRemote translates from a fixed table, "[text]" otherwise. With a gate
// set, calls block until the gate is closed or the context ends.
type fakeRemote struct {
	mu       sync.Mutex
	table    map[string]string
	err      error
	extra    bool // return one translation too many
	gate     chan struct{}
	requests []TranslateRequest
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{table: map[string]string{
		"Hello": "Hola",
		"World": "Mundo",
	}}
}

func (r *fakeRemote) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	gate, err, extra := r.gate, r.err, r.extra
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(req.Texts)+1)
	for _, text := range req.Texts {
		if t, ok := r.table[text]; ok {
			out = append(out, t)
		} else {
			out = append(out, fmt.Sprintf("[%s]", text))
		}
	}
	if extra {
		out = append(out, "surplus")
	}
	return out, nil
}

func (r *fakeRemote) set(text, translated string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[text] = translated
}

func (r *fakeRemote) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *fakeRemote) last() TranslateRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return TranslateRequest{}
	}
	return r.requests[len(r.requests)-1]
}
