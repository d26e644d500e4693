package gotmemo

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText computes the SHA-256 hash of text. The text is hashed as is:
// surrounding whitespace is part of its identity.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// MakeKey derives the cache key for a source text and target language.
// The digest is fixed-length hex, so no source text can forge another pair's key.
func MakeKey(sourceText, targetLang string) string {
	return HashText(sourceText) + ":" + targetLang
}
