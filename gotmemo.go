// Package gotmemo provides a translation memoization layer.
//
// Gotmemo serves translations from an in-memory cache backed by a persistent
// store, and resolves misses against a remote translation service in the
// background. Concurrent lookups of the same word never trigger more than one
// store read and one remote call.
//
// Basic usage:
//
//	import (
//	    "github.com/ZaguanLabs/gotmemo"
//	    "github.com/ZaguanLabs/gotmemo/provider"
//	    "github.com/ZaguanLabs/gotmemo/store"
//	)
//
//	func main() {
//	    s, _ := store.NewSQLiteStore("translations.db")
//	    p := provider.NewGoogleProvider(provider.GoogleConfig{})
//
//	    e := gotmemo.NewEngine(s, p,
//	        gotmemo.WithTargetLang("es"),
//	        gotmemo.WithAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	    )
//	    defer e.Close()
//
//	    fmt.Println(e.T("Hello", false)) // "Hello" now, "Hola" once resolved
//	}
package gotmemo
