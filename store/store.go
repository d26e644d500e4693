// Package store provides persistent translation store implementations.
package store

import (
	"context"

	"github.com/ZaguanLabs/gotmemo"
)

// Store is an alias to the main package interface.
type Store = gotmemo.Store

// Record is an alias to the main package type.
type Record = gotmemo.Record

// KeyedRecord pairs a record with the key it is stored under.
type KeyedRecord struct {
	Key    string
	Record Record
}

// Lister is implemented by stores that can enumerate their contents.
// This is used for export.
type Lister interface {
	Store
	// Records returns every stored record, ordered by key.
	Records(ctx context.Context) ([]KeyedRecord, error)
}
