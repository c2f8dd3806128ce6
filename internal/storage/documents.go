// Package storage persists application state as whole JSON documents in a
// local key-value store. Every save replaces the previous document; the
// store is never the authoritative copy during a session.
package storage

import (
	"context"
	"errors"
)

// Keys of the two independently persisted documents.
const (
	KeyExpenses = "expenses.v1"
	KeySettings = "settings.v1"
)

// ErrNotFound is returned by Get when no document exists under a key.
var ErrNotFound = errors.New("document not found")

// DocumentStore is a durable key-value store of JSON documents.
type DocumentStore interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous document.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the document under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
