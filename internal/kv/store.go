// Package kv provides the key-value store handle the tracking and analytics
// components persist through. Values live until explicitly deleted; nothing
// here expires on its own.
package kv

import "errors"

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed byte store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}
