// Package keyvalue stores small string settings in the local SQLite database.
package keyvalue

import (
	"context"
	"time"
)

// Entry is one stored value with the time it was last written.
type Entry struct {
	Value     string
	UpdatedAt time.Time
}

type Repository interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]Entry, error)
	Clear(ctx context.Context) error
}
