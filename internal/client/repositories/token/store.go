// Package token persists the session access token between CLI runs.
//
// Every implementation keeps a single value under common.TokenStorageKey and
// records when it was written under common.TokenSavedAtKey.
package token

import (
	"context"
	"errors"
	"time"
)

// ErrMalformed is returned when persisted state cannot be decoded.
var ErrMalformed = errors.New("malformed token storage")

// Store is the durable home of the access token. Load returns "" when no
// token is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SavedAtReporter is implemented by stores that know when the token was saved.
type SavedAtReporter interface {
	SavedAt(ctx context.Context) (time.Time, bool, error)
}
