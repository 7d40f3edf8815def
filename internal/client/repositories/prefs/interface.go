package prefs

import (
	"context"
)

// Repository persists the client-local key/value state that survives
// restarts: user id, display name, real name and admin token.
//
// Get returns (nil, nil) for a missing key. Apply writes set and removes
// remove as one unit: either every change is stored or none is.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Apply(ctx context.Context, set map[string][]byte, remove []string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
