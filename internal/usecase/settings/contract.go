package settings

import "context"

// Store persists integer settings across restarts.
type Store interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, val int64) error
}
