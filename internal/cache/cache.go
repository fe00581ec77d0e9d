package cache

import (
	"context"
	"errors"

	"github.com/Elavasaran/yummie-mart-porta/internal/domain"
)

// SessionCache keeps snapshots of sessions that were evicted from memory.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error)
	Set(ctx context.Context, sessionID string, snap *domain.SessionSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache forgets everything; evicted sessions start over.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.SessionSnapshot, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, *domain.SessionSnapshot) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
