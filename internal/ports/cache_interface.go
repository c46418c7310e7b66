package ports

import (
	"context"
	"time"
)

// BlacklistCache : Redis слой. Чёрный список access-токенов,
// отозванных до их естественного истечения.
type BlacklistCache interface {
	Deny(ctx context.Context, token string, ttl time.Duration) error
	IsDenied(ctx context.Context, token string) bool
}
