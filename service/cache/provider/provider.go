package provider

import (
	"errors"
	"time"

	"github.com/x-xyz/fpomarket/base/ctx"
)

var (
	ErrNotFound = errors.New("cache miss")
)

// Provider is a byte cache layer: freecache in process, redis shared, or both stacked
type Provider interface {
	// Get returns the value and its remaining ttl
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
