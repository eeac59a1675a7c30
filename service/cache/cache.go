// Package cache stores typed values on top of a raw byte provider.
// Tokens and cached HTTP responses go through it.
package cache

import (
	"time"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/service/cache/provider"
)

// ErrNotFound is returned by Get on a miss, whatever layer served it
var ErrNotFound = provider.ErrNotFound

// OneTimeGetter loads the value on a miss. It returns a pointer of the container type.
type OneTimeGetter func() (interface{}, error)

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

type Service interface {
	// GetByFunc fills container from the cache, or from getter on a miss and caches the result
	GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

// ServiceConfig scopes a Service to the keys under Pfx. Values are json encoded unless
// Serialize and Deserialize are given.
type ServiceConfig struct {
	Ttl         time.Duration
	Pfx         string
	Cache       provider.Provider
	Serialize   Serializer
	Deserialize Deserializer
}
