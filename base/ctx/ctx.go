package ctx

import (
	"context"
	"time"

	log "github.com/x-xyz/fpomarket/base/log"
)

// Ctx is the context passed through every usecase and repository call.
// It carries the request-scoped logger next to the std context.
type Ctx struct {
	context.Context
	log.Logger
}

func Background() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Log(),
	}
}

func Todo() Ctx {
	return Ctx{
		Context: context.TODO(),
		Logger:  log.Log(),
	}
}

// WithValue stores val under key and also tags the logger with it.
func WithValue(parent Ctx, key string, val interface{}) Ctx {
	return Ctx{
		Context: context.WithValue(parent, key, val),
		Logger:  parent.Logger.WithField(key, val),
	}
}

func WithValues(parent Ctx, kvs map[string]interface{}) Ctx {
	c := parent
	for k, v := range kvs {
		c = WithValue(c, k, v)
	}
	return c
}

// WithHidden stores val without adding it to the log fields.
// Used for handles such as open store transactions.
func WithHidden(parent Ctx, key interface{}, val interface{}) Ctx {
	return Ctx{
		Context: context.WithValue(parent, key, val),
		Logger:  parent.Logger,
	}
}

func WithCancel(parent Ctx) (Ctx, context.CancelFunc) {
	c, cancel := context.WithCancel(parent)
	return Ctx{
		Context: c,
		Logger:  parent.Logger,
	}, cancel
}

func WithTimeout(parent Ctx, timeout time.Duration) (Ctx, context.CancelFunc) {
	c, cancel := context.WithTimeout(parent, timeout)
	return Ctx{
		Context: c,
		Logger:  parent.Logger,
	}, cancel
}

// Detach keeps the logger and values of parent but drops its deadline and cancellation.
func Detach(parent Ctx) Ctx {
	return Ctx{
		Context: context.WithoutCancel(parent.Context),
		Logger:  parent.Logger,
	}
}
