// Package backoff spaces out retries of flaky infra calls such as dialing redis
package backoff

import (
	"math"
	"math/rand"
	"time"

	"github.com/x-xyz/fpomarket/base/ctx"
)

// Strategy computes the wait before retry n, counted from 0
type Strategy interface {
	Duration(n int, start time.Duration) time.Duration
}

type Backoff struct {
	strategy Strategy
	start    time.Duration
	limit    time.Duration
	// fraction of each wait that is randomized, 0 disables jitter
	jitter float64
	count  int
	rnd    *rand.Rand
}

func New(strategy Strategy, start, limit time.Duration, jitter float64) *Backoff {
	return &Backoff{
		strategy: strategy,
		start:    start,
		limit:    limit,
		jitter:   jitter,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func NewExponential(start, limit time.Duration) *Backoff {
	return New(exponential{}, start, limit, 0.5)
}

func NewLinear(start, limit time.Duration) *Backoff {
	return New(linear{}, start, limit, 0)
}

// Next is the wait before the coming retry
func (b *Backoff) Next() time.Duration {
	d := b.strategy.Duration(b.count, b.start)
	if b.limit > 0 && d > b.limit {
		d = b.limit
	}
	if b.jitter > 0 && d > 0 {
		spread := time.Duration(float64(d) * b.jitter)
		d = d - spread + time.Duration(b.rnd.Int63n(int64(spread)*2+1))
	}
	return d
}

func (b *Backoff) Reset() {
	b.count = 0
}

// Wait sleeps for Next, returns early with the ctx error when c is done
func (b *Backoff) Wait(c ctx.Ctx) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-c.Done():
		return c.Err()
	case <-t.C:
		b.count++
		return nil
	}
}

// Retry runs fn up to attempts times, waiting between failures. It returns the last error of fn.
func Retry(c ctx.Ctx, b *Backoff, attempts int, fn func(attempt int) error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if werr := b.Wait(c); werr != nil {
				return werr
			}
		}
		if err = fn(i); err == nil {
			return nil
		}
	}
	return err
}

type exponential struct{}

func (exponential) Duration(n int, start time.Duration) time.Duration {
	return time.Duration(math.Pow(2, float64(n))) * start
}

type linear struct{}

func (linear) Duration(n int, start time.Duration) time.Duration {
	return time.Duration(n+1) * start
}
