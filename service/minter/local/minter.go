// Package local runs mint calls against the in-process token contract on a worker pool
package local

import (
	"sync"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/goroutine"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/base/metrics"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/token"
)

const (
	defaultWorkers  = 16
	scheduleTimeout = 3 * time.Second
)

type Config struct {
	TokenUC token.UseCase
	// account the mint calls are made as
	MarketAccount domain.AccountId
	Workers       int
}

type Minter struct {
	tokenUC       token.UseCase
	marketAccount domain.AccountId
	pool          *goroutines.Pool
	metrics       metrics.Service

	mu sync.RWMutex
	cb func(ctx.Ctx, token.MintResult)
}

func New(cfg *Config) *Minter {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Minter{
		tokenUC:       cfg.TokenUC,
		marketAccount: cfg.MarketAccount,
		pool:          goroutines.NewPool(workers, goroutines.WithTaskQueueLength(1024), goroutines.WithPreAllocWorkers(workers/2)),
		metrics:       metrics.New("minter"),
	}
}

func (m *Minter) OnResult(cb func(ctx.Ctx, token.MintResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cb = cb
}

// Mint queues req, its result is delivered to the OnResult callback
func (m *Minter) Mint(c ctx.Ctx, req token.MintRequest) error {
	err := m.pool.ScheduleWithTimeout(scheduleTimeout, func() {
		m.deliver(c, m.Run(c, req))
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "request": req.Id}).Error("pool.ScheduleWithTimeout failed")
		return err
	}
	return nil
}

// Run executes req within its budget and returns the final result. A panic counts as a failed mint.
func (m *Minter) Run(c ctx.Ctx, req token.MintRequest) token.MintResult {
	defer m.metrics.BumpTime("mint.time").End()

	if req.Budget > 0 {
		var cancel func()
		c, cancel = ctx.WithTimeout(c, time.Duration(req.Budget))
		defer cancel()
	}

	res := token.MintResult{
		RequestId: req.Id,
		Status:    token.MintStatusFailed,
		Payload:   req.Payload,
	}
	ev := goroutine.Recover(c, func() {
		t, err := m.tokenUC.Mint(c, m.marketAccount, req)
		if err != nil {
			res.Err = err.Error()
			return
		}
		res.Status = token.MintStatusSuccessful
		res.TokenId = t.Id
	})
	if ev != nil {
		res.Status = token.MintStatusFailed
		res.Err = "mint panicked"
	}
	m.metrics.BumpSum("mint.result", 1, "status", string(res.Status))
	return res
}

func (m *Minter) deliver(c ctx.Ctx, res token.MintResult) {
	m.mu.RLock()
	cb := m.cb
	m.mu.RUnlock()
	if cb == nil {
		c.WithField("request", res.RequestId).Warn("mint result dropped, no receiver")
		return
	}
	cb(c, res)
}

// Close waits for queued mints and stops the workers
func (m *Minter) Close() {
	m.pool.Release()
}
