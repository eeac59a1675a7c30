package domain

import "github.com/x-xyz/fpomarket/base/ctx"

// StateStore runs calls against the persisted contract state, one at a time
type StateStore interface {
	// RunInTx commits the writes of fn atomically, or none of them when fn fails
	RunInTx(c ctx.Ctx, fn func(ctx.Ctx) error) error
	// AfterCommit defers fn until the transaction of c has committed
	AfterCommit(c ctx.Ctx, fn func())
	// StorageUsage is the byte size of the state as seen by c
	StorageUsage(c ctx.Ctx) int64
}
