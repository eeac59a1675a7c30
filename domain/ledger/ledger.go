package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
)

type Repo interface {
	BalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error)
	SetBalance(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error
	StorageBalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error)
	SetStorageBalance(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error
}

// UseCase moves value between accounts. The contract account holds every escrow.
type UseCase interface {
	BalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error)
	// Credit funds an account, operator only
	Credit(c ctx.Ctx, operator domain.AccountId, account domain.AccountId, amount decimal.Decimal) error
	Transfer(c ctx.Ctx, from domain.AccountId, to domain.AccountId, amount decimal.Decimal) error
	// Escrow takes an attached deposit from the caller into the contract account
	Escrow(c ctx.Ctx, from domain.AccountId, amount decimal.Decimal) error
	// Release pays from the contract account
	Release(c ctx.Ctx, to domain.AccountId, amount decimal.Decimal) error

	StorageBalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error)
	StorageDeposit(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error
	StorageWithdraw(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error
	ChargeStorage(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error
	RefundStorage(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error
}
