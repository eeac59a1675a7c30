package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/ledger"
)

type LedgerUseCaseCfg struct {
	Store           domain.StateStore
	Repo            ledger.Repo
	ContractAccount domain.AccountId
	OperatorAccount domain.AccountId
}

type impl struct {
	store    domain.StateStore
	repo     ledger.Repo
	contract domain.AccountId
	operator domain.AccountId
}

func New(cfg *LedgerUseCaseCfg) ledger.UseCase {
	return &impl{
		store:    cfg.Store,
		repo:     cfg.Repo,
		contract: cfg.ContractAccount,
		operator: cfg.OperatorAccount,
	}
}

func (im *impl) BalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error) {
	return im.repo.BalanceOf(c, account)
}

func (im *impl) Credit(c ctx.Ctx, operator domain.AccountId, account domain.AccountId, amount decimal.Decimal) error {
	if operator != im.operator {
		return domain.ErrNotOperator
	}
	if !account.IsValid() {
		return domain.ErrInvalidAccountId
	}
	if err := domain.CheckAmount(amount); err != nil {
		return err
	}
	return im.store.RunInTx(c, func(c ctx.Ctx) error {
		bal, err := im.repo.BalanceOf(c, account)
		if err != nil {
			return err
		}
		return im.repo.SetBalance(c, account, bal.Add(amount))
	})
}

func (im *impl) Transfer(c ctx.Ctx, from domain.AccountId, to domain.AccountId, amount decimal.Decimal) error {
	if err := domain.CheckAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() || from == to {
		return nil
	}
	return im.store.RunInTx(c, func(c ctx.Ctx) error {
		fromBal, err := im.repo.BalanceOf(c, from)
		if err != nil {
			return err
		}
		if fromBal.LessThan(amount) {
			c.WithFields(log.Fields{"from": from, "balance": fromBal, "amount": amount}).Info("balance too low")
			return domain.ErrBalanceTooLow
		}
		toBal, err := im.repo.BalanceOf(c, to)
		if err != nil {
			return err
		}
		if err := im.repo.SetBalance(c, from, fromBal.Sub(amount)); err != nil {
			return err
		}
		return im.repo.SetBalance(c, to, toBal.Add(amount))
	})
}

func (im *impl) Escrow(c ctx.Ctx, from domain.AccountId, amount decimal.Decimal) error {
	return im.Transfer(c, from, im.contract, amount)
}

func (im *impl) Release(c ctx.Ctx, to domain.AccountId, amount decimal.Decimal) error {
	if err := im.Transfer(c, im.contract, to, amount); err != nil {
		c.WithFields(log.Fields{"err": err, "to": to, "amount": amount}).Error("release failed")
		return err
	}
	return nil
}

func (im *impl) StorageBalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error) {
	return im.repo.StorageBalanceOf(c, account)
}

func (im *impl) StorageDeposit(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error {
	return im.store.RunInTx(c, func(c ctx.Ctx) error {
		if err := im.Escrow(c, account, amount); err != nil {
			return err
		}
		return im.RefundStorage(c, account, amount)
	})
}

func (im *impl) StorageWithdraw(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error {
	return im.store.RunInTx(c, func(c ctx.Ctx) error {
		if err := im.ChargeStorage(c, account, amount); err != nil {
			return err
		}
		return im.Release(c, account, amount)
	})
}

func (im *impl) ChargeStorage(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error {
	if err := domain.CheckAmount(amount); err != nil {
		return err
	}
	return im.store.RunInTx(c, func(c ctx.Ctx) error {
		bal, err := im.repo.StorageBalanceOf(c, account)
		if err != nil {
			return err
		}
		if bal.LessThan(amount) {
			return domain.ErrStorageBalanceTooLow
		}
		return im.repo.SetStorageBalance(c, account, bal.Sub(amount))
	})
}

func (im *impl) RefundStorage(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error {
	if err := domain.CheckAmount(amount); err != nil {
		return err
	}
	return im.store.RunInTx(c, func(c ctx.Ctx) error {
		bal, err := im.repo.StorageBalanceOf(c, account)
		if err != nil {
			return err
		}
		return im.repo.SetStorageBalance(c, account, bal.Add(amount))
	})
}
