package repository

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/domain/ledger"
)

type impl struct {
	store *kvstore.Store
}

func New(store *kvstore.Store) ledger.Repo {
	return &impl{store: store}
}

func (im *impl) get(c ctx.Ctx, pfx []byte, account domain.AccountId) (decimal.Decimal, error) {
	raw, err := im.store.UnmeteredBucket(c, pfx).Get([]byte(account))
	if err == kvstore.ErrNotFound {
		return decimal.Zero, nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "account": account}).Error("bucket.Get failed")
		return decimal.Zero, err
	}
	return decimal.NewFromString(string(raw))
}

// zero balances are deleted so they take no storage
func (im *impl) set(c ctx.Ctx, pfx []byte, account domain.AccountId, amount decimal.Decimal) error {
	b := im.store.UnmeteredBucket(c, pfx)
	var err error
	if amount.IsZero() {
		err = b.Delete([]byte(account))
	} else {
		err = b.Put([]byte(account), []byte(amount.String()))
	}
	if err != nil {
		c.WithFields(log.Fields{"err": err, "account": account}).Error("bucket write failed")
	}
	return err
}

func (im *impl) BalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error) {
	return im.get(c, keys.PfxBalances, account)
}

func (im *impl) SetBalance(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error {
	return im.set(c, keys.PfxBalances, account, amount)
}

func (im *impl) StorageBalanceOf(c ctx.Ctx, account domain.AccountId) (decimal.Decimal, error) {
	return im.get(c, keys.PfxStorage, account)
}

func (im *impl) SetStorageBalance(c ctx.Ctx, account domain.AccountId, amount decimal.Decimal) error {
	return im.set(c, keys.PfxStorage, account, amount)
}
