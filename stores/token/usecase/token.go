package usecase

import (
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/token"
)

type TokenUseCaseCfg struct {
	Store domain.StateStore
	Repo  token.Repo
	// the only account allowed to mint
	MarketAccount domain.AccountId
	TimeNow       func() time.Time
}

type impl struct {
	store         domain.StateStore
	repo          token.Repo
	marketAccount domain.AccountId
	timeNow       func() time.Time
}

func New(cfg *TokenUseCaseCfg) token.UseCase {
	im := &impl{
		store:         cfg.Store,
		repo:          cfg.Repo,
		marketAccount: cfg.MarketAccount,
		timeNow:       cfg.TimeNow,
	}
	if im.timeNow == nil {
		im.timeNow = time.Now
	}
	return im
}

func (im *impl) Mint(c ctx.Ctx, minter domain.AccountId, req token.MintRequest) (*token.Token, error) {
	if minter != im.marketAccount {
		return nil, domain.ErrNotMinter
	}
	if !req.Receiver.IsValid() {
		return nil, domain.ErrInvalidAccountId
	}
	if len(req.Collection) == 0 {
		return nil, xerrors.Errorf("empty collection: %w", domain.ErrValidation)
	}
	if err := token.ValidateRoyalty(req.Royalty); err != nil {
		return nil, err
	}

	var res *token.Token
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		serial, err := im.repo.NextSerial(c, req.Collection)
		if err != nil {
			return err
		}
		t := &token.Token{
			Id:         token.NewTokenId(req.Collection, serial),
			Contract:   req.Contract,
			Collection: req.Collection,
			Owner:      req.Receiver,
			Royalty:    req.Royalty,
			MintedAt:   domain.TimestampFromTime(im.timeNow()),
		}
		if err := im.repo.Insert(c, t); err != nil {
			return err
		}
		res = t
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "request": req.Id, "collection": req.Collection}).Error("Mint failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Token(c ctx.Ctx, id token.TokenId) (*token.Token, error) {
	t, err := im.repo.FindOne(c, id)
	if err == domain.ErrTokenNotFound {
		return nil, err
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.FindOne failed")
		return nil, err
	}
	return t, nil
}

func (im *impl) TokensForOwner(c ctx.Ctx, owner domain.AccountId, offset, limit int) ([]*token.Token, error) {
	if offset < 0 {
		return nil, xerrors.Errorf("negative offset: %w", domain.ErrValidation)
	}
	res, err := im.repo.FindAllByOwner(c, owner, offset, limit)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("repo.FindAllByOwner failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) TotalSupply(c ctx.Ctx, collection string) (uint64, error) {
	return im.repo.TotalSupply(c, collection)
}
