package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/base/metrics"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/domain/ledger"
	"github.com/x-xyz/fpomarket/domain/listing"
	"github.com/x-xyz/fpomarket/domain/token"
)

type ListingUseCaseCfg struct {
	Config      listing.Config
	Store       domain.StateStore
	ListingRepo listing.Repo
	LedgerUC    ledger.UseCase
	ActivityUC  activity.UseCase
	Minter      token.Minter
	// defaults to time.Now
	TimeNow func() time.Time
}

type impl struct {
	cfg         listing.Config
	store       domain.StateStore
	listingRepo listing.Repo
	ledgerUC    ledger.UseCase
	activityUC  activity.UseCase
	minter      token.Minter
	timeNow     func() time.Time
	metrics     metrics.Service
}

func New(cfg *ListingUseCaseCfg) listing.UseCase {
	im := &impl{
		cfg:         cfg.Config,
		store:       cfg.Store,
		listingRepo: cfg.ListingRepo,
		ledgerUC:    cfg.LedgerUC,
		activityUC:  cfg.ActivityUC,
		minter:      cfg.Minter,
		timeNow:     cfg.TimeNow,
		metrics:     metrics.New("listing"),
	}
	if im.timeNow == nil {
		im.timeNow = time.Now
	}
	im.minter.OnResult(im.handleMintResult)
	return im
}

func (im *impl) now() domain.Timestamp {
	return domain.TimestampFromTime(im.timeNow())
}

func (im *impl) storageCost(bytes int64) decimal.Decimal {
	if bytes <= 0 {
		return decimal.Zero
	}
	return im.cfg.StorageByteCost.Mul(decimal.NewFromInt(bytes))
}

// measure returns the storage bytes fn added, negative when it freed storage
func (im *impl) measure(c ctx.Ctx, fn func() error) (int64, error) {
	before := im.store.StorageUsage(c)
	if err := fn(); err != nil {
		return 0, err
	}
	return im.store.StorageUsage(c) - before, nil
}

func (im *impl) record(c ctx.Ctx, a *activity.Activity) {
	a.Time = im.timeNow()
	detached := ctx.Detach(c)
	im.store.AfterCommit(c, func() {
		im.activityUC.Record(detached, a)
	})
}

func (im *impl) bump(c ctx.Ctx, key string, tags ...string) {
	im.store.AfterCommit(c, func() {
		im.metrics.BumpSum(key, 1, tags...)
	})
}

// load fetches a listing and refreshes its status, persisting the change
func (im *impl) load(c ctx.Ctx, id listing.ListingId) (*listing.Listing, error) {
	l, err := im.listingRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	prev := l.Status
	if l.UpdateStatus(im.now()) != prev {
		if err := im.listingRepo.Update(c, l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (im *impl) parseAddListing(seller domain.AccountId, params listing.AddListingParams, deposit decimal.Decimal) (*listing.Listing, error) {
	if !seller.IsValid() {
		return nil, domain.ErrInvalidAccountId
	}
	id := listing.ListingId{Contract: params.Contract, Lot: params.Lot}
	if !id.IsValid() {
		return nil, domain.ErrInvalidAccountId
	}
	if err := domain.CheckAmount(deposit); err != nil {
		return nil, err
	}
	if params.SupplyTotal < 1 || params.SupplyTotal > im.cfg.SupplyMax {
		return nil, domain.ErrBadSupply
	}

	buyNow, err := domain.ParseAmount(params.BuyNowPrice)
	if err != nil {
		return nil, err
	}
	if err := im.cfg.CheckPrice(buyNow); err != nil {
		return nil, err
	}

	var minProposal *decimal.Decimal
	if params.MinProposalPrice != nil {
		p, err := domain.ParseAmount(*params.MinProposalPrice)
		if err != nil {
			return nil, err
		}
		if err := im.cfg.CheckPrice(p); err != nil {
			return nil, err
		}
		if !p.LessThan(buyNow) {
			return nil, domain.ErrPriceTooHigh
		}
		minProposal = &p
	}

	now := im.now()
	var startAt, endAt *domain.Timestamp
	if params.StartAt != nil {
		t, err := domain.ParseTimestamp(*params.StartAt)
		if err != nil {
			return nil, err
		}
		if t < now {
			return nil, domain.ErrDateInPast
		}
		startAt = &t
	}
	if params.EndAt != nil {
		t, err := domain.ParseTimestamp(*params.EndAt)
		if err != nil {
			return nil, err
		}
		if t <= now {
			return nil, domain.ErrDateInPast
		}
		from := now
		if startAt != nil {
			from = *startAt
		}
		d := time.Duration(t - from)
		if t <= from || d < im.cfg.MinDuration || d > im.cfg.MaxDuration {
			return nil, domain.ErrBadDuration
		}
		endAt = &t
	}

	if err := token.ValidateRoyalty(params.Metadata.Royalty); err != nil {
		return nil, err
	}

	l := &listing.Listing{
		Id:               id,
		Seller:           seller,
		Metadata:         params.Metadata,
		SupplyTotal:      params.SupplyTotal,
		SupplyRemaining:  params.SupplyTotal,
		BuyNowPrice:      buyNow,
		MinProposalPrice: minProposal,
		StartAt:          startAt,
		EndAt:            endAt,
		Status:           listing.StatusUnstarted,
		CreatedAt:        now,
	}
	l.UpdateStatus(now)
	return l, nil
}

func (im *impl) AddListing(c ctx.Ctx, seller domain.AccountId, params listing.AddListingParams, deposit decimal.Decimal) (*listing.Listing, error) {
	defer im.metrics.BumpTime("add_listing.time").End()

	l, err := im.parseAddListing(seller, params, deposit)
	if err != nil {
		return nil, err
	}

	err = im.store.RunInTx(c, func(c ctx.Ctx) error {
		if err := im.ledgerUC.Escrow(c, seller, deposit); err != nil {
			return err
		}

		used, err := im.measure(c, func() error {
			if err := im.listingRepo.Insert(c, l); err != nil {
				return err
			}
			return im.listingRepo.AddToOwnerIndex(c, seller, l.Id)
		})
		if err != nil {
			return err
		}

		cost := im.storageCost(used)
		if deposit.LessThan(cost) {
			c.WithFields(log.Fields{"deposit": deposit, "cost": cost, "bytes": used}).Info("deposit does not cover storage")
			return domain.ErrDepositTooLow
		}
		if excess := deposit.Sub(cost); excess.IsPositive() {
			if err := im.ledgerUC.Release(c, seller, excess); err != nil {
				return err
			}
		}

		im.record(c, &activity.Activity{
			Type:    activity.ActivityTypeListingCreated,
			Listing: l.Id.String(),
			Account: seller,
			Price:   l.BuyNowPrice.String(),
		})
		im.bump(c, "listing.created")
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "seller": seller, "id": l.Id}).Error("AddListing failed")
		return nil, err
	}
	return l, nil
}

func (im *impl) Conclude(c ctx.Ctx, caller domain.AccountId, id listing.ListingId) error {
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		l, err := im.load(c, id)
		if err != nil {
			return err
		}

		switch {
		case caller == im.cfg.OperatorAccount:
		case caller != l.Seller:
			return domain.ErrNotSeller
		case l.EndAt != nil && l.Status != listing.StatusEnded:
			return domain.ErrTooEarly
		}

		if len(l.Settling) > 0 {
			return domain.ErrPurchaseInFlight
		}
		return im.conclude(c, l)
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "caller": caller, "id": id}).Error("Conclude failed")
		return err
	}
	return nil
}

// conclude refunds every standing proposal in full and removes the listing
func (im *impl) conclude(c ctx.Ctx, l *listing.Listing) error {
	for _, p := range l.Proposals {
		if err := im.dropProposal(c, l, p, p.Price); err != nil {
			return err
		}
	}
	l.Proposals = nil

	freed, err := im.measure(c, func() error {
		if err := im.listingRepo.Remove(c, l.Id); err != nil {
			return err
		}
		return im.listingRepo.RemoveFromOwnerIndex(c, l.Seller, l.Id)
	})
	if err != nil {
		return err
	}
	if err := im.ledgerUC.RefundStorage(c, l.Seller, im.storageCost(-freed)); err != nil {
		return err
	}

	im.record(c, &activity.Activity{
		Type:    activity.ActivityTypeListingConcluded,
		Listing: l.Id.String(),
		Account: l.Seller,
	})
	im.bump(c, "listing.concluded")
	return nil
}

func (im *impl) TotalListings(c ctx.Ctx) (int, error) {
	cnt, err := im.listingRepo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("listingRepo.Count failed")
		return 0, err
	}
	return cnt, nil
}

func (im *impl) AcceptablePrice(c ctx.Ctx, id listing.ListingId) (*decimal.Decimal, error) {
	l, err := im.ListingById(c, id)
	if err != nil {
		return nil, err
	}
	price, ok := l.AcceptablePrice(im.cfg.PriceStep)
	if !ok {
		return nil, nil
	}
	return &price, nil
}

func (im *impl) ListingsByOwner(c ctx.Ctx, owner domain.AccountId, optFns ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}
	offset := 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}

	res, err := im.listingRepo.FindAllByOwner(c, owner, listing.WithPagination(offset, im.cfg.PageLimit(opts.Limit)))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("listingRepo.FindAllByOwner failed")
		return nil, err
	}
	now := im.now()
	for _, l := range res {
		l.UpdateStatus(now)
	}
	return res, nil
}

func (im *impl) ListingById(c ctx.Ctx, id listing.ListingId) (*listing.Listing, error) {
	l, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrListingNotFound {
		return nil, err
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("listingRepo.FindOne failed")
		return nil, err
	}
	l.UpdateStatus(im.now())
	return l, nil
}
