package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/domain/listing"
)

func (im *impl) PlaceProposal(c ctx.Ctx, proposer domain.AccountId, id listing.ListingId, price decimal.Decimal, deposit decimal.Decimal) (*listing.Proposal, error) {
	defer im.metrics.BumpTime("place_proposal.time").End()

	if !proposer.IsValid() {
		return nil, domain.ErrInvalidAccountId
	}
	if err := domain.CheckAmount(price); err != nil {
		return nil, err
	}
	if !deposit.Equal(price) {
		return nil, domain.ErrDepositMismatch
	}

	var res *listing.Proposal
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		l, err := im.load(c, id)
		if err != nil {
			return err
		}

		if !l.ProposalsEnabled() {
			return domain.ErrProposalsDisabled
		}
		if l.Status != listing.StatusRunning {
			return domain.ErrListingNotRunning
		}
		if proposer == l.Seller {
			return domain.ErrSellerCannotBuy
		}
		if err := im.cfg.CheckPrice(price); err != nil {
			return err
		}
		if price.GreaterThan(l.BuyNowPrice) {
			return domain.ErrPriceTooHigh
		}
		floor, ok := l.AcceptablePrice(im.cfg.PriceStep)
		if !ok {
			return domain.ErrSoldOut
		}
		if price.LessThan(floor) {
			return domain.ErrProposalPriceTooLow
		}

		if err := im.ledgerUC.Escrow(c, proposer, deposit); err != nil {
			return err
		}

		p := &listing.Proposal{
			Id:        l.NextProposalId,
			Proposer:  proposer,
			Price:     price,
			CreatedAt: im.now(),
		}
		l.NextProposalId++
		l.InsertProposal(p)

		used, err := im.measure(c, func() error {
			if err := im.listingRepo.PutProposal(c, l.Id, p); err != nil {
				return err
			}
			return im.listingRepo.Update(c, l)
		})
		if err != nil {
			return err
		}
		if err := im.ledgerUC.ChargeStorage(c, proposer, im.storageCost(used)); err != nil {
			return err
		}

		pid := p.Id
		im.record(c, &activity.Activity{
			Type:       activity.ActivityTypeProposalPlaced,
			Listing:    l.Id.String(),
			Account:    proposer,
			To:         l.Seller,
			ProposalId: &pid,
			Price:      price.String(),
		})
		im.bump(c, "proposal.admitted")

		if _, err := im.evict(c, l); err != nil {
			return err
		}
		res = p
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "proposer": proposer, "id": id, "price": price}).Error("PlaceProposal failed")
		return nil, err
	}
	return res, nil
}

// evict drops the worst proposals until they fit the supply left, each one refunded in full
func (im *impl) evict(c ctx.Ctx, l *listing.Listing) ([]*listing.Proposal, error) {
	evicted := l.Evict()
	for _, p := range evicted {
		if err := im.dropProposal(c, l, p, p.Price); err != nil {
			return nil, err
		}
		pid := p.Id
		im.record(c, &activity.Activity{
			Type:       activity.ActivityTypeProposalEvicted,
			Listing:    l.Id.String(),
			Account:    p.Proposer,
			ProposalId: &pid,
			Price:      p.Price.String(),
		})
		im.bump(c, "proposal.evicted")
	}
	return evicted, nil
}

// dropProposal deletes a proposal already detached from l, pays refund back to its proposer
// and credits the freed storage to the proposer, whoever triggered the removal.
func (im *impl) dropProposal(c ctx.Ctx, l *listing.Listing, p *listing.Proposal, refund decimal.Decimal) error {
	freed, err := im.measure(c, func() error {
		return im.listingRepo.RemoveProposal(c, l.Id, p.Id)
	})
	if err != nil {
		return err
	}
	if err := im.ledgerUC.Release(c, p.Proposer, refund); err != nil {
		return err
	}
	return im.ledgerUC.RefundStorage(c, p.Proposer, im.storageCost(-freed))
}

func (im *impl) RevokeProposal(c ctx.Ctx, proposer domain.AccountId, id listing.ListingId, proposalId uint64) error {
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		l, err := im.load(c, id)
		if err != nil {
			return err
		}

		p := l.FindProposal(proposalId)
		if p == nil {
			return domain.ErrProposalNotFound
		}
		if p.Proposer != proposer {
			return domain.ErrNotProposer
		}
		if p.Settling {
			return domain.ErrProposalSettling
		}
		l.TakeProposal(proposalId)

		penalty := domain.BpsOf(p.Price, im.cfg.PenaltyBps)
		if penalty.IsPositive() {
			if err := im.ledgerUC.Release(c, im.cfg.ProfitAccount, penalty); err != nil {
				return err
			}
		}
		if err := im.dropProposal(c, l, p, p.Price.Sub(penalty)); err != nil {
			return err
		}

		im.record(c, &activity.Activity{
			Type:       activity.ActivityTypeProposalRevoked,
			Listing:    l.Id.String(),
			Account:    proposer,
			ProposalId: &proposalId,
			Price:      p.Price.String(),
		})
		im.bump(c, "proposal.revoked")
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "proposer": proposer, "id": id, "proposalId": proposalId}).Error("RevokeProposal failed")
		return err
	}
	return nil
}

// accept moves a standing proposal into settling and issues its mint
func (im *impl) accept(c ctx.Ctx, l *listing.Listing, proposalId uint64) (*listing.PurchaseTicket, error) {
	if l.Capacity() == 0 {
		return nil, domain.ErrSoldOut
	}
	p, ok := l.TakeProposal(proposalId)
	if !ok {
		if l.FindProposal(proposalId) != nil {
			return nil, domain.ErrProposalSettling
		}
		return nil, domain.ErrProposalNotFound
	}
	p.Settling = true
	l.Settling = append(l.Settling, p)
	if err := im.listingRepo.PutProposal(c, l.Id, p); err != nil {
		return nil, err
	}

	ticket := listing.NewProposalTicket(l, p, im.now())
	if err := im.dispatch(c, l, ticket); err != nil {
		return nil, err
	}
	im.record(c, &activity.Activity{
		Type:       activity.ActivityTypeProposalAccepted,
		Listing:    l.Id.String(),
		Account:    p.Proposer,
		To:         l.Seller,
		ProposalId: &proposalId,
		TicketId:   ticket.Id,
		Price:      p.Price.String(),
	})
	return ticket, nil
}

func (im *impl) AcceptProposal(c ctx.Ctx, seller domain.AccountId, id listing.ListingId, proposalId uint64) (*listing.PurchaseTicket, error) {
	var res *listing.PurchaseTicket
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		l, err := im.load(c, id)
		if err != nil {
			return err
		}
		if seller != l.Seller {
			return domain.ErrNotSeller
		}
		if l.Status == listing.StatusUnstarted {
			return domain.ErrListingNotRunning
		}
		res, err = im.accept(c, l, proposalId)
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "seller": seller, "id": id, "proposalId": proposalId}).Error("AcceptProposal failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) SettleProposals(c ctx.Ctx, caller domain.AccountId, id listing.ListingId) ([]*listing.PurchaseTicket, error) {
	res := []*listing.PurchaseTicket{}
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		l, err := im.load(c, id)
		if err != nil {
			return err
		}
		if caller != l.Seller && caller != im.cfg.OperatorAccount {
			return domain.ErrNotSeller
		}
		if !l.HasEnded(im.now()) {
			return domain.ErrTooEarly
		}

		standing := append([]*listing.Proposal{}, l.Proposals...)
		for _, p := range standing {
			if l.Capacity() == 0 {
				break
			}
			ticket, err := im.accept(c, l, p.Id)
			if err != nil {
				return err
			}
			res = append(res, ticket)
		}
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "caller": caller, "id": id}).Error("SettleProposals failed")
		return nil, err
	}
	return res, nil
}
