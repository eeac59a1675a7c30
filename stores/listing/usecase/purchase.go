package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/domain/listing"
	"github.com/x-xyz/fpomarket/domain/token"
)

func (im *impl) BuyNow(c ctx.Ctx, buyer domain.AccountId, id listing.ListingId, deposit decimal.Decimal) (*listing.PurchaseTicket, error) {
	defer im.metrics.BumpTime("buy_now.time").End()

	if !buyer.IsValid() {
		return nil, domain.ErrInvalidAccountId
	}
	if err := domain.CheckAmount(deposit); err != nil {
		return nil, err
	}

	var res *listing.PurchaseTicket
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		l, err := im.load(c, id)
		if err != nil {
			return err
		}
		if l.Status != listing.StatusRunning {
			return domain.ErrListingNotRunning
		}
		// optimistic, supply is only taken when the mint succeeds
		if l.SupplyRemaining == 0 {
			return domain.ErrSoldOut
		}
		if buyer == l.Seller {
			return domain.ErrSellerCannotBuy
		}
		if deposit.LessThan(l.BuyNowPrice) {
			return domain.ErrDepositTooLow
		}

		if err := im.ledgerUC.Escrow(c, buyer, deposit); err != nil {
			return err
		}
		ticket := listing.NewBuyNowTicket(l, buyer, deposit, im.now())
		if err := im.dispatch(c, l, ticket); err != nil {
			return err
		}

		im.record(c, &activity.Activity{
			Type:     activity.ActivityTypePurchaseInitiated,
			Listing:  l.Id.String(),
			Account:  buyer,
			To:       l.Seller,
			TicketId: ticket.Id,
			Price:    ticket.Price.String(),
		})
		im.bump(c, "purchase.initiated", "kind", string(ticket.Kind))
		res = ticket
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "buyer": buyer, "id": id, "deposit": deposit}).Error("BuyNow failed")
		return nil, err
	}
	return res, nil
}

// dispatch sends the mint once the current transaction has committed.
// A mint that cannot be sent resolves as failed.
func (im *impl) dispatch(c ctx.Ctx, l *listing.Listing, ticket *listing.PurchaseTicket) error {
	req, err := ticket.MintRequest(l, int64(im.cfg.MintBudget))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "ticket": ticket.Id}).Error("ticket.MintRequest failed")
		return err
	}

	detached := ctx.Detach(c)
	im.store.AfterCommit(c, func() {
		if err := im.minter.Mint(detached, req); err != nil {
			detached.WithFields(log.Fields{"err": err, "ticket": ticket.Id}).Error("minter.Mint failed")
			_, err := im.ResolvePurchase(detached, *ticket, token.MintResult{
				RequestId: req.Id,
				Status:    token.MintStatusFailed,
				Payload:   req.Payload,
				Err:       err.Error(),
			})
			if err != nil {
				detached.WithFields(log.Fields{"err": err, "ticket": ticket.Id}).Error("ResolvePurchase failed")
			}
		}
	})
	return nil
}

func (im *impl) handleMintResult(c ctx.Ctx, res token.MintResult) {
	ticket, err := listing.TicketFromPayload(res.Payload)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "requestId": res.RequestId}).Error("listing.TicketFromPayload failed")
		return
	}
	if _, err := im.ResolvePurchase(c, ticket, res); err != nil {
		c.WithFields(log.Fields{"err": err, "ticket": ticket.Id}).Error("ResolvePurchase failed")
	}
}

func (im *impl) ResolvePurchase(c ctx.Ctx, ticket listing.PurchaseTicket, result token.MintResult) (*listing.ResolveOutcome, error) {
	switch result.Status {
	case token.MintStatusFailed, token.MintStatusSuccessful:
	default:
		c.WithFields(log.Fields{"ticket": ticket.Id, "status": result.Status}).Error("mint result not final at resolution")
		return nil, domain.ErrUpstreamPending
	}

	out := &listing.ResolveOutcome{
		Ticket:   ticket,
		Status:   result.Status,
		TokenId:  string(result.TokenId),
		Refunded: decimal.Zero,
	}
	err := im.store.RunInTx(c, func(c ctx.Ctx) error {
		if result.Status == token.MintStatusFailed {
			return im.resolveFailed(c, ticket, result, out)
		}
		return im.resolveSuccessful(c, ticket, result, out)
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "ticket": ticket, "result": result.Status}).Error("ResolvePurchase failed")
		return nil, err
	}
	return out, nil
}

func (im *impl) resolveFailed(c ctx.Ctx, ticket listing.PurchaseTicket, result token.MintResult, out *listing.ResolveOutcome) error {
	out.Reason = result.Err
	if out.Reason == "" {
		out.Reason = domain.ErrMintFailed.Error()
	}

	switch ticket.Kind {
	case listing.PurchaseKindBuyNow:
		if err := im.ledgerUC.Release(c, ticket.Buyer, ticket.Deposit); err != nil {
			return err
		}
		if l, err := im.listingRepo.FindOne(c, ticket.ListingId); err == nil {
			out.SupplyRemaining = l.SupplyRemaining
		} else if err != domain.ErrListingNotFound {
			return err
		}
	case listing.PurchaseKindProposal:
		l, err := im.load(c, ticket.ListingId)
		if err == domain.ErrListingNotFound {
			return domain.ErrRecordMissing
		} else if err != nil {
			return err
		}
		p, ok := l.TakeSettling(ticket.ProposalId)
		if !ok {
			return domain.ErrRecordMissing
		}
		if err := im.dropProposal(c, l, p, ticket.Deposit); err != nil {
			return err
		}
		if err := im.settle(c, l, out); err != nil {
			return err
		}
	default:
		return domain.ErrRecordMissing
	}
	out.Refunded = ticket.Deposit

	c.WithFields(log.Fields{"ticket": ticket.Id, "reason": out.Reason}).Info("purchase failed, escrow refunded")
	im.record(c, &activity.Activity{
		Type:     activity.ActivityTypePurchaseFailed,
		Listing:  ticket.ListingId.String(),
		Account:  ticket.Buyer,
		To:       ticket.Seller,
		TicketId: ticket.Id,
		Price:    ticket.Price.String(),
	})
	im.bump(c, "purchase.resolved", "status", string(token.MintStatusFailed))
	return nil
}

func (im *impl) resolveSuccessful(c ctx.Ctx, ticket listing.PurchaseTicket, result token.MintResult, out *listing.ResolveOutcome) error {
	l, err := im.listingRepo.FindOne(c, ticket.ListingId)
	if err == domain.ErrListingNotFound && ticket.Kind == listing.PurchaseKindBuyNow {
		return im.resolveOversold(c, ticket, result, out)
	} else if err == domain.ErrListingNotFound {
		c.WithFields(log.Fields{"ticket": ticket.Id, "id": ticket.ListingId}).Error("listing gone before purchase resolved")
		return domain.ErrRecordMissing
	} else if err != nil {
		return err
	}

	switch ticket.Kind {
	case listing.PurchaseKindBuyNow:
		if err := im.refundExcess(c, ticket, out); err != nil {
			return err
		}
	case listing.PurchaseKindProposal:
		p, ok := l.TakeSettling(ticket.ProposalId)
		if !ok {
			return domain.ErrRecordMissing
		}
		freed, err := im.measure(c, func() error {
			return im.listingRepo.RemoveProposal(c, l.Id, p.Id)
		})
		if err != nil {
			return err
		}
		if err := im.ledgerUC.RefundStorage(c, p.Proposer, im.storageCost(-freed)); err != nil {
			return err
		}
	default:
		return domain.ErrRecordMissing
	}

	if err := im.ledgerUC.Release(c, l.Seller, ticket.Price); err != nil {
		return err
	}

	if l.SupplyRemaining > 0 {
		l.SupplyRemaining--
	} else {
		// two optimistic purchases raced for the last item, both tokens are already minted
		c.WithFields(log.Fields{"ticket": ticket.Id, "id": l.Id}).Warn("listing oversold")
		im.bump(c, "purchase.oversold")
	}
	l.UpdateStatus(im.now())
	if err := im.settle(c, l, out); err != nil {
		return err
	}

	im.record(c, &activity.Activity{
		Type:     activity.ActivityTypePurchaseSucceeded,
		Listing:  l.Id.String(),
		Account:  ticket.Buyer,
		To:       l.Seller,
		TicketId: ticket.Id,
		TokenId:  string(result.TokenId),
		Price:    ticket.Price.String(),
	})
	im.bump(c, "purchase.resolved", "status", string(token.MintStatusSuccessful))
	return nil
}

func (im *impl) refundExcess(c ctx.Ctx, ticket listing.PurchaseTicket, out *listing.ResolveOutcome) error {
	excess := ticket.Deposit.Sub(ticket.Price)
	if !excess.IsPositive() {
		return nil
	}
	if err := im.ledgerUC.Release(c, ticket.Buyer, excess); err != nil {
		return err
	}
	out.Refunded = excess
	return nil
}

// resolveOversold settles a buy now whose listing sold out and concluded while its mint
// was in flight. The token exists, so the seller is paid from the ticket's escrow.
func (im *impl) resolveOversold(c ctx.Ctx, ticket listing.PurchaseTicket, result token.MintResult, out *listing.ResolveOutcome) error {
	if err := im.refundExcess(c, ticket, out); err != nil {
		return err
	}
	if err := im.ledgerUC.Release(c, ticket.Seller, ticket.Price); err != nil {
		return err
	}
	out.SupplyRemaining = 0

	c.WithFields(log.Fields{"ticket": ticket.Id, "id": ticket.ListingId}).Warn("listing oversold")
	im.bump(c, "purchase.oversold")
	im.record(c, &activity.Activity{
		Type:     activity.ActivityTypePurchaseSucceeded,
		Listing:  ticket.ListingId.String(),
		Account:  ticket.Buyer,
		To:       ticket.Seller,
		TicketId: ticket.Id,
		TokenId:  string(result.TokenId),
		Price:    ticket.Price.String(),
	})
	im.bump(c, "purchase.resolved", "status", string(token.MintStatusSuccessful))
	return nil
}

// settle concludes a sold out listing once no purchase is in flight,
// otherwise trims the proposals to the supply left and saves it.
func (im *impl) settle(c ctx.Ctx, l *listing.Listing, out *listing.ResolveOutcome) error {
	out.SupplyRemaining = l.SupplyRemaining
	if l.SupplyRemaining == 0 && len(l.Settling) == 0 {
		out.Concluded = true
		return im.conclude(c, l)
	}

	evicted, err := im.evict(c, l)
	if err != nil {
		return err
	}
	out.Evicted = evicted
	return im.listingRepo.Update(c, l)
}
