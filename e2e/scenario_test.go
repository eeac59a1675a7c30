package e2e

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/domain/listing"
)

func prices(ps []*listing.Proposal) []string {
	res := []string{}
	for _, p := range ps {
		res = append(res, p.Price.String())
	}
	return res
}

func equalAmount(n int64) OmegaMatcher {
	return WithTransform(func(d decimal.Decimal) string { return d.String() }, Equal(amount(n).String()))
}

var _ = Describe("Proposal ranking", func() {
	var s *Stack

	BeforeEach(func() {
		s = NewStack(DefaultMarketConfig(), market)
	})

	AfterEach(func() {
		s.Close()
	})

	It("keeps the best proposals within the supply and refunds the evicted one in full", func() {
		l := s.AddListing("lot-a", 2, "1000", strPtr("100"))

		s.Propose(bob, l.Id, 100)
		s.Propose(carol, l.Id, 150)
		s.Propose(dave, l.Id, 200)

		got, err := s.Listing(l.Id)
		Expect(err).NotTo(HaveOccurred())
		Expect(prices(got.Proposals)).To(Equal([]string{"200", "150"}))

		Expect(s.Balance(bob)).To(equalAmount(fundedBalance))
		Expect(s.Balance(carol)).To(equalAmount(fundedBalance - 150))
		Expect(s.Balance(dave)).To(equalAmount(fundedBalance - 200))
		Expect(s.HasActivity(activity.ActivityTypeProposalEvicted, bob)).To(BeTrue())

		price, err := s.Listings.AcceptablePrice(ctx.Background(), l.Id)
		Expect(err).NotTo(HaveOccurred())
		Expect(price).NotTo(BeNil())
		Expect(price.String()).To(Equal("160"))
	})

	It("charges the penalty on a voluntary revoke", func() {
		l := s.AddListing("lot-a", 2, "1000", strPtr("100"))
		p := s.Propose(bob, l.Id, 200)

		Expect(s.Listings.RevokeProposal(ctx.Background(), bob, l.Id, p.Id)).To(Succeed())
		// 5% of 200
		Expect(s.Balance(bob)).To(equalAmount(fundedBalance - 10))
		Expect(s.Balance(profit)).To(equalAmount(10))
	})
})

var _ = Describe("Listing validation", func() {
	It("rejects a buy now price under the floor and creates nothing", func() {
		cfg := DefaultMarketConfig()
		cfg.PriceMin = amount(1000)
		s := NewStack(cfg, market)
		defer s.Close()

		_, err := s.Listings.AddListing(ctx.Background(), seller, Params("lot-b", 1, "800", nil), amount(listingDeposit))
		Expect(err).To(MatchError(domain.ErrPriceTooLow))
		Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())

		cnt, err := s.Listings.TotalListings(ctx.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(cnt).To(BeZero())
		Expect(s.Balance(seller)).To(equalAmount(fundedBalance))
	})
})

var _ = Describe("Buy now", func() {
	It("leaves the listing running when the mint fails", func() {
		// the token contract trusts another minter, every mint is rejected
		s := NewStack(DefaultMarketConfig(), domain.AccountId("someone-else.near"))
		defer s.Close()

		l := s.AddListing("lot-c", 1, "1000", nil)
		sellerBefore := s.Balance(seller)

		ticket, err := s.Listings.BuyNow(ctx.Background(), bob, l.Id, amount(1000))
		Expect(err).NotTo(HaveOccurred())
		Expect(ticket.Kind).To(Equal(listing.PurchaseKindBuyNow))

		Eventually(func() bool {
			return s.HasActivity(activity.ActivityTypePurchaseFailed, bob)
		}, resolveTimeout).Should(BeTrue())

		got, err := s.Listing(l.Id)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.SupplyRemaining).To(Equal(uint32(1)))
		Expect(got.Status).To(Equal(listing.StatusRunning))
		Expect(s.Balance(bob)).To(equalAmount(fundedBalance))
		Expect(s.Balance(seller)).To(equalAmount(sellerBefore.IntPart()))
	})

	It("pays the seller, concludes the listing and refunds the standing proposals when the mint succeeds", func() {
		s := NewStack(DefaultMarketConfig(), market)
		defer s.Close()

		l := s.AddListing("lot-d", 1, "1000", strPtr("100"))
		s.Propose(carol, l.Id, 500)
		Expect(s.Balance(carol)).To(equalAmount(fundedBalance - 500))
		sellerBefore := s.Balance(seller)

		_, err := s.Listings.BuyNow(ctx.Background(), bob, l.Id, amount(1000))
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() error {
			_, err := s.Listing(l.Id)
			return err
		}, resolveTimeout).Should(MatchError(domain.ErrNotFound))

		Expect(s.Balance(seller)).To(equalAmount(sellerBefore.IntPart() + 1000))
		Expect(s.Balance(bob)).To(equalAmount(fundedBalance - 1000))
		Expect(s.Balance(carol)).To(equalAmount(fundedBalance))

		owned, err := s.Tokens.TokensForOwner(ctx.Background(), bob, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(owned).To(HaveLen(1))
		Expect(s.HasActivity(activity.ActivityTypePurchaseSucceeded, bob)).To(BeTrue())
		Expect(s.HasActivity(activity.ActivityTypeListingConcluded, seller)).To(BeTrue())

		listings, err := s.Listings.ListingsByOwner(ctx.Background(), seller)
		Expect(err).NotTo(HaveOccurred())
		Expect(listings).To(BeEmpty())
	})
})

var _ = Describe("Proposal settlement", func() {
	var s *Stack

	BeforeEach(func() {
		s = NewStack(DefaultMarketConfig(), market)
	})

	AfterEach(func() {
		s.Close()
	})

	It("sells to accepted proposals and concludes once the supply is gone", func() {
		p := Params("lot-e", 2, "1000", strPtr("100"))
		end := time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC)
		p.EndAt = strPtr(decimal.NewFromInt(end.UnixNano()).String())
		l, err := s.Listings.AddListing(ctx.Background(), seller, p, amount(listingDeposit))
		Expect(err).NotTo(HaveOccurred())

		top := s.Propose(carol, l.Id, 300)
		s.Propose(dave, l.Id, 200)
		sellerBefore := s.Balance(seller)

		ticket, err := s.Listings.AcceptProposal(ctx.Background(), seller, l.Id, top.Id)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticket.Buyer).To(Equal(carol))

		Eventually(func() uint32 {
			got, err := s.Listing(l.Id)
			if err != nil {
				return 0
			}
			return got.SupplyRemaining
		}, resolveTimeout).Should(Equal(uint32(1)))
		Expect(s.Balance(seller)).To(equalAmount(sellerBefore.IntPart() + 300))

		_, err = s.Listings.SettleProposals(ctx.Background(), operator, l.Id)
		Expect(err).To(MatchError(domain.ErrTooEarly))

		s.Advance(3 * time.Hour)
		tickets, err := s.Listings.SettleProposals(ctx.Background(), operator, l.Id)
		Expect(err).NotTo(HaveOccurred())
		Expect(tickets).To(HaveLen(1))
		Expect(tickets[0].Buyer).To(Equal(dave))

		Eventually(func() error {
			_, err := s.Listing(l.Id)
			return err
		}, resolveTimeout).Should(MatchError(domain.ErrNotFound))
		Expect(s.Balance(seller)).To(equalAmount(sellerBefore.IntPart() + 500))

		for _, who := range []domain.AccountId{carol, dave} {
			owned, err := s.Tokens.TokensForOwner(ctx.Background(), who, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(owned).To(HaveLen(1))
		}
	})
})
