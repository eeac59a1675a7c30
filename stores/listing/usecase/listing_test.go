package usecase

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/domain"
	mActivity "github.com/x-xyz/fpomarket/domain/activity/mocks"
	"github.com/x-xyz/fpomarket/domain/ledger"
	"github.com/x-xyz/fpomarket/domain/listing"
	"github.com/x-xyz/fpomarket/domain/token"
	mToken "github.com/x-xyz/fpomarket/domain/token/mocks"
	ledgerRepository "github.com/x-xyz/fpomarket/stores/ledger/repository"
	ledgerUsecase "github.com/x-xyz/fpomarket/stores/ledger/usecase"
	"github.com/x-xyz/fpomarket/stores/listing/repository"
)

const (
	contract = domain.AccountId("market.near")
	operator = domain.AccountId("operator.near")
	profit   = domain.AccountId("profit.near")
	seller   = domain.AccountId("alice.near")
	bob      = domain.AccountId("bob.near")
	carol    = domain.AccountId("carol.near")
	dave     = domain.AccountId("dave.near")

	initialBalance = 1000000
	storageBalance = 10000
)

var nftContract = domain.AccountId("nft.near")

func amount(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func strPtr(s string) *string {
	return &s
}

type ListingTestSuite struct {
	suite.Suite

	store      *kvstore.Store
	ledgerUC   ledger.UseCase
	activityUC *mActivity.UseCase
	minter     *mToken.Minter
	uc         listing.UseCase

	now      time.Time
	cfg      listing.Config
	requests []token.MintRequest
	mintErr  error
}

func TestListingTestSuite(t *testing.T) {
	suite.Run(t, new(ListingTestSuite))
}

func (s *ListingTestSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.requests = nil
	s.mintErr = nil
	s.cfg = listing.Config{
		SupplyMax:       listing.DefaultSupplyMax,
		PriceMin:        amount(100),
		PriceStep:       amount(10),
		MinDuration:     time.Hour,
		MaxDuration:     30 * 24 * time.Hour,
		PenaltyBps:      500,
		StorageByteCost: amount(1),
		OperatorAccount: operator,
		ProfitAccount:   profit,
		ContractAccount: contract,
		MintBudget:      5 * time.Second,
		PageSize:        listing.DefaultPageSize,
	}
	s.build()

	c := ctx.Background()
	for _, a := range []domain.AccountId{seller, bob, carol, dave} {
		s.Require().NoError(s.ledgerUC.Credit(c, operator, a, amount(initialBalance)))
		s.Require().NoError(s.ledgerUC.StorageDeposit(c, a, amount(storageBalance)))
	}
}

func (s *ListingTestSuite) build() {
	s.store = kvstore.NewMemory()
	s.ledgerUC = ledgerUsecase.New(&ledgerUsecase.LedgerUseCaseCfg{
		Store:           s.store,
		Repo:            ledgerRepository.New(s.store),
		ContractAccount: contract,
		OperatorAccount: operator,
	})

	s.activityUC = &mActivity.UseCase{}
	s.activityUC.On("Record", mock.Anything, mock.Anything).Return()

	s.minter = &mToken.Minter{}
	s.minter.On("OnResult", mock.Anything).Return()
	s.minter.On("Mint", mock.Anything, mock.Anything).Return(func(c ctx.Ctx, req token.MintRequest) error {
		if s.mintErr != nil {
			return s.mintErr
		}
		s.requests = append(s.requests, req)
		return nil
	})

	s.uc = New(&ListingUseCaseCfg{
		Config:      s.cfg,
		Store:       s.store,
		ListingRepo: repository.New(s.store),
		LedgerUC:    s.ledgerUC,
		ActivityUC:  s.activityUC,
		Minter:      s.minter,
		TimeNow:     func() time.Time { return s.now },
	})
}

func (s *ListingTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *ListingTestSuite) balance(a domain.AccountId) decimal.Decimal {
	bal, err := s.ledgerUC.BalanceOf(ctx.Background(), a)
	s.Require().NoError(err)
	return bal
}

func (s *ListingTestSuite) storageBalance(a domain.AccountId) decimal.Decimal {
	bal, err := s.ledgerUC.StorageBalanceOf(ctx.Background(), a)
	s.Require().NoError(err)
	return bal
}

func (s *ListingTestSuite) params(lot string, supply uint32, buyNow string, minProposal *string) listing.AddListingParams {
	return listing.AddListingParams{
		Contract:         nftContract,
		Lot:              lot,
		Metadata:         listing.Metadata{Title: "Item " + lot},
		SupplyTotal:      supply,
		BuyNowPrice:      buyNow,
		MinProposalPrice: minProposal,
	}
}

func (s *ListingTestSuite) addListing(p listing.AddListingParams) *listing.Listing {
	l, err := s.uc.AddListing(ctx.Background(), seller, p, amount(5000))
	s.Require().NoError(err)
	return l
}

func (s *ListingTestSuite) propose(who domain.AccountId, id listing.ListingId, price int64) (*listing.Proposal, error) {
	return s.uc.PlaceProposal(ctx.Background(), who, id, amount(price), amount(price))
}

func (s *ListingTestSuite) resolve(req token.MintRequest, status token.MintStatus) (*listing.ResolveOutcome, error) {
	ticket, err := listing.TicketFromPayload(req.Payload)
	s.Require().NoError(err)
	res := token.MintResult{RequestId: req.Id, Status: status, Payload: req.Payload}
	if status == token.MintStatusSuccessful {
		res.TokenId = token.NewTokenId(req.Collection, 1)
	}
	return s.uc.ResolvePurchase(ctx.Background(), ticket, res)
}

func (s *ListingTestSuite) checkRanking(l *listing.Listing) {
	s.LessOrEqual(len(l.Proposals), int(l.SupplyRemaining))
	for i := 1; i < len(l.Proposals); i++ {
		s.True(l.Proposals[i-1].Better(l.Proposals[i]))
	}
}

func (s *ListingTestSuite) TestAddListing() {
	c := ctx.Background()
	before := s.balance(seller)

	l := s.addListing(s.params("lot-1", 3, "1000", strPtr("100")))
	s.Equal(listing.StatusRunning, l.Status)
	s.Equal(uint32(3), l.SupplyRemaining)

	// the seller paid exactly the storage the listing takes, the excess came back
	spent := before.Sub(s.balance(seller))
	s.True(spent.IsPositive())
	s.True(spent.Equal(decimal.NewFromInt(s.store.StorageUsage(c))), "spent %s usage %d", spent, s.store.StorageUsage(c))

	cnt, err := s.uc.TotalListings(c)
	s.Require().NoError(err)
	s.Equal(1, cnt)

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(seller, got.Seller)

	owned, err := s.uc.ListingsByOwner(c, seller)
	s.Require().NoError(err)
	s.Require().Len(owned, 1)
	s.Equal(l.Id, owned[0].Id)

	_, err = s.uc.AddListing(c, seller, s.params("lot-1", 3, "1000", nil), amount(5000))
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *ListingTestSuite) TestAddListingUnstarted() {
	p := s.params("lot-1", 1, "1000", strPtr("100"))
	start := s.now.Add(time.Hour)
	end := start.Add(2 * time.Hour)
	p.StartAt = strPtr(decimal.NewFromInt(start.UnixNano()).String())
	p.EndAt = strPtr(decimal.NewFromInt(end.UnixNano()).String())
	l := s.addListing(p)
	s.Equal(listing.StatusUnstarted, l.Status)

	_, err := s.uc.BuyNow(ctx.Background(), bob, l.Id, amount(1000))
	s.ErrorIs(err, domain.ErrListingNotRunning)
	price, err := s.uc.AcceptablePrice(ctx.Background(), l.Id)
	s.Require().NoError(err)
	s.Nil(price)

	s.now = start.Add(time.Minute)
	price, err = s.uc.AcceptablePrice(ctx.Background(), l.Id)
	s.Require().NoError(err)
	s.Require().NotNil(price)
	s.Equal("100", price.String())

	s.now = end
	got, err := s.uc.ListingById(ctx.Background(), l.Id)
	s.Require().NoError(err)
	s.Equal(listing.StatusEnded, got.Status)
}

func (s *ListingTestSuite) TestAddListingValidation() {
	ns := func(t time.Time) *string {
		return strPtr(decimal.NewFromInt(t.UnixNano()).String())
	}
	tests := []struct {
		name    string
		modify  func(p *listing.AddListingParams)
		deposit int64
		wantErr error
	}{
		{
			name:    "supply zero",
			modify:  func(p *listing.AddListingParams) { p.SupplyTotal = 0 },
			wantErr: domain.ErrBadSupply,
		},
		{
			name:    "supply above max",
			modify:  func(p *listing.AddListingParams) { p.SupplyTotal = 101 },
			wantErr: domain.ErrBadSupply,
		},
		{
			name:    "price not a step multiple",
			modify:  func(p *listing.AddListingParams) { p.BuyNowPrice = "1005" },
			wantErr: domain.ErrPriceNotStepMultiple,
		},
		{
			name:    "fractional price",
			modify:  func(p *listing.AddListingParams) { p.BuyNowPrice = "1000.5" },
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "min proposal not below buy now",
			modify:  func(p *listing.AddListingParams) { p.MinProposalPrice = strPtr("1000") },
			wantErr: domain.ErrPriceTooHigh,
		},
		{
			name:    "min proposal below floor",
			modify:  func(p *listing.AddListingParams) { p.MinProposalPrice = strPtr("50") },
			wantErr: domain.ErrPriceTooLow,
		},
		{
			name:    "malformed timestamp",
			modify:  func(p *listing.AddListingParams) { p.EndAt = strPtr("tomorrow") },
			wantErr: domain.ErrMalformedTimestamp,
		},
		{
			name:    "start in the past",
			modify:  func(p *listing.AddListingParams) { p.StartAt = ns(s.now.Add(-time.Second)) },
			wantErr: domain.ErrDateInPast,
		},
		{
			name:    "duration too short",
			modify:  func(p *listing.AddListingParams) { p.EndAt = ns(s.now.Add(time.Minute)) },
			wantErr: domain.ErrBadDuration,
		},
		{
			name: "end before start",
			modify: func(p *listing.AddListingParams) {
				p.StartAt = ns(s.now.Add(3 * time.Hour))
				p.EndAt = ns(s.now.Add(2 * time.Hour))
			},
			wantErr: domain.ErrBadDuration,
		},
		{
			name:    "duration too long",
			modify:  func(p *listing.AddListingParams) { p.EndAt = ns(s.now.Add(31 * 24 * time.Hour)) },
			wantErr: domain.ErrBadDuration,
		},
		{
			name: "too many royalty receivers",
			modify: func(p *listing.AddListingParams) {
				p.Metadata.Royalty = map[domain.AccountId]uint32{}
				for _, a := range []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "aa"} {
					p.Metadata.Royalty[domain.AccountId(a+".near")] = 1
				}
			},
			wantErr: domain.ErrInvalidRoyalty,
		},
		{
			name:    "deposit below storage cost",
			modify:  func(p *listing.AddListingParams) {},
			deposit: 10,
			wantErr: domain.ErrDepositTooLow,
		},
		{
			name:    "deposit above balance",
			modify:  func(p *listing.AddListingParams) {},
			deposit: initialBalance * 2,
			wantErr: domain.ErrBalanceTooLow,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			c := ctx.Background()
			before := s.balance(seller)
			usage := s.store.StorageUsage(c)

			p := s.params("lot-v", 2, "1000", strPtr("100"))
			tt.modify(&p)
			deposit := tt.deposit
			if deposit == 0 {
				deposit = 5000
			}
			_, err := s.uc.AddListing(c, seller, p, amount(deposit))
			s.ErrorIs(err, tt.wantErr)

			s.True(before.Equal(s.balance(seller)))
			s.Equal(usage, s.store.StorageUsage(c))
			cnt, err := s.uc.TotalListings(c)
			s.Require().NoError(err)
			s.Equal(0, cnt)
		})
	}
}

// listing with floor 1000 rejects a buy now price of 800 and creates nothing
func (s *ListingTestSuite) TestScenarioPriceTooLow() {
	s.Require().NoError(s.store.Close())
	s.cfg.PriceMin = amount(1000)
	s.build()
	c := ctx.Background()
	s.Require().NoError(s.ledgerUC.Credit(c, operator, seller, amount(initialBalance)))

	_, err := s.uc.AddListing(c, seller, s.params("lot-1", 1, "800", nil), amount(5000))
	s.ErrorIs(err, domain.ErrPriceTooLow)
	s.ErrorIs(err, domain.ErrValidation)

	cnt, err := s.uc.TotalListings(c)
	s.Require().NoError(err)
	s.Equal(0, cnt)
	s.True(s.balance(seller).Equal(amount(initialBalance)))
}

// supply 2, proposals at 100, 150, 200 leave {200, 150}, 100 is refunded in full
func (s *ListingTestSuite) TestScenarioEviction() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 2, "1000", strPtr("100")))

	bobStorage := s.storageBalance(bob)
	_, err := s.propose(bob, l.Id, 100)
	s.Require().NoError(err)
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance - 100)))
	s.True(s.storageBalance(bob).LessThan(bobStorage))

	_, err = s.propose(carol, l.Id, 150)
	s.Require().NoError(err)

	price, err := s.uc.AcceptablePrice(c, l.Id)
	s.Require().NoError(err)
	s.Equal("110", price.String())

	_, err = s.propose(dave, l.Id, 200)
	s.Require().NoError(err)

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Require().Len(got.Proposals, 2)
	s.Equal("200", got.Proposals[0].Price.String())
	s.Equal(dave, got.Proposals[0].Proposer)
	s.Equal("150", got.Proposals[1].Price.String())
	s.Equal(carol, got.Proposals[1].Proposer)
	s.checkRanking(got)

	// evicted proposer gets the escrow and the storage back
	s.True(s.balance(bob).Equal(amount(initialBalance-storageBalance)), s.balance(bob).String())
	s.True(s.storageBalance(bob).Equal(bobStorage), s.storageBalance(bob).String())

	price, err = s.uc.AcceptablePrice(c, l.Id)
	s.Require().NoError(err)
	s.Equal("160", price.String())

	_, err = s.propose(bob, l.Id, 150)
	s.ErrorIs(err, domain.ErrProposalPriceTooLow)
}

func (s *ListingTestSuite) TestPlaceProposalRejects() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 2, "1000", strPtr("100")))
	noProposals := s.addListing(s.params("lot-2", 2, "1000", nil))

	_, err := s.uc.PlaceProposal(c, bob, l.Id, amount(200), amount(190))
	s.ErrorIs(err, domain.ErrDepositMismatch)

	_, err = s.propose(bob, l.Id, 205)
	s.ErrorIs(err, domain.ErrPriceNotStepMultiple)

	_, err = s.propose(bob, l.Id, 1010)
	s.ErrorIs(err, domain.ErrPriceTooHigh)

	_, err = s.propose(bob, noProposals.Id, 200)
	s.ErrorIs(err, domain.ErrProposalsDisabled)

	_, err = s.propose(seller, l.Id, 200)
	s.ErrorIs(err, domain.ErrSellerCannotBuy)

	_, err = s.propose(bob, listing.ListingId{Contract: nftContract, Lot: "missing"}, 200)
	s.ErrorIs(err, domain.ErrNotFound)

	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))
}

func (s *ListingTestSuite) TestRevokeProposal() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 2, "1000", strPtr("100")))
	p, err := s.propose(bob, l.Id, 200)
	s.Require().NoError(err)

	s.ErrorIs(s.uc.RevokeProposal(c, carol, l.Id, p.Id), domain.ErrNotAuthorized)
	s.ErrorIs(s.uc.RevokeProposal(c, bob, l.Id, p.Id+1), domain.ErrNotFound)

	s.Require().NoError(s.uc.RevokeProposal(c, bob, l.Id, p.Id))
	// 5% penalty goes to the profit account
	s.True(s.balance(bob).Equal(amount(initialBalance-storageBalance-10)), s.balance(bob).String())
	s.True(s.balance(profit).Equal(amount(10)))

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Empty(got.Proposals)
}

// buy now with a failed mint keeps supply and pays nobody
func (s *ListingTestSuite) TestScenarioBuyNowMintFailed() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", nil))
	sellerBalance := s.balance(seller)

	ticket, err := s.uc.BuyNow(c, bob, l.Id, amount(1200))
	s.Require().NoError(err)
	s.Equal(listing.PurchaseKindBuyNow, ticket.Kind)
	s.Require().Len(s.requests, 1)
	s.Equal(bob, s.requests[0].Receiver)
	s.Equal("lot-1", s.requests[0].Collection)
	s.Equal(nftContract, s.requests[0].Contract)
	s.Equal(int64(5*time.Second), s.requests[0].Budget)

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(uint32(1), got.SupplyRemaining)

	out, err := s.resolve(s.requests[0], token.MintStatusFailed)
	s.Require().NoError(err)
	s.Equal(token.MintStatusFailed, out.Status)
	s.NotEmpty(out.Reason)
	s.True(out.Refunded.Equal(amount(1200)))
	s.False(out.Concluded)

	got, err = s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(uint32(1), got.SupplyRemaining)
	s.Equal(listing.StatusRunning, got.Status)
	s.True(s.balance(seller).Equal(sellerBalance))
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))
}

// buy now with a successful mint sells out, pays the seller and concludes
func (s *ListingTestSuite) TestScenarioBuyNowMintSuccessful() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", strPtr("100")))
	_, err := s.propose(carol, l.Id, 300)
	s.Require().NoError(err)
	sellerBalance := s.balance(seller)
	sellerStorage := s.storageBalance(seller)

	_, err = s.uc.BuyNow(c, bob, l.Id, amount(1200))
	s.Require().NoError(err)
	s.Require().Len(s.requests, 1)

	out, err := s.resolve(s.requests[0], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.Equal(uint32(0), out.SupplyRemaining)
	s.True(out.Concluded)
	s.True(out.Refunded.Equal(amount(200)))

	s.True(s.balance(seller).Equal(sellerBalance.Add(amount(1000))))
	s.True(s.storageBalance(seller).GreaterThan(sellerStorage))
	s.True(s.balance(bob).Equal(amount(initialBalance-storageBalance-1000)), s.balance(bob).String())
	s.True(s.balance(carol).Equal(amount(initialBalance-storageBalance)), s.balance(carol).String())

	_, err = s.uc.ListingById(c, l.Id)
	s.ErrorIs(err, domain.ErrNotFound)
	cnt, err := s.uc.TotalListings(c)
	s.Require().NoError(err)
	s.Equal(0, cnt)
	owned, err := s.uc.ListingsByOwner(c, seller)
	s.Require().NoError(err)
	s.Empty(owned)
	// the market keeps only the listing counter
	s.Equal(int64(len("mt:listings")+len("0")), s.store.StorageUsage(c))
}

func (s *ListingTestSuite) TestSuccessfulPurchaseEvicts() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 2, "1000", strPtr("100")))
	_, err := s.propose(bob, l.Id, 200)
	s.Require().NoError(err)
	_, err = s.propose(carol, l.Id, 300)
	s.Require().NoError(err)

	_, err = s.uc.BuyNow(c, dave, l.Id, amount(1000))
	s.Require().NoError(err)
	out, err := s.resolve(s.requests[0], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.False(out.Concluded)
	s.Equal(uint32(1), out.SupplyRemaining)
	s.Require().Len(out.Evicted, 1)
	s.Equal(bob, out.Evicted[0].Proposer)

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(uint32(1), got.SupplyRemaining)
	s.Require().Len(got.Proposals, 1)
	s.Equal(carol, got.Proposals[0].Proposer)
	s.checkRanking(got)
}

func (s *ListingTestSuite) TestBuyNowRejects() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", nil))

	_, err := s.uc.BuyNow(c, seller, l.Id, amount(1000))
	s.ErrorIs(err, domain.ErrSellerCannotBuy)

	_, err = s.uc.BuyNow(c, bob, l.Id, amount(999))
	s.ErrorIs(err, domain.ErrInsufficientDeposit)

	_, err = s.uc.BuyNow(c, bob, listing.ListingId{Contract: nftContract, Lot: "missing"}, amount(1000))
	s.ErrorIs(err, domain.ErrNotFound)

	s.Empty(s.requests)
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))
}

func (s *ListingTestSuite) TestMintDispatchFailureRefunds() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", nil))
	s.mintErr = errors.New("no route to minter")

	_, err := s.uc.BuyNow(c, bob, l.Id, amount(1000))
	s.Require().NoError(err)
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(uint32(1), got.SupplyRemaining)
}

func (s *ListingTestSuite) TestResolvePendingIsFatal() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", nil))
	_, err := s.uc.BuyNow(c, bob, l.Id, amount(1000))
	s.Require().NoError(err)

	_, err = s.resolve(s.requests[0], token.MintStatusPending)
	s.ErrorIs(err, domain.ErrFatalInconsistency)

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(uint32(1), got.SupplyRemaining)
	s.True(s.balance(contract).GreaterThanOrEqual(amount(1000)))
}

func (s *ListingTestSuite) TestResolveMissingListingIsFatal() {
	c := ctx.Background()
	contractBalance := s.balance(contract)
	ticket := listing.PurchaseTicket{
		Id:         "ticket-1",
		Kind:       listing.PurchaseKindProposal,
		ListingId:  listing.ListingId{Contract: nftContract, Lot: "missing"},
		Seller:     seller,
		Buyer:      bob,
		Price:      amount(300),
		Deposit:    amount(300),
		ProposalId: 1,
	}

	_, err := s.uc.ResolvePurchase(c, ticket, token.MintResult{
		RequestId: "req-1",
		Status:    token.MintStatusSuccessful,
		TokenId:   token.NewTokenId("missing", 1),
	})
	s.ErrorIs(err, domain.ErrRecordMissing)
	s.ErrorIs(err, domain.ErrFatalInconsistency)
	s.True(s.balance(contract).Equal(contractBalance))
}

// two buy now calls pass the supply check of the last item, both mints succeed
func (s *ListingTestSuite) TestRacingBuyNowPaysSeller() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", nil))
	sellerBalance := s.balance(seller)

	_, err := s.uc.BuyNow(c, bob, l.Id, amount(1000))
	s.Require().NoError(err)
	_, err = s.uc.BuyNow(c, carol, l.Id, amount(1200))
	s.Require().NoError(err)
	s.Require().Len(s.requests, 2)

	out, err := s.resolve(s.requests[0], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.True(out.Concluded)

	out, err = s.resolve(s.requests[1], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.False(out.Concluded)
	s.Equal(uint32(0), out.SupplyRemaining)
	s.True(out.Refunded.Equal(amount(200)), out.Refunded.String())

	s.True(s.balance(seller).Equal(sellerBalance.Add(amount(2000))), s.balance(seller).String())
	s.True(s.balance(bob).Equal(amount(initialBalance-storageBalance-1000)), s.balance(bob).String())
	s.True(s.balance(carol).Equal(amount(initialBalance-storageBalance-1000)), s.balance(carol).String())
}

// a buy now still in flight when the operator concludes is paid out once minted
func (s *ListingTestSuite) TestResolveBuyNowAfterConclude() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", nil))
	_, err := s.uc.BuyNow(c, bob, l.Id, amount(1000))
	s.Require().NoError(err)
	s.Require().NoError(s.uc.Conclude(c, operator, l.Id))
	sellerBalance := s.balance(seller)

	_, err = s.resolve(s.requests[0], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.True(s.balance(seller).Equal(sellerBalance.Add(amount(1000))))
}

// random mixes of calls keep the proposals ranked within the supply left
func (s *ListingTestSuite) TestRankingHoldsUnderRandomCalls() {
	c := ctx.Background()
	buyers := []domain.AccountId{bob, carol, dave}

	for seed := int64(1); seed <= 3; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		l := s.addListing(s.params(fmt.Sprintf("lot-%d", seed), 5, "1000", strPtr("100")))
		supply := l.SupplyRemaining
		pending := []token.MintRequest{}

		for step := 0; step < 200; step++ {
			got, err := s.uc.ListingById(c, l.Id)
			if errors.Is(err, domain.ErrNotFound) {
				break
			}
			s.Require().NoError(err)

			n := len(s.requests)
			switch rnd.Intn(6) {
			case 0, 1:
				_, err = s.propose(buyers[rnd.Intn(len(buyers))], l.Id, 10*int64(10+rnd.Intn(91)))
			case 2:
				if len(got.Proposals) > 0 {
					p := got.Proposals[rnd.Intn(len(got.Proposals))]
					err = s.uc.RevokeProposal(c, p.Proposer, l.Id, p.Id)
				}
			case 3:
				_, err = s.uc.BuyNow(c, buyers[rnd.Intn(len(buyers))], l.Id, amount(1000))
			case 4:
				if len(got.Proposals) > 0 {
					p := got.Proposals[rnd.Intn(len(got.Proposals))]
					_, err = s.uc.AcceptProposal(c, seller, l.Id, p.Id)
				}
			case 5:
				if len(pending) > 0 {
					i := rnd.Intn(len(pending))
					req := pending[i]
					pending = append(pending[:i], pending[i+1:]...)
					status := token.MintStatusSuccessful
					if rnd.Intn(2) == 0 {
						status = token.MintStatusFailed
					}
					_, err = s.resolve(req, status)
					s.Require().NoError(err, "seed %d step %d", seed, step)
				}
			}
			s.False(errors.Is(err, domain.ErrFatalInconsistency), "seed %d step %d: %v", seed, step, err)
			pending = append(pending, s.requests[n:]...)

			got, err = s.uc.ListingById(c, l.Id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			s.Require().NoError(err)
			s.checkRanking(got)
			s.LessOrEqual(got.SupplyRemaining, supply)
			supply = got.SupplyRemaining
		}

		for _, req := range pending {
			_, err := s.resolve(req, token.MintStatusSuccessful)
			s.Require().NoError(err, "seed %d", seed)
		}
	}
}

func (s *ListingTestSuite) TestConclude() {
	c := ctx.Background()
	p := s.params("lot-1", 2, "1000", strPtr("100"))
	p.EndAt = strPtr(decimal.NewFromInt(s.now.Add(2 * time.Hour).UnixNano()).String())
	l := s.addListing(p)
	_, err := s.propose(bob, l.Id, 200)
	s.Require().NoError(err)

	s.ErrorIs(s.uc.Conclude(c, bob, l.Id), domain.ErrNotAuthorized)
	s.ErrorIs(s.uc.Conclude(c, seller, l.Id), domain.ErrTooEarly)

	s.now = s.now.Add(3 * time.Hour)
	s.Require().NoError(s.uc.Conclude(c, seller, l.Id))
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))

	_, err = s.uc.ListingById(c, l.Id)
	s.ErrorIs(err, domain.ErrNotFound)
	s.ErrorIs(s.uc.Conclude(c, seller, l.Id), domain.ErrNotFound)
}

func (s *ListingTestSuite) TestConcludeByOperator() {
	c := ctx.Background()
	p := s.params("lot-1", 2, "1000", strPtr("100"))
	p.EndAt = strPtr(decimal.NewFromInt(s.now.Add(2 * time.Hour).UnixNano()).String())
	l := s.addListing(p)
	_, err := s.propose(bob, l.Id, 200)
	s.Require().NoError(err)

	s.Require().NoError(s.uc.Conclude(c, operator, l.Id))
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))
}

func (s *ListingTestSuite) TestAcceptProposal() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 2, "1000", strPtr("100")))
	p, err := s.propose(bob, l.Id, 300)
	s.Require().NoError(err)
	sellerBalance := s.balance(seller)

	_, err = s.uc.AcceptProposal(c, carol, l.Id, p.Id)
	s.ErrorIs(err, domain.ErrNotSeller)

	ticket, err := s.uc.AcceptProposal(c, seller, l.Id, p.Id)
	s.Require().NoError(err)
	s.Equal(listing.PurchaseKindProposal, ticket.Kind)
	s.Equal(bob, ticket.Buyer)
	s.Require().Len(s.requests, 1)

	_, err = s.uc.AcceptProposal(c, seller, l.Id, p.Id)
	s.ErrorIs(err, domain.ErrProposalSettling)
	s.ErrorIs(s.uc.RevokeProposal(c, bob, l.Id, p.Id), domain.ErrProposalSettling)
	s.ErrorIs(s.uc.Conclude(c, operator, l.Id), domain.ErrPurchaseInFlight)

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Empty(got.Proposals)
	s.Require().Len(got.Settling, 1)

	out, err := s.resolve(s.requests[0], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.Equal(uint32(1), out.SupplyRemaining)
	s.True(s.balance(seller).Equal(sellerBalance.Add(amount(300))))
	s.True(s.balance(bob).Equal(amount(initialBalance-storageBalance-300)))

	got, err = s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Empty(got.Settling)
}

func (s *ListingTestSuite) TestAcceptedProposalMintFailed() {
	c := ctx.Background()
	l := s.addListing(s.params("lot-1", 1, "1000", strPtr("100")))
	p, err := s.propose(bob, l.Id, 300)
	s.Require().NoError(err)
	_, err = s.uc.AcceptProposal(c, seller, l.Id, p.Id)
	s.Require().NoError(err)

	out, err := s.resolve(s.requests[0], token.MintStatusFailed)
	s.Require().NoError(err)
	s.True(out.Refunded.Equal(amount(300)))
	s.True(s.balance(bob).Equal(amount(initialBalance - storageBalance)))

	got, err := s.uc.ListingById(c, l.Id)
	s.Require().NoError(err)
	s.Equal(uint32(1), got.SupplyRemaining)
	s.Empty(got.Settling)
	s.Empty(got.Proposals)
}

func (s *ListingTestSuite) TestSettleProposals() {
	c := ctx.Background()
	p := s.params("lot-1", 2, "1000", strPtr("100"))
	p.EndAt = strPtr(decimal.NewFromInt(s.now.Add(2 * time.Hour).UnixNano()).String())
	l := s.addListing(p)
	_, err := s.propose(bob, l.Id, 200)
	s.Require().NoError(err)
	_, err = s.propose(carol, l.Id, 300)
	s.Require().NoError(err)

	_, err = s.uc.SettleProposals(c, seller, l.Id)
	s.ErrorIs(err, domain.ErrTooEarly)

	s.now = s.now.Add(3 * time.Hour)
	_, err = s.uc.SettleProposals(c, bob, l.Id)
	s.ErrorIs(err, domain.ErrNotAuthorized)

	tickets, err := s.uc.SettleProposals(c, seller, l.Id)
	s.Require().NoError(err)
	s.Require().Len(tickets, 2)
	s.Equal(carol, tickets[0].Buyer)
	s.Equal(bob, tickets[1].Buyer)
	s.Require().Len(s.requests, 2)

	out, err := s.resolve(s.requests[0], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.False(out.Concluded)
	out, err = s.resolve(s.requests[1], token.MintStatusSuccessful)
	s.Require().NoError(err)
	s.True(out.Concluded)

	_, err = s.uc.ListingById(c, l.Id)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ListingTestSuite) TestListingsByOwnerPagination() {
	c := ctx.Background()
	for _, lot := range []string{"lot-1", "lot-2", "lot-3"} {
		s.addListing(s.params(lot, 1, "1000", nil))
	}

	page, err := s.uc.ListingsByOwner(c, seller, listing.WithPagination(1, 1))
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("lot-2", page[0].Id.Lot)

	page, err = s.uc.ListingsByOwner(c, seller, listing.WithPagination(5, 0))
	s.Require().NoError(err)
	s.Empty(page)

	all, err := s.uc.ListingsByOwner(c, seller)
	s.Require().NoError(err)
	s.Len(all, 3)
}
