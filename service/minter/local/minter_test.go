package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/token"
	mToken "github.com/x-xyz/fpomarket/domain/token/mocks"
)

const market = domain.AccountId("market.near")

type minterSuite struct {
	suite.Suite

	tokenUC *mToken.UseCase
	minter  *Minter
	results chan token.MintResult
}

func TestMinterSuite(t *testing.T) {
	suite.Run(t, new(minterSuite))
}

func (s *minterSuite) SetupTest() {
	s.tokenUC = &mToken.UseCase{}
	s.minter = New(&Config{TokenUC: s.tokenUC, MarketAccount: market, Workers: 2})
	s.results = make(chan token.MintResult, 4)
	s.minter.OnResult(func(_ ctx.Ctx, res token.MintResult) {
		s.results <- res
	})
}

func (s *minterSuite) TearDownTest() {
	s.minter.Close()
	s.tokenUC.AssertExpectations(s.T())
}

func (s *minterSuite) next() token.MintResult {
	select {
	case res := <-s.results:
		return res
	case <-time.After(5 * time.Second):
		s.FailNow("no mint result")
	}
	return token.MintResult{}
}

func (s *minterSuite) TestMintSuccessful() {
	req := token.MintRequest{Id: "t1", Collection: "lot-1", Receiver: "bob.near", Payload: []byte(`{"id":"t1"}`)}
	s.tokenUC.On("Mint", mock.Anything, market, req).Return(&token.Token{Id: token.NewTokenId("lot-1", 1)}, nil).Once()

	s.Require().NoError(s.minter.Mint(ctx.Background(), req))
	res := s.next()
	s.Equal(token.MintStatusSuccessful, res.Status)
	s.Equal("t1", res.RequestId)
	s.Equal(token.NewTokenId("lot-1", 1), res.TokenId)
	s.Equal(req.Payload, res.Payload)
}

func (s *minterSuite) TestMintFailed() {
	req := token.MintRequest{Id: "t2", Collection: "lot-1", Receiver: "bob.near"}
	s.tokenUC.On("Mint", mock.Anything, market, req).Return(nil, errors.New("contract rejected")).Once()

	s.Require().NoError(s.minter.Mint(ctx.Background(), req))
	res := s.next()
	s.Equal(token.MintStatusFailed, res.Status)
	s.Equal("contract rejected", res.Err)
}

func (s *minterSuite) TestMintPanics() {
	req := token.MintRequest{Id: "t3", Collection: "lot-1", Receiver: "bob.near"}
	s.tokenUC.On("Mint", mock.Anything, market, req).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil).Once()

	res := s.minter.Run(ctx.Background(), req)
	s.Equal(token.MintStatusFailed, res.Status)
	s.NotEmpty(res.Err)
}

func (s *minterSuite) TestBudget() {
	req := token.MintRequest{Id: "t4", Collection: "lot-1", Receiver: "bob.near", Budget: int64(time.Millisecond)}
	s.tokenUC.On("Mint", mock.Anything, market, req).Run(func(args mock.Arguments) {
		<-args.Get(0).(ctx.Ctx).Done()
	}).Return(nil, context.DeadlineExceeded).Once()

	res := s.minter.Run(ctx.Background(), req)
	s.Equal(token.MintStatusFailed, res.Status)
	s.Contains(res.Err, "deadline")
}
