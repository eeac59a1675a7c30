package token

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
)

const (
	MaxRoyaltyEntries = 10
	MaxRoyaltyBps     = 10000
)

// TokenId is `<collection>:<serial>`
type TokenId string

func NewTokenId(collection string, serial uint64) TokenId {
	return TokenId(collection + ":" + strconv.FormatUint(serial, 10))
}

func (id TokenId) Collection() string {
	i := strings.LastIndex(string(id), ":")
	if i < 0 {
		return ""
	}
	return string(id)[:i]
}

type Token struct {
	Id         TokenId                     `json:"id"`
	Contract   domain.AccountId            `json:"contract"`
	Collection string                      `json:"collection"`
	Owner      domain.AccountId            `json:"owner"`
	Royalty    map[domain.AccountId]uint32 `json:"royalty,omitempty"`
	MintedAt   domain.Timestamp            `json:"mintedAt"`
}

func ValidateRoyalty(royalty map[domain.AccountId]uint32) error {
	if len(royalty) > MaxRoyaltyEntries {
		return xerrors.Errorf("too many royalty receivers: %w", domain.ErrInvalidRoyalty)
	}
	total := uint64(0)
	for account, bps := range royalty {
		if !account.IsValid() {
			return xerrors.Errorf("royalty receiver %q: %w", account, domain.ErrInvalidAccountId)
		}
		total += uint64(bps)
		if total > MaxRoyaltyBps {
			return xerrors.Errorf("royalty above 100%%: %w", domain.ErrInvalidRoyalty)
		}
	}
	return nil
}

type MintStatus string

const (
	MintStatusPending    MintStatus = "pending"
	MintStatusFailed     MintStatus = "failed"
	MintStatusSuccessful MintStatus = "successful"
)

// MintRequest is the remote mint call. Payload is returned untouched with the result.
type MintRequest struct {
	Id         string                      `json:"id"`
	Contract   domain.AccountId            `json:"contract"`
	Collection string                      `json:"collection"`
	Receiver   domain.AccountId            `json:"receiver"`
	Royalty    map[domain.AccountId]uint32 `json:"royalty,omitempty"`
	// compute budget in nanoseconds
	Budget  int64  `json:"budget"`
	Payload []byte `json:"payload"`
}

// MintResult is the single upstream result slot of a mint call
type MintResult struct {
	RequestId string     `json:"requestId"`
	Status    MintStatus `json:"status"`
	TokenId   TokenId    `json:"tokenId,omitempty"`
	Payload   []byte     `json:"payload"`
	Err       string     `json:"err,omitempty"`
}

// Minter issues remote mint calls. Results are delivered to the callback registered with OnResult.
type Minter interface {
	Mint(c ctx.Ctx, req MintRequest) error
	OnResult(cb func(c ctx.Ctx, res MintResult))
}

type Repo interface {
	FindOne(c ctx.Ctx, id TokenId) (*Token, error)
	Insert(c ctx.Ctx, t *Token) error
	NextSerial(c ctx.Ctx, collection string) (uint64, error)
	TotalSupply(c ctx.Ctx, collection string) (uint64, error)
	FindAllByOwner(c ctx.Ctx, owner domain.AccountId, offset, limit int) ([]*Token, error)
}

type UseCase interface {
	// Mint is called by the marketplace account only
	Mint(c ctx.Ctx, minter domain.AccountId, req MintRequest) (*Token, error)
	Token(c ctx.Ctx, id TokenId) (*Token, error)
	TokensForOwner(c ctx.Ctx, owner domain.AccountId, offset, limit int) ([]*Token, error)
	TotalSupply(c ctx.Ctx, collection string) (uint64, error)
}
