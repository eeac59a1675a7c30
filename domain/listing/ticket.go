package listing

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/token"
)

type PurchaseKind string

const (
	PurchaseKindBuyNow   PurchaseKind = "buyNow"
	PurchaseKindProposal PurchaseKind = "proposal"
)

// PurchaseTicket travels with a mint request and comes back with its result.
// It holds everything the resolution needs, nothing is persisted for it in between.
type PurchaseTicket struct {
	Id        string           `json:"id"`
	Kind      PurchaseKind     `json:"kind"`
	ListingId ListingId        `json:"listingId"`
	Seller    domain.AccountId `json:"seller"`
	Buyer     domain.AccountId `json:"buyer"`
	Price     decimal.Decimal  `json:"price"`
	// escrow held for the buyer, at least Price
	Deposit    decimal.Decimal  `json:"deposit"`
	ProposalId uint64           `json:"proposalId,omitempty"`
	CreatedAt  domain.Timestamp `json:"createdAt"`
}

func NewBuyNowTicket(l *Listing, buyer domain.AccountId, deposit decimal.Decimal, now domain.Timestamp) *PurchaseTicket {
	return &PurchaseTicket{
		Id:        uuid.NewString(),
		Kind:      PurchaseKindBuyNow,
		ListingId: l.Id,
		Seller:    l.Seller,
		Buyer:     buyer,
		Price:     l.BuyNowPrice,
		Deposit:   deposit,
		CreatedAt: now,
	}
}

func NewProposalTicket(l *Listing, p *Proposal, now domain.Timestamp) *PurchaseTicket {
	return &PurchaseTicket{
		Id:         uuid.NewString(),
		Kind:       PurchaseKindProposal,
		ListingId:  l.Id,
		Seller:     l.Seller,
		Buyer:      p.Proposer,
		Price:      p.Price,
		Deposit:    p.Price,
		ProposalId: p.Id,
		CreatedAt:  now,
	}
}

// MintRequest builds the remote mint call for the ticket, the ticket rides along as payload
func (t *PurchaseTicket) MintRequest(l *Listing, budget int64) (token.MintRequest, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return token.MintRequest{}, err
	}
	return token.MintRequest{
		Id:         t.Id,
		Contract:   l.Id.Contract,
		Collection: l.Id.Lot,
		Receiver:   t.Buyer,
		Royalty:    l.Metadata.Royalty,
		Budget:     budget,
		Payload:    payload,
	}, nil
}

func TicketFromPayload(payload []byte) (PurchaseTicket, error) {
	t := PurchaseTicket{}
	err := json.Unmarshal(payload, &t)
	return t, err
}

// ResolveOutcome reports what a resolution did
type ResolveOutcome struct {
	Ticket          PurchaseTicket   `json:"ticket"`
	Status          token.MintStatus `json:"status"`
	TokenId         string           `json:"tokenId,omitempty"`
	Refunded        decimal.Decimal  `json:"refunded"`
	SupplyRemaining uint32           `json:"supplyRemaining"`
	Concluded       bool             `json:"concluded"`
	Evicted         []*Proposal      `json:"evicted,omitempty"`
	// set when the mint failed, informational only
	Reason string `json:"reason,omitempty"`
}
