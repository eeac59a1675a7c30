package listing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/token"
)

const idSeparator = "||"

// ListingId identifies one lot of a contract. Immutable.
type ListingId struct {
	Contract domain.AccountId `json:"contract"`
	Lot      string           `json:"lot"`
}

func (id ListingId) String() string {
	return id.Contract.String() + idSeparator + id.Lot
}

func (id ListingId) IsValid() bool {
	return id.Contract.IsValid() && len(id.Lot) > 0 && len(id.Lot) <= 64 && !strings.Contains(id.Lot, idSeparator)
}

func ParseListingId(s string) (ListingId, error) {
	parts := strings.SplitN(s, idSeparator, 2)
	if len(parts) != 2 {
		return ListingId{}, xerrors.Errorf("malformed listing id %q: %w", s, domain.ErrValidation)
	}
	id := ListingId{Contract: domain.AccountId(parts[0]), Lot: parts[1]}
	if !id.IsValid() {
		return ListingId{}, xerrors.Errorf("malformed listing id %q: %w", s, domain.ErrValidation)
	}
	return id, nil
}

type Status string

const (
	StatusUnstarted Status = "unstarted"
	StatusRunning   Status = "running"
	StatusEnded     Status = "ended"
)

// Metadata of the items minted from a listing
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Reference   string `json:"reference,omitempty"`
	// royalty receivers in basis points, forwarded to mint
	Royalty map[domain.AccountId]uint32 `json:"royalty,omitempty"`
}

type Proposal struct {
	Id        uint64           `json:"id"`
	Proposer  domain.AccountId `json:"proposer"`
	Price     decimal.Decimal  `json:"price"`
	CreatedAt domain.Timestamp `json:"createdAt"`
	// accepted by the seller, waiting for the mint result
	Settling bool `json:"settling,omitempty"`
}

// Better reports whether p ranks ahead of o: higher price first, then earlier id.
func (p *Proposal) Better(o *Proposal) bool {
	if c := p.Price.Cmp(o.Price); c != 0 {
		return c > 0
	}
	return p.Id < o.Id
}

type Listing struct {
	Id               ListingId         `json:"id"`
	Seller           domain.AccountId  `json:"seller"`
	Metadata         Metadata          `json:"metadata"`
	SupplyTotal      uint32            `json:"supplyTotal"`
	SupplyRemaining  uint32            `json:"supplyRemaining"`
	BuyNowPrice      decimal.Decimal   `json:"buyNowPrice"`
	MinProposalPrice *decimal.Decimal  `json:"minProposalPrice,omitempty"`
	StartAt          *domain.Timestamp `json:"startAt,omitempty"`
	EndAt            *domain.Timestamp `json:"endAt,omitempty"`
	Status           Status            `json:"status"`
	NextProposalId   uint64            `json:"nextProposalId"`
	CreatedAt        domain.Timestamp  `json:"createdAt"`

	// admitted proposals, best first. Loaded from their own partition.
	Proposals []*Proposal `json:"proposals,omitempty"`
	// accepted proposals with a mint in flight
	Settling []*Proposal `json:"settling,omitempty"`
}

func (l *Listing) ProposalsEnabled() bool {
	return l.MinProposalPrice != nil
}

// HasEnded reports whether the end date has passed. Listings without end never end by time.
func (l *Listing) HasEnded(now domain.Timestamp) bool {
	return l.EndAt != nil && *l.EndAt <= now
}

// UpdateStatus refreshes the derived status. Ended is absorbing.
func (l *Listing) UpdateStatus(now domain.Timestamp) Status {
	switch {
	case l.Status == StatusEnded:
	case l.SupplyRemaining == 0:
		l.Status = StatusEnded
	case l.HasEnded(now):
		l.Status = StatusEnded
	case l.Status == StatusRunning:
	case l.StartAt == nil || *l.StartAt <= now:
		l.Status = StatusRunning
	default:
		l.Status = StatusUnstarted
	}
	return l.Status
}

// Capacity is the number of proposals that may stand, supply not yet claimed by settling proposals.
func (l *Listing) Capacity() int {
	c := int(l.SupplyRemaining) - len(l.Settling)
	if c < 0 {
		return 0
	}
	return c
}

// AcceptablePrice returns the lowest price a new proposal may offer,
// false when the listing takes no proposals right now.
func (l *Listing) AcceptablePrice(step decimal.Decimal) (decimal.Decimal, bool) {
	if !l.ProposalsEnabled() || l.Status != StatusRunning || l.Capacity() == 0 {
		return decimal.Zero, false
	}
	if len(l.Proposals) < l.Capacity() {
		return *l.MinProposalPrice, true
	}
	return l.Proposals[len(l.Proposals)-1].Price.Add(step), true
}

// Resort restores the ranking, worst proposal last
func (l *Listing) Resort() {
	sort.SliceStable(l.Proposals, func(i, j int) bool {
		return l.Proposals[i].Better(l.Proposals[j])
	})
}

// InsertProposal places p at its rank
func (l *Listing) InsertProposal(p *Proposal) {
	i := sort.Search(len(l.Proposals), func(i int) bool {
		return p.Better(l.Proposals[i])
	})
	l.Proposals = append(l.Proposals, nil)
	copy(l.Proposals[i+1:], l.Proposals[i:])
	l.Proposals[i] = p
}

// Evict pops the worst proposals until the ranking fits the capacity
func (l *Listing) Evict() []*Proposal {
	evicted := []*Proposal{}
	for len(l.Proposals) > l.Capacity() {
		last := len(l.Proposals) - 1
		evicted = append(evicted, l.Proposals[last])
		l.Proposals = l.Proposals[:last]
	}
	return evicted
}

// TakeProposal removes the standing proposal id from the ranking
func (l *Listing) TakeProposal(id uint64) (*Proposal, bool) {
	for i, p := range l.Proposals {
		if p.Id == id {
			l.Proposals = append(l.Proposals[:i], l.Proposals[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// TakeSettling removes the settling proposal id
func (l *Listing) TakeSettling(id uint64) (*Proposal, bool) {
	for i, p := range l.Settling {
		if p.Id == id {
			l.Settling = append(l.Settling[:i], l.Settling[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

func (l *Listing) FindProposal(id uint64) *Proposal {
	for _, p := range l.Proposals {
		if p.Id == id {
			return p
		}
	}
	for _, p := range l.Settling {
		if p.Id == id {
			return p
		}
	}
	return nil
}

type FindAllOptions struct {
	Offset *int
	Limit  *int
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithPagination(offset int, limit int) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return xerrors.Errorf("negative pagination: %w", domain.ErrValidation)
		}
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

// AddListingParams carries the raw call arguments, parsed inside the call
type AddListingParams struct {
	Contract         domain.AccountId `json:"contract"`
	Lot              string           `json:"lot"`
	Metadata         Metadata         `json:"metadata"`
	SupplyTotal      uint32           `json:"supplyTotal"`
	BuyNowPrice      string           `json:"buyNowPrice"`
	MinProposalPrice *string          `json:"minProposalPrice,omitempty"`
	// nanosecond timestamps
	StartAt *string `json:"startAt,omitempty"`
	EndAt   *string `json:"endAt,omitempty"`
}

type Repo interface {
	FindOne(c ctx.Ctx, id ListingId) (*Listing, error)
	Insert(c ctx.Ctx, l *Listing) error
	Update(c ctx.Ctx, l *Listing) error
	Remove(c ctx.Ctx, id ListingId) error
	PutProposal(c ctx.Ctx, id ListingId, p *Proposal) error
	RemoveProposal(c ctx.Ctx, id ListingId, proposalId uint64) error

	AddToOwnerIndex(c ctx.Ctx, owner domain.AccountId, id ListingId) error
	RemoveFromOwnerIndex(c ctx.Ctx, owner domain.AccountId, id ListingId) error
	FindAllByOwner(c ctx.Ctx, owner domain.AccountId, opts ...FindAllOptionsFunc) ([]*Listing, error)
	CountByOwner(c ctx.Ctx, owner domain.AccountId) (int, error)
	Count(c ctx.Ctx) (int, error)
}

type UseCase interface {
	AddListing(c ctx.Ctx, seller domain.AccountId, params AddListingParams, deposit decimal.Decimal) (*Listing, error)
	Conclude(c ctx.Ctx, caller domain.AccountId, id ListingId) error

	PlaceProposal(c ctx.Ctx, proposer domain.AccountId, id ListingId, price decimal.Decimal, deposit decimal.Decimal) (*Proposal, error)
	RevokeProposal(c ctx.Ctx, proposer domain.AccountId, id ListingId, proposalId uint64) error
	AcceptProposal(c ctx.Ctx, seller domain.AccountId, id ListingId, proposalId uint64) (*PurchaseTicket, error)
	SettleProposals(c ctx.Ctx, caller domain.AccountId, id ListingId) ([]*PurchaseTicket, error)

	BuyNow(c ctx.Ctx, buyer domain.AccountId, id ListingId, deposit decimal.Decimal) (*PurchaseTicket, error)
	ResolvePurchase(c ctx.Ctx, ticket PurchaseTicket, result token.MintResult) (*ResolveOutcome, error)

	TotalListings(c ctx.Ctx) (int, error)
	AcceptablePrice(c ctx.Ctx, id ListingId) (*decimal.Decimal, error)
	ListingsByOwner(c ctx.Ctx, owner domain.AccountId, opts ...FindAllOptionsFunc) ([]*Listing, error)
	ListingById(c ctx.Ctx, id ListingId) (*Listing, error)
}
