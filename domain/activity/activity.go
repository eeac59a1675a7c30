package activity

import (
	"time"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
)

type ActivityType string

const (
	ActivityTypeListingCreated    ActivityType = "listingCreated"
	ActivityTypeProposalPlaced    ActivityType = "proposalPlaced"
	ActivityTypeProposalEvicted   ActivityType = "proposalEvicted"
	ActivityTypeProposalRevoked   ActivityType = "proposalRevoked"
	ActivityTypeProposalAccepted  ActivityType = "proposalAccepted"
	ActivityTypePurchaseInitiated ActivityType = "purchaseInitiated"
	ActivityTypePurchaseSucceeded ActivityType = "purchaseSucceeded"
	ActivityTypePurchaseFailed    ActivityType = "purchaseFailed"
	ActivityTypeListingConcluded  ActivityType = "listingConcluded"
)

type Activity struct {
	Type    ActivityType     `json:"type" bson:"type"`
	Listing string           `json:"listing" bson:"listing"`
	Account domain.AccountId `json:"account" bson:"account"`
	// counterparty, e.g. the seller of a purchase
	To         domain.AccountId `json:"to,omitempty" bson:"to,omitempty"`
	ProposalId *uint64          `json:"proposalId,omitempty" bson:"proposalId,omitempty"`
	TicketId   string           `json:"ticketId,omitempty" bson:"ticketId,omitempty"`
	TokenId    string           `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	// decimal string in the smallest unit
	Price string    `json:"price,omitempty" bson:"price,omitempty"`
	Time  time.Time `json:"time" bson:"time"`
}

type findActivityOptions struct {
	Offset  *int
	Limit   *int
	Account *domain.AccountId
	Listing *string
	Types   []ActivityType
}

type FindActivityOptions func(*findActivityOptions) error

func GetFindActivityOptions(opts ...FindActivityOptions) (*findActivityOptions, error) {
	res := &findActivityOptions{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func WithPagination(offset, limit int) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

func WithAccount(account domain.AccountId) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Account = &account
		return nil
	}
}

func WithListing(listing string) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Listing = &listing
		return nil
	}
}

func WithTypes(types ...ActivityType) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Types = types
		return nil
	}
}

type Repo interface {
	Insert(c ctx.Ctx, a *Activity) error
	FindAll(c ctx.Ctx, opts ...FindActivityOptions) ([]Activity, error)
	Count(c ctx.Ctx, opts ...FindActivityOptions) (int, error)
}

// Notifier announces completed sales to an outer channel
type Notifier interface {
	NotifySale(c ctx.Ctx, a *Activity) error
}

type UseCase interface {
	// Record stores a, failures are logged and swallowed
	Record(c ctx.Ctx, a *Activity)
	ActivitiesByAccount(c ctx.Ctx, account domain.AccountId, offset, limit int) ([]Activity, int, error)
}
