package listing

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/domain"
)

const (
	DefaultSupplyMax = 100
	DefaultPageSize  = 10
)

// Config holds the marketplace constants
type Config struct {
	SupplyMax   uint32
	PriceMin    decimal.Decimal
	PriceStep   decimal.Decimal
	MinDuration time.Duration
	MaxDuration time.Duration
	// voluntary revoke penalty in basis points
	PenaltyBps int64
	// cost of one byte of contract storage
	StorageByteCost decimal.Decimal

	OperatorAccount domain.AccountId
	ProfitAccount   domain.AccountId
	ContractAccount domain.AccountId

	// compute budget handed to every mint call
	MintBudget time.Duration
	PageSize   int
}

func (c Config) Validate() error {
	if c.SupplyMax == 0 {
		return xerrors.Errorf("supplyMax must be positive: %w", domain.ErrValidation)
	}
	if c.PriceMin.IsNegative() || !c.PriceStep.IsPositive() {
		return xerrors.Errorf("priceMin/priceStep out of range: %w", domain.ErrValidation)
	}
	if c.MinDuration <= 0 || c.MaxDuration < c.MinDuration {
		return xerrors.Errorf("duration bounds out of range: %w", domain.ErrValidation)
	}
	if c.PenaltyBps < 0 || c.PenaltyBps > 10000 {
		return xerrors.Errorf("penaltyBps out of range: %w", domain.ErrValidation)
	}
	if c.StorageByteCost.IsNegative() {
		return xerrors.Errorf("storageByteCost negative: %w", domain.ErrValidation)
	}
	for _, a := range []domain.AccountId{c.OperatorAccount, c.ProfitAccount, c.ContractAccount} {
		if !a.IsValid() {
			return xerrors.Errorf("account %q: %w", a, domain.ErrInvalidAccountId)
		}
	}
	return nil
}

// CheckPrice applies the floor and step rule shared by buy now and proposal prices
func (c Config) CheckPrice(price decimal.Decimal) error {
	if price.LessThan(c.PriceMin) {
		return domain.ErrPriceTooLow
	}
	if !domain.IsMultipleOf(price, c.PriceStep) {
		return domain.ErrPriceNotStepMultiple
	}
	return nil
}

func (c Config) PageLimit(limit *int) int {
	if limit == nil || *limit == 0 {
		if c.PageSize > 0 {
			return c.PageSize
		}
		return DefaultPageSize
	}
	return *limit
}
