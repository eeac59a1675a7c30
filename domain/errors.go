package domain

import (
	"errors"

	"golang.org/x/xerrors"
)

// error categories, every error returned by a call wraps exactly one of them
var (
	// ErrValidation is returned for bad call arguments, checked before any state change
	ErrValidation = errors.New("validation failed")
	// ErrNotAuthorized is returned when the caller may not perform the call
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("not found")
	// ErrInsufficientDeposit is returned when attached payment or storage balance is short
	ErrInsufficientDeposit = errors.New("insufficient deposit")
	// ErrState is returned when the call is invalid for the current listing status
	ErrState = errors.New("invalid state")
	// ErrRemoteCallFailure marks a remote call that did not complete
	ErrRemoteCallFailure = errors.New("remote call failed")
	// ErrFatalInconsistency marks a broken invariant, the whole call is discarded
	ErrFatalInconsistency = errors.New("fatal inconsistency")
)

var (
	ErrBadSupply            = xerrors.Errorf("supply out of range: %w", ErrValidation)
	ErrPriceTooLow          = xerrors.Errorf("price too low: %w", ErrValidation)
	ErrPriceTooHigh         = xerrors.Errorf("price too high: %w", ErrValidation)
	ErrPriceNotStepMultiple = xerrors.Errorf("price is not a multiple of the price step: %w", ErrValidation)
	ErrBadDuration          = xerrors.Errorf("bad duration: %w", ErrValidation)
	ErrMalformedTimestamp   = xerrors.Errorf("malformed timestamp: %w", ErrValidation)
	ErrDateInPast           = xerrors.Errorf("date in the past: %w", ErrValidation)
	ErrInvalidAmount        = xerrors.Errorf("invalid amount: %w", ErrValidation)
	ErrInvalidAccountId     = xerrors.Errorf("invalid account id: %w", ErrValidation)
	ErrInvalidRoyalty       = xerrors.Errorf("invalid royalty: %w", ErrValidation)
	ErrProposalPriceTooLow  = xerrors.Errorf("proposal price below acceptable floor: %w", ErrValidation)
	ErrDepositMismatch      = xerrors.Errorf("deposit must equal the proposal price: %w", ErrValidation)
	ErrListingExists        = xerrors.Errorf("listing already exists: %w", ErrValidation)

	ErrNotSeller   = xerrors.Errorf("caller is not the seller: %w", ErrNotAuthorized)
	ErrNotProposer = xerrors.Errorf("caller is not the proposer: %w", ErrNotAuthorized)
	ErrNotOperator = xerrors.Errorf("caller is not the operator: %w", ErrNotAuthorized)
	ErrNotMinter   = xerrors.Errorf("caller may not mint: %w", ErrNotAuthorized)

	ErrListingNotFound  = xerrors.Errorf("listing: %w", ErrNotFound)
	ErrProposalNotFound = xerrors.Errorf("proposal: %w", ErrNotFound)
	ErrTokenNotFound    = xerrors.Errorf("token: %w", ErrNotFound)

	ErrBalanceTooLow        = xerrors.Errorf("balance too low: %w", ErrInsufficientDeposit)
	ErrStorageBalanceTooLow = xerrors.Errorf("storage balance too low: %w", ErrInsufficientDeposit)
	ErrDepositTooLow        = xerrors.Errorf("attached deposit too low: %w", ErrInsufficientDeposit)

	ErrListingNotRunning = xerrors.Errorf("listing is not running: %w", ErrState)
	ErrProposalsDisabled = xerrors.Errorf("proposals are disabled: %w", ErrState)
	ErrSoldOut           = xerrors.Errorf("supply exhausted: %w", ErrState)
	ErrSellerCannotBuy   = xerrors.Errorf("seller cannot buy own listing: %w", ErrState)
	ErrTooEarly          = xerrors.Errorf("listing has not ended yet: %w", ErrState)
	ErrPurchaseInFlight  = xerrors.Errorf("purchases are still resolving: %w", ErrState)
	ErrProposalSettling  = xerrors.Errorf("proposal is being settled: %w", ErrState)

	ErrMintFailed = xerrors.Errorf("mint did not complete: %w", ErrRemoteCallFailure)

	ErrUpstreamPending = xerrors.Errorf("upstream result still pending: %w", ErrFatalInconsistency)
	ErrRecordMissing   = xerrors.Errorf("expected record missing: %w", ErrFatalInconsistency)
)
