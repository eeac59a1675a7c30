package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountId is a chain account identity, e.g. "alice.near"
type AccountId string

var accountIdPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

func (a AccountId) String() string {
	return string(a)
}

func (a AccountId) IsEmpty() bool {
	return len(a) == 0
}

// IsValid follows the chain account id rules: 2 to 64 chars of lowercase alphanumerics split by `.`, `-` or `_`.
func (a AccountId) IsValid() bool {
	if len(a) < 2 || len(a) > 64 {
		return false
	}
	return accountIdPattern.MatchString(string(a))
}

// Timestamp is a block timestamp in nanoseconds since epoch
type Timestamp int64

func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d)
}

// ParseTimestamp parses a decimal nanosecond timestamp string
func ParseTimestamp(s string) (Timestamp, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 63)
	if err != nil {
		return 0, ErrMalformedTimestamp
	}
	return Timestamp(n), nil
}

// ParseAmount parses an amount in the smallest currency unit. Fractions and negatives are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d.Truncate(0), nil
}

// CheckAmount rejects negative or fractional amounts
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return ErrInvalidAmount
	}
	return nil
}

// BpsOf returns floor(amount * bps / 10000)
func BpsOf(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(bps)).Div(decimal.NewFromInt(10000)).Floor()
}

// IsMultipleOf reports whether amount is an exact multiple of step
func IsMultipleOf(amount, step decimal.Decimal) bool {
	if step.IsZero() {
		return true
	}
	return amount.Mod(step).IsZero()
}

// Table is a mongo collection name
type Table string

const (
	TableActivities Table = "activities"
)
