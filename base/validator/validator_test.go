package validator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func (s *ValidatorTestSuite) TestIsValidAccount() {
	tests := []struct {
		desc       string
		account    string
		expIsValid bool
	}{
		{
			desc:       "too short",
			account:    "a",
			expIsValid: false,
		},
		{
			desc:       "upper case",
			account:    "Alice.near",
			expIsValid: false,
		},
		{
			desc:       "dangling separator",
			account:    "alice-.near",
			expIsValid: false,
		},
		{
			desc:       "valid account",
			account:    "alice_1.market-x.near",
			expIsValid: true,
		},
	}
	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidAccount(t.account), t.desc)
	}
}

func (s *ValidatorTestSuite) TestStructTags() {
	type params struct {
		Account string `validate:"required,account"`
		Amount  string `validate:"required,amount"`
	}

	v := NewCustomValidator(New())
	s.NoError(v.Validate(&params{Account: "bob.near", Amount: "1000"}))
	s.Error(v.Validate(&params{Account: "BOB", Amount: "1000"}))
	s.Error(v.Validate(&params{Account: "bob.near", Amount: "-1"}))
	s.Error(v.Validate(&params{Account: "bob.near", Amount: "1.5"}))
	s.Error(v.Validate(&params{Account: "bob.near"}))
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
