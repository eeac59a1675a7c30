package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/x-xyz/fpomarket/domain"
)

// IsValidAccount returns is an account id valid or not
func IsValidAccount(account string) bool {
	return domain.AccountId(account).IsValid()
}

// IsValidAmount accepts a non negative integer amount in decimal notation
func IsValidAmount(amount string) bool {
	_, err := domain.ParseAmount(amount)
	return err == nil
}

// New returns a validator knowing the `account` and `amount` tags
func New() *validator.Validate {
	v := validator.New()
	// only fail on programming errors, the tags are fixed
	if err := v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return IsValidAccount(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return IsValidAmount(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
