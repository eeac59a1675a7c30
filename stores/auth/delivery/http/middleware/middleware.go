package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/delivery"
	"github.com/x-xyz/fpomarket/domain"
)

// AccountKey is the echo context key holding the authenticated domain.AccountId
const AccountKey = "account"

type AuthMiddleware struct {
	auth     domain.AuthUseCase
	operator domain.AccountId
}

func New(auth domain.AuthUseCase, operator domain.AccountId) *AuthMiddleware {
	return &AuthMiddleware{
		auth:     auth,
		operator: operator,
	}
}

// Auth requires a bearer token
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: m.validateAuthToken,
		ErrorHandler: func(err error, c echo.Context) error {
			return delivery.MakeJsonResp(c, http.StatusUnauthorized, "invalid or missing token")
		},
	})
}

// IsOperator only lets the operator account through, use after Auth
func (m *AuthMiddleware) IsOperator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, _ := c.Get(AccountKey).(domain.AccountId)
			if account != m.operator {
				return delivery.MakeJsonResp(c, http.StatusForbidden, "require operator privilege")
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	ctx := c.Get("ctx").(ctx.Ctx)
	account, err := m.auth.ParseToken(ctx, key)
	if err != nil {
		ctx.WithField("err", err).Warn("auth.ParseToken failed")
		return false, err
	}
	c.Set(AccountKey, account)
	return true, nil
}

// Account returns the authenticated caller
func Account(c echo.Context) domain.AccountId {
	account, _ := c.Get(AccountKey).(domain.AccountId)
	return account
}
