package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/fpomarket/base/ctx"
)

// JwtCustomClaims carries the caller account in the standard subject claim
type JwtCustomClaims struct {
	jwt.StandardClaims
}

type AuthUseCase interface {
	SignToken(c ctx.Ctx, account AccountId) (string, error)
	ParseToken(c ctx.Ctx, token string) (AccountId, error)
}
