package usecase

import (
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain"
)

const defaultTokenTTL = 24 * time.Hour

type impl struct {
	jwtSecret []byte
	ttl       time.Duration
	timeNow   func() time.Time
}

func New(jwtSecret string, ttl time.Duration) domain.AuthUseCase {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &impl{
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		timeNow:   time.Now,
	}
}

func (im *impl) SignToken(c ctx.Ctx, account domain.AccountId) (string, error) {
	if !account.IsValid() {
		return "", domain.ErrInvalidAccountId
	}

	now := im.timeNow()
	claims := domain.JwtCustomClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   account.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(im.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString(im.jwtSecret)
	if err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return "", err
	}
	return ss, nil
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (domain.AccountId, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.Errorf("unexpected signing method %v: %w", token.Header["alg"], domain.ErrNotAuthorized)
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", xerrors.Errorf("invalid token: %v: %w", err, domain.ErrNotAuthorized)
	}

	claims, ok := token.Claims.(*domain.JwtCustomClaims)
	if !ok || !token.Valid {
		return "", xerrors.Errorf("invalid token: %w", domain.ErrNotAuthorized)
	}

	account := domain.AccountId(claims.Subject)
	if !account.IsValid() {
		return "", xerrors.Errorf("token subject %q: %w", claims.Subject, domain.ErrNotAuthorized)
	}
	return account, nil
}
