package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/delivery"
	"github.com/x-xyz/fpomarket/domain"
	authMiddleware "github.com/x-xyz/fpomarket/stores/auth/delivery/http/middleware"
)

type authHandler struct {
	auth domain.AuthUseCase
}

func New(e *echo.Echo, auth domain.AuthUseCase, am *authMiddleware.AuthMiddleware) {
	handler := &authHandler{
		auth: auth,
	}
	g := e.Group("/auth")
	g.POST("/token", handler.token, am.Auth(), am.IsOperator())
}

// token
//
//	@Summary		Issue access token
//	@Description	Sign a bearer token for the given account, operator only
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.token.params	true	"params"
//	@Success		201		{object}	object{data=string}
//	@Failure		400
//	@Failure		403
//	@Router			/auth/token [post]
func (h *authHandler) token(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Account domain.AccountId `json:"account" validate:"required,account" example:"alice.near"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	tkn, err := h.auth.SignToken(ctx, p.Account)
	if err != nil {
		ctx.WithField("err", err).Error("auth.SignToken failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
}
