package http

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/delivery"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/token"
	"github.com/x-xyz/fpomarket/middleware"
	"github.com/x-xyz/fpomarket/service/cache"
)

type handler struct {
	token token.UseCase
	// minted tokens never change, lookups are cached
	cache cache.Service
}

func New(e *echo.Echo, tokenUC token.UseCase, cacheSvc cache.Service) {
	h := &handler{
		token: tokenUC,
		cache: cacheSvc,
	}

	e.GET("/tokens/:id", h.getToken)
	e.GET("/collections/:collection/supply", h.totalSupply)

	g := e.Group("/accounts")
	g.GET("/:account/tokens", h.tokensForOwner, middleware.IsValidAccount("account"))
}

func (h *handler) getToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	raw, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	id := token.TokenId(raw)

	t := &token.Token{}
	if err := h.cache.GetByFunc(ctx, string(id), t, func() (interface{}, error) {
		return h.token.Token(ctx, id)
	}); err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id}).Error("token.Token failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, t)
}

func (h *handler) totalSupply(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	collection, err := url.PathUnescape(c.Param("collection"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	n, err := h.token.TotalSupply(ctx, collection)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": collection}).Error("token.TotalSupply failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, n)
}

func (h *handler) tokensForOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	owner := domain.AccountId(c.Param("account"))

	from, limit, err := delivery.Pagination(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if limit == 0 {
		limit = -1
	}

	res, err := h.token.TokensForOwner(ctx, owner, from, limit)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "owner": owner}).Error("token.TokensForOwner failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
