package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/delivery"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/ledger"
	"github.com/x-xyz/fpomarket/middleware"
	authMiddleware "github.com/x-xyz/fpomarket/stores/auth/delivery/http/middleware"
)

type handler struct {
	ledger ledger.UseCase
}

type amountParams struct {
	Amount string `json:"amount" validate:"required,amount" example:"1000"`
}

func New(e *echo.Echo, ledgerUC ledger.UseCase, am *authMiddleware.AuthMiddleware) {
	h := &handler{
		ledger: ledgerUC,
	}

	g := e.Group("/accounts")
	g.GET("/:account/balance", h.balance, middleware.IsValidAccount("account"))
	g.GET("/:account/storage", h.storageBalance, middleware.IsValidAccount("account"))
	g.POST("/:account/credit", h.credit, middleware.IsValidAccount("account"), am.Auth(), am.IsOperator())

	// self
	s := e.Group("/storage", am.Auth())
	s.POST("/deposit", h.storageDeposit)
	s.POST("/withdraw", h.storageWithdraw)
}

func bindAmount(c echo.Context) (decimal.Decimal, error) {
	p := &amountParams{}
	if err := c.Bind(p); err != nil {
		return decimal.Zero, err
	}
	if err := c.Validate(p); err != nil {
		return decimal.Zero, err
	}
	return domain.ParseAmount(p.Amount)
}

func (h *handler) balance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	account := domain.AccountId(c.Param("account"))

	bal, err := h.ledger.BalanceOf(ctx, account)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "account": account}).Error("ledger.BalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, bal)
}

func (h *handler) storageBalance(c echo.Context) error {
	return h.storageBalanceOf(c, domain.AccountId(c.Param("account")))
}

// credit
//
//	@Summary		Fund account
//	@Description	Mint currency into an account, operator only
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	object{data=string}
//	@Failure		400
//	@Failure		403
//	@Router			/accounts/{account}/credit [post]
func (h *handler) credit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	operator := authMiddleware.Account(c)
	account := domain.AccountId(c.Param("account"))

	amount, err := bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.ledger.Credit(ctx, operator, account, amount); err != nil {
		ctx.WithFields(log.Fields{"err": err, "account": account}).Error("ledger.Credit failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return h.balance(c)
}

func (h *handler) storageDeposit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	account := authMiddleware.Account(c)

	amount, err := bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.ledger.StorageDeposit(ctx, account, amount); err != nil {
		ctx.WithFields(log.Fields{"err": err, "account": account}).Error("ledger.StorageDeposit failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return h.storageBalanceOf(c, account)
}

func (h *handler) storageWithdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	account := authMiddleware.Account(c)

	amount, err := bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.ledger.StorageWithdraw(ctx, account, amount); err != nil {
		ctx.WithFields(log.Fields{"err": err, "account": account}).Error("ledger.StorageWithdraw failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return h.storageBalanceOf(c, account)
}

func (h *handler) storageBalanceOf(c echo.Context, account domain.AccountId) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	bal, err := h.ledger.StorageBalanceOf(ctx, account)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "account": account}).Error("ledger.StorageBalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, bal)
}
