package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/delivery"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/listing"
	"github.com/x-xyz/fpomarket/middleware"
	authMiddleware "github.com/x-xyz/fpomarket/stores/auth/delivery/http/middleware"
)

type handler struct {
	listing listing.UseCase
}

func New(e *echo.Echo, listingUC listing.UseCase, am *authMiddleware.AuthMiddleware) {
	h := &handler{
		listing: listingUC,
	}

	g := e.Group("/listings")
	g.GET("/count", h.count)
	g.GET("/:contract/:lot", h.getListing)
	g.GET("/:contract/:lot/acceptable-price", h.acceptablePrice)

	g.POST("", h.addListing, am.Auth())
	g.DELETE("/:contract/:lot", h.conclude, am.Auth())
	g.POST("/:contract/:lot/proposals", h.placeProposal, am.Auth())
	g.DELETE("/:contract/:lot/proposals/:id", h.revokeProposal, am.Auth())
	g.POST("/:contract/:lot/proposals/:id/accept", h.acceptProposal, am.Auth())
	g.POST("/:contract/:lot/settle", h.settleProposals, am.Auth())
	g.POST("/:contract/:lot/buy", h.buyNow, am.Auth())

	a := e.Group("/accounts")
	a.GET("/:account/listings", h.listingsByOwner, middleware.IsValidAccount("account"))
}

func listingId(c echo.Context) (listing.ListingId, error) {
	id := listing.ListingId{
		Contract: domain.AccountId(c.Param("contract")),
		Lot:      c.Param("lot"),
	}
	if !id.IsValid() {
		return id, xerrors.Errorf("listing id %q: %w", id.String(), domain.ErrValidation)
	}
	return id, nil
}

func proposalId(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, xerrors.Errorf("proposal id %q: %w", c.Param("id"), domain.ErrValidation)
	}
	return id, nil
}

type depositParams struct {
	Deposit string `json:"deposit" validate:"required,amount" example:"1000"`
}

// count
//
//	@Summary		Count listings
//	@Tags			listings
//	@Produce		json
//	@Success		200	{object}	object{data=int}
//	@Router			/listings/count [get]
func (h *handler) count(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	n, err := h.listing.TotalListings(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("listing.TotalListings failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, n)
}

func (h *handler) getListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.listing.ListingById(ctx, id)
	if err != nil {
		logQueryFailure(ctx, err, id, "listing.ListingById failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, l)
}

// unknown listings are an ordinary miss for read queries
func logQueryFailure(c ctx.Ctx, err error, id listing.ListingId, msg string) {
	l := c.WithFields(log.Fields{"err": err, "id": id})
	if xerrors.Is(err, domain.ErrNotFound) {
		l.Info(msg)
		return
	}
	l.Error(msg)
}

// acceptablePrice returns the lowest admissible proposal price, null when proposals are not taken
func (h *handler) acceptablePrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	price, err := h.listing.AcceptablePrice(ctx, id)
	if err != nil {
		logQueryFailure(ctx, err, id, "listing.AcceptablePrice failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, price)
}

func (h *handler) listingsByOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	owner := domain.AccountId(c.Param("account"))

	from, limit, err := delivery.Pagination(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.listing.ListingsByOwner(ctx, owner, listing.WithPagination(from, limit))
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "owner": owner}).Error("listing.ListingsByOwner failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// addListing
//
//	@Summary		Create listing
//	@Description	The caller becomes the seller, deposit pays the storage of the listing
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		201	{object}	object{data=listing.Listing}
//	@Failure		400
//	@Failure		402
//	@Router			/listings [post]
func (h *handler) addListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := authMiddleware.Account(c)

	type params struct {
		listing.AddListingParams
		depositParams
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	deposit, err := domain.ParseAmount(p.Deposit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.listing.AddListing(ctx, seller, p.AddListingParams, deposit)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "seller": seller}).Error("listing.AddListing failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, l)
}

func (h *handler) conclude(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Account(c)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.listing.Conclude(ctx, caller, id); err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "caller": caller}).Error("listing.Conclude failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) placeProposal(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	proposer := authMiddleware.Account(c)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Price string `json:"price" validate:"required,amount" example:"1000"`
		depositParams
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	price, err := domain.ParseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	deposit, err := domain.ParseAmount(p.Deposit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	proposal, err := h.listing.PlaceProposal(ctx, proposer, id, price, deposit)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "proposer": proposer}).Error("listing.PlaceProposal failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, proposal)
}

func (h *handler) revokeProposal(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	proposer := authMiddleware.Account(c)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	pid, err := proposalId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.listing.RevokeProposal(ctx, proposer, id, pid); err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "proposalId": pid}).Error("listing.RevokeProposal failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// acceptProposal answers 202, the purchase resolves once the mint reports back
func (h *handler) acceptProposal(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := authMiddleware.Account(c)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	pid, err := proposalId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	ticket, err := h.listing.AcceptProposal(ctx, seller, id, pid)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "proposalId": pid}).Error("listing.AcceptProposal failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusAccepted, ticket)
}

func (h *handler) settleProposals(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Account(c)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	tickets, err := h.listing.SettleProposals(ctx, caller, id)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "caller": caller}).Error("listing.SettleProposals failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusAccepted, tickets)
}

func (h *handler) buyNow(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	buyer := authMiddleware.Account(c)

	id, err := listingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	p := &depositParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	deposit, err := domain.ParseAmount(p.Deposit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	ticket, err := h.listing.BuyNow(ctx, buyer, id, deposit)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "id": id, "buyer": buyer}).Error("listing.BuyNow failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusAccepted, ticket)
}
