package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/delivery"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/middleware"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	cacheTTL     = 5 * time.Second
)

type handler struct {
	activity activity.UseCase
}

// New needs middleware.SetupCache to be done
func New(e *echo.Echo, activityUC activity.UseCase) {
	h := &handler{
		activity: activityUC,
	}

	g := e.Group("/accounts")
	g.GET("/:account/activities", h.getActivities, middleware.IsValidAccount("account"), middleware.CacheHttp(cacheTTL))
}

type activitiesResult struct {
	Items []activity.Activity `json:"items"`
	Count int                 `json:"count"`
}

func (h *handler) getActivities(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	account := domain.AccountId(c.Param("account"))

	from, limit, err := delivery.Pagination(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if limit == 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	items, cnt, err := h.activity.ActivitiesByAccount(ctx, account, from, limit)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "account": account}).Error("activity.ActivitiesByAccount failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, activitiesResult{Items: items, Count: cnt})
}
