package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/fpomarket/base/ctx"
	hcdomain "github.com/x-xyz/fpomarket/domain/healthcheck"
)

type healthCheckHandler struct {
	healthCheck hcdomain.HealthCheckUsecase
}

// New will initialize the healthcheck/
func New(e *echo.Echo, us hcdomain.HealthCheckUsecase) {
	handler := &healthCheckHandler{
		healthCheck: us,
	}
	g := e.Group("/health")
	g.GET("", handler.check)
}

func (h *healthCheckHandler) check(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	failed := h.healthCheck.Check(context)
	if len(failed) > 0 {
		res := map[string]string{}
		for component, err := range failed {
			res[component] = err.Error()
		}
		return c.JSON(http.StatusServiceUnavailable, res)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"healthy": "ok",
	})
}
