package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/x-xyz/fpomarket/base/ctx"
	hcdomain "github.com/x-xyz/fpomarket/domain/healthcheck"
)

type fakeUsecase map[string]error

func (f fakeUsecase) Check(ctx.Ctx) map[string]error { return f }

func serve(us hcdomain.HealthCheckUsecase) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("ctx", ctx.Background())
			return next(c)
		}
	})
	New(e, us)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestCheck(t *testing.T) {
	rec := serve(fakeUsecase{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"healthy":"ok"}`, rec.Body.String())

	rec = serve(fakeUsecase{hcdomain.ComponentCache: errors.New("timeout")})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"redis":"timeout"}`, rec.Body.String())
}
