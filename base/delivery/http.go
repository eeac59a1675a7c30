package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrNotAuthorized, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{query.ErrNotFound, http.StatusNotFound},
	{domain.ErrInsufficientDeposit, http.StatusPaymentRequired},
	{domain.ErrState, http.StatusConflict},
	{domain.ErrRemoteCallFailure, http.StatusBadGateway},
	{domain.ErrFatalInconsistency, http.StatusInternalServerError},
}

// StatusOf maps an error category to its http status, fallback is returned for unknown errors
func StatusOf(err error, fallback int) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
