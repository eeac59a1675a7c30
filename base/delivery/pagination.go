package delivery

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/domain"
)

// Pagination reads `from` and `limit` query params, a missing param is 0
func Pagination(c echo.Context) (from int, limit int, err error) {
	if err := echo.QueryParamsBinder(c).
		Int("from", &from).
		Int("limit", &limit).
		BindError(); err != nil {
		return 0, 0, xerrors.Errorf("bad pagination: %v: %w", err, domain.ErrValidation)
	}
	if from < 0 || limit < 0 {
		return 0, 0, xerrors.Errorf("negative pagination: %w", domain.ErrValidation)
	}
	return from, limit, nil
}
