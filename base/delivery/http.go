package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/service/query"
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

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		if s := errStatus(err); s != 0 {
			status = s
		}
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

// errStatus maps domain errors to http statuses, zero means keep the
// status the handler chose
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound) || errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrAuctionAlreadyActive),
		errors.Is(err, domain.ErrAuctionLocked),
		errors.Is(err, domain.ErrHasBids),
		errors.Is(err, domain.ErrNotDue),
		errors.Is(err, domain.ErrNoActiveTransaction),
		errors.Is(err, domain.ErrNotBothConfirmed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBadParamInput),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientFee),
		errors.Is(err, domain.ErrNotVerified),
		errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrNothingToWithdraw):
		return http.StatusBadRequest
	}
	return 0
}
