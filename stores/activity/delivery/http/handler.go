package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/delivery"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/activity"
	"github.com/deedchain/goapi/middleware"
)

type handler struct {
	activity activity.Usecase
}

// New registers activity endpoints
func New(e *echo.Echo, au activity.Usecase) {
	h := &handler{
		activity: au,
	}
	e.GET("/activities", h.listActivities, middleware.CacheHttp(15*time.Second))
}

func (h *handler) listActivities(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Gps     *string         `query:"gps"`
		Account *string         `query:"account"`
		Types   []activity.Type `query:"type"`
		Offset  int             `query:"offset"`
		Limit   int             `query:"limit" validate:"max=100"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.Limit == 0 {
		p.Limit = 20
	}

	opts := []activity.FindActivityOptions{
		activity.ActivityWithPagination(p.Offset, p.Limit),
	}
	if p.Gps != nil {
		opts = append(opts, activity.ActivityWithGps(domain.Location(*p.Gps)))
	}
	if p.Account != nil {
		opts = append(opts, activity.ActivityWithAccount(domain.Address(*p.Account)))
	}
	if len(p.Types) > 0 {
		opts = append(opts, activity.ActivityWithTypes(p.Types...))
	}

	res, err := h.activity.FindActivities(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
