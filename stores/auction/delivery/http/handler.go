package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/delivery"
	"github.com/deedchain/goapi/base/pricefmt"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/auction"
	authMiddleware "github.com/deedchain/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	auction auction.Usecase
}

// New registers auction endpoints
func New(e *echo.Echo, au auction.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{
		auction: au,
	}
	g := e.Group("/auction")
	g.GET("/:gps", h.getAuction)
	g.POST("", h.open, authMiddleware.Auth())
	g.POST("/:gps/bid", h.bid, authMiddleware.Auth())
	g.DELETE("/:gps", h.cancel, authMiddleware.Auth())
}

func (h *handler) getAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	gps := domain.Location(c.Param("gps"))

	a, err := h.auction.Get(ctx, gps)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *handler) open(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type payload struct {
		Gps             string `json:"gps"`
		StartingPrice   string `json:"startingPrice"`
		DurationSeconds int64  `json:"durationSeconds" validate:"gt=0"`
		Paid            string `json:"paid"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	startingPrice, err := pricefmt.FromDisplayString(p.StartingPrice)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	paid, err := pricefmt.FromDisplayString(p.Paid)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	a, err := h.auction.Open(ctx, address, domain.Location(p.Gps), startingPrice, time.Duration(p.DurationSeconds)*time.Second, paid)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, a)
}

func (h *handler) bid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	gps := domain.Location(c.Param("gps"))

	type payload struct {
		Amount string `json:"amount"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := pricefmt.FromDisplayString(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.Bid(ctx, address, gps, amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	gps := domain.Location(c.Param("gps"))

	if err := h.auction.Cancel(ctx, address, gps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
