package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/delivery"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/escrow"
	authMiddleware "github.com/deedchain/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	escrow escrow.Usecase
}

// New registers escrow settlement endpoints
func New(e *echo.Echo, eu escrow.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{
		escrow: eu,
	}
	g := e.Group("/transaction")
	g.GET("/:gps", h.getTransaction)
	g.POST("/:gps/confirm", h.confirm, authMiddleware.Auth())
	g.POST("/:gps/finalize", h.finalize, authMiddleware.Auth(), authMiddleware.IsArbiter())
}

func (h *handler) getTransaction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	gps := domain.Location(c.Param("gps"))

	t, err := h.escrow.Get(ctx, gps)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, t)
}

func (h *handler) confirm(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	gps := domain.Location(c.Param("gps"))

	if err := h.escrow.Confirm(ctx, address, gps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) finalize(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	gps := domain.Location(c.Param("gps"))

	type payload struct {
		DocHash string `json:"docHash"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if len(p.DocHash) == 0 {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.escrow.AdminFinalize(ctx, address, gps, domain.DocumentHash(p.DocHash)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
