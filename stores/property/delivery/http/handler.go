package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/delivery"
	"github.com/deedchain/goapi/base/pricefmt"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/property"
	"github.com/deedchain/goapi/middleware"
	authMiddleware "github.com/deedchain/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	property property.Usecase
}

// New registers property endpoints
func New(e *echo.Echo, pu property.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{
		property: pu,
	}
	g := e.Group("/property")
	g.GET("/:gps", h.getProperty)
	g.POST("", h.register, authMiddleware.Auth())
	g.PATCH("/:gps/price", h.updatePrice, authMiddleware.Auth())
	g.POST("/:gps/verify", h.verify, authMiddleware.Auth(), authMiddleware.IsArbiter())

	e.GET("/properties", h.listProperties, middleware.CacheHttp(30*time.Second))
}

func (h *handler) getProperty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	gps := domain.Location(c.Param("gps"))

	p, err := h.property.Get(ctx, gps)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, p)
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type payload struct {
		Location string `json:"location"`
		Gps      string `json:"gps"`
		DocHash  string `json:"docHash"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if len(p.Gps) == 0 || len(p.DocHash) == 0 {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.property.Register(ctx, address, p.Location, domain.Location(p.Gps), domain.DocumentHash(p.DocHash))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) verify(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	gps := domain.Location(c.Param("gps"))

	if err := h.property.Verify(ctx, address, gps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) updatePrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	gps := domain.Location(c.Param("gps"))

	type payload struct {
		Price string `json:"price"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := pricefmt.FromDisplayString(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.property.UpdatePrice(ctx, address, gps, price); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) listProperties(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Owner    *string `query:"owner"`
		Verified *bool   `query:"verified"`
		Offset   int     `query:"offset"`
		Limit    int     `query:"limit" validate:"max=100"`
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

	opts := []property.FindPropertyOptions{
		property.PropertyWithPagination(p.Offset, p.Limit),
	}
	if p.Owner != nil {
		opts = append(opts, property.PropertyWithOwner(domain.Address(*p.Owner)))
	}
	if p.Verified != nil {
		opts = append(opts, property.PropertyWithVerified(*p.Verified))
	}

	res, err := h.property.Find(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
