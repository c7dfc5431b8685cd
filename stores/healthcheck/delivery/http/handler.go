package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain/healthcheck"
)

type handler struct {
	healthCheck healthcheck.Usecase
}

// New registers the health endpoint
func New(e *echo.Echo, us healthcheck.Usecase) {
	h := &handler{
		healthCheck: us,
	}
	g := e.Group("/health")
	g.GET("", h.check)
}

func (h *handler) check(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	if err := h.healthCheck.Check(context); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"healthy": "ok",
	})
}
