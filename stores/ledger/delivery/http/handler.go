package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/delivery"
	"github.com/deedchain/goapi/base/pricefmt"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/ledger"
	"github.com/deedchain/goapi/middleware"
	authMiddleware "github.com/deedchain/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	ledger ledger.Usecase
}

// New registers pull-payment ledger endpoints
func New(e *echo.Echo, lu ledger.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{
		ledger: lu,
	}
	g := e.Group("/balance")
	g.GET("/:account", h.getBalance, middleware.IsValidAddress("account"))
	g.POST("/withdraw", h.withdraw, authMiddleware.Auth())
}

type balanceResp struct {
	Account domain.Address `json:"account"`
	Pending domain.Amount  `json:"pending"`
	Display string         `json:"display"`
}

func (h *handler) getBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	account := domain.Address(c.Param("account"))

	pending, err := h.ledger.BalanceOf(ctx, account)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResp{
		Account: account.ToLower(),
		Pending: pending,
		Display: pricefmt.ToDisplayString(pending),
	})
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	amount, err := h.ledger.Withdraw(ctx, address)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResp{
		Account: address.ToLower(),
		Pending: amount,
		Display: pricefmt.ToDisplayString(amount),
	})
}
