package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/service/cart"
	"github.com/mvribeiro/suplemarket/internal/service/store"
	"github.com/mvribeiro/suplemarket/internal/transport"
)

const sessionCookie = "cartSession"

type CartHandler struct {
	Sessions *cart.Sessions
	Store    *store.Service
}

// SessionMiddleware pins an anonymous visitor to a cart via a session
// cookie, issuing one on first contact.
func (h *CartHandler) SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(sessionCookie)
		if err != nil || ck.Value == "" {
			ck = &http.Cookie{
				Name:     sessionCookie,
				Value:    uuid.NewString(),
				Path:     "/",
				Expires:  time.Now().Add(24 * time.Hour),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}
			c.SetCookie(ck)
		}
		c.Set("sessionID", ck.Value)
		return next(c)
	}
}

func (h *CartHandler) sessionCart(c echo.Context) *cart.Cart {
	id, _ := c.Get("sessionID").(string)
	return h.Sessions.Get(id)
}

func cartJSON(ct *cart.Cart) map[string]any {
	return map[string]any{
		"items":      ct.Items(),
		"total":      ct.Total(),
		"item_count": ct.ItemCount(),
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, cartJSON(h.sessionCart(c)))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_add_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("cart_add_failed", "status", 400, "reason", "product_id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is not a uuid")
	}

	prod, err := h.Store.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("cart_add_failed", "status", 404, "reason", "product not available")
			return echo.NewHTTPError(http.StatusNotFound, "product not available")
		}
		l.Error("cart_add_failed", "status", 500, "reason", "cannot load product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	ct := h.sessionCart(c)
	ct.AddItem(*prod, qty)

	l.Info("cart_add_success", "productID", productID)
	return c.JSON(http.StatusOK, cartJSON(ct))
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("cart_set_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.SetCartQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_set_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ct := h.sessionCart(c)
	ct.SetQuantity(productID, req.Quantity)

	return c.JSON(http.StatusOK, cartJSON(ct))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	ct := h.sessionCart(c)
	ct.RemoveItem(productID)

	return c.JSON(http.StatusOK, cartJSON(ct))
}

func (h *CartHandler) Clear(c echo.Context) error {
	ct := h.sessionCart(c)
	ct.Clear()
	return c.NoContent(http.StatusNoContent)
}
