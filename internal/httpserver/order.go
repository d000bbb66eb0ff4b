package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvribeiro/suplemarket/internal/events"
	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/service/cart"
	"github.com/mvribeiro/suplemarket/internal/service/order"
	"github.com/mvribeiro/suplemarket/internal/transport"
)

type OrderHandler struct {
	Sessions *cart.Sessions
	Orders   *order.Service
	Producer *events.Producer
}

// Checkout sends one order email per supplier in the visitor's cart and
// reports the outcome of every partition, including the ones that could not
// be delivered.
func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Name == "" || req.Email == "" {
		l.Warn("checkout_failed", "status", 400, "reason", "missing customer info")
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}

	sessionID, _ := c.Get("sessionID").(string)
	ct := h.Sessions.Get(sessionID)
	total := ct.Total()
	count := ct.ItemCount()

	partitions, err := h.Orders.Checkout(ctx, ct, order.CustomerInfo{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			l.Warn("checkout_failed", "status", 400, "reason", "cart is empty")
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		l.Error("checkout_failed", "status", 500, "reason", "cannot process order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot process order")
	}

	sent := 0
	for _, p := range partitions {
		if p.Sent {
			sent++
		}
	}

	publish(c, h.Producer, events.TopicOrders, map[string]any{
		"type":       "order_checked_out",
		"customer":   req.Email,
		"partitions": len(partitions),
		"sent":       sent,
		"total":      total,
		"item_count": count,
	})

	l.Info("checkout_success", "partitions", len(partitions), "sent", sent)
	return c.JSON(http.StatusOK, map[string]any{
		"partitions": partitions,
		"total":      total,
		"item_count": count,
	})
}
