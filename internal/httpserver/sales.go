package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mvribeiro/suplemarket/internal/events"
	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/service/sales"
	"github.com/mvribeiro/suplemarket/internal/transport"
)

type SalesHandler struct {
	Svc      *sales.Service
	Producer *events.Producer
}

func (h *SalesHandler) RegisterSale(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.register_sale")

	ownerID, err := currentUserID(c)
	if err != nil {
		l.Warn("register_sale_failed", "status", 401, "reason", "no operator session")
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req transport.RegisterSaleRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_sale_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("register_sale_failed", "status", 400, "reason", "product_id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is not a uuid")
	}

	sale, err := h.Svc.RegisterSale(ctx, ownerID, productID, req.Quantity, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrProductNotFound):
			l.Warn("register_sale_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.Is(err, sales.ErrInsufficientStock):
			l.Warn("register_sale_failed", "status", 409, "reason", "insufficient stock")
			return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
		case errors.Is(err, sales.ErrValidation):
			l.Warn("register_sale_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("register_sale_failed", "status", 500, "reason", "cannot register sale", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot register sale")
		}
	}

	publish(c, h.Producer, events.TopicSales, map[string]any{
		"type":      "sale_registered",
		"saleID":    sale.ID,
		"productID": sale.ProductID,
		"quantity":  sale.Quantity,
		"amount":    sale.Amount,
		"userID":    ownerID,
	})

	l.Info("register_sale_success", "saleID", sale.ID)
	return c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) GetSales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.get_sales")

	ownerID, err := currentUserID(c)
	if err != nil {
		l.Warn("get_sales_failed", "status", 401, "reason", "no operator session")
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	metrics, list, err := h.Svc.Metrics(ctx, ownerID)
	if err != nil {
		l.Error("get_sales_failed", "status", 500, "reason", "cannot list sales", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list sales")
	}

	l.Info("get_sales_success", "count", metrics.Count)
	return c.JSON(http.StatusOK, map[string]any{
		"data":    list,
		"metrics": metrics,
	})
}
