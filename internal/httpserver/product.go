package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mvribeiro/suplemarket/internal/events"
	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/repo"
	"github.com/mvribeiro/suplemarket/internal/service/inventory"
	"github.com/mvribeiro/suplemarket/internal/service/search"
	"github.com/mvribeiro/suplemarket/internal/transport"
)

type ProductHandler struct {
	Inv      *inventory.Service
	Repo     *repo.GormRepo
	Producer *events.Producer
	Indexer  *search.Indexer
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	ownerID, err := currentUserID(c)
	if err != nil {
		l.Warn("get_products_failed", "status", 401, "reason", "no operator session")
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	items, err := h.Inv.List(ctx, ownerID)
	if err != nil {
		l.Error("get_products_failed", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	ownerID, err := currentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	prod, err := h.Inv.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	ownerID, err := currentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	owner, err := h.Repo.GetUser(ctx, ownerID)
	if err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot load operator", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load operator")
	}

	prod, err := h.Inv.Create(ctx, owner, req)
	if err != nil {
		if errors.Is(err, inventory.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	publish(c, h.Producer, events.TopicProducts, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"userID":    ownerID,
	})
	if err := h.Indexer.IndexProduct(ctx, prod); err != nil {
		l.Error("product_index_error", "productID", prod.ID, "error", err)
	}

	l.Info("create_product_success", "productID", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	ownerID, err := currentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Inv.Update(ctx, ownerID, id, req)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			l.Warn("product_patch_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		if errors.Is(err, inventory.ErrValidation) {
			l.Warn("product_patch_error", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("product_patch_error", "status", 500, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	publish(c, h.Producer, events.TopicProducts, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
		"userID":    ownerID,
	})
	if err := h.Indexer.IndexProduct(ctx, prod); err != nil {
		l.Error("product_index_error", "productID", prod.ID, "error", err)
	}

	l.Info("patch_product_success", "productID", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	ownerID, err := currentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Inv.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			l.Warn("product_delete_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	publish(c, h.Producer, events.TopicProducts, map[string]any{
		"type":      "product_deleted",
		"productID": id,
		"userID":    ownerID,
	})
	if err := h.Indexer.DeleteProduct(ctx, id); err != nil {
		l.Error("product_index_error", "productID", id, "error", err)
	}

	l.Info("delete_product_success", "productID", id)
	return c.NoContent(http.StatusNoContent)
}
