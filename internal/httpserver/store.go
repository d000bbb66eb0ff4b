package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"

	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/models"
	"github.com/mvribeiro/suplemarket/internal/service/search"
	"github.com/mvribeiro/suplemarket/internal/service/store"
	"github.com/mvribeiro/suplemarket/internal/util"
)

type StoreHandler struct {
	Store *store.Service
	ES    *elasticsearch.Client
	Index string
}

// GetProducts lists storefront-visible products, optionally narrowed by the
// q substring filter and the category filter.
func (h *StoreHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.get_products")

	items, err := h.Store.Fetch(ctx)
	if err != nil {
		l.Error("store_get_products_failed", "status", 500, "reason", "cannot fetch products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch products")
	}

	items = store.Search(items, c.QueryParam("q"))
	items = store.FilterByCategory(items, c.QueryParam("category"))

	l.Info("store_get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *StoreHandler) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.get_categories")

	items, err := h.Store.Fetch(ctx)
	if err != nil {
		l.Error("store_get_categories_failed", "status", 500, "reason", "cannot fetch products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch products")
	}

	return c.JSON(http.StatusOK, map[string]any{"data": store.Categories(items)})
}

// SearchProducts serves fuzzy search from Elasticsearch when it is wired in
// and falls back to the in-memory substring filter otherwise.
func (h *StoreHandler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	if h.ES == nil {
		items, err := h.Store.Fetch(ctx)
		if err != nil {
			l.Error("store_search_failed", "status", 500, "reason", "cannot fetch products", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch products")
		}
		matched := store.Search(items, q)
		return c.JSON(http.StatusOK, map[string]any{"total": len(matched), "products": matched})
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, hits, err := search.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		l.Error("store_search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	// The index carries every catalog write; keep only what the
	// storefront may show.
	products := make([]models.Product, 0, len(hits))
	for _, p := range hits {
		if p.Visible() {
			products = append(products, p)
		}
	}

	l.Info("store_search_success", "total", total, "returned", len(products))
	return c.JSON(http.StatusOK, map[string]any{"total": total, "products": products})
}
