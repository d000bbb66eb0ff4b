package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mvribeiro/suplemarket/internal/export"
	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/service/inventory"
	"github.com/mvribeiro/suplemarket/internal/service/sales"
	"github.com/mvribeiro/suplemarket/internal/service/store"
)

type ReportHandler struct {
	Inv   *inventory.Service
	Sales *sales.Service
}

// GetReport serves the dashboard aggregate: potential metrics from the
// catalog plus realized metrics from the sales ledger.
func (h *ReportHandler) GetReport(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.get_report")

	ownerID, err := currentUserID(c)
	if err != nil {
		l.Warn("get_report_failed", "status", 401, "reason", "no operator session")
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	report, err := h.Inv.Report(ctx, ownerID)
	if err != nil {
		l.Error("get_report_failed", "status", 500, "reason", "cannot build report", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build report")
	}

	metrics, _, err := h.Sales.Metrics(ctx, ownerID)
	if err != nil {
		l.Error("get_report_failed", "status", 500, "reason", "cannot compute sales metrics", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute sales metrics")
	}

	l.Info("get_report_success")
	return c.JSON(http.StatusOK, map[string]any{
		"inventory": report,
		"sales":     metrics,
	})
}

// ExportCSV streams the filtered inventory as the 13-column report file.
// The q and category query params apply the same filters the report grid
// offers.
func (h *ReportHandler) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.export_csv")

	ownerID, err := currentUserID(c)
	if err != nil {
		l.Warn("export_csv_failed", "status", 401, "reason", "no operator session")
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	items, err := h.Inv.List(ctx, ownerID)
	if err != nil {
		l.Error("export_csv_failed", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	items = store.Search(items, c.QueryParam("q"))
	items = store.FilterByCategory(items, c.QueryParam("category"))

	out, err := export.CSV(items)
	if err != nil {
		l.Error("export_csv_failed", "status", 500, "reason", "cannot build csv", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build csv")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename(time.Now())+`"`)
	l.Info("export_csv_success", "rows", len(items))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}
