package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mvribeiro/suplemarket/internal/models"
)

// DefaultExpiryWindow is the lookahead used by the dashboard's expiring list.
const DefaultExpiryWindow = 30

func newCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
}

func SortByName(items []models.Product) {
	col := newCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return col.CompareString(items[i].Name, items[j].Name) < 0
	})
}

// LowStock returns products at or below their configured minimum stock.
// The threshold defaults to 0, so untouched products only show up once
// they are fully depleted.
func LowStock(items []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range items {
		if p.Quantity <= p.MinStock {
			out = append(out, p)
		}
	}
	return out
}

// ExpiringWithin returns products whose expiry date falls in
// [now, now+days]. Already-expired products are excluded.
func ExpiringWithin(items []models.Product, days int, now time.Time) []models.Product {
	limit := now.AddDate(0, 0, days)
	out := []models.Product{}
	for _, p := range items {
		if p.ExpiryDate == nil {
			continue
		}
		exp := *p.ExpiryDate
		if exp.Before(now) || exp.After(limit) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func TotalPurchaseValue(items []models.Product) float64 {
	var total float64
	for _, p := range items {
		total += p.PurchasePrice * p.Quantity
	}
	return total
}

func TotalSaleValue(items []models.Product) float64 {
	var total float64
	for _, p := range items {
		total += p.SalePrice * p.Quantity
	}
	return total
}

func TotalProfit(items []models.Product) float64 {
	var total float64
	for _, p := range items {
		total += (p.SalePrice - p.PurchasePrice) * p.Quantity
	}
	return total
}

// ProfitMargin is the potential margin over the whole catalog, in percent.
// Zero purchase value yields 0 rather than a division by zero.
func ProfitMargin(items []models.Product) float64 {
	cost := TotalPurchaseValue(items)
	if cost == 0 {
		return 0
	}
	return (TotalSaleValue(items) - cost) / cost * 100
}

// ByCategory groups products by category; products without one land in the
// Uncategorized bucket.
func ByCategory(items []models.Product) map[string][]models.Product {
	out := map[string][]models.Product{}
	for _, p := range items {
		cat := p.Category
		if cat == "" {
			cat = models.Uncategorized
		}
		out[cat] = append(out[cat], p)
	}
	return out
}

// ProductProfit decorates a product with its per-item profitability.
type ProductProfit struct {
	models.Product
	UnitProfit   float64 `json:"unit_profit"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

func WithProfit(items []models.Product) []ProductProfit {
	out := make([]ProductProfit, 0, len(items))
	for _, p := range items {
		pp := ProductProfit{
			Product:     p,
			UnitProfit:  p.SalePrice - p.PurchasePrice,
			TotalProfit: (p.SalePrice - p.PurchasePrice) * p.Quantity,
		}
		if p.PurchasePrice > 0 {
			pp.ProfitMargin = (p.SalePrice - p.PurchasePrice) / p.PurchasePrice * 100
		}
		out = append(out, pp)
	}
	return out
}

// Report is the aggregate the admin dashboard renders.
type Report struct {
	TotalProducts      int                         `json:"total_products"`
	TotalPurchaseValue float64                     `json:"total_purchase_value"`
	TotalSaleValue     float64                     `json:"total_sale_value"`
	TotalProfit        float64                     `json:"total_profit"`
	ProfitMargin       float64                     `json:"profit_margin"`
	LowStock           []models.Product            `json:"low_stock"`
	ExpiringSoon       []models.Product            `json:"expiring_soon"`
	ByCategory         map[string][]models.Product `json:"by_category"`
	Products           []ProductProfit             `json:"products"`
}

func (s *Service) Report(ctx context.Context, ownerID uuid.UUID) (*Report, error) {
	items, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	return &Report{
		TotalProducts:      len(items),
		TotalPurchaseValue: TotalPurchaseValue(items),
		TotalSaleValue:     TotalSaleValue(items),
		TotalProfit:        TotalProfit(items),
		ProfitMargin:       ProfitMargin(items),
		LowStock:           LowStock(items),
		ExpiringSoon:       ExpiringWithin(items, DefaultExpiryWindow, time.Now()),
		ByCategory:         ByCategory(items),
		Products:           WithProfit(items),
	}, nil
}
