package export

import (
	"fmt"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/mvribeiro/suplemarket/internal/models"
)

// ReportRow mirrors the 13-column inventory report. Header names stay in
// pt-BR because operators open the file in their spreadsheet as-is.
type ReportRow struct {
	Name          string  `csv:"Nome"`
	Category      string  `csv:"Categoria"`
	Brand         string  `csv:"Marca"`
	Quantity      float64 `csv:"Quantidade"`
	Unit          string  `csv:"Unidade"`
	PurchasePrice float64 `csv:"Preço Compra"`
	SalePrice     float64 `csv:"Preço Venda"`
	UnitProfit    float64 `csv:"Lucro Unitário"`
	TotalPurchase float64 `csv:"Valor Total Compra"`
	TotalSale     float64 `csv:"Valor Total Venda"`
	TotalProfit   float64 `csv:"Lucro Total"`
	PurchaseDate  string  `csv:"Data Compra"`
	ExpiryDate    string  `csv:"Data Vencimento"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

func Rows(items []models.Product) []ReportRow {
	rows := make([]ReportRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, ReportRow{
			Name:          p.Name,
			Category:      p.Category,
			Brand:         p.Brand,
			Quantity:      p.Quantity,
			Unit:          p.Unit,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			UnitProfit:    p.SalePrice - p.PurchasePrice,
			TotalPurchase: p.PurchasePrice * p.Quantity,
			TotalSale:     p.SalePrice * p.Quantity,
			TotalProfit:   (p.SalePrice - p.PurchasePrice) * p.Quantity,
			PurchaseDate:  formatDate(p.PurchaseDate),
			ExpiryDate:    formatDate(p.ExpiryDate),
		})
	}
	return rows
}

// CSV serializes the product list into the report format, one header row
// plus one row per product. gocsv applies proper quoting, so commas in
// product names do not corrupt rows.
func CSV(items []models.Product) (string, error) {
	rows := Rows(items)
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("marshal report csv: %w", err)
	}
	return out, nil
}

// Filename is the dated download name the report endpoint serves.
func Filename(now time.Time) string {
	return fmt.Sprintf("relatorio_inventario_%s.csv", now.Format("2006-01-02"))
}
