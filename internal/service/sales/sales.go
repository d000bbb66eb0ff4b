package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/models"
	"github.com/mvribeiro/suplemarket/internal/repo"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation error")
)

type Service struct {
	Repo *repo.GormRepo
}

// RegisterSale appends the sale snapshot and decrements the product stock in
// one transaction. The decrement is guarded by `quantity >= ?`, so two
// concurrent registrations cannot both succeed past the available stock.
func (s *Service) RegisterSale(ctx context.Context, ownerID, productID uuid.UUID, qty, amount float64) (*models.Sale, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: sale amount must be positive", ErrValidation)
	}

	var sale *models.Sale
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Where("id = ? AND owner_id = ?", productID, ownerID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("load product: %w", err)
		}

		if qty > p.Quantity {
			return ErrInsufficientStock
		}

		rec := models.Sale{
			ProductID:   p.ID,
			ProductName: p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Unit:        p.Unit,
			Quantity:    qty,
			Amount:      amount,
			UnitCost:    p.PurchasePrice,
			OwnerID:     ownerID,
			SoldAt:      time.Now(),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("record sale: %w", err)
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", p.ID, qty).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", qty),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("decrement stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		sale = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Metrics are realized figures derived from recorded sales, as opposed to
// the potential figures the catalog report computes.
type Metrics struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

func (s *Service) Metrics(ctx context.Context, ownerID uuid.UUID) (*Metrics, []models.Sale, error) {
	list, err := s.Repo.ListSalesByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list sales: %w", err)
	}

	m := &Metrics{Count: len(list)}
	for _, sale := range list {
		m.Revenue += sale.Amount
		m.Profit += sale.Amount - sale.UnitCost*sale.Quantity
	}
	return m, list, nil
}
