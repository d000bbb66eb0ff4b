package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvribeiro/suplemarket/internal/models"
)

func (r *GormRepo) ListSalesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("sold_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
