package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/models"
	"github.com/mvribeiro/suplemarket/internal/transport"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetOwnedProduct(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByOwner returns the raw owner-scoped set; name ordering is applied
// client-side with a locale-aware collator, mirroring how the storefront and
// inventory views sort.
func (r *GormRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListPublished returns all published, active products across every owner.
// Stock filtering stays with the caller.
func (r *GormRepo) ListPublished(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("published = ? AND active = ?", true, true).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, ownerID, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&prod).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Brand != nil {
		prod.Brand = *req.Brand
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}
	if req.Quantity != nil {
		prod.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		prod.Unit = *req.Unit
	}
	if req.PurchasePrice != nil {
		prod.PurchasePrice = *req.PurchasePrice
	}
	if req.SalePrice != nil {
		prod.SalePrice = *req.SalePrice
	}
	if req.MinStock != nil {
		prod.MinStock = *req.MinStock
	}
	if req.PurchaseDate != nil {
		prod.PurchaseDate = req.PurchaseDate
	}
	if req.ExpiryDate != nil {
		prod.ExpiryDate = req.ExpiryDate
	}
	if req.Supplier != nil {
		prod.Supplier = *req.Supplier
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		prod.Active = *req.Active
	}
	if req.Published != nil {
		prod.Published = *req.Published
	}

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}

	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Product{})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
