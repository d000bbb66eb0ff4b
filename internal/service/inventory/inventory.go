package inventory

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/models"
	"github.com/mvribeiro/suplemarket/internal/repo"
	"github.com/mvribeiro/suplemarket/internal/transport"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("product not found")
)

var imagePattern = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp)$`)

type Service struct {
	Repo *repo.GormRepo
}

// List returns the operator's products sorted by name with the pt-BR
// collator, the same ordering the original inventory grid applies.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	items, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	SortByName(items)
	return items, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetOwnedProduct(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return prod, nil
}

func (s *Service) Create(ctx context.Context, owner *models.User, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	supplier := req.Supplier
	if supplier == "" {
		supplier = owner.Email
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	prod := models.Product{
		Name:          req.Name,
		Brand:         req.Brand,
		Category:      req.Category,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		MinStock:      req.MinStock,
		PurchaseDate:  req.PurchaseDate,
		ExpiryDate:    req.ExpiryDate,
		Supplier:      supplier,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Active:        active,
		Published:     req.Published,
		OwnerID:       owner.ID,
	}

	created, err := s.Repo.CreateProduct(ctx, &prod)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if err := validatePatch(req); err != nil {
		return nil, err
	}

	prod, err := s.Repo.PatchProduct(ctx, ownerID, id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return prod, nil
}

// Delete removes the product permanently. Historical sales keep their
// snapshot fields, so no cascade happens here.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func validateCreate(req transport.CreateProductRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.Brand == "" {
		return fmt.Errorf("%w: brand is required", ErrValidation)
	}
	if req.Category == "" || !models.ValidCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if !models.ValidUnit(req.Unit) {
		return fmt.Errorf("%w: unknown unit %q", ErrValidation, req.Unit)
	}
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if req.PurchasePrice < 0 || req.SalePrice < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.MinStock < 0 {
		return fmt.Errorf("%w: min stock cannot be negative", ErrValidation)
	}
	if req.ImageURL != "" && !imagePattern.MatchString(req.ImageURL) {
		return fmt.Errorf("%w: image_url must point to an image file", ErrValidation)
	}
	return nil
}

func validatePatch(req transport.PatchProductRequest) error {
	if req.Name != nil && *req.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Brand != nil && *req.Brand == "" {
		return fmt.Errorf("%w: brand cannot be empty", ErrValidation)
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, *req.Category)
	}
	if req.Unit != nil && !models.ValidUnit(*req.Unit) {
		return fmt.Errorf("%w: unknown unit %q", ErrValidation, *req.Unit)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if req.PurchasePrice != nil && *req.PurchasePrice < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.SalePrice != nil && *req.SalePrice < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.MinStock != nil && *req.MinStock < 0 {
		return fmt.Errorf("%w: min stock cannot be negative", ErrValidation)
	}
	if req.ImageURL != nil && *req.ImageURL != "" && !imagePattern.MatchString(*req.ImageURL) {
		return fmt.Errorf("%w: image_url must point to an image file", ErrValidation)
	}
	return nil
}
