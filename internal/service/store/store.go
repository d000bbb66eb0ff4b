package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/models"
	"github.com/mvribeiro/suplemarket/internal/repo"
)

var ErrNotFound = errors.New("product not available")

// Service is the ownership-agnostic storefront view: only published, active
// products with stock are ever returned from here.
type Service struct {
	Repo *repo.GormRepo
}

// Fetch loads every storefront-visible product, sorted by category then name.
func (s *Service) Fetch(ctx context.Context) ([]models.Product, error) {
	items, err := s.Repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch storefront products: %w", err)
	}

	visible := make([]models.Product, 0, len(items))
	for _, p := range items {
		if p.Quantity <= 0 {
			continue
		}
		if p.Category == "" {
			p.Category = models.Uncategorized
		}
		visible = append(visible, p)
	}

	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Category != visible[j].Category {
			return col.CompareString(visible[i].Category, visible[j].Category) < 0
		}
		return col.CompareString(visible[i].Name, visible[j].Name) < 0
	})

	return visible, nil
}

// Get returns one storefront-visible product by id, for cart additions.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get storefront product: %w", err)
	}
	if !prod.Visible() {
		return nil, ErrNotFound
	}
	return prod, nil
}

// Search filters by case-insensitive substring over name, brand, category and
// description. An empty term returns the set unchanged.
func Search(items []models.Product, term string) []models.Product {
	if term == "" {
		return items
	}
	t := strings.ToLower(term)
	out := []models.Product{}
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Name), t) ||
			strings.Contains(strings.ToLower(p.Brand), t) ||
			strings.Contains(strings.ToLower(p.Category), t) ||
			strings.Contains(strings.ToLower(p.Description), t) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory matches exactly; the AllCategories sentinel (or empty)
// disables the filter.
func FilterByCategory(items []models.Product, category string) []models.Product {
	if category == "" || category == models.AllCategories {
		return items
	}
	out := []models.Product{}
	for _, p := range items {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the sorted distinct categories of the given set.
func Categories(items []models.Product) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range items {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}
