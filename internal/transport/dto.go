package transport

import "time"

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateProductRequest struct {
	Name          string     `json:"name"`
	Brand         string     `json:"brand"`
	Category      string     `json:"category"`
	Quantity      float64    `json:"quantity"`
	Unit          string     `json:"unit"`
	PurchasePrice float64    `json:"purchase_price"`
	SalePrice     float64    `json:"sale_price"`
	MinStock      float64    `json:"min_stock"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Supplier      string     `json:"supplier"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	Active        *bool      `json:"active"`
	Published     bool       `json:"published"`
}

type PatchProductRequest struct {
	Name          *string    `json:"name"`
	Brand         *string    `json:"brand"`
	Category      *string    `json:"category"`
	Quantity      *float64   `json:"quantity"`
	Unit          *string    `json:"unit"`
	PurchasePrice *float64   `json:"purchase_price"`
	SalePrice     *float64   `json:"sale_price"`
	MinStock      *float64   `json:"min_stock"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Supplier      *string    `json:"supplier"`
	Description   *string    `json:"description"`
	ImageURL      *string    `json:"image_url"`
	Active        *bool      `json:"active"`
	Published     *bool      `json:"published"`
}

type RegisterSaleRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Amount    float64 `json:"amount"`
}

type AddCartItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type SetCartQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

type CheckoutRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}
