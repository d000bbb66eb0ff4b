package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product categories and units accepted by the catalog. Values are kept in
// pt-BR because they surface verbatim in the storefront and order emails.
var (
	Categories = []string{
		"Proteína",
		"Creatina",
		"Vitaminas",
		"Aminoácidos",
		"Pré-treino",
		"Termogênico",
		"Carboidratos",
		"Outros",
	}

	Units = []string{
		"kg",
		"g",
		"ml",
		"l",
		"unidades",
		"cápsulas",
		"comprimidos",
	}
)

const (
	// Uncategorized is the bucket for products without a category.
	Uncategorized = "Sem categoria"
	// AllCategories disables category filtering on the storefront.
	AllCategories = "Todas"
)

type Product struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"      json:"id"`
	Name          string     `gorm:"not null"                  json:"name"`
	Brand         string     `gorm:"not null"                  json:"brand"`
	Category      string     `gorm:"not null;index"            json:"category"`
	Quantity      float64    `gorm:"not null"                  json:"quantity"`
	Unit          string     `gorm:"not null"                  json:"unit"`
	PurchasePrice float64    `gorm:"not null"                  json:"purchase_price"`
	SalePrice     float64    `gorm:"default:0"                 json:"sale_price"`
	MinStock      float64    `gorm:"default:0"                 json:"min_stock"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	Supplier      string     `json:"supplier"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	Active        bool       `gorm:"default:true"              json:"active"`
	Published     bool       `gorm:"default:false"             json:"published"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;index;not null"  json:"owner_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Visible reports whether the product may appear on the public storefront.
func (p *Product) Visible() bool {
	return p.Published && p.Active && p.Quantity > 0
}

// Sale snapshots the product fields relevant for realized metrics, so the
// record stays meaningful after the product is edited or deleted.
type Sale struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index"          json:"product_id"`
	ProductName string    `gorm:"not null"                 json:"product_name"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Quantity    float64   `gorm:"not null"                 json:"quantity"`
	Amount      float64   `gorm:"not null"                 json:"amount"`
	UnitCost    float64   `gorm:"not null"                 json:"unit_cost"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	SoldAt      time.Time `json:"sold_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Username     string    `gorm:"unique;not null"       json:"username"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PhotoURL     string    `json:"photo_url"`
	Role         string    `gorm:"not null"              json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt int64     `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

// ValidCategory accepts the fixed category list plus empty (bucketed as
// Uncategorized on read).
func ValidCategory(c string) bool {
	if c == "" {
		return true
	}
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidUnit(u string) bool {
	for _, v := range Units {
		if v == u {
			return true
		}
	}
	return false
}
