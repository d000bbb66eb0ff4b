package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/service/token"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	ReportHandler  *ReportHandler
	SalesHandler   *SalesHandler
	StoreHandler   *StoreHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	TokenService   *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddleware)

	admin.GET("/products", d.ProductHandler.GetProducts)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.GET("/products/:id", d.ProductHandler.GetProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.GET("/reports", d.ReportHandler.GetReport)
	admin.GET("/reports/export", d.ReportHandler.ExportCSV)

	admin.GET("/sales", d.SalesHandler.GetSales)
	admin.POST("/sales", d.SalesHandler.RegisterSale)

	storefront := v1.Group("/store")

	storefront.GET("/products", d.StoreHandler.GetProducts)
	storefront.GET("/categories", d.StoreHandler.GetCategories)
	storefront.GET("/search", d.StoreHandler.SearchProducts)

	basket := storefront.Group("/cart", d.CartHandler.SessionMiddleware)

	basket.GET("", d.CartHandler.GetCart)
	basket.POST("", d.CartHandler.AddItem)
	basket.PATCH("/:id", d.CartHandler.SetQuantity)
	basket.DELETE("/:id", d.CartHandler.RemoveItem)
	basket.DELETE("", d.CartHandler.Clear)

	storefront.POST("/checkout", d.OrderHandler.Checkout, d.CartHandler.SessionMiddleware)
}
