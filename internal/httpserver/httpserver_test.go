package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/httpserver"
	"github.com/mvribeiro/suplemarket/internal/mailer"
	"github.com/mvribeiro/suplemarket/internal/models"
	"github.com/mvribeiro/suplemarket/internal/repo"
	"github.com/mvribeiro/suplemarket/internal/service/cart"
	"github.com/mvribeiro/suplemarket/internal/service/inventory"
	"github.com/mvribeiro/suplemarket/internal/service/order"
	"github.com/mvribeiro/suplemarket/internal/service/sales"
	"github.com/mvribeiro/suplemarket/internal/service/store"
	"github.com/mvribeiro/suplemarket/internal/service/token"
	"github.com/mvribeiro/suplemarket/internal/userinfo"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Mail *mailer.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Sale{}, &models.User{}, &models.RefreshToken{}))

	r := repo.New(db)
	jwtSecret := []byte("test-jwt-secret")
	refreshSecret := []byte("test-refresh-secret")

	invSvc := &inventory.Service{Repo: r}
	storeSvc := &store.Service{Repo: r}
	salesSvc := &sales.Service{Repo: r}
	sessions := cart.NewSessions()
	rec := &mailer.Recorder{}
	orderSvc := order.New(userinfo.New(r), rec)
	orderSvc.Pacing = 0

	cartHandler := &httpserver.CartHandler{Sessions: sessions, Store: storeSvc}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		AuthHandler:    &httpserver.AuthHandler{Repo: r, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
		ProductHandler: &httpserver.ProductHandler{Inv: invSvc, Repo: r},
		ReportHandler:  &httpserver.ReportHandler{Inv: invSvc, Sales: salesSvc},
		SalesHandler:   &httpserver.SalesHandler{Svc: salesSvc},
		StoreHandler:   &httpserver.StoreHandler{Store: storeSvc},
		CartHandler:    cartHandler,
		OrderHandler:   &httpserver.OrderHandler{Sessions: sessions, Orders: orderSvc},
		TokenService:   &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	})

	return &testEnv{T: t, E: e, DB: db, Mail: rec}
}

func (env *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// registerAndLogin creates an operator account and returns the auth cookies
// the admin routes expect.
func (env *testEnv) registerAndLogin(username, email string) []*http.Cookie {
	env.T.Helper()

	rec := env.do(http.MethodPost, "/api/v1/register", map[string]any{
		"username":     username,
		"password":     "secret123",
		"display_name": "Loja " + username,
		"email":        email,
	})
	require.Equal(env.T, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/login", map[string]any{
		"username": username,
		"password": "secret123",
	})
	require.Equal(env.T, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(env.T, cookies)
	return cookies
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"username": "loja", "password": "secret123"}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/v1/register", body).Code)
	require.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/v1/register", body).Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin("loja", "loja@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/login", map[string]any{
		"username": "loja",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RequireAuthentication(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/v1/admin/products",
		"/api/v1/admin/reports",
		"/api/v1/admin/sales",
	} {
		rec := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestInventoryIsScopedPerOperator(t *testing.T) {
	env := newTestEnv(t)

	alice := env.registerAndLogin("alice", "alice@ex.com")
	bob := env.registerAndLogin("bob", "bob@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Whey", "brand": "Max", "category": "Proteína", "unit": "g", "quantity": 10,
	}, alice...)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Product
	decode(t, rec, &created)

	var listing struct {
		Data []models.Product `json:"data"`
	}

	rec = env.do(http.MethodGet, "/api/v1/admin/products", nil, alice...)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &listing)
	require.Len(t, listing.Data, 1)

	rec = env.do(http.MethodGet, "/api/v1/admin/products", nil, bob...)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &listing)
	require.Empty(t, listing.Data)

	// bob cannot touch alice's product either
	rec = env.do(http.MethodPatch, "/api/v1/admin/products/"+created.ID.String(), map[string]any{"name": "hijacked"}, bob...)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Whey", "brand": "Max", "category": "Eletrônicos", "unit": "g",
	}, cookies...)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestInventoryToStorefrontFlow walks the main path end to end: an operator
// stocks a product, a visitor carts it (clamped to stock), the operator
// registers an in-person sale and the dashboard reflects the depleted stock.
func TestInventoryToStorefrontFlow(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name":           "Creatina 300g",
		"brand":          "Growth",
		"category":       "Creatina",
		"unit":           "g",
		"quantity":       20,
		"min_stock":      5,
		"purchase_price": 40,
		"sale_price":     90,
		"published":      true,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	var prod models.Product
	decode(t, rec, &prod)

	// visible on the storefront
	rec = env.do(http.MethodGet, "/api/v1/store/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var storefront struct {
		Data []models.Product `json:"data"`
	}
	decode(t, rec, &storefront)
	require.Len(t, storefront.Data, 1)
	assert.Equal(t, prod.ID, storefront.Data[0].ID)

	// a visitor carts more than the stock and gets clamped
	rec = env.do(http.MethodPost, "/api/v1/store/cart", map[string]any{
		"product_id": prod.ID.String(),
		"quantity":   25,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var cartResp struct {
		Total     float64 `json:"total"`
		ItemCount float64 `json:"item_count"`
	}
	decode(t, rec, &cartResp)
	assert.Equal(t, 20.0, cartResp.ItemCount)
	assert.Equal(t, 1800.0, cartResp.Total)

	// the operator registers an in-person sale
	rec = env.do(http.MethodPost, "/api/v1/admin/sales", map[string]any{
		"product_id": prod.ID.String(),
		"quantity":   15,
		"amount":     1350,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	// stock is down to 5
	rec = env.do(http.MethodGet, "/api/v1/admin/products/"+prod.ID.String(), nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var after models.Product
	decode(t, rec, &after)
	assert.Equal(t, 5.0, after.Quantity)

	// selling past the remaining stock is refused
	rec = env.do(http.MethodPost, "/api/v1/admin/sales", map[string]any{
		"product_id": prod.ID.String(),
		"quantity":   6,
		"amount":     540,
	}, cookies...)
	require.Equal(t, http.StatusConflict, rec.Code)

	// the dashboard flags the product as low on stock (5 <= min_stock 5)
	rec = env.do(http.MethodGet, "/api/v1/admin/reports", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		Inventory struct {
			TotalProducts int              `json:"total_products"`
			LowStock      []models.Product `json:"low_stock"`
		} `json:"inventory"`
		Sales sales.Metrics `json:"sales"`
	}
	decode(t, rec, &report)
	assert.Equal(t, 1, report.Inventory.TotalProducts)
	require.Len(t, report.Inventory.LowStock, 1)
	assert.Equal(t, prod.ID, report.Inventory.LowStock[0].ID)
	assert.Equal(t, 1, report.Sales.Count)
	assert.Equal(t, 1350.0, report.Sales.Revenue)
}

func TestStorefront_HidesUnpublishedProducts(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Rascunho", "brand": "Max", "category": "Outros", "unit": "g", "quantity": 5,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/store/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var storefront struct {
		Data []models.Product `json:"data"`
	}
	decode(t, rec, &storefront)
	assert.Empty(t, storefront.Data)
}

func TestStoreSearch_FallbackWithoutElasticsearch(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Whey Protein", "brand": "Max", "category": "Proteína", "unit": "g",
		"quantity": 3, "published": true,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/store/search?q=whey", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Total    int              `json:"total"`
		Products []models.Product `json:"products"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Products, 1)

	require.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/store/search", nil).Code)
}

func TestCart_SessionIsolation(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Whey", "brand": "Max", "category": "Proteína", "unit": "g",
		"quantity": 10, "sale_price": 100, "published": true,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)
	var prod models.Product
	decode(t, rec, &prod)

	rec = env.do(http.MethodPost, "/api/v1/store/cart", map[string]any{
		"product_id": prod.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := sessionCookie(t, rec)

	// the same session sees its cart, a fresh session does not
	var cartResp struct {
		ItemCount float64 `json:"item_count"`
	}
	rec = env.do(http.MethodGet, "/api/v1/store/cart", nil, session)
	decode(t, rec, &cartResp)
	assert.Equal(t, 1.0, cartResp.ItemCount)

	rec = env.do(http.MethodGet, "/api/v1/store/cart", nil)
	decode(t, rec, &cartResp)
	assert.Equal(t, 0.0, cartResp.ItemCount)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "fornecedor@loja.com")

	rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Whey", "brand": "Max", "category": "Proteína", "unit": "g",
		"quantity": 10, "sale_price": 100, "published": true,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code)
	var prod models.Product
	decode(t, rec, &prod)

	rec = env.do(http.MethodPost, "/api/v1/store/cart", map[string]any{
		"product_id": prod.ID.String(),
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := sessionCookie(t, rec)

	// missing customer info is refused before anything is sent
	rec = env.do(http.MethodPost, "/api/v1/store/checkout", map[string]any{"name": "Ana"}, session)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/store/checkout", map[string]any{
		"name":  "Ana",
		"email": "ana@ex.com",
	}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Partitions []order.Partition `json:"partitions"`
		Total      float64           `json:"total"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Partitions, 1)
	assert.True(t, resp.Partitions[0].Sent)
	assert.Equal(t, 200.0, resp.Total)

	require.Len(t, env.Mail.Messages, 1)
	assert.Equal(t, "fornecedor@loja.com", env.Mail.Messages[0].To)

	// checkout cleared the cart, a second attempt finds it empty
	rec = env.do(http.MethodPost, "/api/v1/store/checkout", map[string]any{
		"name":  "Ana",
		"email": "ana@ex.com",
	}, session)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	for _, name := range []string{"Whey", "Creatina"} {
		rec := env.do(http.MethodPost, "/api/v1/admin/products", map[string]any{
			"name": name, "brand": "Max", "category": "Outros", "unit": "g", "quantity": 1,
		}, cookies...)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(http.MethodGet, "/api/v1/admin/reports/export", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "relatorio_inventario_")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Nome,Categoria,Marca"))

	// the q filter narrows the export
	rec = env.do(http.MethodGet, "/api/v1/admin/reports/export?q=whey", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	lines = strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.registerAndLogin("loja", "loja@ex.com")

	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/api/v1/logout", nil, cookies...).Code)

	// the refresh token no longer rotates, so a request carrying only it fails
	var refresh *http.Cookie
	for _, ck := range cookies {
		if ck.Name == "refreshToken" {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)

	rec := env.do(http.MethodGet, "/api/v1/admin/products", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "cartSession" {
			return ck
		}
	}
	t.Fatal("no cart session cookie issued")
	return nil
}
