package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvribeiro/suplemarket/internal/models"
)

func testProduct(name string, stock, price float64) models.Product {
	return models.Product{
		ID:        uuid.New(),
		Name:      name,
		Quantity:  stock,
		SalePrice: price,
		Published: true,
		Active:    true,
	}
}

func TestCart_AddItem_ClampsToStock(t *testing.T) {
	t.Parallel()

	c := New()
	p := testProduct("Creatina 300g", 3, 89.90)

	c.AddItem(p, 5)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3.0, items[0].Quantity)
}

func TestCart_AddItem_AccumulatesSameProduct(t *testing.T) {
	t.Parallel()

	c := New()
	p := testProduct("Whey 900g", 10, 120)

	c.AddItem(p, 2)
	c.AddItem(p, 3)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5.0, items[0].Quantity)

	c.AddItem(p, 100)
	assert.Equal(t, 10.0, c.Items()[0].Quantity)
}

func TestCart_AddItem_FractionalStockCapsBelowOne(t *testing.T) {
	t.Parallel()

	c := New()
	p := testProduct("Creatina a granel", 0.5, 200)

	c.AddItem(p, 1)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 0.5, items[0].Quantity)
	assert.Equal(t, 100.0, c.Total())

	// topping up cannot push past the fractional stock either
	c.AddItem(p, 3)
	assert.Equal(t, 0.5, c.Items()[0].Quantity)
}

func TestCart_SetQuantity_FractionalStockCapsBelowOne(t *testing.T) {
	t.Parallel()

	c := New()
	p := testProduct("Whey a granel", 0.75, 100)
	c.AddItem(p, 1)

	c.SetQuantity(p.ID, 2)
	assert.Equal(t, 0.75, c.Items()[0].Quantity)

	// a sub-unit request is raised to 1 first, then stock caps it back
	c.SetQuantity(p.ID, 0.25)
	assert.Equal(t, 0.75, c.Items()[0].Quantity)
}

func TestCart_AddItem_ZeroQuantityMeansOne(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddItem(testProduct("BCAA", 7, 45), 0)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1.0, items[0].Quantity)
}

func TestCart_SetQuantity(t *testing.T) {
	t.Parallel()

	c := New()
	p := testProduct("Whey 900g", 4, 120)
	c.AddItem(p, 2)

	c.SetQuantity(p.ID, 3)
	assert.Equal(t, 3.0, c.Items()[0].Quantity)

	c.SetQuantity(p.ID, 99)
	assert.Equal(t, 4.0, c.Items()[0].Quantity)

	c.SetQuantity(p.ID, 0)
	assert.True(t, c.Empty())
}

func TestCart_TotalAndItemCount(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddItem(testProduct("Whey", 10, 100), 2)
	c.AddItem(testProduct("Creatina", 10, 50), 3)

	assert.Equal(t, 350.0, c.Total())
	assert.Equal(t, 5.0, c.ItemCount())
}

func TestCart_RemoveItemAndClear(t *testing.T) {
	t.Parallel()

	c := New()
	p1 := testProduct("Whey", 10, 100)
	p2 := testProduct("Creatina", 10, 50)
	c.AddItem(p1, 1)
	c.AddItem(p2, 1)

	c.RemoveItem(p1.ID)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, p2.ID, c.Items()[0].Product.ID)

	c.Clear()
	assert.True(t, c.Empty())
	assert.Equal(t, 0.0, c.Total())
}

func TestCart_ItemsReturnsCopy(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddItem(testProduct("Whey", 10, 100), 2)

	items := c.Items()
	items[0].Quantity = 999

	assert.Equal(t, 2.0, c.Items()[0].Quantity)
}

func TestSessions_GetAndDrop(t *testing.T) {
	t.Parallel()

	s := NewSessions()

	a := s.Get("session-a")
	require.NotNil(t, a)
	assert.Same(t, a, s.Get("session-a"))

	b := s.Get("session-b")
	assert.NotSame(t, a, b)

	a.AddItem(testProduct("Whey", 10, 100), 1)
	s.Drop("session-a")
	assert.True(t, s.Get("session-a").Empty())
}
