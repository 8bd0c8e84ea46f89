package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/testutil"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func seedProducts(t *testing.T, repo *ProductRepository, names ...string) []domain.Product {
	t.Helper()
	out := make([]domain.Product, 0, len(names))
	for i, name := range names {
		p := domain.Product{
			Name:      name,
			UnitPrice: int64(100 * (i + 1)),
			Quantity:  int64(10 + i),
			Category:  domain.CategoryFood,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), &p))
		out = append(out, p)
	}
	return out
}

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	seedProducts(t, repo, "p1", "p2", "p3", "p4", "p5")

	var names []string
	for page := 1; page <= 3; page++ {
		res, err := repo.List(ctx, ListQuery{Page: page, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Total)
		assert.Equal(t, 3, res.LastPage)
		if page < 3 {
			assert.Len(t, res.Data, 2)
		} else {
			assert.Len(t, res.Data, 1)
		}
		for _, p := range res.Data {
			names = append(names, p.Name)
		}
	}
	assert.Equal(t, []string{"p5", "p4", "p3", "p2", "p1"}, names)

	res, err := repo.List(ctx, ListQuery{Page: 4, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Nil(t, res.From)
}

func TestListSearchIgnoresPerPage(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	seedProducts(t, repo, "Apple Pie", "Banana Bread")

	res, err := repo.List(ctx, ListQuery{Search: "apple", PerPage: 1})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Apple Pie", res.Data[0].Name)
	assert.Equal(t, SearchPerPage, res.PerPage)

	// numeric columns match as text
	res, err = repo.List(ctx, ListQuery{Search: "200"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Banana Bread", res.Data[0].Name)
}

func TestListSearchOrdersOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	seedProducts(t, repo, "Cake One", "Cake Two", "Bread")

	res, err := repo.List(ctx, ListQuery{Search: "CAKE"})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "Cake One", res.Data[0].Name)
	assert.Equal(t, "Cake Two", res.Data[1].Name)
}

func TestListAllWinsOverSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	seedProducts(t, repo, "a", "b", "c")

	res, err := repo.List(ctx, ListQuery{All: true, Search: "a", PerPage: 1})
	require.NoError(t, err)
	require.Len(t, res.Data, 3)
	assert.Equal(t, "c", res.Data[0].Name)
	assert.Equal(t, 3, res.PerPage)
	assert.Equal(t, 1, res.LastPage)
}

func TestSoftDeleteHidesRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	p := seedProducts(t, repo, "Soup")[0]

	n, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Find(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var kept domain.Product
	require.NoError(t, db.Unscoped().First(&kept, p.ID).Error)
	assert.True(t, kept.DeletedAt.Valid)

	// deleting again matches nothing
	n, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPatchTouchesOnlyGivenColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	p := seedProducts(t, repo, "Rice")[0]

	n, err := repo.Patch(ctx, p.ID, map[string]interface{}{"quantity": 99})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Quantity)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.UnitPrice, got.UnitPrice)

	n, err = repo.Patch(ctx, 4040, map[string]interface{}{"quantity": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	seedProducts(t, repo, "Oats")

	err := repo.Create(ctx, &domain.Product{Name: "Oats", UnitPrice: 1, Quantity: 1, Category: domain.CategoryCereal})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestOrderCreateWithDetailsAndRelations(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	customers := NewCustomerRepository(db)
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)
	details := NewOrderDetailRepository(db)

	c := domain.Customer{Firstname: "Ada", Lastname: "Obi", Phonenumber: "08012345678", Email: "ada@example.com", Address: "Lagos"}
	require.NoError(t, customers.Create(ctx, &c))
	assert.Equal(t, "Ada Obi", c.Fullname)
	p := seedProducts(t, products, "Yam")[0]

	order := domain.Order{Amount: 500, Status: domain.OrderStatusCompleted, CustomerID: c.ID}
	lines := []domain.OrderDetail{{ProductID: p.ID, Quantity: 2}}
	require.NoError(t, orders.CreateWithDetails(ctx, &order, lines))
	require.NotZero(t, order.ID)
	require.Len(t, order.OrderDetails, 1)
	assert.Equal(t, order.ID, order.OrderDetails[0].OrderID)

	// soft deleted customer still shows on the order
	_, err := customers.Delete(ctx, c.ID)
	require.NoError(t, err)

	got, err := orders.Find(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, orders.EagerLoad(ctx, got, "order_details", "customer"))
	require.NotNil(t, got.Customer)
	assert.Equal(t, "ada@example.com", got.Customer.Email)
	assert.Len(t, got.OrderDetails, 1)

	d, err := details.Find(ctx, order.OrderDetails[0].ID)
	require.NoError(t, err)
	require.NoError(t, details.EagerLoad(ctx, d, "order", "product"))
	assert.Equal(t, "Yam", d.Product.Name)
	assert.Equal(t, int64(500), d.Order.Amount)

	assert.Error(t, orders.EagerLoad(ctx, got, "nope"))

	// order delete cascades to its lines
	_, err = orders.Delete(ctx, order.ID)
	require.NoError(t, err)
	n, err := details.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderCreateRollsBackOnBadLine(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	customers := NewCustomerRepository(db)
	orders := NewOrderRepository(db)

	c := domain.Customer{Firstname: "Bo", Lastname: "Li", Phonenumber: "08011111111", Email: "bo@example.com"}
	require.NoError(t, customers.Create(ctx, &c))

	order := domain.Order{Amount: 10, Status: domain.OrderStatusCompleted, CustomerID: c.ID}
	err := orders.CreateWithDetails(ctx, &order, []domain.OrderDetail{{ProductID: 999, Quantity: 1}})
	require.Error(t, err)

	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderAggregates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	customers := NewCustomerRepository(db)
	orders := NewOrderRepository(db)

	total, err := orders.SumAmount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	c := domain.Customer{Firstname: "Cy", Lastname: "Ra", Phonenumber: "08022222222", Email: "cy@example.com"}
	require.NoError(t, customers.Create(ctx, &c))
	for i, st := range []string{"completed", "completed", "pending"} {
		o := domain.Order{Amount: int64(100 * (i + 1)), Status: st, CustomerID: c.ID}
		require.NoError(t, orders.CreateWithDetails(ctx, &o, nil))
	}

	total, err = orders.SumAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(600), total)

	completed, err := orders.CountByStatus(ctx, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completed)
}

func TestProductsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testutil.NewDB(t))
	ps := seedProducts(t, repo, "x", "y")

	missing, err := repo.Missing(ctx, []int64{ps[0].ID, 77, ps[1].ID, 77, 78})
	require.NoError(t, err)
	assert.Equal(t, []int64{77, 78}, missing)
}

func TestUserDeleteWithTokens(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	tokens := NewTokenRepository(db)

	u := domain.User{Firstname: "A", Lastname: "B", Email: "a@b.io", Password: "x"}
	require.NoError(t, users.Create(ctx, &u))
	for i := 0; i < 2; i++ {
		require.NoError(t, tokens.Create(ctx, &domain.AccessToken{
			ID: int64(i + 1), UserID: u.ID, Name: u.Email, ExpiresAt: base.Add(time.Hour),
		}))
	}

	n, err := users.DeleteWithTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = tokens.Find(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenPurgeExpired(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	tokens := NewTokenRepository(db)

	u := domain.User{Firstname: "A", Lastname: "B", Email: "t@b.io", Password: "x"}
	require.NoError(t, users.Create(ctx, &u))
	for i, exp := range []time.Time{base.Add(-time.Hour), base.Add(time.Hour)} {
		require.NoError(t, tokens.Create(ctx, &domain.AccessToken{ID: int64(i + 10), UserID: u.ID, ExpiresAt: exp}))
	}

	n, err := tokens.PurgeExpired(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = tokens.Find(ctx, 11)
	assert.NoError(t, err)
}

func TestNewPageMetadata(t *testing.T) {
	p := newPage([]int{1, 2}, 5, 2, 2)
	assert.Equal(t, 3, *p.From)
	assert.Equal(t, 4, *p.To)
	assert.Equal(t, 3, p.LastPage)

	empty := newPage[int](nil, 0, 1, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 1, empty.LastPage)
}

func TestLikeExprPerDialect(t *testing.T) {
	cases := []struct {
		dialect string
		col     SearchColumn
		want    string
	}{
		{"postgres", Text("name"), "name ILIKE ?"},
		{"postgres", Numeric("amount"), "CAST(amount AS TEXT) ILIKE ?"},
		{"mysql", Numeric("amount"), "CAST(amount AS CHAR) LIKE ?"},
		{"sqlite", Text("email"), "LOWER(email) LIKE ?"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%s", tc.dialect, tc.col.Name), func(t *testing.T) {
			assert.Equal(t, tc.want, likeExpr(tc.dialect, tc.col))
		})
	}
}
