package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/cache"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
	"github.com/talkincode/storefront/internal/testutil"
)

type queueRecorder struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (q *queueRecorder) Enqueue(order *domain.Order) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orders = append(q.orders, order)
}

type fixture struct {
	auth      *AuthService
	customers *CustomerService
	products  *ProductService
	orders    *OrderService
	details   *OrderDetailService
	store     *cache.MemoryStore
	queue     *queueRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := cache.NewMemoryStore()
	queue := &queueRecorder{}

	users := repository.NewUserRepository(db)
	tokens := repository.NewTokenRepository(db)
	customers := repository.NewCustomerRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	details := repository.NewOrderDetailRepository(db)

	return &fixture{
		auth: NewAuthService(users, tokens, AuthOptions{
			Secret:      []byte("test-secret"),
			TokenTTL:    time.Hour,
			RememberTTL: 24 * time.Hour,
		}),
		customers: NewCustomerService(customers, orders, store, time.Hour),
		products:  NewProductService(products, store, time.Hour),
		orders:    NewOrderService(orders, customers, products, queue, store, time.Hour),
		details:   NewOrderDetailService(details, orders, products, store, time.Hour),
		store:     store,
		queue:     queue,
	}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	require.Error(t, err)
	return apperr.KindOf(err)
}

func fieldsOf(t *testing.T, err error) apperr.FieldErrors {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok)
	return e.Fields
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Firstname:            "Ada",
		Lastname:             "Lovelace",
		Email:                email,
		Password:             "S3cure!pass",
		PasswordConfirmation: "S3cure!pass",
	}
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.auth.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "S3cure!pass", res.User.Password)
	assert.Contains(t, res.User.Password, "$2a$")

	_, err = f.auth.Register(ctx, registerInput("ada@example.com"))
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
	assert.Equal(t, []string{"The email has already been taken."}, fieldsOf(t, err)["email"])
}

func TestRegisterReportsEveryField(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{
		Email:                "not-an-email",
		Password:             "weakpass",
		PasswordConfirmation: "other",
	})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "firstname")
	assert.Contains(t, fields, "lastname")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	n, err := f.auth.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n.TotalUsers)
}

func TestPasswordRules(t *testing.T) {
	cases := map[string]bool{
		"S3cure!pass":   true,
		"short1!A":      true,
		"nouppercase1!": false,
		"NOLOWER1!":     false,
		"NoDigits!!":    false,
		"NoSymbol123":   false,
		"Sh0rt!":        false,
	}
	for pw, ok := range cases {
		in := registerInput("p@example.com")
		in.Password, in.PasswordConfirmation = pw, pw
		err := check(&in)
		if ok {
			assert.NoError(t, err, pw)
		} else {
			assert.Error(t, err, pw)
		}
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.auth.Register(ctx, registerInput("bob@example.com"))
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "x"})
	unknown := kindOf(t, err)
	_, err = f.auth.Login(ctx, LoginInput{Email: "bob@example.com", Password: "wrong"})
	wrong := kindOf(t, err)
	assert.Equal(t, apperr.KindUnauthorized, unknown)
	assert.Equal(t, unknown, wrong)

	res, err := f.auth.Login(ctx, LoginInput{Email: "bob@example.com", Password: "S3cure!pass", RememberMe: true})
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) {
		return f.auth.SigningKey(), nil
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	user, token, err := f.auth.Authenticate(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)

	require.NoError(t, f.auth.Logout(ctx, token.ID))
	_, _, err = f.auth.Authenticate(ctx, claims)
	assert.Equal(t, apperr.KindUnauthorized, kindOf(t, err))
}

func TestUserUpdateAndDestroy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, err := f.auth.Register(ctx, registerInput("cy@example.com"))
	require.NoError(t, err)

	require.NoError(t, f.auth.Update(ctx, "cy@example.com", UserUpdateInput{Firstname: "Cyd", Lastname: "R"}))
	err = f.auth.Update(ctx, "ghost@example.com", UserUpdateInput{Firstname: "G", Lastname: "H"})
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	require.NoError(t, f.auth.Destroy(ctx, res.User.ID))
	// non-strict: absent user still succeeds
	require.NoError(t, f.auth.Destroy(ctx, res.User.ID))

	page, err := f.auth.List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func createCustomer(t *testing.T, f *fixture, email string) *domain.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), CustomerInput{
		Firstname:   "Ngozi",
		Lastname:    "Eze",
		Phonenumber: "08031234567",
		Email:       email,
		Address:     "12 Marina Road",
	})
	require.NoError(t, err)
	return c
}

func createProduct(t *testing.T, f *fixture, name string) *domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), ProductInput{
		Name: name, UnitPrice: 250, Quantity: 40, Category: "food",
	})
	require.NoError(t, err)
	return p
}

func TestCreateShowRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := createCustomer(t, f, "ngozi@example.com")
	got, err := f.customers.Show(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Email, got.Email)
	assert.Equal(t, c.Phonenumber, got.Phonenumber)
	assert.Equal(t, "Ngozi Eze", got.Fullname)
	assert.NotNil(t, got.Orders)

	p := createProduct(t, f, "Jollof Rice")
	gp, err := f.products.Show(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, gp.Name)
	assert.Equal(t, p.UnitPrice, gp.UnitPrice)
	assert.Equal(t, domain.CategoryFood, gp.Category)
}

func TestCreateDuplicateAndInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createProduct(t, f, "Suya")

	_, err := f.products.Create(ctx, ProductInput{Name: "Suya", UnitPrice: 1, Quantity: 1, Category: "food"})
	assert.Equal(t, apperr.KindDuplicateEntity, kindOf(t, err))
	assert.NotContains(t, err.(*apperr.Error).Message, "name")

	_, err = f.products.Create(ctx, ProductInput{Name: "Chips", UnitPrice: 0, Quantity: 1, Category: "snacks"})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "unit_price")
	assert.Equal(t, []string{"The selected category is invalid."}, fields["category"])
}

func TestUpdateWithNoFieldsKeepsRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "keep@example.com")

	require.NoError(t, f.customers.Update(ctx, c.ID, CustomerUpdateInput{}))
	got, err := f.customers.Show(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Firstname, got.Firstname)
	assert.Equal(t, c.Email, got.Email)

	err = f.customers.Update(ctx, 9999, CustomerUpdateInput{})
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
}

func TestUpdateEvictsCacheAndValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := createProduct(t, f, "Garri")

	_, err := f.products.Show(ctx, p.ID)
	require.NoError(t, err)

	qty := int64(7)
	require.NoError(t, f.products.Update(ctx, p.ID, ProductUpdateInput{Quantity: &qty}))
	got, err := f.products.Show(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Quantity)
	assert.Equal(t, "Garri", got.Name)

	bad := "snacks"
	err = f.products.Update(ctx, p.ID, ProductUpdateInput{Category: &bad})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))

	blank := " "
	err = f.products.Update(ctx, p.ID, ProductUpdateInput{Name: &blank})
	assert.Contains(t, fieldsOf(t, err), "name")

	zero := int64(0)
	err = f.products.Update(ctx, p.ID, ProductUpdateInput{UnitPrice: &zero})
	assert.Contains(t, fieldsOf(t, err), "unit_price")
}

func TestUpdateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createCustomer(t, f, "one@example.com")
	c2 := createCustomer(t, f, "two@example.com")

	email := "one@example.com"
	err := f.customers.Update(ctx, c2.ID, CustomerUpdateInput{Email: &email})
	assert.Equal(t, apperr.KindDuplicateEntity, kindOf(t, err))
}

func TestDestroyThenShowNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "gone@example.com")
	p := createProduct(t, f, "Plantain")

	_, err := f.customers.Show(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, f.customers.Destroy(ctx, c.ID))
	_, err = f.customers.Show(ctx, c.ID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	require.NoError(t, f.products.Destroy(ctx, p.ID))
	_, err = f.products.Show(ctx, p.ID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	// absent ids are not an error
	require.NoError(t, f.products.Destroy(ctx, 424242))
}

func TestOrderStoreScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "buyer@example.com")
	require.NoError(t, f.products.products.Create(ctx, &domain.Product{
		ID: 10, Name: "Egusi", UnitPrice: 100, Quantity: 5, Category: domain.CategoryOther,
	}))

	order, err := f.orders.Store(ctx, c.ID, OrderInput{
		Products:    []OrderLineInput{{ProductID: 10, Quantity: 2}},
		TotalAmount: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), order.Amount)
	assert.Equal(t, "completed", order.Status)
	require.Len(t, order.OrderDetails, 1)
	assert.Equal(t, int64(2), order.OrderDetails[0].Quantity)
	assert.Equal(t, int64(10), order.OrderDetails[0].ProductID)

	f.queue.mu.Lock()
	assert.Len(t, f.queue.orders, 1)
	f.queue.mu.Unlock()

	shown, err := f.orders.Show(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, shown.Customer)
	assert.Equal(t, c.ID, shown.Customer.ID)
	assert.Len(t, shown.OrderDetails, 1)

	withOrders, err := f.customers.Show(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, withOrders.Orders, 1)
}

func TestOrderStoreFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "fail@example.com")

	_, err := f.orders.Store(ctx, 777, OrderInput{Products: []OrderLineInput{{ProductID: 1, Quantity: 1}}, TotalAmount: 1})
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	_, err = f.orders.Store(ctx, c.ID, OrderInput{TotalAmount: 1})
	assert.Contains(t, fieldsOf(t, err), "products")

	_, err = f.orders.Store(ctx, c.ID, OrderInput{Products: []OrderLineInput{{ProductID: 1, Quantity: 0}}, TotalAmount: 0})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "products[0].quantity")
	assert.Contains(t, fields, "totalAmount")

	_, err = f.orders.Store(ctx, c.ID, OrderInput{Products: []OrderLineInput{{ProductID: 55, Quantity: 1}}, TotalAmount: 9})
	assert.Contains(t, fieldsOf(t, err), "products[0].productId")

	n, err := f.orders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n.TotalOrders)
	assert.Empty(t, f.queue.orders)
}

func TestOrderStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "stats@example.com")
	p := createProduct(t, f, "Moi Moi")

	for _, amount := range []int64{100, 200, 300} {
		_, err := f.orders.Store(ctx, c.ID, OrderInput{
			Products:    []OrderLineInput{{ProductID: p.ID, Quantity: 1}},
			TotalAmount: amount,
		})
		require.NoError(t, err)
	}
	page, err := f.orders.List(ctx, repository.ListQuery{Search: "300"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NoError(t, f.orders.Update(ctx, page.Data[0].ID, OrderUpdateInput{Status: "pending"}))

	stats, err := f.orders.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &OrderStats{TotalOrders: 3, TotalIncome: 600, CompletedOrders: 2, PendingOrders: 1}, stats)

	cs, err := f.customers.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(600), cs.TotalRevenues)
	assert.Equal(t, int64(1), cs.TotalCustomers)
}

func TestOrderDetailLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "lines@example.com")
	p := createProduct(t, f, "Akara")
	order, err := f.orders.Store(ctx, c.ID, OrderInput{
		Products:    []OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		TotalAmount: 250,
	})
	require.NoError(t, err)

	d, err := f.details.Create(ctx, OrderDetailInput{OrderID: order.ID, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = f.details.Create(ctx, OrderDetailInput{OrderID: 999, ProductID: p.ID, Quantity: 3})
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))

	require.NoError(t, f.details.Update(ctx, d.ID, OrderDetailUpdateInput{Quantity: 4}))
	shown, err := f.details.Show(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), shown.Quantity)
	require.NotNil(t, shown.Product)
	require.NotNil(t, shown.Order)
	assert.Equal(t, "Akara", shown.Product.Name)

	err = f.details.Update(ctx, d.ID, OrderDetailUpdateInput{})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))

	cnt, err := f.details.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cnt.TotalOrderDetails)

	require.NoError(t, f.details.Destroy(ctx, d.ID))
	_, err = f.details.Show(ctx, d.ID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
}

func TestOrderDetailShowAfterOrderDestroy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "cascade@example.com")
	p := createProduct(t, f, "Suya")
	order, err := f.orders.Store(ctx, c.ID, OrderInput{
		Products:    []OrderLineInput{{ProductID: p.ID, Quantity: 2}},
		TotalAmount: 400,
	})
	require.NoError(t, err)
	require.Len(t, order.OrderDetails, 1)
	lineID := order.OrderDetails[0].ID

	_, err = f.details.Show(ctx, lineID)
	require.NoError(t, err)
	_, err = f.store.Get(ctx, cache.Key(resourceOrderDetail, lineID))
	require.NoError(t, err)

	require.NoError(t, f.orders.Destroy(ctx, order.ID))
	_, err = f.store.Get(ctx, cache.Key(resourceOrderDetail, lineID))
	assert.ErrorIs(t, err, cache.ErrMiss)

	_, err = f.details.Show(ctx, lineID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
}

func TestOrderDetailShowWithStaleCacheEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := createCustomer(t, f, "stale@example.com")
	p := createProduct(t, f, "Chin Chin")
	order, err := f.orders.Store(ctx, c.ID, OrderInput{
		Products:    []OrderLineInput{{ProductID: p.ID, Quantity: 1}},
		TotalAmount: 150,
	})
	require.NoError(t, err)
	lineID := order.OrderDetails[0].ID

	_, err = f.details.Show(ctx, lineID)
	require.NoError(t, err)

	// bypass the service so the line stays cached
	_, err = f.orders.orders.Delete(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.details.Show(ctx, lineID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
	_, err = f.store.Get(ctx, cache.Key(resourceOrderDetail, lineID))
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestSearchIgnoresPerPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createProduct(t, f, "Apple Pie")
	createProduct(t, f, "Banana Bread")

	page, err := f.products.List(ctx, repository.ListQuery{Search: "apple", PerPage: 50})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Apple Pie", page.Data[0].Name)
}
