package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/shopspring/decimal"
)

// MockCommerce is an in-memory stand-in for the commerce API client.
// The remote cart behaves like the real one: adding a variant already present increments it.
type MockCommerce struct {
	mu         sync.Mutex
	lines      []commerce.CartLine
	nextLineID int64

	Catalog []commerce.Product
	Orders  []commerce.Order
	Auth    *commerce.AuthResult
	Intent  *commerce.PaymentIntent
	Profile *commerce.Profile
	Reviews map[int64][]commerce.Review
	Users   []commerce.AdminUser

	// For tracking calls in tests
	LoginCalls         []string
	RegisterCalls      []string
	AddCalls           []AddCall
	UpdateCalls        []UpdateCall
	DeleteCalls        []int64
	ListCartCalls      int
	IntentCalls        []decimal.Decimal
	StatusCalls        []StatusCall
	ListOrdersCalls    int
	ListProductsCalls  int
	ProfileCalls       []commerce.ProfileUpdate
	PasswordCalls      []PasswordCall
	ReviewCalls        []ReviewCall
	CreateProductCalls []commerce.ProductInput
	UpdateProductCalls []ProductUpdateCall
	DeleteProductCalls []int64
	UpdateUserCalls    []UserUpdateCall

	LoginErr        error
	RegisterErr     error
	AddErr          error
	AddErrOnCall    map[int]error // 1-based call number
	UpdateErr       error
	DeleteErr       error
	ListCartErr     error
	IntentErr       error
	StatusErr       error
	ListOrdersErr   error
	ListProductsErr error
	ProfileErr      error
	PasswordErr     error
	ReviewErr       error
	AdminErr        error

	// AddStarted receives the call number of each AddCartLine before AddGate is awaited
	AddStarted chan int
	AddGate    chan struct{}
	// IntentGate, when set, blocks CreatePaymentIntent until closed
	IntentGate chan struct{}
}

type AddCall struct {
	VariantID int64
	Quantity  int
}

type UpdateCall struct {
	LineID   int64
	Quantity int
}

type StatusCall struct {
	OrderID int64
	Status  string
}

type PasswordCall struct {
	Current string
	New     string
}

type ReviewCall struct {
	ProductID int64
	Review    commerce.ReviewInput
}

type ProductUpdateCall struct {
	ProductID int64
	Input     commerce.ProductInput
}

type UserUpdateCall struct {
	UserID int64
	Update commerce.AdminUserUpdate
}

func NewMockCommerce() *MockCommerce {
	return &MockCommerce{
		nextLineID: 1,
		Auth:       &commerce.AuthResult{Access: "test-token", Role: "CUSTOMER", Email: "ada@example.com"},
		Intent:     &commerce.PaymentIntent{ClientSecret: "cs_1", OrderID: 42},
		Profile:    &commerce.Profile{ID: 1, Email: "ada@example.com", Role: "CUSTOMER", IsActive: true},
		Reviews:    make(map[int64][]commerce.Review),
	}
}

// SeedLine puts a line directly into the remote cart
func (m *MockCommerce) SeedLine(variantID int64, quantity int, price decimal.Decimal) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextLineID
	m.nextLineID++
	m.lines = append(m.lines, commerce.CartLine{ID: id, VariantID: variantID, UnitPrice: price, Quantity: quantity})
	return id
}

// RemoteLines returns a copy of the remote cart
func (m *MockCommerce) RemoteLines() []commerce.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]commerce.CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

// AddCount returns the number of AddCartLine calls so far
func (m *MockCommerce) AddCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AddCalls)
}

// IntentCount returns the number of CreatePaymentIntent calls so far
func (m *MockCommerce) IntentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.IntentCalls)
}

func (m *MockCommerce) Login(ctx context.Context, email, password string) (*commerce.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalls = append(m.LoginCalls, email)
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	res := *m.Auth
	return &res, nil
}

func (m *MockCommerce) Register(ctx context.Context, email, password string) (*commerce.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls = append(m.RegisterCalls, email)
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}
	return &commerce.AuthResult{Access: m.Auth.Access}, nil
}

func (m *MockCommerce) ListCart(ctx context.Context) ([]commerce.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCartCalls++
	if m.ListCartErr != nil {
		return nil, m.ListCartErr
	}
	out := make([]commerce.CartLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *MockCommerce) AddCartLine(ctx context.Context, variantID int64, quantity int) error {
	m.mu.Lock()
	m.AddCalls = append(m.AddCalls, AddCall{VariantID: variantID, Quantity: quantity})
	n := len(m.AddCalls)
	started, gate := m.AddStarted, m.AddGate
	m.mu.Unlock()

	if started != nil {
		started <- n
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.AddErrOnCall[n]; err != nil {
		return err
	}
	if m.AddErr != nil {
		return m.AddErr
	}
	for i := range m.lines {
		if m.lines[i].VariantID == variantID {
			m.lines[i].Quantity += quantity
			return nil
		}
	}
	line := commerce.CartLine{ID: m.nextLineID, VariantID: variantID, Quantity: quantity}
	if v, p, ok := m.findVariant(variantID); ok {
		line.ProductName, line.Size, line.Color, line.UnitPrice = p.Name, v.Size, v.Color, v.Price
	}
	m.nextLineID++
	m.lines = append(m.lines, line)
	return nil
}

func (m *MockCommerce) UpdateCartLine(ctx context.Context, lineID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{LineID: lineID, Quantity: quantity})
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.lines {
		if m.lines[i].ID == lineID {
			m.lines[i].Quantity = quantity
			return nil
		}
	}
	return &commerce.APIError{StatusCode: 404, Message: "not found"}
}

func (m *MockCommerce) DeleteCartLine(ctx context.Context, lineID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, lineID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i := range m.lines {
		if m.lines[i].ID == lineID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return &commerce.APIError{StatusCode: 404, Message: "not found"}
}

func (m *MockCommerce) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*commerce.PaymentIntent, error) {
	m.mu.Lock()
	m.IntentCalls = append(m.IntentCalls, amount)
	gate := m.IntentGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IntentErr != nil {
		return nil, m.IntentErr
	}
	intent := *m.Intent
	return &intent, nil
}

func (m *MockCommerce) ListOrders(ctx context.Context) ([]commerce.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListOrdersCalls++
	if m.ListOrdersErr != nil {
		return nil, m.ListOrdersErr
	}
	return append([]commerce.Order(nil), m.Orders...), nil
}

func (m *MockCommerce) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListProductsCalls++
	if m.ListProductsErr != nil {
		return nil, m.ListProductsErr
	}
	return append([]commerce.Product(nil), m.Catalog...), nil
}

func (m *MockCommerce) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*commerce.StatusUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls = append(m.StatusCalls, StatusCall{OrderID: orderID, Status: status})
	if m.StatusErr != nil {
		return nil, m.StatusErr
	}
	return &commerce.StatusUpdate{OrderID: orderID, NewStatus: status}, nil
}

func (m *MockCommerce) findVariant(variantID int64) (commerce.Variant, commerce.Product, bool) {
	for _, p := range m.Catalog {
		for _, v := range p.Variants {
			if v.ID == variantID {
				return v, p, true
			}
		}
	}
	return commerce.Variant{}, commerce.Product{}, false
}

func (m *MockCommerce) Me(ctx context.Context) (*commerce.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	p := *m.Profile
	return &p, nil
}

// UpdateProfile applies the set fields to Profile
func (m *MockCommerce) UpdateProfile(ctx context.Context, update commerce.ProfileUpdate) (*commerce.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileCalls = append(m.ProfileCalls, update)
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	for dst, src := range map[*string]*string{
		&m.Profile.Email:     update.Email,
		&m.Profile.Username:  update.Username,
		&m.Profile.FirstName: update.FirstName,
		&m.Profile.LastName:  update.LastName,
	} {
		if src != nil {
			*dst = *src
		}
	}
	p := *m.Profile
	return &p, nil
}

func (m *MockCommerce) ChangePassword(ctx context.Context, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PasswordCalls = append(m.PasswordCalls, PasswordCall{Current: current, New: next})
	return m.PasswordErr
}

func (m *MockCommerce) ListProductReviews(ctx context.Context, productID int64) ([]commerce.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReviewErr != nil {
		return nil, m.ReviewErr
	}
	return append([]commerce.Review(nil), m.Reviews[productID]...), nil
}

func (m *MockCommerce) SubmitReview(ctx context.Context, productID int64, review commerce.ReviewInput) (*commerce.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReviewCalls = append(m.ReviewCalls, ReviewCall{ProductID: productID, Review: review})
	if m.ReviewErr != nil {
		return nil, m.ReviewErr
	}
	r := commerce.Review{
		ID:        int64(len(m.ReviewCalls)),
		ProductID: productID,
		UserEmail: m.Profile.Email,
		Rating:    review.Rating,
		Comment:   review.Comment,
	}
	m.Reviews[productID] = append([]commerce.Review{r}, m.Reviews[productID]...)
	return &r, nil
}

func (m *MockCommerce) AdminListProducts(ctx context.Context) ([]commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AdminErr != nil {
		return nil, m.AdminErr
	}
	return append([]commerce.Product(nil), m.Catalog...), nil
}

func (m *MockCommerce) AdminCreateProduct(ctx context.Context, in commerce.ProductInput) (*commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateProductCalls = append(m.CreateProductCalls, in)
	if m.AdminErr != nil {
		return nil, m.AdminErr
	}
	p := commerce.Product{ID: int64(len(m.Catalog) + 1), Name: in.Name, Description: in.Description, Category: in.Category}
	for i, v := range in.Variants {
		p.Variants = append(p.Variants, commerce.Variant{ID: p.ID*100 + int64(i) + 1, Size: v.Size, Color: v.Color, Price: v.Price, Stock: v.Stock})
	}
	m.Catalog = append(m.Catalog, p)
	return &p, nil
}

func (m *MockCommerce) AdminUpdateProduct(ctx context.Context, productID int64, in commerce.ProductInput) (*commerce.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProductCalls = append(m.UpdateProductCalls, ProductUpdateCall{ProductID: productID, Input: in})
	if m.AdminErr != nil {
		return nil, m.AdminErr
	}
	for i := range m.Catalog {
		if m.Catalog[i].ID == productID {
			if in.Name != "" {
				m.Catalog[i].Name = in.Name
			}
			p := m.Catalog[i]
			return &p, nil
		}
	}
	return nil, &commerce.APIError{StatusCode: 404, Message: "Product not found"}
}

func (m *MockCommerce) AdminDeleteProduct(ctx context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteProductCalls = append(m.DeleteProductCalls, productID)
	return m.AdminErr
}

func (m *MockCommerce) AdminListUsers(ctx context.Context) ([]commerce.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AdminErr != nil {
		return nil, m.AdminErr
	}
	return append([]commerce.AdminUser(nil), m.Users...), nil
}

func (m *MockCommerce) AdminUpdateUser(ctx context.Context, userID int64, update commerce.AdminUserUpdate) (*commerce.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateUserCalls = append(m.UpdateUserCalls, UserUpdateCall{UserID: userID, Update: update})
	if m.AdminErr != nil {
		return nil, m.AdminErr
	}
	u := commerce.AdminUser{ID: userID, Email: "user@example.com", IsActive: true}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	if update.IsStaff != nil {
		u.IsStaff = *update.IsStaff
	}
	return &u, nil
}
