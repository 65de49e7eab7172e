package sandbox

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/example/storefront-client/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartLineNotFound  = errors.New("cart line not found")
	ErrCartEmpty         = errors.New("cart empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrIntentNotFound    = errors.New("payment intent not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrNotPurchased      = errors.New("only users who bought this product can review it")
)

type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	DateJoined   time.Time
	LastLogin    *time.Time
}

type Variant struct {
	ID    int64           `json:"id"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	// Product is the owning product id, as the catalog serializer nests it
	Product int64 `json:"product"`
}

type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Variants    []*Variant `json:"variants"`
}

type cartLine struct {
	ID        int64
	VariantID int64
	Quantity  int
}

type OrderItem struct {
	VariantID int64
	ProductID int64
	Product   string
	Size      string
	Color     string
	Price     decimal.Decimal
	Quantity  int
}

type Order struct {
	ID        int64
	UserID    int64
	Total     decimal.Decimal
	Status    order.Status
	CreatedAt time.Time
	Items     []OrderItem
}

type intent struct {
	ID           string
	ClientSecret string
	OrderID      int64
	Status       string
}

// State is the in-memory data behind the sandbox API
type State struct {
	mu sync.Mutex

	users    map[int64]*User
	products []*Product
	carts    map[int64][]*cartLine
	orders   map[int64]*Order
	intents  map[string]*intent
	reviews  map[int64][]*review

	nextUserID    int64
	nextLineID    int64
	nextOrderID   int64
	nextProductID int64
	nextVariantID int64
	nextReviewID  int64

	now func() time.Time
}

func NewState() *State {
	return &State{
		users:         make(map[int64]*User),
		carts:         make(map[int64][]*cartLine),
		orders:        make(map[int64]*Order),
		intents:       make(map[string]*intent),
		reviews:       make(map[int64][]*review),
		nextUserID:    1,
		nextLineID:    1,
		nextOrderID:   1,
		nextProductID: 1,
		nextVariantID: 1,
		nextReviewID:  1,
		now:           time.Now,
	}
}

// Users

func (s *State) CreateUser(email, passwordHash, role string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if s.userByEmail(email) != nil {
		return nil, ErrEmailTaken
	}

	u := &User{
		ID:           s.nextUserID,
		Email:        email,
		Username:     email,
		PasswordHash: passwordHash,
		Role:         role,
		IsStaff:      role == "ADMIN",
		IsActive:     true,
		DateJoined:   s.now(),
	}
	s.nextUserID++
	s.users[u.ID] = u
	return u, nil
}

func (s *State) UserByEmail(email string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByEmail(strings.ToLower(strings.TrimSpace(email)))
	if u == nil {
		return nil, false
	}
	copied := *u
	return &copied, true
}

func (s *State) User(id int64) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	copied := *u
	return &copied, true
}

// TouchLogin records a successful login
func (s *State) TouchLogin(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		now := s.now()
		u.LastLogin = &now
	}
}

func (s *State) userByEmail(email string) *User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// Catalog

// AddProduct registers a product and assigns ids to it and its variants
func (s *State) AddProduct(name, description, category string, variants ...Variant) *Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Product{
		ID:          s.nextProductID,
		Name:        name,
		Description: description,
		Category:    category,
		Variants:    []*Variant{},
	}
	s.nextProductID++
	for _, v := range variants {
		p.Variants = append(p.Variants, s.newVariant(p.ID, v))
	}
	s.products = append(s.products, p)
	copied := copyProduct(p)
	return &copied
}

func (s *State) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, copyProduct(p))
	}
	return out
}

func copyProduct(p *Product) Product {
	copied := *p
	copied.Variants = make([]*Variant, len(p.Variants))
	for i, v := range p.Variants {
		vc := *v
		copied.Variants[i] = &vc
	}
	return copied
}

func (s *State) newVariant(productID int64, v Variant) *Variant {
	v.ID = s.nextVariantID
	v.Product = productID
	s.nextVariantID++
	return &v
}

func (s *State) product(id int64) *Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *State) variant(id int64) (*Variant, *Product) {
	for _, p := range s.products {
		for _, v := range p.Variants {
			if v.ID == id {
				return v, p
			}
		}
	}
	return nil, nil
}

// Cart

// CartLine is a cart entry joined with its variant for display
type CartLine struct {
	ID        int64           `json:"id"`
	VariantID int64           `json:"variant"`
	Product   string          `json:"product"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (s *State) Cart(userID int64) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLines(userID)
}

func (s *State) cartLines(userID int64) []CartLine {
	out := make([]CartLine, 0, len(s.carts[userID]))
	for _, line := range s.carts[userID] {
		v, p := s.variant(line.VariantID)
		if v == nil {
			continue
		}
		out = append(out, CartLine{
			ID:        line.ID,
			VariantID: v.ID,
			Product:   p.Name,
			Size:      v.Size,
			Color:     v.Color,
			Price:     v.Price,
			Quantity:  line.Quantity,
		})
	}
	return out
}

// AddToCart increments the user's line for variantID, creating it if needed
func (s *State) AddToCart(userID, variantID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, _ := s.variant(variantID)
	if v == nil {
		return ErrVariantNotFound
	}

	for _, line := range s.carts[userID] {
		if line.VariantID == variantID {
			if line.Quantity+quantity > v.Stock {
				return ErrInsufficientStock
			}
			line.Quantity += quantity
			return nil
		}
	}

	if quantity > v.Stock {
		return ErrInsufficientStock
	}
	s.carts[userID] = append(s.carts[userID], &cartLine{ID: s.nextLineID, VariantID: variantID, Quantity: quantity})
	s.nextLineID++
	return nil
}

func (s *State) UpdateCartLine(userID, lineID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.carts[userID] {
		if line.ID == lineID {
			if v, _ := s.variant(line.VariantID); v != nil && quantity > v.Stock {
				return ErrInsufficientStock
			}
			line.Quantity = quantity
			return nil
		}
	}
	return ErrCartLineNotFound
}

func (s *State) RemoveCartLine(userID, lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	i := slices.IndexFunc(lines, func(l *cartLine) bool { return l.ID == lineID })
	if i < 0 {
		return ErrCartLineNotFound
	}
	s.carts[userID] = slices.Delete(lines, i, i+1)
	return nil
}

// Orders and payments

// CreatePaymentIntent freezes the user's cart into a PENDING order and opens an intent for it
func (s *State) CreatePaymentIntent(userID int64) (clientSecret string, orderID int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cartLines(userID)
	if len(lines) == 0 {
		return "", 0, ErrCartEmpty
	}

	o := &Order{
		ID:        s.nextOrderID,
		UserID:    userID,
		Total:     decimal.Zero,
		Status:    order.StatusPending,
		CreatedAt: s.now(),
	}
	s.nextOrderID++
	for _, line := range lines {
		_, p := s.variant(line.VariantID)
		o.Items = append(o.Items, OrderItem{
			VariantID: line.VariantID,
			ProductID: p.ID,
			Product:   line.Product,
			Size:      line.Size,
			Color:     line.Color,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
		o.Total = o.Total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	o.Total = o.Total.Round(2)
	s.orders[o.ID] = o

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	in := &intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		OrderID:      o.ID,
		Status:       "requires_payment_method",
	}
	s.intents[id] = in
	return in.ClientSecret, o.ID, nil
}

// ConfirmIntent settles an intent. Success marks the order PAID, takes the stock and clears the cart.
func (s *State) ConfirmIntent(intentID, clientSecret, outcome string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[intentID]
	if !ok || in.ClientSecret != clientSecret {
		return "", ErrIntentNotFound
	}
	if in.Status == "succeeded" {
		return in.Status, nil
	}

	in.Status = outcome
	if outcome != "succeeded" {
		return in.Status, nil
	}

	o := s.orders[in.OrderID]
	if err := s.setStatus(o, order.StatusPaid); err != nil {
		return "", err
	}
	for _, item := range o.Items {
		if v, _ := s.variant(item.VariantID); v != nil {
			v.Stock = max(v.Stock-item.Quantity, 0)
		}
	}
	delete(s.carts, o.UserID)
	return in.Status, nil
}

// OrdersFor lists a user's orders newest first
func (s *State) OrdersFor(userID int64) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	slices.SortFunc(out, func(a, b Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out
}

// SetOrderStatus is the back-office status change; any known status may be set
func (s *State) SetOrderStatus(orderID int64, status order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (s *State) setStatus(o *Order, target order.Status) error {
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("order %d: %w", o.ID, o.Status.TransitionError(target))
	}
	o.Status = target
	return nil
}

// Accounts

// ProfileChanges holds the editable profile fields; nil fields are left as they are
type ProfileChanges struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
}

func (s *State) UpdateProfile(id int64, changes ProfileChanges) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if changes.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*changes.Email))
		if other := s.userByEmail(email); other != nil && other.ID != id {
			return nil, ErrEmailTaken
		}
		u.Email = email
	}
	if changes.Username != nil {
		u.Username = *changes.Username
	}
	if changes.FirstName != nil {
		u.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = *changes.LastName
	}
	copied := *u
	return &copied, nil
}

func (s *State) SetPassword(id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// Users lists every account, newest first
func (s *State) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b User) int { return int(b.ID - a.ID) })
	return out
}

// UserChanges is the back-office account patch; nil fields are left as they are
type UserChanges struct {
	Role     *string
	IsActive *bool
	IsStaff  *bool
}

func (s *State) UpdateUser(id int64, changes UserChanges) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	if changes.IsActive != nil {
		u.IsActive = *changes.IsActive
	}
	if changes.IsStaff != nil {
		u.IsStaff = *changes.IsStaff
	}
	copied := *u
	return &copied, nil
}

// Back-office catalog

// ProductChanges patches a product. A nil Variants keeps the variants; otherwise
// listed variants with a known id are updated, the rest are created and any
// variant left out is deleted.
type ProductChanges struct {
	Name        *string
	Description *string
	Category    *string
	Variants    []Variant
}

// ProductsNewestFirst is the back-office catalog listing
func (s *State) ProductsNewestFirst() []Product {
	out := s.Products()
	slices.SortFunc(out, func(a, b Product) int { return int(b.ID - a.ID) })
	return out
}

func (s *State) UpdateProduct(id int64, changes ProductChanges) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.product(id)
	if p == nil {
		return nil, ErrProductNotFound
	}
	if changes.Name != nil {
		p.Name = *changes.Name
	}
	if changes.Description != nil {
		p.Description = *changes.Description
	}
	if changes.Category != nil {
		p.Category = *changes.Category
	}

	if changes.Variants != nil {
		existing := make(map[int64]*Variant, len(p.Variants))
		for _, v := range p.Variants {
			existing[v.ID] = v
		}

		kept := make([]*Variant, 0, len(changes.Variants))
		for _, in := range changes.Variants {
			if v, ok := existing[in.ID]; ok && in.ID != 0 {
				v.Size, v.Color, v.Price, v.Stock = in.Size, in.Color, in.Price, in.Stock
				kept = append(kept, v)
				delete(existing, in.ID)
				continue
			}
			kept = append(kept, s.newVariant(p.ID, in))
		}
		p.Variants = kept

		removed := make(map[int64]bool, len(existing))
		for variantID := range existing {
			removed[variantID] = true
		}
		s.dropCartLines(removed)
	}

	copied := copyProduct(p)
	return &copied, nil
}

// DeleteProduct removes a product with its variants, their cart lines and its reviews.
// Orders keep their item snapshots.
func (s *State) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.products, func(p *Product) bool { return p.ID == id })
	if i < 0 {
		return ErrProductNotFound
	}

	removed := make(map[int64]bool, len(s.products[i].Variants))
	for _, v := range s.products[i].Variants {
		removed[v.ID] = true
	}
	s.products = slices.Delete(s.products, i, i+1)
	s.dropCartLines(removed)
	delete(s.reviews, id)
	return nil
}

func (s *State) dropCartLines(variantIDs map[int64]bool) {
	if len(variantIDs) == 0 {
		return
	}
	for userID, lines := range s.carts {
		s.carts[userID] = slices.DeleteFunc(lines, func(l *cartLine) bool { return variantIDs[l.VariantID] })
	}
}

// Reviews

type review struct {
	ID        int64
	ProductID int64
	UserID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Review is a product review joined with its author's email
type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Reviews lists a product's reviews newest first; an unknown product has none
func (s *State) Reviews(productID int64) []Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Review, 0, len(s.reviews[productID]))
	for _, r := range s.reviews[productID] {
		out = append(out, s.reviewView(r))
	}
	slices.SortFunc(out, func(a, b Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out
}

// UpsertReview stores the user's single review of a product, replacing an earlier one.
// created reports whether the review is new.
func (s *State) UpsertReview(userID, productID int64, rating int, comment string) (Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.product(productID) == nil {
		return Review{}, false, ErrProductNotFound
	}
	if !s.hasPurchased(userID, productID) {
		return Review{}, false, ErrNotPurchased
	}

	for _, r := range s.reviews[productID] {
		if r.UserID == userID {
			r.Rating, r.Comment = rating, comment
			return s.reviewView(r), false, nil
		}
	}

	r := &review{
		ID:        s.nextReviewID,
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	s.nextReviewID++
	s.reviews[productID] = append(s.reviews[productID], r)
	return s.reviewView(r), true, nil
}

// hasPurchased reports whether a paid, shipped or delivered order of the user holds the product
func (s *State) hasPurchased(userID, productID int64) bool {
	for _, o := range s.orders {
		if o.UserID != userID {
			continue
		}
		switch o.Status {
		case order.StatusPaid, order.StatusShipped, order.StatusDelivered:
		default:
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}

func (s *State) reviewView(r *review) Review {
	out := Review{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if u, ok := s.users[r.UserID]; ok {
		out.UserEmail = u.Email
	}
	return out
}
