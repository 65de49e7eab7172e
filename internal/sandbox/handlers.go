package sandbox

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/example/storefront-client/internal/domain/order"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	state *State
}

func NewHandlers(state *State) *Handlers {
	return &Handlers{state: state}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state.Products())
}

// Cart Handlers

type addToCartRequest struct {
	Variant  int64 `json:"variant"`
	Quantity *int  `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.state.Cart(u.ID))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		respondFieldError(w, "quantity", "Ensure this value is greater than or equal to 1.")
		return
	}

	if err := h.state.AddToCart(u.ID, req.Variant, quantity); err != nil {
		respondStateError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *Handlers) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity < 1 {
		respondFieldError(w, "quantity", "Ensure this value is greater than or equal to 1.")
		return
	}

	if err := h.state.UpdateCartLine(u.ID, lineID, req.Quantity); err != nil {
		respondStateError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.state.RemoveCartLine(u.ID, lineID); err != nil {
		respondStateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Order Handlers

type orderItemResponse struct {
	Product  string          `json:"product"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type orderResponse struct {
	ID               int64               `json:"id"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Status           order.Status        `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	InvoiceNumber    string              `json:"invoice_number"`
	InvoiceAvailable bool                `json:"invoice_available"`
	Items            []orderItemResponse `json:"items"`
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}

	orders := h.state.OrdersFor(u.ID)
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp := orderResponse{
			ID:               o.ID,
			TotalAmount:      o.Total,
			Status:           o.Status,
			CreatedAt:        o.CreatedAt,
			InvoiceNumber:    order.InvoiceNumber(o.ID, o.CreatedAt),
			InvoiceAvailable: o.Status.InvoiceAvailable(),
			Items:            make([]orderItemResponse, 0, len(o.Items)),
		}
		for _, item := range o.Items {
			resp.Items = append(resp.Items, orderItemResponse{
				Product:  item.Product,
				Size:     item.Size,
				Color:    item.Color,
				Price:    item.Price,
				Quantity: item.Quantity,
			})
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

// CreatePaymentIntent turns the user's cart into a PENDING order.
// The amount in the request body is ignored; the order total is computed from the cart.
func (h *Handlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}

	secret, orderID, err := h.state.CreatePaymentIntent(u.ID)
	if err != nil {
		respondStateError(w, err)
		return
	}
	log.Printf("[Sandbox] Created order %d for user %d", orderID, u.ID)
	respondJSON(w, http.StatusOK, map[string]any{"client_secret": secret, "order_id": orderID})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus is the admin status endpoint
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid status", "allowed": order.AllStatuses})
		return
	}

	if err := h.state.SetOrderStatus(orderID, status); err != nil {
		respondStateError(w, err)
		return
	}
	log.Printf("[Sandbox] Order %d set to %s", orderID, status)
	respondJSON(w, http.StatusOK, map[string]any{"status": "updated", "order_id": orderID, "new_status": status})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondJSONError(w, "Not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func respondStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrVariantNotFound):
		respondJSONError(w, "Variant not found", http.StatusNotFound)
	case errors.Is(err, ErrCartLineNotFound), errors.Is(err, ErrOrderNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	case errors.Is(err, ErrInsufficientStock):
		respondJSONError(w, "Insufficient stock", http.StatusBadRequest)
	case errors.Is(err, ErrCartEmpty):
		respondJSONError(w, "Cart empty", http.StatusBadRequest)
	case errors.Is(err, ErrProductNotFound):
		respondJSONError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, ErrUserNotFound):
		respondJSONError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, ErrNotPurchased):
		respondJSON(w, http.StatusForbidden, map[string]string{"detail": "Only users who bought this product can review it."})
	default:
		log.Printf("[Sandbox] Unexpected error: %v", err)
		respondJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
