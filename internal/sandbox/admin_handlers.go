package sandbox

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type variantRequest struct {
	ID    int64           `json:"id"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type productRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Variants    []variantRequest `json:"variants"`
}

// validate writes a field error and reports false when the request cannot be applied
func (req *productRequest) validate(w http.ResponseWriter, creating bool) bool {
	if (req.Name != nil && strings.TrimSpace(*req.Name) == "") || (creating && req.Name == nil) {
		respondFieldError(w, "name", "This field may not be blank.")
		return false
	}
	if req.Category != nil && !slices.Contains(Categories, *req.Category) {
		respondFieldError(w, "category", "\""+*req.Category+"\" is not a valid choice.")
		return false
	}
	for _, v := range req.Variants {
		if v.Price.IsNegative() {
			respondFieldError(w, "variants", "Ensure price is greater than or equal to 0.")
			return false
		}
		if v.Stock < 0 {
			respondFieldError(w, "variants", "Ensure stock is greater than or equal to 0.")
			return false
		}
	}
	return true
}

func (req *productRequest) variants() []Variant {
	if req.Variants == nil {
		return nil
	}
	out := make([]Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		out = append(out, Variant{ID: v.ID, Size: v.Size, Color: v.Color, Price: v.Price.Round(2), Stock: v.Stock})
	}
	return out
}

func decodeProduct(w http.ResponseWriter, r *http.Request, creating bool) (*productRequest, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if !req.validate(w, creating) {
		return nil, false
	}
	return &req, true
}

// AdminListProducts lists the catalog newest first
func (h *Handlers) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state.ProductsNewestFirst())
}

func (h *Handlers) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r, true)
	if !ok {
		return
	}

	category := CategoryBeauty
	if req.Category != nil {
		category = *req.Category
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	// a client-sent variant id means nothing on create
	variants := req.variants()
	for i := range variants {
		variants[i].ID = 0
	}
	p := h.state.AddProduct(strings.TrimSpace(*req.Name), description, category, variants...)
	log.Printf("[Sandbox] Created product %d", p.ID)
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeProduct(w, r, false)
	if !ok {
		return
	}

	changes := ProductChanges{Description: req.Description, Category: req.Category, Variants: req.variants()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		changes.Name = &name
	}

	p, err := h.state.UpdateProduct(productID, changes)
	if err != nil {
		respondStateError(w, err)
		return
	}
	log.Printf("[Sandbox] Updated product %d", p.ID)
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.state.DeleteProduct(productID); err != nil {
		respondStateError(w, err)
		return
	}
	log.Printf("[Sandbox] Deleted product %d", productID)
	w.WriteHeader(http.StatusNoContent)
}

type adminUserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
}

func toAdminUserResponse(u *User) adminUserResponse {
	return adminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
	}
}

// AdminListUsers lists accounts newest first
func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.state.Users()
	out := make([]adminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, toAdminUserResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

type userRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	IsStaff  *bool   `json:"is_staff"`
}

func (h *Handlers) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role != nil && *req.Role != "ADMIN" && *req.Role != "CUSTOMER" {
		respondFieldError(w, "role", "\""+*req.Role+"\" is not a valid choice.")
		return
	}

	u, err := h.state.UpdateUser(userID, UserChanges{Role: req.Role, IsActive: req.IsActive, IsStaff: req.IsStaff})
	if err != nil {
		respondStateError(w, err)
		return
	}
	log.Printf("[Sandbox] Updated user %d", u.ID)
	respondJSON(w, http.StatusOK, toAdminUserResponse(u))
}
