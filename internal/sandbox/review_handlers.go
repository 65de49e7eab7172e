package sandbox

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// GetProductReviews is public
func (h *Handlers) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.state.Reviews(productID))
}

// SubmitReview creates the user's review with 201 or replaces it with 200
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.state)
	if !ok {
		return
	}
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondFieldError(w, "rating", "Ensure this value is between 1 and 5.")
		return
	}

	review, created, err := h.state.UpsertReview(u.ID, productID, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		respondStateError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	log.Printf("[Sandbox] Review %d for product %d by user %d", review.ID, productID, u.ID)
	respondJSON(w, status, review)
}
