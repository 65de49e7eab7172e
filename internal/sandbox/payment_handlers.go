package sandbox

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Test payment methods understood by the confirm endpoint
const (
	PaymentMethodVisa           = "pm_card_visa"
	PaymentMethodDeclined       = "pm_card_chargeDeclined"
	PaymentMethodAuthentication = "pm_card_authenticationRequired"
)

type PaymentHandlers struct {
	state *State
}

func NewPaymentHandlers(state *State) *PaymentHandlers {
	return &PaymentHandlers{state: state}
}

type stripeError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ConfirmIntent mirrors the processor's confirm call.
// A successful confirmation settles the order the way the payment webhook does.
func (h *PaymentHandlers) ConfirmIntent(w http.ResponseWriter, r *http.Request) {
	if key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); !strings.HasPrefix(key, "pk_") {
		respondStripeError(w, http.StatusUnauthorized, stripeError{Type: "invalid_request_error", Message: "You did not provide a valid API key."})
		return
	}
	if err := r.ParseForm(); err != nil {
		respondStripeError(w, http.StatusBadRequest, stripeError{Type: "invalid_request_error", Message: "Malformed request body."})
		return
	}

	intentID := chi.URLParam(r, "id")
	method := r.PostForm.Get("payment_method")

	var outcome string
	switch method {
	case PaymentMethodVisa:
		outcome = "succeeded"
	case PaymentMethodAuthentication:
		outcome = "requires_action"
	case PaymentMethodDeclined:
		outcome = "requires_payment_method"
	default:
		respondStripeError(w, http.StatusBadRequest, stripeError{
			Type:    "invalid_request_error",
			Code:    "resource_missing",
			Message: "No such PaymentMethod: '" + method + "'",
		})
		return
	}

	status, err := h.state.ConfirmIntent(intentID, r.PostForm.Get("client_secret"), outcome)
	if errors.Is(err, ErrIntentNotFound) {
		respondStripeError(w, http.StatusNotFound, stripeError{
			Type:    "invalid_request_error",
			Code:    "resource_missing",
			Message: "No such payment_intent: '" + intentID + "'",
		})
		return
	}
	if err != nil {
		log.Printf("[Sandbox] Failed to settle %s: %v", intentID, err)
		respondStripeError(w, http.StatusInternalServerError, stripeError{Type: "api_error", Message: "An unknown error occurred."})
		return
	}

	if method == PaymentMethodDeclined {
		respondStripeError(w, http.StatusPaymentRequired, stripeError{
			Type:    "card_error",
			Code:    "card_declined",
			Message: "Your card was declined.",
		})
		return
	}

	log.Printf("[Sandbox] Payment intent %s is %s", intentID, status)
	respondJSON(w, http.StatusOK, map[string]string{"id": intentID, "object": "payment_intent", "status": status})
}

func respondStripeError(w http.ResponseWriter, status int, e stripeError) {
	respondJSON(w, status, map[string]stripeError{"error": e})
}
