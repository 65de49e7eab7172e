package sandbox

import (
	"log"
	"net/http"
	"time"

	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/sandbox/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server bundles the sandbox state with its HTTP handlers
type Server struct {
	State    *State
	JWT      *auth.JWTService
	Hasher   *auth.PasswordHasher
	handlers *Handlers
	auth     *AuthHandlers
	payments *PaymentHandlers
}

func NewServer(state *State, jwtService *auth.JWTService, hasher *auth.PasswordHasher) *Server {
	return &Server{
		State:    state,
		JWT:      jwtService,
		Hasher:   hasher,
		handlers: NewHandlers(state),
		auth:     NewAuthHandlers(state, jwtService, hasher),
		payments: NewPaymentHandlers(state),
	}
}

// CreateAdmin adds a back-office account
func (s *Server) CreateAdmin(email, password string) error {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}
	_, err = s.State.CreateUser(email, hash, "ADMIN")
	return err
}

// Router serves the commerce API under /api/ and the payment processor under /v1/
func (s *Server) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(withLogging)
	if requestTimeout > 0 {
		r.Use(chimw.Timeout(requestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login/", s.auth.Login)
		r.Post("/auth/register/", s.auth.Register)
		r.Get("/products/", s.handlers.GetProducts)
		r.Get("/products/{id}/reviews/", s.handlers.GetProductReviews)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(s.JWT))

			r.Get("/auth/me/", s.auth.Me)
			r.Patch("/auth/me/", s.auth.UpdateMe)
			r.Post("/auth/change-password/", s.auth.ChangePassword)

			r.Post("/products/{id}/reviews/", s.handlers.SubmitReview)

			r.Get("/cart/", s.handlers.GetCart)
			r.Post("/cart/", s.handlers.AddToCart)
			r.Patch("/cart/{id}/", s.handlers.UpdateCartLine)
			r.Delete("/cart/{id}/", s.handlers.RemoveCartLine)

			r.Get("/orders/", s.handlers.GetOrders)
			r.Post("/orders/create-payment-intent/", s.handlers.CreatePaymentIntent)

			r.With(middleware.RequireAdmin).Patch("/orders/admin/orders/{id}/status/", s.handlers.UpdateOrderStatus)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/admin/products/", s.handlers.AdminListProducts)
				r.Post("/admin/products/", s.handlers.AdminCreateProduct)
				r.Patch("/admin/products/{id}/", s.handlers.AdminUpdateProduct)
				r.Delete("/admin/products/{id}/", s.handlers.AdminDeleteProduct)

				r.Get("/auth/admin/users/", s.handlers.AdminListUsers)
				r.Patch("/auth/admin/users/{id}/", s.handlers.AdminUpdateUser)
			})
		})
	})

	r.Post("/v1/payment_intents/{id}/confirm", s.payments.ConfirmIntent)

	return r
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[Sandbox] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
