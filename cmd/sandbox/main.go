package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/config"
	"github.com/example/storefront-client/internal/sandbox"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("[Sandbox] %v", err)
	}
	if err := cfg.ValidateSandbox(); err != nil {
		log.Fatalf("[Sandbox] %v", err)
	}

	log.Println("[Sandbox] ========================================")
	log.Println("[Sandbox] Storefront sandbox shop")
	log.Println("[Sandbox] ========================================")
	log.Printf("[Sandbox] Token TTL: %s", cfg.Sandbox.TokenTTL)

	state := sandbox.NewState()
	if cfg.Sandbox.Seed {
		sandbox.SeedCatalog(state)
		log.Printf("[Sandbox] Seeded %d products", len(state.Products()))
	}

	srv := sandbox.NewServer(
		state,
		auth.NewJWTService(cfg.Sandbox.JWTSecret, cfg.Sandbox.TokenTTL),
		auth.NewPasswordHasher(bcrypt.DefaultCost),
	)

	if cfg.Sandbox.AdminEmail != "" && cfg.Sandbox.AdminPassword != "" {
		if err := srv.CreateAdmin(cfg.Sandbox.AdminEmail, cfg.Sandbox.AdminPassword); err != nil {
			log.Fatalf("[Sandbox] Failed to create admin: %v", err)
		}
		log.Printf("[Sandbox] Admin account: %s", cfg.Sandbox.AdminEmail)
	}

	server := &http.Server{
		Addr:              cfg.Sandbox.Addr,
		Handler:           srv.Router(cfg.Timeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[Sandbox] Server started on %s", cfg.Sandbox.Addr)
		log.Printf("[Sandbox] Point the client at STOREFRONT_API_URL=http://localhost%s/api/ STOREFRONT_PAYMENT_URL=http://localhost%s", cfg.Sandbox.Addr, cfg.Sandbox.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Sandbox] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Sandbox] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
