package command

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/domain/session"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
)

func (h *Handler) requireSession(ctx context.Context) (*session.Session, error) {
	s, err := h.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrLoginRequired
	}
	return s, nil
}

// UpdateProfile patches the signed-in account.
// The stored session follows an email change so later merges use the new identity.
func (h *Handler) UpdateProfile(ctx context.Context, cmd UpdateProfile) (*commerce.Profile, error) {
	s, err := h.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if cmd.Email == nil && cmd.Username == nil && cmd.FirstName == nil && cmd.LastName == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidCommand)
	}
	if cmd.Email != nil && !strings.Contains(*cmd.Email, "@") {
		return nil, fmt.Errorf("%w: %q is not an email address", ErrInvalidCommand, *cmd.Email)
	}

	profile, err := h.commerce.UpdateProfile(ctx, commerce.ProfileUpdate{
		Email:     cmd.Email,
		Username:  cmd.Username,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
	})
	if err != nil {
		return nil, err
	}

	if profile.Email != "" && profile.Email != s.Email {
		updated := *s
		updated.Email = profile.Email
		if err := h.sessions.Start(ctx, updated); err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
	}
	log.Printf("[Account] Profile updated for %s", profile.Email)
	return profile, nil
}

func (h *Handler) ChangePassword(ctx context.Context, cmd ChangePassword) error {
	s, err := h.requireSession(ctx)
	if err != nil {
		return err
	}
	if cmd.CurrentPassword == "" {
		return fmt.Errorf("%w: current password is required", ErrInvalidCommand)
	}
	if err := auth.ValidatePassword(cmd.NewPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	if err := h.commerce.ChangePassword(ctx, cmd.CurrentPassword, cmd.NewPassword); err != nil {
		return err
	}
	log.Printf("[Account] Password changed for %s", s.Email)
	return nil
}

// SubmitReview creates or replaces the account's review of a product.
// The shop only accepts reviews from accounts that bought the product.
func (h *Handler) SubmitReview(ctx context.Context, cmd SubmitReview) (*commerce.Review, error) {
	if _, err := h.requireSession(ctx); err != nil {
		return nil, err
	}
	if cmd.ProductID <= 0 {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidCommand)
	}
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidCommand, cmd.Rating)
	}

	review, err := h.commerce.SubmitReview(ctx, cmd.ProductID, commerce.ReviewInput{
		Rating:  cmd.Rating,
		Comment: strings.TrimSpace(cmd.Comment),
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Review] Product %d rated %d", cmd.ProductID, review.Rating)
	return review, nil
}
