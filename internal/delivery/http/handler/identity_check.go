package handler

import (
	"context"
	"net/http"

	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/pkg/response"
)

// ensureUnique rejects an email or phone already used by another profile.
// selfID is empty on creation.
func ensureUnique(ctx context.Context, w http.ResponseWriter, identity usecase.IdentityUsecase, email, phone, selfID string) bool {
	unique, err := identity.IsEmailUnique(ctx, email, selfID)
	if err != nil {
		response.FromError(w, err, "Failed to check email")
		return false
	}
	if !unique {
		response.Conflict(w, "Email already exists")
		return false
	}

	unique, err = identity.IsPhoneUnique(ctx, phone, selfID)
	if err != nil {
		response.FromError(w, err, "Failed to check phone")
		return false
	}
	if !unique {
		response.Conflict(w, "Phone already exists")
		return false
	}
	return true
}
