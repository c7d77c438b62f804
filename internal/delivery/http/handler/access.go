package handler

import (
	"context"
	"strings"

	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/domain/entity"
)

// canManage reports whether the caller is staff or owns the profile ownerID.
func canManage(ctx context.Context, ownerID string) bool {
	if role, ok := middleware.GetRoleFromContext(ctx); ok && role.IsStaff() {
		return true
	}
	return isOwner(ctx, ownerID)
}

func isOwner(ctx context.Context, ownerID string) bool {
	profileID, ok := middleware.GetProfileIDFromContext(ctx)
	return ok && ownerID != "" && profileID == ownerID
}

// canManageRole reports whether the caller may create, change or remove a
// profile holding role. Staff profiles belong to Admins, or to themselves.
func canManageRole(ctx context.Context, role entity.Role, ownerID string) bool {
	if !role.IsStaff() {
		return true
	}
	if caller, ok := middleware.GetRoleFromContext(ctx); ok && caller == entity.RoleAdmin {
		return true
	}
	return isOwner(ctx, ownerID)
}

// canSetEmail reports whether a profile update may change its email from
// current to next. Owners change their own email through PUT /auth/email,
// which asks for the current password; staff may correct other profiles.
func canSetEmail(ctx context.Context, ownerID, current, next string) bool {
	if strings.EqualFold(current, next) {
		return true
	}
	if isOwner(ctx, ownerID) {
		return false
	}
	role, ok := middleware.GetRoleFromContext(ctx)
	return ok && role.IsStaff()
}
