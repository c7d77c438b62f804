package dto

import (
	"time"

	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/pkg/validator"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required,min=2"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone10"`
	BirthDate       string `json:"birthDate" validate:"required,adult"` // Format: YYYY-MM-DD
	Role            string `json:"role" validate:"required,oneof=client insurer"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ChangeEmailRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewEmail        string `json:"newEmail" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AccountResponse struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	Role          entity.Role `json:"role"`
	ProfileID     string      `json:"profile_id"`
	EmailVerified bool        `json:"email_verified"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// LoginResponse carries the role home screen in RedirectTarget.
type LoginResponse struct {
	Tokens              TokenResponse   `json:"tokens"`
	RedirectTarget      string          `json:"redirect_target"`
	EmailVerified       bool            `json:"email_verified"`
	ProfileEmailMatches bool            `json:"profile_email_matches"`
	Account             AccountResponse `json:"account"`
}

type CurrentUserResponse struct {
	Account AccountResponse `json:"account"`
	Profile *entity.User    `json:"profile,omitempty"`
}

type EmailStatusResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

type SessionResponse struct {
	Active bool `json:"active"`
}

type PasswordStrengthResponse struct {
	validator.Strength
	Valid bool `json:"valid"`
}
