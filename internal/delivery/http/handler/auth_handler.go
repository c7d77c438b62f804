package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/pkg/jwt"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
	jwtService  *jwt.JWTService
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator, jwtService *jwt.JWTService) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		jwtService:  jwtService,
	}
}

// Register handles self sign-up of clients and insurers
// @Summary Register a new account
// @Description Create the role partitioned profile and the credential account, then send the verification email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.authUsecase.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			response.Conflict(w, "Email already exists")
		case errors.Is(err, usecase.ErrPhoneAlreadyExists):
			response.Conflict(w, "Phone already exists")
		default:
			response.FromError(w, err, "Failed to register user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", account)
}

// Login handles user login
// @Summary Login user
// @Description Login with email and password. The response names the screen for the role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	login, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Error(w, http.StatusUnauthorized, "Invalid email or password", nil)
		default:
			response.FromError(w, err, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", login)
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout and revoke tokens
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// the refresh token is optional
	var req dto.RefreshTokenRequest
	json.NewDecoder(r.Body).Decode(&req)

	refreshTokenID := ""
	if req.RefreshToken != "" {
		claims, err := h.jwtService.ValidateToken(req.RefreshToken)
		if err == nil && claims.AccountID == accountID {
			refreshTokenID = claims.TokenID
		}
	}

	if err := h.authUsecase.Logout(r.Context(), accountID, tokenID, refreshTokenID); err != nil {
		response.InternalServerError(w, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair. Refresh tokens are single use.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrTokenRevoked), errors.Is(err, usecase.ErrAccountNotFound):
			response.Error(w, http.StatusUnauthorized, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to refresh token")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser handles getting current user info
// @Summary Get current user
// @Description Get the authenticated account and its profile
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			response.NotFound(w, "User not found")
		default:
			response.FromError(w, err, "Failed to get user info")
		}
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

// RequestPasswordReset sends a reset link
// @Summary Request a password reset
// @Description Always succeeds so registered emails cannot be discovered
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Password Reset Request"
// @Success 200 {object} response.Response
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.RequestPasswordReset(r.Context(), &req); err != nil {
		response.FromError(w, err, "Failed to request password reset")
		return
	}

	response.Success(w, http.StatusOK, "If the email is registered a reset link was sent", nil)
}

// ConfirmPasswordReset sets a new password with a reset token
// @Summary Confirm a password reset
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetConfirmRequest true "Password Reset Confirm Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.ConfirmPasswordReset(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken):
			response.Error(w, http.StatusUnauthorized, "Invalid or expired reset token", nil)
		default:
			response.FromError(w, err, "Failed to reset password")
		}
		return
	}

	response.Success(w, http.StatusOK, "Password updated successfully", nil)
}

// VerifyEmail marks the account email as verified
// @Summary Verify email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verify Email Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if r.Method == http.MethodGet {
		// links in the verification mail carry the token in the query string
		req.Token = r.URL.Query().Get("token")
		if !validate(w, h.validator, &req) {
			return
		}
	} else if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.VerifyEmail(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken):
			response.Error(w, http.StatusUnauthorized, "Invalid or expired verification token", nil)
		default:
			response.FromError(w, err, "Failed to verify email")
		}
		return
	}

	response.Success(w, http.StatusOK, "Email verified successfully", nil)
}

// SendVerification re-sends the verification email
// @Summary Resend verification email
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/verify-email/resend [post]
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	if err := h.authUsecase.SendVerification(r.Context(), accountID); err != nil {
		response.FromError(w, err, "Failed to send verification email")
		return
	}

	response.Success(w, http.StatusOK, "Verification email sent", nil)
}

// EmailStatus reports whether the account email is verified
// @Summary Email verification status
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/email-status [get]
func (h *AuthHandler) EmailStatus(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	status, err := h.authUsecase.EmailStatus(r.Context(), accountID)
	if err != nil {
		response.FromError(w, err, "Failed to get email status")
		return
	}

	response.Success(w, http.StatusOK, "Email status retrieved successfully", status)
}

// ChangeEmail changes the login email after reauthentication
// @Summary Change email
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangeEmailRequest true "Change Email Request"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/email [put]
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.ChangeEmailRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.ChangeEmail(r.Context(), accountID, &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrReauthenticationRequired):
			response.Forbidden(w, "Current password is incorrect")
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			response.Conflict(w, "Email already exists")
		default:
			response.FromError(w, err, "Failed to change email")
		}
		return
	}

	response.Success(w, http.StatusOK, "Email changed, please verify the new address", nil)
}

// ChangePassword changes the password after reauthentication
// @Summary Change password
// @Description Every issued token is revoked afterwards
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.ChangePassword(r.Context(), accountID, &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrReauthenticationRequired):
			response.Forbidden(w, "Current password is incorrect")
		default:
			response.FromError(w, err, "Failed to change password")
		}
		return
	}

	response.Success(w, http.StatusOK, "Password changed, please login again", nil)
}

// Session reports the local session flag
// @Summary Session status
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	active, err := h.authUsecase.SessionActive(r.Context(), accountID)
	if err != nil {
		response.FromError(w, err, "Failed to get session")
		return
	}

	response.Success(w, http.StatusOK, "Session retrieved successfully", dto.SessionResponse{Active: active})
}
