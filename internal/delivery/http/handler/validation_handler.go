package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"
)

// ValidationHandler backs the live checks of sign-up and profile forms.
type ValidationHandler struct {
	identity  usecase.IdentityUsecase
	validator *validator.CustomValidator
}

func NewValidationHandler(identity usecase.IdentityUsecase, validator *validator.CustomValidator) *ValidationHandler {
	return &ValidationHandler{identity: identity, validator: validator}
}

// PasswordStrength reports each strength indicator independently
// @Summary Password strength
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body dto.PasswordStrengthRequest true "Password"
// @Success 200 {object} response.Response
// @Router /validation/password-strength [post]
func (h *ValidationHandler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordStrengthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	strength := validator.PasswordStrength(req.Password)
	response.Success(w, http.StatusOK, "Password strength computed", dto.PasswordStrengthResponse{
		Strength: strength,
		Valid:    strength.Valid(),
	})
}

// CheckEmail reports whether no other profile uses the email
// @Summary Email uniqueness
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body dto.UniqueEmailRequest true "Email"
// @Success 200 {object} response.Response
// @Router /validation/email [post]
func (h *ValidationHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.UniqueEmailRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	unique, err := h.identity.IsEmailUnique(r.Context(), req.Email, req.SelfID)
	if err != nil {
		response.FromError(w, err, "Failed to check email")
		return
	}

	response.Success(w, http.StatusOK, "Email checked", dto.UniquenessResponse{Unique: unique})
}

// CheckPhone validates the phone format and reports whether it is unused
// @Summary Phone uniqueness
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body dto.UniquePhoneRequest true "Phone"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /validation/phone [post]
func (h *ValidationHandler) CheckPhone(w http.ResponseWriter, r *http.Request) {
	var req dto.UniquePhoneRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	unique, err := h.identity.IsPhoneUnique(r.Context(), req.Phone, req.SelfID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidPhone):
			response.Error(w, http.StatusBadRequest, "Phone must have exactly 10 digits", nil)
		default:
			response.FromError(w, err, "Failed to check phone")
		}
		return
	}

	response.Success(w, http.StatusOK, "Phone checked", dto.UniquenessResponse{Unique: unique})
}
