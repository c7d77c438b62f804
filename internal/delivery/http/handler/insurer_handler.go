package handler

import (
	"net/http"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

type InsurerHandler struct {
	insurers  *viewmodel.InsurerViewModel
	factory   *viewmodel.Factory
	identity  usecase.IdentityUsecase
	validator *validator.CustomValidator
}

func NewInsurerHandler(insurers *viewmodel.InsurerViewModel, factory *viewmodel.Factory, identity usecase.IdentityUsecase, validator *validator.CustomValidator) *InsurerHandler {
	return &InsurerHandler{
		insurers:  insurers,
		factory:   factory,
		identity:  identity,
		validator: validator,
	}
}

// GetAll lists insurers
// @Summary List insurers
// @Tags Insurers
// @Produce json
// @Success 200 {object} response.Response
// @Router /insurers [get]
func (h *InsurerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Insurers retrieved successfully", h.insurers.Insurers())
}

// Get loads one insurer profile
// @Summary Get insurer profile
// @Tags Insurers
// @Produce json
// @Param id path string true "Insurer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /insurers/{id} [get]
func (h *InsurerHandler) Get(w http.ResponseWriter, r *http.Request) {
	// the profile belongs to this request, not to the shared directory
	vm := h.factory.NewInsurers()
	defer vm.Close()

	insurer, err := vm.LoadProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err, "Failed to get insurer")
		return
	}
	if insurer == nil {
		response.NotFound(w, "Insurer not found")
		return
	}

	response.Success(w, http.StatusOK, "Insurer retrieved successfully", vm.Profile())
}

// Create adds an insurer. When an insurer account already uses the email, the
// record is linked to that profile and shares its id.
// @Summary Create insurer
// @Tags Insurers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.InsurerRequest true "Insurer Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /insurers [post]
func (h *InsurerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.InsurerRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	insurer := converter.InsurerRequestToEntity(&req)
	profile, err := h.identity.InsurerProfile(r.Context(), insurer.Email)
	if err != nil {
		response.FromError(w, err, "Failed to check email")
		return
	}
	if profile != nil {
		insurer.ID = profile.ID
	}
	if !ensureUnique(r.Context(), w, h.identity, insurer.Email, insurer.Phone, insurer.ID) {
		return
	}

	if err := h.insurers.Add(r.Context(), insurer); err != nil {
		response.FromError(w, err, "Failed to create insurer")
		return
	}

	response.Success(w, http.StatusCreated, "Insurer created successfully", insurer)
}

// Update overwrites an insurer
// @Summary Update insurer
// @Description Owners change their email through PUT /auth/email
// @Tags Insurers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Insurer ID"
// @Param request body dto.InsurerRequest true "Insurer Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /insurers/{id} [put]
func (h *InsurerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canManage(r.Context(), id) {
		response.Forbidden(w, "You can only edit your own profile")
		return
	}

	var req dto.InsurerRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	current, err := h.insurers.Find(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get insurer")
		return
	}
	if current == nil {
		response.NotFound(w, "Insurer not found")
		return
	}

	insurer := converter.InsurerRequestToEntity(&req)
	insurer.ID = id
	if !canSetEmail(r.Context(), id, current.Email, insurer.Email) {
		response.Error(w, http.StatusBadRequest, "Use PUT /auth/email to change your email", nil)
		return
	}
	if !ensureUnique(r.Context(), w, h.identity, insurer.Email, insurer.Phone, id) {
		return
	}

	if err := h.insurers.Update(r.Context(), insurer); err != nil {
		response.FromError(w, err, "Failed to update insurer")
		return
	}

	response.Success(w, http.StatusOK, "Insurer updated successfully", insurer)
}

// Delete removes an insurer
// @Summary Delete insurer
// @Tags Insurers
// @Security BearerAuth
// @Produce json
// @Param id path string true "Insurer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /insurers/{id} [delete]
func (h *InsurerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.insurers.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		response.FromError(w, err, "Failed to delete insurer")
		return
	}

	response.Success(w, http.StatusOK, "Insurer deleted successfully", nil)
}
