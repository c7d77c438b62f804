package handler

import (
	"errors"
	"net/http"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

type InsuranceHandler struct {
	insurances     *viewmodel.InsuranceViewModel
	validator      *validator.CustomValidator
	maxUploadBytes int64
}

func NewInsuranceHandler(insurances *viewmodel.InsuranceViewModel, validator *validator.CustomValidator, maxUploadBytes int64) *InsuranceHandler {
	return &InsuranceHandler{
		insurances:     insurances,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
	}
}

// readForm parses the multipart insurance form. It writes the error
// response itself; a nil insurance means the handler must stop.
func (h *InsuranceHandler) readForm(w http.ResponseWriter, r *http.Request) (*entity.Insurance, *storage.Upload, func()) {
	if err := parseForm(w, r, h.maxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid form or image too large", nil)
		return nil, nil, nil
	}

	req := dto.InsuranceRequest{
		Name:        r.FormValue("name"),
		Type:        r.FormValue("type"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
		Active:      formBool(r, "active"),
		Image:       r.FormValue("image"),
	}
	if !validate(w, h.validator, &req) {
		return nil, nil, nil
	}

	insurance, err := converter.InsuranceRequestToEntity(&req)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid price", nil)
		return nil, nil, nil
	}

	image, file, err := formImage(r)
	if err != nil {
		if errors.Is(err, errNotAnImage) {
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		} else {
			response.Error(w, http.StatusBadRequest, "Invalid image", nil)
		}
		return nil, nil, nil
	}
	return insurance, image, func() { closeQuietly(file) }
}

// GetAll lists the catalog
// @Summary List insurances
// @Tags Insurances
// @Produce json
// @Param type query string false "Only insurances of this type"
// @Param active query bool false "Only active insurances"
// @Success 200 {object} response.Response
// @Router /insurances [get]
func (h *InsuranceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	insurances := h.insurances.Insurances()
	if t := query.Get("type"); t != "" {
		byType, err := h.insurances.ListByType(r.Context(), t)
		if err != nil {
			response.FromError(w, err, "Failed to get insurances")
			return
		}
		insurances = byType
	}

	if query.Get("active") == "true" {
		active := make([]entity.Insurance, 0, len(insurances))
		for _, ins := range insurances {
			if ins.Active {
				active = append(active, ins)
			}
		}
		insurances = active
	}

	response.Success(w, http.StatusOK, "Insurances retrieved successfully", insurances)
}

// Get returns one insurance
// @Summary Get insurance
// @Tags Insurances
// @Produce json
// @Param type path string true "Insurance type"
// @Param id path string true "Insurance ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /insurances/{type}/{id} [get]
func (h *InsuranceHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	insurance, err := h.insurances.Find(r.Context(), vars["type"], vars["id"])
	if err != nil {
		response.FromError(w, err, "Failed to get insurance")
		return
	}
	if insurance == nil {
		response.NotFound(w, "Insurance not found")
		return
	}

	response.Success(w, http.StatusOK, "Insurance retrieved successfully", insurance)
}

// Create adds an insurance with an optional image
// @Summary Create insurance
// @Description A failed image upload still creates the insurance without image
// @Tags Insurances
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param type formData string true "Type"
// @Param price formData string true "Price"
// @Param image formData file false "Image"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /insurances [post]
func (h *InsuranceHandler) Create(w http.ResponseWriter, r *http.Request) {
	insurance, image, done := h.readForm(w, r)
	if insurance == nil {
		return
	}
	defer done()

	if err := h.insurances.Add(r.Context(), insurance, image); err != nil {
		response.FromError(w, err, "Failed to create insurance")
		return
	}

	response.Success(w, http.StatusCreated, "Insurance created successfully", insurance)
}

// Update overwrites an insurance; a new image replaces the old one
// @Summary Update insurance
// @Tags Insurances
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param type path string true "Insurance type"
// @Param id path string true "Insurance ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /insurances/{type}/{id} [put]
func (h *InsuranceHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	insurance, image, done := h.readForm(w, r)
	if insurance == nil {
		return
	}
	defer done()

	if insurance.Type != vars["type"] {
		response.Error(w, http.StatusBadRequest, "Insurance type cannot be changed", nil)
		return
	}
	insurance.ID = vars["id"]

	if err := h.insurances.Update(r.Context(), insurance, image); err != nil {
		response.FromError(w, err, "Failed to update insurance")
		return
	}

	response.Success(w, http.StatusOK, "Insurance updated successfully", insurance)
}

// Delete removes an insurance and its image
// @Summary Delete insurance
// @Tags Insurances
// @Security BearerAuth
// @Produce json
// @Param type path string true "Insurance type"
// @Param id path string true "Insurance ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /insurances/{type}/{id} [delete]
func (h *InsuranceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	insurance := &entity.Insurance{ID: vars["id"], Type: vars["type"]}

	if err := h.insurances.Delete(r.Context(), insurance); err != nil {
		response.FromError(w, err, "Failed to delete insurance")
		return
	}

	response.Success(w, http.StatusOK, "Insurance deleted successfully", nil)
}
