package handler

import (
	"net/http"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/usecase"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	users     *viewmodel.UserViewModel
	identity  usecase.IdentityUsecase
	validator *validator.CustomValidator
}

func NewUserHandler(users *viewmodel.UserViewModel, identity usecase.IdentityUsecase, validator *validator.CustomValidator) *UserHandler {
	return &UserHandler{
		users:     users,
		identity:  identity,
		validator: validator,
	}
}

// GetAll lists user profiles from the live snapshot
// @Summary List users
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param role query string false "Only users of this role"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users := h.users.Users()

	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := entity.ParseRole(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid role", nil)
			return
		}
		filtered := make([]entity.User, 0, len(users))
		for _, u := range users {
			if u.Role == role {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", users)
}

// Get returns one profile
// @Summary Get user by ID
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canManage(r.Context(), id) {
		response.Forbidden(w, "You can only view your own profile")
		return
	}

	user, err := h.users.Find(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get user")
		return
	}
	if user == nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

// Create adds a profile in the partition of its role
// @Summary Create user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UserRequest true "User Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	user := converter.UserRequestToEntity(&req)
	if !canManageRole(r.Context(), user.Role, "") {
		response.Forbidden(w, "Only admins can create staff profiles")
		return
	}
	if !ensureUnique(r.Context(), w, h.identity, user.Email, user.Phone, "") {
		return
	}

	if err := h.users.Add(r.Context(), user); err != nil {
		response.FromError(w, err, "Failed to create user")
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}

// Update overwrites a profile
// @Summary Update user
// @Description The role cannot move a profile to another partition. Owners change their email through PUT /auth/email
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UserRequest true "User Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canManage(r.Context(), id) {
		response.Forbidden(w, "You can only edit your own profile")
		return
	}

	var req dto.UserRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	current, err := h.users.Find(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get user")
		return
	}
	if current == nil {
		response.NotFound(w, "User not found")
		return
	}

	user := converter.UserRequestToEntity(&req)
	user.ID = id
	if user.Role != current.Role {
		response.Error(w, http.StatusBadRequest, "Role cannot be changed", nil)
		return
	}
	if !canManageRole(r.Context(), current.Role, id) {
		response.Forbidden(w, "Only admins can edit staff profiles")
		return
	}
	if !canSetEmail(r.Context(), id, current.Email, user.Email) {
		response.Error(w, http.StatusBadRequest, "Use PUT /auth/email to change your email", nil)
		return
	}
	if !ensureUnique(r.Context(), w, h.identity, user.Email, user.Phone, id) {
		return
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		response.FromError(w, err, "Failed to update user")
		return
	}

	response.Success(w, http.StatusOK, "User updated successfully", user)
}

// Delete removes a profile
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.users.Find(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get user")
		return
	}
	if user == nil {
		response.NotFound(w, "User not found")
		return
	}
	if !canManageRole(r.Context(), user.Role, "") {
		response.Forbidden(w, "Only admins can delete staff profiles")
		return
	}

	if err := h.users.Delete(r.Context(), user); err != nil {
		response.FromError(w, err, "Failed to delete user")
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}
