package handler

import (
	"errors"
	"net/http"

	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/infrastructure/storage"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

type PostHandler struct {
	posts          *viewmodel.PostViewModel
	validator      *validator.CustomValidator
	maxUploadBytes int64
}

func NewPostHandler(posts *viewmodel.PostViewModel, validator *validator.CustomValidator, maxUploadBytes int64) *PostHandler {
	return &PostHandler{
		posts:          posts,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
	}
}

func feedResponses(items []viewmodel.FeedItem) []dto.FeedItemResponse {
	out := make([]dto.FeedItemResponse, len(items))
	for i, item := range items {
		out[i] = dto.FeedItemResponse{
			Post:        item.Post,
			AuthorName:  item.Author.Name,
			AuthorImage: item.Author.Image,
		}
	}
	return out
}

// readForm parses the multipart post form. A nil post means the error
// response was written.
func (h *PostHandler) readForm(w http.ResponseWriter, r *http.Request, userID string) (*entity.Post, *storage.Upload, func()) {
	if err := parseForm(w, r, h.maxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid form or image too large", nil)
		return nil, nil, nil
	}

	req := dto.PostRequest{
		Titulo:      r.FormValue("titulo"),
		Descripcion: r.FormValue("descripcion"),
		Tipo:        r.FormValue("tipo"),
		Date:        r.FormValue("date"),
		Image:       r.FormValue("image"),
	}
	if !validate(w, h.validator, &req) {
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
	return converter.PostRequestToEntity(&req, userID), image, func() { closeQuietly(file) }
}

// GetAll returns the feed, newest first
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param tipo query string false "Autos, Personal or Empresarial"
// @Success 200 {object} response.Response
// @Router /posts [get]
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tipo")
	if raw == "" {
		response.Success(w, http.StatusOK, "Posts retrieved successfully", feedResponses(h.posts.Feed()))
		return
	}

	tipo, err := entity.ParsePostTipo(raw)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid tipo", nil)
		return
	}
	items, err := h.posts.ListByTipo(r.Context(), tipo)
	if err != nil {
		response.FromError(w, err, "Failed to get posts")
		return
	}

	response.Success(w, http.StatusOK, "Posts retrieved successfully", feedResponses(items))
}

// Mine returns the posts of the caller
// @Summary List my posts
// @Tags Posts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /posts/mine [get]
func (h *PostHandler) Mine(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	mine := make([]viewmodel.FeedItem, 0)
	for _, item := range h.posts.Feed() {
		if item.Post.UserID == profileID {
			mine = append(mine, item)
		}
	}

	response.Success(w, http.StatusOK, "Posts retrieved successfully", feedResponses(mine))
}

// Get returns one post
// @Summary Get post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err, "Failed to get post")
		return
	}
	if post == nil {
		response.NotFound(w, "Post not found")
		return
	}

	response.Success(w, http.StatusOK, "Post retrieved successfully", post)
}

// Create publishes a post authored by the caller
// @Summary Create post
// @Tags Posts
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param titulo formData string true "Title"
// @Param descripcion formData string true "Description"
// @Param tipo formData string true "Autos, Personal or Empresarial"
// @Param image formData file false "Image"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	post, image, done := h.readForm(w, r, profileID)
	if post == nil {
		return
	}
	defer done()

	if err := h.posts.Add(r.Context(), post, image); err != nil {
		response.FromError(w, err, "Failed to create post")
		return
	}

	response.Success(w, http.StatusCreated, "Post created successfully", post)
}

// Update overwrites a post of the caller
// @Summary Update post
// @Description Title, description and tipo are replaced. Date and image are kept from the stored post when not resent.
// @Tags Posts
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [put]
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.owned(w, r)
	if !ok {
		return
	}

	post, image, done := h.readForm(w, r, current.UserID)
	if post == nil {
		return
	}
	defer done()

	post.ID = current.ID
	if post.Date == "" {
		post.Date = current.Date
	}
	if post.Image == "" && image == nil {
		post.Image = current.Image
	}

	if err := h.posts.Update(r.Context(), post, image); err != nil {
		response.FromError(w, err, "Failed to update post")
		return
	}

	response.Success(w, http.StatusOK, "Post updated successfully", post)
}

// Delete removes a post of the caller
// @Summary Delete post
// @Tags Posts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), current.ID); err != nil {
		response.FromError(w, err, "Failed to delete post")
		return
	}

	response.Success(w, http.StatusOK, "Post deleted successfully", nil)
}

// owned loads the post in the path and checks the caller may change it.
func (h *PostHandler) owned(w http.ResponseWriter, r *http.Request) (*entity.Post, bool) {
	post, err := h.posts.Find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err, "Failed to get post")
		return nil, false
	}
	if post == nil {
		response.NotFound(w, "Post not found")
		return nil, false
	}
	if !canManage(r.Context(), post.UserID) {
		response.Forbidden(w, "You can only change your own posts")
		return nil, false
	}
	return post, true
}
