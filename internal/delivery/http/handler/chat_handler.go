package handler

import (
	"net/http"

	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"

	"github.com/gorilla/mux"
)

// ChatHandler serves the support conversation of each user. Staff answer
// through the admin routes, which address a conversation by user id.
type ChatHandler struct {
	factory   *viewmodel.Factory
	validator *validator.CustomValidator
}

func NewChatHandler(factory *viewmodel.Factory, validator *validator.CustomValidator) *ChatHandler {
	return &ChatHandler{factory: factory, validator: validator}
}

func (h *ChatHandler) list(w http.ResponseWriter, r *http.Request, userID string) {
	vm := h.factory.NewChat(userID)
	defer vm.Close()

	messages, err := vm.Load(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to get messages")
		return
	}

	response.Success(w, http.StatusOK, "Messages retrieved successfully", messages)
}

func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request, userID string, sentByUser bool) {
	var req dto.SendMessageRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	vm := h.factory.NewChat(userID)
	defer vm.Close()

	message, err := vm.Send(r.Context(), req.Text, sentByUser)
	if err != nil {
		response.FromError(w, err, "Failed to send message")
		return
	}

	response.Success(w, http.StatusCreated, "Message sent successfully", message)
}

// GetMessages returns the caller's conversation, oldest first
// @Summary List my messages
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /chat/messages [get]
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	h.list(w, r, profileID)
}

// SendMessage appends a message to the caller's conversation
// @Summary Send message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /chat/messages [post]
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	h.send(w, r, profileID, true)
}

// GetConversation returns the conversation of any user
// @Summary List a user's messages
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Response
// @Router /admin/chats/{userId}/messages [get]
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, mux.Vars(r)["userId"])
}

// Reply appends a staff message to a user's conversation
// @Summary Reply to a user
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Response
// @Router /admin/chats/{userId}/messages [post]
func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, mux.Vars(r)["userId"], false)
}
