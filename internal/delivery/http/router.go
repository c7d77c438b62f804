package http

import (
	"net/http"

	"insurance-marketplace/internal/delivery/http/handler"
	"insurance-marketplace/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	authHandler       *handler.AuthHandler
	validationHandler *handler.ValidationHandler
	userHandler       *handler.UserHandler
	agentHandler      *handler.AgentHandler
	insurerHandler    *handler.InsurerHandler
	insuranceHandler  *handler.InsuranceHandler
	postHandler       *handler.PostHandler
	chatHandler       *handler.ChatHandler
	streamHandler     *handler.StreamHandler
	auditLogHandler   *handler.AuditLogHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
}

type Handlers struct {
	Auth       *handler.AuthHandler
	Validation *handler.ValidationHandler
	User       *handler.UserHandler
	Agent      *handler.AgentHandler
	Insurer    *handler.InsurerHandler
	Insurance  *handler.InsuranceHandler
	Post       *handler.PostHandler
	Chat       *handler.ChatHandler
	Stream     *handler.StreamHandler
	AuditLog   *handler.AuditLogHandler
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		authHandler:       handlers.Auth,
		validationHandler: handlers.Validation,
		userHandler:       handlers.User,
		agentHandler:      handlers.Agent,
		insurerHandler:    handlers.Insurer,
		insuranceHandler:  handlers.Insurance,
		postHandler:       handlers.Post,
		chatHandler:       handlers.Chat,
		streamHandler:     handlers.Stream,
		auditLogHandler:   handlers.AuditLog,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
	}
}

// Setup registers every route. CORS wraps the whole router so preflight
// requests are answered before route matching.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/password-reset", r.authHandler.RequestPasswordReset).Methods(http.MethodPost)
	auth.HandleFunc("/password-reset/confirm", r.authHandler.ConfirmPasswordReset).Methods(http.MethodPost)
	auth.HandleFunc("/verify-email", r.authHandler.VerifyEmail).Methods(http.MethodGet, http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/session", r.authHandler.Session).Methods(http.MethodGet)
	authProtected.HandleFunc("/email-status", r.authHandler.EmailStatus).Methods(http.MethodGet)
	authProtected.HandleFunc("/verify-email/resend", r.authHandler.SendVerification).Methods(http.MethodPost)
	authProtected.HandleFunc("/email", r.authHandler.ChangeEmail).Methods(http.MethodPut)
	authProtected.HandleFunc("/password", r.authHandler.ChangePassword).Methods(http.MethodPut)

	// Form validation (public)
	validation := api.PathPrefix("/validation").Subrouter()
	validation.HandleFunc("/password-strength", r.validationHandler.PasswordStrength).Methods(http.MethodPost)
	validation.HandleFunc("/email", r.validationHandler.CheckEmail).Methods(http.MethodPost)
	validation.HandleFunc("/phone", r.validationHandler.CheckPhone).Methods(http.MethodPost)

	// Catalog and directory reads (public)
	api.HandleFunc("/agents", r.agentHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id}", r.agentHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/insurers", r.insurerHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/insurers/{id}", r.insurerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/insurances", r.insuranceHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/insurances/{type}/{id}", r.insuranceHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/posts", r.postHandler.GetAll).Methods(http.MethodGet)

	// Public live streams
	stream := api.PathPrefix("/stream").Subrouter()
	stream.HandleFunc("/insurances", r.streamHandler.Insurances).Methods(http.MethodGet)
	stream.HandleFunc("/agents", r.streamHandler.Agents).Methods(http.MethodGet)
	stream.HandleFunc("/insurers", r.streamHandler.Insurers).Methods(http.MethodGet)

	// Signed-in routes
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/posts/mine", r.postHandler.Mine).Methods(http.MethodGet)
	protected.HandleFunc("/posts", r.postHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id}", r.postHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/posts/{id}", r.postHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{id}", r.userHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", r.userHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/insurers/{id}", r.insurerHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/chat/messages", r.chatHandler.GetMessages).Methods(http.MethodGet)
	protected.HandleFunc("/chat/messages", r.chatHandler.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/stream/posts", r.streamHandler.Posts).Methods(http.MethodGet)
	protected.HandleFunc("/stream/chat", r.streamHandler.Chat).Methods(http.MethodGet)

	// Public post read, after /posts/mine so the literal path wins
	api.HandleFunc("/posts/{id}", r.postHandler.Get).Methods(http.MethodGet)

	// Catalog writes (insurers and staff)
	catalog := api.NewRoute().Subrouter()
	catalog.Use(r.authMiddleware.Authenticate)
	catalog.Use(middleware.RequireInsurerOrStaff)
	catalog.HandleFunc("/insurances", r.insuranceHandler.Create).Methods(http.MethodPost)
	catalog.HandleFunc("/insurances/{type}/{id}", r.insuranceHandler.Update).Methods(http.MethodPut)
	catalog.HandleFunc("/insurances/{type}/{id}", r.insuranceHandler.Delete).Methods(http.MethodDelete)

	// Staff routes
	staff := api.NewRoute().Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaff)
	staff.HandleFunc("/users", r.userHandler.GetAll).Methods(http.MethodGet)
	staff.HandleFunc("/users", r.userHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/users/{id}", r.userHandler.Delete).Methods(http.MethodDelete)
	staff.HandleFunc("/agents", r.agentHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/agents/{id}", r.agentHandler.Update).Methods(http.MethodPut)
	staff.HandleFunc("/agents/{id}", r.agentHandler.Delete).Methods(http.MethodDelete)
	staff.HandleFunc("/insurers", r.insurerHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/insurers/{id}", r.insurerHandler.Delete).Methods(http.MethodDelete)
	staff.HandleFunc("/stream/users", r.streamHandler.Users).Methods(http.MethodGet)
	staff.HandleFunc("/admin/chats/{userId}/messages", r.chatHandler.GetConversation).Methods(http.MethodGet)
	staff.HandleFunc("/admin/chats/{userId}/messages", r.chatHandler.Reply).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
