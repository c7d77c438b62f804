package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"insurance-marketplace/internal/delivery/http/middleware"
	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/viewmodel"
	"insurance-marketplace/pkg/response"

	"github.com/sirupsen/logrus"
)

const streamKeepAlive = 25 * time.Second

type snapshotEvent struct {
	Version uint64      `json:"version"`
	Items   interface{} `json:"items"`
}

type errorEvent struct {
	Message string `json:"message"`
}

// StreamHandler pushes every snapshot of a live query to the client as a
// server-sent event. Each request owns its view model; the subscription is
// closed when the client goes away.
type StreamHandler struct {
	factory *viewmodel.Factory
	log     *logrus.Logger
}

func NewStreamHandler(factory *viewmodel.Factory, log *logrus.Logger) *StreamHandler {
	return &StreamHandler{factory: factory, log: log}
}

// serveStream starts list with start and writes its states until the
// request ends or the list is closed.
func serveStream[T any](w http.ResponseWriter, r *http.Request, log *logrus.Logger, name string, list *viewmodel.List[T], start func(context.Context) error, render func([]T) interface{}) {
	defer list.Close()

	ctx := r.Context()
	if err := start(ctx); err != nil {
		response.FromError(w, err, "Failed to start "+name+" stream")
		return
	}

	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.WithField("stream", name).Debugf("Write deadline not supported: %+v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.WithField("stream", name).Warnf("Failed to flush stream: %+v", err)
		return
	}

	states, cancel := list.Watch()
	defer cancel()

	log.WithField("stream", name).Debug("Stream opened")
	defer log.WithField("stream", name).Debug("Stream closed")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case state, ok := <-states:
			if !ok {
				return
			}
			// nothing delivered yet
			if state.Version == 0 {
				continue
			}
			var err error
			if state.Err != nil {
				err = writeEvent(w, "error", errorEvent{Message: state.Err.Error()})
			} else {
				err = writeEvent(w, "snapshot", snapshotEvent{Version: state.Version, Items: render(state.Items)})
			}
			if err != nil {
				log.WithField("stream", name).Debugf("Client gone: %+v", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func asIs[T any](items []T) interface{} {
	return items
}

// Insurances streams the catalog
// @Summary Stream insurances
// @Tags Streams
// @Produce text/event-stream
// @Param type query string false "Only insurances of this type"
// @Param active query bool false "Only active insurances"
// @Router /stream/insurances [get]
func (h *StreamHandler) Insurances(w http.ResponseWriter, r *http.Request) {
	vm := h.factory.NewInsurances()
	query := r.URL.Query()

	start := vm.StartRealtimeUpdates
	switch {
	case query.Get("type") != "":
		t := query.Get("type")
		start = func(ctx context.Context) error { return vm.StartByType(ctx, t) }
	case query.Get("active") == "true":
		start = vm.StartActive
	}
	serveStream(w, r, h.log, "insurances", vm.List, start, asIs[entity.Insurance])
}

// Posts streams the feed with resolved authors
// @Summary Stream posts
// @Tags Streams
// @Produce text/event-stream
// @Param tipo query string false "Autos, Personal or Empresarial"
// @Param mine query bool false "Only the caller's posts"
// @Router /stream/posts [get]
func (h *StreamHandler) Posts(w http.ResponseWriter, r *http.Request) {
	vm := h.factory.NewPosts()
	query := r.URL.Query()

	start := vm.StartRealtimeUpdates
	switch {
	case query.Get("mine") == "true":
		profileID, ok := middleware.GetProfileIDFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}
		start = func(ctx context.Context) error { return vm.StartMine(ctx, profileID) }
	case query.Get("tipo") != "":
		tipo, err := entity.ParsePostTipo(query.Get("tipo"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid tipo", nil)
			return
		}
		start = func(ctx context.Context) error { return vm.StartByTipo(ctx, tipo) }
	}
	serveStream(w, r, h.log, "posts", vm.List, start, func(items []viewmodel.FeedItem) interface{} {
		return feedResponses(items)
	})
}

// Agents streams the agent directory
// @Summary Stream agents
// @Tags Streams
// @Produce text/event-stream
// @Router /stream/agents [get]
func (h *StreamHandler) Agents(w http.ResponseWriter, r *http.Request) {
	vm := h.factory.NewAgents()
	serveStream(w, r, h.log, "agents", vm.List, vm.StartRealtimeUpdates, asIs[entity.Agent])
}

// Insurers streams the insurer directory
// @Summary Stream insurers
// @Tags Streams
// @Produce text/event-stream
// @Router /stream/insurers [get]
func (h *StreamHandler) Insurers(w http.ResponseWriter, r *http.Request) {
	vm := h.factory.NewInsurers()
	serveStream(w, r, h.log, "insurers", vm.List, vm.StartRealtimeUpdates, asIs[entity.Insurer])
}

// Users streams user profiles
// @Summary Stream users
// @Tags Streams
// @Security BearerAuth
// @Produce text/event-stream
// @Param role query string false "Only users of this role"
// @Router /stream/users [get]
func (h *StreamHandler) Users(w http.ResponseWriter, r *http.Request) {
	vm := h.factory.NewUsers()

	start := vm.StartRealtimeUpdates
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := entity.ParseRole(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid role", nil)
			return
		}
		start = func(ctx context.Context) error { return vm.StartRole(ctx, role) }
	}
	serveStream(w, r, h.log, "users", vm.List, start, asIs[entity.User])
}

// Chat streams the caller's conversation
// @Summary Stream my messages
// @Tags Streams
// @Security BearerAuth
// @Produce text/event-stream
// @Router /stream/chat [get]
func (h *StreamHandler) Chat(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.GetProfileIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	vm := h.factory.NewChat(profileID)
	serveStream(w, r, h.log, "chat", vm.List, vm.StartRealtimeUpdates, asIs[entity.Message])
}
