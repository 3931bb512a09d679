package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eduhelx/student-panel/internal/api"
	"github.com/eduhelx/student-panel/internal/state"
	"github.com/eduhelx/student-panel/internal/websocket"
)

// ChannelReader is the diagnostic surface of the websocket channel.
type ChannelReader interface {
	ReadyState() websocket.ReadyState
	IncomingLog() []websocket.IncomingMessage
	OutgoingLog() []websocket.OutgoingMessage
}

type Handler struct {
	controller *state.Controller
	client     api.Client
	channel    ChannelReader
	logger     zerolog.Logger
}

func NewHandler(
	controller *state.Controller,
	client api.Client,
	channel ChannelReader,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		controller: controller,
		client:     client,
		channel:    channel,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/state", h.GetState)
		api.Get("/messages", h.GetMessages)
		api.Get("/jobs", h.GetJobs)
		api.Get("/settings", h.GetSettings)
		api.Post("/submit", h.SubmitAssignment)
		api.Post("/clone", h.CloneRepository)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "student-panel",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleClientError maps a backend failure onto this surface: the backend's
// status and message pass through so the panel can show them verbatim.
func (h *Handler) handleClientError(w http.ResponseWriter, err error) {
	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		writeError(w, respErr.StatusCode, respErr.Message)
		return
	}
	h.logger.Error().Err(err).Msg("Backend request failed")
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}
