package httpd

import (
	"encoding/json"
	"net/http"
)

type submitRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// SubmitAssignment forwards a submission for the current working directory.
// On failure the backend's message passes through untouched so the form can
// keep its input and retry.
func (h *Handler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Summary == "" {
		writeError(w, http.StatusBadRequest, "summary is required")
		return
	}

	snapshot := h.controller.Snapshot()
	if snapshot.CurrentPath == "" {
		writeError(w, http.StatusBadRequest, "No working directory is selected")
		return
	}

	if err := h.client.SubmitAssignment(r.Context(), req.Summary, req.Description, snapshot.CurrentPath); err != nil {
		h.handleClientError(w, err)
		return
	}

	h.controller.UpdateAssignments()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

type cloneRequest struct {
	RepositoryURL string `json:"repository_url"`
}

func (h *Handler) CloneRepository(w http.ResponseWriter, r *http.Request) {
	var req cloneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RepositoryURL == "" {
		writeError(w, http.StatusBadRequest, "repository_url is required")
		return
	}

	snapshot := h.controller.Snapshot()
	path, err := h.client.CloneStudentRepository(r.Context(), req.RepositoryURL, snapshot.CurrentPath)
	if err != nil {
		h.handleClientError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"path":    path,
	})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.client.GetServerSettings(r.Context())
	if err != nil {
		h.handleClientError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
