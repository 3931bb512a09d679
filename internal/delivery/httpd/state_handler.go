package httpd

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/eduhelx/student-panel/internal/models"
	"github.com/eduhelx/student-panel/internal/websocket"
)

type remoteView struct {
	State string      `json:"state"`
	Value interface{} `json:"value,omitempty"`
}

func viewOf[T any](r models.Remote[T], render func(T) interface{}) remoteView {
	view := remoteView{State: r.State().String()}
	if value, ok := r.Value(); ok {
		view.Value = render(value)
	}
	return view
}

func identity[T any](value T) interface{} { return value }

type assignmentView struct {
	models.Assignment
	Status     models.AssignmentStatus `json:"status"`
	IsExtended bool                    `json:"is_extended"`
	IsDeferred bool                    `json:"is_deferred"`
}

type currentAssignmentView struct {
	assignmentView
	Submissions []models.Submission `json:"submissions"`
}

func newAssignmentView(a models.Assignment, now time.Time) assignmentView {
	return assignmentView{
		Assignment: a,
		Status:     models.DeriveStatus(a, now),
		IsExtended: models.IsExtended(a),
		IsDeferred: models.IsDeferred(a),
	}
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Snapshot()
	now := time.Now()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_path": snapshot.CurrentPath,
		"loading":      snapshot.Loading,
		"student":      viewOf(snapshot.Student, identity[models.Student]),
		"course":       viewOf(snapshot.Course, identity[models.Course]),
		"assignments": viewOf(snapshot.Assignments, func(assignments []models.Assignment) interface{} {
			return lo.Map(assignments, func(a models.Assignment, _ int) assignmentView {
				return newAssignmentView(a, now)
			})
		}),
		"current_assignment": viewOf(snapshot.CurrentAssignment, func(a models.CurrentAssignment) interface{} {
			return currentAssignmentView{
				assignmentView: newAssignmentView(a.Assignment, now),
				Submissions:    a.Submissions,
			}
		}),
		"notebook_files": viewOf(snapshot.NotebookFiles, identity[models.NotebookIndex]),
		"job_statuses":   snapshot.JobStatuses,
	})
}

func (h *Handler) GetJobs(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_statuses": snapshot.JobStatuses,
	})
}

type messageView struct {
	EventName  string      `json:"event_name"`
	UUID       string      `json:"uuid"`
	Originator string      `json:"originator,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
}

func newMessageView(m websocket.IncomingMessage) messageView {
	view := messageView{
		EventName:  string(m.Event()),
		UUID:       m.UUID(),
		Originator: m.OriginatorUUID(),
	}
	switch typed := m.(type) {
	case *websocket.CrudMessage:
		view.Payload = map[string]interface{}{
			"crud_type":     typed.Operation,
			"resource_type": typed.Resource,
			"resource_id":   typed.ResourceID,
		}
	case *websocket.JobStatusMessage:
		view.Payload = map[string]interface{}{
			"id":     typed.JobID,
			"type":   typed.JobType,
			"status": typed.JobStatus,
		}
	case *websocket.GitPullMessage:
		view.Payload = map[string]interface{}{
			"files": typed.Files,
		}
	}
	return view
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready_state": h.channel.ReadyState().String(),
		"incoming": lo.Map(h.channel.IncomingLog(), func(m websocket.IncomingMessage, _ int) messageView {
			return newMessageView(m)
		}),
		"outgoing": h.channel.OutgoingLog(),
	})
}
