package httpd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhelx/student-panel/internal/api"
	"github.com/eduhelx/student-panel/internal/config"
	"github.com/eduhelx/student-panel/internal/host"
	"github.com/eduhelx/student-panel/internal/models"
	"github.com/eduhelx/student-panel/internal/state"
	"github.com/eduhelx/student-panel/internal/websocket"
	"github.com/eduhelx/student-panel/pkg/events"
)

type stubClient struct {
	submitAssignment       func(ctx context.Context, summary, description, currentPath string) error
	cloneStudentRepository func(ctx context.Context, repositoryURL, currentPath string) (string, error)
	getServerSettings      func(ctx context.Context) (models.ServerSettings, error)
}

func (s *stubClient) GetCourseAndStudent(context.Context) (models.Student, models.Course, error) {
	return models.Student{}, models.Course{}, nil
}

func (s *stubClient) GetAssignments(context.Context, string) (models.AssignmentsBundle, error) {
	return models.AssignmentsBundle{Assignments: []models.Assignment{}}, nil
}

func (s *stubClient) GetNotebookFiles(context.Context) (models.NotebookIndex, error) {
	return models.NotebookIndex{}, nil
}

func (s *stubClient) GetServerSettings(ctx context.Context) (models.ServerSettings, error) {
	if s.getServerSettings != nil {
		return s.getServerSettings(ctx)
	}
	return models.ServerSettings{}, nil
}

func (s *stubClient) SubmitAssignment(ctx context.Context, summary, description, currentPath string) error {
	if s.submitAssignment != nil {
		return s.submitAssignment(ctx, summary, description, currentPath)
	}
	return nil
}

func (s *stubClient) CloneStudentRepository(ctx context.Context, repositoryURL, currentPath string) (string, error) {
	if s.cloneStudentRepository != nil {
		return s.cloneStudentRepository(ctx, repositoryURL, currentPath)
	}
	return "", nil
}

func (s *stubClient) GetJobStatus(context.Context, string) (models.JobStatus, error) {
	return models.JobStatus{}, nil
}

func (s *stubClient) GetJobResult(context.Context, string) (models.JobResult, error) {
	return models.JobResult{}, nil
}

// fakeChannel satisfies both the controller's push interface and the
// handler's diagnostic reader.
type fakeChannel struct {
	emitter  *events.Emitter[websocket.IncomingMessage]
	incoming []websocket.IncomingMessage
	outgoing []websocket.OutgoingMessage
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{emitter: events.NewEmitter[websocket.IncomingMessage]()}
}

func (f *fakeChannel) OnMessage(fn func(websocket.IncomingMessage)) func() {
	return f.emitter.Subscribe(fn)
}

func (f *fakeChannel) LastMessage() websocket.IncomingMessage   { return nil }
func (f *fakeChannel) ReadyState() websocket.ReadyState         { return websocket.StateOpen }
func (f *fakeChannel) IncomingLog() []websocket.IncomingMessage { return f.incoming }
func (f *fakeChannel) OutgoingLog() []websocket.OutgoingMessage { return f.outgoing }

func newTestRouter(t *testing.T, client *stubClient, initialPath string) (chi.Router, *state.Controller) {
	t.Helper()
	logger := zerolog.Nop()
	channel := newFakeChannel()
	controller := state.NewController(
		client,
		channel,
		host.NewBrowser(initialPath),
		host.LogDialog{Logger: logger},
		host.LogCommands{Logger: logger},
		config.PollingConfig{
			CourseUserInterval:    time.Hour,
			AssignmentsInterval:   time.Hour,
			NotebookFilesInterval: time.Hour,
			RetryInterval:         time.Hour,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	controller.Start(ctx)
	t.Cleanup(func() {
		controller.Stop()
		cancel()
	})

	router := chi.NewRouter()
	NewHandler(controller, client, channel, logger).RegisterRoutes(router)
	return router, controller
}

func doRequest(router chi.Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, "/hw1")

	recorder := doRequest(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "student-panel", body["service"])
}

func TestSubmitAssignment(t *testing.T) {
	var gotSummary, gotDescription, gotPath string
	client := &stubClient{
		submitAssignment: func(_ context.Context, summary, description, currentPath string) error {
			gotSummary = summary
			gotDescription = description
			gotPath = currentPath
			return nil
		},
	}
	router, _ := newTestRouter(t, client, "/phys-241-student/hw1")

	recorder := doRequest(router, http.MethodPost, "/api/v1/submit",
		`{"summary": "Finish part 2", "description": "Reworked question 3"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, "Finish part 2", gotSummary)
	assert.Equal(t, "Reworked question 3", gotDescription)
	assert.Equal(t, "/phys-241-student/hw1", gotPath)
	assert.Equal(t, true, decodeBody(t, recorder)["success"])
}

func TestSubmitAssignmentValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, "/hw1")

	recorder := doRequest(router, http.MethodPost, "/api/v1/submit", `{"description": "no summary"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doRequest(router, http.MethodPost, "/api/v1/submit", `not json`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSubmitAssignmentWithoutWorkingDirectory(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, "")

	recorder := doRequest(router, http.MethodPost, "/api/v1/submit", `{"summary": "x"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "No working directory is selected", decodeBody(t, recorder)["message"])
}

func TestSubmitAssignmentBackendErrorPassesThrough(t *testing.T) {
	client := &stubClient{
		submitAssignment: func(context.Context, string, string, string) error {
			return &api.ResponseError{
				StatusCode: http.StatusConflict,
				Status:     "409 Conflict",
				Message:    "assignment is closed",
			}
		},
	}
	router, _ := newTestRouter(t, client, "/hw1")

	recorder := doRequest(router, http.MethodPost, "/api/v1/submit", `{"summary": "late"}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "assignment is closed", decodeBody(t, recorder)["message"])
}

func TestCloneRepository(t *testing.T) {
	client := &stubClient{
		cloneStudentRepository: func(_ context.Context, repositoryURL, _ string) (string, error) {
			assert.Equal(t, "https://git.example.com/fork.git", repositoryURL)
			return "eduhelx/phys-241-student", nil
		},
	}
	router, _ := newTestRouter(t, client, "/")

	recorder := doRequest(router, http.MethodPost, "/api/v1/clone",
		`{"repository_url": "https://git.example.com/fork.git"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "eduhelx/phys-241-student", decodeBody(t, recorder)["path"])
}

func TestGetSettingsWhenExtensionMissing(t *testing.T) {
	client := &stubClient{
		getServerSettings: func(context.Context) (models.ServerSettings, error) {
			return models.ServerSettings{}, &api.ResponseError{
				StatusCode: http.StatusNotFound,
				Status:     "404 Not Found",
				Message:    api.SettingsUnavailableMessage,
			}
		},
	}
	router, _ := newTestRouter(t, client, "/hw1")

	recorder := doRequest(router, http.MethodGet, "/api/v1/settings", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, api.SettingsUnavailableMessage, decodeBody(t, recorder)["message"])
}

func TestGetState(t *testing.T) {
	router, controller := newTestRouter(t, &stubClient{}, "/hw1")

	require.Eventually(t, func() bool {
		return !controller.Snapshot().Loading
	}, 2*time.Second, 10*time.Millisecond)

	recorder := doRequest(router, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "/hw1", body["current_path"])
	assert.Equal(t, false, body["loading"])

	assignments, ok := body["assignments"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "loaded", assignments["state"])
}

func TestGetMessages(t *testing.T) {
	logger := zerolog.Nop()
	channel := newFakeChannel()

	crud, err := websocket.Classify([]byte(`{
		"event_name": "crud_event",
		"uuid": "abc",
		"data": {"crud_type": "CREATE", "resource_type": "COURSE", "resource_id": 3}
	}`))
	require.NoError(t, err)
	channel.incoming = []websocket.IncomingMessage{crud}
	channel.outgoing = []websocket.OutgoingMessage{websocket.NewOutgoingMessage(websocket.EventGitPull, nil)}

	router := chi.NewRouter()
	NewHandler(nil, &stubClient{}, channel, logger).RegisterRoutes(router)

	recorder := doRequest(router, http.MethodGet, "/api/v1/messages", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "open", body["ready_state"])

	incoming, ok := body["incoming"].([]interface{})
	require.True(t, ok)
	require.Len(t, incoming, 1)
	first := incoming[0].(map[string]interface{})
	assert.Equal(t, "crud_event", first["event_name"])
	assert.Equal(t, "abc", first["uuid"])
}
