package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eduhelx/student-panel/internal/models"
)

// SettingsUnavailableMessage is user-facing copy, not just a log line; tests
// and the settings dialog depend on its exact text.
const SettingsUnavailableMessage = "EduHeLx Submission server extension is unavailable. " +
	"Please ensure you have installed the JupyterLab EduHeLx Submission server extension " +
	"by running: pip install --upgrade jupyterlab_eduhelx_submission. " +
	"To confirm that the server extension is installed, run: jupyter server extension list."

func (c *client) GetCourseAndStudent(ctx context.Context) (models.Student, models.Course, error) {
	raw, err := c.request(ctx, http.MethodGet, "/course_student", nil)
	if err != nil {
		return models.Student{}, models.Course{}, err
	}
	var res models.CourseStudentResponse
	if err := decode(raw, &res); err != nil {
		return models.Student{}, models.Course{}, err
	}
	student, err := models.StudentFromResponse(res.Student)
	if err != nil {
		return models.Student{}, models.Course{}, err
	}
	return student, models.CourseFromResponse(res.Course), nil
}

func (c *client) GetAssignments(ctx context.Context, path string) (models.AssignmentsBundle, error) {
	endpoint := "/assignments?" + url.Values{"path": {path}}.Encode()
	raw, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.AssignmentsBundle{}, err
	}
	var res models.AssignmentsResponse
	if err := decode(raw, &res); err != nil {
		return models.AssignmentsBundle{}, err
	}
	return models.AssignmentsBundleFromResponse(res)
}

func (c *client) GetNotebookFiles(ctx context.Context) (models.NotebookIndex, error) {
	raw, err := c.request(ctx, http.MethodGet, "/notebook_files", nil)
	if err != nil {
		return nil, err
	}
	var res models.NotebookFilesResponse
	if err := decode(raw, &res); err != nil {
		return nil, err
	}
	return models.NotebookIndexFromResponse(res)
}

func (c *client) GetServerSettings(ctx context.Context) (models.ServerSettings, error) {
	raw, err := c.request(ctx, http.MethodGet, "/settings", nil)
	if err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			// A 404 here means the server extension is not installed at all.
			if respErr.StatusCode == http.StatusNotFound {
				respErr.Message = SettingsUnavailableMessage
				return models.ServerSettings{}, respErr
			}
			c.logger.Error().
				Str("message", respErr.Message).
				Msg("Failed to get the server extension settings")
		}
		return models.ServerSettings{}, err
	}
	var res models.ServerSettingsResponse
	if err := decode(raw, &res); err != nil {
		return models.ServerSettings{}, err
	}
	return models.ServerSettingsFromResponse(res), nil
}

type submitAssignmentRequest struct {
	Summary     string  `json:"summary"`
	Description *string `json:"description,omitempty"`
	CurrentPath string  `json:"current_path"`
}

func (c *client) SubmitAssignment(ctx context.Context, summary, description, currentPath string) error {
	req := submitAssignmentRequest{
		Summary:     summary,
		CurrentPath: currentPath,
	}
	if description != "" {
		req.Description = &description
	}
	_, err := c.request(ctx, http.MethodPost, "/submit_assignment", req)
	return err
}

type cloneStudentRepositoryRequest struct {
	RepositoryURL string `json:"repository_url"`
	CurrentPath   string `json:"current_path"`
}

func (c *client) CloneStudentRepository(ctx context.Context, repositoryURL, currentPath string) (string, error) {
	raw, err := c.request(ctx, http.MethodPost, "/clone_student_repository", cloneStudentRepositoryRequest{
		RepositoryURL: repositoryURL,
		CurrentPath:   currentPath,
	})
	if err != nil {
		return "", err
	}
	var res models.CloneStudentRepositoryResponse
	if err := decode(raw, &res); err != nil {
		return "", err
	}
	return res.Path, nil
}

type jobRequest struct {
	ID string `json:"id"`
}

func (c *client) GetJobStatus(ctx context.Context, id string) (models.JobStatus, error) {
	raw, err := c.request(ctx, http.MethodPost, "/job_status", jobRequest{ID: id})
	if err != nil {
		return models.JobStatus{}, err
	}
	var res models.JobStatusResponse
	if err := decode(raw, &res); err != nil {
		return models.JobStatus{}, err
	}
	return models.JobStatusFromResponse(res), nil
}

func (c *client) GetJobResult(ctx context.Context, id string) (models.JobResult, error) {
	raw, err := c.request(ctx, http.MethodPost, "/job_result", jobRequest{ID: id})
	if err != nil {
		return models.JobResult{}, err
	}
	var res models.JobResultResponse
	if err := decode(raw, &res); err != nil {
		return models.JobResult{}, err
	}
	return models.JobResultFromResponse(res)
}

func decode(raw json.RawMessage, dst any) error {
	if raw == nil {
		return fmt.Errorf("expected a JSON response body, got none")
	}
	return json.Unmarshal(raw, dst)
}
