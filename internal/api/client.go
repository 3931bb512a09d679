package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduhelx/student-panel/internal/config"
	"github.com/eduhelx/student-panel/internal/models"
)

// Client is the typed surface of the student server extension.
type Client interface {
	GetCourseAndStudent(ctx context.Context) (models.Student, models.Course, error)
	GetAssignments(ctx context.Context, path string) (models.AssignmentsBundle, error)
	GetNotebookFiles(ctx context.Context) (models.NotebookIndex, error)
	GetServerSettings(ctx context.Context) (models.ServerSettings, error)
	SubmitAssignment(ctx context.Context, summary, description, currentPath string) error
	CloneStudentRepository(ctx context.Context, repositoryURL, currentPath string) (string, error)
	GetJobStatus(ctx context.Context, id string) (models.JobStatus, error)
	GetJobResult(ctx context.Context, id string) (models.JobResult, error)
}

type client struct {
	baseURL    string
	namespace  string
	token      string
	xsrfCookie string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(cfg config.ExtensionConfig, logger zerolog.Logger) Client {
	jar, _ := cookiejar.New(nil)
	return &client{
		baseURL:    cfg.BaseURL,
		namespace:  cfg.Namespace,
		token:      cfg.Token,
		xsrfCookie: cfg.XSRFCookie,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logger: logger,
	}
}

// request issues one authenticated call and returns the raw JSON body. A
// success response whose body is empty or not JSON yields nil without error.
// Non-2xx responses become *ResponseError; transport failures and context
// cancellation propagate unchanged so callers can tell an abort apart from a
// network fault.
func (c *client) request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint), reqBody)
	if err != nil {
		return nil, err
	}

	authenticated := false
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
		authenticated = true
	}
	if xsrf := c.xsrfToken(req.URL); xsrf != "" {
		req.Header.Set("X-XSRFToken", xsrf)
		authenticated = true
	}
	// The server rejects a JSON content type on unauthenticated requests, so
	// only set it alongside credentials.
	if authenticated {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(raw),
			Body:       raw,
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Msg("Response body is not JSON, treating as empty")
		return nil, nil
	}

	return raw, nil
}

func (c *client) endpointURL(endpoint string) string {
	return strings.TrimRight(c.baseURL, "/") +
		"/" + strings.Trim(c.namespace, "/") +
		endpoint
}

func (c *client) xsrfToken(u *url.URL) string {
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == c.xsrfCookie {
			return cookie.Value
		}
	}
	return ""
}

// errorMessage pulls the "message" field out of a JSON error body, falling
// back to the body itself.
func errorMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(raw))
}
