package state

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/eduhelx/student-panel/internal/api"
	"github.com/eduhelx/student-panel/internal/config"
	"github.com/eduhelx/student-panel/internal/host"
	"github.com/eduhelx/student-panel/internal/models"
	"github.com/eduhelx/student-panel/internal/websocket"
)

// PushChannel is the part of the websocket channel the controller consumes.
type PushChannel interface {
	OnMessage(fn func(websocket.IncomingMessage)) func()
	LastMessage() websocket.IncomingMessage
}

// Snapshot is a read-only copy of the reconciled state.
type Snapshot struct {
	CurrentPath       string
	Loading           bool
	Assignments       models.Remote[[]models.Assignment]
	CurrentAssignment models.Remote[models.CurrentAssignment]
	Student           models.Remote[models.Student]
	Course            models.Remote[models.Course]
	NotebookFiles     models.Remote[models.NotebookIndex]
	JobStatuses       []models.JobStatus
}

// Controller is the single owner of all reconciled session state. It runs
// three independent poll loops plus an event-driven path subscription, and
// folds websocket notifications into the same state. No other component
// writes these fields.
type Controller struct {
	client   api.Client
	channel  PushChannel
	browser  host.FileBrowser
	dialog   host.Dialog
	commands host.Commands
	logger   zerolog.Logger

	courseUserPoller  *poller
	assignmentsPoller *poller
	notebookPoller    *poller

	mu sync.Mutex
	// currentPath is empty while no working directory is known; the
	// assignments loop is gated off in that case.
	currentPath       string
	assignments       models.Remote[[]models.Assignment]
	currentAssignment models.Remote[models.CurrentAssignment]
	student           models.Remote[models.Student]
	course            models.Remote[models.Course]
	notebookFiles     models.Remote[models.NotebookIndex]
	jobStatuses       []models.JobStatus
	lastProcessed     websocket.IncomingMessage

	runCtx       context.Context
	unsubscribes []func()
}

func NewController(
	client api.Client,
	channel PushChannel,
	browser host.FileBrowser,
	dialog host.Dialog,
	commands host.Commands,
	cfg config.PollingConfig,
	logger zerolog.Logger,
) *Controller {
	c := &Controller{
		client:   client,
		channel:  channel,
		browser:  browser,
		dialog:   dialog,
		commands: commands,
		logger:   logger,
	}
	c.courseUserPoller = newPoller("course_user", cfg.CourseUserInterval, cfg.RetryInterval, c.fetchCourseAndUser, logger)
	c.assignmentsPoller = newPoller("assignments", cfg.AssignmentsInterval, cfg.RetryInterval, c.fetchAssignments, logger)
	c.notebookPoller = newPoller("notebook_files", cfg.NotebookFilesInterval, cfg.RetryInterval, c.fetchNotebookFiles, logger)
	return c
}

// Start begins all loops and subscriptions. The controller stops when ctx is
// cancelled or Stop is called.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.runCtx = ctx
	c.currentPath = c.browser.Path()
	path := c.currentPath
	c.mu.Unlock()

	c.unsubscribes = append(c.unsubscribes,
		c.browser.OnPathChanged(c.setPath),
		c.channel.OnMessage(c.handleMessage),
	)

	c.courseUserPoller.Start(ctx)
	c.notebookPoller.Start(ctx)
	c.assignmentsPoller.bind(ctx)
	if path != "" {
		c.assignmentsPoller.Trigger()
	}
}

func (c *Controller) Stop() {
	c.courseUserPoller.Stop()
	c.assignmentsPoller.Stop()
	c.notebookPoller.Stop()
	for _, unsubscribe := range c.unsubscribes {
		unsubscribe()
	}
	c.unsubscribes = nil
}

// setPath reacts to the host file browser. The assignment loop's pending
// fetch is superseded and both of its outputs drop back to loading before
// the replacement loop starts.
func (c *Controller) setPath(path string) {
	c.mu.Lock()
	if c.currentPath == path {
		c.mu.Unlock()
		return
	}
	c.currentPath = path
	c.assignments = models.Loading[[]models.Assignment]()
	c.currentAssignment = models.Loading[models.CurrentAssignment]()
	c.mu.Unlock()

	if path == "" {
		c.assignmentsPoller.Stop()
		return
	}
	c.assignmentsPoller.Trigger()
}

func (c *Controller) fetchCourseAndUser(ctx context.Context) error {
	student, course, err := c.client.GetCourseAndStudent(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	c.student = models.Loaded(student)
	c.course = models.Loaded(course)
	c.mu.Unlock()
	return nil
}

func (c *Controller) fetchAssignments(ctx context.Context) error {
	c.mu.Lock()
	path := c.currentPath
	c.mu.Unlock()
	if path == "" {
		return nil
	}

	bundle, err := c.client.GetAssignments(ctx, path)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A newer path owns this loop now; do not commit a stale response.
	if c.currentPath != path {
		return nil
	}
	if bundle.Assignments == nil {
		c.assignments = models.Absent[[]models.Assignment]()
	} else {
		c.assignments = models.Loaded(bundle.Assignments)
	}
	if bundle.CurrentAssignment == nil {
		c.currentAssignment = models.Absent[models.CurrentAssignment]()
	} else {
		c.currentAssignment = models.Loaded(*bundle.CurrentAssignment)
	}
	return nil
}

func (c *Controller) fetchNotebookFiles(ctx context.Context) error {
	index, err := c.client.GetNotebookFiles(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	c.notebookFiles = models.Loaded(index)
	c.mu.Unlock()
	return nil
}

// handleMessage folds one websocket notification into state. Identity gating
// guarantees at-most-once handling per message object even if the channel
// replays its last-message slot.
func (c *Controller) handleMessage(message websocket.IncomingMessage) {
	c.mu.Lock()
	if message == nil || message == c.lastProcessed {
		c.mu.Unlock()
		return
	}
	c.lastProcessed = message
	path := c.currentPath
	c.mu.Unlock()

	switch m := message.(type) {
	case *websocket.CrudMessage:
		switch m.Resource {
		case websocket.ResourceCourse, websocket.ResourceUser:
			c.courseUserPoller.Trigger()
		case websocket.ResourceAssignment, websocket.ResourceSubmission:
			if path != "" {
				c.assignmentsPoller.Trigger()
			}
		default:
			c.logger.Warn().
				Str("resource", string(m.Resource)).
				Msg("Unrecognized crud resource type")
		}
	case *websocket.JobStatusMessage:
		c.upsertJobStatus(models.JobStatus{
			ID:     m.JobID,
			Status: m.JobStatus,
			Type:   m.JobType,
		})
	case *websocket.GitPullMessage:
		// The dialog blocks on the user; run it off the message path so
		// arrival-order processing is not stalled.
		go c.confirmGitPull(m.Files)
	default:
		c.logger.Warn().
			Str("event", string(message.Event())).
			Msg("Unhandled websocket message")
	}
}

// upsertJobStatus replaces the entry with a matching id or appends.
func (c *Controller) upsertJobStatus(status models.JobStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.jobStatuses {
		if existing.ID == status.ID {
			c.jobStatuses[i] = status
			return
		}
	}
	c.jobStatuses = append(c.jobStatuses, status)
}

func (c *Controller) confirmGitPull(files []string) {
	c.mu.Lock()
	ctx := c.runCtx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	body := "The instructor has updated the following files:\n" + strings.Join(files, "\n")
	accepted, err := c.dialog.Confirm(ctx, "Assignment files updated", body)
	if err != nil {
		c.logger.Error().Err(err).Msg("Git pull confirmation failed")
		return
	}
	if !accepted {
		return
	}
	if err := c.commands.Execute(ctx, "filebrowser:refresh", nil); err != nil {
		c.logger.Error().Err(err).Msg("Failed to refresh file browser")
	}
}

// UpdateAssignments forces an out-of-band assignments fetch. Idempotent and
// safe to call while a poll tick is in flight; the later call wins.
func (c *Controller) UpdateAssignments() {
	c.mu.Lock()
	path := c.currentPath
	c.mu.Unlock()
	if path == "" {
		return
	}
	c.assignmentsPoller.Trigger()
}

// UpdateCourseAndUserData forces an out-of-band course/user fetch.
func (c *Controller) UpdateCourseAndUserData() {
	c.courseUserPoller.Trigger()
}

// UpdateNotebookFiles forces an out-of-band notebook index fetch.
func (c *Controller) UpdateNotebookFiles() {
	c.notebookPoller.Trigger()
}

// StudentNotebookExists reports whether the notebook index lists the given
// path (the assignment's student notebook when path is empty) for the
// assignment. Returns false while the index has not loaded; never errors on
// missing data.
func (c *Controller) StudentNotebookExists(assignment models.Assignment, path string) bool {
	if path == "" {
		path = assignment.StudentNotebookPath
	}
	c.mu.Lock()
	notebookFiles := c.notebookFiles
	c.mu.Unlock()

	index, ok := notebookFiles.Value()
	if !ok {
		return false
	}
	return lo.Contains(index[assignment.ID], path)
}

// Snapshot returns a copy of all externally visible state. Loading is true
// iff any of the five server-owned values has not loaded yet.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		CurrentPath: c.currentPath,
		Loading: c.currentAssignment.IsLoading() ||
			c.assignments.IsLoading() ||
			c.student.IsLoading() ||
			c.course.IsLoading() ||
			c.notebookFiles.IsLoading(),
		Assignments:       c.assignments,
		CurrentAssignment: c.currentAssignment,
		Student:           c.student,
		Course:            c.course,
		NotebookFiles:     c.notebookFiles,
		JobStatuses:       append([]models.JobStatus(nil), c.jobStatuses...),
	}
}
