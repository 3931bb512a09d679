package host

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eduhelx/student-panel/pkg/events"
)

// Collaborators provided by the hosting application. The controller only
// depends on these interfaces; tests and embedders supply their own.

// FileBrowser exposes the working directory the user is looking at.
type FileBrowser interface {
	Path() string
	// OnPathChanged fires synchronously on every path change and returns an
	// unsubscribe handle.
	OnPathChanged(fn func(newPath string)) func()
}

// Dialog shows a blocking confirmation and reports whether it was accepted.
type Dialog interface {
	Confirm(ctx context.Context, title, body string) (bool, error)
}

// Commands is the host's command-execution registry.
type Commands interface {
	Execute(ctx context.Context, commandID string, args map[string]any) error
}

// Browser is a FileBrowser driven by explicit SetPath calls.
type Browser struct {
	mu      sync.Mutex
	path    string
	changed *events.Emitter[string]
}

func NewBrowser(initialPath string) *Browser {
	return &Browser{
		path:    initialPath,
		changed: events.NewEmitter[string](),
	}
}

func (b *Browser) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *Browser) SetPath(path string) {
	b.mu.Lock()
	if b.path == path {
		b.mu.Unlock()
		return
	}
	b.path = path
	b.mu.Unlock()
	b.changed.Emit(path)
}

func (b *Browser) OnPathChanged(fn func(string)) func() {
	return b.changed.Subscribe(fn)
}

// LogDialog accepts every confirmation after logging it. It stands in for a
// modal surface when the panel runs headless.
type LogDialog struct {
	Logger zerolog.Logger
}

func (d LogDialog) Confirm(_ context.Context, title, body string) (bool, error) {
	d.Logger.Info().Str("title", title).Str("body", body).Msg("Auto-accepting confirmation")
	return true, nil
}

// LogCommands records command executions without running anything.
type LogCommands struct {
	Logger zerolog.Logger
}

func (c LogCommands) Execute(_ context.Context, commandID string, args map[string]any) error {
	c.Logger.Info().Str("command", commandID).Interface("args", args).Msg("Command executed")
	return nil
}
