package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/eduhelx/student-panel/internal/models"
)

type EventName string

const (
	EventCrud      EventName = "crud_event"
	EventJobStatus EventName = "job_status_event"
	EventGitPull   EventName = "git_pull_event"
)

// Envelope is the wire shape shared by both directions.
type Envelope struct {
	EventName EventName `json:"event_name"`
	UUID      string    `json:"uuid"`
	// Originator links a server reply back to a prior outgoing message.
	Originator string          `json:"originator,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// IncomingMessage is one classified server frame. Concrete types are
// *CrudMessage, *JobStatusMessage and *GitPullMessage; consumers dispatch by
// type switch. Messages are compared by identity, not content.
type IncomingMessage interface {
	Event() EventName
	UUID() string
	OriginatorUUID() string
}

type envelopeFields struct {
	eventName  EventName
	uuid       string
	originator string
}

func (e envelopeFields) Event() EventName       { return e.eventName }
func (e envelopeFields) UUID() string           { return e.uuid }
func (e envelopeFields) OriginatorUUID() string { return e.originator }

type CrudOperation string

const (
	CrudCreate CrudOperation = "CREATE"
	CrudModify CrudOperation = "MODIFY"
	CrudDelete CrudOperation = "DELETE"
)

type CrudResource string

const (
	ResourceCourse     CrudResource = "COURSE"
	ResourceUser       CrudResource = "USER"
	ResourceAssignment CrudResource = "ASSIGNMENT"
	ResourceSubmission CrudResource = "SUBMISSION"
)

// CrudMessage is a cache-invalidation signal: something changed server-side,
// no payload diff is sent.
type CrudMessage struct {
	envelopeFields
	Operation  CrudOperation
	Resource   CrudResource
	ResourceID int64
}

type JobStatusMessage struct {
	envelopeFields
	JobID     string
	JobType   *string
	JobStatus models.JobState
}

type GitPullMessage struct {
	envelopeFields
	Files []string
}

type crudPayload struct {
	CrudType     CrudOperation `json:"crud_type"`
	ResourceType CrudResource  `json:"resource_type"`
	ResourceID   int64         `json:"resource_id"`
}

type gitPullPayload struct {
	Files []string `json:"files"`
}

// Classify parses a raw frame into its typed variant. An unrecognized event
// name yields (nil, nil); the caller decides how loudly to drop it.
func Classify(raw []byte) (IncomingMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed websocket frame: %w", err)
	}

	fields := envelopeFields{
		eventName:  env.EventName,
		uuid:       env.UUID,
		originator: env.Originator,
	}

	switch env.EventName {
	case EventCrud:
		var payload crudPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("malformed crud payload: %w", err)
		}
		return &CrudMessage{
			envelopeFields: fields,
			Operation:      payload.CrudType,
			Resource:       payload.ResourceType,
			ResourceID:     payload.ResourceID,
		}, nil
	case EventJobStatus:
		var payload models.JobStatusResponse
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("malformed job status payload: %w", err)
		}
		return &JobStatusMessage{
			envelopeFields: fields,
			JobID:          payload.ID,
			JobType:        payload.Type,
			JobStatus:      models.JobState(payload.Status),
		}, nil
	case EventGitPull:
		var payload gitPullPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("malformed git pull payload: %w", err)
		}
		return &GitPullMessage{
			envelopeFields: fields,
			Files:          payload.Files,
		}, nil
	default:
		return nil, nil
	}
}

// OutgoingMessage serializes to the same envelope shape the server sends.
type OutgoingMessage struct {
	EventName  EventName `json:"event_name"`
	UUID       string    `json:"uuid"`
	Originator string    `json:"originator,omitempty"`
	Data       any       `json:"data"`
}

func NewOutgoingMessage(eventName EventName, data any) OutgoingMessage {
	return OutgoingMessage{
		EventName: eventName,
		UUID:      uuid.NewString(),
		Data:      data,
	}
}
