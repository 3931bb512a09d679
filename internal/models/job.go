package models

import "time"

type JobState string

const (
	JobStatePending JobState = "PENDING"
	JobStateStarted JobState = "STARTED"
	JobStateRetry   JobState = "RETRY"
	JobStateSuccess JobState = "SUCCESS"
	JobStateFailure JobState = "FAILURE"
	JobStateRevoked JobState = "REVOKED"
)

func (s JobState) String() string {
	return string(s)
}

// IsComplete reports whether the job has reached a terminal state.
func (s JobState) IsComplete() bool {
	switch s {
	case JobStateSuccess, JobStateFailure, JobStateRevoked:
		return true
	default:
		return false
	}
}

type JobStatus struct {
	ID     string   `json:"id"`
	Status JobState `json:"status"`
	// Type may be nil for PENDING statuses.
	Type *string `json:"type"`
}

func (j JobStatus) IsComplete() bool {
	return j.Status.IsComplete()
}

type JobResult struct {
	JobStatus
	Result       any        `json:"result"`
	Successful   bool       `json:"successful"`
	Failed       bool       `json:"failed"`
	Queue        *string    `json:"queue"`
	Retries      *int       `json:"retries"`
	Traceback    *string    `json:"traceback"`
	FinishedDate *time.Time `json:"finished_date"`
}

func JobStatusFromResponse(res JobStatusResponse) JobStatus {
	return JobStatus{
		ID:     res.ID,
		Status: JobState(res.Status),
		Type:   res.Type,
	}
}

func JobResultFromResponse(res JobResultResponse) (JobResult, error) {
	finishedDate, err := parseNullableDate("finished_date", res.FinishedDate)
	if err != nil {
		return JobResult{}, err
	}
	return JobResult{
		JobStatus:    JobStatusFromResponse(res.JobStatusResponse),
		Result:       res.Result,
		Successful:   res.Successful,
		Failed:       res.Failed,
		Queue:        res.Queue,
		Retries:      res.Retries,
		Traceback:    res.Traceback,
		FinishedDate: finishedDate,
	}, nil
}
