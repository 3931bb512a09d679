package models

// Wire shapes returned by the server extension. Dates arrive as RFC 3339
// strings; nullable dates are pointers.

type CommitResponse struct {
	ID             string `json:"id"`
	Message        string `json:"message"`
	AuthorName     string `json:"author_name"`
	AuthorEmail    string `json:"author_email"`
	CommitterName  string `json:"committer_name"`
	CommitterEmail string `json:"committer_email"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	UserType string `json:"user_type"`
	Onyen    string `json:"onyen"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type InstructorResponse struct {
	UserResponse
}

type StudentResponse struct {
	UserResponse
	JoinDate      string  `json:"join_date"`
	ExitDate      *string `json:"exit_date"`
	ForkRemoteURL string  `json:"fork_remote_url"`
	ForkCloned    bool    `json:"fork_cloned"`
}

type CourseResponse struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	MasterRemoteURL string               `json:"master_remote_url"`
	Instructors     []InstructorResponse `json:"instructors"`
}

type StagedChangeResponse struct {
	PathFromRepo     string `json:"path_from_repo"`
	PathFromAssn     string `json:"path_from_assn"`
	ModificationType string `json:"modification_type"`
	Type             string `json:"type"`
}

type SubmissionResponse struct {
	ID             int64          `json:"id"`
	Active         bool           `json:"active"`
	SubmissionTime string         `json:"submission_time"`
	Commit         CommitResponse `json:"commit"`
}

type AssignmentResponse struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	DirectoryPath         string   `json:"directory_path"`
	AbsoluteDirectoryPath string   `json:"absolute_directory_path"`
	MasterNotebookPath    string   `json:"master_notebook_path"`
	StudentNotebookPath   string   `json:"student_notebook_path"`
	GitRemoteURL          string   `json:"git_remote_url"`
	RevisionCount         int      `json:"revision_count"`
	IgnoredFiles          []string `json:"ignored_files"`
	MaxAttempts           *int     `json:"max_attempts"`
	CurrentAttempts       int      `json:"current_attempts"`

	CreatedDate           string  `json:"created_date"`
	AvailableDate         *string `json:"available_date"`
	AdjustedAvailableDate *string `json:"adjusted_available_date"`
	DueDate               *string `json:"due_date"`
	AdjustedDueDate       *string `json:"adjusted_due_date"`
	LastModifiedDate      string  `json:"last_modified_date"`

	// Own submissions of the requesting student; present on the current
	// assignment only.
	Submissions []SubmissionResponse `json:"submissions"`
	// Submissions keyed by student onyen, for grading-progress views.
	SubmissionsByOnyen map[string][]SubmissionResponse `json:"submissions_by_onyen"`
	StagedChanges      []StagedChangeResponse          `json:"staged_changes"`
}

type AssignmentsResponse struct {
	Assignments       []AssignmentResponse `json:"assignments"`
	CurrentAssignment *AssignmentResponse  `json:"current_assignment"`
}

type CourseStudentResponse struct {
	Student StudentResponse `json:"student"`
	Course  CourseResponse  `json:"course"`
}

type NotebookFilesResponse struct {
	Notebooks map[string][]string `json:"notebooks"`
	RepoRoot  string              `json:"repo_root"`
}

// The settings handler predates the snake_case convention and keeps its
// camelCase keys.
type ServerSettingsResponse struct {
	ServerVersion string `json:"serverVersion"`
	RepoRoot      string `json:"repoRoot"`
}

type CloneStudentRepositoryResponse struct {
	Path string `json:"path"`
}

type JobStatusResponse struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Type   *string `json:"type"`
}

type JobResultResponse struct {
	JobStatusResponse
	Result       any     `json:"result"`
	Successful   bool    `json:"successful"`
	Failed       bool    `json:"failed"`
	Queue        *string `json:"queue"`
	Retries      *int    `json:"retries"`
	Traceback    *string `json:"traceback"`
	FinishedDate *string `json:"finished_date"`
}
