package models

import (
	"time"

	"github.com/samber/lo"
)

type Assignment struct {
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

	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
	// Nominal dates, before per-student extensions or deferrals.
	AvailableDate *time.Time `json:"available_date"`
	DueDate       *time.Time `json:"due_date"`
	// Adjusted dates are both nil while the assignment is unpublished.
	AdjustedAvailableDate *time.Time `json:"adjusted_available_date"`
	AdjustedDueDate       *time.Time `json:"adjusted_due_date"`

	StagedChanges []StagedChange `json:"staged_changes"`
	// Submissions keyed by student onyen. Ordering within a student's list is
	// server-given.
	SubmissionsByOnyen map[string][]Submission `json:"submissions_by_onyen"`
}

// CurrentAssignment is the assignment containing the current working
// directory. Unlike a plain Assignment its own submission list is always
// defined.
type CurrentAssignment struct {
	Assignment
	Submissions []Submission `json:"submissions"`
}

// AssignmentsBundle is the result of one assignments poll. A nil Assignments
// slice means the current directory is not inside the class repository.
type AssignmentsBundle struct {
	Assignments       []Assignment
	CurrentAssignment *CurrentAssignment
}

func AssignmentFromResponse(res AssignmentResponse) (Assignment, error) {
	createdDate, err := parseDate("created_date", res.CreatedDate)
	if err != nil {
		return Assignment{}, err
	}
	lastModifiedDate, err := parseDate("last_modified_date", res.LastModifiedDate)
	if err != nil {
		return Assignment{}, err
	}
	availableDate, err := parseNullableDate("available_date", res.AvailableDate)
	if err != nil {
		return Assignment{}, err
	}
	dueDate, err := parseNullableDate("due_date", res.DueDate)
	if err != nil {
		return Assignment{}, err
	}
	adjustedAvailableDate, err := parseNullableDate("adjusted_available_date", res.AdjustedAvailableDate)
	if err != nil {
		return Assignment{}, err
	}
	adjustedDueDate, err := parseNullableDate("adjusted_due_date", res.AdjustedDueDate)
	if err != nil {
		return Assignment{}, err
	}

	var submissionsByOnyen map[string][]Submission
	if res.SubmissionsByOnyen != nil {
		submissionsByOnyen = make(map[string][]Submission, len(res.SubmissionsByOnyen))
		for onyen, list := range res.SubmissionsByOnyen {
			submissions, err := submissionsFromResponse(list)
			if err != nil {
				return Assignment{}, err
			}
			submissionsByOnyen[onyen] = submissions
		}
	}

	return Assignment{
		ID:                    res.ID,
		Name:                  res.Name,
		DirectoryPath:         res.DirectoryPath,
		AbsoluteDirectoryPath: res.AbsoluteDirectoryPath,
		MasterNotebookPath:    res.MasterNotebookPath,
		StudentNotebookPath:   res.StudentNotebookPath,
		GitRemoteURL:          res.GitRemoteURL,
		RevisionCount:         res.RevisionCount,
		IgnoredFiles:          append([]string(nil), res.IgnoredFiles...),
		MaxAttempts:           res.MaxAttempts,
		CurrentAttempts:       res.CurrentAttempts,
		CreatedDate:           createdDate,
		LastModifiedDate:      lastModifiedDate,
		AvailableDate:         availableDate,
		DueDate:               dueDate,
		AdjustedAvailableDate: adjustedAvailableDate,
		AdjustedDueDate:       adjustedDueDate,
		StagedChanges: lo.Map(res.StagedChanges, func(r StagedChangeResponse, _ int) StagedChange {
			return StagedChangeFromResponse(r)
		}),
		SubmissionsByOnyen: submissionsByOnyen,
	}, nil
}

func CurrentAssignmentFromResponse(res AssignmentResponse) (CurrentAssignment, error) {
	assignment, err := AssignmentFromResponse(res)
	if err != nil {
		return CurrentAssignment{}, err
	}
	submissions, err := submissionsFromResponse(res.Submissions)
	if err != nil {
		return CurrentAssignment{}, err
	}
	if submissions == nil {
		submissions = []Submission{}
	}
	return CurrentAssignment{
		Assignment:  assignment,
		Submissions: submissions,
	}, nil
}

func AssignmentsBundleFromResponse(res AssignmentsResponse) (AssignmentsBundle, error) {
	var bundle AssignmentsBundle
	if res.Assignments != nil {
		bundle.Assignments = make([]Assignment, 0, len(res.Assignments))
		for _, r := range res.Assignments {
			assignment, err := AssignmentFromResponse(r)
			if err != nil {
				return AssignmentsBundle{}, err
			}
			bundle.Assignments = append(bundle.Assignments, assignment)
		}
	}
	if res.CurrentAssignment != nil {
		current, err := CurrentAssignmentFromResponse(*res.CurrentAssignment)
		if err != nil {
			return AssignmentsBundle{}, err
		}
		bundle.CurrentAssignment = &current
	}
	return bundle, nil
}
