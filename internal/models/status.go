package models

import (
	"time"

	"github.com/samber/lo"
)

type AssignmentStatus string

const (
	StatusUnpublished AssignmentStatus = "UNPUBLISHED"
	StatusUpcoming    AssignmentStatus = "UPCOMING"
	StatusOpen        AssignmentStatus = "OPEN"
	StatusClosed      AssignmentStatus = "CLOSED"
)

func (s AssignmentStatus) String() string {
	return string(s)
}

// DeriveStatus computes the lifecycle state of an assignment at the given
// instant. Boundaries are closed-open: an instant equal to the adjusted
// available date is OPEN, equal to the adjusted due date is CLOSED. The
// function is pure so callers can re-evaluate it on a ticking clock without
// re-fetching.
func DeriveStatus(a Assignment, now time.Time) AssignmentStatus {
	if a.AdjustedAvailableDate == nil {
		return StatusUnpublished
	}
	if now.Before(*a.AdjustedAvailableDate) {
		return StatusUpcoming
	}
	if a.AdjustedDueDate != nil && !now.Before(*a.AdjustedDueDate) {
		return StatusClosed
	}
	return StatusOpen
}

// IsExtended reports whether the due date has been pushed past the nominal
// one for this student. Display-only; status derivation ignores it.
func IsExtended(a Assignment) bool {
	return datesDiffer(a.AdjustedDueDate, a.DueDate)
}

// IsDeferred reports whether the release date has been pushed past the
// nominal one for this student.
func IsDeferred(a Assignment) bool {
	return datesDiffer(a.AdjustedAvailableDate, a.AvailableDate)
}

func datesDiffer(adjusted, nominal *time.Time) bool {
	if adjusted == nil || nominal == nil {
		return adjusted != nil || nominal != nil
	}
	return !adjusted.Equal(*nominal)
}

// StudentSubmissions pairs a student with their submissions for one
// assignment. Latest is nil when the list is empty.
type StudentSubmissions struct {
	Student     Student      `json:"student"`
	Submissions []Submission `json:"submissions"`
	Latest      *Submission  `json:"latest"`
}

// SubmissionBuckets partitions students by submission state for one
// assignment. Graded is an extension point that no current data source
// populates; it stays empty on purpose.
type SubmissionBuckets struct {
	Submitted   []StudentSubmissions `json:"submitted"`
	Unsubmitted []Student            `json:"unsubmitted"`
	Graded      []StudentSubmissions `json:"graded"`
}

// MatchSubmissions places every student in exactly one bucket. "Most recent"
// per student is the submission with the greatest SubmissionTime.
func MatchSubmissions(students []Student, byOnyen map[string][]Submission) SubmissionBuckets {
	buckets := SubmissionBuckets{
		Submitted:   []StudentSubmissions{},
		Unsubmitted: []Student{},
		Graded:      []StudentSubmissions{},
	}
	for _, student := range students {
		submissions := byOnyen[student.Onyen]
		if len(submissions) == 0 {
			buckets.Unsubmitted = append(buckets.Unsubmitted, student)
			continue
		}
		latest := lo.MaxBy(submissions, func(a, b Submission) bool {
			return a.SubmissionTime.After(b.SubmissionTime)
		})
		buckets.Submitted = append(buckets.Submitted, StudentSubmissions{
			Student:     student,
			Submissions: submissions,
			Latest:      &latest,
		})
	}
	return buckets
}
