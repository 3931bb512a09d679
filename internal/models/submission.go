package models

import "time"

type Submission struct {
	ID             int64     `json:"id"`
	Active         bool      `json:"active"`
	SubmissionTime time.Time `json:"submission_time"`
	Commit         Commit    `json:"commit"`
}

func SubmissionFromResponse(res SubmissionResponse) (Submission, error) {
	submissionTime, err := parseDate("submission_time", res.SubmissionTime)
	if err != nil {
		return Submission{}, err
	}
	return Submission{
		ID:             res.ID,
		Active:         res.Active,
		SubmissionTime: submissionTime,
		Commit:         CommitFromResponse(res.Commit),
	}, nil
}

func submissionsFromResponse(res []SubmissionResponse) ([]Submission, error) {
	if res == nil {
		return nil, nil
	}
	submissions := make([]Submission, 0, len(res))
	for _, r := range res {
		submission, err := SubmissionFromResponse(r)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}
