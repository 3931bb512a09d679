package models

import "strings"

type Commit struct {
	ID             string `json:"id"`
	Message        string `json:"message"`
	AuthorName     string `json:"author_name"`
	AuthorEmail    string `json:"author_email"`
	CommitterName  string `json:"committer_name"`
	CommitterEmail string `json:"committer_email"`
}

// IDShort is the abbreviated commit id as git displays it.
func (c Commit) IDShort() string {
	if len(c.ID) < 7 {
		return c.ID
	}
	return c.ID[:7]
}

// Summary is everything before the first newline in the commit message.
func (c Commit) Summary() string {
	summary, _, _ := strings.Cut(c.Message, "\n")
	return summary
}

// Description is everything after the first newline in the commit message,
// empty when the message is a single line.
func (c Commit) Description() string {
	_, description, _ := strings.Cut(c.Message, "\n")
	return description
}

func CommitFromResponse(res CommitResponse) Commit {
	return Commit{
		ID:             res.ID,
		Message:        res.Message,
		AuthorName:     res.AuthorName,
		AuthorEmail:    res.AuthorEmail,
		CommitterName:  res.CommitterName,
		CommitterEmail: res.CommitterEmail,
	}
}
