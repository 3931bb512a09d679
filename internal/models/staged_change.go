package models

type ChangeType string

const (
	ChangeTypeFile      ChangeType = "file"
	ChangeTypeDirectory ChangeType = "directory"
)

// StagedChange is a working-tree delta relative to the last submission.
// ModificationType carries the git porcelain code ("??", "M", "D", ...)
// verbatim.
type StagedChange struct {
	PathFromRepo     string     `json:"path_from_repo"`
	PathFromAssn     string     `json:"path_from_assn"`
	ModificationType string     `json:"modification_type"`
	Type             ChangeType `json:"type"`
}

func StagedChangeFromResponse(res StagedChangeResponse) StagedChange {
	return StagedChange{
		PathFromRepo:     res.PathFromRepo,
		PathFromAssn:     res.PathFromAssn,
		ModificationType: res.ModificationType,
		Type:             ChangeType(res.Type),
	}
}
