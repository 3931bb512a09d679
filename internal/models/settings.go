package models

import (
	"fmt"
	"strconv"
)

type ServerSettings struct {
	ServerVersion string `json:"server_version"`
	RepoRoot      string `json:"repo_root"`
}

func ServerSettingsFromResponse(res ServerSettingsResponse) ServerSettings {
	return ServerSettings{
		ServerVersion: res.ServerVersion,
		RepoRoot:      res.RepoRoot,
	}
}

// NotebookIndex maps assignment ids to the notebook paths found under each
// assignment directory.
type NotebookIndex map[int64][]string

func NotebookIndexFromResponse(res NotebookFilesResponse) (NotebookIndex, error) {
	index := make(NotebookIndex, len(res.Notebooks))
	for key, paths := range res.Notebooks {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment id %q in notebook index: %w", key, err)
		}
		index[id] = append([]string(nil), paths...)
	}
	return index, nil
}
