package merge

import (
	"bytes"
	"maps"
	"slices"

	"github.com/wahlandcase/mergeall/internal/git"
	"github.com/wahlandcase/mergeall/internal/models"
)

type fileState struct {
	content []byte
	exists  bool
}

// Snapshot holds the working-tree content of the protected paths at run start
type Snapshot struct {
	repoPath string
	files    map[string]fileState
}

// TakeSnapshot records the current content of every protected path
func TakeSnapshot(repoPath string, protected models.ProtectedPaths) (*Snapshot, error) {
	s := &Snapshot{repoPath: repoPath, files: make(map[string]fileState)}
	for _, path := range protected.List() {
		content, exists, err := git.ReadWorktreeFile(repoPath, path)
		if err != nil {
			return nil, err
		}
		s.files[path] = fileState{content: content, exists: exists}
	}
	return s, nil
}

// Drifted returns the protected paths whose content no longer matches the snapshot
func (s *Snapshot) Drifted() ([]string, error) {
	var drifted []string
	for _, path := range slices.Sorted(maps.Keys(s.files)) {
		want := s.files[path]
		content, exists, err := git.ReadWorktreeFile(s.repoPath, path)
		if err != nil {
			return nil, err
		}
		if exists != want.exists || !bytes.Equal(content, want.content) {
			drifted = append(drifted, path)
		}
	}
	return drifted, nil
}
