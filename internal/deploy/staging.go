package deploy

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"instaforce.app/engine/internal/model"
)

// Stage writes files into fs, creating parent directories, and returns the
// written paths (joined onto fs.Root()) in write order. Callers validate the
// batch first; Stage only re-derives each destination.
func Stage(fs billy.Filesystem, files []model.GeneratedFile) ([]string, error) {
	written := make([]string, 0, len(files))
	for _, f := range files {
		dest, err := StagingPath(f)
		if err != nil {
			return written, err
		}
		if err := util.WriteFile(fs, dest, []byte(f.Content), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", dest, err)
		}
		written = append(written, fs.Join(fs.Root(), dest))
	}
	return written, nil
}

// DryRun validates files and stages them into memory. Nothing touches disk
// and no CLI is invoked.
func DryRun(files []model.GeneratedFile) (paths []string, warnings []string, err error) {
	warnings, err = ValidateBatch(files)
	if err != nil {
		return nil, nil, err
	}
	paths, err = Stage(memfs.New(), files)
	if err != nil {
		return nil, warnings, err
	}
	return paths, warnings, nil
}
