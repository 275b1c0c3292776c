package gitchanges

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
	"github.com/releasebot/cascade/internal/infrastructure/repositories/registryfile"
)

// ChangeRepository derives version changes by comparing the registry
// file in the working tree against the copy committed at HEAD. This is
// the structured replacement for grepping `git diff` output: both sides
// are parsed as registries and diffed module by module.
type ChangeRepository struct{}

// NewChangeRepository creates the git-backed change repository.
func NewChangeRepository() *ChangeRepository {
	return &ChangeRepository{}
}

var _ repositories.ChangeRepository = (*ChangeRepository)(nil)

// DetectChanges returns one change per module whose working-tree
// version differs from the committed one. Modules added since HEAD
// produce no change; their first version is not a bump.
func (it *ChangeRepository) DetectChanges(
	_ context.Context,
	repoDir, registryPath string,
) ([]entities.VersionChange, error) {
	current, err := loadWorkingTreeRegistry(repoDir, registryPath)
	if err != nil {
		return nil, err
	}

	committed, committedErr := loadCommittedRegistry(repoDir, registryPath)
	if committedErr != nil {
		return nil, committedErr
	}
	if committed == nil {
		logger.Debugf("Registry %s not present at HEAD, nothing to diff", registryPath)
		return nil, nil
	}

	var changes []entities.VersionChange
	for _, name := range current.Names() {
		previous := committed.Get(name)
		if previous == nil {
			logger.Debugf("Module %s is new since HEAD, skipping", name)
			continue
		}

		module := current.Get(name)
		if module.Version == previous.Version {
			continue
		}

		changes = append(changes, entities.VersionChange{
			Name:       name,
			OldVersion: previous.Version,
			NewVersion: module.Version,
			Origin:     "git",
		})
	}

	return changes, nil
}

func loadWorkingTreeRegistry(repoDir, registryPath string) (*entities.Registry, error) {
	path := registryPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoDir, registryPath)
	}

	format, err := registryfile.FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, &entities.LoadError{Path: path, Reason: "cannot read file", Err: readErr}
	}
	return registryfile.Decode(data, format, path)
}

// loadCommittedRegistry reads the registry file from the tree at HEAD.
// A nil registry with nil error means the file does not exist there.
func loadCommittedRegistry(repoDir, registryPath string) (*entities.Registry, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository %q: %w", repoDir, err)
	}

	head, headErr := repo.Head()
	if headErr != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", headErr)
	}

	commit, commitErr := repo.CommitObject(head.Hash())
	if commitErr != nil {
		return nil, fmt.Errorf("failed to read HEAD commit: %w", commitErr)
	}

	tree, treeErr := commit.Tree()
	if treeErr != nil {
		return nil, fmt.Errorf("failed to read HEAD tree: %w", treeErr)
	}

	rel := treePath(repoDir, registryPath)
	file, fileErr := tree.File(rel)
	if fileErr != nil {
		if errors.Is(fileErr, object.ErrFileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %q at HEAD: %w", rel, fileErr)
	}

	contents, contentsErr := file.Contents()
	if contentsErr != nil {
		return nil, fmt.Errorf("failed to read %q at HEAD: %w", rel, contentsErr)
	}

	format, formatErr := registryfile.FormatForPath(rel)
	if formatErr != nil {
		return nil, formatErr
	}
	return registryfile.Decode([]byte(contents), format, rel+"@HEAD")
}

// treePath converts the registry path to the slash-separated path git
// trees use, relative to the repository root.
func treePath(repoDir, registryPath string) string {
	rel := registryPath
	if filepath.IsAbs(registryPath) {
		if r, err := filepath.Rel(repoDir, registryPath); err == nil {
			rel = r
		}
	}
	return filepath.ToSlash(rel)
}
