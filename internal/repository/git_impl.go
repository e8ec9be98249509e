package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// gitTagger is the go-git implementation of the Tagger interface.
type gitTagger struct {
	repo      *git.Repository
	remote    string
	userName  string
	userEmail string
}

// NewTagger opens the repository containing the current working directory.
func NewTagger(remote, userName, userEmail string) (Tagger, error) {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open git repository: %v", ErrVCS, err)
	}
	return &gitTagger{repo: repo, remote: remote, userName: userName, userEmail: userEmail}, nil
}

// Root returns the worktree root, used to locate the project ini file.
func (t *gitTagger) Root() (string, error) {
	wt, err := t.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: failed to get worktree: %v", ErrVCS, err)
	}
	return wt.Filesystem.Root(), nil
}

// CommitAll stages every change to tracked files and commits it, leaving
// untracked files alone. A worktree with nothing to commit is not an error.
func (t *gitTagger) CommitAll(_ context.Context, message string) error {
	wt, err := t.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: failed to get worktree: %v", ErrVCS, err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("%w: failed to get status: %v", ErrVCS, err)
	}
	for path, fileStatus := range status {
		if fileStatus.Worktree == git.Untracked {
			continue
		}
		if _, err := wt.Add(path); err != nil {
			return fmt.Errorf("%w: failed to stage %s: %v", ErrVCS, path, err)
		}
	}
	_, err = wt.Commit(message, &git.CommitOptions{Author: t.signature()})
	if err != nil && !errors.Is(err, git.ErrEmptyCommit) {
		return fmt.Errorf("%w: failed to commit: %v", ErrVCS, err)
	}
	return nil
}

// CreateTag creates an annotated tag at HEAD.
func (t *gitTagger) CreateTag(_ context.Context, name, message string) error {
	head, err := t.repo.Head()
	if err != nil {
		return fmt.Errorf("%w: failed to get HEAD: %v", ErrVCS, err)
	}
	_, err = t.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Message: message,
		Tagger:  t.signature(),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create tag %s: %v", ErrVCS, name, err)
	}
	return nil
}

// PushTags pushes all tags to the configured remote.
func (t *gitTagger) PushTags(ctx context.Context) error {
	err := t.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: t.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec("refs/tags/*:refs/tags/*")},
		Auth:       t.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("%w: failed to push tags: %v", ErrVCS, err)
	}
	return nil
}

func (t *gitTagger) signature() *object.Signature {
	return &object.Signature{
		Name:  t.userName,
		Email: t.userEmail,
		When:  time.Now(),
	}
}

// getAuth returns token authentication when running in CI.
func (t *gitTagger) getAuth() *http.BasicAuth {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GITBUMP_TOKEN")
	}
	if token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}
}
