package repository

import (
	"context"
	"fmt"
)

// ErrVCS is returned when a git operation fails.
var ErrVCS = fmt.Errorf("vcs")

// Tagger defines the git operations the bump workflow needs.

type Tagger interface {
	Root() (string, error)
	CommitAll(ctx context.Context, message string) error
	CreateTag(ctx context.Context, name, message string) error
	PushTags(ctx context.Context) error
}
