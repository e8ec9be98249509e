package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/release-tools/gitbump/internal/domain"
)

// ErrConfigRead is returned when the project configuration cannot be read
// or does not contain a usable version.
var ErrConfigRead = fmt.Errorf("config read")

// ErrConfigWrite is returned when the project configuration cannot be
// written back.
var ErrConfigWrite = fmt.Errorf("config write")

// ConfigStore persists the project version.

type ConfigStore interface {
	Read(ctx context.Context) (domain.Version, error)
	Write(ctx context.Context, v domain.Version, releaseDate time.Time) error
}
