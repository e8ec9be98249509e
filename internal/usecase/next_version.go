package usecase

import (
	"context"
	"fmt"

	"github.com/release-tools/gitbump/internal/domain"
	"github.com/release-tools/gitbump/internal/repository"
)

// NextVersionUseCase reads the current project version and applies a bump
// directive to it.

type NextVersionUseCase struct {
	Store repository.ConfigStore
}

// Execute returns the current and next versions.
func (uc *NextVersionUseCase) Execute(ctx context.Context, d domain.Directive) (domain.Version, domain.Version, error) {
	current, err := uc.Store.Read(ctx)
	if err != nil {
		return domain.Version{}, domain.Version{}, fmt.Errorf("failed to read current version: %w", err)
	}
	next, err := domain.Next(current, d)
	if err != nil {
		return domain.Version{}, domain.Version{}, err
	}
	return current, next, nil
}
