package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/release-tools/gitbump/internal/domain"
	"github.com/release-tools/gitbump/internal/repository"
	"github.com/release-tools/gitbump/internal/usecase"
)

// BumpConfig carries the per-invocation options for the bump workflow.
type BumpConfig struct {
	Directive domain.Directive
	Message   string
	PushTags  bool
	DryRun    bool
}

// BumpOrchestrator drives a full version bump: compute the next version,
// persist it, commit, tag, and optionally push tags.
type BumpOrchestrator struct {
	store       repository.ConfigStore
	tagger      repository.Tagger
	log         *zap.Logger
	tagPrefix   string
	pushTimeout time.Duration
	now         func() time.Time
}

// NewBumpOrchestrator creates a new bump orchestrator.
func NewBumpOrchestrator(
	store repository.ConfigStore,
	tagger repository.Tagger,
	log *zap.Logger,
	tagPrefix string,
	pushTimeout time.Duration,
) *BumpOrchestrator {
	return &BumpOrchestrator{
		store:       store,
		tagger:      tagger,
		log:         log,
		tagPrefix:   tagPrefix,
		pushTimeout: pushTimeout,
		now:         time.Now,
	}
}

// Execute runs the bump workflow. Every failure is terminal; only the tag
// push is retried.
func (o *BumpOrchestrator) Execute(ctx context.Context, cfg BumpConfig) error {
	uc := &usecase.NextVersionUseCase{Store: o.store}
	current, next, err := uc.Execute(ctx, cfg.Directive)
	if err != nil {
		return err
	}
	o.log.Info("computed next version",
		zap.String("current", current.String()),
		zap.String("next", next.String()))

	if cfg.DryRun {
		o.log.Info("dry-run complete, nothing written", zap.String("next", next.String()))
		return nil
	}

	if err := o.store.Write(ctx, next, o.now()); err != nil {
		return fmt.Errorf("failed to write new version: %w", err)
	}

	message := releaseMessage(cfg.Directive, next, cfg.Message)
	if err := o.tagger.CommitAll(ctx, message); err != nil {
		return fmt.Errorf("failed to commit version change: %w", err)
	}

	tagName := o.tagPrefix + next.String()
	if err := o.tagger.CreateTag(ctx, tagName, message); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	o.log.Info("created tag", zap.String("tag", tagName))

	if cfg.PushTags {
		if err := o.pushTags(ctx); err != nil {
			return fmt.Errorf("failed to push tags: %w", err)
		}
		o.log.Info("pushed tags")
	}
	return nil
}

// pushTags pushes with exponential backoff under the configured timeout.
func (o *BumpOrchestrator) pushTags(ctx context.Context) error {
	pushCtx, cancel := context.WithTimeout(ctx, o.pushTimeout)
	defer cancel()
	backoff := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	return retry.Do(pushCtx, backoff, func(retryCtx context.Context) error {
		if err := o.tagger.PushTags(retryCtx); err != nil {
			o.log.Warn("tag push failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}

// releaseMessage builds the commit and tag message: a level-derived
// description plus the version, with the user's words appended.
func releaseMessage(d domain.Directive, next domain.Version, extra string) string {
	var desc string
	switch d.EffectiveLevel() {
	case domain.LevelMajor:
		desc = "Version"
	case domain.LevelMinor:
		desc = "Minor update"
	default:
		desc = "Patch"
	}
	message := fmt.Sprintf("%s %s", desc, next)
	if extra != "" {
		message += ": " + extra
	}
	return message
}
