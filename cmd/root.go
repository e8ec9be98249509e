package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/release-tools/gitbump/internal/domain"
	"github.com/release-tools/gitbump/internal/orchestrator"
	"github.com/release-tools/gitbump/internal/repository"
)

// bumpFlags collects the root command's flag values.
type bumpFlags struct {
	major bool
	minor bool
	patch bool

	alpha bool
	beta  bool
	rc    bool

	iniFile  string
	pushTags bool
	dryRun   bool
}

// NewRootCmd creates the git-bump root command.
func NewRootCmd() *cobra.Command {
	var flags bumpFlags
	cmd := &cobra.Command{
		Use:   "git-bump [flags] [message...]",
		Short: "Increment the project version and tag the repository",
		Long: `git-bump increments the semantic version recorded in the project's ini
file, refreshes its release-date and copyright metadata, commits the
change and tags the repository, optionally pushing tags to the remote.

When a pre-release flag is used while a pre-release is already in play it
is incremented; otherwise the minor version is bumped (use --major for a
major pre-release) and the pre-release is attached. Requesting a lower
pre-release stage than the active one is an error. With no flags at all,
an active pre-release is promoted to its final release.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer func() { _ = c.log.Sync() }()
			return runBump(cmd, c, flags, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVarP(&flags.patch, "patch", "p", false, "increment patch version")
	cmd.Flags().BoolVarP(&flags.minor, "minor", "m", false, "increment minor version")
	cmd.Flags().BoolVarP(&flags.major, "major", "M", false, "increment major version")
	cmd.MarkFlagsMutuallyExclusive("patch", "minor", "major")

	cmd.Flags().BoolVarP(&flags.alpha, "alpha", "a", false, "alpha pre-release")
	cmd.Flags().BoolVarP(&flags.beta, "beta", "b", false, "beta pre-release")
	cmd.Flags().BoolVarP(&flags.rc, "rc", "r", false, "release candidate")
	cmd.MarkFlagsMutuallyExclusive("alpha", "beta", "rc")

	cmd.Flags().StringVarP(&flags.iniFile, "ini-file", "i", "", "name of the ini file to use")
	cmd.Flags().BoolVar(&flags.pushTags, "push-tags", false, "push the tags to the remote")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "compute the next version without writing anything")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// runBump wires the repositories and runs the bump workflow.
func runBump(cmd *cobra.Command, c *container, flags bumpFlags, message string) error {
	tagger, err := repository.NewTagger(c.cfg.Remote, c.cfg.GitUserName, c.cfg.GitUserEmail)
	if err != nil {
		return err
	}
	iniPath, err := resolveIniPath(c, tagger, flags.iniFile)
	if err != nil {
		return err
	}
	store := repository.NewIniStore(c.fs, iniPath)
	orch := orchestrator.NewBumpOrchestrator(store, tagger, c.log, c.cfg.TagPrefix, c.cfg.PushTimeout)
	return orch.Execute(cmd.Context(), orchestrator.BumpConfig{
		Directive: flags.directive(),
		Message:   message,
		PushTags:  flags.pushTags,
		DryRun:    flags.dryRun,
	})
}

// resolveIniPath picks the ini file: flag, then config, then the
// conventional <repo-root>/<project>.ini.
func resolveIniPath(c *container, tagger repository.Tagger, flagValue string) (string, error) {
	path := flagValue
	if path == "" {
		path = c.cfg.IniFile
	}
	if path == "" {
		root, err := tagger.Root()
		if err != nil {
			return "", err
		}
		return repository.DefaultIniPath(root), nil
	}
	if !strings.HasSuffix(path, ".ini") {
		path += ".ini"
	}
	return path, nil
}

func (f bumpFlags) directive() domain.Directive {
	var d domain.Directive
	switch {
	case f.major:
		d.Level = domain.LevelMajor
	case f.minor:
		d.Level = domain.LevelMinor
	case f.patch:
		d.Level = domain.LevelPatch
	}
	switch {
	case f.alpha:
		d.Stage = domain.StageAlpha
	case f.beta:
		d.Stage = domain.StageBeta
	case f.rc:
		d.Stage = domain.StageRC
	}
	return d
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
