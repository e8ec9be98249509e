package domain

import "fmt"

// ErrInvalidBump is returned when a directive is inconsistent with the
// current version's pre-release state.
var ErrInvalidBump = fmt.Errorf("invalid bump")

// Level is a release level.
type Level int

const (
	LevelNone Level = iota
	LevelPatch
	LevelMinor
	LevelMajor
)

func (l Level) String() string {
	switch l {
	case LevelPatch:
		return "patch"
	case LevelMinor:
		return "minor"
	case LevelMajor:
		return "major"
	default:
		return ""
	}
}

// Directive describes a requested bump. The zero value of either field
// means the corresponding flag was not given; the CLI guarantees at most
// one level and one stage, Next validates the ranges defensively.
type Directive struct {
	Level Level
	Stage Stage
}

func (d Directive) validate() error {
	if d.Level < LevelNone || d.Level > LevelMajor {
		return fmt.Errorf("%w: unknown release level %d", ErrInvalidBump, int(d.Level))
	}
	if d.Stage < StageNone || d.Stage > StageRC {
		return fmt.Errorf("%w: unknown pre-release stage %d", ErrInvalidBump, int(d.Stage))
	}
	return nil
}

// EffectiveLevel reports the release level the directive acts at, applying
// the same defaults Next does. Used for tag and commit descriptions.
func (d Directive) EffectiveLevel() Level {
	if d.Level != LevelNone {
		return d.Level
	}
	if d.Stage != StageNone {
		return LevelMinor
	}
	return LevelPatch
}

// Next computes the version that follows current under the directive.
//
// Precedence: a pre-release flag combined with an active pre-release is
// resolved against the stage ordering before any release level is
// considered; the level flag only matters when it starts a new pre-release
// series or performs a plain release bump. With no flags at all, an active
// pre-release is finalized and anything else is an error.
func Next(current Version, d Directive) (Version, error) {
	if err := d.validate(); err != nil {
		return Version{}, err
	}
	switch {
	case d.Stage != StageNone && current.Pre != nil:
		return nextPreRelease(current, d.Stage)
	case d.Stage != StageNone:
		level := d.Level
		if level == LevelNone {
			level = LevelMinor
		}
		next := bumpLevel(current, level)
		next.Pre = &PreRelease{Stage: d.Stage, Number: 1}
		return next, nil
	case d.Level != LevelNone:
		return bumpLevel(current, d.Level), nil
	case current.Pre != nil:
		// Finalize: promote the active pre-release to its release.
		return Version{Major: current.Major, Minor: current.Minor, Patch: current.Patch}, nil
	default:
		return Version{}, fmt.Errorf("%w: no bump requested", ErrInvalidBump)
	}
}

func nextPreRelease(current Version, stage Stage) (Version, error) {
	next := Version{Major: current.Major, Minor: current.Minor, Patch: current.Patch}
	switch {
	case stage == current.Pre.Stage:
		next.Pre = &PreRelease{Stage: stage, Number: current.Pre.Number + 1}
	case stage > current.Pre.Stage:
		next.Pre = &PreRelease{Stage: stage, Number: 1}
	default:
		return Version{}, fmt.Errorf("%w: cannot downgrade pre-release stage %s to %s",
			ErrInvalidBump, current.Pre.Stage, stage)
	}
	return next, nil
}

func bumpLevel(current Version, level Level) Version {
	switch level {
	case LevelMajor:
		return Version{Major: current.Major + 1}
	case LevelMinor:
		return Version{Major: current.Major, Minor: current.Minor + 1}
	default:
		return Version{Major: current.Major, Minor: current.Minor, Patch: current.Patch + 1}
	}
}
