package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned when a version string cannot be parsed.
var ErrInvalidVersion = fmt.Errorf("invalid version")

// Stage is a pre-release maturity stage. Stages form a strict order
// alpha < beta < rc; the ordering lives in the constant values, never in
// string comparison.
type Stage int

const (
	StageNone Stage = iota
	StageAlpha
	StageBeta
	StageRC
)

// String returns the stage name as it appears in version strings.
func (s Stage) String() string {
	switch s {
	case StageAlpha:
		return "alpha"
	case StageBeta:
		return "beta"
	case StageRC:
		return "rc"
	default:
		return ""
	}
}

// ParseStage parses a stage name.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "alpha":
		return StageAlpha, nil
	case "beta":
		return StageBeta, nil
	case "rc":
		return StageRC, nil
	default:
		return StageNone, fmt.Errorf("%w: unknown pre-release stage %q", ErrInvalidVersion, s)
	}
}

// PreRelease identifies a numbered pre-release, e.g. rc.2.
type PreRelease struct {
	Stage  Stage
	Number uint64
}

func (p PreRelease) String() string {
	return fmt.Sprintf("%s.%d", p.Stage, p.Number)
}

// Version is a semantic version with an optional pre-release component.
// The zero value is 0.0.0.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Pre   *PreRelease
}

// ParseVersion parses MAJOR.MINOR.PATCH or MAJOR.MINOR.PATCH-KIND.N,
// with or without a leading "v". Build metadata is rejected.
func ParseVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
	}
	if sv.Metadata() != "" {
		return Version{}, fmt.Errorf("%w: %q: build metadata is not supported", ErrInvalidVersion, s)
	}
	v := Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch()}
	if tail := sv.Prerelease(); tail != "" {
		pre, err := parsePreRelease(tail)
		if err != nil {
			return Version{}, err
		}
		v.Pre = &pre
	}
	return v, nil
}

func parsePreRelease(tail string) (PreRelease, error) {
	kind, num, found := strings.Cut(tail, ".")
	if !found {
		return PreRelease{}, fmt.Errorf("%w: pre-release %q must have the form KIND.N", ErrInvalidVersion, tail)
	}
	stage, err := ParseStage(kind)
	if err != nil {
		return PreRelease{}, err
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil || n < 1 {
		return PreRelease{}, fmt.Errorf("%w: pre-release number %q must be a positive integer", ErrInvalidVersion, num)
	}
	return PreRelease{Stage: stage, Number: n}, nil
}

// String returns the canonical version string without a "v" prefix.
func (v Version) String() string {
	if v.Pre == nil {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Pre)
}

// Compare returns -1, 0 or 1. A version without a pre-release is greater
// than the same triple carrying one.
func (v Version) Compare(other Version) int {
	if c := compareUint64(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint64(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareUint64(v.Patch, other.Patch); c != 0 {
		return c
	}
	switch {
	case v.Pre == nil && other.Pre == nil:
		return 0
	case v.Pre == nil:
		return 1
	case other.Pre == nil:
		return -1
	}
	if c := compareUint64(uint64(v.Pre.Stage), uint64(other.Pre.Stage)); c != 0 {
		return c
	}
	return compareUint64(v.Pre.Number, other.Pre.Number)
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
