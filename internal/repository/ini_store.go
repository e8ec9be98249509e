package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/release-tools/gitbump/internal/domain"
)

const (
	// VersionKey is the ini key holding the project version.
	VersionKey = "version"
	// ReleaseDateKey is refreshed on every write when present.
	ReleaseDateKey = "release date"
	// CopyrightKey is widened to a year range on write when present.
	CopyrightKey = "copyright"

	// ReleaseDateLayout matches the human-readable date the ini file carries.
	ReleaseDateLayout = "2 January 2006 MST"

	// LockTimeout is the maximum time to wait for the ini file lock.
	LockTimeout = 30 * time.Second
	// LockRetryInterval is the interval between lock attempts.
	LockRetryInterval = 100 * time.Millisecond

	iniFilePermissions = 0644
)

// IniStore is a ConfigStore backed by a key = value ini file, the format
// gitbump projects record their version in. Writes are atomic (temp file
// plus rename) and guarded by a sidecar flock so two invocations cannot
// interleave a read-modify-write.
type IniStore struct {
	fs   afero.Fs
	path string
}

// NewIniStore creates a store over the ini file at path.
func NewIniStore(fs afero.Fs, path string) *IniStore {
	return &IniStore{fs: fs, path: path}
}

// DefaultIniPath returns the conventional ini location for a project
// rooted at root: <root>/<lowercased base name>.ini.
func DefaultIniPath(root string) string {
	project := strings.ToLower(filepath.Base(root))
	return filepath.Join(root, project+".ini")
}

// Path returns the ini file path the store operates on.
func (s *IniStore) Path() string {
	return s.path
}

// Read parses the version key from the ini file under a shared lock.
func (s *IniStore) Read(ctx context.Context) (domain.Version, error) {
	lock := flock.New(s.lockPath())
	locked, err := s.acquireSharedLock(ctx, lock)
	if err != nil {
		return domain.Version{}, fmt.Errorf("%w: failed to acquire shared lock: %v", ErrConfigRead, err)
	}
	if !locked {
		return domain.Version{}, fmt.Errorf("%w: could not acquire shared lock within %v", ErrConfigRead, LockTimeout)
	}
	defer s.releaseLock(lock)

	file, err := s.load()
	if err != nil {
		return domain.Version{}, err
	}
	section := file.Section("")
	if !section.HasKey(VersionKey) {
		return domain.Version{}, fmt.Errorf("%w: no version key in %s", ErrConfigRead, s.path)
	}
	v, err := domain.ParseVersion(section.Key(VersionKey).String())
	if err != nil {
		return domain.Version{}, fmt.Errorf("%w: %s: %v", ErrConfigRead, s.path, err)
	}
	return v, nil
}

// Write rewrites the version key and refreshes the release-date and
// copyright keys when the file carries them.
func (s *IniStore) Write(ctx context.Context, v domain.Version, releaseDate time.Time) error {
	lock := flock.New(s.lockPath())
	locked, err := s.acquireLock(ctx, lock)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire lock: %v", ErrConfigWrite, err)
	}
	if !locked {
		return fmt.Errorf("%w: could not acquire lock within %v", ErrConfigWrite, LockTimeout)
	}
	defer s.releaseLock(lock)

	file, err := s.load()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	section := file.Section("")
	section.Key(VersionKey).SetValue(v.String())
	if section.HasKey(ReleaseDateKey) {
		section.Key(ReleaseDateKey).SetValue(releaseDate.Format(ReleaseDateLayout))
	}
	if section.HasKey(CopyrightKey) {
		widened, err := widenCopyright(section.Key(CopyrightKey).String(), releaseDate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfigWrite, err)
		}
		section.Key(CopyrightKey).SetValue(widened)
	}
	return s.replace(file)
}

func (s *IniStore) load() (*ini.File, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: ini file %q not found", ErrConfigRead, s.path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrConfigRead, s.path, err)
	}
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrConfigRead, s.path, err)
	}
	return file, nil
}

// replace serializes the file and swaps it in atomically.
func (s *IniStore) replace(file *ini.File) error {
	var buf strings.Builder
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: failed to serialize %s: %v", ErrConfigWrite, s.path, err)
	}
	tempFile := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := afero.WriteFile(s.fs, tempFile, []byte(buf.String()), iniFilePermissions); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", ErrConfigWrite, err)
	}
	if err := s.fs.Rename(tempFile, s.path); err != nil {
		if removeErr := s.fs.Remove(tempFile); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("%w: failed to replace %s: %v", ErrConfigWrite, s.path, err)
	}
	return nil
}

func (s *IniStore) lockPath() string {
	return s.path + ".lock"
}

// releaseLock unlocks and removes the sidecar so the worktree is left
// clean. Removal is best effort: a concurrent invocation recreates it.
func (s *IniStore) releaseLock(lock *flock.Flock) {
	if unlockErr := lock.Unlock(); unlockErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to unlock %s: %v\n", s.lockPath(), unlockErr)
		return
	}
	if removeErr := os.Remove(s.lockPath()); removeErr != nil && !os.IsNotExist(removeErr) {
		fmt.Fprintf(os.Stderr, "warning: failed to remove lock file %s: %v\n", s.lockPath(), removeErr)
	}
}

func (s *IniStore) acquireLock(ctx context.Context, lock *flock.Flock) (bool, error) {
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	return lock.TryLockContext(lockCtx, LockRetryInterval)
}

func (s *IniStore) acquireSharedLock(ctx context.Context, lock *flock.Flock) (bool, error) {
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	return lock.TryRLockContext(lockCtx, LockRetryInterval)
}

// widenCopyright advances the copyright years to include the given date,
// preserving any trailing holder text: "2019" becomes "2019-2026" and
// "2019-2023 Jane Doe" becomes "2019-2026 Jane Doe". A recorded year in
// the future is an error.
func widenCopyright(value string, now time.Time) (string, error) {
	years, holder, _ := strings.Cut(strings.TrimSpace(value), " ")
	first, _, ranged := strings.Cut(years, "-")
	firstYear, err := strconv.Atoi(first)
	if err != nil {
		return "", fmt.Errorf("copyright year %q is not a number", first)
	}
	current := now.Year()
	switch {
	case ranged:
		years = fmt.Sprintf("%s-%d", first, current)
	case firstYear > current:
		return "", fmt.Errorf("copyright date %s is in the future", first)
	case firstYear != current:
		years = fmt.Sprintf("%s-%d", first, current)
	}
	if holder != "" {
		return years + " " + holder, nil
	}
	return years, nil
}
