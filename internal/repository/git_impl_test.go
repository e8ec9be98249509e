package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/release-tools/gitbump/internal/domain"
)

// addLocalRemote wires a bare repository as origin and returns its path.
func addLocalRemote(t *testing.T, repo *git.Repository) string {
	t.Helper()
	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)
	return remoteDir
}

func setupTestRepo(t *testing.T) (string, *git.Repository) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.ini"), []byte("version = 1.2.3\n"), 0644))
	_, err = wt.Add("widget.ini")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	require.NoError(t, err)
	return dir, repo
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}

func newTestTagger(t *testing.T) (Tagger, string, *git.Repository) {
	dir, repo := setupTestRepo(t)
	chdir(t, dir)
	tagger, err := NewTagger("origin", "Test User", "test@example.com")
	require.NoError(t, err)
	return tagger, dir, repo
}

func TestNewTagger(t *testing.T) {
	t.Run("Should open an existing repository", func(t *testing.T) {
		tagger, _, _ := newTestTagger(t)
		assert.NotNil(t, tagger)
	})
	t.Run("Should discover the repository from a subdirectory", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		sub := filepath.Join(dir, "docs")
		require.NoError(t, os.MkdirAll(sub, 0755))
		chdir(t, sub)
		tagger, err := NewTagger("origin", "Test User", "test@example.com")
		require.NoError(t, err)
		assert.NotNil(t, tagger)
	})
	t.Run("Should fail outside a repository", func(t *testing.T) {
		chdir(t, t.TempDir())
		_, err := NewTagger("origin", "Test User", "test@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVCS)
	})
}

func TestGitTagger_Root(t *testing.T) {
	t.Run("Should return the worktree root", func(t *testing.T) {
		tagger, dir, _ := newTestTagger(t)
		root, err := tagger.Root()
		require.NoError(t, err)
		resolvedDir, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		resolvedRoot, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, resolvedDir, resolvedRoot)
	})
}

func TestGitTagger_CommitAll(t *testing.T) {
	ctx := context.Background()
	t.Run("Should commit modified files", func(t *testing.T) {
		tagger, dir, repo := newTestTagger(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.ini"), []byte("version = 1.3.0\n"), 0644))
		require.NoError(t, tagger.CommitAll(ctx, "Minor update 1.3.0"))
		head, err := repo.Head()
		require.NoError(t, err)
		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		assert.Equal(t, "Minor update 1.3.0", commit.Message)
		assert.Equal(t, "Test User", commit.Author.Name)
	})
	t.Run("Should tolerate a clean worktree", func(t *testing.T) {
		tagger, _, _ := newTestTagger(t)
		assert.NoError(t, tagger.CommitAll(ctx, "nothing to do"))
	})
	t.Run("Should not commit untracked files", func(t *testing.T) {
		tagger, dir, repo := newTestTagger(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.ini"), []byte("version = 1.3.0\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.ini.lock"), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("notes\n"), 0644))
		require.NoError(t, tagger.CommitAll(ctx, "Minor update 1.3.0"))
		head, err := repo.Head()
		require.NoError(t, err)
		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		file, err := commit.File("widget.ini")
		require.NoError(t, err)
		contents, err := file.Contents()
		require.NoError(t, err)
		assert.Contains(t, contents, "1.3.0")
		_, err = commit.File("widget.ini.lock")
		assert.ErrorIs(t, err, object.ErrFileNotFound)
		_, err = commit.File("scratch.txt")
		assert.ErrorIs(t, err, object.ErrFileNotFound)
	})
	t.Run("Should commit tracked deletions", func(t *testing.T) {
		tagger, dir, repo := newTestTagger(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "widget.ini")))
		require.NoError(t, tagger.CommitAll(ctx, "Patch 1.2.4"))
		head, err := repo.Head()
		require.NoError(t, err)
		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		assert.Equal(t, "Patch 1.2.4", commit.Message)
		_, err = commit.File("widget.ini")
		assert.ErrorIs(t, err, object.ErrFileNotFound)
	})
	t.Run("Should leave a release commit free of the ini lock file", func(t *testing.T) {
		tagger, dir, repo := newTestTagger(t)
		store := NewIniStore(afero.NewOsFs(), filepath.Join(dir, "widget.ini"))
		next := domain.Version{Major: 1, Minor: 3}
		require.NoError(t, store.Write(ctx, next, time.Now()))
		require.NoError(t, tagger.CommitAll(ctx, "Minor update 1.3.0"))
		head, err := repo.Head()
		require.NoError(t, err)
		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		tree, err := commit.Tree()
		require.NoError(t, err)
		require.NoError(t, tree.Files().ForEach(func(f *object.File) error {
			assert.NotContains(t, f.Name, ".lock")
			assert.NotContains(t, f.Name, ".tmp")
			return nil
		}))
	})
}

func TestGitTagger_CreateTag(t *testing.T) {
	ctx := context.Background()
	t.Run("Should create an annotated tag at HEAD", func(t *testing.T) {
		tagger, _, repo := newTestTagger(t)
		require.NoError(t, tagger.CreateTag(ctx, "v1.3.0", "Minor update 1.3.0"))
		ref, err := repo.Tag("v1.3.0")
		require.NoError(t, err)
		tagObj, err := repo.TagObject(ref.Hash())
		require.NoError(t, err)
		assert.Contains(t, tagObj.Message, "Minor update 1.3.0")
	})
	t.Run("Should fail for a duplicate tag", func(t *testing.T) {
		tagger, _, _ := newTestTagger(t)
		require.NoError(t, tagger.CreateTag(ctx, "v1.3.0", "Minor update 1.3.0"))
		err := tagger.CreateTag(ctx, "v1.3.0", "again")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVCS)
	})
}

func TestGitTagger_PushTags(t *testing.T) {
	t.Run("Should fail without a remote", func(t *testing.T) {
		tagger, _, _ := newTestTagger(t)
		err := tagger.PushTags(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVCS)
	})
	t.Run("Should push tags to a local remote", func(t *testing.T) {
		tagger, _, repo := newTestTagger(t)
		remoteDir := addLocalRemote(t, repo)
		require.NoError(t, tagger.CreateTag(context.Background(), "v1.3.0", "Minor update 1.3.0"))
		require.NoError(t, tagger.PushTags(context.Background()))
		remote, err := git.PlainOpen(remoteDir)
		require.NoError(t, err)
		_, err = remote.Tag("v1.3.0")
		assert.NoError(t, err)
	})
	t.Run("Should treat an up-to-date remote as success", func(t *testing.T) {
		tagger, _, repo := newTestTagger(t)
		addLocalRemote(t, repo)
		require.NoError(t, tagger.CreateTag(context.Background(), "v1.3.0", "Minor update 1.3.0"))
		require.NoError(t, tagger.PushTags(context.Background()))
		assert.NoError(t, tagger.PushTags(context.Background()))
	})
}
