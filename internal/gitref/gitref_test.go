package gitref

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit and returns its path and
// the commit hash.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("stevedore\n"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestHead(t *testing.T) {
	dir, want := initRepo(t)

	commit, branch, err := Head(dir)
	require.NoError(t, err)
	assert.Equal(t, want, commit)
	assert.NotEmpty(t, branch)
}

func TestHeadDetectsDotGitFromSubdir(t *testing.T) {
	dir, want := initRepo(t)
	sub := filepath.Join(dir, "clusters")
	require.NoError(t, os.MkdirAll(sub, 0755))

	commit, _, err := Head(sub)
	require.NoError(t, err)
	assert.Equal(t, want, commit)
}

func TestHeadNoRepository(t *testing.T) {
	_, _, err := Head(t.TempDir())
	require.Error(t, err)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc2", Short("abc2"))
	assert.Equal(t, "1f00dead", Short("1f00deadbeef1f00deadbeef1f00deadbeef1f00"))
}
