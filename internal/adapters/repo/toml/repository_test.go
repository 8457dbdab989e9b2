package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "preferences.toml"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.Preferences{LastEmail: "ada@example.com"}))

	prefs, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{LastEmail: "ada@example.com"}, prefs)
}

func TestRepositorySaveCreatesDirectoryAndEnforcesPermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".teamfocus", "preferences.toml")
	repo, err := NewRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.Preferences{LastEmail: "ada@example.com"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())
}

func TestRepositoryMissingFileLoadsEmptyPreferences(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "missing", "preferences.toml"))
	require.NoError(t, err)

	prefs, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{}, prefs)
}

func TestRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	require.NoError(t, os.WriteFile(path, []byte("[login"), 0o600))

	repo, err := NewRepository(path)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	assert.ErrorContains(t, err, "decode preferences file")
}

func TestRepositoryCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "preferences.toml"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = repo.Save(ctx, domain.Preferences{LastEmail: "ada@example.com"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRepositoryConcurrentSavesAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	repoA, err := NewRepository(path)
	require.NoError(t, err)
	repoB, err := NewRepository(path)
	require.NoError(t, err)

	const writes = 50
	errCh := make(chan error, writes*2)
	var wg sync.WaitGroup
	for _, repo := range []*Repository{repoA, repoB} {
		wg.Add(1)
		go func(repo *Repository) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				errCh <- repo.Save(context.Background(), domain.Preferences{LastEmail: "ada@example.com"})
			}
		}(repo)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	prefs, err := repoB.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", prefs.LastEmail)
}

func TestRepositorySerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	repo, err := NewRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.Preferences{LastEmail: "ada@example.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "[login]")
	assert.Contains(t, string(data), "last_email")
	assert.Contains(t, string(data), "ada@example.com")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"version = 999",
		"",
		"[login]",
		"last_email = 'ada@example.com'",
		"",
	}, "\n")), 0o600))

	repo, err := NewRepository(path)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	assert.ErrorContains(t, err, "unsupported preferences schema version")
}

func TestNewRepositoryRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewRepository("")
	require.Error(t, err)
}
