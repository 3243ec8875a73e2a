package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureStagingDir(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureStagingDir(root, "conversations")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".staging", "conversations"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	again, err := EnsureStagingDir(root, "conversations")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestEnsureStagingDirRejectsBadDomains(t *testing.T) {
	root := t.TempDir()

	_, err := EnsureStagingDir(root, "")
	assert.ErrorIs(t, err, ErrEmptyDomain)

	for _, domain := range []string{"a/b", `a\b`, ".", ".."} {
		_, err := EnsureStagingDir(root, domain)
		assert.ErrorIs(t, err, ErrInvalidDomain, "domain %q", domain)
	}
}
