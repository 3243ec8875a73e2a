package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/vectorize/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func levelContext(t *testing.T, level string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", "", "")
	require.NoError(t, set.Set("log-level", level))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLoggerValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO", "Debug"} {
		assert.NoError(t, setupLogger(levelContext(t, level)), "level %q", level)
	}
}

func TestSetupLoggerInvalidLevel(t *testing.T) {
	err := setupLogger(levelContext(t, "verbose"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func statusContext(t *testing.T, root, domain string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("dir", "", "")
	set.String("domain", "", "")
	set.Int("dimension", 0, "")
	require.NoError(t, set.Set("dir", root))
	require.NoError(t, set.Set("domain", domain))
	require.NoError(t, set.Set("dimension", "2"))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestStatusDoesNotCreateStagingFiles(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, statusCommand(statusContext(t, root, "docs")))

	// A read-only query must leave no artifacts behind.
	_, err := os.Stat(filepath.Join(root, ".staging"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatusReportsExistingDomain(t *testing.T) {
	root := t.TempDir()

	dir, err := storage.EnsureStagingDir(root, "docs")
	require.NoError(t, err)

	checkpoint, err := storage.OpenCheckpoint(filepath.Join(dir, storage.CheckpointFileName))
	require.NoError(t, err)
	require.NoError(t, checkpoint.Advance(2))
	require.NoError(t, checkpoint.Close())

	vectors, err := storage.OpenVectorFile(filepath.Join(dir, storage.VectorFileName), 2)
	require.NoError(t, err)
	require.NoError(t, vectors.Write(0, [][]float32{{1, 2}, {3, 4}}))
	require.NoError(t, vectors.Close())

	require.NoError(t, statusCommand(statusContext(t, root, "docs")))

	// Still exactly the files the pipeline wrote, unmodified.
	cursor, err := storage.InspectCheckpoint(filepath.Join(dir, storage.CheckpointFileName))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cursor)
}
