package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	stagingDirName = ".staging"

	// VectorFileName is the vector file's name within a staging
	// directory.
	VectorFileName = "vectors"

	// CheckpointFileName is the checkpoint file's name within a staging
	// directory.
	CheckpointFileName = "progress"
)

// StagingDir returns the per-domain staging directory under root.
func StagingDir(root, domain string) string {
	return filepath.Join(root, stagingDirName, domain)
}

// EnsureStagingDir creates the per-domain staging directory (and any
// missing parents) and returns its path. The domain names a
// subdirectory, so it must be a plain name rather than a path.
func EnsureStagingDir(root, domain string) (string, error) {
	if domain == "" {
		return "", ErrEmptyDomain
	}
	if strings.ContainsAny(domain, `/\`) || domain == "." || domain == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}

	dir := StagingDir(root, domain)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	return dir, nil
}
