// Package security validates filesystem paths taken from configuration.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars are characters with shell or traversal significance that
// never appear in a legitimate database path.
const forbiddenChars = ";&|$`(){}<>!\n\r"

// ValidateDBPath checks a database file path from configuration and
// returns it cleaned and absolute. Symlinks are resolved when the file
// already exists; a path to a not-yet-created database is accepted as is.
func ValidateDBPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("database path cannot be empty")
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("database path contains forbidden character %q", path[i])
	}

	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		clean = filepath.Join(cwd, clean)
	}

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return clean, nil
		}
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return resolved, nil
}
