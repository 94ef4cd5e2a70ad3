package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDBPath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := ValidateDBPath("")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, char := range forbiddenChars {
			path := "/tmp/plan" + string(char) + "wise.db"
			_, err := ValidateDBPath(path)
			assert.Error(t, err, "expected error for character %q", char)
			assert.Contains(t, err.Error(), "forbidden character")
		}
	})

	t.Run("accepts an existing absolute path", func(t *testing.T) {
		dbFile := filepath.Join(t.TempDir(), "planwise.db")
		require.NoError(t, os.WriteFile(dbFile, []byte("x"), 0o600))

		got, err := ValidateDBPath(dbFile)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})

	t.Run("accepts a not-yet-created database file", func(t *testing.T) {
		dbFile := filepath.Join(t.TempDir(), "fresh.db")

		got, err := ValidateDBPath(dbFile)
		require.NoError(t, err)
		assert.Equal(t, dbFile, got)
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		got, err := ValidateDBPath("data/planwise.db")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))

		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "data", "planwise.db"), got)
	})

	t.Run("cleans parent traversal segments", func(t *testing.T) {
		tmpDir := t.TempDir()

		got, err := ValidateDBPath(filepath.Join(tmpDir, "sub", "..", "planwise.db"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpDir, "planwise.db"), got)
	})

	t.Run("resolves symlinks to the real file", func(t *testing.T) {
		tmpDir := t.TempDir()
		realFile := filepath.Join(tmpDir, "real.db")
		require.NoError(t, os.WriteFile(realFile, []byte("x"), 0o600))

		link := filepath.Join(tmpDir, "link.db")
		require.NoError(t, os.Symlink(realFile, link))

		got, err := ValidateDBPath(link)
		require.NoError(t, err)

		resolved, err := filepath.EvalSymlinks(realFile)
		require.NoError(t, err)
		assert.Equal(t, resolved, got)
	})
}
