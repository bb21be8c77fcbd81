package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "voices/Acme/Jane/jane.db", "voices/Acme/Jane/lic/verification.txt")

	opts := DefaultOptions()
	opts.Rewrite = &RewriteRule{In: filepath.Join(root, "voices"), Out: filepath.Join(root, "stage")}

	entries, err := Collect([]string{filepath.Join(root, "voices", "Acme", "Jane")}, opts)
	require.NoError(t, err)

	n, err := Materialize(entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(root, "stage", "Acme", "Jane", "lic", "verification.txt"))
	require.NoError(t, err)
	assert.Equal(t, "voices/Acme/Jane/lic/verification.txt", string(data))
}

func TestMaterialize_SkipsInPlaceEntries(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a/x.bin")

	entries, err := Collect([]string{filepath.Join(root, "a")}, DefaultOptions())
	require.NoError(t, err)

	n, err := Materialize(entries)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMaterialize_MissingSource(t *testing.T) {
	root := t.TempDir()
	_, err := Materialize([]Entry{{
		Source:      filepath.Join(root, "gone.bin"),
		Destination: filepath.Join(root, "out", "gone.bin"),
	}})
	assert.Error(t, err)
}
