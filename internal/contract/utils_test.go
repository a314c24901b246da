package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.json")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, path, f.Name())
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.nc", TruncatePath("short.nc", 20))
	assert.Equal(t, "...ies/file.nc", TruncatePath("/very/long/path/to/timeseries/file.nc", 14))
	// Widths too small to fit the ellipsis leave the path alone
	assert.Equal(t, "abcdef", TruncatePath("abcdef", 3))
}
