package service_test

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorLi621/5620-Marker/internal/service"
)

func TestStorageSaveAndLoad(t *testing.T) {
	storage, err := service.NewStorageServiceWithFs(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	ref, err := storage.Save("submissions", "essay.PDF", strings.NewReader("file-content"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "submissions/"))
	assert.True(t, strings.HasSuffix(ref, ".pdf"), "extension is lowercased: %s", ref)

	data, err := storage.Load(ref)
	require.NoError(t, err)
	assert.Equal(t, "file-content", string(data))
}

func TestStorageRefsAreUnique(t *testing.T) {
	storage, err := service.NewStorageServiceWithFs(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	first, err := storage.Save("submissions", "essay.txt", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := storage.Save("submissions", "essay.txt", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStorageLoadMissingRef(t *testing.T) {
	storage, err := service.NewStorageServiceWithFs(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	_, err = storage.Load("submissions/does-not-exist.txt")
	assert.Error(t, err)
}
