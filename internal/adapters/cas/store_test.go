package cas_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestStore_ChangedAndCommit(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "development.json"))
	require.NoError(t, err)

	assert.True(t, store.Changed(domain.CategoryScripts, "src/app/app.js", "aaaa"))

	store.Commit(domain.CategoryScripts, "src/app/app.js", "aaaa")
	assert.False(t, store.Changed(domain.CategoryScripts, "src/app/app.js", "aaaa"))
	assert.True(t, store.Changed(domain.CategoryScripts, "src/app/app.js", "bbbb"))

	assert.True(t, store.Changed(domain.CategoryImages, "src/app/app.js", "aaaa"), "categories do not share entries")
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".kiln", "cache", "development.json")

	store, err := cas.NewStore(path)
	require.NoError(t, err)
	store.Commit(domain.CategoryFonts, "src/assets/fonts/a.ttf", "1234")
	require.NoError(t, store.Flush())

	reopened, err := cas.NewStore(path)
	require.NoError(t, err)
	assert.False(t, reopened.Changed(domain.CategoryFonts, "src/assets/fonts/a.ttf", "1234"))
}

func TestStore_FlushSkipsCleanStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	store, err := cas.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Flush())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	store, err := cas.NewStore(path)
	require.NoError(t, err)
	store.Commit(domain.CategoryImages, "src/assets/images/logo.png", "ffff")
	require.NoError(t, store.Flush())

	require.NoError(t, store.Reset())
	assert.True(t, store.Changed(domain.CategoryImages, "src/assets/images/logo.png", "ffff"))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Reset(), "reset without a file is fine")
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), domain.FilePerm))

	_, err := cas.NewStore(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_ConcurrentCommit(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	categories := []domain.Category{domain.CategoryScripts, domain.CategoryImages, domain.CategoryFonts}
	var wg sync.WaitGroup
	for _, c := range categories {
		wg.Go(func() {
			for i := range 50 {
				store.Commit(c, filepath.Join("src", string(rune('a'+i%26))), "x")
			}
			_ = store.Flush()
		})
	}
	wg.Wait()

	for _, c := range categories {
		assert.False(t, store.Changed(c, filepath.Join("src", "a"), "x"))
	}
}
