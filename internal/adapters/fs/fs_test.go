package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
)

// writeTree creates files below root; keys are slash-separated relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/config":       "git",
		".kiln/cache/a":     "cache",
		"ignored/file":      "ignored",
		"src/app/main.js":   "main",
		"src/index.html":    "<html>",
		"src/app/skip.orig": "backup",
	})

	var got []string
	for path := range fs.NewWalker().WalkFiles(root, []string{"ignored", "*.orig"}) {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	slices.Sort(got)

	assert.Equal(t, []string{"src/app/main.js", "src/index.html"}, got)
}

func TestWalker_WalkFiles_StopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "", "b": "", "c": ""})

	count := 0
	for range fs.NewWalker().WalkFiles(root, nil) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestWalker_WalkDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app/views/home.html": "",
		"node_modules/x/index.js": "",
	})

	var got []string
	for path := range fs.NewWalker().WalkDirs(root, []string{"node_modules"}) {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}

	assert.Equal(t, []string{".", "src", "src/app", "src/app/views"}, got)
}

func TestHasher(t *testing.T) {
	h := fs.NewHasher()

	sum := h.Sum([]byte("body { color: red; }"))
	assert.Len(t, sum, 16)
	assert.Equal(t, sum, h.Sum([]byte("body { color: red; }")))
	assert.NotEqual(t, sum, h.Sum([]byte("body { color: blue; }")))

	path := filepath.Join(t.TempDir(), "main.css")
	require.NoError(t, os.WriteFile(path, []byte("body { color: red; }"), domain.FilePerm))

	fileSum, err := h.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, sum, fileSum)

	_, err = h.HashFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestResolver_ResolveInputs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app/app.js":             "",
		"src/app/home/home.js":       "",
		"src/app/home/home.html":     "",
		"src/styles/main.less":       "",
		"src/assets/fonts/icons.ttf": "",
	})

	r := fs.NewResolver()

	got, err := r.ResolveInputs([]string{"src/app/**/*.js", "src/app/app.js"}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app/app.js", "src/app/home/home.js"}, got)

	got, err = r.ResolveInputs([]string{"src/assets/images/**/*"}, root)
	require.NoError(t, err)
	assert.Empty(t, got, "no match is not an error")

	_, err = r.ResolveInputs([]string{"src/[app"}, root)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrGlobFailed.Error())
}

func TestVendorLocator_Locate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"bower_components/jquery/dist/jquery.js":       "",
		"bower_components/angular/angular.js":          "",
		"bower_components/angular/angular.css":         "",
		"bower_components/angular/test/spec.js":        "",
		"bower_components/bootstrap/dist/css/boot.css": "",
	})

	locator := fs.NewVendorLocator(fs.NewWalker())

	scripts, err := locator.Locate(root, "bower_components", []string{"bower_components/**/*.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bower_components/angular/angular.js",
		"bower_components/jquery/dist/jquery.js",
	}, scripts)

	styles, err := locator.Locate(root, "bower_components", []string{"bower_components/**/*.css"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bower_components/angular/angular.css",
		"bower_components/bootstrap/dist/css/boot.css",
	}, styles)

	none, err := locator.Locate(root, "missing_components", []string{"missing_components/**/*.js"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
