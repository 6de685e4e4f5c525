package pipeline_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type pipelineMocks struct {
	resolver *mocks.MockInputResolver
	vendor   *mocks.MockVendorLocator
	hasher   *mocks.MockHasher
	store    *mocks.MockFingerprintStore
}

func setup(t *testing.T, mode domain.BuildMode, transformers ...ports.Transformer) (*pipeline.Pipeline, *domain.BuildConfig, pipelineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := pipelineMocks{
		resolver: mocks.NewMockInputResolver(ctrl),
		vendor:   mocks.NewMockVendorLocator(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		store:    mocks.NewMockFingerprintStore(ctrl),
	}
	cfg := domain.NewBuildConfig(mode, t.TempDir(), domain.DefaultLayout(), domain.DefaultTools(), domain.ServerConfig{})
	return pipeline.New(cfg, m.resolver, m.vendor, m.hasher, m.store, transformers), cfg, m
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(content)
}

// passThrough returns a transformer for step that keeps its input and
// records the artifacts it saw.
func passThrough(ctrl *gomock.Controller, step domain.Step, seen *[]domain.Artifact) *mocks.MockTransformer {
	tr := mocks.NewMockTransformer(ctrl)
	tr.EXPECT().Step().Return(step).AnyTimes()
	tr.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.Task, in []domain.Artifact, _ io.Writer) ([]domain.Artifact, error) {
			*seen = append(*seen, in...)
			return in, nil
		}).AnyTimes()
	return tr
}

func TestPipeline_ChangedFilesOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	var seen []domain.Artifact
	p, cfg, m := setup(t, domain.ModeDevelopment, passThrough(ctrl, domain.StepPreprocess, &seen))

	writeFile(t, cfg.Root, "src/app/app.js", "changed")
	writeFile(t, cfg.Root, "src/app/users/list.js", "same")
	writeFile(t, cfg.Root, "www/app/users/list.js", "same")

	task := domain.NewTransformTask("scripts", domain.CategoryScripts, cfg.Paths)

	m.resolver.EXPECT().ResolveInputs([]string{"src/app/**/*.js"}, cfg.Root).
		Return([]string{"src/app/app.js", "src/app/users/list.js"}, nil)
	m.hasher.EXPECT().Sum([]byte("changed")).Return("h1")
	m.hasher.EXPECT().Sum([]byte("same")).Return("h2")
	m.store.EXPECT().Changed(domain.CategoryScripts, "src/app/app.js", "h1").Return(true)
	m.store.EXPECT().Changed(domain.CategoryScripts, "src/app/users/list.js", "h2").Return(false)
	gomock.InOrder(
		m.store.EXPECT().Commit(domain.CategoryScripts, "src/app/app.js", "h1"),
		m.store.EXPECT().Flush().Return(nil),
	)

	require.NoError(t, p.Run(context.Background(), task, io.Discard))

	require.Len(t, seen, 1)
	assert.Equal(t, "app.js", seen[0].Path)
	assert.Equal(t, "src/app/app.js", seen[0].Source)
	assert.Equal(t, "changed", readFile(t, cfg.Root, "www/app/app.js"))
	assert.Equal(t, "same", readFile(t, cfg.Root, "www/app/users/list.js"))
}

func TestPipeline_MissingOutputIsRewritten(t *testing.T) {
	p, cfg, m := setup(t, domain.ModeDevelopment)

	writeFile(t, cfg.Root, "src/assets/fonts/a.woff", "woff")
	task := domain.NewTransformTask("fonts", domain.CategoryFonts, cfg.Paths)

	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return([]string{"src/assets/fonts/a.woff"}, nil)
	m.hasher.EXPECT().Sum([]byte("woff")).Return("h")
	m.store.EXPECT().Changed(domain.CategoryFonts, "src/assets/fonts/a.woff", "h").Return(false)
	m.store.EXPECT().Commit(domain.CategoryFonts, "src/assets/fonts/a.woff", "h")
	m.store.EXPECT().Flush().Return(nil)

	require.NoError(t, p.Run(context.Background(), task, io.Discard))
	assert.Equal(t, "woff", readFile(t, cfg.Root, "www/fonts/a.woff"))
}

func TestPipeline_NestedPathsKeepStructure(t *testing.T) {
	p, cfg, m := setup(t, domain.ModeDevelopment)

	writeFile(t, cfg.Root, "src/assets/fonts/icons/icons.woff", "woff")
	task := domain.NewTransformTask("fonts", domain.CategoryFonts, cfg.Paths)

	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return([]string{"src/assets/fonts/icons/icons.woff"}, nil)
	m.hasher.EXPECT().Sum(gomock.Any()).Return("h")
	m.store.EXPECT().Changed(domain.CategoryFonts, gomock.Any(), "h").Return(true)
	m.store.EXPECT().Commit(domain.CategoryFonts, "src/assets/fonts/icons/icons.woff", "h")
	m.store.EXPECT().Flush().Return(nil)

	require.NoError(t, p.Run(context.Background(), task, io.Discard))
	assert.Equal(t, "woff", readFile(t, cfg.Root, "www/fonts/icons/icons.woff"))
}

func TestPipeline_NothingChangedSkipsFlush(t *testing.T) {
	p, cfg, m := setup(t, domain.ModeDevelopment)

	writeFile(t, cfg.Root, "src/assets/images/logo.png", "png")
	writeFile(t, cfg.Root, "www/images/logo.png", "png")
	task := domain.NewTransformTask("images", domain.CategoryImages, cfg.Paths)

	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return([]string{"src/assets/images/logo.png"}, nil)
	m.hasher.EXPECT().Sum(gomock.Any()).Return("h")
	m.store.EXPECT().Changed(domain.CategoryImages, "src/assets/images/logo.png", "h").Return(false)

	require.NoError(t, p.Run(context.Background(), task, io.Discard))
}

func TestPipeline_VendorUsesLocator(t *testing.T) {
	ctrl := gomock.NewController(t)
	concat := mocks.NewMockTransformer(ctrl)
	concat.EXPECT().Step().Return(domain.StepConcat).AnyTimes()
	concat.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Len(2), gomock.Any()).Return(
		[]domain.Artifact{{Path: "dependencies.js", Content: []byte("a;\nb;\n")}}, nil)

	p, cfg, m := setup(t, domain.ModeDevelopment, concat)
	writeFile(t, cfg.Root, "bower_components/a/a.js", "a")
	writeFile(t, cfg.Root, "bower_components/b/b.js", "b")
	task := domain.NewTransformTask("vendor:scripts", domain.CategoryVendorScripts, cfg.Paths)

	m.vendor.EXPECT().Locate(cfg.Root, "bower_components", []string{"bower_components/**/*.js"}).
		Return([]string{"bower_components/a/a.js", "bower_components/b/b.js"}, nil)

	require.NoError(t, p.Run(context.Background(), task, io.Discard))
	assert.Equal(t, "a;\nb;\n", readFile(t, cfg.Root, "www/app/dependencies.js"))
}

func TestPipeline_TransformFailureWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	compile := mocks.NewMockTransformer(ctrl)
	compile.EXPECT().Step().Return(domain.StepCompile).AnyTimes()
	compile.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.Join(domain.ErrTransformFailed, errors.New("lessc exited 1")))

	p, cfg, m := setup(t, domain.ModeDevelopment, compile)
	writeFile(t, cfg.Root, "src/styles/main.less", "@x: ;")
	task := domain.NewTransformTask("styles", domain.CategoryStyles, cfg.Paths)
	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return([]string{"src/styles/main.less"}, nil)

	err := p.Run(context.Background(), task, io.Discard)
	require.ErrorIs(t, err, domain.ErrTransformFailed)
	assert.NoDirExists(t, filepath.Join(cfg.Root, "www"))
}

func TestPipeline_UnknownStep(t *testing.T) {
	p, cfg, m := setup(t, domain.ModeDevelopment)
	writeFile(t, cfg.Root, "src/styles/main.less", "a{}")
	task := domain.NewTransformTask("styles", domain.CategoryStyles, cfg.Paths)
	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return([]string{"src/styles/main.less"}, nil)

	err := p.Run(context.Background(), task, io.Discard)
	require.ErrorContains(t, err, domain.ErrUnknownStep.Error())
}

func TestPipeline_MissingFile(t *testing.T) {
	p, cfg, m := setup(t, domain.ModeDevelopment)
	task := domain.NewTransformTask("fonts", domain.CategoryFonts, cfg.Paths)
	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return([]string{"src/assets/fonts/gone.woff"}, nil)

	err := p.Run(context.Background(), task, io.Discard)
	require.ErrorContains(t, err, domain.ErrFileReadFailed.Error())
}

func TestPipeline_CanceledContext(t *testing.T) {
	p, cfg, m := setup(t, domain.ModeDevelopment)
	task := domain.NewTransformTask("fonts", domain.CategoryFonts, cfg.Paths)
	m.resolver.EXPECT().ResolveInputs(gomock.Any(), cfg.Root).Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.Run(ctx, task, io.Discard), context.Canceled)
}
