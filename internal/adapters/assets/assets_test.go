package assets_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/assets"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func scriptsTask(mode domain.BuildMode) *domain.Task {
	return domain.NewTransformTask("scripts", domain.CategoryScripts, domain.ResolvePaths(mode))
}

func TestToolkit_CoversPipelineSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	kit := assets.NewToolkit(mocks.NewMockCommandRunner(ctrl), mocks.NewMockHasher(ctrl))
	cfg := domain.NewBuildConfig(domain.ModeProduction, t.TempDir(), domain.DefaultLayout(), domain.DefaultTools(), domain.ServerConfig{})

	steps := map[domain.Step]bool{}
	for _, tr := range kit.Transformers(cfg) {
		steps[tr.Step()] = true
	}

	for _, c := range domain.Categories() {
		for _, mode := range []domain.BuildMode{domain.ModeDevelopment, domain.ModeProduction} {
			for _, s := range domain.ResolveVariant(mode, c).Steps {
				if s == domain.StepChanged || s == domain.StepWrite {
					continue
				}
				assert.True(t, steps[s], "no transformer for step %s", s)
			}
		}
	}
}

func TestPreprocessor(t *testing.T) {
	tests := []struct {
		name string
		mode domain.BuildMode
		in   string
		want string
	}{
		{
			name: "echo in development",
			mode: domain.ModeDevelopment,
			in:   "var env = '/* @echo NODE_ENV */';",
			want: "var env = 'testing';",
		},
		{
			name: "echo in production",
			mode: domain.ModeProduction,
			in:   "var env = '/* @echo NODE_ENV */';",
			want: "var env = 'production';",
		},
		{
			name: "unknown variable is kept",
			mode: domain.ModeDevelopment,
			in:   "var x = /* @echo API_URL */;",
			want: "var x = /* @echo API_URL */;",
		},
		{
			name: "if block kept when the condition holds",
			mode: domain.ModeProduction,
			in:   "a();\n// @if NODE_ENV='production'\nb();\n// @endif\nc();",
			want: "a();\nb();\nc();",
		},
		{
			name: "if block dropped otherwise",
			mode: domain.ModeDevelopment,
			in:   "a();\n// @if NODE_ENV='production'\nb();\n// @endif\nc();",
			want: "a();\nc();",
		},
		{
			name: "negated condition",
			mode: domain.ModeDevelopment,
			in:   "// @if NODE_ENV!='production'\ndebug();\n// @endif",
			want: "debug();",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := assets.NewPreprocessor(tt.mode)
			out, err := p.Apply(context.Background(), scriptsTask(tt.mode), []domain.Artifact{
				{Path: "app.js", Source: "src/app/app.js", Content: []byte(tt.in)},
			}, io.Discard)

			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, string(out[0].Content))
		})
	}
}

func TestPreprocessor_UnterminatedIf(t *testing.T) {
	p := assets.NewPreprocessor(domain.ModeDevelopment)
	_, err := p.Apply(context.Background(), scriptsTask(domain.ModeDevelopment), []domain.Artifact{
		{Path: "app.js", Source: "src/app/app.js", Content: []byte("// @if NODE_ENV='testing'\nx();")},
	}, io.Discard)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransformFailed)
}

func TestLinter_SyntaxError(t *testing.T) {
	broken := []domain.Artifact{{Path: "app.js", Source: "src/app/app.js", Content: []byte("function (")}}

	t.Run("strict fails", func(t *testing.T) {
		var diag bytes.Buffer
		_, err := assets.NewLinter(nil, t.TempDir(), nil, true).
			Apply(context.Background(), scriptsTask(domain.ModeProduction), broken, &diag)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransformFailed)
		assert.ErrorContains(t, err, domain.ErrLintFailed.Error())
		assert.Contains(t, diag.String(), "src/app/app.js:1:")
	})

	t.Run("lenient reports only", func(t *testing.T) {
		var diag bytes.Buffer
		out, err := assets.NewLinter(nil, t.TempDir(), nil, false).
			Apply(context.Background(), scriptsTask(domain.ModeDevelopment), broken, &diag)

		require.NoError(t, err)
		assert.Equal(t, broken, out)
		assert.Contains(t, diag.String(), "src/app/app.js")
	})
}

func TestLinter_ExternalCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	root := t.TempDir()
	var diag bytes.Buffer

	runner.EXPECT().
		Run(gomock.Any(), root, []string{"eslint", filepath.Join(root, "src", "app", "app.js")}, nil, &diag).
		Return([]byte("app.js: 'x' is defined but never used\n"), errors.New("exit status 1"))

	in := []domain.Artifact{{Path: "app.js", Source: "src/app/app.js", Content: []byte("var x = 1;")}}
	_, err := assets.NewLinter(runner, root, []string{"eslint", "{input}"}, true).
		Apply(context.Background(), scriptsTask(domain.ModeProduction), in, &diag)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransformFailed)
	assert.Contains(t, diag.String(), "never used")
}

func TestStyleCompiler(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	root := t.TempDir()

	runner.EXPECT().
		Run(gomock.Any(), root, []string{"lessc", filepath.Join(root, "src", "styles", "main.less")}, nil, io.Discard).
		Return([]byte("body{color:red}"), nil)

	task := domain.NewTransformTask("styles", domain.CategoryStyles, domain.ResolvePaths(domain.ModeDevelopment))
	out, err := assets.NewStyleCompiler(runner, root, []string{"lessc", "{input}"}).Apply(
		context.Background(), task,
		[]domain.Artifact{
			{Path: "main.less", Source: "src/styles/main.less", Content: []byte("@c: red; body { color: @c; }")},
			{Path: "plain.css", Source: "src/styles/plain.css", Content: []byte("a{}")},
		},
		io.Discard,
	)

	require.NoError(t, err)
	assert.Equal(t, []domain.Artifact{
		{Path: "main.css", Source: "src/styles/main.less", Content: []byte("body{color:red}")},
		{Path: "plain.css", Source: "src/styles/plain.css", Content: []byte("a{}")},
	}, out)
}

func TestStyleCompiler_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("ParseError: Unrecognised input"))

	task := domain.NewTransformTask("styles", domain.CategoryStyles, domain.ResolvePaths(domain.ModeDevelopment))
	_, err := assets.NewStyleCompiler(runner, t.TempDir(), []string{"lessc", "{input}"}).Apply(
		context.Background(), task,
		[]domain.Artifact{{Path: "main.less", Source: "src/styles/main.less", Content: []byte("body {")}},
		io.Discard,
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransformFailed)
	assert.ErrorContains(t, err, "Unrecognised input")
}

func TestImageOptimizer(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	task := domain.NewTransformTask("images", domain.CategoryImages, domain.ResolvePaths(domain.ModeProduction))
	in := []domain.Artifact{{Path: "logo.png", Source: "src/assets/images/logo.png", Content: []byte("big")}}

	t.Run("identity without a command", func(t *testing.T) {
		out, err := assets.NewImageOptimizer(runner, t.TempDir(), nil).Apply(context.Background(), task, in, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("stdin when the command has no placeholder", func(t *testing.T) {
		runner.EXPECT().Run(gomock.Any(), gomock.Any(), []string{"pngquant", "-"}, []byte("big"), io.Discard).
			Return([]byte("small"), nil)

		out, err := assets.NewImageOptimizer(runner, t.TempDir(), []string{"pngquant", "-"}).
			Apply(context.Background(), task, in, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "small", string(out[0].Content))
		assert.Equal(t, "logo.png", out[0].Path)
	})
}

func TestTemplateCache_Golden(t *testing.T) {
	task := domain.NewTransformTask("partials", domain.CategoryPartials, domain.ResolvePaths(domain.ModeDevelopment))

	out, err := assets.NewTemplateCache("www").Apply(context.Background(), task, []domain.Artifact{
		{Path: "views/home.html", Source: "src/app/views/home.html", Content: []byte("<h1>Home</h1>\n")},
		{Path: "components/nav.html", Source: "src/app/components/nav.html", Content: []byte(`<nav class='top'>\</nav>`)},
	}, io.Discard)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.TemplatesBundle.String(), out[0].Path)
	goldie.New(t).Assert(t, "templates", out[0].Content)
}

func TestTemplateCache_RequiresBundle(t *testing.T) {
	_, err := assets.NewTemplateCache("www").Apply(context.Background(), domain.NewTask("x", domain.KindTransform), nil, io.Discard)
	require.ErrorIs(t, err, domain.ErrMissingBundleName)
}

func TestConcatenator_Deterministic(t *testing.T) {
	task := domain.NewTransformTask("vendor:scripts", domain.CategoryVendorScripts, domain.ResolvePaths(domain.ModeDevelopment))
	a := domain.Artifact{Path: "jquery/jquery.js", Source: "bower_components/jquery/jquery.js", Content: []byte("window.$ = {}\n")}
	b := domain.Artifact{Path: "angular/angular.js", Source: "bower_components/angular/angular.js", Content: []byte("window.angular = {};")}

	c := assets.NewConcatenator()
	first, err := c.Apply(context.Background(), task, []domain.Artifact{a, b}, io.Discard)
	require.NoError(t, err)
	second, err := c.Apply(context.Background(), task, []domain.Artifact{b, a}, io.Discard)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, "dependencies.js", first[0].Path)
	assert.Equal(t, "window.angular = {};\nwindow.$ = {};\n", string(first[0].Content))
	assert.Equal(t, first, second, "input order does not change the bundle")
}

func TestConcatenator_Styles(t *testing.T) {
	task := domain.NewTransformTask("vendor:styles", domain.CategoryVendorStyles, domain.ResolvePaths(domain.ModeDevelopment))
	out, err := assets.NewConcatenator().Apply(context.Background(), task, []domain.Artifact{
		{Path: "b.css", Source: "bower_components/b.css", Content: []byte("b{}")},
		{Path: "a.css", Source: "bower_components/a.css", Content: []byte("a{}")},
	}, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "a{}\nb{}\n", string(out[0].Content))
}

func TestMinifier(t *testing.T) {
	out, err := assets.NewMinifier().Apply(context.Background(), scriptsTask(domain.ModeProduction), []domain.Artifact{
		{Path: "main.css", Content: []byte("body {\n  color : red ;\n}\n")},
		{Path: "app.js", Content: []byte("var answer = 40 + 2;\n\n// comment\n")},
		{Path: "logo.png", Content: []byte{0x89, 0x50}},
	}, io.Discard)

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "body{color:red}", string(out[0].Content))
	assert.NotContains(t, string(out[1].Content), "comment")
	assert.Less(t, len(out[1].Content), len("var answer = 40 + 2;\n\n// comment\n"))
	assert.Equal(t, []byte{0x89, 0x50}, out[2].Content)
}

func TestFingerprinter(t *testing.T) {
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Sum([]byte("main")).Return("0123456789abcdef")
	hasher.EXPECT().Sum([]byte("license")).Return("fedcba9876543210")

	out, err := assets.NewFingerprinter(hasher).Apply(context.Background(), scriptsTask(domain.ModeProduction), []domain.Artifact{
		{Path: "main.js", Content: []byte("main")},
		{Path: "LICENSE", Content: []byte("license")},
	}, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "main-0123456789.js", out[0].Path)
	assert.Equal(t, "LICENSE-fedcba9876", out[1].Path)
}

func TestInjector_Golden(t *testing.T) {
	index := []byte(`<!doctype html>
<html>
<head>
  <!-- inject:css -->
  <!-- endinject -->
</head>
<body>
  <!-- inject:js -->
  <script src="stale.js"></script>
  <!-- endinject -->
</body>
</html>
`)

	out, err := assets.NewInjector().Inject(index,
		[]string{"styles/bower.css", "styles/main.css"},
		[]string{"app/dependencies.js", "app/app.js"},
	)

	require.NoError(t, err)
	goldie.New(t).Assert(t, "inject", out)
}

func TestInjector_Idempotent(t *testing.T) {
	index := []byte("<head>\n\t<!-- inject:css -->\n\t<!-- endinject -->\n</head>\n")
	inj := assets.NewInjector()

	once, err := inj.Inject(index, []string{"styles/main.css"}, nil)
	require.NoError(t, err)
	twice, err := inj.Inject(once, []string{"styles/main.css"}, nil)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestInjector_NoMarkers(t *testing.T) {
	_, err := assets.NewInjector().Inject([]byte("<html></html>"), nil, nil)
	require.ErrorIs(t, err, domain.ErrInjectMarkerMissing)
}
