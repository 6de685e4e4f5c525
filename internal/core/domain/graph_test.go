package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func task(name string, deps ...string) *domain.Task {
	return domain.NewTask(name, domain.KindTransform, deps...)
}

func groupNames(groups [][]domain.Task) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, t := range g {
			out[i] = append(out[i], t.Name.String())
		}
	}
	return out
}

func TestGraph_AddTask(t *testing.T) {
	g := domain.NewGraph("compile")

	require.NoError(t, g.AddTask(task("task1")))

	err := g.AddTask(task("task1"))
	require.ErrorContains(t, err, domain.ErrTaskAlreadyExists.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "task1", zErr.Metadata()["task_name"])
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph("compile")
	require.NoError(t, g.AddTask(task("A", "B")))
	require.NoError(t, g.AddTask(task("B", "C")))
	require.NoError(t, g.AddTask(task("C", "A")))

	err := g.Validate()
	require.ErrorContains(t, err, domain.ErrCycleDetected.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "A -> B -> C -> A", zErr.Metadata()["cycle"])
}

func TestGraph_Validate_MissingDependency(t *testing.T) {
	g := domain.NewGraph("compile")
	require.NoError(t, g.AddTask(task("index", "partials")))

	err := g.Validate()
	require.ErrorContains(t, err, domain.ErrMissingDependency.Error())
}

func TestGraph_Walk(t *testing.T) {
	g := domain.NewGraph("compile")
	// A -> B -> C
	// Execution order: C, B, A
	require.NoError(t, g.AddTask(task("A", "B")))
	require.NoError(t, g.AddTask(task("B", "C")))
	require.NoError(t, g.AddTask(task("C")))
	require.NoError(t, g.Validate())

	executed := make([]string, 0, 3)
	for tk := range g.Walk() {
		executed = append(executed, tk.Name.String())
	}
	assert.Equal(t, []string{"C", "B", "A"}, executed)
}

func TestGraph_Groups(t *testing.T) {
	g := domain.NewGraph("compile")
	for _, tk := range []*domain.Task{
		task("reload", "index"),
		task("index", "partials"),
		task("partials", "scripts", "styles", "images", "fonts"),
		task("scripts"),
		task("styles"),
		task("images"),
		task("fonts"),
	} {
		require.NoError(t, g.AddTask(tk))
	}
	require.NoError(t, g.Validate())

	groups, err := g.Groups()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"fonts", "images", "scripts", "styles"},
		{"partials"},
		{"index"},
		{"reload"},
	}, groupNames(groups))
}

func TestGraph_Groups_LongestPath(t *testing.T) {
	// D depends on A directly and through B, so it must land after B.
	g := domain.NewGraph("build")
	require.NoError(t, g.AddTask(task("A")))
	require.NoError(t, g.AddTask(task("B", "A")))
	require.NoError(t, g.AddTask(task("D", "A", "B")))
	require.NoError(t, g.Validate())

	groups, err := g.Groups()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {"D"}}, groupNames(groups))

	index := make(map[string]int)
	for i, group := range groups {
		for _, tk := range group {
			index[tk.Name.String()] = i
		}
	}
	for tk := range g.Walk() {
		for _, dep := range tk.Dependencies {
			assert.Less(t, index[dep.String()], index[tk.Name.String()])
		}
	}
}

func TestGraph_Groups_RequiresValidate(t *testing.T) {
	g := domain.NewGraph("compile")
	require.NoError(t, g.AddTask(task("A")))

	_, err := g.Groups()
	require.ErrorContains(t, err, domain.ErrGraphNotValidated.Error())
}

func TestGraph_Dependents(t *testing.T) {
	g := domain.NewGraph("compile")
	require.NoError(t, g.AddTask(task("styles")))
	require.NoError(t, g.AddTask(task("scripts")))
	require.NoError(t, g.AddTask(task("partials", "styles", "scripts")))
	require.NoError(t, g.AddTask(task("reload", "styles")))

	got := domain.Strings(g.Dependents(domain.NewInternedString("styles")))
	assert.Equal(t, []string{"partials", "reload"}, got)

	tk, ok := g.GetTask(domain.NewInternedString("partials"))
	require.True(t, ok)
	assert.Len(t, tk.Dependencies, 2)
	assert.Equal(t, "compile", g.Name())
	assert.Equal(t, 4, g.Len())
}
