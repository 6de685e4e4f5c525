// Package domain contains the core domain models and business logic for the asset build graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents a dependency graph of tasks.
type Graph struct {
	name           string
	tasks          map[InternedString]Task
	executionOrder []InternedString
	groups         [][]InternedString
	validated      bool
}

// NewGraph creates a new empty Graph with the given entry point name.
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		tasks: make(map[InternedString]Task),
	}
}

// Name returns the entry point name of the graph.
func (g *Graph) Name() string {
	return g.name
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	g.validated = false
	return nil
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Dependents returns the names of the tasks that depend directly on name, sorted.
func (g *Graph) Dependents(name InternedString) []InternedString {
	var out []InternedString
	for _, key := range g.sortedNames() {
		if slices.Contains(g.tasks[key].Dependencies, name) {
			out = append(out, key)
		}
	}
	return out
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order and the group layering if successful.
// Tasks are visited in name order so that the result is deterministic.
func (g *Graph) Validate() error {
	g.validated = false
	g.executionOrder = make([]InternedString, 0, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	depth := make(map[InternedString]int, len(g.tasks))
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task := g.tasks[u]
		level := 0
		for _, dep := range task.Dependencies {
			if _, exists := g.tasks[dep]; !exists {
				return zerr.With(zerr.With(ErrMissingDependency, "dependency", dep.String()),
					"task_name", u.String())
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
			level = max(level, depth[dep]+1)
		}

		depth[u] = level
		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.sortedNames() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	g.groups = g.layer(depth)
	g.validated = true
	return nil
}

// layer buckets tasks by their longest-path depth from a root.
func (g *Graph) layer(depth map[InternedString]int) [][]InternedString {
	var groups [][]InternedString
	for _, name := range g.executionOrder {
		d := depth[name]
		for len(groups) <= d {
			groups = append(groups, nil)
		}
		groups[d] = append(groups[d], name)
	}
	for _, group := range groups {
		slices.SortFunc(group, compareNames)
	}
	return groups
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.SortFunc(names, compareNames)
	return names
}

func compareNames(a, b InternedString) int {
	return strings.Compare(a.String(), b.String())
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	names := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		names = append(names, node.String())
	}
	names = append(names, dep.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(names, " -> "))
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Groups returns the tasks layered into groups. Every task is placed in a
// group strictly after the groups of all its dependencies; tasks in the same
// group are independent of each other and sorted by name.
func (g *Graph) Groups() ([][]Task, error) {
	if !g.validated {
		return nil, zerr.With(ErrGraphNotValidated, "graph", g.name)
	}
	out := make([][]Task, len(g.groups))
	for i, group := range g.groups {
		out[i] = make([]Task, len(group))
		for j, name := range group {
			out[i][j] = g.tasks[name]
		}
	}
	return out, nil
}
