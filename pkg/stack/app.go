package stack

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dominikbraun/graph"
	"github.com/talves/gameservers/pkg/infra/cloudformation"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

type (
	// App is the set of stacks deployed together.
	App struct {
		// AssetBucket is the bucket name format for file assets.
		AssetBucket string
		// Format is the serialization of the top level templates. Nested templates are always JSON.
		Format cloudformation.Format

		stacks map[string]*Stack
		order  []string
	}

	AppOptions struct {
		AssetBucket string
		Format      cloudformation.Format
	}

	// StackGraph orders stacks: an edge `A -> B` means A must be deployed before B.
	StackGraph = graph.Graph[string, *Stack]
)

var stackNamePattern = regexp.MustCompile(`^[a-zA-Z][-a-zA-Z0-9]{0,127}$`)

func NewApp(opts AppOptions) *App {
	bucket := opts.AssetBucket
	if bucket == "" {
		bucket = resources.DEFAULT_ASSET_BUCKET
	}
	format := opts.Format
	if format == "" {
		format = cloudformation.FormatJSON
	}
	return &App{
		AssetBucket: bucket,
		Format:      format,
		stacks:      make(map[string]*Stack),
	}
}

func (a *App) addStack(s *Stack) error {
	if !stackNamePattern.MatchString(s.Name) {
		return fmt.Errorf("invalid stack name %q (must match %s)", s.Name, stackNamePattern)
	}
	if _, ok := a.stacks[s.Name]; ok {
		return fmt.Errorf("stack %s already exists", s.Name)
	}
	a.stacks[s.Name] = s
	a.order = append(a.order, s.Name)
	return nil
}

// NewStack creates a top level stack.
func (a *App) NewStack(name, description string, env Environment) (*Stack, error) {
	s := newStack(a, name, description, env)
	if err := a.addStack(s); err != nil {
		return nil, err
	}
	return s, nil
}

// NewNestedStack creates a stack that is deployed as a resource of `parent`. The parent depends on the nested
// stack so that the nested template is synthesized first.
func (a *App) NewNestedStack(parent *Stack, name, description string) (*Stack, error) {
	if parent == nil || a.stacks[parent.Name] != parent {
		return nil, fmt.Errorf("parent of nested stack %s is not part of the app", name)
	}
	s := newStack(a, name, description, parent.Root().Env)
	s.Parent = parent
	if err := a.addStack(s); err != nil {
		return nil, err
	}
	s.handle = &resources.NestedStack{
		Name:      name,
		Namespace: parent.Name,
		StackName: name,
	}
	if err := parent.Add(s.handle); err != nil {
		return nil, err
	}
	parent.dependencies[s.Name] = struct{}{}
	return s, nil
}

func (a *App) Stack(name string) (*Stack, bool) {
	s, ok := a.stacks[name]
	return s, ok
}

// Graph builds the stack ordering graph from the stack dependencies.
func (a *App) Graph() (StackGraph, error) {
	g := graph.New(func(s *Stack) string { return s.Name }, graph.Directed(), graph.PreventCycles())
	var errs error
	for _, name := range a.order {
		errs = errors.Join(errs, g.AddVertex(a.stacks[name]))
	}
	for _, name := range a.order {
		for _, dep := range a.stacks[name].Dependencies() {
			if _, ok := a.stacks[dep]; !ok {
				errs = errors.Join(errs, fmt.Errorf("stack %s depends on unknown stack %s", name, dep))
				continue
			}
			if err := g.AddEdge(dep, name); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				errs = errors.Join(errs, fmt.Errorf("stack %s cannot depend on %s: %w", name, dep, err))
			}
		}
	}
	return g, errs
}

// Stacks returns every stack in deployment order, dependencies first, ties broken by name.
func (a *App) Stacks() ([]*Stack, error) {
	g, err := a.Graph()
	if err != nil {
		return nil, err
	}
	names, err := graph.StableTopologicalSort(g, func(x, y string) bool { return x < y })
	if err != nil {
		return nil, err
	}
	stacks := make([]*Stack, len(names))
	for i, name := range names {
		stacks[i] = a.stacks[name]
	}
	return stacks, nil
}
