package stack

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/infra/cloudformation"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

type (
	// Environment is where a top level stack is deployed. Nested stacks are deployed with their parent.
	Environment struct {
		Region  string `json:"region,omitempty"`
		Account string `json:"account,omitempty"`
	}

	// Stack is a unit of deployment. Its name is the namespace of every resource it holds.
	Stack struct {
		Name        string
		Description string
		Env         Environment
		// Parent is the stack this stack is nested in, nil for top level stacks.
		Parent    *Stack
		Resources construct.Graph

		app          *App
		outputs      []cloudformation.OutputDefinition
		dependsOn    []construct.Edge
		dependencies map[string]struct{}
		assets       []*resources.FileAsset
		// handle is the resource that represents a nested stack in its parent.
		handle *resources.NestedStack
	}
)

func newStack(app *App, name, description string, env Environment) *Stack {
	return &Stack{
		Name:         name,
		Description:  description,
		Env:          env,
		Resources:    construct.NewGraph(),
		app:          app,
		dependencies: make(map[string]struct{}),
	}
}

func (s *Stack) IsNested() bool {
	return s.Parent != nil
}

// Root returns the top level stack that deploys this stack.
func (s *Stack) Root() *Stack {
	root := s
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

// Add declares resources in the stack. Resources must be added after the resources they reference in the same
// stack. A reference to a resource of another stack makes this stack depend on that stack.
func (s *Stack) Add(rs ...construct.Resource) error {
	var errs error
	for _, r := range rs {
		id := r.Id()
		if err := id.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid resource id %s: %w", id, err))
			continue
		}
		if id.Namespace != s.Name {
			errs = errors.Join(errs, fmt.Errorf("resource %s must be in namespace %s to be added to stack %s", id, s.Name, s.Name))
			continue
		}
		external, err := construct.AddDependenciesReflect(s.Resources, r)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		for _, ref := range external {
			if ref.Namespace == "" {
				errs = errors.Join(errs, fmt.Errorf("%s references %s which does not belong to a stack", id, ref))
				continue
			}
			s.dependencies[ref.Namespace] = struct{}{}
		}
	}
	return errs
}

// DependsOn orders `source` after `target` when source does not reference target.
func (s *Stack) DependsOn(source, target construct.Resource) error {
	if err := construct.AddDependency(s.Resources, source, target); err != nil {
		return err
	}
	s.dependsOn = append(s.dependsOn, construct.Edge{Source: source.Id(), Target: target.Id()})
	return nil
}

// AddDependency makes this stack deploy after `other`.
func (s *Stack) AddDependency(other *Stack) error {
	if other == s {
		return fmt.Errorf("stack %s cannot depend on itself", s.Name)
	}
	s.dependencies[other.Name] = struct{}{}
	return nil
}

// Dependencies lists the names of the stacks this stack depends on, sorted.
func (s *Stack) Dependencies() []string {
	var deps []string
	for d := range s.dependencies {
		deps = append(deps, d)
	}
	slices.Sort(deps)
	return deps
}

// AddOutput declares a stack output. A non-empty export name exports it for other stacks.
func (s *Stack) AddOutput(name, description string, value construct.Value, exportName string) {
	s.outputs = append(s.outputs, cloudformation.OutputDefinition{
		Name:        name,
		Description: description,
		Value:       value,
		ExportName:  exportName,
	})
}

func (s *Stack) Outputs() []cloudformation.OutputDefinition {
	return s.outputs
}

// AddAsset registers a file which must be uploaded before the stack is deployed.
func (s *Stack) AddAsset(asset *resources.FileAsset) {
	for _, a := range s.assets {
		if a.Hash == asset.Hash && a.Extension == asset.Extension {
			return
		}
	}
	s.assets = append(s.assets, asset)
}

func (s *Stack) Assets() []*resources.FileAsset {
	return s.assets
}

// NewFileAsset hashes the file and registers it as an asset of the stack.
func (s *Stack) NewFileAsset(path string) (*resources.FileAsset, error) {
	asset, err := resources.NewFileAsset(path, s.app.AssetBucket)
	if err != nil {
		return nil, err
	}
	s.AddAsset(asset)
	return asset, nil
}

func (s *Stack) definition() cloudformation.StackDefinition {
	def := cloudformation.StackDefinition{
		Name:        s.Name,
		Description: s.Description,
		Resources:   s.Resources,
		DependsOn:   s.dependsOn,
		Outputs:     s.outputs,
	}
	if s.Parent != nil {
		def.Parent = s.Parent.Name
	}
	return def
}
