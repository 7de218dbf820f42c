package deploy

import (
	"fmt"
	"slices"

	"github.com/talves/gameservers/pkg/stack"
)

// SelectStacks returns the top level stacks to operate on, in deployment order. No names selects every top level
// stack. Unless `exclusively` is set, the selection is widened with the stacks the named ones depend on, or for
// `dependents` with the stacks that depend on them.
func SelectStacks(m stack.Manifest, names []string, exclusively, dependents bool) ([]stack.StackManifest, error) {
	var topLevel []stack.StackManifest
	for _, sm := range m.Stacks {
		if sm.Parent == "" {
			topLevel = append(topLevel, sm)
		}
	}
	if len(names) == 0 {
		return topLevel, nil
	}

	selected := make(map[string]bool)
	for _, name := range names {
		sm, ok := m.Stack(name)
		switch {
		case !ok:
			return nil, fmt.Errorf("no stack named %s", name)
		case sm.Parent != "":
			return nil, fmt.Errorf("stack %s is nested in %s and is deployed with it", name, rootOf(m, sm))
		}
		selected[name] = true
	}

	if !exclusively {
		deps := rootDependencies(m)
		for changed := true; changed; {
			changed = false
			for _, sm := range topLevel {
				for _, dep := range deps[sm.Name] {
					from, to := dep, sm.Name
					if dependents {
						from, to = sm.Name, dep
					}
					if selected[to] && !selected[from] {
						selected[from] = true
						changed = true
					}
				}
			}
		}
	}

	return slices.DeleteFunc(topLevel, func(sm stack.StackManifest) bool {
		return !selected[sm.Name]
	}), nil
}

// rootDependencies lists the dependencies of each top level stack, including those of the stacks nested in it.
func rootDependencies(m stack.Manifest) map[string][]string {
	deps := make(map[string][]string)
	for _, sm := range m.Stacks {
		root := rootOf(m, sm)
		for _, dep := range sm.Dependencies {
			depRoot := dep
			if depSm, ok := m.Stack(dep); ok {
				depRoot = rootOf(m, depSm)
			}
			if depRoot != root && !slices.Contains(deps[root], depRoot) {
				deps[root] = append(deps[root], depRoot)
			}
		}
	}
	return deps
}

func rootOf(m stack.Manifest, sm stack.StackManifest) string {
	for sm.Parent != "" {
		parent, ok := m.Stack(sm.Parent)
		if !ok {
			return sm.Parent
		}
		sm = parent
	}
	return sm.Name
}
