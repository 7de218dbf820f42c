package construct

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"
)

// TopologicalSort provides a stable topological ordering of resource IDs: referencing resources come before
// the resources they reference. Ties are broken on the ids themselves so the same graph always sorts the same.
func TopologicalSort[T any](g graph.Graph[ResourceId, T]) ([]ResourceId, error) {
	return topologicalSort(g, false)
}

// ReverseTopologicalSort is like TopologicalSort, but returns the reverse order, which is the order in
// which resources would need to be created.
func ReverseTopologicalSort[T any](g graph.Graph[ResourceId, T]) ([]ResourceId, error) {
	topo, err := topologicalSort(g, true)
	if err != nil {
		return nil, err
	}
	slices.Reverse(topo)
	return topo, nil
}

func topologicalSort[T any](g graph.Graph[ResourceId, T], invert bool) ([]ResourceId, error) {
	if !g.Traits().IsDirected {
		return nil, fmt.Errorf("topological sort cannot be computed on undirected graph")
	}

	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get predecessor map: %w", err)
	}
	if len(predecessors) == 0 {
		return nil, nil
	}

	less := func(a, b ResourceId) int {
		if invert {
			return b.Compare(a)
		}
		return a.Compare(b)
	}

	var queue []ResourceId
	for id, preds := range predecessors {
		if len(preds) == 0 {
			queue = append(queue, id)
		}
	}
	if len(queue) == 0 {
		return nil, errors.New("graph has no root vertices, it must contain a cycle")
	}
	slices.SortFunc(queue, less)

	order := make([]ResourceId, 0, len(predecessors))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)
		delete(predecessors, current)

		var frontier []ResourceId
		for id, preds := range predecessors {
			if _, ok := preds[current]; !ok {
				continue
			}
			delete(preds, current)
			if len(preds) == 0 {
				frontier = append(frontier, id)
			}
		}
		slices.SortFunc(frontier, less)
		queue = append(queue, frontier...)
	}
	if len(predecessors) > 0 {
		return order, fmt.Errorf("graph contains a cycle through %d vertices", len(predecessors))
	}
	return order, nil
}

// WalkGraphReverse calls fn for each resource in creation order, dependencies first. Errors from fn do not stop
// the walk, they are joined and returned once every resource has been visited.
func WalkGraphReverse(g Graph, fn func(id ResourceId, resource Resource) error) error {
	ids, err := ReverseTopologicalSort(g)
	if err != nil {
		return err
	}
	var errs error
	for _, id := range ids {
		v, err := g.Vertex(id)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		errs = errors.Join(errs, fn(id, v))
	}
	return errs
}
