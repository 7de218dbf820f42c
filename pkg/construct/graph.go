package construct

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dominikbraun/graph"
)

type (
	// Graph holds the resources of a single stack. An edge `A -> B` means that A references B
	// and therefore B must exist before A.
	Graph = graph.Graph[ResourceId, Resource]
	Edge  = graph.Edge[ResourceId]
)

func ResourceHasher(r Resource) ResourceId {
	return r.Id()
}

func NewGraph(options ...func(*graph.Traits)) Graph {
	return graph.New(ResourceHasher, append(options, graph.Directed(), graph.PreventCycles())...)
}

// AddResource adds the resource to the graph, treating an already present resource with the same id
// as success only when it is the very same declaration.
func AddResource(g Graph, r Resource) error {
	err := g.AddVertex(r)
	if errors.Is(err, graph.ErrVertexAlreadyExists) {
		existing, verr := g.Vertex(r.Id())
		if verr != nil {
			return verr
		}
		if existing != r {
			return fmt.Errorf("a different resource with id %s already exists", r.Id())
		}
		return nil
	}
	return err
}

// AddDependency adds the edge `source -> target`, adding either vertex if it is missing.
func AddDependency(g Graph, source, target Resource) error {
	if err := AddResource(g, source); err != nil {
		return err
	}
	if err := AddResource(g, target); err != nil {
		return err
	}
	err := g.AddEdge(source.Id(), target.Id())
	if errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not add dependency %s -> %s: %w", source.Id(), target.Id(), err)
	}
	return nil
}

// References returns the ids of every resource directly referenced by the fields of `source`.
//
// Supported field types (`*T` is a struct that implements Resource)
// - `SingleDependency   Resource`
// - `SpecificDependency *T`
// - `Value              IaCValue`
// - slices, arrays and map values of any of the above
// - plain structs (and pointers to them) which are not resources themselves are searched recursively,
// so that for example the container definitions of a task definition contribute their references.
func References(source Resource) []ResourceId {
	seen := make(map[ResourceId]struct{})
	var ids []ResourceId
	add := func(id ResourceId) {
		if id.IsZero() || id == source.Id() {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var walk func(v reflect.Value, depth int)
	walk = func(v reflect.Value, depth int) {
		if depth > 16 || !v.IsValid() {
			return
		}
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			if v.IsNil() {
				return
			}
		}
		if depth > 0 && v.CanInterface() {
			switch val := v.Interface().(type) {
			case Resource:
				add(val.Id())
				return
			case IaCValue:
				add(val.ResourceId)
				return
			case *IaCValue:
				add(val.ResourceId)
				return
			}
		}
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			walk(v.Elem(), depth+1)

		case reflect.Struct:
			for i := 0; i < v.NumField(); i++ {
				if !v.Type().Field(i).IsExported() {
					continue
				}
				walk(v.Field(i), depth+1)
			}

		case reflect.Slice, reflect.Array:
			if k := v.Type().Elem().Kind(); k < reflect.Array || k == reflect.String {
				// slices of plain values ([]string, []byte) cannot hold references
				return
			}
			for i := 0; i < v.Len(); i++ {
				walk(v.Index(i), depth+1)
			}

		case reflect.Map:
			for iter := v.MapRange(); iter.Next(); {
				walk(iter.Value(), depth+1)
			}
		}
	}
	root := reflect.ValueOf(source)
	for root.Kind() == reflect.Pointer && !root.IsNil() {
		root = root.Elem()
	}
	walk(root, 0)
	SortIds(ids)
	return ids
}

// AddDependenciesReflect adds `source` to the graph along with an edge for each resource it references
// that lives in the same namespace. References to other namespaces cannot be edges in this graph (the
// target belongs to another stack's graph) and are returned instead.
func AddDependenciesReflect(g Graph, source Resource) (external []ResourceId, err error) {
	if err := AddResource(g, source); err != nil {
		return nil, err
	}
	var errs error
	for _, id := range References(source) {
		if id.Namespace != source.Id().Namespace {
			external = append(external, id)
			continue
		}
		target, verr := g.Vertex(id)
		if verr != nil {
			errs = errors.Join(errs, fmt.Errorf("%s references %s which has not been declared: %w", source.Id(), id, verr))
			continue
		}
		errs = errors.Join(errs, AddDependency(g, source, target))
	}
	return external, errs
}
