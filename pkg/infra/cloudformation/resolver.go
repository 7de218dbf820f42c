package cloudformation

import (
	"errors"
	"reflect"

	"github.com/talves/gameservers/pkg/construct"
)

// resolver renders the references of a single resource, collecting errors so the renderers can build their
// property maps without checking each reference.
type resolver struct {
	sc  *stackContext
	err error
}

func (sc *stackContext) resolver() *resolver {
	return &resolver{sc: sc}
}

func (r *resolver) value(v construct.Value) any {
	out, err := r.sc.value(v)
	r.err = errors.Join(r.err, err)
	return out
}

// ref renders the property of the resource, or nil when there is no resource.
func (r *resolver) ref(res construct.Resource, property string) any {
	if isNil(res) {
		return nil
	}
	return r.value(construct.ValueOf(res, property))
}

func (r *resolver) values(vs []construct.Value) []any {
	out := make([]any, 0, len(vs))
	for _, v := range vs {
		out = append(out, r.value(v))
	}
	return out
}

func refList[T construct.Resource](r *resolver, list []T, property string) []any {
	out := make([]any, 0, len(list))
	for _, res := range list {
		if v := r.ref(res, property); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func isNil(res construct.Resource) bool {
	if res == nil {
		return true
	}
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
