package construct

import (
	"cmp"
	"slices"
)

// Compare orders ids by provider, type, namespace then name. It is used wherever output must be
// deterministic and the graph provides no ordering of its own.
func (id ResourceId) Compare(other ResourceId) int {
	if c := cmp.Compare(id.Provider, other.Provider); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Type, other.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	return cmp.Compare(id.Name, other.Name)
}

func SortIds(ids []ResourceId) {
	slices.SortFunc(ids, ResourceId.Compare)
}
