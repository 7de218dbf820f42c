package construct

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	testNetwork struct {
		Name string
	}

	testSubnet struct {
		Name    string
		Network *testNetwork
	}

	testContainer struct {
		LogGroup IaCValue
	}

	testService struct {
		Name       string
		Subnets    []*testSubnet
		Containers []testContainer
		Tags       map[string]IaCValue
		Unset      *testNetwork
	}
)

func (n *testNetwork) Id() ResourceId {
	return ResourceId{Provider: "test", Type: "network", Namespace: "base", Name: n.Name}
}

func (s *testSubnet) Id() ResourceId {
	return ResourceId{Provider: "test", Type: "subnet", Namespace: "base", Name: s.Name}
}

func (s *testService) Id() ResourceId {
	return ResourceId{Provider: "test", Type: "service", Namespace: "server", Name: s.Name}
}

func TestReferences(t *testing.T) {
	assert := assert.New(t)

	network := &testNetwork{Name: "net"}
	subnet := &testSubnet{Name: "subnet", Network: network}
	logs := ResourceId{Provider: "test", Type: "log_group", Namespace: "server", Name: "logs"}
	svc := &testService{
		Name:       "svc",
		Subnets:    []*testSubnet{subnet},
		Containers: []testContainer{{LogGroup: IaCValue{ResourceId: logs, Property: "arn"}}},
		Tags:       map[string]IaCValue{"literal": Literal("x")},
	}

	assert.Equal([]ResourceId{network.Id()}, References(subnet))
	assert.Equal([]ResourceId{logs, subnet.Id()}, References(svc))
}

func TestAddDependenciesReflect(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGraph()
	network := &testNetwork{Name: "net"}
	subnet := &testSubnet{Name: "subnet", Network: network}

	_, err := AddDependenciesReflect(g, subnet)
	assert.Error(err, "network has not been added yet")

	require.NoError(AddResource(g, network))
	external, err := AddDependenciesReflect(g, subnet)
	require.NoError(err)
	assert.Empty(external)

	_, err = g.Edge(subnet.Id(), network.Id())
	assert.NoError(err)

	svc := &testService{Name: "svc", Subnets: []*testSubnet{subnet}}
	svcGraph := NewGraph()
	external, err = AddDependenciesReflect(svcGraph, svc)
	require.NoError(err)
	assert.Equal([]ResourceId{subnet.Id()}, external)
}

func TestAddResource_Duplicate(t *testing.T) {
	assert := assert.New(t)

	g := NewGraph()
	assert.NoError(AddResource(g, &testNetwork{Name: "a"}))

	n := &testNetwork{Name: "b"}
	assert.NoError(AddResource(g, n))
	assert.NoError(AddResource(g, n), "re-adding the same declaration is a no-op")
	assert.Error(AddResource(g, &testNetwork{Name: "b"}), "a different declaration with the same id")
}

func TestTopologicalSort(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGraph()
	network := &testNetwork{Name: "net"}
	a := &testSubnet{Name: "a", Network: network}
	b := &testSubnet{Name: "b", Network: network}
	require.NoError(AddResource(g, network))
	for _, s := range []*testSubnet{b, a} {
		_, err := AddDependenciesReflect(g, s)
		require.NoError(err)
	}

	topo, err := TopologicalSort(g)
	require.NoError(err)
	assert.Equal([]ResourceId{a.Id(), b.Id(), network.Id()}, topo)

	reverse, err := ReverseTopologicalSort(g)
	require.NoError(err)
	assert.Equal(network.Id(), reverse[0])
	assert.ElementsMatch([]ResourceId{a.Id(), b.Id()}, reverse[1:])

	var visited []ResourceId
	err = WalkGraphReverse(g, func(id ResourceId, _ Resource) error {
		visited = append(visited, id)
		if id == a.Id() {
			return errors.New("subnet a failed")
		}
		return nil
	})
	assert.EqualError(err, "subnet a failed")
	assert.Equal(reverse, visited, "an error does not stop the walk")
}

func TestAddDependency_PreventsCycles(t *testing.T) {
	assert := assert.New(t)

	g := NewGraph()
	a := &testNetwork{Name: "a"}
	b := &testNetwork{Name: "b"}
	assert.NoError(AddDependency(g, a, b))
	assert.NoError(AddDependency(g, a, b), "duplicate edges are ignored")
	assert.Error(AddDependency(g, b, a))
}
