package resources

import "github.com/talves/gameservers/pkg/construct"

const NESTED_STACK_TYPE = "cloudformation_stack"

// NestedStack is the parent stack's handle on a nested stack. The template is only known once the nested stack
// has been synthesized, until then Template is nil.
type NestedStack struct {
	Name      string
	Namespace string
	// StackName is the name of the nested stack (the namespace of its resources).
	StackName string
	Template  *FileAsset
}

func (ns *NestedStack) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      NESTED_STACK_TYPE,
		Namespace: ns.Namespace,
		Name:      ns.Name,
	}
}
