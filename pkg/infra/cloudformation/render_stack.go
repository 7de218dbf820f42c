package cloudformation

import (
	"fmt"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

func renderNestedStack(sc *stackContext, r construct.Resource) (*Resource, error) {
	ns := r.(*resources.NestedStack)
	if ns.Template == nil {
		return nil, fmt.Errorf("nested stack %s has not been synthesized", ns.StackName)
	}
	res := sc.resolver()
	return &Resource{
		Type: "AWS::CloudFormation::Stack",
		Properties: map[string]any{
			"TemplateURL": res.value(ns.Template.HttpUrl()),
		},
		DeletionPolicy:      "Delete",
		UpdateReplacePolicy: "Delete",
	}, res.err
}
