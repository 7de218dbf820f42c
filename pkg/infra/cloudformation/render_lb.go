package cloudformation

import (
	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

func renderNetworkLoadBalancer(sc *stackContext, r construct.Resource) (*Resource, error) {
	lb := r.(*resources.NetworkLoadBalancer)
	res := sc.resolver()
	scheme := lb.Scheme
	if scheme == "" {
		scheme = resources.LB_SCHEME_INTERNET_FACING
	}
	props := map[string]any{
		"Type":    "network",
		"Name":    lb.LoadBalancerName,
		"Scheme":  scheme,
		"Subnets": refList(res, lb.Subnets, resources.ID_IAC_VALUE),
	}
	return &Resource{Type: "AWS::ElasticLoadBalancingV2::LoadBalancer", Properties: props}, res.err
}

func renderNlbListener(sc *stackContext, r construct.Resource) (*Resource, error) {
	l := r.(*resources.NlbListener)
	res := sc.resolver()
	props := map[string]any{
		"LoadBalancerArn": res.ref(l.LoadBalancer, resources.ARN_IAC_VALUE),
		"Port":            l.Port,
		"Protocol":        resources.ElbProtocol(l.Protocol),
		"DefaultActions": []any{map[string]any{
			"Type":           "forward",
			"TargetGroupArn": res.ref(l.TargetGroup, resources.ARN_IAC_VALUE),
		}},
	}
	return &Resource{Type: "AWS::ElasticLoadBalancingV2::Listener", Properties: props}, res.err
}

func renderNlbTargetGroup(sc *stackContext, r construct.Resource) (*Resource, error) {
	tg := r.(*resources.NlbTargetGroup)
	res := sc.resolver()
	targetType := tg.TargetType
	if targetType == "" {
		targetType = resources.TARGET_TYPE_IP
	}
	props := map[string]any{
		"Name":       tg.TargetGroupName,
		"Port":       tg.Port,
		"Protocol":   resources.ElbProtocol(tg.Protocol),
		"TargetType": targetType,
		"VpcId":      res.ref(tg.Vpc, resources.ID_IAC_VALUE),
	}
	return &Resource{Type: "AWS::ElasticLoadBalancingV2::TargetGroup", Properties: props}, res.err
}
