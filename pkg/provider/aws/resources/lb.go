package resources

import (
	"strings"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/sanitization/aws"
)

const (
	LOAD_BALANCER_TYPE = "load_balancer"
	LISTENER_TYPE      = "load_balancer_listener"
	TARGET_GROUP_TYPE  = "target_group"

	LB_SCHEME_INTERNET_FACING = "internet-facing"
	LB_SCHEME_INTERNAL        = "internal"

	TARGET_TYPE_IP = "ip"
)

type (
	NetworkLoadBalancer struct {
		Name             string
		Namespace        string
		LoadBalancerName string
		Scheme           string
		Subnets          []*Subnet
	}

	NlbListener struct {
		Name         string
		Namespace    string
		LoadBalancer *NetworkLoadBalancer
		Port         int
		Protocol     Protocol
		TargetGroup  *NlbTargetGroup
	}

	NlbTargetGroup struct {
		Name            string
		Namespace       string
		TargetGroupName string
		Port            int
		Protocol        Protocol
		TargetType      string
		Vpc             *Vpc
	}
)

func (lb *NetworkLoadBalancer) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      LOAD_BALANCER_TYPE,
		Namespace: lb.Namespace,
		Name:      lb.Name,
	}
}

func (lb *NetworkLoadBalancer) SetLoadBalancerName(name string) {
	lb.LoadBalancerName = aws.LoadBalancerSanitizer.Apply(name)
}

func (l *NlbListener) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      LISTENER_TYPE,
		Namespace: l.Namespace,
		Name:      l.Name,
	}
}

func (tg *NlbTargetGroup) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      TARGET_GROUP_TYPE,
		Namespace: tg.Namespace,
		Name:      tg.Name,
	}
}

func (tg *NlbTargetGroup) SetTargetGroupName(name string) {
	tg.TargetGroupName = aws.TargetGroupSanitizer.Apply(name)
}

// ElbProtocol is the protocol name as spelled by Elastic Load Balancing (`TCP`, `UDP`).
func ElbProtocol(p Protocol) string {
	return strings.ToUpper(string(p))
}
