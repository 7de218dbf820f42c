package cloudformation

import (
	"fmt"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

// disallowAllEgress is the placeholder rule of a security group without any egress: an ICMP rule that can never
// match, because without rules EC2 adds an allow-all egress rule.
func disallowAllEgress() map[string]any {
	return map[string]any{
		"CidrIp":      "255.255.255.255/32",
		"Description": "Disallow all traffic",
		"IpProtocol":  "icmp",
		"FromPort":    252,
		"ToPort":      86,
	}
}

func (sc *stackContext) nameTags(id construct.ResourceId, extra ...map[string]any) []any {
	tags := []any{map[string]any{"Key": "Name", "Value": sc.def.Name + "/" + id.Name}}
	for _, t := range extra {
		tags = append(tags, t)
	}
	return tags
}

func renderVpc(sc *stackContext, r construct.Resource) (*Resource, error) {
	vpc := r.(*resources.Vpc)
	cidr := vpc.CidrBlock
	if cidr == "" {
		cidr = resources.DEFAULT_VPC_CIDR
	}
	return &Resource{
		Type: "AWS::EC2::VPC",
		Properties: map[string]any{
			"CidrBlock":          cidr,
			"EnableDnsHostnames": vpc.EnableDnsHostnames,
			"EnableDnsSupport":   vpc.EnableDnsSupport,
			"InstanceTenancy":    "default",
			"Tags":               sc.nameTags(vpc.Id()),
		},
	}, nil
}

func renderSubnet(sc *stackContext, r construct.Resource) (*Resource, error) {
	subnet := r.(*resources.Subnet)
	res := sc.resolver()
	props := map[string]any{
		"VpcId":               res.ref(subnet.Vpc, resources.ID_IAC_VALUE),
		"CidrBlock":           subnet.CidrBlock,
		"AvailabilityZone":    Select(subnet.AvailabilityZoneIndex, GetAZs()),
		"MapPublicIpOnLaunch": subnet.MapPublicIpOnLaunch,
		"Tags": sc.nameTags(subnet.Id(),
			map[string]any{"Key": "gameservers:subnet-name", "Value": subnet.GroupName},
			map[string]any{"Key": "gameservers:subnet-type", "Value": string(subnet.Type)},
		),
	}
	return &Resource{Type: "AWS::EC2::Subnet", Properties: props}, res.err
}

func renderInternetGateway(sc *stackContext, r construct.Resource) (*Resource, error) {
	igw := r.(*resources.InternetGateway)
	return &Resource{
		Type:       "AWS::EC2::InternetGateway",
		Properties: map[string]any{"Tags": sc.nameTags(igw.Id())},
	}, nil
}

func renderVpcGatewayAttachment(sc *stackContext, r construct.Resource) (*Resource, error) {
	att := r.(*resources.VpcGatewayAttachment)
	res := sc.resolver()
	props := map[string]any{
		"VpcId":             res.ref(att.Vpc, resources.ID_IAC_VALUE),
		"InternetGatewayId": res.ref(att.Gateway, resources.ID_IAC_VALUE),
	}
	return &Resource{Type: "AWS::EC2::VPCGatewayAttachment", Properties: props}, res.err
}

func renderRouteTable(sc *stackContext, r construct.Resource) (*Resource, error) {
	rt := r.(*resources.RouteTable)
	res := sc.resolver()
	props := map[string]any{
		"VpcId": res.ref(rt.Vpc, resources.ID_IAC_VALUE),
		"Tags":  sc.nameTags(rt.Id()),
	}
	return &Resource{Type: "AWS::EC2::RouteTable", Properties: props}, res.err
}

func renderRoute(sc *stackContext, r construct.Resource) (*Resource, error) {
	route := r.(*resources.Route)
	res := sc.resolver()
	props := map[string]any{
		"RouteTableId":         res.ref(route.RouteTable, resources.ID_IAC_VALUE),
		"DestinationCidrBlock": route.DestinationCidrBlock,
		"GatewayId":            res.ref(route.Gateway, resources.ID_IAC_VALUE),
	}
	return &Resource{Type: "AWS::EC2::Route", Properties: props}, res.err
}

func renderRouteTableAssociation(sc *stackContext, r construct.Resource) (*Resource, error) {
	rta := r.(*resources.RouteTableAssociation)
	res := sc.resolver()
	props := map[string]any{
		"RouteTableId": res.ref(rta.RouteTable, resources.ID_IAC_VALUE),
		"SubnetId":     res.ref(rta.Subnet, resources.ID_IAC_VALUE),
	}
	return &Resource{Type: "AWS::EC2::SubnetRouteTableAssociation", Properties: props}, res.err
}

func renderSecurityGroup(sc *stackContext, r construct.Resource) (*Resource, error) {
	sg := r.(*resources.SecurityGroup)
	res := sc.resolver()

	description := sg.Description
	if description == "" {
		description = sc.def.Name + "/" + sg.Name
	}
	ingress := make([]any, 0, len(sg.IngressRules))
	for _, rule := range sg.IngressRules {
		ingress = append(ingress, sgRule(rule))
	}
	var egress []any
	switch {
	case sg.AllowAllOutbound:
		egress = []any{map[string]any{
			"CidrIp":      resources.ALL_IPV4,
			"Description": "Allow all outbound traffic by default",
			"IpProtocol":  string(resources.ProtocolAll),
		}}
	case len(sg.EgressRules) == 0:
		egress = []any{disallowAllEgress()}
	default:
		for _, rule := range sg.EgressRules {
			egress = append(egress, sgRule(rule))
		}
	}
	props := map[string]any{
		"GroupDescription":     description,
		"GroupName":            sg.GroupName,
		"VpcId":                res.ref(sg.Vpc, resources.ID_IAC_VALUE),
		"SecurityGroupIngress": ingress,
		"SecurityGroupEgress":  egress,
	}
	return &Resource{Type: "AWS::EC2::SecurityGroup", Properties: props}, res.err
}

func sgRule(rule resources.SecurityGroupRule) map[string]any {
	m := map[string]any{
		"CidrIp":      rule.CidrIp,
		"Description": rule.Description,
		"IpProtocol":  string(rule.Protocol),
	}
	if rule.Protocol != resources.ProtocolAll {
		m["FromPort"] = rule.FromPort
		m["ToPort"] = rule.ToPort
	}
	return m
}

func renderSecurityGroupIngress(sc *stackContext, r construct.Resource) (*Resource, error) {
	in := r.(*resources.SecurityGroupIngress)
	if in.Group == nil || in.SourceGroup == nil {
		return nil, fmt.Errorf("ingress %s needs both a group and a source group", in.Name)
	}
	res := sc.resolver()
	props := map[string]any{
		"GroupId":               res.ref(in.Group, resources.ID_IAC_VALUE),
		"SourceSecurityGroupId": res.ref(in.SourceGroup, resources.ID_IAC_VALUE),
		"IpProtocol":            string(in.Port.Protocol),
		"FromPort":              in.Port.FromPort,
		"ToPort":                in.Port.ToPort,
		"Description":           in.Description,
	}
	return &Resource{Type: "AWS::EC2::SecurityGroupIngress", Properties: props}, res.err
}

func renderSecurityGroupEgress(sc *stackContext, r construct.Resource) (*Resource, error) {
	out := r.(*resources.SecurityGroupEgress)
	if out.Group == nil || out.DestinationGroup == nil {
		return nil, fmt.Errorf("egress %s needs both a group and a destination group", out.Name)
	}
	res := sc.resolver()
	props := map[string]any{
		"GroupId":                    res.ref(out.Group, resources.ID_IAC_VALUE),
		"DestinationSecurityGroupId": res.ref(out.DestinationGroup, resources.ID_IAC_VALUE),
		"IpProtocol":                 string(out.Port.Protocol),
		"FromPort":                   out.Port.FromPort,
		"ToPort":                     out.Port.ToPort,
		"Description":                out.Description,
	}
	return &Resource{Type: "AWS::EC2::SecurityGroupEgress", Properties: props}, res.err
}
