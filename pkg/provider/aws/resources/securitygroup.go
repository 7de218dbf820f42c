package resources

import (
	"fmt"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/sanitization/aws"
)

const (
	SG_TYPE         = "security_group"
	SG_INGRESS_TYPE = "security_group_ingress"
	SG_EGRESS_TYPE  = "security_group_egress"
)

var sgSanitizer = aws.SecurityGroupSanitizer

type (
	SecurityGroup struct {
		Name        string
		Namespace   string
		GroupName   string
		Description string
		Vpc         *Vpc
		// AllowAllOutbound adds an egress rule for all traffic. When it is false only the explicit
		// egress rules are allowed.
		AllowAllOutbound bool
		IngressRules     []SecurityGroupRule
		EgressRules      []SecurityGroupRule
	}

	SecurityGroupRule struct {
		Description string
		Protocol    Protocol
		FromPort    int
		ToPort      int
		CidrIp      string
	}

	// Port is a protocol and port range that a rule applies to.
	Port struct {
		Protocol Protocol
		FromPort int
		ToPort   int
	}

	// SecurityGroupIngress allows traffic into Group from members of SourceGroup.
	SecurityGroupIngress struct {
		Name        string
		Namespace   string
		Group       *SecurityGroup
		SourceGroup *SecurityGroup
		Port        Port
		Description string
	}

	// SecurityGroupEgress allows traffic out of Group to members of DestinationGroup.
	SecurityGroupEgress struct {
		Name             string
		Namespace        string
		Group            *SecurityGroup
		DestinationGroup *SecurityGroup
		Port             Port
		Description      string
	}
)

func TcpPort(port int) Port {
	return Port{Protocol: ProtocolTCP, FromPort: port, ToPort: port}
}

func UdpPort(port int) Port {
	return Port{Protocol: ProtocolUDP, FromPort: port, ToPort: port}
}

// PortFor returns the single port for the given protocol.
func PortFor(protocol Protocol, port int) Port {
	return Port{Protocol: protocol, FromPort: port, ToPort: port}
}

func (p Port) String() string {
	if p.FromPort == p.ToPort {
		return fmt.Sprintf("%s %d", p.Protocol, p.FromPort)
	}
	return fmt.Sprintf("%s %d-%d", p.Protocol, p.FromPort, p.ToPort)
}

func (sg *SecurityGroup) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      SG_TYPE,
		Namespace: sg.Namespace,
		Name:      sg.Name,
	}
}

// SetGroupName sets the physical group name, sanitized to what EC2 accepts.
func (sg *SecurityGroup) SetGroupName(name string) {
	sg.GroupName = sgSanitizer.Apply(name)
}

func (sg *SecurityGroup) AddIngressRule(cidr string, port Port, description string) {
	sg.IngressRules = append(sg.IngressRules, SecurityGroupRule{
		Description: description,
		Protocol:    port.Protocol,
		FromPort:    port.FromPort,
		ToPort:      port.ToPort,
		CidrIp:      cidr,
	})
}

// AddEgressRule adds an egress rule. It is a no-op when the group already allows all outbound traffic.
func (sg *SecurityGroup) AddEgressRule(cidr string, port Port, description string) {
	if sg.AllowAllOutbound {
		return
	}
	sg.EgressRules = append(sg.EgressRules, SecurityGroupRule{
		Description: description,
		Protocol:    port.Protocol,
		FromPort:    port.FromPort,
		ToPort:      port.ToPort,
		CidrIp:      cidr,
	})
}

func (in *SecurityGroupIngress) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      SG_INGRESS_TYPE,
		Namespace: in.Namespace,
		Name:      in.Name,
	}
}

func (out *SecurityGroupEgress) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      SG_EGRESS_TYPE,
		Namespace: out.Namespace,
		Name:      out.Name,
	}
}

// AllowTo permits `from` to connect to `to` on the port: an egress rule on `from` and the matching ingress
// rule on `to`. Both are declared in `namespace`, which is the stack that asked for the connection and may
// differ from the stacks that own the groups.
func AllowTo(namespace string, from, to *SecurityGroup, port Port) (*SecurityGroupEgress, *SecurityGroupIngress) {
	egress := &SecurityGroupEgress{
		Name:             fmt.Sprintf("%s/to %s:%d", from.Name, to.Name, port.FromPort),
		Namespace:        namespace,
		Group:            from,
		DestinationGroup: to,
		Port:             port,
		Description:      fmt.Sprintf("to %s:%s", to.Name, port),
	}
	ingress := &SecurityGroupIngress{
		Name:        fmt.Sprintf("%s/from %s:%d", to.Name, from.Name, port.FromPort),
		Namespace:   namespace,
		Group:       to,
		SourceGroup: from,
		Port:        port,
		Description: fmt.Sprintf("from %s:%s", from.Name, port),
	}
	return egress, ingress
}
