package resources

import "github.com/talves/gameservers/pkg/construct"

const (
	AWS_PROVIDER = "aws"

	ARN_IAC_VALUE        = "arn"
	ID_IAC_VALUE         = "id"
	NAME_IAC_VALUE       = "name"
	URI_IAC_VALUE        = "uri"
	CIDR_BLOCK_IAC_VALUE = "cidr_block"
	DNS_NAME_IAC_VALUE   = "dns_name"

	ALL_IPV4 = "0.0.0.0/0"
)

type (
	// RemovalPolicy decides what happens to the physical resource when it is removed from the stack
	// or the stack is deleted.
	RemovalPolicy string

	Protocol string
)

const (
	RemovalPolicyDestroy  RemovalPolicy = "destroy"
	RemovalPolicyRetain   RemovalPolicy = "retain"
	RemovalPolicySnapshot RemovalPolicy = "snapshot"

	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
	ProtocolAll  Protocol = "-1"
)

// Arn references the ARN of the resource.
func Arn(r construct.Resource) construct.IaCValue {
	return construct.ValueOf(r, ARN_IAC_VALUE)
}

// Ref references the resource's primary identifier (its id or name depending on the resource type).
func Ref(r construct.Resource) construct.IaCValue {
	return construct.ValueOf(r, ID_IAC_VALUE)
}

func Float(f float64) *float64 {
	return &f
}
