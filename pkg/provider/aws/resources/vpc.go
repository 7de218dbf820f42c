package resources

import (
	"fmt"
	"net/netip"

	"github.com/talves/gameservers/pkg/construct"
)

const (
	VPC_TYPE                     = "vpc"
	SUBNET_TYPE                  = "subnet"
	INTERNET_GATEWAY_TYPE        = "internet_gateway"
	VPC_GATEWAY_ATTACHMENT_TYPE  = "vpc_gateway_attachment"
	ROUTE_TABLE_TYPE             = "route_table"
	ROUTE_TYPE                   = "route"
	ROUTE_TABLE_ASSOCIATION_TYPE = "route_table_association"

	DEFAULT_VPC_CIDR = "10.0.0.0/16"

	PublicSubnet   SubnetType = "public"
	PrivateSubnet  SubnetType = "private"
	IsolatedSubnet SubnetType = "isolated"
)

type (
	SubnetType string

	Vpc struct {
		Name               string
		Namespace          string
		CidrBlock          string
		EnableDnsHostnames bool
		EnableDnsSupport   bool
	}

	Subnet struct {
		Name      string
		Namespace string
		Vpc       *Vpc
		CidrBlock string
		// GroupName is the name of the subnet group (`GameServers`) which is used to select subnets.
		GroupName string
		Type      SubnetType
		// AvailabilityZoneIndex selects the zone from the region's zone list.
		AvailabilityZoneIndex int
		MapPublicIpOnLaunch   bool
	}

	InternetGateway struct {
		Name      string
		Namespace string
	}

	VpcGatewayAttachment struct {
		Name      string
		Namespace string
		Vpc       *Vpc
		Gateway   *InternetGateway
	}

	RouteTable struct {
		Name      string
		Namespace string
		Vpc       *Vpc
	}

	Route struct {
		Name                 string
		Namespace            string
		RouteTable           *RouteTable
		DestinationCidrBlock string
		Gateway              *InternetGateway
	}

	RouteTableAssociation struct {
		Name       string
		Namespace  string
		Subnet     *Subnet
		RouteTable *RouteTable
	}
)

func (vpc *Vpc) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      VPC_TYPE,
		Namespace: vpc.Namespace,
		Name:      vpc.Name,
	}
}

func (subnet *Subnet) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      SUBNET_TYPE,
		Namespace: subnet.Namespace,
		Name:      subnet.Name,
	}
}

func (igw *InternetGateway) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      INTERNET_GATEWAY_TYPE,
		Namespace: igw.Namespace,
		Name:      igw.Name,
	}
}

func (att *VpcGatewayAttachment) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      VPC_GATEWAY_ATTACHMENT_TYPE,
		Namespace: att.Namespace,
		Name:      att.Name,
	}
}

func (rt *RouteTable) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ROUTE_TABLE_TYPE,
		Namespace: rt.Namespace,
		Name:      rt.Name,
	}
}

func (r *Route) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ROUTE_TYPE,
		Namespace: r.Namespace,
		Name:      r.Name,
	}
}

func (rta *RouteTableAssociation) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ROUTE_TABLE_ASSOCIATION_TYPE,
		Namespace: rta.Namespace,
		Name:      rta.Name,
	}
}

// SubnetSelection is the set of subnets a resource is placed in.
type SubnetSelection []*Subnet

// SelectSubnets returns the subnets belonging to the named subnet group.
func SelectSubnets(subnets []*Subnet, groupName string) SubnetSelection {
	var selection SubnetSelection
	for _, s := range subnets {
		if s.GroupName == groupName {
			selection = append(selection, s)
		}
	}
	return selection
}

// AllocateSubnetCidrs carves consecutive blocks with the given prefix lengths out of `vpcCidr`,
// each block aligned to its own size, in the order requested.
func AllocateSubnetCidrs(vpcCidr string, masks []int) ([]string, error) {
	prefix, err := netip.ParsePrefix(vpcCidr)
	if err != nil {
		return nil, fmt.Errorf("invalid vpc cidr %q: %w", vpcCidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("vpc cidr %q must be IPv4", vpcCidr)
	}
	prefix = prefix.Masked()
	base := ipv4ToUint(prefix.Addr())
	end := base + uint64(1)<<(32-prefix.Bits())

	next := base
	cidrs := make([]string, 0, len(masks))
	for _, mask := range masks {
		if mask < prefix.Bits() || mask > 28 {
			return nil, fmt.Errorf("subnet mask /%d must be between /%d and /28", mask, prefix.Bits())
		}
		size := uint64(1) << (32 - mask)
		if rem := next % size; rem != 0 {
			next += size - rem
		}
		if next+size > end {
			return nil, fmt.Errorf("not enough space in %s for a /%d subnet", vpcCidr, mask)
		}
		cidrs = append(cidrs, netip.PrefixFrom(uintToIpv4(next), mask).String())
		next += size
	}
	return cidrs, nil
}

func ipv4ToUint(addr netip.Addr) uint64 {
	b := addr.As4()
	return uint64(b[0])<<24 | uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3])
}

func uintToIpv4(v uint64) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
