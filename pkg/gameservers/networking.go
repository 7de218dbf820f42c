package gameservers

import (
	"fmt"

	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"github.com/talves/gameservers/pkg/stack"
)

const (
	// SUBNET_GROUP is the subnet group the game servers and their file systems are placed in.
	SUBNET_GROUP = "GameServers"

	MINECRAFT_PORT = 25565
	HTTPS_PORT     = 443
)

type (
	// Networking is a VPC with public subnets only. The servers get public IPs so no NAT gateway is needed.
	Networking struct {
		Vpc             *resources.Vpc
		Subnets         []*resources.Subnet
		InternetGateway *resources.InternetGateway
		// SecurityGroup allows game traffic in and HTTPS out.
		SecurityGroup *resources.SecurityGroup
	}

	NetworkingProps struct {
		CidrBlock string
		// MaxAzs is the number of availability zones to spread subnets over.
		MaxAzs     int
		SubnetMask int
	}
)

var defaultNetworkingProps = NetworkingProps{
	CidrBlock:  resources.DEFAULT_VPC_CIDR,
	MaxAzs:     1,
	SubnetMask: 28,
}

// NewNetworking declares the network in `s` under the construct path `id`.
func NewNetworking(s *stack.Stack, id string, props *NetworkingProps) (*Networking, error) {
	p := defaultNetworkingProps
	if props != nil {
		p = *props
	}
	if p.MaxAzs < 1 {
		return nil, fmt.Errorf("networking %s needs at least one availability zone", id)
	}
	masks := make([]int, p.MaxAzs)
	for i := range masks {
		masks[i] = p.SubnetMask
	}
	cidrs, err := resources.AllocateSubnetCidrs(p.CidrBlock, masks)
	if err != nil {
		return nil, fmt.Errorf("networking %s: %w", id, err)
	}

	vpcPath := id + "/VPC"
	n := &Networking{
		Vpc: &resources.Vpc{
			Name:               vpcPath,
			Namespace:          s.Name,
			CidrBlock:          p.CidrBlock,
			EnableDnsHostnames: true,
			EnableDnsSupport:   true,
		},
		InternetGateway: &resources.InternetGateway{Name: vpcPath + "/IGW", Namespace: s.Name},
	}
	attachment := &resources.VpcGatewayAttachment{
		Name:      vpcPath + "/VPCGW",
		Namespace: s.Name,
		Vpc:       n.Vpc,
		Gateway:   n.InternetGateway,
	}
	if err := s.Add(n.Vpc, n.InternetGateway, attachment); err != nil {
		return nil, err
	}

	for i, cidr := range cidrs {
		subnetPath := fmt.Sprintf("%s/%sSubnet%d", vpcPath, SUBNET_GROUP, i+1)
		subnet := &resources.Subnet{
			Name:                  subnetPath,
			Namespace:             s.Name,
			Vpc:                   n.Vpc,
			CidrBlock:             cidr,
			GroupName:             SUBNET_GROUP,
			Type:                  resources.PublicSubnet,
			AvailabilityZoneIndex: i,
			MapPublicIpOnLaunch:   true,
		}
		rt := &resources.RouteTable{Name: subnetPath + "/RouteTable", Namespace: s.Name, Vpc: n.Vpc}
		assoc := &resources.RouteTableAssociation{
			Name:       subnetPath + "/RouteTableAssociation",
			Namespace:  s.Name,
			Subnet:     subnet,
			RouteTable: rt,
		}
		route := &resources.Route{
			Name:                 subnetPath + "/DefaultRoute",
			Namespace:            s.Name,
			RouteTable:           rt,
			DestinationCidrBlock: resources.ALL_IPV4,
			Gateway:              n.InternetGateway,
		}
		if err := s.Add(subnet, rt, assoc, route); err != nil {
			return nil, err
		}
		// the gateway can only be routed to once it is attached
		if err := s.DependsOn(route, attachment); err != nil {
			return nil, err
		}
		n.Subnets = append(n.Subnets, subnet)
	}

	n.SecurityGroup = &resources.SecurityGroup{
		Name:        id + "/ExternalAccess",
		Namespace:   s.Name,
		Description: fmt.Sprintf("Allow inbound traffic on %d", MINECRAFT_PORT),
		Vpc:         n.Vpc,
	}
	n.SecurityGroup.AddIngressRule(resources.ALL_IPV4, resources.UdpPort(MINECRAFT_PORT),
		fmt.Sprintf("from %s:%s", resources.ALL_IPV4, resources.UdpPort(MINECRAFT_PORT)))
	n.SecurityGroup.AddEgressRule(resources.ALL_IPV4, resources.TcpPort(HTTPS_PORT), "Allow outbound HTTPS traffic")
	if err := s.Add(n.SecurityGroup); err != nil {
		return nil, err
	}
	return n, nil
}

// SelectSubnets returns the subnets of the named group.
func (n *Networking) SelectSubnets(groupName string) resources.SubnetSelection {
	return resources.SelectSubnets(n.Subnets, groupName)
}
