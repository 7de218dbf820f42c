package gameservers

import (
	"fmt"

	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"github.com/talves/gameservers/pkg/stack"
)

const (
	BASE_STACK_NAME      = "GameServersBaseStack"
	MINECRAFT_REPOSITORY = "minecraft"
)

// BaseStack holds what outlives a server: the image repository, the network and the world storage.
type BaseStack struct {
	*stack.Stack

	Repository  *resources.EcrRepository
	Network     *Networking
	FileSystem  *resources.EfsFileSystem
	AccessPoint *resources.EfsAccessPoint
}

func NewBaseStack(app *stack.App, env stack.Environment) (*BaseStack, error) {
	s, err := app.NewStack(BASE_STACK_NAME, "Shared resources of the game servers", env)
	if err != nil {
		return nil, err
	}
	base := &BaseStack{Stack: s}

	base.Repository = &resources.EcrRepository{
		Name:          "MinecraftRepository",
		Namespace:     s.Name,
		ScanOnPush:    true,
		RemovalPolicy: resources.RemovalPolicyDestroy,
	}
	base.Repository.SetRepositoryName(MINECRAFT_REPOSITORY)
	if err := s.Add(base.Repository); err != nil {
		return nil, err
	}

	if base.Network, err = NewNetworking(s, "MinecraftNetwork", nil); err != nil {
		return nil, err
	}
	if err := base.addEfsVolume("Minecraft"); err != nil {
		return nil, err
	}

	s.AddOutput("RepositoryUri", "ECR repository URI", base.Repository.RepositoryUri(), "")
	return base, nil
}

// addEfsVolume declares an encrypted file system reachable from the game server subnets. Access to it is granted
// per server through its security group.
func (base *BaseStack) addEfsVolume(name string) error {
	s := base.Stack
	sg := &resources.SecurityGroup{
		Name:        name + "EfsSecurityGroup",
		Namespace:   s.Name,
		Description: fmt.Sprintf("Allow access to the %s EFS volume", name),
		Vpc:         base.Network.Vpc,
	}
	sg.SetGroupName(name + " EFS")

	base.FileSystem = &resources.EfsFileSystem{
		Name:                   name,
		Namespace:              s.Name,
		FileSystemName:         name,
		Vpc:                    base.Network.Vpc,
		SecurityGroup:          sg,
		Encrypted:              true,
		EnableAutomaticBackups: true,
		LifecyclePolicy:        resources.EfsToIaAfter30Days,
		RemovalPolicy:          resources.RemovalPolicySnapshot,
	}
	if err := s.Add(sg, base.FileSystem); err != nil {
		return err
	}

	for i, subnet := range base.Network.SelectSubnets(SUBNET_GROUP) {
		mt := &resources.EfsMountTarget{
			Name:           fmt.Sprintf("%s/EfsMountTarget%d", name, i+1),
			Namespace:      s.Name,
			FileSystem:     base.FileSystem,
			Subnet:         subnet,
			SecurityGroups: []*resources.SecurityGroup{sg},
		}
		if err := s.Add(mt); err != nil {
			return err
		}
	}

	base.AccessPoint = &resources.EfsAccessPoint{
		Name:       fmt.Sprintf("%s/%sAccessPoint", name, name),
		Namespace:  s.Name,
		FileSystem: base.FileSystem,
	}
	return s.Add(base.AccessPoint)
}
