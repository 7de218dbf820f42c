package resources

import (
	"fmt"
	"time"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/sanitization/aws"
)

const (
	ECS_TASK_DEFINITION_TYPE = "ecs_task_definition"
	ECS_SERVICE_TYPE         = "ecs_service"
	ECS_CLUSTER_TYPE         = "ecs_cluster"

	ECS_NETWORK_MODE_AWSVPC = "awsvpc"

	LAUNCH_TYPE_FARGATE            = "FARGATE"
	REQUIRES_COMPATIBILITY_FARGATE = "FARGATE"
	FARGATE_PLATFORM_VERSION_1_4   = "1.4.0"

	DEFAULT_IMAGE_TAG = "latest"

	// DEFAULT_FARGATE_CPU and DEFAULT_FARGATE_MEMORY are the task size when none is given.
	DEFAULT_FARGATE_CPU    = 256
	DEFAULT_FARGATE_MEMORY = 512
)

type (
	EcsCluster struct {
		Name        string
		Namespace   string
		ClusterName string
	}

	EcsTaskDefinition struct {
		Name                    string
		Namespace               string
		Family                  string
		Cpu                     int
		MemoryLimitMiB          int
		ExecutionRole           *IamRole
		TaskRole                *IamRole
		NetworkMode             string
		RequiresCompatibilities []string
		Containers              []*ContainerDefinition
		Volumes                 []Volume
	}

	ContainerImage struct {
		Image construct.Value
		// Repository is set when the image is pulled from a repository declared in this app.
		Repository *EcrRepository
	}

	ContainerDefinition struct {
		ContainerName    string
		Image            ContainerImage
		Essential        bool
		Command          []string
		Environment      map[string]string
		EnvironmentFiles []*FileAsset
		PortMappings     []PortMapping
		HealthCheck      *ContainerHealthCheck
		Logging          *AwsLogDriver
		MountPoints      []MountPoint
		StopTimeout      time.Duration
	}

	PortMapping struct {
		ContainerPort int
		HostPort      int
		Protocol      Protocol
	}

	ContainerHealthCheck struct {
		Command     []string
		Interval    time.Duration
		Timeout     time.Duration
		StartPeriod time.Duration
		Retries     int
	}

	AwsLogDriver struct {
		StreamPrefix string
		LogGroup     *LogGroup
	}

	MountPoint struct {
		SourceVolume  string
		ContainerPath string
		ReadOnly      bool
	}

	Volume struct {
		Name       string
		FileSystem *EfsFileSystem
	}

	EcsService struct {
		Name                     string
		Namespace                string
		ServiceName              string
		Cluster                  *EcsCluster
		TaskDefinition           *EcsTaskDefinition
		LaunchType               string
		PlatformVersion          string
		AssignPublicIp           bool
		SecurityGroups           []*SecurityGroup
		Subnets                  []*Subnet
		DesiredCount             int
		MaxHealthyPercent        int
		MinHealthyPercent        int
		DeploymentCircuitBreaker *EcsServiceDeploymentCircuitBreaker
		LoadBalancers            []EcsServiceLoadBalancer
	}

	EcsServiceDeploymentCircuitBreaker struct {
		Enable   bool
		Rollback bool
	}

	EcsServiceLoadBalancer struct {
		TargetGroup   *NlbTargetGroup
		ContainerName string
		ContainerPort int
	}
)

func (c *EcsCluster) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ECS_CLUSTER_TYPE,
		Namespace: c.Namespace,
		Name:      c.Name,
	}
}

func (c *EcsCluster) SetClusterName(name string) {
	c.ClusterName = aws.EcsClusterSanitizer.Apply(name)
}

// ClusterNameValue references the name of the cluster.
func (c *EcsCluster) ClusterNameValue() construct.IaCValue {
	return construct.ValueOf(c, NAME_IAC_VALUE)
}

func (td *EcsTaskDefinition) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ECS_TASK_DEFINITION_TYPE,
		Namespace: td.Namespace,
		Name:      td.Name,
	}
}

func (td *EcsTaskDefinition) SetFamily(family string) {
	td.Family = aws.EcsTaskDefinitionSanitizer.Apply(family)
}

// AddContainer adds the container to the task definition and returns it for further configuration.
func (td *EcsTaskDefinition) AddContainer(c *ContainerDefinition) *ContainerDefinition {
	td.Containers = append(td.Containers, c)
	return c
}

func (td *EcsTaskDefinition) AddVolume(v Volume) {
	td.Volumes = append(td.Volumes, v)
}

func (td *EcsTaskDefinition) Volume(name string) (Volume, bool) {
	for _, v := range td.Volumes {
		if v.Name == name {
			return v, true
		}
	}
	return Volume{}, false
}

// Container returns the container with the given name.
func (td *EcsTaskDefinition) Container(name string) *ContainerDefinition {
	for _, c := range td.Containers {
		if c.ContainerName == name {
			return c
		}
	}
	return nil
}

// Validate checks the container mounts only reference declared volumes and that each container
// port is mapped once.
func (td *EcsTaskDefinition) Validate() error {
	for _, c := range td.Containers {
		for _, mp := range c.MountPoints {
			if _, ok := td.Volume(mp.SourceVolume); !ok {
				return fmt.Errorf("container %s mounts volume %q which is not declared in task definition %s",
					c.ContainerName, mp.SourceVolume, td.Family)
			}
		}
		seen := make(map[PortMapping]struct{}, len(c.PortMappings))
		for _, pm := range c.PortMappings {
			if _, ok := seen[pm]; ok {
				return fmt.Errorf("container %s maps port %d/%s more than once", c.ContainerName, pm.ContainerPort, pm.Protocol)
			}
			seen[pm] = struct{}{}
		}
	}
	return nil
}

func (c *ContainerDefinition) AddPortMappings(mappings ...PortMapping) {
	c.PortMappings = append(c.PortMappings, mappings...)
}

func (c *ContainerDefinition) AddMountPoints(points ...MountPoint) {
	c.MountPoints = append(c.MountPoints, points...)
}

// ImageFromRegistry uses an image from a public registry such as Docker Hub.
func ImageFromRegistry(name string) ContainerImage {
	return ContainerImage{Image: construct.Literal(name)}
}

// ImageFromEcrRepository uses the tagged image from a repository declared in this app.
func ImageFromEcrRepository(repo *EcrRepository, tag string) ContainerImage {
	if tag == "" {
		tag = DEFAULT_IMAGE_TAG
	}
	return ContainerImage{
		Image: construct.Format("${Uri}:"+tag, map[string]construct.IaCValue{
			"Uri": repo.RepositoryUri(),
		}),
		Repository: repo,
	}
}

// ImageFromRepositoryName uses the tagged image from the named repository in the deployment's account and region.
func ImageFromRepositoryName(name string, tag string) ContainerImage {
	if tag == "" {
		tag = DEFAULT_IMAGE_TAG
	}
	return ContainerImage{
		Image: construct.Format(
			fmt.Sprintf("${AWS::AccountId}.dkr.ecr.${AWS::Region}.${AWS::URLSuffix}/%s:%s", aws.EcrRepositoryName(name), tag),
			nil,
		),
	}
}

func (s *EcsService) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ECS_SERVICE_TYPE,
		Namespace: s.Namespace,
		Name:      s.Name,
	}
}

func (s *EcsService) SetServiceName(name string) {
	s.ServiceName = aws.EcsServiceSanitizer.Apply(name)
}

// ServiceNameValue references the name of the service.
func (s *EcsService) ServiceNameValue() construct.IaCValue {
	return construct.ValueOf(s, NAME_IAC_VALUE)
}
