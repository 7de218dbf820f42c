package gameservers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"github.com/talves/gameservers/pkg/stack"
)

const (
	ECS_NAMESPACE = "AWS/ECS"

	METRIC_PERIOD = time.Minute
)

type (
	ImageProps struct {
		// Repository is a repository declared in the app. It takes precedence over Registry.
		Repository *resources.EcrRepository
		// Registry is an image name in a public registry, for example `itzg/minecraft-server`.
		Registry string
		Tag      string
	}

	HealthCheckProps struct {
		Port     int
		Protocol resources.Protocol
	}

	NetworkProps struct {
		Port     int
		Protocol resources.Protocol
		// HealthCheck is a second port opened for health probes.
		HealthCheck        *HealthCheckProps
		CreateLoadBalancer bool
	}

	TaskDefinitionProps struct {
		Cpu            int
		MemoryLimitMiB int
	}

	ServerProps struct {
		Description string
		Network     *Networking
		Image       ImageProps
		Ports       NetworkProps
		// TaskDefinition sizes the task, zero values use the Fargate minimum.
		TaskDefinition TaskDefinitionProps
		// EnvironmentFile is a local file of `KEY=value` lines uploaded as an asset and loaded into the container.
		EnvironmentFile string
		// Container is applied to the container definition after the flavor built it.
		Container  func(*resources.ContainerDefinition)
		FileSystem *resources.EfsFileSystem
	}

	// ServerFlavor customizes a server for a particular game.
	ServerFlavor interface {
		ContainerDefinition(srv *Server, props ServerProps) (*resources.ContainerDefinition, error)
		TaskRolePolicy(srv *Server) []resources.StatementEntry
		Widgets(srv *Server) []*resources.GraphWidget
	}

	// GenericFlavor runs the configured image with CPU and memory graphs.
	GenericFlavor struct{}

	// Server is a game server running as a single Fargate task in its own nested stack.
	Server struct {
		*stack.Stack
		ServerName string

		Network           *Networking
		Subnets           resources.SubnetSelection
		SecurityGroup     *resources.SecurityGroup
		LogGroup          *resources.LogGroup
		TaskRole          *resources.IamRole
		TaskExecutionRole *resources.IamRole
		Cluster           *resources.EcsCluster
		TaskDefinition    *resources.EcsTaskDefinition
		Container         *resources.ContainerDefinition
		Service           *resources.EcsService
		LoadBalancer      *resources.NetworkLoadBalancer
		Listener          *resources.NlbListener
		TargetGroup       *resources.NlbTargetGroup
		Dashboard         *resources.Dashboard
		EnvironmentFile   *resources.FileAsset
	}
)

const MAX_PORT = 65535

// Validate checks that the ports are in range and that the health check has a port of its own.
func (p NetworkProps) Validate() error {
	var errs error
	if p.Port < 1 || p.Port > MAX_PORT {
		errs = errors.Join(errs, fmt.Errorf("port %d is not between 1 and %d", p.Port, MAX_PORT))
	}
	if hc := p.HealthCheck; hc != nil {
		if hc.Port < 1 || hc.Port > MAX_PORT {
			errs = errors.Join(errs, fmt.Errorf("health check port %d is not between 1 and %d", hc.Port, MAX_PORT))
		} else if hc.Port == p.Port {
			errs = errors.Join(errs, fmt.Errorf("health check port %d is the game port", hc.Port))
		}
	}
	return errs
}

// NewServer declares the server `id` as a nested stack of `parent`. The id is also the physical name of the
// server's cluster, service and dashboard.
func NewServer(app *stack.App, parent *stack.Stack, id string, props ServerProps, flavor ServerFlavor) (*Server, error) {
	if flavor == nil {
		flavor = GenericFlavor{}
	}
	if props.Network == nil {
		return nil, fmt.Errorf("server %s requires a network", id)
	}
	if props.Ports.Port == 0 {
		return nil, fmt.Errorf("server %s requires a port", id)
	}
	if err := props.Ports.Validate(); err != nil {
		return nil, fmt.Errorf("server %s: %w", id, err)
	}
	if props.FileSystem != nil && props.FileSystem.SecurityGroup == nil {
		return nil, fmt.Errorf("file system %s of server %s has no security group", props.FileSystem.Id(), id)
	}

	s, err := app.NewNestedStack(parent, id, props.Description)
	if err != nil {
		return nil, err
	}
	srv := &Server{
		Stack:      s,
		ServerName: id,
		Network:    props.Network,
		Subnets:    props.Network.SelectSubnets(SUBNET_GROUP),
	}
	if len(srv.Subnets) == 0 {
		return nil, fmt.Errorf("server %s: network has no %s subnets", id, SUBNET_GROUP)
	}
	if props.EnvironmentFile != "" {
		if srv.EnvironmentFile, err = s.NewFileAsset(props.EnvironmentFile); err != nil {
			return nil, fmt.Errorf("server %s: %w", id, err)
		}
	}

	srv.SecurityGroup = srv.newSecurityGroup(props)
	srv.LogGroup = &resources.LogGroup{
		Name:            "LogGroup",
		Namespace:       s.Name,
		LogGroupName:    construct.Format("${AWS::StackName}", nil),
		RetentionInDays: resources.RetentionOneWeek,
		RemovalPolicy:   resources.RemovalPolicyDestroy,
	}
	srv.TaskRole = NewTaskRole(s.Name, id)
	srv.TaskExecutionRole = NewTaskExecutionRole(s.Name, id, TaskExecutionRoleProps{
		LogGroup:   srv.LogGroup,
		Repository: props.Image.Repository,
	})

	srv.Cluster = &resources.EcsCluster{Name: "Cluster", Namespace: s.Name}
	srv.Cluster.SetClusterName(id)

	srv.TaskDefinition = &resources.EcsTaskDefinition{
		Name:                    "TaskDefinition",
		Namespace:               s.Name,
		Cpu:                     props.TaskDefinition.Cpu,
		MemoryLimitMiB:          props.TaskDefinition.MemoryLimitMiB,
		ExecutionRole:           srv.TaskExecutionRole,
		TaskRole:                srv.TaskRole,
		NetworkMode:             resources.ECS_NETWORK_MODE_AWSVPC,
		RequiresCompatibilities: []string{resources.REQUIRES_COMPATIBILITY_FARGATE},
	}
	srv.TaskDefinition.SetFamily(id)

	container, err := flavor.ContainerDefinition(srv, props)
	if err != nil {
		return nil, fmt.Errorf("server %s: %w", id, err)
	}
	if container.ContainerName == "" {
		container.ContainerName = id
	}
	if props.Container != nil {
		props.Container(container)
	}
	srv.Container = srv.TaskDefinition.AddContainer(container)
	srv.Container.AddPortMappings(resources.PortMapping{
		ContainerPort: props.Ports.Port,
		HostPort:      props.Ports.Port,
		Protocol:      props.Ports.Protocol,
	})
	if props.FileSystem != nil {
		srv.TaskDefinition.AddVolume(resources.Volume{Name: id, FileSystem: props.FileSystem})
	}
	if hc := props.Ports.HealthCheck; hc != nil {
		srv.Container.AddPortMappings(resources.PortMapping{
			ContainerPort: hc.Port,
			HostPort:      hc.Port,
			Protocol:      hc.Protocol,
		})
	}
	// a mount point needs a volume to mount
	if _, ok := srv.TaskDefinition.Volume(id); ok {
		srv.Container.AddMountPoints(resources.MountPoint{
			SourceVolume:  id,
			ContainerPath: "/mnt/" + strings.ToLower(id),
		})
	}
	for _, file := range srv.Container.EnvironmentFiles {
		srv.TaskExecutionRole.AddToPolicy(environmentFileAccess(file)...)
	}
	srv.TaskRole.AddToPolicy(flavor.TaskRolePolicy(srv)...)

	srv.Service = &resources.EcsService{
		Name:            "FargateService",
		Namespace:       s.Name,
		Cluster:         srv.Cluster,
		TaskDefinition:  srv.TaskDefinition,
		LaunchType:      resources.LAUNCH_TYPE_FARGATE,
		PlatformVersion: resources.FARGATE_PLATFORM_VERSION_1_4,
		AssignPublicIp:  true,
		SecurityGroups:  []*resources.SecurityGroup{srv.SecurityGroup},
		Subnets:         srv.Subnets,
		DesiredCount:    1,
		// a second task would run a second copy of the world, so the old task stops before the new one starts
		MaxHealthyPercent:        100,
		MinHealthyPercent:        0,
		DeploymentCircuitBreaker: &resources.EcsServiceDeploymentCircuitBreaker{Enable: true, Rollback: true},
	}
	srv.Service.SetServiceName(id)
	if props.Ports.CreateLoadBalancer {
		srv.newLoadBalancer(props)
	}

	srv.Dashboard = &resources.Dashboard{Name: "Dashboard", Namespace: s.Name}
	srv.Dashboard.SetDashboardName(id)
	srv.Dashboard.AddWidgets(flavor.Widgets(srv)...)

	if err := srv.declare(); err != nil {
		return nil, fmt.Errorf("server %s: %w", id, err)
	}
	return srv, nil
}

func (srv *Server) newSecurityGroup(props ServerProps) *resources.SecurityGroup {
	sg := &resources.SecurityGroup{
		Name:        "SecurityGroup",
		Namespace:   srv.Name,
		Description: fmt.Sprintf("%s Security Group", srv.ServerName),
		Vpc:         srv.Network.Vpc,
	}
	sg.SetGroupName(srv.ServerName)
	sg.AddEgressRule(resources.ALL_IPV4, resources.TcpPort(HTTPS_PORT), "Allow outbound HTTPS traffic")

	port := resources.TcpPort(props.Ports.Port)
	if props.Ports.Protocol == resources.ProtocolUDP {
		port = resources.UdpPort(props.Ports.Port)
	}
	sg.AddIngressRule(resources.ALL_IPV4, port, fmt.Sprintf("Ingress on port %d for %s", props.Ports.Port, srv.ServerName))
	if hc := props.Ports.HealthCheck; hc != nil {
		sg.AddIngressRule(resources.ALL_IPV4, resources.TcpPort(hc.Port),
			fmt.Sprintf("Ingress on port %d for %s Health Check", hc.Port, srv.ServerName))
	}
	return sg
}

func (srv *Server) newLoadBalancer(props ServerProps) {
	srv.LoadBalancer = &resources.NetworkLoadBalancer{
		Name:      "NLB",
		Namespace: srv.Name,
		Scheme:    resources.LB_SCHEME_INTERNET_FACING,
		Subnets:   srv.Subnets,
	}
	srv.LoadBalancer.SetLoadBalancerName(srv.ServerName)

	srv.TargetGroup = &resources.NlbTargetGroup{
		Name:       "NLB/Listener/ECSTargetGroup",
		Namespace:  srv.Name,
		Port:       props.Ports.Port,
		Protocol:   props.Ports.Protocol,
		TargetType: resources.TARGET_TYPE_IP,
		Vpc:        srv.Network.Vpc,
	}
	srv.TargetGroup.SetTargetGroupName(srv.ServerName)

	srv.Listener = &resources.NlbListener{
		Name:         "NLB/Listener",
		Namespace:    srv.Name,
		LoadBalancer: srv.LoadBalancer,
		Port:         props.Ports.Port,
		Protocol:     props.Ports.Protocol,
		TargetGroup:  srv.TargetGroup,
	}
	srv.Service.LoadBalancers = append(srv.Service.LoadBalancers, resources.EcsServiceLoadBalancer{
		TargetGroup:   srv.TargetGroup,
		ContainerName: srv.Container.ContainerName,
		ContainerPort: props.Ports.Port,
	})
}

// declare adds the resources to the stack, each after the resources it references.
func (srv *Server) declare() error {
	s := srv.Stack
	var errs error
	add := func(rs ...construct.Resource) {
		errs = errors.Join(errs, s.Add(rs...))
	}

	add(srv.SecurityGroup)
	if vol, ok := srv.TaskDefinition.Volume(srv.ServerName); ok {
		egress, ingress := resources.AllowTo(s.Name, srv.SecurityGroup, vol.FileSystem.SecurityGroup, resources.TcpPort(resources.NFS_PORT))
		add(egress, ingress)
	}
	add(srv.LogGroup, srv.TaskRole, srv.TaskExecutionRole, srv.Cluster, srv.TaskDefinition)
	if srv.LoadBalancer != nil {
		add(srv.TargetGroup, srv.LoadBalancer, srv.Listener)
	}
	add(srv.Service, srv.Dashboard)
	if errs != nil {
		return errs
	}
	if srv.Listener != nil {
		// the target group must be attached to a load balancer before the service registers with it
		return s.DependsOn(srv.Service, srv.Listener)
	}
	return nil
}

// environmentFileAccess lets ECS read the environment file from the asset bucket.
func environmentFileAccess(file *resources.FileAsset) []resources.StatementEntry {
	return []resources.StatementEntry{
		{
			Effect:   resources.EffectAllow,
			Action:   []string{"s3:GetObject"},
			Resource: []construct.Value{file.ObjectArn()},
		},
		{
			Effect:   resources.EffectAllow,
			Action:   []string{"s3:GetBucketLocation"},
			Resource: []construct.Value{file.BucketArn()},
		},
	}
}

// ContainerImage returns the image the props point at.
func (p ImageProps) ContainerImage() resources.ContainerImage {
	if p.Repository != nil {
		return resources.ImageFromEcrRepository(p.Repository, p.Tag)
	}
	return resources.ImageFromRegistry(p.Registry)
}

// EcsMetric is a metric of the server's ECS service.
func (srv *Server) EcsMetric(name string) resources.Metric {
	return resources.Metric{
		Namespace:  ECS_NAMESPACE,
		MetricName: name,
		Dimensions: map[string]construct.Value{
			"ServiceName": srv.Service.ServiceNameValue(),
			"ClusterName": srv.Cluster.ClusterNameValue(),
		},
	}
}

// UtilizationAxis is the axis CPU and memory utilization are plotted on.
func UtilizationAxis() *resources.YAxis {
	return &resources.YAxis{Min: resources.Float(0), Max: resources.Float(100), ShowUnits: true}
}

func (GenericFlavor) ContainerDefinition(srv *Server, props ServerProps) (*resources.ContainerDefinition, error) {
	if props.Image.Repository == nil && props.Image.Registry == "" {
		return nil, errors.New("no container image")
	}
	c := &resources.ContainerDefinition{
		ContainerName: srv.ServerName,
		Image:         props.Image.ContainerImage(),
		Essential:     true,
		Logging:       &resources.AwsLogDriver{StreamPrefix: srv.ServerName, LogGroup: srv.LogGroup},
	}
	if srv.EnvironmentFile != nil {
		c.EnvironmentFiles = append(c.EnvironmentFiles, srv.EnvironmentFile)
	}
	return c, nil
}

func (GenericFlavor) TaskRolePolicy(*Server) []resources.StatementEntry {
	return nil
}

func (GenericFlavor) Widgets(srv *Server) []*resources.GraphWidget {
	return []*resources.GraphWidget{
		{
			Title:     "CPU & Memory",
			Width:     12,
			Height:    6,
			Period:    METRIC_PERIOD,
			Left:      []resources.Metric{srv.EcsMetric("CPUUtilization"), srv.EcsMetric("MemoryUtilization")},
			LeftYAxis: UtilizationAxis(),
		},
	}
}
