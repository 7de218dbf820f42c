package gameservers

import (
	"errors"
	"fmt"
	"time"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"github.com/talves/gameservers/pkg/stack"
)

const (
	MINECRAFT_SERVER_NAME       = "Minecraft"
	MINECRAFT_HEALTH_CHECK_PORT = 8443
	MINECRAFT_METRICS_NAMESPACE = "GameServers/Minecraft"
	MINECRAFT_LOG_PREFIX        = "minecraft"
)

// MinecraftWorlds are the worlds added by Minecraft and the installed mods, graphed per world on the dashboard.
var MinecraftWorlds = []string{
	"Overall:",
	"appliedenergistics2:spatial_storage",
	"compactmachines:compact_world",
	"jamd:mining",
	"javd:void",
	"minecraft:overworld",
	"minecraft:the_end",
	"minecraft:the_nether",
	"mythicbotany:alfheim",
	"rats:ratlantis",
	"twilightforest:skylight_forest",
	"twilightforest:twilightforest",
	"undergarden:undergarden",
	"woot:tartarus",
}

type (
	MinecraftServerProps struct {
		Description    string
		Network        *Networking
		FileSystem     *resources.EfsFileSystem
		Repository     *resources.EcrRepository
		ImageTag       string
		TaskDefinition TaskDefinitionProps
		// EnvironmentFile configures the server image, it is required.
		EnvironmentFile    string
		CreateLoadBalancer bool
		Container          func(*resources.ContainerDefinition)
	}

	// MinecraftFlavor runs the image from the `minecraft` repository, publishing player and tick metrics.
	MinecraftFlavor struct {
		ImageTag string
	}
)

// NewMinecraftServer declares the Minecraft server listening on TCP 25565 with its health check on 8443.
func NewMinecraftServer(app *stack.App, parent *stack.Stack, id string, props MinecraftServerProps) (*Server, error) {
	if props.EnvironmentFile == "" {
		return nil, fmt.Errorf("minecraft server %s requires an environment file", id)
	}
	return NewServer(app, parent, id, ServerProps{
		Description: props.Description,
		Network:     props.Network,
		Image:       ImageProps{Repository: props.Repository, Tag: props.ImageTag},
		Ports: NetworkProps{
			Port:     MINECRAFT_PORT,
			Protocol: resources.ProtocolTCP,
			HealthCheck: &HealthCheckProps{
				Port:     MINECRAFT_HEALTH_CHECK_PORT,
				Protocol: resources.ProtocolTCP,
			},
			CreateLoadBalancer: props.CreateLoadBalancer,
		},
		TaskDefinition:  props.TaskDefinition,
		EnvironmentFile: props.EnvironmentFile,
		Container:       props.Container,
		FileSystem:      props.FileSystem,
	}, MinecraftFlavor{ImageTag: props.ImageTag})
}

func (f MinecraftFlavor) ContainerDefinition(srv *Server, props ServerProps) (*resources.ContainerDefinition, error) {
	if srv.EnvironmentFile == nil {
		return nil, errors.New("minecraft requires an environment file")
	}
	return &resources.ContainerDefinition{
		// the repository is looked up by name so the image does not have to exist for the stack to deploy
		Image:     resources.ImageFromRepositoryName(MINECRAFT_REPOSITORY, f.ImageTag),
		Essential: true,
		HealthCheck: &resources.ContainerHealthCheck{
			Command:     []string{"CMD-SHELL", fmt.Sprintf("curl -f http://localhost:%d", MINECRAFT_HEALTH_CHECK_PORT)},
			StartPeriod: 5 * time.Minute,
		},
		EnvironmentFiles: []*resources.FileAsset{srv.EnvironmentFile},
		Logging:          &resources.AwsLogDriver{StreamPrefix: MINECRAFT_LOG_PREFIX, LogGroup: srv.LogGroup},
	}, nil
}

// TaskRolePolicy lets the server find its own public IP and publish it to Route 53.
func (MinecraftFlavor) TaskRolePolicy(*Server) []resources.StatementEntry {
	return []resources.StatementEntry{
		{
			Effect: resources.EffectAllow,
			Action: []string{
				"ec2:DescribeNetworkInterfaces",
				"ecs:DescribeTasks",
				"route53:ChangeResourceRecordSets",
				"route53:ListHostedZonesByName",
			},
			Resource: resources.AllResources(),
		},
	}
}

func (f MinecraftFlavor) minecraftMetric(srv *Server, name, world string) resources.Metric {
	dims := map[string]construct.Value{"ServerName": srv.Service.ServiceNameValue()}
	if world != "" {
		dims["dimension"] = construct.Literal(world)
	}
	return resources.Metric{Namespace: MINECRAFT_METRICS_NAMESPACE, MetricName: name, Dimensions: dims}
}

func (f MinecraftFlavor) perWorld(srv *Server, name string) []resources.Metric {
	metrics := make([]resources.Metric, len(MinecraftWorlds))
	for i, world := range MinecraftWorlds {
		metrics[i] = f.minecraftMetric(srv, name, world)
	}
	return metrics
}

func (f MinecraftFlavor) Widgets(srv *Server) []*resources.GraphWidget {
	utilization := []resources.Metric{srv.EcsMetric("CPUUtilization"), srv.EcsMetric("MemoryUtilization")}
	return []*resources.GraphWidget{
		{
			Title:      "CPU & Memory VS Player Count",
			Width:      12,
			Height:     6,
			Period:     METRIC_PERIOD,
			Left:       utilization,
			LeftYAxis:  UtilizationAxis(),
			Right:      []resources.Metric{f.minecraftMetric(srv, "PlayerCount", "")},
			RightYAxis: &resources.YAxis{Min: resources.Float(0)},
		},
		{
			Title:      "CPU & Memory Vs Tick Time",
			Width:      12,
			Height:     6,
			Period:     METRIC_PERIOD,
			Left:       utilization,
			LeftYAxis:  UtilizationAxis(),
			Right:      []resources.Metric{f.minecraftMetric(srv, "Tick Time", MinecraftWorlds[0])},
			RightYAxis: &resources.YAxis{Min: resources.Float(0), ShowUnits: true},
		},
		{
			Title:     "TPS by World",
			Width:     12,
			Height:    6,
			Left:      f.perWorld(srv, "TPS"),
			LeftYAxis: &resources.YAxis{Min: resources.Float(0)},
		},
		{
			Title:     "Tick Time by World",
			Width:     12,
			Height:    6,
			Left:      f.perWorld(srv, "Tick Time"),
			LeftYAxis: &resources.YAxis{Min: resources.Float(0), ShowUnits: true},
		},
	}
}
