package cloudformation

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

const (
	defaultHealthCheckInterval = 30 * time.Second
	defaultHealthCheckTimeout  = 5 * time.Second
	defaultHealthCheckRetries  = 3
)

func renderIamRole(sc *stackContext, r construct.Resource) (*Resource, error) {
	role := r.(*resources.IamRole)
	if role.AssumedBy == "" {
		return nil, fmt.Errorf("role %s has no principal to assume it", role.Name)
	}
	res := sc.resolver()
	props := map[string]any{
		"RoleName":    role.RoleName,
		"Description": role.Description,
		"AssumeRolePolicyDocument": map[string]any{
			"Version": resources.VERSION,
			"Statement": []any{map[string]any{
				"Effect":    resources.EffectAllow,
				"Principal": map[string]any{"Service": role.AssumedBy},
				"Action":    "sts:AssumeRole",
			}},
		},
	}
	if policy := role.Policy(); policy != nil {
		statements := make([]any, 0, len(policy.Statement))
		for _, st := range policy.Statement {
			statements = append(statements, map[string]any{
				"Effect":   st.Effect,
				"Action":   stringList(st.Action),
				"Resource": res.values(st.Resource),
			})
		}
		props["Policies"] = []any{map[string]any{
			"PolicyName": "DefaultPolicy",
			"PolicyDocument": map[string]any{
				"Version":   policy.Version,
				"Statement": statements,
			},
		}}
	}
	return &Resource{Type: "AWS::IAM::Role", Properties: props}, res.err
}

func renderEcsCluster(sc *stackContext, r construct.Resource) (*Resource, error) {
	cluster := r.(*resources.EcsCluster)
	return &Resource{
		Type:       "AWS::ECS::Cluster",
		Properties: map[string]any{"ClusterName": cluster.ClusterName},
	}, nil
}

func renderEcsTaskDefinition(sc *stackContext, r construct.Resource) (*Resource, error) {
	td := r.(*resources.EcsTaskDefinition)
	if err := td.Validate(); err != nil {
		return nil, err
	}
	res := sc.resolver()

	cpu, memory := td.Cpu, td.MemoryLimitMiB
	if cpu == 0 {
		cpu = resources.DEFAULT_FARGATE_CPU
	}
	if memory == 0 {
		memory = resources.DEFAULT_FARGATE_MEMORY
	}
	networkMode := td.NetworkMode
	if networkMode == "" {
		networkMode = resources.ECS_NETWORK_MODE_AWSVPC
	}
	compatibilities := td.RequiresCompatibilities
	if len(compatibilities) == 0 {
		compatibilities = []string{resources.REQUIRES_COMPATIBILITY_FARGATE}
	}

	containers := make([]any, 0, len(td.Containers))
	for _, c := range td.Containers {
		containers = append(containers, renderContainer(res, c))
	}
	volumes := make([]any, 0, len(td.Volumes))
	for _, v := range td.Volumes {
		vol := map[string]any{"Name": v.Name}
		if v.FileSystem != nil {
			vol["EFSVolumeConfiguration"] = map[string]any{
				"FilesystemId": res.ref(v.FileSystem, resources.ID_IAC_VALUE),
			}
		}
		volumes = append(volumes, vol)
	}

	props := map[string]any{
		"Family":                  td.Family,
		"Cpu":                     strconv.Itoa(cpu),
		"Memory":                  strconv.Itoa(memory),
		"NetworkMode":             networkMode,
		"RequiresCompatibilities": stringList(compatibilities),
		"ExecutionRoleArn":        res.ref(td.ExecutionRole, resources.ARN_IAC_VALUE),
		"TaskRoleArn":             res.ref(td.TaskRole, resources.ARN_IAC_VALUE),
		"ContainerDefinitions":    containers,
		"Volumes":                 volumes,
	}
	return &Resource{Type: "AWS::ECS::TaskDefinition", Properties: props}, res.err
}

func renderContainer(res *resolver, c *resources.ContainerDefinition) map[string]any {
	m := map[string]any{
		"Name":      c.ContainerName,
		"Image":     res.value(c.Image.Image),
		"Essential": c.Essential,
		"Command":   stringList(c.Command),
	}

	if len(c.Environment) > 0 {
		names := make([]string, 0, len(c.Environment))
		for name := range c.Environment {
			names = append(names, name)
		}
		slices.Sort(names)
		env := make([]any, 0, len(names))
		for _, name := range names {
			env = append(env, map[string]any{"Name": name, "Value": c.Environment[name]})
		}
		m["Environment"] = env
	}

	files := make([]any, 0, len(c.EnvironmentFiles))
	for _, f := range c.EnvironmentFiles {
		files = append(files, map[string]any{"Type": "s3", "Value": res.value(f.ObjectArn())})
	}
	m["EnvironmentFiles"] = files

	ports := make([]any, 0, len(c.PortMappings))
	for _, pm := range c.PortMappings {
		hostPort := pm.HostPort
		if hostPort == 0 {
			hostPort = pm.ContainerPort
		}
		ports = append(ports, map[string]any{
			"ContainerPort": pm.ContainerPort,
			"HostPort":      hostPort,
			"Protocol":      string(pm.Protocol),
		})
	}
	m["PortMappings"] = ports

	if hc := c.HealthCheck; hc != nil {
		interval, timeout, retries := hc.Interval, hc.Timeout, hc.Retries
		if interval == 0 {
			interval = defaultHealthCheckInterval
		}
		if timeout == 0 {
			timeout = defaultHealthCheckTimeout
		}
		if retries == 0 {
			retries = defaultHealthCheckRetries
		}
		check := map[string]any{
			"Command":  stringList(hc.Command),
			"Interval": seconds(interval),
			"Timeout":  seconds(timeout),
			"Retries":  retries,
		}
		if hc.StartPeriod > 0 {
			check["StartPeriod"] = seconds(hc.StartPeriod)
		}
		m["HealthCheck"] = check
	}

	if lg := c.Logging; lg != nil {
		m["LogConfiguration"] = map[string]any{
			"LogDriver": "awslogs",
			"Options": map[string]any{
				"awslogs-group":         res.ref(lg.LogGroup, resources.NAME_IAC_VALUE),
				"awslogs-stream-prefix": lg.StreamPrefix,
				"awslogs-region":        Ref(PSEUDO_REGION),
			},
		}
	}

	mounts := make([]any, 0, len(c.MountPoints))
	for _, mp := range c.MountPoints {
		mounts = append(mounts, map[string]any{
			"SourceVolume":  mp.SourceVolume,
			"ContainerPath": mp.ContainerPath,
			"ReadOnly":      mp.ReadOnly,
		})
	}
	m["MountPoints"] = mounts

	if c.StopTimeout > 0 {
		m["StopTimeout"] = seconds(c.StopTimeout)
	}
	return m
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}

func renderEcsService(sc *stackContext, r construct.Resource) (*Resource, error) {
	svc := r.(*resources.EcsService)
	res := sc.resolver()

	launchType := svc.LaunchType
	if launchType == "" {
		launchType = resources.LAUNCH_TYPE_FARGATE
	}
	assignPublicIp := "DISABLED"
	if svc.AssignPublicIp {
		assignPublicIp = "ENABLED"
	}
	deployment := map[string]any{
		"MaximumPercent":        svc.MaxHealthyPercent,
		"MinimumHealthyPercent": svc.MinHealthyPercent,
	}
	if cb := svc.DeploymentCircuitBreaker; cb != nil {
		deployment["DeploymentCircuitBreaker"] = map[string]any{
			"Enable":   cb.Enable,
			"Rollback": cb.Rollback,
		}
	}
	lbs := make([]any, 0, len(svc.LoadBalancers))
	for _, lb := range svc.LoadBalancers {
		lbs = append(lbs, map[string]any{
			"TargetGroupArn": res.ref(lb.TargetGroup, resources.ARN_IAC_VALUE),
			"ContainerName":  lb.ContainerName,
			"ContainerPort":  lb.ContainerPort,
		})
	}

	props := map[string]any{
		"ServiceName":             svc.ServiceName,
		"Cluster":                 res.ref(svc.Cluster, resources.ID_IAC_VALUE),
		"TaskDefinition":          res.ref(svc.TaskDefinition, resources.ARN_IAC_VALUE),
		"LaunchType":              launchType,
		"PlatformVersion":         svc.PlatformVersion,
		"DesiredCount":            svc.DesiredCount,
		"DeploymentConfiguration": deployment,
		"NetworkConfiguration": map[string]any{
			"AwsvpcConfiguration": map[string]any{
				"AssignPublicIp": assignPublicIp,
				"SecurityGroups": refList(res, svc.SecurityGroups, resources.ID_IAC_VALUE),
				"Subnets":        refList(res, svc.Subnets, resources.ID_IAC_VALUE),
			},
		},
		"LoadBalancers": lbs,
	}
	return &Resource{Type: "AWS::ECS::Service", Properties: props}, res.err
}
