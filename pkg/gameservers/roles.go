package gameservers

import (
	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

type TaskExecutionRoleProps struct {
	LogGroup *resources.LogGroup
	// Repository limits image pulls to the repository, nil allows pulling from any repository.
	Repository *resources.EcrRepository
}

// NewTaskRole is the role the server's containers run as. It can write metrics and read secrets.
func NewTaskRole(namespace, id string) *resources.IamRole {
	role := &resources.IamRole{
		Name:        "TaskRole",
		Namespace:   namespace,
		Description: "Write CloudWatch metrics",
		AssumedBy:   resources.ECS_TASKS_PRINCIPAL,
	}
	role.SetRoleName(id + "TaskRole")
	role.AddToPolicy(
		resources.StatementEntry{
			Effect:   resources.EffectAllow,
			Action:   []string{"cloudwatch:PutMetricData"},
			Resource: resources.AllResources(),
		},
		resources.StatementEntry{
			Effect:   resources.EffectAllow,
			Action:   []string{"kms:Decrypt", "secretsmanager:GetSecretValue", "ssm:GetParameters"},
			Resource: resources.AllResources(),
		},
	)
	return role
}

// NewTaskExecutionRole is the role ECS uses to start the server: pull the image and write its logs.
func NewTaskExecutionRole(namespace, id string, props TaskExecutionRoleProps) *resources.IamRole {
	role := &resources.IamRole{
		Name:        "TaskExecutionRole",
		Namespace:   namespace,
		Description: "Read from ECR and write to CloudWatch logs",
		AssumedBy:   resources.ECS_TASKS_PRINCIPAL,
	}
	role.SetRoleName(id + "TaskExecutionRole")

	repository := resources.AllResources()
	if props.Repository != nil {
		repository = []construct.Value{resources.Arn(props.Repository)}
	}
	role.AddToPolicy(
		resources.StatementEntry{
			Effect:   resources.EffectAllow,
			Action:   []string{"logs:CreateLogStream", "logs:PutLogEvents"},
			Resource: []construct.Value{resources.Arn(props.LogGroup)},
		},
		resources.StatementEntry{
			Effect:   resources.EffectAllow,
			Action:   []string{"ecr:BatchCheckLayerAvailability", "ecr:GetDownloadUrlForLayer", "ecr:BatchGetImage"},
			Resource: repository,
		},
		resources.StatementEntry{
			Effect:   resources.EffectAllow,
			Action:   []string{"ecr:GetAuthorizationToken"},
			Resource: resources.AllResources(),
		},
	)
	return role
}
