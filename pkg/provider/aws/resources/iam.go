package resources

import (
	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/sanitization/aws"
)

const (
	IAM_ROLE_TYPE = "iam_role"
	VERSION       = "2012-10-17"

	ECS_TASKS_PRINCIPAL = "ecs-tasks.amazonaws.com"

	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

var roleSanitizer = aws.IamRoleSanitizer

type (
	IamRole struct {
		Name        string
		Namespace   string
		RoleName    string
		Description string
		// AssumedBy is the service principal allowed to assume the role.
		AssumedBy string
		// Statements make up the role's default inline policy.
		Statements []StatementEntry
	}

	StatementEntry struct {
		Effect   string
		Action   []string
		Resource []construct.Value
	}

	PolicyDocument struct {
		Version   string
		Statement []StatementEntry
	}
)

func (role *IamRole) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      IAM_ROLE_TYPE,
		Namespace: role.Namespace,
		Name:      role.Name,
	}
}

func (role *IamRole) SetRoleName(name string) {
	role.RoleName = roleSanitizer.Apply(name)
}

// AddToPolicy appends the statement to the role's default policy.
func (role *IamRole) AddToPolicy(statements ...StatementEntry) {
	role.Statements = append(role.Statements, statements...)
}

func (role *IamRole) Policy() *PolicyDocument {
	if len(role.Statements) == 0 {
		return nil
	}
	return &PolicyDocument{Version: VERSION, Statement: role.Statements}
}

// AllResources is the `*` resource.
func AllResources() []construct.Value {
	return []construct.Value{construct.Literal("*")}
}
