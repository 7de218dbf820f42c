package cloudformation

import "github.com/talves/gameservers/pkg/provider/aws/resources"

// refAttribute marks a property which renders as `Ref` rather than `Fn::GetAtt`.
const refAttribute = ""

// attributes maps, per resource type, each referenceable property to the CloudFormation attribute holding it.
var attributes = map[string]map[string]string{
	resources.VPC_TYPE: {
		resources.ID_IAC_VALUE:         refAttribute,
		resources.CIDR_BLOCK_IAC_VALUE: "CidrBlock",
	},
	resources.SUBNET_TYPE: {
		resources.ID_IAC_VALUE:         refAttribute,
		resources.CIDR_BLOCK_IAC_VALUE: "CidrBlock",
	},
	resources.INTERNET_GATEWAY_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.VPC_GATEWAY_ATTACHMENT_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.ROUTE_TABLE_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.ROUTE_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.ROUTE_TABLE_ASSOCIATION_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.SG_TYPE: {
		resources.ID_IAC_VALUE: "GroupId",
	},
	resources.SG_INGRESS_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.SG_EGRESS_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.ECR_REPO_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.NAME_IAC_VALUE: refAttribute,
		resources.ARN_IAC_VALUE:  "Arn",
		resources.URI_IAC_VALUE:  "RepositoryUri",
	},
	resources.EFS_FILE_SYSTEM_TYPE: {
		resources.ID_IAC_VALUE:  refAttribute,
		resources.ARN_IAC_VALUE: "Arn",
	},
	resources.EFS_MOUNT_TARGET_TYPE: {
		resources.ID_IAC_VALUE: refAttribute,
	},
	resources.EFS_ACCESS_POINT_TYPE: {
		resources.ID_IAC_VALUE:  refAttribute,
		resources.ARN_IAC_VALUE: "Arn",
	},
	resources.LOG_GROUP_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.NAME_IAC_VALUE: refAttribute,
		resources.ARN_IAC_VALUE:  "Arn",
	},
	resources.IAM_ROLE_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.NAME_IAC_VALUE: refAttribute,
		resources.ARN_IAC_VALUE:  "Arn",
	},
	resources.ECS_CLUSTER_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.NAME_IAC_VALUE: refAttribute,
		resources.ARN_IAC_VALUE:  "Arn",
	},
	resources.ECS_TASK_DEFINITION_TYPE: {
		resources.ID_IAC_VALUE:  refAttribute,
		resources.ARN_IAC_VALUE: refAttribute,
	},
	resources.ECS_SERVICE_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.ARN_IAC_VALUE:  refAttribute,
		resources.NAME_IAC_VALUE: "Name",
	},
	resources.LOAD_BALANCER_TYPE: {
		resources.ID_IAC_VALUE:       refAttribute,
		resources.ARN_IAC_VALUE:      refAttribute,
		resources.NAME_IAC_VALUE:     "LoadBalancerName",
		resources.DNS_NAME_IAC_VALUE: "DNSName",
	},
	resources.LISTENER_TYPE: {
		resources.ID_IAC_VALUE:  refAttribute,
		resources.ARN_IAC_VALUE: refAttribute,
	},
	resources.TARGET_GROUP_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.ARN_IAC_VALUE:  refAttribute,
		resources.NAME_IAC_VALUE: "TargetGroupName",
	},
	resources.DASHBOARD_TYPE: {
		resources.ID_IAC_VALUE:   refAttribute,
		resources.NAME_IAC_VALUE: refAttribute,
	},
	resources.NESTED_STACK_TYPE: {
		resources.ID_IAC_VALUE:  refAttribute,
		resources.ARN_IAC_VALUE: refAttribute,
	},
}
