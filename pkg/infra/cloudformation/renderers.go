package cloudformation

import "github.com/talves/gameservers/pkg/provider/aws/resources"

var renderers = map[string]renderer{
	resources.VPC_TYPE:                     renderVpc,
	resources.SUBNET_TYPE:                  renderSubnet,
	resources.INTERNET_GATEWAY_TYPE:        renderInternetGateway,
	resources.VPC_GATEWAY_ATTACHMENT_TYPE:  renderVpcGatewayAttachment,
	resources.ROUTE_TABLE_TYPE:             renderRouteTable,
	resources.ROUTE_TYPE:                   renderRoute,
	resources.ROUTE_TABLE_ASSOCIATION_TYPE: renderRouteTableAssociation,
	resources.SG_TYPE:                      renderSecurityGroup,
	resources.SG_INGRESS_TYPE:              renderSecurityGroupIngress,
	resources.SG_EGRESS_TYPE:               renderSecurityGroupEgress,
	resources.ECR_REPO_TYPE:                renderEcrRepository,
	resources.EFS_FILE_SYSTEM_TYPE:         renderEfsFileSystem,
	resources.EFS_MOUNT_TARGET_TYPE:        renderEfsMountTarget,
	resources.EFS_ACCESS_POINT_TYPE:        renderEfsAccessPoint,
	resources.LOG_GROUP_TYPE:               renderLogGroup,
	resources.IAM_ROLE_TYPE:                renderIamRole,
	resources.ECS_CLUSTER_TYPE:             renderEcsCluster,
	resources.ECS_TASK_DEFINITION_TYPE:     renderEcsTaskDefinition,
	resources.ECS_SERVICE_TYPE:             renderEcsService,
	resources.LOAD_BALANCER_TYPE:           renderNetworkLoadBalancer,
	resources.LISTENER_TYPE:                renderNlbListener,
	resources.TARGET_GROUP_TYPE:            renderNlbTargetGroup,
	resources.DASHBOARD_TYPE:               renderDashboard,
	resources.NESTED_STACK_TYPE:            renderNestedStack,
}
