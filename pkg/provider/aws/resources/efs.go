package resources

import "github.com/talves/gameservers/pkg/construct"

const (
	EFS_FILE_SYSTEM_TYPE  = "efs_file_system"
	EFS_MOUNT_TARGET_TYPE = "efs_mount_target"
	EFS_ACCESS_POINT_TYPE = "efs_access_point"

	// NFS_PORT is the port mount targets listen on.
	NFS_PORT = 2049
)

type (
	EfsToIaPolicy string

	EfsFileSystem struct {
		Name           string
		Namespace      string
		FileSystemName string
		Vpc            *Vpc
		SecurityGroup  *SecurityGroup
		Encrypted      bool
		// EnableAutomaticBackups turns on the AWS Backup default plan for the file system.
		EnableAutomaticBackups bool
		// LifecyclePolicy moves files not accessed for the period to the infrequent access storage class.
		LifecyclePolicy EfsToIaPolicy
		PerformanceMode string
		ThroughputMode  string
		RemovalPolicy   RemovalPolicy
	}

	EfsMountTarget struct {
		Name           string
		Namespace      string
		FileSystem     *EfsFileSystem
		Subnet         *Subnet
		SecurityGroups []*SecurityGroup
	}

	EfsPosixUser struct {
		Uid int
		Gid int
	}

	EfsRootDirectoryCreationInfo struct {
		OwnerGid    int
		OwnerUid    int
		Permissions string
	}

	EfsRootDirectory struct {
		Path         string
		CreationInfo *EfsRootDirectoryCreationInfo
	}

	EfsAccessPoint struct {
		Name          string
		Namespace     string
		FileSystem    *EfsFileSystem
		PosixUser     *EfsPosixUser
		RootDirectory *EfsRootDirectory
	}
)

var (
	EfsToIaAfter1Day   = EfsToIaPolicy("AFTER_1_DAY")
	EfsToIaAfter7Days  = EfsToIaPolicy("AFTER_7_DAYS")
	EfsToIaAfter14Days = EfsToIaPolicy("AFTER_14_DAYS")
	EfsToIaAfter30Days = EfsToIaPolicy("AFTER_30_DAYS")
	EfsToIaAfter60Days = EfsToIaPolicy("AFTER_60_DAYS")
	EfsToIaAfter90Days = EfsToIaPolicy("AFTER_90_DAYS")
)

func (efs *EfsFileSystem) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      EFS_FILE_SYSTEM_TYPE,
		Namespace: efs.Namespace,
		Name:      efs.Name,
	}
}

func (emt *EfsMountTarget) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      EFS_MOUNT_TARGET_TYPE,
		Namespace: emt.Namespace,
		Name:      emt.Name,
	}
}

func (eap *EfsAccessPoint) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      EFS_ACCESS_POINT_TYPE,
		Namespace: eap.Namespace,
		Name:      eap.Name,
	}
}
