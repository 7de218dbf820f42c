package cloudformation

import (
	"strconv"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

func renderEcrRepository(sc *stackContext, r construct.Resource) (*Resource, error) {
	repo := r.(*resources.EcrRepository)
	tr := &Resource{
		Type: "AWS::ECR::Repository",
		Properties: map[string]any{
			"RepositoryName": repo.RepositoryName,
			"ImageScanningConfiguration": map[string]any{
				"ScanOnPush": repo.ScanOnPush,
			},
		},
	}
	if repo.RemovalPolicy == resources.RemovalPolicyDestroy {
		// a repository with images can only be deleted when it is emptied first
		tr.Properties["EmptyOnDelete"] = true
	}
	removalPolicy(tr, repo.RemovalPolicy, false)
	return tr, nil
}

func renderEfsFileSystem(sc *stackContext, r construct.Resource) (*Resource, error) {
	fs := r.(*resources.EfsFileSystem)
	backup := "DISABLED"
	if fs.EnableAutomaticBackups {
		backup = "ENABLED"
	}
	props := map[string]any{
		"Encrypted":       fs.Encrypted,
		"BackupPolicy":    map[string]any{"Status": backup},
		"PerformanceMode": fs.PerformanceMode,
		"ThroughputMode":  fs.ThroughputMode,
	}
	if fs.LifecyclePolicy != "" {
		props["LifecyclePolicies"] = []any{map[string]any{"TransitionToIA": string(fs.LifecyclePolicy)}}
	}
	if fs.FileSystemName != "" {
		props["FileSystemTags"] = []any{map[string]any{"Key": "Name", "Value": fs.FileSystemName}}
	}
	tr := &Resource{Type: "AWS::EFS::FileSystem", Properties: props}
	removalPolicy(tr, fs.RemovalPolicy, false)
	return tr, nil
}

func renderEfsMountTarget(sc *stackContext, r construct.Resource) (*Resource, error) {
	mt := r.(*resources.EfsMountTarget)
	res := sc.resolver()
	props := map[string]any{
		"FileSystemId":   res.ref(mt.FileSystem, resources.ID_IAC_VALUE),
		"SubnetId":       res.ref(mt.Subnet, resources.ID_IAC_VALUE),
		"SecurityGroups": refList(res, mt.SecurityGroups, resources.ID_IAC_VALUE),
	}
	return &Resource{Type: "AWS::EFS::MountTarget", Properties: props}, res.err
}

func renderEfsAccessPoint(sc *stackContext, r construct.Resource) (*Resource, error) {
	ap := r.(*resources.EfsAccessPoint)
	res := sc.resolver()
	props := map[string]any{
		"FileSystemId": res.ref(ap.FileSystem, resources.ID_IAC_VALUE),
	}
	if ap.PosixUser != nil {
		props["PosixUser"] = map[string]any{
			"Uid": strconv.Itoa(ap.PosixUser.Uid),
			"Gid": strconv.Itoa(ap.PosixUser.Gid),
		}
	}
	if ap.RootDirectory != nil {
		root := map[string]any{"Path": ap.RootDirectory.Path}
		if ci := ap.RootDirectory.CreationInfo; ci != nil {
			root["CreationInfo"] = map[string]any{
				"OwnerUid":    strconv.Itoa(ci.OwnerUid),
				"OwnerGid":    strconv.Itoa(ci.OwnerGid),
				"Permissions": ci.Permissions,
			}
		}
		props["RootDirectory"] = root
	}
	return &Resource{Type: "AWS::EFS::AccessPoint", Properties: props}, res.err
}

func renderLogGroup(sc *stackContext, r construct.Resource) (*Resource, error) {
	lg := r.(*resources.LogGroup)
	res := sc.resolver()
	props := map[string]any{
		"LogGroupName": res.value(lg.LogGroupName),
	}
	if lg.RetentionInDays > 0 {
		props["RetentionInDays"] = lg.RetentionInDays
	}
	tr := &Resource{Type: "AWS::Logs::LogGroup", Properties: props}
	removalPolicy(tr, lg.RemovalPolicy, false)
	return tr, res.err
}
