package resources

import (
	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/sanitization/aws"
)

const ECR_REPO_TYPE = "ecr_repo"

type EcrRepository struct {
	Name           string
	Namespace      string
	RepositoryName string
	ScanOnPush     bool
	RemovalPolicy  RemovalPolicy
}

func (repo *EcrRepository) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      ECR_REPO_TYPE,
		Namespace: repo.Namespace,
		Name:      repo.Name,
	}
}

func (repo *EcrRepository) SetRepositoryName(name string) {
	repo.RepositoryName = aws.EcrRepositoryName(name)
}

// RepositoryUri references the repository's URI, `<account>.dkr.ecr.<region>.amazonaws.com/<name>`.
func (repo *EcrRepository) RepositoryUri() construct.IaCValue {
	return construct.ValueOf(repo, URI_IAC_VALUE)
}
