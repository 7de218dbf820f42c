package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/pkg/errors"
	"github.com/talves/gameservers/pkg/logging"
	"go.uber.org/zap"
)

//go:generate mockgen -source=./images.go --destination=./images_mock_test.go --package=deploy

type (
	EcrClient interface {
		DescribeImages(ctx context.Context, params *ecr.DescribeImagesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error)
	}

	// ImageCheck is an image a stack's service runs, which must be pushed before the service can start.
	ImageCheck struct {
		Stack      string
		Repository string
		Tag        string
	}
)

// CheckImage reports whether the image is in its repository. A missing image or repository is not an error:
// the stack still deploys, but its service will not become stable until the image is pushed.
func CheckImage(ctx context.Context, client EcrClient, check ImageCheck) (bool, error) {
	log := logging.GetLogger(ctx).Named("deploy").With(
		logging.StackField(check.Stack),
		zap.String("image", check.Repository+":"+check.Tag),
	)
	_, err := client.DescribeImages(ctx, &ecr.DescribeImagesInput{
		RepositoryName: aws.String(check.Repository),
		ImageIds:       []types.ImageIdentifier{{ImageTag: aws.String(check.Tag)}},
	})
	switch errorCode(err) {
	case "":
		if err != nil {
			return false, errors.Wrapf(err, "could not describe image %s:%s", check.Repository, check.Tag)
		}
		return true, nil
	case "ImageNotFoundException":
		log.Warn("image has not been pushed, the service will not start until it is")
		return false, nil
	case "RepositoryNotFoundException":
		log.Warn("repository does not exist yet, push the image once the base stack is deployed")
		return false, nil
	default:
		return false, errors.Wrapf(err, "could not describe image %s:%s", check.Repository, check.Tag)
	}
}
