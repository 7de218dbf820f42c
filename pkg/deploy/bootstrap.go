package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/talves/gameservers/pkg/logging"
	"go.uber.org/zap"
)

// Bootstrap makes sure the asset bucket exists and blocks public access to it. It reports whether the bucket
// was created.
func Bootstrap(ctx context.Context, client S3Client, bucket, region string) (bool, error) {
	log := logging.GetLogger(ctx).Named("deploy").With(zap.String("bucket", bucket))

	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	switch {
	case err == nil:
		log.Info("asset bucket already exists")
		return false, nil
	case !isNotFound(err):
		return false, errors.Wrapf(err, "could not check bucket %s", bucket)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 is the default location and is rejected as a constraint
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := client.CreateBucket(ctx, input); err != nil {
		return false, errors.Wrapf(err, "could not create bucket %s", bucket)
	}

	_, err = client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	if err != nil {
		return true, errors.Wrapf(err, "could not block public access to bucket %s", bucket)
	}
	log.Info("created asset bucket", zap.String("region", region))
	return true, nil
}
