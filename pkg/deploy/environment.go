package deploy

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pkg/errors"
)

// ResolveAccount returns `account`, or the account of the caller when it is empty.
func ResolveAccount(ctx context.Context, client StsClient, account string) (string, error) {
	if account != "" {
		return account, nil
	}
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", errors.Wrap(err, "could not get caller identity")
	}
	return aws.ToString(out.Account), nil
}

// BucketName expands the pseudo parameters of an asset bucket format the way CloudFormation does.
func BucketName(format, account, region string) string {
	return strings.NewReplacer(
		"${AWS::AccountId}", account,
		"${AWS::Region}", region,
		"${AWS::Partition}", partition(region),
	).Replace(format)
}

func partition(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return "aws-cn"
	case strings.HasPrefix(region, "us-gov-"):
		return "aws-us-gov"
	default:
		return "aws"
	}
}
