package deploy

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/alitto/pond"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

type UploadResult struct {
	Uploaded int
	Skipped  int
}

// UploadAssets puts every asset in `bucket` under its object key. Objects are named by their content hash so an
// existing object is never uploaded again.
func UploadAssets(ctx context.Context, client S3Client, bucket string, assets []*resources.FileAsset, workers int) (UploadResult, error) {
	var result UploadResult
	if len(assets) == 0 {
		return result, nil
	}
	log := logging.GetLogger(ctx).Named("deploy.assets")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := pond.New(min(workers, len(assets)), len(assets))
	defer pool.StopAndWait()

	var uploaded, skipped atomic.Int32
	group, ctx := pool.GroupContext(ctx)
	for _, asset := range assets {
		asset := asset
		group.Submit(func() error {
			key := asset.ObjectKey()
			field := logging.AssetField(key, asset.SourcePath)

			_, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
			switch {
			case err == nil:
				log.Debug("asset already uploaded", field)
				skipped.Add(1)
				return nil
			case !isNotFound(err):
				return errors.Wrapf(err, "could not check asset %s", key)
			}

			body, err := readAsset(asset)
			if err != nil {
				return err
			}
			_, err = client.PutObject(ctx, &s3.PutObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
				Body:   bytes.NewReader(body),
			})
			if err != nil {
				return errors.Wrapf(err, "could not upload asset %s", key)
			}
			log.Info("uploaded asset", field)
			uploaded.Add(1)
			return nil
		})
	}
	err := group.Wait()
	result.Uploaded, result.Skipped = int(uploaded.Load()), int(skipped.Load())
	return result, err
}

// readAsset reads the whole asset so the body is seekable, which PutObject needs to sign the payload.
func readAsset(asset *resources.FileAsset) ([]byte, error) {
	r, err := asset.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "could not open asset %s", asset.ObjectKey())
	}
	defer r.Close()
	return io.ReadAll(r)
}
