package resources

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/talves/gameservers/pkg/construct"
)

// DEFAULT_ASSET_BUCKET is the bucket (created by `bootstrap`) that holds file assets. The placeholders are resolved
// by CloudFormation and, at deploy time, by the deployer from the caller identity.
const DEFAULT_ASSET_BUCKET = "gameservers-assets-${AWS::AccountId}-${AWS::Region}"

type (
	AssetPackaging string

	// FileAsset is a local file which is uploaded to the asset bucket before the stack that uses it is deployed.
	// Its object key is derived from the content hash so changing the file produces a new object.
	FileAsset struct {
		// SourcePath is where the file is read from during upload. It may be empty when Content is set.
		SourcePath string
		Content    []byte
		Hash       string
		Extension  string
		Packaging  AssetPackaging
		// BucketFormat is the bucket name, possibly containing pseudo parameter placeholders.
		BucketFormat string
	}
)

const (
	PackagingFile     AssetPackaging = "file"
	PackagingTemplate AssetPackaging = "template"
)

// NewFileAsset hashes the file at `path`.
func NewFileAsset(path string, bucketFormat string) (*FileAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open asset %s: %w", path, err)
	}
	defer f.Close()

	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return nil, fmt.Errorf("could not hash asset %s: %w", path, err)
	}
	return &FileAsset{
		SourcePath:   path,
		Hash:         hex.EncodeToString(sum.Sum(nil)),
		Extension:    filepath.Ext(path),
		Packaging:    PackagingFile,
		BucketFormat: bucketOrDefault(bucketFormat),
	}, nil
}

// NewContentAsset creates an asset from in-memory content, such as a synthesized nested stack template.
func NewContentAsset(content []byte, extension string, packaging AssetPackaging, bucketFormat string) *FileAsset {
	sum := sha256.Sum256(content)
	return &FileAsset{
		Content:      content,
		Hash:         hex.EncodeToString(sum[:]),
		Extension:    extension,
		Packaging:    packaging,
		BucketFormat: bucketOrDefault(bucketFormat),
	}
}

func bucketOrDefault(bucket string) string {
	if bucket == "" {
		return DEFAULT_ASSET_BUCKET
	}
	return bucket
}

func (a *FileAsset) ObjectKey() string {
	return a.Hash + a.Extension
}

func (a *FileAsset) Bucket() construct.FormattedValue {
	return construct.Format(a.BucketFormat, nil)
}

// ObjectArn is the ARN of the uploaded object.
func (a *FileAsset) ObjectArn() construct.FormattedValue {
	return construct.Format(fmt.Sprintf("arn:${AWS::Partition}:s3:::%s/%s", a.BucketFormat, a.ObjectKey()), nil)
}

// BucketArn is the ARN of the asset bucket.
func (a *FileAsset) BucketArn() construct.FormattedValue {
	return construct.Format(fmt.Sprintf("arn:${AWS::Partition}:s3:::%s", a.BucketFormat), nil)
}

// HttpUrl is the virtual path URL of the object, as accepted by `TemplateURL`.
func (a *FileAsset) HttpUrl() construct.FormattedValue {
	return construct.Format(fmt.Sprintf("https://s3.${AWS::Region}.${AWS::URLSuffix}/%s/%s", a.BucketFormat, a.ObjectKey()), nil)
}

// Open returns the content of the asset.
func (a *FileAsset) Open() (io.ReadCloser, error) {
	if a.Content != nil {
		return io.NopCloser(bytes.NewReader(a.Content)), nil
	}
	return os.Open(a.SourcePath)
}
