package deploy

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Server simulates the bucket and object calls of S3 for tests.
type s3Server struct {
	mu sync.Mutex

	buckets       map[string]map[string][]byte
	locations     map[string]types.BucketLocationConstraint
	accessBlocks  map[string]*types.PublicAccessBlockConfiguration
	produceDenied bool
	puts          int
}

func newS3Server() *s3Server {
	return &s3Server{
		buckets:      make(map[string]map[string][]byte),
		locations:    make(map[string]types.BucketLocationConstraint),
		accessBlocks: make(map[string]*types.PublicAccessBlockConfiguration),
	}
}

func (s *s3Server) object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket][key]
	return b, ok
}

func (s *s3Server) denied() error {
	if s.produceDenied {
		return apiError("Forbidden", "Forbidden")
	}
	return nil
}

func (s *s3Server) HeadBucket(ctx context.Context, input *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.denied(); err != nil {
		return nil, err
	}
	if _, ok := s.buckets[aws.ToString(input.Bucket)]; !ok {
		return nil, apiError("NotFound", "Not Found")
	}
	return &s3.HeadBucketOutput{}, nil
}

func (s *s3Server) CreateBucket(ctx context.Context, input *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := aws.ToString(input.Bucket)
	if _, ok := s.buckets[name]; ok {
		return nil, apiError("BucketAlreadyOwnedByYou", fmt.Sprintf("bucket %s exists", name))
	}
	s.buckets[name] = make(map[string][]byte)
	if input.CreateBucketConfiguration != nil {
		s.locations[name] = input.CreateBucketConfiguration.LocationConstraint
	}
	return &s3.CreateBucketOutput{}, nil
}

func (s *s3Server) PutPublicAccessBlock(ctx context.Context, input *s3.PutPublicAccessBlockInput, opts ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := aws.ToString(input.Bucket)
	if _, ok := s.buckets[name]; !ok {
		return nil, apiError("NoSuchBucket", "The specified bucket does not exist")
	}
	s.accessBlocks[name] = input.PublicAccessBlockConfiguration
	return &s3.PutPublicAccessBlockOutput{}, nil
}

func (s *s3Server) HeadObject(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.denied(); err != nil {
		return nil, err
	}
	bucket, ok := s.buckets[aws.ToString(input.Bucket)]
	if !ok {
		return nil, apiError("NoSuchBucket", "The specified bucket does not exist")
	}
	if _, ok := bucket[aws.ToString(input.Key)]; !ok {
		return nil, apiError("NotFound", "Not Found")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (s *s3Server) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.buckets[aws.ToString(input.Bucket)]
	if !ok {
		return nil, apiError("NoSuchBucket", "The specified bucket does not exist")
	}
	bucket[aws.ToString(input.Key)] = body
	s.puts++
	return &s3.PutObjectOutput{}, nil
}
