package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the S3 client used by S3Bucket.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Options configures the S3 client.
type S3Options struct {
	Region string
	// EndpointURL targets S3-compatible services such as MinIO or LocalStack.
	EndpointURL  string
	UsePathStyle bool
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region := strings.TrimSpace(opts.Region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimSpace(opts.EndpointURL)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// S3Bucket stores objects in one S3 bucket.
type S3Bucket struct {
	client S3API
	bucket string
}

func NewS3Bucket(client S3API, bucket string) *S3Bucket {
	return &S3Bucket{client: client, bucket: strings.TrimSpace(bucket)}
}

func (b *S3Bucket) Name() string {
	return b.bucket
}

func (b *S3Bucket) List(ctx context.Context, prefix, continuation string, maxKeys int) (ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		MaxKeys: aws.Int32(int32(normalizeMaxKeys(maxKeys))),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if continuation != "" {
		input.ContinuationToken = aws.String(continuation)
	}

	out, err := b.client.ListObjectsV2(ctx, input)
	if err != nil {
		return ListPage{}, s3OperationError("ListObjectsV2", err)
	}

	page := ListPage{Objects: make([]Object, 0, len(out.Contents))}
	for _, item := range out.Contents {
		obj := Object{
			Key:  aws.ToString(item.Key),
			Size: aws.ToInt64(item.Size),
			ETag: aws.ToString(item.ETag),
		}
		if item.LastModified != nil {
			obj.LastModified = item.LastModified.UTC()
		}
		page.Objects = append(page.Objects, obj)
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextContinuation = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

func (b *S3Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3OperationError("GetObject", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &OperationError{Operation: "GetObject", Code: "ReadError", Err: err}
	}
	return body, nil
}

func (b *S3Bucket) Put(ctx context.Context, key string, body []byte, opts PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.IfAbsent {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return s3OperationError("PutObject", err)
	}
	return nil
}

func (b *S3Bucket) Check(ctx context.Context) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return s3OperationError("HeadBucket", err)
	}
	return nil
}

func s3OperationError(operation string, err error) error {
	opErr := &OperationError{Operation: operation, Err: err}

	var smithyOpErr *smithy.OperationError
	if errors.As(err, &smithyOpErr) && smithyOpErr.Operation() != "" {
		opErr.Operation = smithyOpErr.Operation()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		opErr.Code = apiErr.ErrorCode()
		opErr.Message = apiErr.ErrorMessage()
	} else {
		opErr.Message = err.Error()
	}

	switch opErr.Code {
	case "NoSuchKey", "NotFound":
		opErr.kind = ErrNotFound
	case "PreconditionFailed", "ConditionalRequestConflict":
		opErr.kind = ErrPreconditionFailed
	}
	return opErr
}
