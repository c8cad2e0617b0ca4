package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeS3 struct {
	listInputs []*s3.ListObjectsV2Input
	listOutput *s3.ListObjectsV2Output
	listErr    error

	getBody []byte
	getErr  error

	putInputs []*s3.PutObjectInput
	putBodies [][]byte
	putErr    error

	headErr error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listInputs = append(f.listInputs, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOutput, nil
}

func (f *fakeS3) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.getBody))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInputs = append(f.putInputs, params)
	body, _ := io.ReadAll(params.Body)
	f.putBodies = append(f.putBodies, body)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func apiFailure(operation, code, message string) error {
	return &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: operation,
		Err:           &smithy.GenericAPIError{Code: code, Message: message},
	}
}

func TestS3BucketListMapsObjectsAndContinuation(t *testing.T) {
	t.Parallel()

	modified := time.Date(2015, 1, 27, 5, 57, 31, 0, time.UTC)
	client := &fakeS3{
		listOutput: &s3.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("2015-01-27T05:57:31.399861+00:00"), Size: aws.Int64(120), ETag: aws.String(`"abc"`), LastModified: &modified},
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("token-2"),
		},
	}
	bucket := NewS3Bucket(client, "test_bucket")

	page, err := bucket.List(context.Background(), "history/", "token-1", 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Objects) != 1 || page.Objects[0].Key != "2015-01-27T05:57:31.399861+00:00" || page.Objects[0].Size != 120 {
		t.Fatalf("unexpected objects: %+v", page.Objects)
	}
	if !page.Objects[0].LastModified.Equal(modified) {
		t.Fatalf("unexpected last modified: %s", page.Objects[0].LastModified)
	}
	if page.NextContinuation != "token-2" {
		t.Fatalf("unexpected continuation: %q", page.NextContinuation)
	}

	input := client.listInputs[0]
	if aws.ToString(input.Bucket) != "test_bucket" || aws.ToString(input.Prefix) != "history/" ||
		aws.ToString(input.ContinuationToken) != "token-1" || aws.ToInt32(input.MaxKeys) != 50 {
		t.Fatalf("unexpected list input: %+v", input)
	}
}

func TestS3BucketListFailureCarriesOperationAndMessage(t *testing.T) {
	t.Parallel()

	client := &fakeS3{listErr: apiFailure("ListObjectsV2", "NoSuchBucket", "The specified bucket does not exist")}
	_, err := NewS3Bucket(client, "missing").List(context.Background(), "", "", 0)
	if err == nil {
		t.Fatalf("expected list error")
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "ListObjectsV2" || opErr.Code != "NoSuchBucket" {
		t.Fatalf("unexpected operation error: %+v", opErr)
	}
	want := "An error occurred (NoSuchBucket) when calling the ListObjectsV2 operation: The specified bucket does not exist"
	if err.Error() != want {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
}

func TestS3BucketPutIfAbsentSetsIfNoneMatch(t *testing.T) {
	t.Parallel()

	client := &fakeS3{}
	bucket := NewS3Bucket(client, "test_bucket")
	err := bucket.Put(context.Background(), "key", []byte(`{"id":1}`), PutOptions{
		ContentType: "application/json",
		IfAbsent:    true,
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	input := client.putInputs[0]
	if aws.ToString(input.IfNoneMatch) != "*" {
		t.Fatalf("expected If-None-Match *, got %q", aws.ToString(input.IfNoneMatch))
	}
	if aws.ToString(input.ContentType) != "application/json" {
		t.Fatalf("unexpected content type: %q", aws.ToString(input.ContentType))
	}
	if string(client.putBodies[0]) != `{"id":1}` {
		t.Fatalf("unexpected body: %q", client.putBodies[0])
	}
}

func TestS3BucketPutPreconditionFailure(t *testing.T) {
	t.Parallel()

	client := &fakeS3{putErr: apiFailure("PutObject", "PreconditionFailed", "At least one of the pre-conditions you specified did not hold")}
	err := NewS3Bucket(client, "b").Put(context.Background(), "key", []byte("x"), PutOptions{IfAbsent: true})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestS3BucketGetMissingKey(t *testing.T) {
	t.Parallel()

	client := &fakeS3{getErr: apiFailure("GetObject", "NoSuchKey", "The specified key does not exist.")}
	_, err := NewS3Bucket(client, "b").Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestS3BucketTransportErrorKeepsMessage(t *testing.T) {
	t.Parallel()

	client := &fakeS3{headErr: errors.New("dial tcp: connection refused")}
	err := NewS3Bucket(client, "b").Check(context.Background())
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "HeadBucket" || opErr.Message != "dial tcp: connection refused" {
		t.Fatalf("unexpected operation error: %+v", opErr)
	}
}
