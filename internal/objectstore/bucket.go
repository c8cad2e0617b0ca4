// Package objectstore abstracts the bucket-style blob storage that holds translation
// records: list by prefix with continuation tokens, get and put.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultListPageSize = 1000

var (
	// ErrNotFound reports a missing key.
	ErrNotFound = errors.New("object not found")
	// ErrPreconditionFailed reports a conditional put against an existing key.
	ErrPreconditionFailed = errors.New("object already exists")
)

// Object describes one listed key.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ListPage is one page of a prefix listing. NextContinuation is empty on the last page.
type ListPage struct {
	Objects          []Object
	NextContinuation string
}

// PutOptions controls a single write.
type PutOptions struct {
	ContentType string
	// IfAbsent makes the write fail with ErrPreconditionFailed when the key exists.
	IfAbsent bool
}

// Bucket is the storage contract used by the history store.
type Bucket interface {
	Name() string
	List(ctx context.Context, prefix, continuation string, maxKeys int) (ListPage, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, opts PutOptions) error
	Check(ctx context.Context) error
}

// OperationError carries the backend operation name and provider message of a failure.
type OperationError struct {
	Operation string
	Code      string
	Message   string
	Err       error

	kind error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	if code == "" {
		code = "Unknown"
	}
	message := strings.TrimSpace(e.Message)
	if message == "" && e.Err != nil {
		message = e.Err.Error()
	}
	return fmt.Sprintf("An error occurred (%s) when calling the %s operation: %s", code, e.Operation, message)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets callers match ErrNotFound and ErrPreconditionFailed with errors.Is.
func (e *OperationError) Is(target error) bool {
	return e != nil && e.kind != nil && target == e.kind
}

// Walk visits every object under prefix in listing order, following continuation tokens.
func Walk(ctx context.Context, bucket Bucket, prefix string, fn func(Object) error) error {
	if bucket == nil {
		return fmt.Errorf("bucket is nil")
	}
	continuation := ""
	for {
		page, err := bucket.List(ctx, prefix, continuation, defaultListPageSize)
		if err != nil {
			return err
		}
		for _, obj := range page.Objects {
			if err := fn(obj); err != nil {
				return err
			}
		}
		if page.NextContinuation == "" {
			return nil
		}
		if page.NextContinuation == continuation {
			return fmt.Errorf("list %s: continuation token did not advance", bucket.Name())
		}
		continuation = page.NextContinuation
	}
}

func normalizeMaxKeys(maxKeys int) int {
	if maxKeys <= 0 || maxKeys > defaultListPageSize {
		return defaultListPageSize
	}
	return maxKeys
}
