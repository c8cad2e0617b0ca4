package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"github.com/JMicallef9/translation-api/internal/globaltime"
)

type memoryObject struct {
	body []byte
	meta Object
}

// MemoryBucket is a process-local Bucket for development and tests. Listing is
// lexicographic by key and continuation tokens are the last key of the previous page.
type MemoryBucket struct {
	name string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryBucket(name string) *MemoryBucket {
	if strings.TrimSpace(name) == "" {
		name = "memory"
	}
	return &MemoryBucket{
		name:    name,
		objects: make(map[string]memoryObject),
	}
}

func (b *MemoryBucket) Name() string {
	return b.name
}

func (b *MemoryBucket) List(ctx context.Context, prefix, continuation string, maxKeys int) (ListPage, error) {
	if err := ctx.Err(); err != nil {
		return ListPage{}, &OperationError{Operation: "ListObjectsV2", Code: "RequestCanceled", Err: err}
	}
	limit := normalizeMaxKeys(maxKeys)

	b.mu.RLock()
	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) && key > continuation {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := ListPage{}
	for i, key := range keys {
		if i == limit {
			page.NextContinuation = page.Objects[len(page.Objects)-1].Key
			break
		}
		page.Objects = append(page.Objects, b.objects[key].meta)
	}
	b.mu.RUnlock()

	return page, nil
}

func (b *MemoryBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &OperationError{Operation: "GetObject", Code: "RequestCanceled", Err: err}
	}

	b.mu.RLock()
	obj, ok := b.objects[key]
	b.mu.RUnlock()
	if !ok {
		return nil, &OperationError{
			Operation: "GetObject",
			Code:      "NoSuchKey",
			Message:   "The specified key does not exist.",
			kind:      ErrNotFound,
		}
	}
	return append([]byte(nil), obj.body...), nil
}

func (b *MemoryBucket) Put(ctx context.Context, key string, body []byte, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return &OperationError{Operation: "PutObject", Code: "RequestCanceled", Err: err}
	}

	sum := md5.Sum(body)
	obj := memoryObject{
		body: append([]byte(nil), body...),
		meta: Object{
			Key:          key,
			Size:         int64(len(body)),
			ETag:         `"` + hex.EncodeToString(sum[:]) + `"`,
			LastModified: globaltime.UTC(),
		},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.objects[key]; exists && opts.IfAbsent {
		return &OperationError{
			Operation: "PutObject",
			Code:      "PreconditionFailed",
			Message:   "At least one of the pre-conditions you specified did not hold",
			kind:      ErrPreconditionFailed,
		}
	}
	b.objects[key] = obj
	return nil
}

func (b *MemoryBucket) Check(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored objects.
func (b *MemoryBucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
