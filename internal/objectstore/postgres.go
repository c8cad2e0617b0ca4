package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JMicallef9/translation-api/internal/db"
	"github.com/JMicallef9/translation-api/internal/globaltime"
)

// PostgresBucket emulates a bucket on the bucket_objects table. Keys are listed in byte
// order and continuation tokens are the last key of the previous page.
type PostgresBucket struct {
	pool   *db.Pool
	bucket string
}

func NewPostgresBucket(pool *db.Pool, bucket string) *PostgresBucket {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		bucket = "translations"
	}
	return &PostgresBucket{pool: pool, bucket: bucket}
}

func (b *PostgresBucket) Name() string {
	return b.bucket
}

func (b *PostgresBucket) List(ctx context.Context, prefix, continuation string, maxKeys int) (ListPage, error) {
	limit := normalizeMaxKeys(maxKeys)

	query := b.pool.GORM().WithContext(ctx).
		Model(&db.BucketObject{}).
		Select("object_key", "size", "etag", "created_at").
		Where("bucket = ?", b.bucket)
	if prefix != "" {
		query = query.Where("object_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	if continuation != "" {
		query = query.Where("object_key COLLATE \"C\" > ?", continuation)
	}

	var rows []db.BucketObject
	if err := query.Order("object_key COLLATE \"C\" ASC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return ListPage{}, postgresOperationError("ListObjects", err)
	}

	page := ListPage{Objects: make([]Object, 0, min(len(rows), limit))}
	for i, row := range rows {
		if i == limit {
			page.NextContinuation = rows[i-1].Key
			break
		}
		page.Objects = append(page.Objects, Object{
			Key:          row.Key,
			Size:         row.Size,
			ETag:         row.ETag,
			LastModified: row.CreatedAt.UTC(),
		})
	}
	return page, nil
}

func (b *PostgresBucket) Get(ctx context.Context, key string) ([]byte, error) {
	var row db.BucketObject
	err := b.pool.GORM().WithContext(ctx).
		Where("bucket = ? AND object_key = ?", b.bucket, key).
		Take(&row).Error
	if err != nil {
		return nil, postgresOperationError("GetObject", err)
	}
	return row.Body, nil
}

func (b *PostgresBucket) Put(ctx context.Context, key string, body []byte, opts PutOptions) error {
	sum := md5.Sum(body)
	row := db.BucketObject{
		Bucket:      b.bucket,
		Key:         key,
		Body:        body,
		ContentType: opts.ContentType,
		ETag:        `"` + hex.EncodeToString(sum[:]) + `"`,
		Size:        int64(len(body)),
		CreatedAt:   globaltime.UTC(),
	}

	onConflict := clause.OnConflict{UpdateAll: true}
	if opts.IfAbsent {
		onConflict = clause.OnConflict{DoNothing: true}
	}

	res := b.pool.GORM().WithContext(ctx).Clauses(onConflict).Create(&row)
	if res.Error != nil {
		return postgresOperationError("PutObject", res.Error)
	}
	if opts.IfAbsent && res.RowsAffected == 0 {
		return &OperationError{
			Operation: "PutObject",
			Code:      "PreconditionFailed",
			Message:   "object " + key + " already exists",
			kind:      ErrPreconditionFailed,
		}
	}
	return nil
}

func (b *PostgresBucket) Check(ctx context.Context) error {
	if err := b.pool.Ping(ctx); err != nil {
		return postgresOperationError("HeadBucket", err)
	}
	return nil
}

func postgresOperationError(operation string, err error) error {
	opErr := &OperationError{
		Operation: operation,
		Code:      "DatabaseError",
		Message:   err.Error(),
		Err:       err,
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		opErr.Code = "NoSuchKey"
		opErr.Message = "The specified key does not exist."
		opErr.kind = ErrNotFound
	}
	return opErr
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
