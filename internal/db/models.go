package db

import "time"

// BucketObject is one blob of a bucket emulated on top of PostgreSQL.
type BucketObject struct {
	Bucket      string    `gorm:"column:bucket;primaryKey;size:255"`
	Key         string    `gorm:"column:object_key;primaryKey;size:1024"`
	Body        []byte    `gorm:"column:body;type:bytea;not null"`
	ContentType string    `gorm:"column:content_type;size:255;not null;default:''"`
	ETag        string    `gorm:"column:etag;size:64;not null"`
	Size        int64     `gorm:"column:size;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (BucketObject) TableName() string {
	return "bucket_objects"
}
