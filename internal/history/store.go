// Package history is the append-only translation history kept in an object store:
// id assignment, persistence and newest-first pagination.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/JMicallef9/translation-api/internal/globaltime"
	"github.com/JMicallef9/translation-api/internal/objectstore"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	defaultScanConcurrency = 8
	maxCreateAttempts      = 5
	recordContentType      = "application/json"
)

var (
	// ErrNoTranslations is returned by List when there is nothing to show.
	ErrNoTranslations = errors.New("no translations found")
	// ErrInvalidCursor is returned by List for tokens it did not issue.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrKeyExists is returned by Append when the record's key is already taken.
	ErrKeyExists = errors.New("record key already exists")
)

// StorageError wraps a failure of the underlying bucket.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Page is one newest-first slice of history. NextCursor is empty on the last page.
type Page struct {
	Records    []Record
	NextCursor string
}

// Options tunes a Store.
type Options struct {
	// Prefix is prepended to every record key.
	Prefix string
	// ScanConcurrency bounds parallel object reads during scans.
	ScanConcurrency int
	// Now overrides the clock used for record timestamps.
	Now func() time.Time
}

// Store persists records one object per record, keyed by timestamp. Writes go through a
// single mutex so id assignment cannot race inside the process. Record bodies are cached
// by key after the first read since stored records never change.
type Store struct {
	bucket objectstore.Bucket
	logger zerolog.Logger

	prefix          string
	scanConcurrency int
	now             func() time.Time

	writeMu       sync.Mutex
	lastTimestamp time.Time

	cacheMu sync.RWMutex
	cache   map[string]Record
}

func NewStore(bucket objectstore.Bucket, logger zerolog.Logger, opts Options) *Store {
	concurrency := opts.ScanConcurrency
	if concurrency <= 0 {
		concurrency = defaultScanConcurrency
	}
	now := opts.Now
	if now == nil {
		now = globaltime.UTCMicro
	}
	return &Store{
		bucket:          bucket,
		logger:          logger,
		prefix:          opts.Prefix,
		scanConcurrency: concurrency,
		now:             now,
		cache:           make(map[string]Record),
	}
}

// NextID returns one more than the largest stored id, or 1 for an empty store. Every
// record is read; listing order and modification times are not trusted.
func (s *Store) NextID(ctx context.Context) (int64, error) {
	records, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	var maxID int64
	for _, record := range records {
		if record.ID > maxID {
			maxID = record.ID
		}
	}
	return maxID + 1, nil
}

// Append writes one record under its timestamp key. Existing keys are never overwritten.
func (s *Store) Append(ctx context.Context, record Record) error {
	if record.ID < 1 {
		return fmt.Errorf("record id must be positive, got %d", record.ID)
	}
	if strings.TrimSpace(record.Timestamp) == "" {
		return fmt.Errorf("record timestamp is required")
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := s.key(record.Timestamp)
	err = s.bucket.Put(ctx, key, body, objectstore.PutOptions{
		ContentType: recordContentType,
		IfAbsent:    true,
	})
	if err != nil {
		if errors.Is(err, objectstore.ErrPreconditionFailed) {
			return fmt.Errorf("%w: %s", ErrKeyExists, key)
		}
		return &StorageError{Op: "put", Err: err}
	}

	s.remember(key, record)
	return nil
}

// Create assigns the next id and a fresh timestamp, builds the record and appends it.
// The whole sequence holds the write lock. On a key collision the id is recomputed and
// the timestamp moves forward one microsecond.
func (s *Store) Create(ctx context.Context, build func(id int64, timestamp string) Record) (Record, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ts := s.now().UTC().Truncate(time.Microsecond)
	if !ts.After(s.lastTimestamp) {
		ts = s.lastTimestamp.Add(time.Microsecond)
	}

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id, err := s.NextID(ctx)
		if err != nil {
			return Record{}, err
		}

		timestamp := FormatTimestamp(ts)
		record := build(id, timestamp)
		record.ID = id
		record.Timestamp = timestamp

		err = s.Append(ctx, record)
		if err == nil {
			s.lastTimestamp = ts
			return record, nil
		}
		if !errors.Is(err, ErrKeyExists) {
			return Record{}, err
		}

		s.logger.Warn().Str("timestamp", timestamp).Int("attempt", attempt+1).Msg("record key collision, retrying")
		lastErr = err
		ts = ts.Add(time.Microsecond)
	}
	return Record{}, fmt.Errorf("create record after %d attempts: %w", maxCreateAttempts, lastErr)
}

// List returns records newest-first by id. limit <= 0 selects DefaultPageSize.
func (s *Store) List(ctx context.Context, limit int, cursor string) (Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	after, hasAfter, err := decodeCursor(cursor)
	if err != nil {
		return Page{}, err
	}

	records, err := s.scan(ctx)
	if err != nil {
		return Page{}, err
	}
	sort.Slice(records, func(i, j int) bool {
		return newer(records[i], records[j])
	})

	if hasAfter {
		start := sort.Search(len(records), func(i int) bool {
			return newer(after.record(), records[i])
		})
		records = records[start:]
	}
	if len(records) == 0 {
		return Page{}, ErrNoTranslations
	}

	page := Page{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		page.NextCursor = encodeCursor(page.Records[limit-1])
	}
	return page, nil
}

// Check verifies the bucket is reachable.
func (s *Store) Check(ctx context.Context) error {
	if err := s.bucket.Check(ctx); err != nil {
		return &StorageError{Op: "check", Err: err}
	}
	return nil
}

func (s *Store) key(timestamp string) string {
	return s.prefix + timestamp
}

func (s *Store) scan(ctx context.Context) ([]Record, error) {
	var keys []string
	err := objectstore.Walk(ctx, s.bucket, s.prefix, func(obj objectstore.Object) error {
		keys = append(keys, obj.Key)
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	records := make([]Record, 0, len(keys))
	missing := make([]string, 0)
	s.cacheMu.RLock()
	for _, key := range keys {
		if record, ok := s.cache[key]; ok {
			records = append(records, record)
			continue
		}
		missing = append(missing, key)
	}
	s.cacheMu.RUnlock()

	if len(missing) == 0 {
		return records, nil
	}

	fetched := make([]*Record, len(missing))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.scanConcurrency)
	for i, key := range missing {
		group.Go(func() error {
			record, err := s.load(groupCtx, key)
			if err != nil {
				return err
			}
			fetched[i] = record
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, record := range fetched {
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}

// load reads and decodes one object. Objects that vanished or are not records yield nil.
func (s *Store) load(ctx context.Context, key string) (*Record, error) {
	body, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, nil
		}
		return nil, &StorageError{Op: "get", Err: err}
	}

	record, err := DecodeRecord(body)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Str("bucket", s.bucket.Name()).Msg("skipping object that is not a translation record")
		return nil, nil
	}

	s.remember(key, record)
	return &record, nil
}

func (s *Store) remember(key string, record Record) {
	s.cacheMu.Lock()
	s.cache[key] = record
	s.cacheMu.Unlock()
}
