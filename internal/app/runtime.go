package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/JMicallef9/translation-api/internal/cli"
	"github.com/JMicallef9/translation-api/internal/config"
	"github.com/JMicallef9/translation-api/internal/db"
	"github.com/JMicallef9/translation-api/internal/history"
	"github.com/JMicallef9/translation-api/internal/langdetect"
	"github.com/JMicallef9/translation-api/internal/logging"
	"github.com/JMicallef9/translation-api/internal/objectstore"
	"github.com/JMicallef9/translation-api/internal/translation"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"

	defaultPostgresBucket = "translations"
)

// runtime holds everything a command needs; close releases it in reverse order.
type runtime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	bucket   objectstore.Bucket
	registry *translation.Registry
	manager  *translation.Manager

	closers []func()
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func loadConfig(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// openBucket connects the configured storage backend.
func openBucket(ctx context.Context, cfg *config.Config) (objectstore.Bucket, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		client, err := objectstore.NewS3Client(ctx, objectstore.S3Options{
			Region:       cfg.AWSRegion,
			EndpointURL:  cfg.S3EndpointURL,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return objectstore.NewS3Bucket(client, cfg.S3BucketName), func() {}, nil
	case config.StorageBackendPostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		name := strings.TrimSpace(cfg.S3BucketName)
		if name == "" {
			name = defaultPostgresBucket
		}
		return objectstore.NewPostgresBucket(pool, name), func() { _ = pool.Close() }, nil
	case config.StorageBackendMemory:
		return objectstore.NewMemoryBucket("memory"), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// newRuntime wires storage, history, providers, detection and the language catalog.
func newRuntime(ctx context.Context, envLoader *cli.EnvLoader, provider string) (*runtime, error) {
	cfg, logger, err := loadConfig(envLoader)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	bucket, closeBucket, err := openBucket(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to open storage")
		return nil, err
	}
	rt.bucket = bucket
	rt.closers = append(rt.closers, closeBucket)

	registry, err := translation.NewRegistryFromConfig(ctx, cfg, logger)
	if err != nil {
		rt.close()
		logger.Error().Err(err).Msg("failed to build translation providers")
		return nil, err
	}
	rt.registry = registry
	rt.closers = append(rt.closers, func() { _ = registry.Close() })

	if provider != "" {
		if _, err := registry.Provider(provider); err != nil {
			rt.close()
			return nil, fmt.Errorf("invalid --provider: %w", err)
		}
	}

	store := history.NewStore(bucket, logger, history.Options{Prefix: cfg.StorageKeyPrefix})
	catalog := translation.BuildCatalog(ctx, registry, provider, cfg.SupportedLanguageList(), logger)
	detector := langdetect.New(langdetect.Options{})

	rt.manager = translation.NewManager(registry, detector, catalog, store, logger, translation.ManagerOptions{
		Provider:           provider,
		TranslationTimeout: cfg.TranslationTimeout,
		StorageTimeout:     cfg.StorageTimeout,
	})

	logger.Debug().
		Str("backend", cfg.StorageBackend).
		Str("bucket", bucket.Name()).
		Str("provider", rt.manager.DefaultProvider()).
		Int("languages", catalog.Len()).
		Msg("runtime ready")
	return rt, nil
}

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
