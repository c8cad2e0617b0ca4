package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/JMicallef9/translation-api/internal/cli"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Health check timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := newRuntime(ctx, envLoader, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.close()

	if err := rt.manager.Check(ctx); err != nil {
		rt.logger.Error().Err(err).Str("bucket", rt.bucket.Name()).Msg("storage health check failed")
		fmt.Fprintf(os.Stderr, "Storage check failed: %v\n", err)
		return 1
	}

	fmt.Printf("ok backend=%s bucket=%s provider=%s\n", rt.cfg.StorageBackend, rt.bucket.Name(), rt.manager.DefaultProvider())
	return 0
}
