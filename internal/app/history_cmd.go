package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JMicallef9/translation-api/internal/cli"
	"github.com/JMicallef9/translation-api/internal/history"
)

type historyOutput struct {
	Translations []history.Record `json:"translations"`
	NextPage     string           `json:"next_page,omitempty"`
}

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	limit := fs.Int("limit", history.DefaultPageSize, "Records per page (1-100)")
	cursor := fs.String("cursor", "", "Cursor returned by a previous page")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit < 1 || *limit > history.MaxPageSize {
		fmt.Fprintf(os.Stderr, "--limit must be between 1 and %d\n", history.MaxPageSize)
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
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

	page, err := rt.manager.History(ctx, *limit, *cursor)
	switch {
	case err == nil:
	case errors.Is(err, history.ErrNoTranslations):
		fmt.Println("No translations found")
		return 0
	case errors.Is(err, history.ErrInvalidCursor):
		fmt.Fprintln(os.Stderr, "--cursor is not a valid page cursor")
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Failed to list objects: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(historyOutput{Translations: page.Records, NextPage: page.NextCursor}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(page.Records))
	for _, record := range page.Records {
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			record.Timestamp,
			record.OriginalLang,
			record.OutputLang,
			strconv.FormatBool(record.MismatchDetected),
			truncateForTable(record.OriginalText, 40),
			truncateForTable(record.TranslatedText, 40),
		})
	}
	if err := writeTable([]string{"ID", "TIMESTAMP", "FROM", "TO", "MISMATCH", "ORIGINAL", "TRANSLATED"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	if page.NextCursor != "" {
		fmt.Printf("\nnext page: --cursor %s\n", page.NextCursor)
	}
	return 0
}
