package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/JMicallef9/translation-api/internal/cli"
	"github.com/JMicallef9/translation-api/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")
	lang := fs.String("lang", "", "Target language code (for example: de, fr, zh-CN)")
	inputLang := fs.String("input-lang", "", "Asserted source language; flags a mismatch when detection disagrees")
	provider := fs.String("provider", "", "Translation provider name (google, local, mymemory)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "translate requires the text to translate")
		printTranslateUsage()
		return 2
	}
	if strings.TrimSpace(*lang) == "" {
		fmt.Fprintln(os.Stderr, "--lang is required")
		printTranslateUsage()
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := newRuntime(ctx, envLoader, strings.TrimSpace(*provider))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.close()

	record, err := rt.manager.Translate(ctx, translation.Request{
		Text:       strings.Join(fs.Args(), " "),
		TargetLang: *lang,
		InputLang:  *inputLang,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translate failed: %s\n", translation.ClientMessage(err))
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(record); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf(
		"translate id=%d original_lang=%s output_lang=%s mismatch_detected=%t timestamp=%s\n%s\n",
		record.ID,
		record.OriginalLang,
		record.OutputLang,
		record.MismatchDetected,
		record.Timestamp,
		record.TranslatedText,
	)
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translation-api translate --lang <lang> [--input-lang <lang>] [--provider google] [--format table|json] [--env .env] [--timeout 1m] <text>")
}
