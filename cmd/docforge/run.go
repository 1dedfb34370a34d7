package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	docforge "github.com/nkosior/docforge"
	"github.com/nkosior/docforge/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWritePDF     = errors.New("failed to write PDF file")
)

// Output file permissions: owner read+write, others read.
const filePermissions = 0o644

// run executes the CLI with parsed flags.
func run(flags *cliFlags, logger *zap.Logger) error {
	markdown, err := readInput(flags.input)
	if err != nil {
		return err
	}

	if flags.tocOnly {
		fmt.Fprint(os.Stdout, docforge.BuildTOC(markdown))
		return nil
	}

	cfg := config.DefaultConfig()
	if flags.config != "" {
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			return err
		}
	}

	opts := []docforge.Option{
		docforge.WithConfig(cfg),
		docforge.WithLogger(logger),
	}
	if flags.timeout > 0 {
		opts = append(opts, docforge.WithTimeout(flags.timeout))
	}
	svc := docforge.New(opts...)

	pdf, err := svc.Generate(context.Background(), docforge.Input{
		Markdown:  markdown,
		SessionID: flags.session,
	})
	if err != nil {
		return err
	}

	outputPath := resolveOutputPath(flags.input, flags.output)
	if outputPath == "" {
		_, err = os.Stdout.Write(pdf)
		return err
	}
	if err := os.WriteFile(outputPath, pdf, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}

	logger.Info("wrote document", zap.String("path", outputPath), zap.Int("bytes", len(pdf)))
	return nil
}

// readInput loads markdown from the given file, or stdin when no file
// was named and stdin is not a terminal.
func readInput(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- input path is user-provided
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		}
		return string(data), nil
	}

	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "", ErrNoInput
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	return string(data), nil
}

// resolveOutputPath picks the output file: the explicit flag, the input
// name with a .pdf extension, or "" meaning stdout (stdin input, no -o).
func resolveOutputPath(input, output string) string {
	if output != "" {
		return output
	}
	if input == "" {
		return ""
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".pdf"
}
