package main

import (
	"errors"
	"os"

	docforge "github.com/nkosior/docforge"
	"github.com/nkosior/docforge/internal/config"
)

// Exit codes for the docforge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // successful generation
	ExitGeneral  = 1 // general/unexpected error
	ExitUsage    = 2 // invalid flags, config, or validation
	ExitIO       = 3 // file not found, permission denied
	ExitRenderer = 4 // document assembly errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must wrap with
// fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, docforge.ErrPDFGeneration) {
		return ExitRenderer
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, docforge.ErrEmptyMarkdown) ||
		errors.Is(err, docforge.ErrInvalidTOCPosition) {
		return ExitUsage
	}

	return ExitGeneral
}
