package sheet

import "errors"

// Pipeline errors. Row-level errors are recovered by the orchestrator;
// ErrImportFormatMismatch rejects a workbook before any row is processed.
var (
	ErrUnknownSheetVariant  = errors.New("unknown sheet variant")
	ErrIncompleteRow        = errors.New("incomplete row")
	ErrInvalidDerivedValue  = errors.New("invalid derived value")
	ErrImportFormatMismatch = errors.New("import format mismatch")
)
