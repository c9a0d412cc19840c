package utils

import (
	"errors"

	"github.com/GTDGit/ultra_import/pkg/ultra"
)

// Common export errors. Typed errors in the service, parser and sink packages
// unwrap to one of these; pkg/ultra transport errors count as ErrNetwork.
var (
	ErrNetwork          = errors.New("REMOTE_UNAVAILABLE")
	ErrRemoteService    = errors.New("REMOTE_FAILED")
	ErrParse            = errors.New("PARSE_FAILED")
	ErrIO               = errors.New("WRITE_FAILED")
	ErrExportInProgress = errors.New("EXPORT_IN_PROGRESS")
)

// ErrorCode returns the API error code and HTTP status for an export failure.
func ErrorCode(err error) (string, int) {
	switch {
	case errors.Is(err, ErrExportInProgress):
		return ErrExportInProgress.Error(), 409
	case errors.Is(err, ErrNetwork), errors.Is(err, ultra.ErrTransport):
		return ErrNetwork.Error(), 502
	case errors.Is(err, ErrRemoteService):
		return ErrRemoteService.Error(), 502
	case errors.Is(err, ErrParse):
		return ErrParse.Error(), 502
	case errors.Is(err, ErrIO):
		return ErrIO.Error(), 500
	default:
		return "INTERNAL_ERROR", 500
	}
}
