// Package sink persists finished catalog documents.
package sink

import (
	"context"
	"fmt"

	"github.com/GTDGit/ultra_import/internal/utils"
)

// Saver writes data to path.
type Saver interface {
	Save(ctx context.Context, path string, data []byte) error
}

// WriteError is returned when a document cannot be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write catalog to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match utils.ErrIO.
func (e *WriteError) Is(target error) bool {
	return target == utils.ErrIO
}
