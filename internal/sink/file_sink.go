package sink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileSink writes documents to the local filesystem. The target is replaced
// atomically, so a failed write never leaves a partial document behind.
type FileSink struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewFileSink constructs a FileSink.
func NewFileSink() *FileSink {
	return &FileSink{dirPerm: 0o755, filePerm: 0o644}
}

func (s *FileSink) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, s.filePerm); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Catalog written to file")
	return nil
}
