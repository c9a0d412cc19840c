package sink

import (
	"context"
	"errors"
)

// Router sends s3:// paths to the S3 sink and everything else to the file sink.
type Router struct {
	file Saver
	s3   Saver
}

// NewRouter constructs a Router. s3 may be nil when S3 is not configured.
func NewRouter(file Saver, s3 Saver) *Router {
	return &Router{file: file, s3: s3}
}

func (r *Router) Save(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return &WriteError{Path: path, Err: errors.New("output path is empty")}
	}
	if isS3Path(path) {
		if r.s3 == nil {
			return &WriteError{Path: path, Err: errors.New("s3 sink is not configured")}
		}
		return r.s3.Save(ctx, path, data)
	}
	return r.file.Save(ctx, path, data)
}
