// Package archive stores snapshot documents and valuation reports on a local
// filesystem or an S3 compatible bucket.
package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/ddm/internal/core"
)

// Storage is a flat blob store addressed by slash separated paths.
// Reading a missing path returns an error matching fs.ErrNotExist.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	// List returns all paths under prefix
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Backends
const (
	BackendLocalFS = "localfs"
	BackendS3      = "s3"
)

// Config selects and configures a backend
type Config struct {
	Backend string
	Path    string // localfs root
	S3      S3Config
}

// Open creates the configured backend
func Open(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendLocalFS, "":
		l, err := NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return l, nil
	case BackendS3:
		s, err := NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage backend %q", cfg.Backend))
}

// validPath rejects paths that could escape the storage root
func validPath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return fmt.Errorf("path %q escapes storage root", p)
		}
	}
	return nil
}
