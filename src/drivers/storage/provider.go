package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrPathTraversal = errors.New("path escapes base directory")
	ErrNotDir        = errors.New("not a directory")
	ErrIsDir         = errors.New("is a directory")
)

// Entry represents a file or directory item
type Entry struct {
	Name    string
	Path    string // root-relative, slash separated, starts with "/"
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// Filesystem defines the interface for underlying storage backends (memory, local, S3).
// Paths are already resolved: rooted at "/" and free of "." and ".." segments.
// Failures are reported with the io/fs sentinels (fs.ErrNotExist, fs.ErrExist,
// fs.ErrPermission, fs.ErrInvalid) or ErrNotDir / ErrIsDir.
type Filesystem interface {
	// Readers
	Stat(ctx context.Context, path string) (*Entry, error)
	List(ctx context.Context, dir string) ([]Entry, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Writers
	WriteFile(ctx context.Context, path string, data io.Reader) (int64, error)
	Mkdir(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
	Move(ctx context.Context, src, dst string) error
	Copy(ctx context.Context, src, dst string) error
}

// URLSigner is implemented by backends that can hand out direct download URLs.
type URLSigner interface {
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// DiskBacked is implemented by backends stored on a host directory.
type DiskBacked interface {
	Root() string
}
