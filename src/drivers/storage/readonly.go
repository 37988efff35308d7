package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// WithReadOnly returns a view of fsys that rejects writes with fs.ErrPermission.
// Afero stores use afero.ReadOnlyFs; other backends are wrapped.
func WithReadOnly(fsys Filesystem) Filesystem {
	if s, ok := fsys.(*AferoStore); ok {
		return ReadOnly(s)
	}
	return &readOnlyFS{inner: fsys}
}

type readOnlyFS struct {
	inner Filesystem
}

func denied(op, p string) error {
	return fmt.Errorf("%s %s: %w", op, p, fs.ErrPermission)
}

func (r *readOnlyFS) Stat(ctx context.Context, p string) (*Entry, error) {
	return r.inner.Stat(ctx, p)
}

func (r *readOnlyFS) List(ctx context.Context, dir string) ([]Entry, error) {
	return r.inner.List(ctx, dir)
}

func (r *readOnlyFS) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	return r.inner.Open(ctx, p)
}

func (r *readOnlyFS) WriteFile(ctx context.Context, p string, _ io.Reader) (int64, error) {
	return 0, denied("write", p)
}

func (r *readOnlyFS) Mkdir(ctx context.Context, p string) error  { return denied("mkdir", p) }
func (r *readOnlyFS) Remove(ctx context.Context, p string) error { return denied("remove", p) }
func (r *readOnlyFS) Move(ctx context.Context, src, _ string) error {
	return denied("move", src)
}
func (r *readOnlyFS) Copy(ctx context.Context, _, dst string) error {
	return denied("copy", dst)
}

// SignedURL keeps presigned downloads available on read-only views.
func (r *readOnlyFS) SignedURL(ctx context.Context, p string, ttl time.Duration) (string, error) {
	signer, ok := r.inner.(URLSigner)
	if !ok {
		return "", ErrURLSigningUnsupported
	}
	return signer.SignedURL(ctx, p, ttl)
}
