package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// IsWithin reports whether p equals dir or lies below it.
func IsWithin(p, dir string) bool {
	if dir == "/" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// Transfer copies src from one filesystem to dst on another, recursing into
// directories. The destination must not exist and its parent must.
func Transfer(ctx context.Context, from Filesystem, src string, to Filesystem, dst string) error {
	e, err := from.Stat(ctx, src)
	if err != nil {
		return err
	}
	if _, err := to.Stat(ctx, dst); err == nil {
		return fmt.Errorf("%s: %w", dst, fs.ErrExist)
	}
	return copyTree(ctx, from, *e, to, dst)
}

func copyTree(ctx context.Context, from Filesystem, e Entry, to Filesystem, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !e.IsDir {
		rc, err := from.Open(ctx, e.Path)
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = to.WriteFile(ctx, dst, rc)
		return err
	}

	if err := to.Mkdir(ctx, dst); err != nil {
		return err
	}
	children, err := from.List(ctx, e.Path)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := copyTree(ctx, from, child, to, path.Join(dst, child.Name)); err != nil {
			return err
		}
	}
	return nil
}
