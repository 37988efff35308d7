package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// AferoStore adapts an afero.Fs to Filesystem. It backs the memory, local and
// read-only storages.
type AferoStore struct {
	fs afero.Fs
	// root is the host directory of a local store, empty otherwise.
	root string
	// renameDirs is set when fs.Rename moves whole directory trees.
	renameDirs bool
}

// NewAferoStore wraps an arbitrary afero filesystem.
func NewAferoStore(fsys afero.Fs) *AferoStore {
	return &AferoStore{fs: fsys}
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *AferoStore {
	return NewAferoStore(afero.NewMemMapFs())
}

// ReadOnly returns a view of s that rejects every write with fs.ErrPermission.
func ReadOnly(s *AferoStore) *AferoStore {
	return &AferoStore{fs: afero.NewReadOnlyFs(s.fs), root: s.root, renameDirs: s.renameDirs}
}

// Root returns the host directory of a local store.
func (s *AferoStore) Root() string {
	return s.root
}

func checkPath(p string) error {
	if !strings.HasPrefix(p, "/") || path.Clean(p) != p {
		return fmt.Errorf("%q: %w", p, ErrPathTraversal)
	}
	return nil
}

func entryFromInfo(p string, info os.FileInfo) Entry {
	name := path.Base(p)
	if p == "/" {
		name = ""
	}
	e := Entry{
		Name:    name,
		Path:    p,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}

func (s *AferoStore) Stat(ctx context.Context, p string) (*Entry, error) {
	if err := checkPath(p); err != nil {
		return nil, err
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	e := entryFromInfo(p, info)
	return &e, nil
}

func (s *AferoStore) requireDir(dir string) error {
	info, err := s.fs.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDir)
	}
	return nil
}

func (s *AferoStore) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := checkPath(dir); err != nil {
		return nil, err
	}
	if err := s.requireDir(dir); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	items := make([]Entry, 0, len(infos))
	for _, info := range infos {
		items = append(items, entryFromInfo(path.Join(dir, info.Name()), info))
	}
	return items, nil
}

func (s *AferoStore) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	e, err := s.Stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if e.IsDir {
		return nil, fmt.Errorf("%s: %w", p, ErrIsDir)
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return f, nil
}

func (s *AferoStore) WriteFile(ctx context.Context, p string, data io.Reader) (int64, error) {
	if err := checkPath(p); err != nil {
		return 0, err
	}
	if p == "/" {
		return 0, fmt.Errorf("%s: %w", p, ErrIsDir)
	}
	if err := s.requireDir(path.Dir(p)); err != nil {
		return 0, err
	}
	if info, err := s.fs.Stat(p); err == nil && info.IsDir() {
		return 0, fmt.Errorf("%s: %w", p, ErrIsDir)
	}

	// The body lands in a hidden sibling first; p only changes once it is complete.
	tmp := path.Join(path.Dir(p), "."+path.Base(p)+".upload-"+uuid.NewString())
	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", p, err)
	}

	n, err := io.Copy(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = s.fs.Rename(tmp, p)
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", p, err)
	}
	return n, nil
}

func (s *AferoStore) Mkdir(ctx context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}
	if _, err := s.fs.Stat(p); err == nil {
		return fmt.Errorf("mkdir %s: %w", p, fs.ErrExist)
	}
	// MemMapFs creates missing parents on its own; the contract does not.
	if err := s.requireDir(path.Dir(p)); err != nil {
		return err
	}
	if err := s.fs.Mkdir(p, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	return nil
}

func (s *AferoStore) Remove(ctx context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}
	if p == "/" {
		return fmt.Errorf("remove storage root: %w", fs.ErrPermission)
	}
	if _, err := s.fs.Stat(p); err != nil {
		return fmt.Errorf("stat %s: %w", p, err)
	}
	if err := s.fs.RemoveAll(p); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// prepareTransfer validates a same-store move or copy and returns the source entry.
func (s *AferoStore) prepareTransfer(ctx context.Context, src, dst string) (*Entry, error) {
	if err := checkPath(dst); err != nil {
		return nil, err
	}
	if src == "/" || dst == "/" {
		return nil, fmt.Errorf("transfer storage root: %w", fs.ErrPermission)
	}
	e, err := s.Stat(ctx, src)
	if err != nil {
		return nil, err
	}
	if IsWithin(dst, src) {
		return nil, fmt.Errorf("%s into %s: %w", src, dst, fs.ErrInvalid)
	}
	if _, err := s.fs.Stat(dst); err == nil {
		return nil, fmt.Errorf("%s: %w", dst, fs.ErrExist)
	}
	if err := s.requireDir(path.Dir(dst)); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *AferoStore) Move(ctx context.Context, src, dst string) error {
	e, err := s.prepareTransfer(ctx, src, dst)
	if err != nil {
		return err
	}

	if !e.IsDir || s.renameDirs {
		if err := s.fs.Rename(src, dst); err != nil {
			return fmt.Errorf("rename %s: %w", src, err)
		}
		return nil
	}

	if err := copyTree(ctx, s, *e, s, dst); err != nil {
		return err
	}
	if err := s.fs.RemoveAll(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}

func (s *AferoStore) Copy(ctx context.Context, src, dst string) error {
	e, err := s.prepareTransfer(ctx, src, dst)
	if err != nil {
		return err
	}
	return copyTree(ctx, s, *e, s, dst)
}
