package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"

	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/drivers/storage"
)

// StorageManager runs file-manager operations against the registered
// storages and translates backend failures into typed errors.
type StorageManager struct {
	registry *Registry
	logger   *logrus.Logger
}

// NewStorageManager creates a new storage manager.
func NewStorageManager(registry *Registry, logger *logrus.Logger) *StorageManager {
	return &StorageManager{
		registry: registry,
		logger:   logger,
	}
}

func (s *StorageManager) Registry() *Registry {
	return s.registry
}

// translate maps a driver error on loc to a typed error. Typed errors pass through.
func (s *StorageManager) translate(err error, op string, loc Location) error {
	if err == nil {
		return nil
	}
	var fe *files.Error
	if errors.As(err, &fe) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrPathTraversal), errors.Is(err, fs.ErrInvalid):
		return files.Wrap(files.KindInvalidPath, err, "invalid path: %s", loc.Path)
	case errors.Is(err, fs.ErrNotExist):
		return files.Wrap(files.KindNotFound, err, "not found: %s", loc.Path)
	case errors.Is(err, fs.ErrExist):
		return files.Wrap(files.KindConflict, err, "already exists: %s", loc.Path)
	case errors.Is(err, fs.ErrPermission):
		return files.Wrap(files.KindReadOnly, err, "storage %s does not allow %s on %s", loc.Storage, op, loc.Path)
	case errors.Is(err, storage.ErrNotDir):
		return files.Wrap(files.KindBadRequest, err, "not a directory: %s", loc.Path)
	case errors.Is(err, storage.ErrIsDir):
		return files.Wrap(files.KindBadRequest, err, "is a directory: %s", loc.Path)
	}

	s.logger.WithFields(logrus.Fields{
		"op":      op,
		"storage": loc.Storage,
		"path":    loc.Path,
	}).WithError(err).Error("storage: backend failure")
	return files.Wrap(files.KindBackend, err, "%s failed on %s", op, loc.Path)
}

func (s *StorageManager) backend(name string) (storage.Filesystem, error) {
	return s.registry.Get(name)
}

// Stat returns the entry at loc.
func (s *StorageManager) Stat(ctx context.Context, loc Location) (*storage.Entry, error) {
	fsys, err := s.backend(loc.Storage)
	if err != nil {
		return nil, err
	}
	e, err := fsys.Stat(ctx, loc.Path)
	if err != nil {
		return nil, s.translate(err, "stat", loc)
	}
	return e, nil
}

func (s *StorageManager) listItems(ctx context.Context, loc Location) ([]files.Item, error) {
	fsys, err := s.backend(loc.Storage)
	if err != nil {
		return nil, err
	}
	entries, err := fsys.List(ctx, loc.Path)
	if err != nil {
		return nil, s.translate(err, "list", loc)
	}

	items := make([]files.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, NewItem(loc.Storage, e))
	}
	SortItems(items)
	return items, nil
}

func (s *StorageManager) listing(loc Location, items []files.Item) *files.Listing {
	return &files.Listing{
		Adapter:     loc.Storage,
		Storages:    s.registry.Names(),
		Dirname:     loc.String(),
		Breadcrumbs: Breadcrumbs(loc.Storage, loc.Path),
		Files:       items,
	}
}

// Index lists the immediate children of the directory at loc.
func (s *StorageManager) Index(ctx context.Context, loc Location) (*files.Listing, error) {
	items, err := s.listItems(ctx, loc)
	if err != nil {
		return nil, err
	}
	return s.listing(loc, items), nil
}

// Subfolders lists only the directory children of loc.
func (s *StorageManager) Subfolders(ctx context.Context, loc Location) ([]files.Item, error) {
	items, err := s.listItems(ctx, loc)
	if err != nil {
		return nil, err
	}
	folders := make([]files.Item, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			folders = append(folders, item)
		}
	}
	return folders, nil
}

type matcher func(rel, name string) bool

func newMatcher(filter string) (matcher, error) {
	if filter == "" {
		return func(string, string) bool { return true }, nil
	}
	if strings.ContainsAny(filter, "*?[{") {
		if !doublestar.ValidatePattern(filter) {
			return nil, files.Errorf(files.KindBadRequest, "invalid search pattern: %s", filter)
		}
		return func(rel, name string) bool {
			return doublestar.MatchUnvalidated(filter, name) || doublestar.MatchUnvalidated(filter, rel)
		}, nil
	}
	needle := strings.ToLower(filter)
	return func(_, name string) bool {
		return strings.Contains(strings.ToLower(name), needle)
	}, nil
}

// Search walks the tree below loc and returns every entry whose name
// contains filter, or matches it as a glob when it has glob metacharacters.
func (s *StorageManager) Search(ctx context.Context, loc Location, filter string) (*files.Listing, error) {
	match, err := newMatcher(filter)
	if err != nil {
		return nil, err
	}
	fsys, err := s.backend(loc.Storage)
	if err != nil {
		return nil, err
	}

	var items []files.Item
	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := fsys.List(ctx, dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			rel := strings.TrimPrefix(strings.TrimPrefix(e.Path, loc.Path), "/")
			if match(rel, e.Name) {
				items = append(items, NewItem(loc.Storage, e))
			}
			if e.IsDir {
				if err := walk(e.Path); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(loc.Path); err != nil {
		return nil, s.translate(err, "search", loc)
	}

	if items == nil {
		items = []files.Item{}
	}
	SortItems(items)
	return s.listing(loc, items), nil
}

// Open returns a reader over the file at loc together with its entry.
func (s *StorageManager) Open(ctx context.Context, loc Location) (io.ReadCloser, *storage.Entry, error) {
	fsys, err := s.backend(loc.Storage)
	if err != nil {
		return nil, nil, err
	}
	e, err := fsys.Stat(ctx, loc.Path)
	if err != nil {
		return nil, nil, s.translate(err, "open", loc)
	}
	if e.IsDir {
		return nil, nil, files.Errorf(files.KindNotFound, "not a file: %s", loc.Path)
	}
	rc, err := fsys.Open(ctx, loc.Path)
	if errors.Is(err, storage.ErrIsDir) {
		return nil, nil, files.Wrap(files.KindNotFound, err, "not a file: %s", loc.Path)
	}
	if err != nil {
		return nil, nil, s.translate(err, "open", loc)
	}
	return rc, e, nil
}

// CreateFolder makes directory name inside dir.
func (s *StorageManager) CreateFolder(ctx context.Context, dir Location, name string) error {
	p, err := JoinPath(dir.Path, name)
	if err != nil {
		return err
	}
	fsys, err := s.backend(dir.Storage)
	if err != nil {
		return err
	}
	target := Location{Storage: dir.Storage, Path: p}
	return s.translate(fsys.Mkdir(ctx, p), "mkdir", target)
}

// CreateFile makes an empty file name inside dir. Existing entries are left alone.
func (s *StorageManager) CreateFile(ctx context.Context, dir Location, name string) error {
	p, err := JoinPath(dir.Path, name)
	if err != nil {
		return err
	}
	fsys, err := s.backend(dir.Storage)
	if err != nil {
		return err
	}
	target := Location{Storage: dir.Storage, Path: p}
	if _, err := fsys.Stat(ctx, p); err == nil {
		return files.Errorf(files.KindConflict, "already exists: %s", p)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return s.translate(err, "newfile", target)
	}
	_, err = fsys.WriteFile(ctx, p, bytes.NewReader(nil))
	return s.translate(err, "newfile", target)
}

// Rename gives item a new name within its directory.
func (s *StorageManager) Rename(ctx context.Context, item Location, name string) error {
	if item.Path == "/" {
		return files.Errorf(files.KindInvalidPath, "cannot rename the storage root")
	}
	dst, err := JoinPath(path.Dir(item.Path), name)
	if err != nil {
		return err
	}
	if dst == item.Path {
		return nil
	}
	fsys, err := s.backend(item.Storage)
	if err != nil {
		return err
	}
	return s.translate(fsys.Move(ctx, item.Path, dst), "rename", item)
}

// Move relocates every item into destDir, stopping at the first failure.
func (s *StorageManager) Move(ctx context.Context, items []Location, destDir Location) error {
	return s.transfer(ctx, items, destDir, true)
}

// Copy duplicates every item into destDir, stopping at the first failure.
func (s *StorageManager) Copy(ctx context.Context, items []Location, destDir Location) error {
	return s.transfer(ctx, items, destDir, false)
}

func (s *StorageManager) transfer(ctx context.Context, items []Location, destDir Location, move bool) error {
	op := "copy"
	if move {
		op = "move"
	}

	dstFS, err := s.backend(destDir.Storage)
	if err != nil {
		return err
	}

	for _, src := range items {
		if src.Path == "/" {
			return files.Errorf(files.KindInvalidPath, "cannot %s the storage root", op)
		}
		srcFS, err := s.backend(src.Storage)
		if err != nil {
			return err
		}
		dst := Location{Storage: destDir.Storage, Path: path.Join(destDir.Path, path.Base(src.Path))}

		if src.Storage == dst.Storage {
			if dst.Path == src.Path {
				// already in destDir
				if _, err := srcFS.Stat(ctx, src.Path); err != nil {
					return s.translate(err, op, src)
				}
				if move {
					continue
				}
				return files.Errorf(files.KindConflict, "already exists: %s", dst.Path)
			}
			if storage.IsWithin(dst.Path, src.Path) {
				return files.Errorf(files.KindInvalidPath, "cannot %s %s into itself", op, src.Path)
			}
			if move {
				err = srcFS.Move(ctx, src.Path, dst.Path)
			} else {
				err = srcFS.Copy(ctx, src.Path, dst.Path)
			}
			if err != nil {
				return s.translate(err, op, blame(err, src, dst))
			}
			continue
		}

		if err := storage.Transfer(ctx, srcFS, src.Path, dstFS, dst.Path); err != nil {
			return s.translate(err, op, blame(err, src, dst))
		}
		if move {
			if err := srcFS.Remove(ctx, src.Path); err != nil {
				return s.translate(err, op, src)
			}
		}
	}
	return nil
}

// blame picks the side of a transfer an error message should name.
func blame(err error, src, dst Location) Location {
	if errors.Is(err, fs.ErrExist) {
		return dst
	}
	return src
}

// Delete removes every item, directories recursively, stopping at the first failure.
func (s *StorageManager) Delete(ctx context.Context, items []Location) error {
	for _, loc := range items {
		if loc.Path == "/" {
			return files.Errorf(files.KindInvalidPath, "cannot delete the storage root")
		}
		fsys, err := s.backend(loc.Storage)
		if err != nil {
			return err
		}
		if err := fsys.Remove(ctx, loc.Path); err != nil {
			return s.translate(err, "delete", loc)
		}
	}
	return nil
}

// Write creates or overwrites the file at loc.
func (s *StorageManager) Write(ctx context.Context, loc Location, r io.Reader) (int64, error) {
	if loc.Path == "/" {
		return 0, files.Errorf(files.KindInvalidPath, "cannot write to the storage root")
	}
	fsys, err := s.backend(loc.Storage)
	if err != nil {
		return 0, err
	}
	n, err := fsys.WriteFile(ctx, loc.Path, r)
	if err != nil {
		return 0, s.translate(err, "write", loc)
	}
	return n, nil
}

// SignedURL returns a direct download URL when the backend can sign one.
// ok is false for backends without that capability.
func (s *StorageManager) SignedURL(ctx context.Context, loc Location, ttl time.Duration) (string, bool, error) {
	fsys, err := s.backend(loc.Storage)
	if err != nil {
		return "", false, err
	}
	signer, ok := fsys.(storage.URLSigner)
	if !ok {
		return "", false, nil
	}
	if _, err := fsys.Stat(ctx, loc.Path); err != nil {
		return "", false, s.translate(err, "geturl", loc)
	}
	url, err := signer.SignedURL(ctx, loc.Path, ttl)
	if errors.Is(err, storage.ErrURLSigningUnsupported) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.translate(err, "geturl", loc)
	}
	return url, true, nil
}

// Zip packs the given files and directory trees into an archive. Each item
// lands at the archive root under its base name, numbered on collisions.
func (s *StorageManager) Zip(ctx context.Context, items []Location) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)
	used := make(map[string]bool, len(items))

	for _, loc := range items {
		fsys, err := s.backend(loc.Storage)
		if err != nil {
			return nil, err
		}
		e, err := fsys.Stat(ctx, loc.Path)
		if err != nil {
			return nil, s.translate(err, "download", loc)
		}
		base := e.Name
		if base == "" {
			base = loc.Storage
		}
		base = uniqueEntryName(used, base, e.IsDir)
		if err := addToZip(ctx, zipWriter, fsys, *e, base); err != nil {
			return nil, s.translate(err, "download", loc)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, files.Wrap(files.KindBackend, err, "finalize archive")
	}
	return buf, nil
}

// uniqueEntryName returns name, or "name (n)" when an earlier item already took it.
func uniqueEntryName(used map[string]bool, name string, isDir bool) string {
	candidate := name
	ext := ""
	if !isDir {
		ext = path.Ext(name)
	}
	stem := strings.TrimSuffix(name, ext)
	for i := 1; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
	used[candidate] = true
	return candidate
}

func addToZip(ctx context.Context, zw *zip.Writer, fsys storage.Filesystem, e storage.Entry, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.IsDir {
		if _, err := zw.Create(name + "/"); err != nil {
			return err
		}
		children, err := fsys.List(ctx, e.Path)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := addToZip(ctx, zw, fsys, child, name+"/"+child.Name); err != nil {
				return err
			}
		}
		return nil
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: e.ModTime,
	}
	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	rc, err := fsys.Open(ctx, e.Path)
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(writer, rc)
	return err
}
