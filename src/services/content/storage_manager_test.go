package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/drivers/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) (*StorageManager, *Registry) {
	t.Helper()
	ctx := context.Background()

	m1 := storage.NewMemoryStore()
	require.NoError(t, storage.Fill(ctx, m1, "/", storage.Tree{
		"foo": storage.Tree{
			"file.txt": "Hello World!",
			"Notes.md": "# notes",
			"sub":      storage.Tree{"deep.txt": "deep"},
		},
		"bar":     storage.Tree{},
		"top.log": "log line",
	}))
	m2 := storage.NewMemoryStore()

	registry := NewRegistry()
	require.NoError(t, registry.Add("m1", m1))
	require.NoError(t, registry.Add("m2", m2))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStorageManager(registry, logger), registry
}

func loc(storageName, p string) Location {
	return Location{Storage: storageName, Path: p}
}

func readLoc(t *testing.T, svc *StorageManager, l Location) string {
	t.Helper()
	rc, _, err := svc.Open(context.Background(), l)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func basenames(items []files.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Basename)
	}
	return out
}

func TestStorageManager_Index(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	listing, err := svc.Index(ctx, loc("m1", "/foo"))
	require.NoError(t, err)

	assert.Equal(t, "m1", listing.Adapter)
	assert.Equal(t, []string{"m1", "m2"}, listing.Storages)
	assert.Equal(t, "m1://foo", listing.Dirname)
	assert.Len(t, listing.Breadcrumbs, 2)
	assert.Equal(t, []string{"sub", "file.txt", "Notes.md"}, basenames(listing.Files))

	file := listing.Files[1]
	assert.Equal(t, "/foo/file.txt", file.Path)
	assert.Equal(t, int64(12), *file.FileSize)

	_, err = svc.Index(ctx, loc("m1", "/missing"))
	assert.ErrorIs(t, err, files.ErrNotFound)

	_, err = svc.Index(ctx, loc("m1", "/top.log"))
	assert.ErrorIs(t, err, files.ErrBadRequest)

	_, err = svc.Index(ctx, loc("doesnotexist", "/"))
	assert.ErrorIs(t, err, files.ErrUnknownStorage)
}

func TestStorageManager_Subfolders(t *testing.T) {
	svc, _ := setupManager(t)

	folders, err := svc.Subfolders(context.Background(), loc("m1", "/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"bar", "foo"}, basenames(folders))
}

func TestStorageManager_Search(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	t.Run("substring is case insensitive and recursive", func(t *testing.T) {
		listing, err := svc.Search(ctx, loc("m1", "/"), "NOTE")
		require.NoError(t, err)
		assert.Equal(t, []string{"Notes.md"}, basenames(listing.Files))
	})

	t.Run("glob matches names", func(t *testing.T) {
		listing, err := svc.Search(ctx, loc("m1", "/"), "*.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{"deep.txt", "file.txt"}, basenames(listing.Files))
	})

	t.Run("glob matches relative paths", func(t *testing.T) {
		listing, err := svc.Search(ctx, loc("m1", "/foo"), "sub/**")
		require.NoError(t, err)
		assert.Contains(t, basenames(listing.Files), "deep.txt")
	})

	t.Run("empty filter lists everything", func(t *testing.T) {
		listing, err := svc.Search(ctx, loc("m1", "/foo"), "")
		require.NoError(t, err)
		assert.Len(t, listing.Files, 4)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		listing, err := svc.Search(ctx, loc("m1", "/"), "nothing-here")
		require.NoError(t, err)
		assert.NotNil(t, listing.Files)
		assert.Empty(t, listing.Files)
	})

	t.Run("invalid glob", func(t *testing.T) {
		_, err := svc.Search(ctx, loc("m1", "/"), "[abc")
		assert.ErrorIs(t, err, files.ErrBadRequest)
	})
}

func TestStorageManager_Open(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	assert.Equal(t, "Hello World!", readLoc(t, svc, loc("m1", "/foo/file.txt")))

	_, _, err := svc.Open(ctx, loc("m1", "/foo"))
	assert.ErrorIs(t, err, files.ErrNotFound)
	_, _, err = svc.Open(ctx, loc("m1", "/nope.txt"))
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestStorageManager_CreateFolderAndFile(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateFolder(ctx, loc("m1", "/bar"), "new"))
	e, err := svc.Stat(ctx, loc("m1", "/bar/new"))
	require.NoError(t, err)
	assert.True(t, e.IsDir)

	assert.ErrorIs(t, svc.CreateFolder(ctx, loc("m1", "/"), "foo"), files.ErrConflict)
	assert.ErrorIs(t, svc.CreateFolder(ctx, loc("m1", "/"), "../x"), files.ErrInvalidPath)
	assert.ErrorIs(t, svc.CreateFolder(ctx, loc("m1", "/missing"), "x"), files.ErrNotFound)

	require.NoError(t, svc.CreateFile(ctx, loc("m1", "/bar"), "empty.txt"))
	assert.Equal(t, "", readLoc(t, svc, loc("m1", "/bar/empty.txt")))

	err = svc.CreateFile(ctx, loc("m1", "/foo"), "file.txt")
	assert.ErrorIs(t, err, files.ErrConflict)
	assert.Equal(t, "Hello World!", readLoc(t, svc, loc("m1", "/foo/file.txt")))
}

func TestStorageManager_Rename(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, svc.Rename(ctx, loc("m1", "/foo/file.txt"), "renamed.txt"))
	assert.Equal(t, "Hello World!", readLoc(t, svc, loc("m1", "/foo/renamed.txt")))

	_, err := svc.Stat(ctx, loc("m1", "/foo/file.txt"))
	assert.ErrorIs(t, err, files.ErrNotFound)

	// same name is a no-op
	require.NoError(t, svc.Rename(ctx, loc("m1", "/foo/renamed.txt"), "renamed.txt"))

	assert.ErrorIs(t, svc.Rename(ctx, loc("m1", "/foo/Notes.md"), "sub"), files.ErrConflict)
	assert.ErrorIs(t, svc.Rename(ctx, loc("m1", "/"), "x"), files.ErrInvalidPath)
	assert.ErrorIs(t, svc.Rename(ctx, loc("m1", "/foo/Notes.md"), "a/b"), files.ErrInvalidPath)
	assert.ErrorIs(t, svc.Rename(ctx, loc("m1", "/ghost"), "x"), files.ErrNotFound)
}

func TestStorageManager_MoveWithinStorage(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	err := svc.Move(ctx, []Location{loc("m1", "/foo/file.txt"), loc("m1", "/top.log")}, loc("m1", "/bar"))
	require.NoError(t, err)

	assert.Equal(t, "Hello World!", readLoc(t, svc, loc("m1", "/bar/file.txt")))
	assert.Equal(t, "log line", readLoc(t, svc, loc("m1", "/bar/top.log")))
	_, err = svc.Stat(ctx, loc("m1", "/top.log"))
	assert.ErrorIs(t, err, files.ErrNotFound)

	err = svc.Move(ctx, []Location{loc("m1", "/foo")}, loc("m1", "/foo/sub"))
	assert.ErrorIs(t, err, files.ErrInvalidPath)

	err = svc.Move(ctx, []Location{loc("m1", "/")}, loc("m1", "/bar"))
	assert.ErrorIs(t, err, files.ErrInvalidPath)

	// into its own parent
	require.NoError(t, svc.Move(ctx, []Location{loc("m1", "/bar/file.txt")}, loc("m1", "/bar")))
	assert.Equal(t, "Hello World!", readLoc(t, svc, loc("m1", "/bar/file.txt")))
	err = svc.Copy(ctx, []Location{loc("m1", "/bar/file.txt")}, loc("m1", "/bar"))
	assert.ErrorIs(t, err, files.ErrConflict)
	err = svc.Move(ctx, []Location{loc("m1", "/bar/ghost.txt")}, loc("m1", "/bar"))
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestStorageManager_CopyAcrossStorages(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, svc.Copy(ctx, []Location{loc("m1", "/foo")}, loc("m2", "/")))
	assert.Equal(t, "deep", readLoc(t, svc, loc("m2", "/foo/sub/deep.txt")))
	assert.Equal(t, "Hello World!", readLoc(t, svc, loc("m1", "/foo/file.txt")))

	err := svc.Copy(ctx, []Location{loc("m1", "/foo")}, loc("m2", "/"))
	require.ErrorIs(t, err, files.ErrConflict)
	assert.Contains(t, files.MessageOf(err), "/foo")
}

func TestStorageManager_MoveAcrossStorages(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, svc.Move(ctx, []Location{loc("m1", "/top.log")}, loc("m2", "/")))
	assert.Equal(t, "log line", readLoc(t, svc, loc("m2", "/top.log")))

	_, err := svc.Stat(ctx, loc("m1", "/top.log"))
	assert.ErrorIs(t, err, files.ErrNotFound)

	err = svc.Move(ctx, []Location{loc("m1", "/ghost")}, loc("m2", "/"))
	assert.ErrorIs(t, err, files.ErrNotFound)

	err = svc.Move(ctx, []Location{loc("m1", "/foo")}, loc("nowhere", "/"))
	assert.ErrorIs(t, err, files.ErrUnknownStorage)
}

func TestStorageManager_Delete(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, []Location{loc("m1", "/foo"), loc("m1", "/top.log")}))
	_, err := svc.Stat(ctx, loc("m1", "/foo/sub/deep.txt"))
	assert.ErrorIs(t, err, files.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, []Location{loc("m1", "/missing")}), files.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, []Location{loc("m1", "/")}), files.ErrInvalidPath)
}

func TestStorageManager_ReadOnlyStorage(t *testing.T) {
	ctx := context.Background()
	ro := storage.NewMemoryStore()
	require.NoError(t, storage.Fill(ctx, ro, "/", storage.Tree{"a.txt": "a"}))

	registry := NewRegistry()
	require.NoError(t, registry.Add("ro", storage.WithReadOnly(ro)))
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewStorageManager(registry, logger)

	assert.ErrorIs(t, svc.Delete(ctx, []Location{loc("ro", "/a.txt")}), files.ErrReadOnly)
	assert.ErrorIs(t, svc.CreateFolder(ctx, loc("ro", "/"), "x"), files.ErrReadOnly)
	_, err := svc.Write(ctx, loc("ro", "/b.txt"), strings.NewReader("b"))
	assert.ErrorIs(t, err, files.ErrReadOnly)
	assert.Equal(t, files.KindReadOnly.HTTPStatus(), 403)
}

type failingFS struct {
	storage.Filesystem
}

func (failingFS) List(context.Context, string) ([]storage.Entry, error) {
	return nil, errors.New("disk on fire")
}

func TestStorageManager_BackendErrorsAreWrapped(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Add("bad", failingFS{storage.NewMemoryStore()}))
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewStorageManager(registry, logger)

	_, err := svc.Index(context.Background(), loc("bad", "/"))
	require.ErrorIs(t, err, files.ErrBackend)
	assert.NotContains(t, files.MessageOf(err), "disk on fire")
}

func TestStorageManager_Write(t *testing.T) {
	svc, _ := setupManager(t)
	ctx := context.Background()

	n, err := svc.Write(ctx, loc("m1", "/foo/file.txt"), strings.NewReader("updated"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "updated", readLoc(t, svc, loc("m1", "/foo/file.txt")))

	_, err = svc.Write(ctx, loc("m1", "/"), strings.NewReader("x"))
	assert.ErrorIs(t, err, files.ErrInvalidPath)
	_, err = svc.Write(ctx, loc("m1", "/foo"), strings.NewReader("x"))
	assert.ErrorIs(t, err, files.ErrBadRequest)
}

func TestStorageManager_SignedURL(t *testing.T) {
	svc, _ := setupManager(t)

	url, ok, err := svc.SignedURL(context.Background(), loc("m1", "/foo/file.txt"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)
}

func zipContents(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := map[string]string{}
	for _, f := range zr.File {
		require.NotContains(t, contents, f.Name, "duplicate entry")
		if strings.HasSuffix(f.Name, "/") {
			contents[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = string(data)
	}
	return contents
}

func TestStorageManager_Zip(t *testing.T) {
	svc, _ := setupManager(t)

	buf, err := svc.Zip(context.Background(), []Location{loc("m1", "/foo"), loc("m1", "/top.log")})
	require.NoError(t, err)

	contents := zipContents(t, buf)
	assert.Equal(t, "Hello World!", contents["foo/file.txt"])
	assert.Equal(t, "deep", contents["foo/sub/deep.txt"])
	assert.Equal(t, "log line", contents["top.log"])
	assert.Contains(t, contents, "foo/sub/")

	_, err = svc.Zip(context.Background(), []Location{loc("m1", "/ghost")})
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestStorageManager_ZipNumbersDuplicateNames(t *testing.T) {
	svc, registry := setupManager(t)
	ctx := context.Background()
	m2, err := registry.Get("m2")
	require.NoError(t, err)
	require.NoError(t, storage.Fill(ctx, m2, "/", storage.Tree{
		"file.txt": "from m2",
		"foo":      storage.Tree{"other.txt": "other"},
	}))
	_, err = svc.Write(ctx, loc("m1", "/bar/file.txt"), strings.NewReader("from bar"))
	require.NoError(t, err)

	buf, err := svc.Zip(ctx, []Location{
		loc("m1", "/foo/file.txt"),
		loc("m1", "/bar/file.txt"),
		loc("m2", "/file.txt"),
		loc("m1", "/foo"),
		loc("m2", "/foo"),
	})
	require.NoError(t, err)

	contents := zipContents(t, buf)
	assert.Equal(t, "Hello World!", contents["file.txt"])
	assert.Equal(t, "from bar", contents["file (1).txt"])
	assert.Equal(t, "from m2", contents["file (2).txt"])
	assert.Equal(t, "deep", contents["foo/sub/deep.txt"])
	assert.Equal(t, "other", contents["foo (1)/other.txt"])
}

func TestUniqueEntryName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "a.tar.gz", uniqueEntryName(used, "a.tar.gz", false))
	assert.Equal(t, "a.tar (1).gz", uniqueEntryName(used, "a.tar.gz", false))
	assert.Equal(t, "v1.2", uniqueEntryName(used, "v1.2", true))
	assert.Equal(t, "v1.2 (1)", uniqueEntryName(used, "v1.2", true))
}
