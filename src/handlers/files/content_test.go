package files

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/nas-ai/filemanager/src/drivers/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := map[string]string{}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			out[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(body)
	}
	return out
}

func TestPreview(t *testing.T) {
	env := setupFilesTest(t, Options{})

	w := env.do(t, http.MethodGet, "/api/m1?q=preview&path=foo/file.txt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello World!", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=file.txt", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestPreview_SniffsUnknownExtension(t *testing.T) {
	env := setupFilesTest(t, Options{})
	require.NoError(t, storage.Fill(context.Background(), env.m1, "/", storage.Tree{
		"scan": "%PDF-1.4\n%binary",
	}))

	w := env.do(t, http.MethodGet, "/api/m1?q=preview&path=scan", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4\n%binary", w.Body.String())
}

func TestPreview_Errors(t *testing.T) {
	env := setupFilesTest(t, Options{})

	body := decodeError(t, env.do(t, http.MethodGet, "/api/m1?q=preview&path=foo/nope.txt", nil, ""), http.StatusNotFound)
	assert.Equal(t, "NotFoundError", body.Code)

	// directories cannot be previewed
	body = decodeError(t, env.do(t, http.MethodGet, "/api/m1?q=preview&path=foo", nil, ""), http.StatusNotFound)
	assert.Equal(t, "NotFoundError", body.Code)
	assert.Equal(t, "not a file: /foo", body.Message)
}

func TestDownload_SingleFile(t *testing.T) {
	env := setupFilesTest(t, Options{})

	w := env.do(t, http.MethodGet, "/api/m1?q=download&path=foo/file.txt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello World!", w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=file.txt", w.Header().Get("Content-Disposition"))
}

func TestDownload_DirectoryNotFound(t *testing.T) {
	env := setupFilesTest(t, Options{})

	body := decodeError(t, env.do(t, http.MethodGet, "/api/m1?q=download&path=foo", nil, ""), http.StatusNotFound)
	assert.Equal(t, "NotFoundError", body.Code)

	body = decodeError(t, env.do(t, http.MethodGet, "/api/m1?q=download&path=foo/missing.txt", nil, ""), http.StatusNotFound)
	assert.Equal(t, "NotFoundError", body.Code)
}

func TestDownload_SeveralPathsWithDirectory(t *testing.T) {
	env := setupFilesTest(t, Options{})
	require.NoError(t, storage.Fill(context.Background(), env.m1, "/", storage.Tree{"top.txt": "top"}))

	w := env.do(t, http.MethodGet, "/api/m1?q=download&path=foo&path=top.txt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=download.zip", w.Header().Get("Content-Disposition"))

	entries := unzip(t, w.Body.Bytes())
	assert.Equal(t, "Hello World!", entries["foo/file.txt"])
	assert.Equal(t, "top", entries["top.txt"])
}

func TestDownload_SeveralPaths(t *testing.T) {
	env := setupFilesTest(t, Options{})
	require.NoError(t, storage.Fill(context.Background(), env.m2, "/", storage.Tree{"other.txt": "from m2"}))

	w := env.do(t, http.MethodGet, "/api/m1?q=download&path=foo/file.txt&path=m2://other.txt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	entries := unzip(t, w.Body.Bytes())
	assert.Equal(t, map[string]string{
		"file.txt":  "Hello World!",
		"other.txt": "from m2",
	}, entries)
}

func TestGetURL_FallsBackToPreview(t *testing.T) {
	env := setupFilesTest(t, Options{})

	w := env.do(t, http.MethodGet, "/api/m1?q=geturl&path=foo/file.txt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		URL    string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)

	u, err := url.Parse(body.URL)
	require.NoError(t, err)
	assert.Equal(t, "/api/m1", u.Path)
	assert.Equal(t, "preview", u.Query().Get("q"))
	assert.Equal(t, "m1", u.Query().Get("adapter"))
	assert.Equal(t, "m1://foo/file.txt", u.Query().Get("path"))

	decodeError(t, env.do(t, http.MethodGet, "/api/m1?q=geturl&path=nope", nil, ""), http.StatusNotFound)
}

func TestSave(t *testing.T) {
	env := setupFilesTest(t, Options{})

	w := env.postJSON(t, "/api/m1?q=save&path=foo/file.txt", map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "edited", w.Body.String())

	w = env.do(t, http.MethodPost, "/api/m1?q=save&path=foo/raw.txt", strings.NewReader("raw body"), "text/plain")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "raw body", readFile(t, env.m1, "/foo/raw.txt"))

	w = env.postJSON(t, "/api/m1?q=save&path=foo/file.txt", map[string]string{})
	decodeError(t, w, http.StatusBadRequest)

	w = env.postJSON(t, "/api/m1?q=save&path=missing/file.txt", map[string]string{"content": "x"})
	decodeError(t, w, http.StatusNotFound)
}

func readFile(t *testing.T, fsys storage.Filesystem, p string) string {
	t.Helper()
	rc, err := fsys.Open(context.Background(), p)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
