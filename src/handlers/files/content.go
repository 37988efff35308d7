package files

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/sirupsen/logrus"
)

// sniffLen is how much of a file is inspected when its extension is unknown.
const sniffLen = 3072

func contentDisposition(kind, name string) string {
	if v := mime.FormatMediaType(kind, map[string]string{"filename": name}); v != "" {
		return v
	}
	return kind
}

// preview streams the file inline.
func (h *Handler) preview(c *gin.Context, loc content.Location) error {
	rc, entry, err := h.storageService.Open(c.Request.Context(), loc)
	if err != nil {
		return err
	}
	defer rc.Close()

	var body io.Reader = rc
	contentType := content.MimeTypeOf(entry.Name)
	if contentType == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(rc, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return files.Wrap(files.KindBackend, err, "read %s", loc.Path)
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), rc)
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, entry.Size, contentType, body, map[string]string{
		"Content-Disposition": contentDisposition("inline", entry.Name),
	})
	return nil
}

// download sends a single file as an attachment. Several paths are sent as
// one ZIP archive, directories included.
func (h *Handler) download(c *gin.Context, loc content.Location) error {
	ctx := c.Request.Context()
	rawPaths := c.QueryArray("path")

	if len(rawPaths) <= 1 {
		rc, entry, err := h.storageService.Open(ctx, loc)
		if err != nil {
			return err
		}
		defer rc.Close()

		c.DataFromReader(http.StatusOK, entry.Size, "application/octet-stream", rc, map[string]string{
			"Content-Disposition": contentDisposition("attachment", entry.Name),
		})
		return nil
	}

	locs := make([]content.Location, 0, len(rawPaths))
	for _, raw := range rawPaths {
		l, err := content.ParseLocation(raw, loc.Storage)
		if err != nil {
			return err
		}
		locs = append(locs, l)
	}

	buf, err := h.storageService.Zip(ctx, locs)
	if err != nil {
		return err
	}
	c.Header("Content-Disposition", contentDisposition("attachment", "download.zip"))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
	return nil
}

// getURL returns a presigned URL when the backend can sign one, else the
// preview URL of this endpoint.
func (h *Handler) getURL(c *gin.Context, loc content.Location) error {
	signed, ok, err := h.storageService.SignedURL(c.Request.Context(), loc, h.opts.URLExpiry)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := h.storageService.Stat(c.Request.Context(), loc); err != nil {
			return err
		}
		signed = previewURL(c, loc)
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"url":    signed,
	})
	return nil
}

func previewURL(c *gin.Context, loc content.Location) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	query := url.Values{}
	query.Set("q", string(files.ActionPreview))
	query.Set("adapter", loc.Storage)
	query.Set("path", loc.String())

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

type saveRequest struct {
	Content *string `json:"content"`
}

// save overwrites the file with a JSON {content} body or the raw body, then
// answers like preview.
func (h *Handler) save(c *gin.Context, loc content.Location) error {
	var body io.Reader = c.Request.Body
	if c.ContentType() == binding.MIMEJSON {
		var req saveRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			return files.Wrap(files.KindBadRequest, err, "invalid request payload")
		}
		if req.Content == nil {
			return files.Errorf(files.KindBadRequest, "content is required")
		}
		body = bytes.NewBufferString(*req.Content)
	}

	n, err := h.storageService.Write(c.Request.Context(), loc, body)
	if err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       loc.String(),
		"bytes":      n,
	}).Info("files: saved")

	return h.preview(c, loc)
}
