package files

import (
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/sirupsen/logrus"
)

// upload writes every file part into dir. A form "name" renames the file
// when exactly one is sent. Existing files are overwritten.
func (h *Handler) upload(c *gin.Context, dir content.Location) error {
	form, err := c.MultipartForm()
	if err != nil {
		return files.Wrap(files.KindBadRequest, err, "invalid multipart body")
	}
	defer form.RemoveAll()

	var parts []*multipart.FileHeader
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		parts = append(parts, form.File[field]...)
	}
	if len(parts) == 0 {
		return files.Errorf(files.KindBadRequest, "no files in upload")
	}

	override := ""
	if names := form.Value["name"]; len(names) > 0 && len(parts) == 1 {
		override = names[0]
	}

	uploaded := make([]string, 0, len(parts))
	for _, part := range parts {
		name := override
		if name == "" {
			name = baseName(part.Filename)
		}
		target, err := content.JoinPath(dir.Path, name)
		if err != nil {
			return err
		}

		if err := h.writePart(c, content.Location{Storage: dir.Storage, Path: target}, part); err != nil {
			return err
		}
		uploaded = append(uploaded, target)
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"dir":        dir.String(),
		"files":      uploaded,
	}).Info("files: upload complete")

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "ok",
		"uploaded": uploaded,
	})
	return nil
}

func (h *Handler) writePart(c *gin.Context, loc content.Location, part *multipart.FileHeader) error {
	f, err := part.Open()
	if err != nil {
		return files.Wrap(files.KindBadRequest, err, "read upload %s", part.Filename)
	}
	defer f.Close()

	_, err = h.storageService.Write(c.Request.Context(), loc, f)
	return err
}

// baseName strips client directory components, either separator style.
func baseName(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}
	return filename
}
