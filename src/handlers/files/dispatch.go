package files

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/sirupsen/logrus"
)

// Dispatch godoc
// @Summary File-manager endpoint
// @Description Runs the action named by q against the selected storage. Read actions use GET, mutating actions use POST.
// @Tags Files
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param storage path string false "Storage name"
// @Param q query string true "Action" Enums(index, search, subfolders, preview, download, geturl, newfolder, createFolder, newfile, rename, move, copy, delete, upload, save, archive, unarchive)
// @Param adapter query string false "Storage name when not given in the path"
// @Param path query string false "Directory or file path, optionally qualified as storage://path"
// @Param filter query string false "Search filter (substring or glob)"
// @Success 200 {object} listingResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 501 {object} errorResponse
// @Router /api/{storage} [get]
// @Router /api/{storage} [post]
func (h *Handler) Dispatch(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	name, err := h.selectStorage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Set("storage", name)

	action := files.Action(c.Query("q"))
	handle, ok := h.actions[action]
	if !ok || action.Method() != c.Request.Method {
		h.respondError(c, files.Errorf(files.KindUnsupportedAction, "unsupported action %q for %s", c.Query("q"), c.Request.Method))
		return
	}

	dir, err := content.ResolvePath(c.Query("path"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if c.Request.Method == http.MethodPost {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes)
	}

	if err := handle(c, content.Location{Storage: name, Path: dir}); err != nil {
		h.respondError(c, err)
	}
}

// selectStorage picks the storage from the path segment, then the adapter
// query parameter, then the registry default.
func (h *Handler) selectStorage(c *gin.Context) (string, error) {
	registry := h.storageService.Registry()

	name := c.Param("storage")
	if name == "" {
		name = c.Query("adapter")
	}
	if name == "" {
		def, _, err := registry.Default()
		return def, err
	}
	if _, err := registry.Get(name); err != nil {
		return "", err
	}
	return name, nil
}

type errorResponse struct {
	Status    string `json:"status" example:"error"`
	Code      string `json:"code" example:"NotFoundError"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type listingResponse struct {
	Status string `json:"status" example:"success"`
	*files.Listing
}

func (h *Handler) respondError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = files.Wrap(files.KindBadRequest, err, "request body exceeds %d bytes", tooLarge.Limit)
	}

	kind := files.KindOf(err)
	status := kind.HTTPStatus()

	entry := h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"action":     c.Query("q"),
		"storage":    c.GetString("storage"),
		"status":     status,
		"code":       string(kind),
	}).WithError(err)
	if status >= http.StatusInternalServerError && kind != files.KindNotImplemented {
		entry.Error("files: request failed")
	} else {
		entry.Warn("files: request failed")
	}

	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Status:    "error",
		Code:      string(kind),
		Message:   files.MessageOf(err),
		RequestID: requestID,
	})
}

func respondListing(c *gin.Context, listing *files.Listing) {
	c.JSON(http.StatusOK, listingResponse{Status: "success", Listing: listing})
}
