package files

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/sirupsen/logrus"
)

// Options tunes request limits of the files handler.
type Options struct {
	// MaxBodyBytes caps POST bodies, uploads included.
	MaxBodyBytes int64
	// URLExpiry is the lifetime of presigned URLs returned by geturl.
	URLExpiry time.Duration
}

// actionFunc serves one action for the selected storage. dir is the resolved
// "path" query parameter bound to that storage.
type actionFunc func(c *gin.Context, dir content.Location) error

// Handler holds dependencies for files handlers
type Handler struct {
	storageService *content.StorageManager
	opts           Options
	logger         *logrus.Logger
	actions        map[files.Action]actionFunc
}

// NewHandler creates a new Files Handler
func NewHandler(storageService *content.StorageManager, opts Options, logger *logrus.Logger) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 100 << 20
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = 15 * time.Minute
	}

	h := &Handler{
		storageService: storageService,
		opts:           opts,
		logger:         logger,
	}
	h.actions = map[files.Action]actionFunc{
		files.ActionIndex:        h.index,
		files.ActionSearch:       h.search,
		files.ActionSubfolders:   h.subfolders,
		files.ActionPreview:      h.preview,
		files.ActionDownload:     h.download,
		files.ActionGetURL:       h.getURL,
		files.ActionNewFolder:    h.newFolder,
		files.ActionCreateFolder: h.newFolder,
		files.ActionNewFile:      h.newFile,
		files.ActionRename:       h.rename,
		files.ActionMove:         h.move,
		files.ActionCopy:         h.copy,
		files.ActionDelete:       h.delete,
		files.ActionUpload:       h.upload,
		files.ActionSave:         h.save,
		files.ActionArchive:      h.archive,
		files.ActionUnarchive:    h.archive,
	}
	return h
}

// RegisterRoutes mounts the file-manager endpoint. The storage is taken from
// the optional path segment.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Any("", h.Dispatch)
	rg.Any("/:storage", h.Dispatch)
}
