package files

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/services/content"
)

func (h *Handler) index(c *gin.Context, dir content.Location) error {
	listing, err := h.storageService.Index(c.Request.Context(), dir)
	if err != nil {
		return err
	}
	respondListing(c, listing)
	return nil
}

func (h *Handler) search(c *gin.Context, dir content.Location) error {
	listing, err := h.storageService.Search(c.Request.Context(), dir, c.Query("filter"))
	if err != nil {
		return err
	}
	respondListing(c, listing)
	return nil
}

func (h *Handler) subfolders(c *gin.Context, dir content.Location) error {
	folders, err := h.storageService.Subfolders(c.Request.Context(), dir)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"folders": folders,
	})
	return nil
}
