package files

import (
	"github.com/gin-gonic/gin"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/sirupsen/logrus"
)

// refresh answers a mutating action with the new listing of dir.
func (h *Handler) refresh(c *gin.Context, dir content.Location) error {
	return h.index(c, dir)
}

func (h *Handler) logMutation(c *gin.Context, fields logrus.Fields) {
	fields["request_id"] = c.GetString("request_id")
	fields["action"] = c.Query("q")
	h.logger.WithFields(fields).Info("files: mutation applied")
}

func (h *Handler) newFolder(c *gin.Context, dir content.Location) error {
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	if err := h.storageService.CreateFolder(c.Request.Context(), dir, p.Name); err != nil {
		return err
	}
	h.logMutation(c, logrus.Fields{"dir": dir.String(), "name": p.Name})
	return h.refresh(c, dir)
}

func (h *Handler) newFile(c *gin.Context, dir content.Location) error {
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	if err := h.storageService.CreateFile(c.Request.Context(), dir, p.Name); err != nil {
		return err
	}
	h.logMutation(c, logrus.Fields{"dir": dir.String(), "name": p.Name})
	return h.refresh(c, dir)
}

func (h *Handler) rename(c *gin.Context, dir content.Location) error {
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	if p.Item == "" {
		return files.Errorf(files.KindBadRequest, "item is required")
	}
	item, err := content.ParseLocation(p.Item, dir.Storage)
	if err != nil {
		return err
	}
	if err := h.storageService.Rename(c.Request.Context(), item, p.Name); err != nil {
		return err
	}
	h.logMutation(c, logrus.Fields{"item": item.String(), "name": p.Name})
	return h.refresh(c, dir)
}

func (h *Handler) move(c *gin.Context, dir content.Location) error {
	return h.transfer(c, dir, true)
}

func (h *Handler) copy(c *gin.Context, dir content.Location) error {
	return h.transfer(c, dir, false)
}

// transfer reads {item: destination directory, items: [{path}]}.
func (h *Handler) transfer(c *gin.Context, dir content.Location, move bool) error {
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	if p.Item == "" {
		return files.Errorf(files.KindBadRequest, "item is required")
	}
	dest, err := content.ParseLocation(p.Item, dir.Storage)
	if err != nil {
		return err
	}
	items, err := p.locations(dir.Storage)
	if err != nil {
		return err
	}

	if move {
		err = h.storageService.Move(c.Request.Context(), items, dest)
	} else {
		err = h.storageService.Copy(c.Request.Context(), items, dest)
	}
	if err != nil {
		return err
	}
	h.logMutation(c, logrus.Fields{"destination": dest.String(), "count": len(items)})
	return h.refresh(c, dir)
}

func (h *Handler) delete(c *gin.Context, dir content.Location) error {
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	items, err := p.locations(dir.Storage)
	if err != nil {
		return err
	}
	if err := h.storageService.Delete(c.Request.Context(), items); err != nil {
		return err
	}
	h.logMutation(c, logrus.Fields{"count": len(items)})
	return h.refresh(c, dir)
}

func (h *Handler) archive(c *gin.Context, _ content.Location) error {
	return files.Errorf(files.KindNotImplemented, "%s is not implemented", c.Query("q"))
}
