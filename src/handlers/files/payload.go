package files

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/services/content"
)

type itemRef struct {
	Path string `json:"path"`
}

// actionPayload is the body of the mutating actions. Form bodies can carry
// name and item only.
type actionPayload struct {
	Name  string    `json:"name" form:"name"`
	Item  string    `json:"item" form:"item"`
	Items []itemRef `json:"items" form:"-"`
}

func bindPayload(c *gin.Context) (*actionPayload, error) {
	var p actionPayload

	var err error
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		err = c.ShouldBindWith(&p, binding.Form)
	default:
		err = c.ShouldBindJSON(&p)
	}
	if err != nil {
		return nil, files.Wrap(files.KindBadRequest, err, "invalid request payload")
	}
	return &p, nil
}

// locations resolves the items of a payload; unqualified paths belong to fallback.
func (p *actionPayload) locations(fallback string) ([]content.Location, error) {
	if len(p.Items) == 0 {
		return nil, files.Errorf(files.KindBadRequest, "items is required")
	}
	locs := make([]content.Location, 0, len(p.Items))
	for _, item := range p.Items {
		loc, err := content.ParseLocation(item.Path, fallback)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
