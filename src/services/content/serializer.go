package content

import (
	"mime"
	"path"
	"sort"
	"strings"

	"github.com/nas-ai/filemanager/src/domain/files"
	"github.com/nas-ai/filemanager/src/drivers/storage"
)

const defaultMimeType = "application/octet-stream"

// MimeTypeOf guesses the content type from the file extension.
func MimeTypeOf(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return defaultMimeType
}

func extensionOf(name string) string {
	ext := path.Ext(name)
	if ext == name {
		return "" // dotfile without extension
	}
	return strings.TrimPrefix(ext, ".")
}

func visibilityOf(p string) files.Visibility {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return files.VisibilityPrivate
		}
	}
	return files.VisibilityPublic
}

// NewItem serializes a backend entry of storageName.
func NewItem(storageName string, e storage.Entry) files.Item {
	item := files.Item{
		Type:          files.ItemFile,
		Path:          e.Path,
		Storage:       storageName,
		Basename:      e.Name,
		Visibility:    visibilityOf(e.Path),
		ExtraMetadata: []string{},
	}
	if !e.ModTime.IsZero() {
		ts := e.ModTime.Unix()
		item.LastModified = &ts
	}
	if e.IsDir {
		item.Type = files.ItemDir
		return item
	}

	size := e.Size
	mimeType := MimeTypeOf(e.Name)
	item.Extension = extensionOf(e.Name)
	item.MimeType = &mimeType
	item.Size = &size
	item.FileSize = &size
	return item
}

// SortItems orders directories first, then by case-insensitive name.
func SortItems(items []files.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir() != items[j].IsDir() {
			return items[i].IsDir()
		}
		a, b := strings.ToLower(items[i].Basename), strings.ToLower(items[j].Basename)
		if a != b {
			return a < b
		}
		return items[i].Path < items[j].Path
	})
}

// Breadcrumbs lists the storage root followed by every ancestor of dir.
func Breadcrumbs(storageName, dir string) []files.Breadcrumb {
	crumbs := []files.Breadcrumb{{Name: storageName, Path: Location{Storage: storageName, Path: "/"}.String()}}
	current := "/"
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" {
			continue
		}
		current = path.Join(current, seg)
		crumbs = append(crumbs, files.Breadcrumb{
			Name: seg,
			Path: Location{Storage: storageName, Path: current}.String(),
		})
	}
	return crumbs
}
