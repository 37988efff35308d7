package files

// ItemType distinguishes files from directories in listings.
type ItemType string

const (
	ItemFile ItemType = "file"
	ItemDir  ItemType = "dir"
)

// Visibility is derived from the hidden-file naming convention.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Item is one file or directory entry as the file-manager frontend expects it.
// Pointer fields serialize as null for directories.
type Item struct {
	Type          ItemType   `json:"type"`
	Path          string     `json:"path"` // storage-relative, e.g. /foo/file.txt
	Storage       string     `json:"storage"`
	Basename      string     `json:"basename"`
	Extension     string     `json:"extension"`
	Visibility    Visibility `json:"visibility"`
	MimeType      *string    `json:"mime_type"`
	Size          *int64     `json:"size"`
	FileSize      *int64     `json:"file_size"`
	LastModified  *int64     `json:"last_modified"`
	ExtraMetadata []string   `json:"extra_metadata"`
}

// IsDir reports whether the item is a directory.
func (i Item) IsDir() bool { return i.Type == ItemDir }

// Breadcrumb is one step of the path shown above a listing.
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Listing is the payload of index, search and the mutating actions.
type Listing struct {
	Adapter     string       `json:"adapter"`
	Storages    []string     `json:"storages"`
	Dirname     string       `json:"dirname"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
	Files       []Item       `json:"files"`
}
