package files

import "net/http"

// Action is the value of the "q" query parameter selecting an operation.
type Action string

const (
	ActionIndex        Action = "index"
	ActionSearch       Action = "search"
	ActionSubfolders   Action = "subfolders"
	ActionPreview      Action = "preview"
	ActionDownload     Action = "download"
	ActionGetURL       Action = "geturl"
	ActionNewFolder    Action = "newfolder"
	ActionCreateFolder Action = "createFolder" // alias of newfolder
	ActionNewFile      Action = "newfile"
	ActionRename       Action = "rename"
	ActionMove         Action = "move"
	ActionCopy         Action = "copy"
	ActionDelete       Action = "delete"
	ActionUpload       Action = "upload"
	ActionSave         Action = "save"
	ActionArchive      Action = "archive"
	ActionUnarchive    Action = "unarchive"
)

// Method returns the HTTP method the action must be called with.
func (a Action) Method() string {
	switch a {
	case ActionIndex, ActionSearch, ActionSubfolders, ActionPreview, ActionDownload, ActionGetURL:
		return http.MethodGet
	}
	return http.MethodPost
}

// IsValid checks if the action is one of the supported values.
func (a Action) IsValid() bool {
	switch a {
	case ActionIndex, ActionSearch, ActionSubfolders, ActionPreview, ActionDownload, ActionGetURL,
		ActionNewFolder, ActionCreateFolder, ActionNewFile, ActionRename, ActionMove, ActionCopy,
		ActionDelete, ActionUpload, ActionSave, ActionArchive, ActionUnarchive:
		return true
	}
	return false
}
