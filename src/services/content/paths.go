package content

import (
	"path"
	"strings"

	"github.com/nas-ai/filemanager/src/domain/files"
)

// Location names a path inside a specific storage.
type Location struct {
	Storage string
	Path    string
}

// String renders the qualified form, e.g. "local://foo/bar".
func (l Location) String() string {
	return l.Storage + ":/" + l.Path
}

// splitQualifier separates a "name://" or "name:/" prefix from raw.
func splitQualifier(raw string) (string, string, bool) {
	idx := strings.Index(raw, ":/")
	if idx <= 0 || strings.ContainsAny(raw[:idx], "/\\") {
		return "", raw, false
	}
	return raw[:idx], raw[idx+2:], true
}

// ResolvePath turns a client supplied path into a clean path rooted at the
// storage root. Any qualifier is ignored. Paths that climb above the root
// are rejected rather than clamped.
func ResolvePath(raw string) (string, error) {
	_, rest, _ := splitQualifier(raw)
	if strings.ContainsRune(rest, 0) {
		return "", files.Errorf(files.KindInvalidPath, "invalid path: contains NUL byte")
	}

	rest = strings.ReplaceAll(rest, "\\", "/")
	var stack []string
	for _, seg := range strings.Split(rest, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return "", files.Errorf(files.KindInvalidPath, "invalid path: %s escapes the storage root", raw)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}
	return "/" + strings.Join(stack, "/"), nil
}

// ParseLocation resolves raw and binds it to its qualifier's storage, or to
// fallback when unqualified.
func ParseLocation(raw, fallback string) (Location, error) {
	name, _, ok := splitQualifier(raw)
	if !ok {
		name = fallback
	}
	p, err := ResolvePath(raw)
	if err != nil {
		return Location{}, err
	}
	return Location{Storage: name, Path: p}, nil
}

// JoinPath appends a single client supplied name to a resolved directory.
func JoinPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", files.Errorf(files.KindInvalidPath, "invalid name: %q", name)
	}
	return path.Join(dir, name), nil
}
