package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Tree describes directory contents for Fill. A nested Tree is a directory,
// a string or []byte is a file body and nil is an empty file.
type Tree map[string]any

// Fill creates the entries of tree below dir, which must already exist.
func Fill(ctx context.Context, fsys Filesystem, dir string, tree Tree) error {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := path.Join(dir, name)
		switch v := tree[name].(type) {
		case Tree:
			if err := fsys.Mkdir(ctx, p); err != nil {
				return err
			}
			if err := Fill(ctx, fsys, p, v); err != nil {
				return err
			}
		case map[string]any:
			if err := fsys.Mkdir(ctx, p); err != nil {
				return err
			}
			if err := Fill(ctx, fsys, p, Tree(v)); err != nil {
				return err
			}
		case string:
			if _, err := fsys.WriteFile(ctx, p, strings.NewReader(v)); err != nil {
				return err
			}
		case []byte:
			if _, err := fsys.WriteFile(ctx, p, strings.NewReader(string(v))); err != nil {
				return err
			}
		case nil:
			if _, err := fsys.WriteFile(ctx, p, strings.NewReader("")); err != nil {
				return err
			}
		default:
			return fmt.Errorf("fill %s: unsupported value %T", p, v)
		}
	}
	return nil
}
