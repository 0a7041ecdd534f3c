package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"sparkload/pkg/errors"
)

// Local reads a file, or every file below a directory
type Local struct {
	root string
}

// NewLocal creates a source rooted at path
func NewLocal(path string) (*Local, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, fmt.Sprintf("Cannot read %s", path)).
			WithContext("uri", path)
	}
	return &Local{root: filepath.Clean(path)}, nil
}

func (l *Local) URI() string {
	return l.root
}

// List returns the regular files below the root sorted by path. Hidden
// files are skipped.
func (l *Local) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != l.root && d.Name()[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{Key: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, fmt.Sprintf("Failed to list %s", l.root))
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, fmt.Sprintf("Failed to open %s", key))
	}
	return f, nil
}
