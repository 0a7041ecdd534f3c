// Package source reads the raw JSON files the staging tables are copied from.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sparkload/pkg/errors"
)

// Object is one file under a source prefix
type Object struct {
	Key  string
	Size int64
}

// Source lists and opens the objects under one URI prefix
type Source interface {
	URI() string
	List(ctx context.Context) ([]Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Options configure object storage access
type Options struct {
	Region    string
	Anonymous bool // unsigned requests, for public buckets
}

// New returns the source for uri. s3:// URIs are read from object storage;
// anything else is a local file or directory.
func New(ctx context.Context, uri string, opts Options) (Source, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Source URI is empty")
	}
	if strings.HasPrefix(uri, "s3://") {
		return NewS3(ctx, uri, opts)
	}
	return NewLocal(strings.TrimPrefix(uri, "file://"))
}

// Fetch reads the single object a URI names, such as a jsonpaths manifest
func Fetch(ctx context.Context, uri string, opts Options) ([]byte, error) {
	src, err := New(ctx, uri, opts)
	if err != nil {
		return nil, err
	}
	objects, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, errors.New(errors.ErrCodeSourceEmpty, fmt.Sprintf("No object at %s", uri)).
			WithContext("uri", uri)
	}

	rc, err := src.Open(ctx, objects[0].Key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, fmt.Sprintf("Failed to read %s", uri))
	}
	return data, nil
}

// Walk decodes every record of every object under src in listing order
func Walk(ctx context.Context, src Source, fn func(key string, record map[string]interface{}) error) error {
	objects, err := src.List(ctx)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return errors.New(errors.ErrCodeSourceEmpty, fmt.Sprintf("No objects under %s", src.URI())).
			WithContext("uri", src.URI())
	}

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := walkObject(ctx, src, obj.Key, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkObject(ctx context.Context, src Source, key string, fn func(string, map[string]interface{}) error) error {
	rc, err := src.Open(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	return Decode(rc, func(record map[string]interface{}) error {
		return fn(key, record)
	})
}
