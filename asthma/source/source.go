// Package source makes input extracts available on local disk and publishes
// outputs, for local paths and s3:// URIs.
package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const s3Scheme = "s3://"

// FileHandler moves files between their storage location and local disk.
type FileHandler interface {
	// Fetch returns a local path holding the contents of path. cleanup
	// removes any temporary copy and is never nil on success.
	Fetch(ctx context.Context, path string) (local string, cleanup func(), err error)
	// Store publishes the local file at dest.
	Store(ctx context.Context, local, dest string) error
}

// IsS3 reports whether path is an s3:// URI.
func IsS3(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

// Options configure the S3 handler.
type Options struct {
	Endpoint      string `conf:"AWS_S3_ENDPOINT"`
	AssumeRoleArn string `conf:"AWS_ASSUME_ROLE_ARN"`
	Region        string `conf:"AWS_REGION" conf_default:"us-east-1"`
}

// NewFileHandler returns the handler for path.
func NewFileHandler(path string, opts Options, logger logrus.FieldLogger) FileHandler {
	if IsS3(path) {
		return &S3FileHandler{Logger: logger, Endpoint: opts.Endpoint, AssumeRoleArn: opts.AssumeRoleArn, Region: opts.Region}
	}
	return &LocalFileHandler{Logger: logger}
}

// LocalFileHandler reads and writes the local filesystem.
type LocalFileHandler struct {
	Logger logrus.FieldLogger
}

func (handler *LocalFileHandler) Fetch(ctx context.Context, path string) (string, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "could not read file %s", path)
	}
	if info.IsDir() {
		return "", nil, errors.Errorf("%s is a directory", path)
	}
	return path, func() {}, nil
}

func (handler *LocalFileHandler) Store(ctx context.Context, local, dest string) error {
	if filepath.Clean(local) == filepath.Clean(dest) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", dest)
	}

	src, err := os.Open(filepath.Clean(local))
	if err != nil {
		return errors.Wrapf(err, "could not read file %s", local)
	}
	defer src.Close()

	out, err := os.Create(filepath.Clean(dest))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dest)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s to %s", local, dest)
	}
	handler.Logger.Infof("Copied %s to %s", local, dest)
	return out.Close()
}
