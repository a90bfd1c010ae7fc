package source

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// S3FileHandler downloads extracts to a temporary directory and uploads
// outputs.
type S3FileHandler struct {
	Logger        logrus.FieldLogger
	Endpoint      string
	AssumeRoleArn string
	Region        string
}

// Fetch downloads the object into a temporary directory, keeping its base
// name so the file kind can still be detected from it.
func (handler *S3FileHandler) Fetch(ctx context.Context, uri string) (string, func(), error) {
	bucket, key, err := parseS3Uri(uri)
	if err != nil {
		return "", nil, err
	}
	if key == "" {
		return "", nil, errors.Errorf("%s does not name an object", uri)
	}

	sess, err := handler.createSession()
	if err != nil {
		handler.Logger.Errorf("Failed to create S3 session: %s", err)
		return "", nil, err
	}

	dir, err := os.MkdirTemp("", "asthma-etl-")
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create temporary directory")
	}
	cleanup := func() { os.RemoveAll(dir) }

	local := filepath.Join(dir, path.Base(key))
	f, err := os.Create(local)
	if err != nil {
		cleanup()
		return "", nil, errors.Wrapf(err, "failed to create %s", local)
	}
	defer f.Close()

	downloader := s3manager.NewDownloader(sess)
	numBytes, err := downloader.DownloadWithContext(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		handler.Logger.Errorf("Failed to download bucket %s, key %s", bucket, key)
		cleanup()
		return "", nil, errors.Wrapf(err, "failed to download %s", uri)
	}

	handler.Logger.WithFields(logrus.Fields{"bucket": bucket, "key": key, "size": numBytes}).Info("File downloaded")
	return local, cleanup, nil
}

func (handler *S3FileHandler) Store(ctx context.Context, local, dest string) error {
	bucket, key, err := parseS3Uri(dest)
	if err != nil {
		return err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		key += filepath.Base(local)
	}

	sess, err := handler.createSession()
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Clean(local))
	if err != nil {
		return errors.Wrapf(err, "could not read file %s", local)
	}
	defer f.Close()

	uploader := s3manager.NewUploader(sess)
	if _, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		handler.Logger.Errorf("Failed to upload bucket %s, key %s", bucket, key)
		return errors.Wrapf(err, "failed to upload %s", dest)
	}

	handler.Logger.WithFields(logrus.Fields{"bucket": bucket, "key": key}).Info("File uploaded")
	return nil
}

func (handler *S3FileHandler) createSession() (*session.Session, error) {
	sess := session.Must(session.NewSession())

	region := handler.Region
	if region == "" {
		region = "us-east-1"
	}
	config := aws.Config{
		Region: aws.String(region),
	}

	if handler.Endpoint != "" {
		config.S3ForcePathStyle = aws.Bool(true)
		config.Endpoint = &handler.Endpoint
	}

	if handler.AssumeRoleArn != "" {
		config.Credentials = stscreds.NewCredentials(
			sess,
			handler.AssumeRoleArn,
		)
	}

	return session.NewSessionWithOptions(session.Options{
		Config: config,
	})
}

func parseS3Uri(str string) (bucket string, key string, err error) {
	if !IsS3(str) {
		return "", "", errors.Errorf("%s is not an s3 uri", str)
	}
	workingString := strings.TrimPrefix(str, s3Scheme)
	resultArr := strings.SplitN(workingString, "/", 2)
	if resultArr[0] == "" {
		return "", "", errors.Errorf("%s has no bucket", str)
	}

	if len(resultArr) == 1 {
		return resultArr[0], "", nil
	}

	return resultArr[0], resultArr[1], nil
}
