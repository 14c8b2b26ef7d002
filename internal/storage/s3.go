package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"

	"evsys/event-api/internal/model"
)

// Objects above this size go through the multipart uploader
const multipartLimit = 100 << 20

// S3 stores objects in a bucket. URLs are "s3://<bucket>/<key>".
type S3 struct {
	C      *s3.Client
	Bucket *string
}

func NewS3() (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		C:      client,
		Bucket: bucket,
	}, nil
}

func (s *S3) Store(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}

	var err error
	if size > multipartLimit {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		_, err = u.Upload(ctx, input)
	} else {
		_, err = s.C.PutObject(ctx, input)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload object to S3, %w", err)
	}

	return "s3://" + *s.Bucket + "/" + key, nil
}

func (s *S3) Delete(ctx context.Context, url string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(s.key(url)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3, %w", err)
	}

	return nil
}

// Rename copies the object to a key with the new name and deletes the old
// one. S3 has no native move.
func (s *S3) Rename(ctx context.Context, url, newName string) (string, error) {
	oldKey := s.key(url)
	newKey := path.Join(path.Dir(oldKey), newName)

	_, err := s.C.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     s.Bucket,
		CopySource: aws.String(*s.Bucket + "/" + oldKey),
		Key:        aws.String(newKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy object, %w", err)
	}

	_, err = s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(oldKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete old object, %w", err)
	}

	return "s3://" + *s.Bucket + "/" + newKey, nil
}

func (s *S3) Provider() model.StorageProvider {
	return model.StorageProviderS3
}

func (s *S3) key(url string) string {
	return strings.TrimPrefix(url, "s3://"+*s.Bucket+"/")
}
