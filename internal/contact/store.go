package contact

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"uniscout-backend/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// AttachmentStore keeps uploaded files and returns where they ended up.
// Delete removes an object written by Put and is used to roll back a
// submission that could not be recorded.
type AttachmentStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DiscardStore accepts attachments without keeping them. It is used when no
// bucket is configured; metadata is still recorded on the submission.
type DiscardStore struct{}

func (DiscardStore) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	return "", nil
}

func (DiscardStore) Delete(ctx context.Context, key string) error {
	return nil
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Store writes attachments to an S3 compatible bucket.
type S3Store struct {
	client *s3.S3
	bucket string
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return &S3Store{client: s3.New(sess), bucket: cfg.Bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// attachmentKey builds contact/<submission>/<random>-<name>.<ext>.
func attachmentKey(submissionID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := utils.Slugify(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return path.Join("contact", submissionID, uuid.NewString()+"-"+base+ext)
}
