package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	defaultS3Region = "us-east-1"
	metadataDigest  = "digest"
	metadataStamp   = "remote-stamp"
)

// S3Sink writes every item payload to s3://<bucket>/<prefix>/<collection>/<uid>.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink builds the S3 client from cfg. A custom endpoint selects an
// S3-compatible store such as MinIO.
func NewS3Sink(ctx context.Context, cfg config.S3) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 sink requires a bucket")
	}
	if cfg.Region == "" {
		cfg.Region = defaultS3Region
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Sink{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Sink) Name() string {
	return SinkS3
}

func (s *S3Sink) Put(ctx context.Context, item models.Item) error {
	key, err := s.key(item.CollectionID, item.UID)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(item.Payload),
		ContentLength: aws.Int64(int64(len(item.Payload))),
		ContentType:   aws.String("application/octet-stream"),
		Metadata: map[string]string{
			metadataDigest: item.Digest,
			metadataStamp:  item.RemoteStamp.String(),
		},
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

func (s *S3Sink) Delete(ctx context.Context, collectionID, uid string) error {
	key, err := s.key(collectionID, uid)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (s *S3Sink) key(collectionID, uid string) (string, error) {
	if err := checkName(collectionID); err != nil {
		return "", err
	}
	if err := checkName(uid); err != nil {
		return "", err
	}

	return path.Join(s.prefix, collectionID, uid), nil
}
