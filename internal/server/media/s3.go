package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
	"github.com/google/uuid"
)

// S3Options configures the object store connection.
type S3Options struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 stores each envelope as its own object and keeps only the object key
// in the message row.
type S3 struct {
	client objectAPI
	bucket string
	now    func() time.Time
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3 builds an S3 store with static credentials. A non-empty BaseEndpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
			opts.UsePathStyle = true
		}
	})
	return newS3(client, o.Bucket), nil
}

func newS3(client objectAPI, bucket string) *S3 {
	return &S3{client: client, bucket: bucket, now: time.Now}
}

// StorageKey returns a fresh object key of the form media/YYYY/M/D/<uuid>.
func (s *S3) StorageKey() string {
	d := s.now()
	return fmt.Sprintf("media/%d/%d/%d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3) Put(ctx context.Context, envelope []byte) (models.Blob, error) {
	key := s.StorageKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(envelope),
		ContentLength: aws.Int64(int64(len(envelope))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return models.Blob{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return models.Blob{StorageKey: key}, nil
}

func (s *S3) Get(ctx context.Context, blob models.Blob) ([]byte, error) {
	if blob.StorageKey == "" {
		return nil, common.ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blob.StorageKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", blob.StorageKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", blob.StorageKey, err)
	}
	return data, nil
}
