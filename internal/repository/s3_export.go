package repository

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/mansoorceksport/subtrack/internal/config"
)

// exportTimestampLayout names export objects by the UTC instant they were taken
const exportTimestampLayout = "20060102T150405Z"

// S3ExportRepository implements domain.ExportStore on any S3-compatible store
// (SeaweedFS, MinIO, AWS). Objects live under <prefix>/<owner>/<timestamp>.json.
type S3ExportRepository struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3ExportRepository creates the export store and makes sure the bucket exists
func NewS3ExportRepository(ctx context.Context, cfg appConfig.S3Config) (*S3ExportRepository, error) {
	// SeaweedFS/MinIO want signed requests but accept any static credentials
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("any", "any", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	repo := &S3ExportRepository{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.ExportPrefix, "/"),
		publicURL: strings.TrimRight(cfg.Endpoint, "/"),
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}
	log.Printf("✓ Export bucket ready (%s/%s)", repo.bucket, repo.prefix)

	return repo, nil
}

// PutExport uploads one export document and returns its key and URL
func (r *S3ExportRepository) PutExport(ctx context.Context, ownerID string, at time.Time, body []byte) (string, string, error) {
	key := exportKey(r.prefix, ownerID, at)

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(r.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(body),
		ContentType:        aws.String("application/json"),
		ContentDisposition: aws.String(fmt.Sprintf(`attachment; filename="%s"`, path.Base(key))),
		Metadata: map[string]string{
			"owner-id":    ownerID,
			"exported-at": at.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload export to S3: %w", err)
	}

	return key, objectURL(r.publicURL, r.bucket, key), nil
}

// exportKey builds <prefix>/<owner>/<yyyymmddThhmmssZ>.json; an empty prefix drops the first segment
func exportKey(prefix, ownerID string, at time.Time) string {
	name := at.UTC().Format(exportTimestampLayout) + ".json"
	if prefix == "" {
		return path.Join(ownerID, name)
	}
	return path.Join(prefix, ownerID, name)
}

func objectURL(publicURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", publicURL, bucket, key)
}

// ensureBucket checks if bucket exists, creating it if necessary
func (r *S3ExportRepository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(r.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
		}
	}
	return nil
}
