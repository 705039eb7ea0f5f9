package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safarsathi-service/internal/domain/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3ImageRepository implements the ImageRepository interface on S3
type S3ImageRepository struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3ImageRepository creates an S3-backed image store. baseURL is the
// public prefix objects are served from; when empty the virtual-hosted S3
// URL of the bucket is used.
func NewS3ImageRepository(ctx context.Context, bucket, region, baseURL string) (*S3ImageRepository, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3ImageRepository{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload stores the image under folder/year/month/uuid_filename
func (r *S3ImageRepository) Upload(ctx context.Context, folder string, image repository.Image) (string, error) {
	now := time.Now()
	key := fmt.Sprintf("%s/%d/%02d/%s_%s",
		folder,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		sanitizeFilename(image.Filename),
	)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        image.Content,
		ContentType: aws.String(image.ContentType),
		Metadata: map[string]string{
			"original-filename": image.Filename,
			"upload-time":       now.Format(time.RFC3339),
		},
	}
	if image.Size > 0 {
		input.ContentLength = aws.Int64(image.Size)
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return r.baseURL + "/" + key, nil
}

// Delete removes the object behind url
func (r *S3ImageRepository) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, r.baseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is not served from bucket %s", url, r.bucket)
	}

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	return replacer.Replace(filename)
}
