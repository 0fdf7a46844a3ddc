package client

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "release-tracker-api/internal/config"
)

// PresignExpiry is how long an evidence upload URL stays valid
const PresignExpiry = 15 * time.Minute

// PresignedUpload describes where a client should PUT an evidence file
// and the URL it will be reachable at afterwards.
type PresignedUpload struct {
	UploadURL string    `json:"upload_url"`
	FileKey   string    `json:"file_key"`
	FileURL   string    `json:"file_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APICallRecorder receives timings of calls made to S3
type APICallRecorder interface {
	RecordExternalAPICall(endpoint, method string, statusCode int, duration time.Duration, err error)
}

// EvidenceStore stores task evidence files in object storage
type EvidenceStore interface {
	GenerateFileKey(taskID uuid.UUID, fileExt string) string
	PresignUpload(ctx context.Context, taskID uuid.UUID, fileName, contentType string) (*PresignedUpload, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
	KeyFromURL(fileURL string) (string, bool)
}

// S3Client implements EvidenceStore on top of S3 or an S3-compatible endpoint
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	publicBase    string
	recorder      APICallRecorder
}

// NewS3Client creates a new S3 client. When an endpoint is configured
// (MinIO and similar) static credentials and path-style addressing are used.
func NewS3Client(ctx context.Context, cfg *appConfig.S3Config, recorder APICallRecorder) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	withEndpoint := func(endpoint string) func(*s3.Options) {
		return func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		}
	}

	s3Client := s3.NewFromConfig(awsCfg, withEndpoint(cfg.Endpoint))

	// Presigned URLs are signed for the host the browser will use
	presignEndpoint := cfg.Endpoint
	if cfg.PublicEndpoint != "" {
		presignEndpoint = cfg.PublicEndpoint
	}
	presignClient := s3.NewPresignClient(s3.NewFromConfig(awsCfg, withEndpoint(presignEndpoint)))

	publicBase := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if presignEndpoint != "" {
		publicBase = fmt.Sprintf("%s/%s", strings.TrimSuffix(presignEndpoint, "/"), cfg.Bucket)
	}

	return &S3Client{
		client:        s3Client,
		presignClient: presignClient,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBase:    publicBase,
		recorder:      recorder,
	}, nil
}

// GenerateFileKey generates a unique object key
// Format: evidence/tasks/{taskID}/{year}/{month}/{uuid}{ext}
func (c *S3Client) GenerateFileKey(taskID uuid.UUID, fileExt string) string {
	return generateFileKey(taskID, fileExt, time.Now())
}

func generateFileKey(taskID uuid.UUID, fileExt string, now time.Time) string {
	return fmt.Sprintf("evidence/tasks/%s/%s/%s/%s%s",
		taskID, now.Format("2006"), now.Format("01"), uuid.New(), strings.ToLower(fileExt))
}

// PresignUpload returns a presigned PUT URL for an evidence file of the given task
func (c *S3Client) PresignUpload(ctx context.Context, taskID uuid.UUID, fileName, contentType string) (*PresignedUpload, error) {
	fileKey := c.GenerateFileKey(taskID, filepath.Ext(fileName))

	start := time.Now()
	req, err := c.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fileKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	c.record("s3/presign_put", "PUT", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileKey:   fileKey,
		FileURL:   c.GetFileURL(fileKey),
		ExpiresAt: start.Add(PresignExpiry).UTC(),
	}, nil
}

// DeleteFile deletes an object from the bucket
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	c.record("s3/delete_object", "DELETE", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the URL an uploaded object is reachable at
func (c *S3Client) GetFileURL(key string) string {
	return c.publicBase + "/" + key
}

// KeyFromURL returns the object key when fileURL points into this bucket
func (c *S3Client) KeyFromURL(fileURL string) (string, bool) {
	prefix := c.publicBase + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(fileURL, prefix)
	return key, key != ""
}

func (c *S3Client) record(endpoint, method string, start time.Time, err error) {
	if c.recorder == nil {
		return
	}
	status := 200
	if err != nil {
		status = 500
	}
	c.recorder.RecordExternalAPICall(endpoint, method, status, time.Since(start), err)
}
