package client

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockS3Client implements EvidenceStore for tests without AWS credentials
type MockS3Client struct {
	Bucket string
	Region string

	PresignUploadFunc func(ctx context.Context, taskID uuid.UUID, fileName, contentType string) (*PresignedUpload, error)
	DeleteFileFunc    func(ctx context.Context, key string) error

	DeletedKeys []string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "ap-northeast-2",
	}
}

func (m *MockS3Client) GenerateFileKey(taskID uuid.UUID, fileExt string) string {
	return generateFileKey(taskID, fileExt, time.Now())
}

func (m *MockS3Client) PresignUpload(ctx context.Context, taskID uuid.UUID, fileName, contentType string) (*PresignedUpload, error) {
	if m.PresignUploadFunc != nil {
		return m.PresignUploadFunc(ctx, taskID, fileName, contentType)
	}

	key := m.GenerateFileKey(taskID, filepath.Ext(fileName))
	return &PresignedUpload{
		UploadURL: fmt.Sprintf("%s?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=900&X-Amz-Signature=mocksignature", m.GetFileURL(key)),
		FileKey:   key,
		FileURL:   m.GetFileURL(key),
		ExpiresAt: time.Now().Add(PresignExpiry).UTC(),
	}, nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	m.DeletedKeys = append(m.DeletedKeys, key)
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}

func (m *MockS3Client) KeyFromURL(fileURL string) (string, bool) {
	prefix := m.GetFileURL("")
	if !strings.HasPrefix(fileURL, prefix) || fileURL == prefix {
		return "", false
	}
	return strings.TrimPrefix(fileURL, prefix), true
}

var _ EvidenceStore = (*MockS3Client)(nil)
var _ EvidenceStore = (*S3Client)(nil)
