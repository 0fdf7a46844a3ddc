package client

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"release-tracker-api/internal/config"
)

type recordedCall struct {
	endpoint string
	method   string
	status   int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordExternalAPICall(endpoint, method string, statusCode int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{endpoint, method, statusCode})
}

func minioConfig() *config.S3Config {
	return &config.S3Config{
		Bucket:    "evidence",
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Endpoint:  "http://minio:9000",
	}
}

func TestNewS3Client_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.S3Config
		errContains string
	}{
		{"missing bucket", &config.S3Config{Region: "ap-northeast-2"}, "bucket is required"},
		{"missing region", &config.S3Config{Bucket: "evidence"}, "region is required"},
		{"endpoint without credentials", &config.S3Config{Bucket: "evidence", Region: "us-east-1", Endpoint: "http://minio:9000"}, "access key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewS3Client(context.Background(), tt.cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Nil(t, c)
		})
	}
}

func TestGenerateFileKey(t *testing.T) {
	taskID := uuid.New()
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	key := generateFileKey(taskID, ".PNG", now)

	assert.True(t, strings.HasPrefix(key, "evidence/tasks/"+taskID.String()+"/2024/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, generateFileKey(taskID, ".png", now))
}

func TestPresignUpload_CustomEndpoint(t *testing.T) {
	recorder := &fakeRecorder{}
	c, err := NewS3Client(context.Background(), minioConfig(), recorder)
	require.NoError(t, err)

	taskID := uuid.New()
	upload, err := c.PresignUpload(context.Background(), taskID, "screenshot.png", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.UploadURL, "http://minio:9000/evidence/evidence/tasks/"+taskID.String()), upload.UploadURL)
	assert.Contains(t, upload.UploadURL, "X-Amz-Signature=")
	assert.Contains(t, upload.UploadURL, "X-Amz-Expires=900")
	assert.Equal(t, "http://minio:9000/evidence/"+upload.FileKey, upload.FileURL)
	assert.WithinDuration(t, time.Now().Add(PresignExpiry), upload.ExpiresAt, 5*time.Second)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, recordedCall{"s3/presign_put", "PUT", 200}, recorder.calls[0])
}

func TestPresignUpload_PublicEndpointSignsForPublicHost(t *testing.T) {
	cfg := minioConfig()
	cfg.PublicEndpoint = "http://localhost:9000"
	c, err := NewS3Client(context.Background(), cfg, nil)
	require.NoError(t, err)

	upload, err := c.PresignUpload(context.Background(), uuid.New(), "log.txt", "text/plain")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.UploadURL, "http://localhost:9000/evidence/"), upload.UploadURL)
	assert.True(t, strings.HasPrefix(upload.FileURL, "http://localhost:9000/evidence/"), upload.FileURL)
}

func TestGetFileURL_AWS(t *testing.T) {
	c, err := NewS3Client(context.Background(), &config.S3Config{Bucket: "evidence", Region: "ap-northeast-2"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://evidence.s3.ap-northeast-2.amazonaws.com/a/b.png", c.GetFileURL("a/b.png"))
}

func TestKeyFromURL(t *testing.T) {
	c, err := NewS3Client(context.Background(), minioConfig(), nil)
	require.NoError(t, err)

	key, ok := c.KeyFromURL(c.GetFileURL("evidence/tasks/x/file.png"))
	assert.True(t, ok)
	assert.Equal(t, "evidence/tasks/x/file.png", key)

	_, ok = c.KeyFromURL("https://example.com/evidence/file.png")
	assert.False(t, ok)
}

func TestPresignUpload_ConcurrentCallsProduceDistinctKeys(t *testing.T) {
	c, err := NewS3Client(context.Background(), minioConfig(), nil)
	require.NoError(t, err)

	const n = 20
	keys := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			upload, err := c.PresignUpload(context.Background(), uuid.New(), "f.pdf", "application/pdf")
			if assert.NoError(t, err) {
				keys <- upload.FileKey
			}
		}()
	}
	wg.Wait()
	close(keys)

	seen := make(map[string]bool)
	for k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
	assert.Len(t, seen, n)
}

func TestMockS3Client_KeyFromURL(t *testing.T) {
	m := NewMockS3Client()
	key, ok := m.KeyFromURL(m.GetFileURL("k.png"))
	assert.True(t, ok)
	assert.Equal(t, "k.png", key)

	_, ok = m.KeyFromURL("https://other.example.com/k.png")
	assert.False(t, ok)
}
