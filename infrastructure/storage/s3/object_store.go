package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

// PutObjectAPI is the subset of the S3 client used for direct writes
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// PresignAPI signs object requests
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Options configures an ObjectStore
type Options struct {
	Bucket string
	// BaseURL prefixes permanent URLs; defaults to the virtual-hosted bucket URL
	BaseURL string
	// UploadTTL bounds the signed PUT used by UploadViaSignedURL
	UploadTTL time.Duration
}

// ObjectStore implements ports.ObjectStore against one bucket
type ObjectStore struct {
	client     PutObjectAPI
	presigner  PresignAPI
	httpClient *http.Client
	bucket     string
	baseURL    string
	uploadTTL  time.Duration
	logger     *zap.Logger
}

// NewObjectStore creates a store for opts.Bucket
func NewObjectStore(client *awss3.Client, opts Options, logger *zap.Logger) *ObjectStore {
	return newObjectStore(client, awss3.NewPresignClient(client), http.DefaultClient, opts, logger)
}

func newObjectStore(client PutObjectAPI, presigner PresignAPI, httpClient *http.Client, opts Options, logger *zap.Logger) *ObjectStore {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", opts.Bucket)
	}
	ttl := opts.UploadTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ObjectStore{
		client:     client,
		presigner:  presigner,
		httpClient: httpClient,
		bucket:     opts.Bucket,
		baseURL:    baseURL,
		uploadTTL:  ttl,
		logger:     logger,
	}
}

// Upload implements ports.ObjectStore
func (s *ObjectStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("Failed to upload object",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", pkgerrors.NewUploadError(key, err)
	}
	return s.PermanentURL(key), nil
}

// SignedDownloadURL implements ports.ObjectStore
func (s *ObjectStore) SignedDownloadURL(ctx context.Context, path, name string, ttl time.Duration) (string, error) {
	key := valueobjects.ObjectKey(path, name)
	req, err := s.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", pkgerrors.NewURLGenerationError(key, err)
	}
	return req.URL, nil
}

// SignedUploadURL implements ports.ObjectStore
func (s *ObjectStore) SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	req, err := s.presigner.PresignPutObject(ctx, input, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", pkgerrors.NewURLGenerationError(key, err)
	}
	return req.URL, nil
}

// UploadViaSignedURL implements ports.ObjectStore
func (s *ObjectStore) UploadViaSignedURL(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	url, err := s.SignedUploadURL(ctx, key, contentType, s.uploadTTL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.NewUploadError(key, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.NewUploadError(key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", pkgerrors.NewUploadError(key, fmt.Errorf("signed upload returned %d: %s", resp.StatusCode, detail))
	}

	s.logger.Debug("Object uploaded through signed URL",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return s.PermanentURL(key), nil
}

// PermanentURL implements ports.ObjectStore
func (s *ObjectStore) PermanentURL(key string) string {
	return s.baseURL + "/" + key
}
