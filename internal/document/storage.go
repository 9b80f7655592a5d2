package document

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

var allowedContentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
}

// Storage keeps document files in a GCS bucket; metadata lives in
// Postgres.
type Storage struct {
	client     *storage.Client
	bucketName string
}

func NewStorage(bucketName string) (*Storage, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Storage{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func ContentTypeAllowed(contentType string) bool {
	for _, allowed := range allowedContentTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// Upload streams a document file into the bucket and returns its object
// path.
func (s *Storage) Upload(ctx context.Context, userID, fileName, contentType string, body io.Reader) (string, int64, error) {
	objectPath := fmt.Sprintf("%s/%s-%s", userID, uuid.New().String(), fileName)

	obj := s.client.Bucket(s.bucketName).Object(objectPath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	size, err := io.Copy(writer, body)
	if err != nil {
		writer.Close()
		return "", 0, fmt.Errorf("failed to write object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to finalize object: %w", err)
	}

	return objectPath, size, nil
}

// SignedUploadURL returns a short-lived PUT URL so large files can skip
// the server.
func (s *Storage) SignedUploadURL(objectPath, contentType string) (string, error) {
	url, err := s.client.Bucket(s.bucketName).SignedURL(objectPath, &storage.SignedURLOptions{
		Expires:     time.Now().Add(90 * time.Second),
		Method:      "PUT",
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

// SignedDownloadURL returns a short-lived GET URL for viewing a stored
// document.
func (s *Storage) SignedDownloadURL(objectPath string) (string, error) {
	url, err := s.client.Bucket(s.bucketName).SignedURL(objectPath, &storage.SignedURLOptions{
		Expires: time.Now().Add(10 * time.Minute),
		Method:  "GET",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}
