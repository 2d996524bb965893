package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore saves image blobs (uploads, generated previews) under a root
// directory, one subdirectory per bucket, and maps them to public URLs.
type BlobStore struct {
	root    string
	baseURL string
}

// UploadResult reports where a blob landed.
type UploadResult struct {
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
}

// NewBlobStore creates a filesystem-backed blob store. baseURL is the
// public prefix blobs are served under, e.g. "/blobs".
func NewBlobStore(root, baseURL string) *BlobStore {
	return &BlobStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes the blob to bucket/path, creating directories as needed.
// contentType is recorded alongside the blob for later serving.
func (b *BlobStore) Upload(bucket, path string, data []byte, contentType string) (UploadResult, error) {
	target, err := b.resolve(bucket, path)
	if err != nil {
		return UploadResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return UploadResult{}, fmt.Errorf("writing blob %s/%s: %w", bucket, path, err)
	}
	if contentType != "" {
		if err := os.WriteFile(target+".type", []byte(contentType), 0o644); err != nil {
			return UploadResult{}, fmt.Errorf("writing blob metadata: %w", err)
		}
	}
	return UploadResult{
		Path:      bucket + "/" + path,
		PublicURL: b.PublicURL(bucket, path),
	}, nil
}

// PublicURL returns the URL a stored blob is served under.
func (b *BlobStore) PublicURL(bucket, path string) string {
	return b.baseURL + "/" + bucket + "/" + path
}

// Remove deletes a blob and its metadata. Removing a missing blob is not an
// error.
func (b *BlobStore) Remove(bucket, path string) error {
	target, err := b.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob %s/%s: %w", bucket, path, err)
	}
	if err := os.Remove(target + ".type"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob metadata: %w", err)
	}
	return nil
}

// Open reads a blob back, returning its bytes and recorded content type.
func (b *BlobStore) Open(bucket, path string) ([]byte, string, error) {
	target, err := b.resolve(bucket, path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, "", fmt.Errorf("reading blob %s/%s: %w", bucket, path, err)
	}
	contentType := "application/octet-stream"
	if meta, err := os.ReadFile(target + ".type"); err == nil {
		contentType = string(meta)
	}
	return data, contentType, nil
}

// resolve joins bucket and path under the root, rejecting traversal outside
// it.
func (b *BlobStore) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" {
		return "", fmt.Errorf("blob bucket and path are required")
	}
	target := filepath.Join(b.root, bucket, filepath.FromSlash(path))
	rootAbs, err := filepath.Abs(b.root)
	if err != nil {
		return "", err
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(targetAbs, rootAbs+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob path %q escapes store root", path)
	}
	return targetAbs, nil
}
