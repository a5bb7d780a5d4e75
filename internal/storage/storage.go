// Package storage stores portraits and generated images in Supabase Storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"github.com/hairult/hairstyle-service/internal/config"
)

// Path prefixes for stored objects.
const (
	PortraitPrefix = "portraits"
	ResultPrefix   = "results"
)

// ErrEmptyObject is returned when an upload carries no bytes.
var ErrEmptyObject = errors.New("empty object")

// bucketClient is the subset of the storage-go client the gateway uses.
type bucketClient interface {
	UploadFile(bucketID, relativeFilePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	DownloadFile(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
}

// Gateway uploads and downloads objects in a single bucket. The storage-go
// client mutates shared request headers per call, so calls are serialized.
type Gateway struct {
	mu      sync.Mutex
	client  bucketClient
	bucket  string
	baseURL string
}

// NewGateway builds a Supabase-backed gateway.
func NewGateway(cfg config.StorageConfig) (*Gateway, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return newGateway(client.Storage, cfg.Bucket, cfg.SupabaseURL), nil
}

func newGateway(client bucketClient, bucket, baseURL string) *Gateway {
	return &Gateway{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores data at path and returns the full object path ("<bucket>/<path>").
// Existing objects are never overwritten.
func (g *Gateway) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyObject
	}

	upsert := false
	g.mu.Lock()
	defer g.mu.Unlock()
	resp, err := g.client.UploadFile(g.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if resp.Key != "" {
		return resp.Key, nil
	}
	return g.bucket + "/" + path, nil
}

// Download fetches an object by its full path.
func (g *Gateway) Download(ctx context.Context, fullPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	data, err := g.client.DownloadFile(g.bucket, g.relative(fullPath))
	g.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fullPath, err)
	}
	return data, nil
}

// PublicURL returns the public HTTP address of a stored object.
func (g *Gateway) PublicURL(fullPath string) string {
	if fullPath == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s", g.baseURL, strings.TrimLeft(fullPath, "/"))
}

func (g *Gateway) relative(fullPath string) string {
	p := strings.TrimLeft(fullPath, "/")
	return strings.TrimPrefix(p, g.bucket+"/")
}

// NewObjectPath returns "<prefix>/<uuid>.<ext>".
func NewObjectPath(prefix, ext string) string {
	return fmt.Sprintf("%s/%s.%s", strings.Trim(prefix, "/"), uuid.NewString(), strings.TrimPrefix(ext, "."))
}

// PortraitPath returns a fresh object path for a guest's portrait.
func PortraitPath(guestID, ext string) string {
	return NewObjectPath(PortraitPrefix+"/"+guestID, ext)
}

// ResultPath returns a fresh object path for a generated image.
func ResultPath(guestID, ext string) string {
	return NewObjectPath(ResultPrefix+"/"+guestID, ext)
}
