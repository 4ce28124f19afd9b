package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"mod-builder/core/storage"

	"github.com/minio/minio-go/v7"
)

// Getter retrieves the bytes behind one mirror URL.
type Getter interface {
	Get(ctx context.Context, mirror string) ([]byte, error)
}

// HTTPGetter fetches http and https mirrors.
type HTTPGetter struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPGetter creates an HTTPGetter with a per-request timeout.
func NewHTTPGetter(timeout time.Duration) *HTTPGetter {
	return &HTTPGetter{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "mod-builder/1.0",
	}
}

// Get performs a GET and maps non-2xx responses to *StatusError.
func (g *HTTPGetter) Get(ctx context.Context, mirror string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mirror, nil)
	if err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("invalid mirror url %s: %w", mirror, err)}
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Mirror: mirror}
	}
	return io.ReadAll(resp.Body)
}

// StorageGetter fetches s3://bucket/key mirrors from object storage.
type StorageGetter struct {
	client storage.Client
}

// NewStorageGetter creates a getter backed by the storage client.
func NewStorageGetter(client storage.Client) *StorageGetter {
	return &StorageGetter{client: client}
}

// Get downloads the object named by the mirror URL.
func (g *StorageGetter) Get(ctx context.Context, mirror string) ([]byte, error) {
	bucket, key, err := ParseObjectURL(mirror)
	if err != nil {
		return nil, &PermanentError{Err: err}
	}
	obj, err := g.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, storageError(mirror, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, storageError(mirror, err)
	}
	return data, nil
}

func storageError(mirror string, err error) error {
	if code := minio.ToErrorResponse(err).StatusCode; code != 0 {
		return &StatusError{Code: code, Mirror: mirror}
	}
	return err
}

// ParseObjectURL splits s3://bucket/key into its parts.
func ParseObjectURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid object url %s: %w", raw, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid object url %s: want s3://bucket/key", raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid object url %s: missing key", raw)
	}
	return u.Host, key, nil
}

// FileGetter serves file:// mirrors, mostly for local asset caches.
type FileGetter struct{}

// Get reads the local file behind the mirror URL.
func (FileGetter) Get(ctx context.Context, mirror string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(mirror, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StatusError{Code: http.StatusNotFound, Mirror: mirror}
		}
		return nil, err
	}
	return data, nil
}

// Router dispatches a mirror URL to the getter for its scheme.
type Router struct {
	HTTP    Getter
	Storage Getter
	File    Getter
}

// NewRouter wires the default getters. A nil storage client leaves s3://
// mirrors unsupported.
func NewRouter(cfg Config, client storage.Client) *Router {
	r := &Router{
		HTTP: NewHTTPGetter(cfg.Timeout()),
		File: FileGetter{},
	}
	if client != nil {
		r.Storage = NewStorageGetter(client)
	}
	return r
}

// Get implements Getter and can be passed to Fetcher.Fetch as an Op.
func (r *Router) Get(ctx context.Context, mirror string) ([]byte, error) {
	var g Getter
	switch {
	case strings.HasPrefix(mirror, "http://"), strings.HasPrefix(mirror, "https://"):
		g = r.HTTP
	case strings.HasPrefix(mirror, "s3://"):
		g = r.Storage
	case strings.HasPrefix(mirror, "file://"):
		g = r.File
	}
	if g == nil {
		return nil, &PermanentError{Err: fmt.Errorf("unsupported mirror %s", mirror)}
	}
	return g.Get(ctx, mirror)
}
