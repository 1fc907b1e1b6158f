package drive

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/gcsblob" // GCS driver
	_ "gocloud.dev/blob/memblob" // in-memory driver, used by tests
	_ "gocloud.dev/blob/s3blob"  // S3 driver
)

// folderMarker is the zero-byte object that makes an otherwise empty folder
// prefix discoverable. Object stores have no real directories.
const folderMarker = ".keep"

// BlobStore keeps the evidence hierarchy in an object store bucket. Folder
// ids are key prefixes.
type BlobStore struct {
	bucket    *blob.Bucket
	bucketURL string
	prefix    string
}

// NewBlobStore opens a gocloud bucket URL (gs://, s3://, mem://).
func NewBlobStore(bucketURL, prefix string) (*BlobStore, error) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}

	return &BlobStore{
		bucket:    bucket,
		bucketURL: bucketURL,
		prefix:    prefix,
	}, nil
}

func (s *BlobStore) keyFor(id string) string {
	return s.prefix + id
}

// FindFolder checks for the folder's marker object.
func (s *BlobStore) FindFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	id := childKey(parentID, name)
	exists, err := s.bucket.Exists(ctx, s.keyFor(id)+"/"+folderMarker)
	if err != nil {
		return nil, fmt.Errorf("check folder %s: %w", id, err)
	}
	if !exists {
		return nil, nil
	}
	return &Folder{ID: id, Name: name, ParentID: parentID}, nil
}

// CreateFolder writes the folder's marker object.
func (s *BlobStore) CreateFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	id := childKey(parentID, name)
	key := s.keyFor(id) + "/" + folderMarker

	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create writer for %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer for %s: %w", key, err)
	}

	return &Folder{ID: id, Name: name, ParentID: parentID}, nil
}

// UploadFile writes evidence bytes as an object inside the folder prefix.
func (s *BlobStore) UploadFile(ctx context.Context, folderID, name string, data []byte) (*File, error) {
	id := childKey(folderID, name)
	key := s.keyFor(id)

	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create writer for %s: %w", key, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("write data to %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer for %s: %w", key, err)
	}

	return &File{
		ID:      id,
		Name:    name,
		Size:    int64(len(data)),
		ViewURL: s.URI(id),
	}, nil
}

// List returns the object names directly inside a folder prefix, skipping
// the marker object and nested folders.
func (s *BlobStore) List(ctx context.Context, folderID string) ([]string, error) {
	keyPrefix := s.keyFor(folderID) + "/"

	var names []string
	iter := s.bucket.List(&blob.ListOptions{
		Prefix:    keyPrefix,
		Delimiter: "/",
	})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", keyPrefix, err)
		}
		if obj.IsDir {
			continue
		}
		name := strings.TrimPrefix(obj.Key, keyPrefix)
		if name == folderMarker {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// URI returns the canonical URI for the given key.
func (s *BlobStore) URI(key string) string {
	base := strings.TrimSuffix(s.bucketURL, "/")
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return base + "/" + s.prefix + key
}

// Close releases the bucket connection.
func (s *BlobStore) Close() error {
	if s.bucket != nil {
		return s.bucket.Close()
	}
	return nil
}

// s3URL builds a gocloud S3 bucket URL with optional endpoint and region.
// Works with AWS S3, Backblaze B2, Cloudflare R2, and MinIO.
func s3URL(cfg Config) string {
	bucketURL := fmt.Sprintf("s3://%s", cfg.S3Bucket)

	params := url.Values{}
	if cfg.S3Region != "" {
		params.Set("region", cfg.S3Region)
	}
	if cfg.S3Endpoint != "" {
		params.Set("endpoint", cfg.S3Endpoint)
		params.Set("s3ForcePathStyle", "true")
	}
	if len(params) > 0 {
		bucketURL = bucketURL + "?" + params.Encode()
	}
	return bucketURL
}
