// Package drive abstracts the remote evidence folder store.
//
// Evidence screenshots are organized as a folder hierarchy: a fixed root,
// one folder per sector, one subfolder per ally. The Store interface hides
// whether that hierarchy lives on a real drive, in a cloud bucket, or on
// the local filesystem.
package drive

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Folder is a provisioned evidence folder.
type Folder struct {
	ID       string
	Name     string
	ParentID string
}

// File is an uploaded evidence object.
type File struct {
	ID      string
	Name    string
	Size    int64
	ViewURL string
}

// Store abstracts folder provisioning and evidence upload.
type Store interface {
	// FindFolder looks up a child folder by exact name. Absence is not an
	// error: a nil Folder with nil error means not found.
	FindFolder(ctx context.Context, parentID, name string) (*Folder, error)

	// CreateFolder creates a child folder under parentID.
	CreateFolder(ctx context.Context, parentID, name string) (*Folder, error)

	// UploadFile writes data as a named file inside folderID.
	UploadFile(ctx context.Context, folderID, name string, data []byte) (*File, error)

	// List returns the file names directly inside folderID.
	List(ctx context.Context, folderID string) ([]string, error)

	// URI returns the canonical URI for the given key.
	// For local: file:///path, GCS: gs://bucket/path, S3: s3://bucket/path.
	URI(key string) string

	// Close releases any resources.
	Close() error
}

var (
	// ErrMalformedReference is returned when a folder reference contains no
	// recognizable folder id.
	ErrMalformedReference = errors.New("folder reference has no recognizable id")

	folderPathPattern  = regexp.MustCompile(`/folders/([a-zA-Z0-9-_]+)`)
	folderQueryPattern = regexp.MustCompile(`[?&]id=([a-zA-Z0-9-_]+)`)
	bareIDPattern      = regexp.MustCompile(`^[a-zA-Z0-9-_/]+$`)
)

// ExtractFolderID accepts a folder URL in either the path style
// (.../folders/<id>) or the query style (...?id=<id>), or a bare id.
func ExtractFolderID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrMalformedReference
	}
	if m := folderPathPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if m := folderQueryPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
}

// Config configures the drive backend.
type Config struct {
	Backend string // "local" | "gcs" | "s3" | "mem"

	// Local filesystem
	LocalDir string

	// GCS
	GCSBucket string

	// S3 (also works for B2, R2, MinIO)
	S3Bucket   string
	S3Endpoint string
	S3Region   string

	// Common
	Prefix string // key prefix within bucket or local dir
}

// NewStore creates a drive backend based on configuration.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("LocalDir required for local backend")
		}
		return NewLocalStore(cfg.LocalDir, cfg.Prefix)
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCSBucket required for gcs backend")
		}
		return NewBlobStore(fmt.Sprintf("gs://%s", cfg.GCSBucket), cfg.Prefix)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3Bucket required for s3 backend")
		}
		return NewBlobStore(s3URL(cfg), cfg.Prefix)
	case "mem":
		return NewBlobStore("mem://", cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown drive backend: %s", cfg.Backend)
	}
}

// childKey joins a parent folder id and a child name into a key.
func childKey(parentID, name string) string {
	if parentID == "" {
		return name
	}
	return strings.TrimSuffix(parentID, "/") + "/" + name
}
