// Package storage abstracts object storage for avatars and exports.
//
// Two implementations: LocalStorage for development and R2Storage
// (Cloudflare R2, S3-compatible) for production.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Storage is the object storage interface. All methods are
// context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the key. Returns ErrKeyExists if the key is
	// taken and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the object at the key. The caller must close the
	// reader. Returns ErrNotFound for missing keys.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object. Idempotent.
	Delete(ctx context.Context, key string) error

	// URL returns an access URL for the object: permanent for public
	// objects, presigned for the given duration otherwise.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object exists at the key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type; auto-detected from the key when
	// empty.
	ContentType string

	// MaxSize in bytes; ErrTooLarge beyond it. Zero means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object.
	Overwrite bool

	// Public marks the object publicly readable where the provider
	// supports ACLs.
	Public bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	BasePath string // Root directory, e.g. "./storage"
	BaseURL  string // Public URL prefix, e.g. "http://localhost:8080/files"
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	// PublicURL is the bucket's custom domain; presigned URLs are used
	// when empty.
	PublicURL string
	Region    string // Defaults to "auto"
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// AvatarKey generates a storage key for an employee avatar.
// Format: tenants/{tenantID}/avatars/{uuid}{ext}
func AvatarKey(tenantID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("tenants/%s/avatars/%s%s", tenantID, uuid.New(), ext)
}
