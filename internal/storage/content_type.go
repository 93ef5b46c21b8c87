package storage

import (
	"net/http"
	"path/filepath"
	"strings"
)

// extContentTypes maps the extensions we store to MIME types.
var extContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".csv":  "text/csv",
	".json": "application/json",
	".pdf":  "application/pdf",
}

// DetectContentType resolves a MIME type from, in order: an explicit
// value, the key's extension, and the first bytes of content.
func DetectContentType(explicit, key string, head []byte) string {
	if explicit != "" {
		return explicit
	}
	if ct, ok := extContentTypes[strings.ToLower(filepath.Ext(key))]; ok {
		return ct
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return "application/octet-stream"
}

// AllowedAvatarTypes are the content types accepted for avatar uploads.
var AllowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}
