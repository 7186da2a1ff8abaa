package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ExportPrefix is the object prefix used for exports in a bucket
const ExportPrefix = "exports"

// GenerateExportFolderPath returns the folder name of one export run.
// Format: YYYY-MM-DD-HH-MM-SS (UTC)
func GenerateExportFolderPath(timestamp time.Time) string {
	t := timestamp.UTC()
	return fmt.Sprintf("%04d-%02d-%02d-%02d-%02d-%02d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ParseGCSURL splits gs://bucket/object into bucket and object name
func ParseGCSURL(url string) (string, string, error) {
	rest, ok := strings.CutPrefix(url, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URL: %q", url)
	}
	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", fmt.Errorf("gs:// URL must name a bucket and an object: %q", url)
	}
	return bucket, object, nil
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css"
	case ".md":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
