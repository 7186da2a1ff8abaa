package fetchers

import (
	"strings"
)

// SourceKind tells where a data source lives
type SourceKind string

const (
	SourceLocal SourceKind = "local"
	SourceGCS   SourceKind = "gcs"
	SourceHTTP  SourceKind = "http"
)

// ClassifySource returns the kind of a DATA_SOURCE value
func ClassifySource(source string) SourceKind {
	lower := strings.ToLower(strings.TrimSpace(source))
	switch {
	case strings.HasPrefix(lower, "gs://"):
		return SourceGCS
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return SourceHTTP
	default:
		return SourceLocal
	}
}
