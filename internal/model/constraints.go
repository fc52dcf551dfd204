package model

import (
	"mime"
	"strings"
)

// allowedContentTypes lists the media types accepted for upload: images,
// common office and document formats, and text/CSV/JSON/XML.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},

	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel":                                                  {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},

	"text/plain":       {},
	"text/csv":         {},
	"application/json": {},
	"application/xml":  {},
}

// NormalizeContentType lower-cases a declared content type and strips its
// parameters, so "Text/Plain; charset=utf-8" becomes "text/plain".
// It returns "" when the value cannot be parsed.
func NormalizeContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

// IsAllowedContentType reports whether contentType, after normalisation, is on
// the upload allow-list.
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[NormalizeContentType(contentType)]
	return ok
}

// AllowedContentTypes returns the allow-list in no particular order.
func AllowedContentTypes() []string {
	types := make([]string, 0, len(allowedContentTypes))
	for ct := range allowedContentTypes {
		types = append(types, ct)
	}
	return types
}
