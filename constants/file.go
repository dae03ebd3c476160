package constants

import (
	"bytes"
	"net/http"
	"strings"
)

const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the upload extensions accepted by the parse pipeline.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

var pdfMagic = []byte("%PDF-")

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF, IMAGE or "" for unknown extensions.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return ""
	}
}

// SniffFormat detects the source format from content, falling back to the
// file extension when the bytes are inconclusive.
func SniffFormat(data []byte, ext string) string {
	if bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic) {
		return PDF
	}
	ct := http.DetectContentType(data)
	switch {
	case ct == "application/pdf":
		return PDF
	case ct == "image/png", ct == "image/jpeg":
		return IMAGE
	}
	return MapExtToFormat(ext)
}
