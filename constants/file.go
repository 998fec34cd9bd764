package constants

import "strings"

// Document formats understood by the pipeline.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the file extensions the pipeline accepts as input.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to a document format.
// Returns "" for extensions the pipeline does not accept.
func MapExtToFormat(ext string) string {
	e := NormalizeExt(ext)
	if _, ok := AllowedExtensions[e]; !ok {
		return ""
	}
	if e == "pdf" {
		return PDF
	}
	return IMAGE
}
