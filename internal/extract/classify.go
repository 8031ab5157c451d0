package extract

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/cvtext/internal/models"
)

var mediaTypeFormats = map[string]models.LogicalFormat{
	"application/pdf":   models.FormatPDF,
	"application/x-pdf": models.FormatPDF,

	"application/msword":       models.FormatLegacyDoc,
	"application/vnd.ms-word":  models.FormatLegacyDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.FormatModernDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.template": models.FormatModernDoc,

	"application/vnd.oasis.opendocument.text": models.FormatOpenDocText,

	"application/rtf": models.FormatRichText,
	"text/rtf":        models.FormatRichText,

	"text/plain": models.FormatPlainText,

	"text/csv":                  models.FormatDelimitedText,
	"application/csv":           models.FormatDelimitedText,
	"text/tab-separated-values": models.FormatDelimitedText,

	"text/markdown":         models.FormatMarkupText,
	"text/x-markdown":       models.FormatMarkupText,
	"text/html":             models.FormatMarkupText,
	"application/xhtml+xml": models.FormatMarkupText,
	"text/xml":              models.FormatMarkupText,
	"application/xml":       models.FormatMarkupText,

	"image/jpeg":     models.FormatRasterImage,
	"image/jpg":      models.FormatRasterImage,
	"image/png":      models.FormatRasterImage,
	"image/webp":     models.FormatRasterImage,
	"image/tiff":     models.FormatRasterImage,
	"image/bmp":      models.FormatRasterImage,
	"image/x-ms-bmp": models.FormatRasterImage,
}

var extensionFormats = map[string]models.LogicalFormat{
	".pdf":      models.FormatPDF,
	".doc":      models.FormatLegacyDoc,
	".dot":      models.FormatLegacyDoc,
	".docx":     models.FormatModernDoc,
	".dotx":     models.FormatModernDoc,
	".odt":      models.FormatOpenDocText,
	".rtf":      models.FormatRichText,
	".txt":      models.FormatPlainText,
	".text":     models.FormatPlainText,
	".csv":      models.FormatDelimitedText,
	".tsv":      models.FormatDelimitedText,
	".md":       models.FormatMarkupText,
	".markdown": models.FormatMarkupText,
	".html":     models.FormatMarkupText,
	".htm":      models.FormatMarkupText,
	".xml":      models.FormatMarkupText,
	".jpg":      models.FormatRasterImage,
	".jpeg":     models.FormatRasterImage,
	".png":      models.FormatRasterImage,
	".webp":     models.FormatRasterImage,
	".tif":      models.FormatRasterImage,
	".tiff":     models.FormatRasterImage,
	".bmp":      models.FormatRasterImage,
}

// genericMediaTypes carry no format information; browsers send them for unknown files.
var genericMediaTypes = map[string]bool{
	"":                           true,
	"application/octet-stream":   true,
	"binary/octet-stream":        true,
	"application/unknown":        true,
	"application/x-download":     true,
	"application/force-download": true,
}

// Classify maps a declared media type and filename to a logical format.
// The media type wins when it is specific and known; otherwise the filename
// extension is looked up in the same table. ok is false when neither matches.
func Classify(mediaType, filename string) (format models.LogicalFormat, ok bool) {
	mt := canonicalMediaType(mediaType)
	if !genericMediaTypes[mt] {
		if f, found := mediaTypeFormats[mt]; found {
			return f, true
		}
	}
	if f, found := extensionFormats[strings.ToLower(filepath.Ext(filename))]; found {
		return f, true
	}
	return models.FormatUnknown, false
}

// canonicalMediaType lowercases mt and drops parameters such as charset.
func canonicalMediaType(mt string) string {
	mt = strings.TrimSpace(mt)
	if mt == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// SupportedExtensions returns every recognised extension, sorted, with the leading dot.
func SupportedExtensions() []string {
	out := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// SupportedMediaTypes returns every recognised media type, sorted.
func SupportedMediaTypes() []string {
	out := make([]string, 0, len(mediaTypeFormats))
	for mt := range mediaTypeFormats {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}
