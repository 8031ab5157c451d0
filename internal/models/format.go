package models

import "fmt"

// LogicalFormat is the decoding family a SourceFile belongs to.
type LogicalFormat int

const (
	FormatUnknown LogicalFormat = iota
	FormatPDF
	FormatLegacyDoc
	FormatModernDoc
	FormatOpenDocText
	FormatRichText
	FormatPlainText
	FormatDelimitedText
	FormatMarkupText
	FormatRasterImage
)

var formatNames = map[LogicalFormat]string{
	FormatUnknown:       "unknown",
	FormatPDF:           "pdf",
	FormatLegacyDoc:     "legacy_doc",
	FormatModernDoc:     "modern_doc",
	FormatOpenDocText:   "opendoc_text",
	FormatRichText:      "rich_text",
	FormatPlainText:     "plain_text",
	FormatDelimitedText: "delimited_text",
	FormatMarkupText:    "markup_text",
	FormatRasterImage:   "raster_image",
}

func (f LogicalFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so formats render by name in JSON.
func (f LogicalFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (f *LogicalFormat) UnmarshalText(b []byte) error {
	for k, name := range formatNames {
		if name == string(b) {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("unknown format %q", b)
}

// Formats lists every supported format in declaration order.
func Formats() []LogicalFormat {
	return []LogicalFormat{
		FormatPDF,
		FormatLegacyDoc,
		FormatModernDoc,
		FormatOpenDocText,
		FormatRichText,
		FormatPlainText,
		FormatDelimitedText,
		FormatMarkupText,
		FormatRasterImage,
	}
}
