package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxDefaultDocumentPath = "word/document.xml"
	contentTypesPath        = "[Content_Types].xml"
	markupCompatibilityNS   = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// Main document part content types, for documents and templates (with or without macros).
var docxMainContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.template.main+xml": true,
	"application/vnd.ms-word.document.macroEnabled.main+xml":                           true,
	"application/vnd.ms-word.template.macroEnabledTemplate.main+xml":                   true,
}

// maxDocxPartSize bounds how much of a single zip part is inflated.
const maxDocxPartSize = 64 << 20

type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// findDocxMainDocumentPath reads [Content_Types].xml and returns the main document
// part without its leading slash, or "" when the package does not declare one.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, err := readZipPart(zr, contentTypesPath)
	if err != nil {
		return ""
	}
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return ""
	}
	for _, o := range ct.Overrides {
		if docxMainContentTypes[o.ContentType] {
			return strings.TrimPrefix(o.PartName, "/")
		}
	}
	return ""
}

func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxDocxPartSize))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}

// extractDOCXParagraphs walks the WordprocessingML body as a stream of XML tokens
// and rebuilds its paragraph structure: each <w:p> ends a line, <w:tab/> becomes a
// tab and <w:br/> or <w:cr/> a line break. Fallback content inside
// <mc:AlternateContent> is skipped so text boxes are not read twice.
func extractDOCXParagraphs(_ context.Context, content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a zip: %w", err)
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDefaultDocumentPath
	}
	docXML, err := readZipPart(zr, docPath)
	if err != nil {
		return "", err
	}
	return paragraphText(docXML)
}

func paragraphText(docXML []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	var (
		b         strings.Builder
		line      strings.Builder
		inText    bool
		skipDepth int
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			b.WriteString(s)
			b.WriteByte('\n')
		}
		line.Reset()
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if t.Name.Space == markupCompatibilityNS && t.Name.Local == "Fallback" {
				skipDepth = 1
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte('\n')
			}
		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText && skipDepth == 0 {
				line.Write(t)
			}
		}
	}
	flush()
	return strings.TrimSpace(b.String()), nil
}
