package extract

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lu4p/cat"
)

// Word-processor strategy names, in the order they are tried.
const (
	StrategyWordBinary     = "word-binary"
	StrategyDocconv        = "docconv"
	StrategyDocxParagraphs = "docx-paragraphs"
	StrategyContainerSniff = "container-sniff"
	StrategyRawText        = "raw-text"
)

// modernDocStrategies is the fallback chain for .docx files.
func modernDocStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyDocconv, Decode: extractDocconv},
		{Name: StrategyDocxParagraphs, Decode: extractDOCXParagraphs},
		{Name: StrategyContainerSniff, Decode: extractSniffedContainer},
		{Name: StrategyRawText, Decode: extractRawText},
	}
}

// legacyDocStrategies reads the binary Word format first. Many .doc uploads are
// really .docx or RTF files with the wrong name, so the modern chain follows.
func legacyDocStrategies() []Strategy {
	return append([]Strategy{{Name: StrategyWordBinary, Decode: extractWordBinary}}, modernDocStrategies()...)
}

func extractDocconv(_ context.Context, content []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return text, nil
}

// Containers lu4p/cat understands. Its plain-text passthrough is never used,
// otherwise any binary input would come back as "text".
var sniffableContainers = []string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.oasis.opendocument.text",
	"text/rtf",
}

func extractSniffedContainer(_ context.Context, content []byte) (string, error) {
	m := mimetype.Detect(content)
	for _, t := range sniffableContainers {
		if m.Is(t) {
			return cat.FromBytes(content)
		}
	}
	return "", fmt.Errorf("unrecognised container %s", m)
}
