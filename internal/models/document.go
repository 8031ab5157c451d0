// Package models defines the data structures passed through the extraction pipeline.
package models

// SourceFile is an uploaded document as received from the caller.
// It is owned by the caller for the duration of one extraction and never persisted.
type SourceFile struct {
	Data      []byte `json:"-"`
	MediaType string `json:"media_type"`
	Filename  string `json:"filename"`
	// Size is the declared byte length; zero means unknown.
	Size int64 `json:"size"`
}

// Len returns the larger of the declared size and the length of Data, so a
// caller cannot understate the size of what it hands over.
func (f SourceFile) Len() int64 {
	if n := int64(len(f.Data)); n > f.Size {
		return n
	}
	return f.Size
}
