package extract

import (
	"errors"
	"fmt"
)

// Kind classifies why an extraction failed.
type Kind int

const (
	_ Kind = iota
	KindUnsupportedType
	KindFileTooLarge
	KindEmptyContent
	KindCorruptOrProtectedFile
	KindUnreadableImage
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindFileTooLarge:
		return "FileTooLarge"
	case KindEmptyContent:
		return "EmptyContent"
	case KindCorruptOrProtectedFile:
		return "CorruptOrProtectedFile"
	case KindUnreadableImage:
		return "UnreadableImage"
	default:
		return ""
	}
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrUnsupportedType        = &Error{Kind: KindUnsupportedType, Msg: "unsupported file type"}
	ErrFileTooLarge           = &Error{Kind: KindFileTooLarge, Msg: "file too large"}
	ErrEmptyContent           = &Error{Kind: KindEmptyContent, Msg: "no text content"}
	ErrCorruptOrProtectedFile = &Error{Kind: KindCorruptOrProtectedFile, Msg: "file is corrupt or protected"}
	ErrUnreadableImage        = &Error{Kind: KindUnreadableImage, Msg: "image could not be read"}
)

// Error is the typed failure returned by the pipeline.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can test against the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of a pipeline error, or 0 when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
