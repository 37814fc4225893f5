package download

import (
	"errors"
	"fmt"
)

// Kind classifies the outcome of processing a single url.
type Kind int

const (
	KindOK Kind = iota

	// KindClassificationSkip means the url/content-type pair does not look
	// like an image. It is a policy skip, not a failure of the remote end.
	KindClassificationSkip

	// KindNetwork covers DNS, connection, malformed url, and timeout failures.
	KindNetwork

	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus

	// KindVerification means the saved bytes are not a known image format.
	// The file has already been deleted when this is reported.
	KindVerification

	// KindUnexpected is anything else: permission denied, disk full, panics.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindClassificationSkip:
		return "skipped"
	case KindNetwork:
		return "network error"
	case KindHTTPStatus:
		return "http error"
	case KindVerification:
		return "verification failure"
	case KindUnexpected:
		return "unexpected error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure to fetch or persist the image at URL.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int    // Only set for KindHTTPStatus.
	Detail     string // Human readable; used when Err is nil.
	Err        error
}

func (e *Error) Error() string {
	msg := e.Detail
	if e.Err != nil {
		if msg != "" {
			msg += ": " + e.Err.Error()
		} else {
			msg = e.Err.Error()
		}
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a pipeline error of the given kind.
func NewError(kind Kind, u string, err error) *Error {
	return &Error{
		Kind: kind,
		URL:  u,
		Err:  err,
	}
}

// KindOf returns the kind of the given error. A nil error is KindOK; an error
// that is not (and does not wrap) an *Error is KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Result is the structured outcome of processing one url.
type Result struct {
	URL    string
	Path   string // Path of the saved file. Empty unless the result is OK.
	Format string // Detected image format, e.g. "png".
	Width  int    // Zero if the image header could not be decoded.
	Height int
	Err    error
}

func (r Result) Kind() Kind {
	return KindOf(r.Err)
}

func (r Result) OK() bool {
	return r.Err == nil
}
