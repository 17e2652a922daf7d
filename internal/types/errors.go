package types

import "errors"

var (
	// ErrUnexpectedLayout means the page was rendered in a display mode the
	// parsers do not support, or a structural anchor is missing.
	ErrUnexpectedLayout = errors.New("unexpected page layout")

	// ErrUnknownPageKind means the page heading matches no known listing kind.
	ErrUnknownPageKind = errors.New("unknown page kind")

	// ErrMalformedIdentity means a gallery URL does not have the gid/token shape.
	ErrMalformedIdentity = errors.New("malformed gallery identity")

	// ErrEmptyDocument is returned for blank input.
	ErrEmptyDocument = errors.New("HTML content is empty")

	// ErrUnknownKind is returned when asked to parse an unregistered page kind.
	ErrUnknownKind = errors.New("unknown parse kind")
)

// IsParseFailure reports whether err is one of the fatal parse conditions
// that indicate the site layout changed or the wrong page was supplied.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrUnexpectedLayout) ||
		errors.Is(err, ErrUnknownPageKind) ||
		errors.Is(err, ErrMalformedIdentity) ||
		errors.Is(err, ErrEmptyDocument)
}
