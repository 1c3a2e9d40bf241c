package pdfdoc

import "errors"

// Error kinds surfaced by the document windowing core. Tool handlers wrap
// these with request context; callers can classify failures with errors.Is.
var (
	// ErrFileNotFound indicates the path does not resolve to a readable file.
	ErrFileNotFound = errors.New("file not found")

	// ErrCorruptDocument indicates the file could not be interpreted as a PDF,
	// including password-protected documents that cannot be opened.
	ErrCorruptDocument = errors.New("corrupt or unreadable PDF document")

	// ErrInvalidQuery indicates an empty search query.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrInvalidParameter indicates an out-of-range tuning parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
)
