package wire

import "errors"

// ErrMalformed is the sentinel wrapped by every parse failure in this
// package. Wrap it with fmt.Errorf("context: %w", ErrMalformed) to add
// detail while letting callers errors.Is against a single type.
var ErrMalformed = errors.New("wire: malformed dns message")
