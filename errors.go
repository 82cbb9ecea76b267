package logware

import "errors"

var (
	// ErrNotFound is returned by GetData when the chain-data service answers 404.
	ErrNotFound = errors.New("NotFound")

	// ErrUnsupportedQuery is returned when GET data cannot be encoded as query parameters.
	ErrUnsupportedQuery = errors.New("logware-client: unsupported query data type")
)
