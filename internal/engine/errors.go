package engine

import "errors"

var (
	// ErrIndexNotReady is returned for queries issued before the embedding
	// index has been built. The process stays up; only the call fails.
	ErrIndexNotReady = errors.New("scheme index is not ready")

	// ErrMalformedQuery is returned for requests rejected before any index
	// work (empty message, missing required profile fields).
	ErrMalformedQuery = errors.New("malformed query")

	// ErrSchemeNotFound is returned for lookups of a scheme_id that is not in
	// the current corpus.
	ErrSchemeNotFound = errors.New("scheme not found")
)
