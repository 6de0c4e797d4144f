package store

import "steve-mcp/internal/steveapi"

// MissReason says why a mirror lookup could not answer
type MissReason string

const (
	// MissNone marks a hit
	MissNone MissReason = ""
	// MissUnconfigured means no mirror connection is configured
	MissUnconfigured MissReason = "store unconfigured"
	// MissEmpty means the mirror matched zero documents
	MissEmpty MissReason = "store empty"
	// MissError means the mirror faulted (connection, identifier, decode)
	MissError MissReason = "store error"
)

// ProductLookup is the tagged result of a mirror product read: either a hit
// carrying a non-empty product list, or a miss with a reason. Modeling the
// miss as data keeps the fallback decision an explicit branch in the reader.
type ProductLookup struct {
	Products []steveapi.Product
	Miss     MissReason
	Err      error // underlying fault when Miss == MissError; diagnostic only
}

// Hit reports whether the lookup produced a usable (non-empty) result
func (l ProductLookup) Hit() bool {
	return l.Miss == MissNone
}
